// Package config loads register configuration with viper: defaults, an
// optional config.yaml, and SWIFTMART_* environment overrides, in that
// order of precedence (lowest to highest).
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string `mapstructure:"service_name"`
	Env         string `mapstructure:"env"`
	ListenAddr  string `mapstructure:"listen_addr"`
	LogFile     string `mapstructure:"log_file"`

	// LowStockThreshold triggers the low-stock signal when a commit leaves
	// stock at or below it.
	LowStockThreshold int `mapstructure:"low_stock_threshold"`
	// LoyaltySpendPerPoint is the currency spend that earns one point.
	LoyaltySpendPerPoint int `mapstructure:"loyalty_spend_per_point"`
	// CashierDiscountCapPercent is the largest discount a cashier may apply
	// without the admin override.
	CashierDiscountCapPercent float64 `mapstructure:"cashier_discount_cap_percent"`

	StoreName  string `mapstructure:"store_name"`
	ReceiptDir string `mapstructure:"receipt_dir"`
	// PostgresDSN enables the durable sales archive when non-empty.
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("service_name", "swiftmart")
	v.SetDefault("env", "dev")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_file", "")
	v.SetDefault("low_stock_threshold", 5)
	v.SetDefault("loyalty_spend_per_point", 100)
	v.SetDefault("cashier_discount_cap_percent", 20)
	v.SetDefault("store_name", "SwiftMart")
	v.SetDefault("receipt_dir", "receipts")
	v.SetDefault("postgres_dsn", "")

	v.SetEnvPrefix("SWIFTMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; defaults plus env cover it.
		// An explicitly named file must exist.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
