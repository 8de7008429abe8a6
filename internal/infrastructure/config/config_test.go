package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "swiftmart", cfg.ServiceName)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, 100, cfg.LoyaltySpendPerPoint)
	assert.Equal(t, float64(20), cfg.CashierDiscountCapPercent)
	assert.Equal(t, "SwiftMart", cfg.StoreName)
	assert.Equal(t, "receipts", cfg.ReceiptDir)
	assert.Empty(t, cfg.PostgresDSN)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"listen_addr: \":9090\"\nlow_stock_threshold: 2\nstore_name: Corner Shop\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 2, cfg.LowStockThreshold)
	assert.Equal(t, "Corner Shop", cfg.StoreName)
	assert.Equal(t, 100, cfg.LoyaltySpendPerPoint, "untouched keys keep defaults")
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SWIFTMART_LISTEN_ADDR", ":7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ListenAddr)
}
