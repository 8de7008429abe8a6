package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSettle_ExactSingleTender(t *testing.T) {
	s, err := Settle(d("450"), []Tender{{Mode: ModeCard, Amount: d("450")}})
	require.NoError(t, err)
	assert.True(t, s.Paid.Equal(d("450")))
	assert.True(t, s.Change.IsZero())
}

func TestSettle_SplitTenders(t *testing.T) {
	s, err := Settle(d("450"), []Tender{
		{Mode: ModeCard, Amount: d("200")},
		{Mode: ModeUPI, Amount: d("250")},
	})
	require.NoError(t, err)
	assert.True(t, s.Paid.Equal(d("450")))
	assert.True(t, s.Change.IsZero())
	assert.Len(t, s.Tenders, 2)
}

func TestSettle_SplitSameModeTwice(t *testing.T) {
	// Split does not require distinct modes.
	s, err := Settle(d("100"), []Tender{
		{Mode: ModeCard, Amount: d("60")},
		{Mode: ModeCard, Amount: d("40")},
	})
	require.NoError(t, err)
	assert.True(t, s.Change.IsZero())
}

func TestSettle_CashChange(t *testing.T) {
	s, err := Settle(d("450"), []Tender{{Mode: ModeCash, Amount: d("500")}})
	require.NoError(t, err)
	assert.True(t, s.Paid.Equal(d("450")), "paid records the total, not the cash handed over")
	assert.True(t, s.Change.Equal(d("50")))
}

func TestSettle_ChangeOnlyAgainstCashPortion(t *testing.T) {
	// The excess is attributable to the cash tender, so change is allowed
	// even though a card tender is present.
	s, err := Settle(d("450"), []Tender{
		{Mode: ModeCard, Amount: d("400")},
		{Mode: ModeCash, Amount: d("100")},
	})
	require.NoError(t, err)
	assert.True(t, s.Change.Equal(d("50")))
}

func TestSettle_Errors(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		tenders []Tender
		wantErr error
	}{
		{"no tenders", "100", nil, ErrNoTender},
		{"zero amount", "100", []Tender{{Mode: ModeCash, Amount: d("0")}}, ErrInvalidTender},
		{"negative amount", "100", []Tender{{Mode: ModeCash, Amount: d("-5")}}, ErrInvalidTender},
		{"unknown mode", "100", []Tender{{Mode: "cheque", Amount: d("100")}}, ErrUnknownMode},
		{"underpaid single", "450", []Tender{{Mode: ModeCard, Amount: d("400")}}, ErrUnderpaid},
		{"underpaid split", "450", []Tender{
			{Mode: ModeCard, Amount: d("200")},
			{Mode: ModeUPI, Amount: d("200")},
		}, ErrUnderpaid},
		{"overpaid card", "450", []Tender{{Mode: ModeCard, Amount: d("500")}}, ErrOverpaid},
		{"overpaid upi", "450", []Tender{{Mode: ModeUPI, Amount: d("460")}}, ErrOverpaid},
		{"excess within cash portion", "450", []Tender{
			{Mode: ModeCard, Amount: d("440")},
			{Mode: ModeCash, Amount: d("20")},
		}, nil}, // 460 paid, 10 excess, cash covers it
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Settle(d(tt.total), tt.tenders)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSettle_OverpaidWhenExcessExceedsCash(t *testing.T) {
	_, err := Settle(d("450"), []Tender{
		{Mode: ModeCard, Amount: d("450")},
		{Mode: ModeCash, Amount: d("10")},
		{Mode: ModeUPI, Amount: d("20")},
	})
	require.ErrorIs(t, err, ErrOverpaid)
}
