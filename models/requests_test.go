package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-03", "2025-03-17", " 2025-03-31 ", "2025-03-10T08:00:00+08:00"} {
		got, err := ParseMonth(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMonth("March 2025")
	assert.Error(t, err)
	_, err = ParseMonth("")
	assert.Error(t, err)
}

func TestMonthlyRequestValidate(t *testing.T) {
	ok := MonthlyRequest{Date: "2025-01", Revenue: decimal.NewFromInt(10), NewCustomers: 1, ActiveCustomers: 5}
	require.NoError(t, ok.Validate())

	neg := ok
	neg.OtherExpenses = decimal.NewFromInt(-1)
	assert.ErrorContains(t, neg.Validate(), "other_expenses")

	badCount := ok
	badCount.ActiveCustomers = -3
	assert.Error(t, badCount.Validate())

	badDate := ok
	badDate.Date = "01/2025"
	assert.Error(t, badDate.Validate())
}

func TestMonthlyRequestToModel(t *testing.T) {
	r := MonthlyRequest{Date: "2025-02-14", Revenue: decimal.NewFromInt(500), OtherExpenses: decimal.NewFromInt(20), ManpowerExpenses: decimal.NewFromInt(100)}
	m := r.ToModel(7)
	assert.Equal(t, int64(7), m.StartupID)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), m.Date)
	assert.True(t, m.TotalExpenses().Equal(decimal.NewFromInt(120)))
	assert.True(t, m.NetCashFlow().Equal(decimal.NewFromInt(380)))
}

func TestOnboardingRequest(t *testing.T) {
	r := OnboardingRequest{
		StartupName:        "  Kape Labs ",
		ProductDevExpenses: decimal.NewFromInt(1),
		ManpowerExpenses:   decimal.NewFromInt(2),
		MarketingExpenses:  decimal.NewFromInt(3),
		OperationsExpenses: decimal.NewFromInt(4),
	}
	require.NoError(t, r.Validate())

	now := time.Date(2025, 6, 9, 15, 30, 0, 0, time.UTC)
	o := r.ToModel(now)
	assert.Equal(t, "Kape Labs", o.StartupName)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), o.OnboardingDate)
	assert.True(t, o.PlannedBurn().Equal(decimal.NewFromInt(10)))

	r.OnboardingDate = "2024-12-01"
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), r.ToModel(now).OnboardingDate)

	assert.ErrorContains(t, OnboardingRequest{}.Validate(), "startup_name")
	assert.Error(t, OnboardingRequest{StartupName: "x", InitialCash: decimal.NewFromInt(-5)}.Validate())
	assert.Error(t, OnboardingRequest{StartupName: "x", OnboardingDate: "yesterday"}.Validate())
}

func TestValidateReportsFirstNegativeField(t *testing.T) {
	onboarding := OnboardingRequest{
		StartupName:        "x",
		TargetRevenue:      decimal.NewFromInt(-1),
		OperationsExpenses: decimal.NewFromInt(-2),
		InitialCash:        decimal.NewFromInt(-3),
	}
	monthly := MonthlyRequest{
		Date:             "2025-01",
		Revenue:          decimal.NewFromInt(-1),
		ManpowerExpenses: decimal.NewFromInt(-2),
		OtherExpenses:    decimal.NewFromInt(-3),
	}
	for range 20 {
		assert.EqualError(t, onboarding.Validate(), "target_revenue must be >= 0")
		assert.EqualError(t, monthly.Validate(), "revenue must be >= 0")
	}
}
