package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow-guardian/backend/finance"
	"cashflow-guardian/backend/models"
)

func TestToolboxReports(t *testing.T) {
	tb := NewToolbox(staticSource{snap: testSnapshot()})
	ctx := context.Background()

	cases := map[string]string{
		ToolFinancialSummary: "FINANCIAL JOURNEY - Kape Labs",
		ToolCustomerChurn:    "CUSTOMER CHURN ANALYSIS",
		ToolBurnRate:         "BURN RATE ANALYSIS",
		ToolCAC:              "CUSTOMER ACQUISITION COST (CAC)",
		ToolCustomerLTV:      "CUSTOMER LIFETIME VALUE (LTV)",
	}
	for name, want := range cases {
		out, err := tb.Call(ctx, 1, name, nil)
		require.NoError(t, err, name)
		assert.Contains(t, out, want, name)
	}
}

func TestToolboxRunwayArguments(t *testing.T) {
	tb := NewToolbox(staticSource{snap: testSnapshot()})
	ctx := context.Background()

	out, err := tb.Call(ctx, 1, ToolRunway, map[string]any{"simulated_expense": 90_000.0})
	require.NoError(t, err)
	assert.Equal(t, "Simulated runway: 10 months (₱950,000.00 ÷ ₱90,000.00/month)", out)

	out, err = tb.Call(ctx, 1, ToolRunway, map[string]any{"simulated_expense": "₱95,000"})
	require.NoError(t, err)
	assert.Contains(t, out, "Simulated runway: 10 months")

	_, err = tb.Call(ctx, 1, ToolRunway, map[string]any{"simulated_expense": 0.0})
	assert.ErrorIs(t, err, finance.ErrInvalidExpense)

	_, err = tb.Call(ctx, 1, ToolRunway, map[string]any{"simulated_expense": "lots"})
	assert.ErrorContains(t, err, "simulated_expense must be a number")
}

func TestToolboxHiring(t *testing.T) {
	tb := NewToolbox(staticSource{snap: testSnapshot()})
	ctx := context.Background()

	out, err := tb.Call(ctx, 1, ToolHiringAffordability, map[string]any{"role": "designer", "monthly_salary": 30_000.0, "months_ahead": 3.0})
	require.NoError(t, err)
	assert.Contains(t, out, "HIRING AFFORDABILITY ANALYSIS - Designer:")
	assert.Contains(t, out, "COST PROJECTION (3 months):")

	out, err = tb.Call(ctx, 1, ToolHiringAffordability, map[string]any{"monthly_salary": 0.0, "months_ahead": 0.0})
	require.NoError(t, err)
	assert.Contains(t, out, "COST PROJECTION (0 months):")

	out, err = tb.Call(ctx, 1, ToolHiringAffordability, map[string]any{"monthly_salary": 30_000.0})
	require.NoError(t, err)
	assert.Contains(t, out, "COST PROJECTION (6 months):")

	_, err = tb.Call(ctx, 1, ToolHiringAffordability, map[string]any{"monthly_salary": 30_000.0, "months_ahead": 2.5})
	assert.ErrorContains(t, err, "whole number")

	_, err = tb.Call(ctx, 1, ToolHiringAffordability, map[string]any{})
	assert.ErrorContains(t, err, "developer")
}

func TestToolboxWithoutMonthlyData(t *testing.T) {
	tb := NewToolbox(staticSource{snap: finance.Snapshot{Onboarding: models.Onboarding{StartupName: "New Co"}}})
	ctx := context.Background()

	out, err := tb.Call(ctx, 1, ToolCustomerChurn, nil)
	require.NoError(t, err)
	assert.Equal(t, "No monthly data available to analyze customer churn.", out)

	out, err = tb.Call(ctx, 1, ToolCAC, nil)
	require.NoError(t, err)
	assert.Equal(t, "No monthly financial data available to compute CAC.", out)

	out, err = tb.Call(ctx, 1, ToolCustomerLTV, nil)
	require.NoError(t, err)
	assert.Equal(t, "No monthly financial data available to compute LTV.", out)
}

func TestToolboxErrors(t *testing.T) {
	_, err := NewToolbox(staticSource{snap: testSnapshot()}).Call(context.Background(), 1, "drop_tables", nil)
	assert.ErrorIs(t, err, errUnknownTool)

	boom := errors.New("connection refused")
	_, err = NewToolbox(staticSource{err: boom}).Call(context.Background(), 1, ToolBurnRate, nil)
	assert.ErrorIs(t, err, boom)
}

func TestDeclarationsCoverEveryTool(t *testing.T) {
	names := map[string]bool{}
	for _, d := range Declarations() {
		names[d.Name] = true
	}
	for _, n := range []string{ToolFinancialSummary, ToolCustomerChurn, ToolBurnRate, ToolRunway, ToolCAC, ToolCustomerLTV, ToolHiringAffordability} {
		assert.True(t, names[n], n)
	}
	assert.Len(t, names, 7)
}
