package advisor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"

	"cashflow-guardian/backend/finance"
)

const (
	ToolFinancialSummary    = "get_financial_summary"
	ToolCustomerChurn       = "analyze_customer_churn"
	ToolBurnRate            = "compute_burn_rate"
	ToolRunway              = "compute_runway"
	ToolCAC                 = "compute_cac"
	ToolCustomerLTV         = "compute_customer_ltv"
	ToolHiringAffordability = "analyze_hiring_affordability"
)

// SnapshotSource loads everything known about a startup.
type SnapshotSource interface {
	Snapshot(ctx context.Context, startupID int64) (finance.Snapshot, error)
}

// Declarations describes the tools to the model.
func Declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        ToolFinancialSummary,
			Description: "Retrieve complete financial journey from onboarding to current state",
		},
		{
			Name:        ToolCustomerChurn,
			Description: "Analyze customer churn patterns and retention metrics",
		},
		{
			Name:        ToolBurnRate,
			Description: "Compute current burn rate and compare with initial projections",
		},
		{
			Name:        ToolRunway,
			Description: "Compute current runway based on actual cash position and recent burn rate. Pass simulated_expense to see the runway at a hypothetical monthly spend.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"simulated_expense": {Type: genai.TypeNumber, Description: "Hypothetical total monthly expense in pesos"},
				},
			},
		},
		{
			Name:        ToolCAC,
			Description: "Compute the Customer Acquisition Cost (CAC) based on historical data. CAC = Total Marketing Expenses / New Customers Acquired (for a given period)",
		},
		{
			Name:        ToolCustomerLTV,
			Description: "Compute Customer Lifetime Value (LTV) based on revenue and churn patterns",
		},
		{
			Name:        ToolHiringAffordability,
			Description: "Analyze if startup can afford to hire new employee(s) with given salary",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"role":           {Type: genai.TypeString, Description: "Job role title (used for display purposes only)"},
					"monthly_salary": {Type: genai.TypeNumber, Description: "Required monthly salary amount"},
					"months_ahead":   {Type: genai.TypeInteger, Description: "Number of months to project costs"},
				},
				Required: []string{"monthly_salary"},
			},
		},
	}
}

// Toolbox runs tool calls against one startup's data.
type Toolbox struct {
	source SnapshotSource
}

func NewToolbox(source SnapshotSource) *Toolbox {
	return &Toolbox{source: source}
}

var errUnknownTool = errors.New("unknown tool")

// Call runs the named tool and returns its plain-text report.
func (t *Toolbox) Call(ctx context.Context, startupID int64, name string, args map[string]any) (string, error) {
	switch name {
	case ToolFinancialSummary, ToolCustomerChurn, ToolBurnRate, ToolRunway, ToolCAC, ToolCustomerLTV, ToolHiringAffordability:
	default:
		return "", fmt.Errorf("%w %q", errUnknownTool, name)
	}

	snap, err := t.source.Snapshot(ctx, startupID)
	if err != nil {
		return "", fmt.Errorf("load financial data: %w", err)
	}

	switch name {
	case ToolFinancialSummary:
		return finance.Summarize(snap).Report(), nil

	case ToolCustomerChurn:
		a, err := finance.AnalyzeChurn(snap)
		if errors.Is(err, finance.ErrNoMonthlyData) {
			return "No monthly data available to analyze customer churn.", nil
		}
		if err != nil {
			return "", err
		}
		return a.Report(), nil

	case ToolBurnRate:
		return finance.ComputeBurnRate(snap).Report(), nil

	case ToolRunway:
		expense, err := decimalArg(args, "simulated_expense")
		if err != nil {
			return "", err
		}
		r, err := finance.ComputeRunway(snap, expense)
		if err != nil {
			return "", err
		}
		return r.Report(), nil

	case ToolCAC:
		c, err := finance.ComputeCAC(snap)
		if errors.Is(err, finance.ErrNoMonthlyData) {
			return "No monthly financial data available to compute CAC.", nil
		}
		if err != nil {
			return "", err
		}
		return c.Report(), nil

	case ToolCustomerLTV:
		l, err := finance.ComputeLTV(snap)
		if errors.Is(err, finance.ErrNoMonthlyData) {
			return "No monthly financial data available to compute LTV.", nil
		}
		if err != nil {
			return "", err
		}
		return l.Report(), nil

	default: // ToolHiringAffordability
		in, err := hiringInput(args)
		if err != nil {
			return "", err
		}
		h, err := finance.AnalyzeHiring(snap, in)
		if err != nil {
			return "", err
		}
		return h.Report(), nil
	}
}

func hiringInput(args map[string]any) (finance.HiringInput, error) {
	var in finance.HiringInput
	if role, ok := args["role"].(string); ok {
		in.Role = role
	}
	salary, err := decimalArg(args, "monthly_salary")
	if err != nil {
		return in, err
	}
	if salary == nil {
		role := in.Role
		if role == "" {
			role = "developer"
		}
		return in, fmt.Errorf("monthly salary must be provided for %s position, please specify the salary amount", role)
	}
	in.MonthlySalary = salary
	months, err := decimalArg(args, "months_ahead")
	if err != nil {
		return in, err
	}
	if months != nil {
		if !months.Equal(months.Truncate(0)) || months.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
			return in, fmt.Errorf("months_ahead must be a whole number")
		}
		n := int(months.IntPart())
		in.MonthsAhead = &n
	}
	return in, nil
}

// decimalArg reads an optional numeric argument. The model usually sends
// float64, but numeric strings like "50,000" are accepted too.
func decimalArg(args map[string]any, key string) (*decimal.Decimal, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	var d decimal.Decimal
	switch v := raw.(type) {
	case float64:
		d = decimal.NewFromFloat(v)
	case float32:
		d = decimal.NewFromFloat32(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case string:
		cleaned := strings.NewReplacer(",", "", "₱", "", " ", "").Replace(v)
		if cleaned == "" {
			return nil, nil
		}
		parsed, err := decimal.NewFromString(cleaned)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number, got %s", key, strconv.Quote(v))
		}
		d = parsed
	default:
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &d, nil
}
