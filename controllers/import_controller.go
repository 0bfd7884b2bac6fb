package controllers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"cashflow-guardian/backend/logger"
	"cashflow-guardian/backend/models"
)

const maxUploadBytes = 10 << 20

// importColumns lists, per field, the header names accepted for it. Exact
// matches win over substring matches.
var importColumns = []struct {
	field    string
	keywords []string
	required bool
}{
	{"date", []string{"date", "month", "period"}, true},
	{"revenue", []string{"revenue", "sales", "income"}, true},
	{"product_dev_expenses", []string{"product_dev_expenses", "product dev", "product development", "product"}, false},
	{"manpower_expenses", []string{"manpower_expenses", "manpower", "salaries", "payroll"}, false},
	{"marketing_expenses", []string{"marketing_expenses", "marketing"}, false},
	{"operations_expenses", []string{"operations_expenses", "operations", "opex"}, false},
	{"other_expenses", []string{"other_expenses", "other"}, false},
	{"new_customers", []string{"new_customers", "new customers", "new"}, false},
	{"active_customers", []string{"active_customers", "active customers", "active"}, false},
}

type rowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportMonthly upserts every month in an uploaded CSV or XLSX file. Either
// all rows are written or, when any row is invalid, none are.
func ImportMonthly(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file (field 'file')"})
			return
		}
		defer file.Close()

		buf, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
			return
		}
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".csv" && ext != ".xlsx" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type; use .csv or .xlsx"})
			return
		}
		rows, err := readAllRows(buf, ext)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse file: " + err.Error()})
			return
		}

		records, rowErrs, err := parseMonthlyRows(rows, startupID(c))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(rowErrs) > 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid rows; nothing was imported", "rows": rowErrs})
			return
		}

		ctx, cancel := requestContext(c, 30*time.Second)
		defer cancel()
		if err := store.UpsertMonthlyBatch(ctx, records); err != nil {
			log.Error("monthly import failed", logger.ErrorType(logger.ImportError),
				zap.String("file_name", header.Filename), zap.Error(err))
			storeError(c, log, err, "startup not found")
			return
		}
		months := make([]string, len(records))
		for i, r := range records {
			months[i] = r.Date.Format("2006-01")
		}
		c.JSON(http.StatusOK, gin.H{"imported": len(records), "months": months, "file_name": header.Filename})
	}
}

// ExportMonthly downloads the monthly rows as an XLSX workbook.
func ExportMonthly(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 10*time.Second)
		defer cancel()
		months, err := store.ListMonthly(ctx, startupID(c))
		if err != nil {
			storeError(c, log, err, "no monthly data")
			return
		}

		f, err := monthlyWorkbook(months)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build workbook"})
			return
		}
		defer f.Close()

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="monthly_financial_data.xlsx"`)
		c.Status(http.StatusOK)
		if err := f.Write(c.Writer); err != nil {
			log.Warn("export write failed", zap.Error(err))
		}
	}
}

const exportSheet = "Monthly"

func monthlyWorkbook(months []models.MonthlyRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}
	header := make([]any, len(importColumns))
	for i, col := range importColumns {
		header[i] = col.field
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	for i, m := range months {
		row := []any{
			m.Date.Format("2006-01"),
			m.Revenue.InexactFloat64(),
			m.ProductDevExpenses.InexactFloat64(),
			m.ManpowerExpenses.InexactFloat64(),
			m.MarketingExpenses.InexactFloat64(),
			m.OperationsExpenses.InexactFloat64(),
			m.OtherExpenses.InexactFloat64(),
			m.NewCustomers,
			m.ActiveCustomers,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// -------------------- File reading helpers --------------------

func readAllRows(content []byte, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(content))
		r.FieldsPerRecord = -1 // allow variable columns
		r.TrimLeadingSpace = true
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return [][]string{}, nil
		}
		rs, err := f.Rows(sheets[0])
		if err != nil {
			return nil, err
		}
		defer rs.Close()
		rows := [][]string{}
		for rs.Next() {
			r, err := rs.Columns()
			if err != nil {
				return nil, err
			}
			rows = append(rows, r)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported extension %s", ext)
	}
}

// parseMonthlyRows finds the header row, maps its columns and converts every
// following non-blank row. Row numbers in errors are 1-based file rows.
func parseMonthlyRows(rows [][]string, startupID int64) ([]models.MonthlyRecord, []rowError, error) {
	headerIdx, colIdx := -1, map[string]int{}
	for i, r := range rows {
		if idx, ok := mapColumns(r); ok {
			headerIdx, colIdx = i, idx
			break
		}
	}
	if headerIdx < 0 {
		return nil, nil, errors.New("could not find a header row with date and revenue columns")
	}

	var (
		records []models.MonthlyRecord
		errs    []rowError
	)
	for i := headerIdx + 1; i < len(rows); i++ {
		r := rows[i]
		if isBlankRow(r) {
			continue
		}
		cell := func(field string) string {
			j, ok := colIdx[field]
			if !ok || j >= len(r) {
				return ""
			}
			return strings.TrimSpace(r[j])
		}
		req, err := monthlyRequestFromRow(cell)
		if err == nil {
			err = req.Validate()
		}
		if err != nil {
			errs = append(errs, rowError{Row: i + 1, Error: err.Error()})
			continue
		}
		records = append(records, req.ToModel(startupID))
	}
	if len(records) == 0 && len(errs) == 0 {
		return nil, nil, errors.New("file has no data rows")
	}
	return records, errs, nil
}

func mapColumns(header []string) (map[string]int, bool) {
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	out := map[string]int{}
	taken := map[int]bool{}
	for _, col := range importColumns {
		j := pickColumn(headers, col.keywords, taken)
		if j < 0 {
			if col.required {
				return nil, false
			}
			continue
		}
		out[col.field] = j
		taken[j] = true
	}
	return out, true
}

func pickColumn(headers []string, keywords []string, taken map[int]bool) int {
	// exact match preferred
	for _, k := range keywords {
		for i, h := range headers {
			if !taken[i] && h == k {
				return i
			}
		}
	}
	// substring fallback
	for _, k := range keywords {
		for i, h := range headers {
			if !taken[i] && h != "" && strings.Contains(h, k) {
				return i
			}
		}
	}
	return -1
}

func monthlyRequestFromRow(cell func(string) string) (models.MonthlyRequest, error) {
	month, err := parseImportMonth(cell("date"))
	if err != nil {
		return models.MonthlyRequest{}, err
	}
	req := models.MonthlyRequest{Date: month.Format("2006-01")}
	amounts := []struct {
		field string
		dst   *decimal.Decimal
	}{
		{"revenue", &req.Revenue},
		{"product_dev_expenses", &req.ProductDevExpenses},
		{"manpower_expenses", &req.ManpowerExpenses},
		{"marketing_expenses", &req.MarketingExpenses},
		{"operations_expenses", &req.OperationsExpenses},
		{"other_expenses", &req.OtherExpenses},
	}
	for _, a := range amounts {
		if *a.dst, err = toAmount(cell(a.field)); err != nil {
			return req, fmt.Errorf("%s: %w", a.field, err)
		}
	}
	if req.NewCustomers, err = toCount(cell("new_customers")); err != nil {
		return req, fmt.Errorf("new_customers: %w", err)
	}
	if req.ActiveCustomers, err = toCount(cell("active_customers")); err != nil {
		return req, fmt.Errorf("active_customers: %w", err)
	}
	return req, nil
}

var importMonthLayouts = []string{"2006/01/02", "1/2/2006", "01-02-06", "1-2-06", "Jan 2006", "January 2006", "Jan-06", "2006/01"}

func parseImportMonth(s string) (time.Time, error) {
	if t, err := models.ParseMonth(s); err == nil {
		return t, nil
	}
	for _, layout := range importMonthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.MonthStart(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// amountDecoration is stripped before parsing so "₱1,200.50" reads as 1200.50.
var amountDecoration = strings.NewReplacer("₱", "", "PHP", "", "Php", "", ",", "", " ", "", "\u00a0", "")

// toAmount parses a money cell strictly once currency symbols and thousands
// separators are removed. A blank cell is zero.
func toAmount(s string) (decimal.Decimal, error) {
	t := strings.TrimSpace(s)
	if t == "" || t == "-" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(amountDecoration.Replace(t))
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	return d, nil
}

func toCount(s string) (int, error) {
	d, err := toAmount(s)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	n, err := strconv.Atoi(d.String())
	if err != nil {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	return n, nil
}

func isBlankRow(r []string) bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
