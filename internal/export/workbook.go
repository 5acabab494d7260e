package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

const (
	summarySheetName  = "Executive Summary"
	brandingSheetName = "Branding"
)

// Branding is the presentation metadata stamped on an exported workbook.
type Branding struct {
	BrandName   string
	GeneratedAt time.Time
}

// WorkbookName returns the download file name of a report workbook.
func WorkbookName(b Branding) string {
	brand := strings.TrimSpace(b.BrandName)
	if brand == "" {
		brand = "fba"
	}
	brand = strings.ReplaceAll(strings.ToLower(brand), " ", "_")
	return fmt.Sprintf("%s_inventory_plan_%s.xlsx", brand, b.GeneratedAt.Format("20060102_150405"))
}

// WriteWorkbook renders the report as an XLSX workbook: the executive
// summary first, one sheet per table, then the branding sheet.
func WriteWorkbook(w io.Writer, r *domain.Report, b Branding) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheetName); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E78"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, r, headerStyle); err != nil {
		return err
	}
	for _, s := range Sheets(r) {
		if err := writeSheet(f, s, headerStyle); err != nil {
			return err
		}
	}
	if err := writeBranding(f, b, headerStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, r *domain.Report, headerStyle int) error {
	s := r.Summary
	d := r.Diagnostics
	rows := [][]interface{}{
		{"metric", "value"},
		{"Run ID", s.RunID},
		{"SKUs", units(float64(s.SKUCount))},
		{"Total units sold", units(s.TotalUnitsSold)},
		{"Average daily sales", fractional(s.AvgDailySales)},
		{fmt.Sprintf("%d-day forecast", s.PlanningHorizonDays), units(s.HorizonForecast)},
		{"Recommended stock", units(s.RecommendedStock)},
		{"Current stock", units(s.CurrentStock)},
		{"Recommended dispatch", units(s.RecommendedDispatch)},
		{"Service level", fmt.Sprintf("%d%% (z = %.2f)", s.ServiceLevel, s.ZValue)},
		{"History window (days)", d.EffectiveWindowDays},
		{"Window fallback to full history", d.WindowFallback},
		{"Sales rows dropped (bad date)", d.SalesDroppedBadDate},
		{"Sales rows dropped (blank SKU)", d.SalesDroppedBlankSKU},
		{"Quantities coerced to 0", d.QuantityCoerced},
		{"Balances coerced to 0", d.BalanceCoerced},
		{"SKUs without inventory", d.SKUsWithoutInventory},
	}
	if err := setRows(f, summarySheetName, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheetName, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}
	return f.SetColWidth(summarySheetName, "A", "B", 34)
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	name := sheetName(s.Name)
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	rows := make([][]interface{}, 0, len(s.Rows)+1)
	header := make([]interface{}, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	rows = append(rows, header)
	for _, record := range s.Rows {
		row := make([]interface{}, len(record))
		for i, v := range record {
			row[i] = cellValue(v)
		}
		rows = append(rows, row)
	}
	if err := setRows(f, name, rows); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(s.Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", name, err)
	}
	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeBranding(f *excelize.File, b Branding, headerStyle int) error {
	if _, err := f.NewSheet(brandingSheetName); err != nil {
		return fmt.Errorf("failed to create branding sheet: %w", err)
	}
	rows := [][]interface{}{
		{"field", "value"},
		{"Brand", b.BrandName},
		{"Report", "FBA inventory planning"},
		{"Generated at", b.GeneratedAt.UTC().Format(time.RFC3339)},
	}
	if err := setRows(f, brandingSheetName, rows); err != nil {
		return err
	}
	return f.SetCellStyle(brandingSheetName, "A1", "B1", headerStyle)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
