package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

func sampleReport() *domain.Report {
	plan := []domain.PlanningRow{
		{SKU: "A", TotalHistorySales: 30, HistoryWindowDays: 15, PlanningHorizonDays: 30, AvgDailySale: 2,
			SafetyStock: 63.904, RequiredStock: 123.904, CurrentStock: 10, RecommendedDispatchQty: 113.904,
			DaysOfCover: 5, HealthTag: domain.HealthAtRisk},
	}
	return &domain.Report{
		Summary: domain.ExecutiveSummary{RunID: "run-1", SKUCount: 1, TotalUnitsSold: 12345, ServiceLevel: 95, ZValue: 1.65},
		Plan:    plan,
		ChannelPlan: []domain.PlanningRow{
			{SKU: "A", Channel: domain.FulfillmentFBA, RequiredStock: 100},
			{SKU: "A", Channel: domain.FulfillmentFBM, RequiredStock: 23.9},
		},
		ChannelAllocation: []domain.AllocationRow{
			{Level: "channel", SKU: "A", Channel: domain.FulfillmentFBA, DemandShare: 0.8, AllocatedRequiredStock: 99},
		},
		ShipToSummary: []domain.SummaryRow{{Label: "KARNATAKA", Units: 30, Share: 1}},
		Ledger: []domain.InventorySnapshot{
			{SKU: "A", AsOf: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), EndingBalance: 10, Fulfillment: domain.FulfillmentFBA},
		},
	}
}

func TestSheets(t *testing.T) {
	t.Parallel()

	sheets := Sheets(sampleReport())
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}

	assert.Equal(t, "SKU Plan", names[0])
	assert.Equal(t, "FBA Plan", names[1])
	assert.Equal(t, "FBM Plan", names[2])
	assert.Contains(t, names, "Cluster Allocation")
	assert.Contains(t, names, "Inventory Ledger")
	assert.Equal(t, domain.PlanningColumns(), sheets[0].Header)
	assert.Len(t, sheets[1].Rows, 1)
}

func TestWriteWorkbook(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	b := Branding{BrandName: "Acme", GeneratedAt: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, WriteWorkbook(&buf, sampleReport(), b))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	list := f.GetSheetList()
	require.NotEmpty(t, list)
	assert.Equal(t, "Executive Summary", list[0])
	assert.Equal(t, "Branding", list[len(list)-1])

	v, err := f.GetCellValue("Executive Summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "12,345", v)

	v, err = f.GetCellValue("SKU Plan", "J2")
	require.NoError(t, err)
	assert.Equal(t, "123.9", v)

	v, err = f.GetCellValue("Branding", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Acme", v)

	assert.Equal(t, "acme_inventory_plan_20240201_100000.xlsx", WorkbookName(b))
}

func TestWriteCSVDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteCSVDir(dir, Sheets(sampleReport()))
	require.NoError(t, err)
	assert.Contains(t, paths, filepath.Join(dir, "sku_plan.csv"))

	f, err := os.Open(filepath.Join(dir, "sku_plan.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.PlanningColumns(), records[0])
	assert.Equal(t, "A", records[1][0])
	assert.Equal(t, "123.9", records[1][9])
	assert.Equal(t, "false", records[1][13])
	assert.Equal(t, string(domain.HealthAtRisk), records[1][14])
}

func TestSheetName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "AMAZON-IN Plan", sheetName("AMAZON/IN Plan"))
	assert.Len(t, sheetName("a very long sheet name that keeps going"), 31)
	assert.Equal(t, "top_cities", fileSlug("Top Cities"))
}
