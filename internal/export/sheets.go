package export

import (
	"sort"
	"strings"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

// Sheet is one named output table ready to be rendered.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// Sheets lists the tables of a report in presentation order. The channel
// plan is split into one sheet per channel.
func Sheets(r *domain.Report) []Sheet {
	sheets := []Sheet{planSheet("SKU Plan", r.Plan)}

	byChannel := r.ChannelPlans()
	channels := make([]string, 0, len(byChannel))
	for ch := range byChannel {
		channels = append(channels, string(ch))
	}
	sort.Strings(channels)
	for _, ch := range channels {
		sheets = append(sheets, planSheet(ch+" Plan", byChannel[domain.FulfillmentType(ch)]))
	}

	sheets = append(sheets,
		planSheet("Site Plan", r.SitePlan),
		allocationSheet("Channel Allocation", r.ChannelAllocation),
		allocationSheet("Site Allocation", r.SiteAllocation),
		allocationSheet("Cluster Allocation", r.ClusterAllocation),
		planSheet("Dead Stock", r.DeadStock),
		planSheet("Slow Moving", r.SlowMoving),
		planSheet("Excess", r.Excess),
		inactiveSheet(r.InactiveSKUs),
		summarySheet("Ship To Summary", "ship_to_state", r.ShipToSummary),
		summarySheet("Ship From Summary", "ship_from_state", r.ShipFromSummary),
		summarySheet("Channel Summary", "channel", r.ChannelSummary),
		summarySheet("Top Cities", "ship_to_city", r.TopCities),
		ledgerSheet(r.Ledger),
	)
	return sheets
}

func planSheet(name string, rows []domain.PlanningRow) Sheet {
	s := Sheet{Name: name, Header: domain.PlanningColumns()}
	for _, row := range rows {
		s.Rows = append(s.Rows, row.Record())
	}
	return s
}

func allocationSheet(name string, rows []domain.AllocationRow) Sheet {
	s := Sheet{Name: name, Header: domain.AllocationColumns()}
	for _, row := range rows {
		s.Rows = append(s.Rows, row.Record())
	}
	return s
}

func inactiveSheet(rows []domain.InactiveSKU) Sheet {
	s := Sheet{Name: "Inactive SKUs", Header: domain.InactiveColumns()}
	for _, row := range rows {
		s.Rows = append(s.Rows, row.Record())
	}
	return s
}

func summarySheet(name, label string, rows []domain.SummaryRow) Sheet {
	s := Sheet{Name: name, Header: domain.SummaryColumns(label)}
	for _, row := range rows {
		s.Rows = append(s.Rows, row.Record())
	}
	return s
}

func ledgerSheet(snapshots []domain.InventorySnapshot) Sheet {
	s := Sheet{Name: "Inventory Ledger", Header: domain.LedgerColumns()}
	for _, snap := range snapshots {
		s.Rows = append(s.Rows, domain.LedgerRecord(snap))
	}
	return s
}

var sheetNameSanitizer = strings.NewReplacer(
	"[", "", "]", "", ":", "", "*", "", "?", "", "/", "-", "\\", "-",
)

// sheetName makes name acceptable as a worksheet title.
func sheetName(name string) string {
	name = sheetNameSanitizer.Replace(name)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// fileSlug turns a sheet name into a file name stem.
func fileSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(sheetName(name)), " ", "_")
}
