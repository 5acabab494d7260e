package domain

import "time"

// HealthTag classifies the stock position of a planning row.
type HealthTag string

const (
	HealthDead    HealthTag = "Dead / No Sales"
	HealthAtRisk  HealthTag = "At Risk (Low Stock)"
	HealthExcess  HealthTag = "Excess / Slow"
	HealthHealthy HealthTag = "Healthy"
)

// PlanningRow is the computed replenishment plan for one entity group.
type PlanningRow struct {
	SKU                    string          `json:"sku"`
	Channel                FulfillmentType `json:"channel,omitempty"`
	Site                   string          `json:"site,omitempty"`
	TotalHistorySales      float64         `json:"total_history_sales"`
	HistoryWindowDays      int             `json:"history_window_days"`
	PlanningHorizonDays    int             `json:"planning_horizon_days"`
	AvgDailySale           float64         `json:"avg_daily_sale"`
	DemandStdDev           float64         `json:"demand_stddev"`
	SafetyStock            float64         `json:"safety_stock"`
	RequiredStock          float64         `json:"required_stock"`
	CurrentStock           float64         `json:"current_stock"`
	RecommendedDispatchQty float64         `json:"recommended_dispatch_qty"`
	DaysOfCover            float64         `json:"days_of_cover"`
	InfiniteCover          bool            `json:"infinite_cover"`
	HealthTag              HealthTag       `json:"health_tag"`
}

// Key returns the group key the row was computed for.
func (r PlanningRow) Key() GroupKey {
	return GroupKey{SKU: r.SKU, Channel: r.Channel, Site: r.Site}
}

// PlanningColumns lists the stable export column names of a PlanningRow.
func PlanningColumns() []string {
	return []string{
		"sku",
		"channel",
		"site",
		"total_history_sales",
		"history_window_days",
		"planning_horizon_days",
		"avg_daily_sale",
		"demand_stddev",
		"safety_stock",
		"required_stock",
		"current_stock",
		"recommended_dispatch_qty",
		"days_of_cover",
		"infinite_cover",
		"health_tag",
	}
}

// Record returns the row's values in PlanningColumns order.
func (r PlanningRow) Record() []interface{} {
	return []interface{}{
		r.SKU,
		string(r.Channel),
		r.Site,
		r.TotalHistorySales,
		r.HistoryWindowDays,
		r.PlanningHorizonDays,
		r.AvgDailySale,
		r.DemandStdDev,
		r.SafetyStock,
		r.RequiredStock,
		r.CurrentStock,
		r.RecommendedDispatchQty,
		r.DaysOfCover,
		r.InfiniteCover,
		string(r.HealthTag),
	}
}

// AllocationRow is one partition's share of a parent group's quantities.
type AllocationRow struct {
	Level                  string          `json:"level"`
	SKU                    string          `json:"sku"`
	Channel                FulfillmentType `json:"channel,omitempty"`
	Site                   string          `json:"site,omitempty"`
	Cluster                string          `json:"cluster,omitempty"`
	ParentRequiredStock    float64         `json:"parent_required_stock"`
	ParentDispatchQty      float64         `json:"parent_dispatch_qty"`
	PartitionHistorySales  float64         `json:"partition_history_sales"`
	DemandShare            float64         `json:"demand_share"`
	EqualSplit             bool            `json:"equal_split"`
	AllocatedRequiredStock int64           `json:"allocated_required_stock"`
	AllocatedDispatchQty   int64           `json:"allocated_dispatch_qty"`
}

func AllocationColumns() []string {
	return []string{
		"level",
		"sku",
		"channel",
		"site",
		"cluster",
		"parent_required_stock",
		"parent_dispatch_qty",
		"partition_history_sales",
		"demand_share",
		"equal_split",
		"allocated_required_stock",
		"allocated_dispatch_qty",
	}
}

func (r AllocationRow) Record() []interface{} {
	return []interface{}{
		r.Level,
		r.SKU,
		string(r.Channel),
		r.Site,
		r.Cluster,
		r.ParentRequiredStock,
		r.ParentDispatchQty,
		r.PartitionHistorySales,
		r.DemandShare,
		r.EqualSplit,
		r.AllocatedRequiredStock,
		r.AllocatedDispatchQty,
	}
}

// SummaryRow is one line of a units breakdown (by region, city or channel).
type SummaryRow struct {
	Label string  `json:"label"`
	Units float64 `json:"units"`
	Share float64 `json:"share"`
}

func SummaryColumns(label string) []string {
	return []string{label, "units", "share"}
}

func (r SummaryRow) Record() []interface{} {
	return []interface{}{r.Label, r.Units, r.Share}
}

// InactiveSKU is a SKU whose last sale is older than the inactivity threshold.
type InactiveSKU struct {
	SKU               string    `json:"sku"`
	LastSaleDate      time.Time `json:"last_sale_date"`
	DaysSinceLastSale int       `json:"days_since_last_sale"`
	CurrentStock      float64   `json:"current_stock"`
}

func InactiveColumns() []string {
	return []string{"sku", "last_sale_date", "days_since_last_sale", "current_stock"}
}

func (r InactiveSKU) Record() []interface{} {
	return []interface{}{r.SKU, r.LastSaleDate.Format("2006-01-02"), r.DaysSinceLastSale, r.CurrentStock}
}

func LedgerColumns() []string {
	return []string{"sku", "as_of_date", "ending_balance", "origin_region", "warehouse_code", "fulfillment_type"}
}

// LedgerRecord renders a snapshot for audit display.
func LedgerRecord(s InventorySnapshot) []interface{} {
	date := ""
	if s.Dated() {
		date = s.AsOf.Format("2006-01-02")
	}
	return []interface{}{s.SKU, date, s.EndingBalance, s.OriginRegion, s.WarehouseCode, string(s.Fulfillment)}
}

// ExecutiveSummary holds the headline figures of a planning run.
type ExecutiveSummary struct {
	RunID               string    `json:"run_id"`
	GeneratedAt         time.Time `json:"generated_at"`
	SKUCount            int       `json:"sku_count"`
	TotalUnitsSold      float64   `json:"total_units_sold"`
	AvgDailySales       float64   `json:"avg_daily_sales"`
	HorizonForecast     float64   `json:"horizon_forecast"`
	RecommendedStock    float64   `json:"recommended_stock"`
	CurrentStock        float64   `json:"current_stock"`
	RecommendedDispatch float64   `json:"recommended_dispatch"`
	PlanningHorizonDays int       `json:"planning_horizon_days"`
	ServiceLevel        int       `json:"service_level"`
	ZValue              float64   `json:"z_value"`
}

// Diagnostics carries the locally absorbed anomalies of a run.
type Diagnostics struct {
	SalesRowsRead         int       `json:"sales_rows_read"`
	SalesRowsUsed         int       `json:"sales_rows_used"`
	SalesDroppedBadDate   int       `json:"sales_dropped_bad_date"`
	SalesDroppedBlankSKU  int       `json:"sales_dropped_blank_sku"`
	QuantityCoerced       int       `json:"quantity_coerced"`
	InventoryRowsRead     int       `json:"inventory_rows_read"`
	InventoryDroppedBlank int       `json:"inventory_dropped_blank_sku"`
	BalanceCoerced        int       `json:"balance_coerced"`
	InventoryUndated      int       `json:"inventory_undated"`
	RequestedWindowDays   int       `json:"requested_window_days"`
	EffectiveWindowDays   int       `json:"effective_window_days"`
	WindowStart           time.Time `json:"window_start"`
	WindowEnd             time.Time `json:"window_end"`
	WindowFallback        bool      `json:"window_fallback"`
	SKUsWithoutInventory  int       `json:"skus_without_inventory"`
}

// Report is the full set of named output tables of one planning run.
type Report struct {
	Summary           ExecutiveSummary    `json:"summary"`
	Plan              []PlanningRow       `json:"plan"`
	ChannelPlan       []PlanningRow       `json:"channel_plan"`
	SitePlan          []PlanningRow       `json:"site_plan"`
	ChannelAllocation []AllocationRow     `json:"channel_allocation"`
	SiteAllocation    []AllocationRow     `json:"site_allocation"`
	ClusterAllocation []AllocationRow     `json:"cluster_allocation"`
	DeadStock         []PlanningRow       `json:"dead_stock"`
	SlowMoving        []PlanningRow       `json:"slow_moving"`
	Excess            []PlanningRow       `json:"excess"`
	InactiveSKUs      []InactiveSKU       `json:"inactive_skus"`
	ShipToSummary     []SummaryRow        `json:"ship_to_summary"`
	ShipFromSummary   []SummaryRow        `json:"ship_from_summary"`
	ChannelSummary    []SummaryRow        `json:"channel_summary"`
	TopCities         []SummaryRow        `json:"top_cities"`
	Ledger            []InventorySnapshot `json:"ledger"`
	Diagnostics       Diagnostics         `json:"diagnostics"`
}

// ChannelPlans splits the channel-level plan into one table per channel.
func (r *Report) ChannelPlans() map[FulfillmentType][]PlanningRow {
	out := make(map[FulfillmentType][]PlanningRow)
	for _, row := range r.ChannelPlan {
		out[row.Channel] = append(out[row.Channel], row)
	}
	return out
}
