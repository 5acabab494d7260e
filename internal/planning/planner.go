package planning

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

// ErrInvalidParams is wrapped by every parameter validation failure.
var ErrInvalidParams = errors.New("invalid planning params")

const (
	DefaultHorizonDays    = 30
	DefaultServiceLevel   = ServiceLevel95
	DefaultSlowMovingDays = 90
	DefaultInactiveDays   = 60
	DefaultTopCities      = 20
)

// Params are the resolved interactive controls of one planning run. Apart
// from WindowDays, a zero field means "use the default" (see WithDefaults),
// so a zero slow-moving or inactive threshold and an unlimited top-cities
// table are not expressible.
type Params struct {
	HorizonDays    int          `json:"horizon_days"`
	ServiceLevel   ServiceLevel `json:"service_level"`
	WindowDays     int          `json:"window_days"` // FullHistory (0) or a rolling window
	SlowMovingDays int          `json:"slow_moving_days"`
	InactiveDays   int          `json:"inactive_days"`
	TopCities      int          `json:"top_cities"`
}

// DefaultParams returns the stock planning controls.
func DefaultParams() Params {
	return Params{
		HorizonDays:    DefaultHorizonDays,
		ServiceLevel:   DefaultServiceLevel,
		WindowDays:     FullHistory,
		SlowMovingDays: DefaultSlowMovingDays,
		InactiveDays:   DefaultInactiveDays,
		TopCities:      DefaultTopCities,
	}
}

// WithDefaults fills unset (zero) fields from DefaultParams. WindowDays is
// left alone since zero already means full history.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.HorizonDays == 0 {
		p.HorizonDays = d.HorizonDays
	}
	if p.ServiceLevel == 0 {
		p.ServiceLevel = d.ServiceLevel
	}
	if p.SlowMovingDays == 0 {
		p.SlowMovingDays = d.SlowMovingDays
	}
	if p.InactiveDays == 0 {
		p.InactiveDays = d.InactiveDays
	}
	if p.TopCities == 0 {
		p.TopCities = d.TopCities
	}
	return p
}

// Validate rejects controls the planner cannot run with.
func (p Params) Validate() error {
	if p.HorizonDays < 1 {
		return fmt.Errorf("%w: planning horizon must be at least 1 day, got %d", ErrInvalidParams, p.HorizonDays)
	}
	if p.WindowDays < 0 {
		return fmt.Errorf("%w: window must be 0 (full history) or positive, got %d", ErrInvalidParams, p.WindowDays)
	}
	if p.SlowMovingDays < 0 || p.InactiveDays < 0 || p.TopCities < 0 {
		return fmt.Errorf("%w: thresholds must not be negative", ErrInvalidParams)
	}
	if _, err := p.ServiceLevel.ZScore(); err != nil {
		return err
	}
	return nil
}

// Planner runs the demand and replenishment pipeline. It holds only
// immutable configuration, so one Planner may serve concurrent runs.
type Planner struct {
	lookups    Lookups
	hierarchy  Hierarchy
	normalizer *Normalizer
	now        func() time.Time
}

// NewPlanner creates a planner. A nil hierarchy uses DefaultHierarchy and a
// nil normalizer uses the default inventory key preference.
func NewPlanner(lookups Lookups, hierarchy Hierarchy, normalizer *Normalizer) (*Planner, error) {
	if hierarchy == nil {
		hierarchy = DefaultHierarchy()
	}
	if err := hierarchy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid planning hierarchy: %w", err)
	}
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &Planner{
		lookups:    lookups,
		hierarchy:  hierarchy,
		normalizer: normalizer,
		now:        time.Now,
	}, nil
}

type levelResult struct {
	demand map[domain.GroupKey]*DemandGroup
	stock  map[domain.GroupKey]float64
	rows   []domain.PlanningRow
}

// Plan computes the full report for one sales table and one inventory table.
// A missing mandatory column fails with *domain.SchemaError; every other
// anomaly is absorbed and counted in the report diagnostics.
func (p *Planner) Plan(sales, inventory Table, params Params) (*domain.Report, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	z, _ := params.ServiceLevel.ZScore()

	salesRes, err := p.normalizer.NormalizeSales(sales)
	if err != nil {
		return nil, err
	}
	invRes, err := p.normalizer.NormalizeInventory(inventory)
	if err != nil {
		return nil, err
	}

	window := SelectWindow(salesRes.Records, params.WindowDays)
	latest := LatestSnapshots(invRes.Snapshots)
	calc := NewReplenishmentCalculator(params.HorizonDays, z)

	levels := make([]levelResult, len(p.hierarchy))
	for i, lvl := range p.hierarchy {
		demand := AggregateDemand(window.Records, lvl.Grouping, p.lookups)
		stock := StockByGroup(latest, lvl.Grouping, p.lookups)
		levels[i] = levelResult{
			demand: demand,
			stock:  stock,
			rows:   planLevel(calc, window.Days, demand, stock),
		}
	}

	report := &domain.Report{
		Ledger: invRes.Snapshots,
	}
	report.Plan = levels[0].rows
	if len(levels) > 1 {
		report.ChannelPlan = levels[1].rows
	}
	if len(levels) > 2 {
		report.SitePlan = levels[2].rows
	}

	for i := 1; i < len(levels); i++ {
		rows := allocate(allocationLevel{
			name:   p.hierarchy[i].Name,
			parent: p.hierarchy[i-1].Grouping,
			child:  p.hierarchy[i].Grouping,
		}, levels[i-1].rows, levels[i].demand, levels[i].stock)
		switch i {
		case 1:
			report.ChannelAllocation = rows
		case 2:
			report.SiteAllocation = rows
		}
	}

	top := p.hierarchy[0].Grouping
	clusterGrouping := append(append(Grouping{}, top...), DimCluster)
	report.ClusterAllocation = allocate(allocationLevel{
		name:   "cluster",
		parent: top,
		child:  clusterGrouping,
	}, levels[0].rows, AggregateDemand(window.Records, clusterGrouping, p.lookups), nil)

	report.DeadStock, report.SlowMoving, report.Excess = riskTables(report.Plan, params)
	report.InactiveSKUs = inactiveSKUs(salesRes.Records, levels[0].stock, params.InactiveDays)
	report.ShipToSummary = summarize(salesRes.Records, func(r domain.SalesRecord) string { return r.DestinationRegion }, 0)
	report.ShipFromSummary = summarize(salesRes.Records, func(r domain.SalesRecord) string { return r.OriginRegion }, 0)
	report.ChannelSummary = summarize(salesRes.Records, func(r domain.SalesRecord) string { return string(r.Fulfillment) }, 0)
	report.TopCities = summarize(salesRes.Records, func(r domain.SalesRecord) string { return r.DestinationCity }, params.TopCities)

	missing := 0
	for key := range levels[0].demand {
		if _, ok := levels[0].stock[key]; !ok {
			missing++
		}
	}

	report.Diagnostics = domain.Diagnostics{
		SalesRowsRead:         salesRes.RowsRead,
		SalesRowsUsed:         len(window.Records),
		SalesDroppedBadDate:   salesRes.DroppedBadDate,
		SalesDroppedBlankSKU:  salesRes.DroppedBlankSKU,
		QuantityCoerced:       salesRes.QuantityCoerced,
		InventoryRowsRead:     invRes.RowsRead,
		InventoryDroppedBlank: invRes.DroppedBlankSKU,
		BalanceCoerced:        invRes.BalanceCoerced,
		InventoryUndated:      invRes.Undated,
		RequestedWindowDays:   window.RequestedDays,
		EffectiveWindowDays:   window.Days,
		WindowStart:           window.Start,
		WindowEnd:             window.End,
		WindowFallback:        window.FellBack,
		SKUsWithoutInventory:  missing,
	}
	report.Summary = p.summarize(report, salesRes.Records, window, params, z)

	logRun(report, invRes.KeyField)
	return report, nil
}

// planLevel computes one row per group seen in either demand or stock.
func planLevel(
	calc *ReplenishmentCalculator,
	windowDays int,
	demand map[domain.GroupKey]*DemandGroup,
	stock map[domain.GroupKey]float64,
) []domain.PlanningRow {
	keys := make(map[domain.GroupKey]struct{}, len(demand)+len(stock))
	for k := range demand {
		keys[k] = struct{}{}
	}
	for k := range stock {
		keys[k] = struct{}{}
	}

	rows := make([]domain.PlanningRow, 0, len(keys))
	for key := range keys {
		in := ReplenishmentInput{
			HistoryWindowDays: windowDays,
			CurrentStock:      stock[key],
		}
		if g, ok := demand[key]; ok {
			in.TotalHistorySales = g.Total
			in.DemandStdDev = SampleStdDev(g.Series())
		}

		row := calc.Calculate(in)
		row.SKU = key.SKU
		row.Channel = key.Channel
		row.Site = key.Site
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return keyLess(rows[i].Key(), rows[j].Key()) })
	return rows
}

func (p *Planner) summarize(
	report *domain.Report,
	records []domain.SalesRecord,
	window WindowSelection,
	params Params,
	z float64,
) domain.ExecutiveSummary {
	s := domain.ExecutiveSummary{
		RunID:               uuid.NewString(),
		GeneratedAt:         p.now().UTC(),
		SKUCount:            len(report.Plan),
		PlanningHorizonDays: params.HorizonDays,
		ServiceLevel:        int(params.ServiceLevel),
		ZValue:              z,
	}
	for _, r := range records {
		s.TotalUnitsSold += r.Quantity
	}

	var windowUnits float64
	for _, row := range report.Plan {
		windowUnits += row.TotalHistorySales
		s.RecommendedStock += row.RequiredStock
		s.CurrentStock += row.CurrentStock
		s.RecommendedDispatch += row.RecommendedDispatchQty
	}
	s.AvgDailySales = windowUnits / float64(window.Days)
	s.HorizonForecast = s.AvgDailySales * float64(params.HorizonDays)
	return s
}

func logRun(report *domain.Report, keyField Field) {
	d := report.Diagnostics
	log.Info().
		Str("run_id", report.Summary.RunID).
		Int("sales_rows", d.SalesRowsRead).
		Int("sales_rows_used", d.SalesRowsUsed).
		Int("inventory_rows", d.InventoryRowsRead).
		Str("inventory_key", string(keyField)).
		Int("skus", report.Summary.SKUCount).
		Int("window_days", d.EffectiveWindowDays).
		Msg("planning run complete")

	if dropped := d.SalesDroppedBadDate + d.SalesDroppedBlankSKU + d.InventoryDroppedBlank; dropped > 0 ||
		d.QuantityCoerced > 0 || d.BalanceCoerced > 0 {
		log.Warn().
			Str("run_id", report.Summary.RunID).
			Int("sales_dropped_bad_date", d.SalesDroppedBadDate).
			Int("sales_dropped_blank_sku", d.SalesDroppedBlankSKU).
			Int("inventory_dropped_blank_sku", d.InventoryDroppedBlank).
			Int("quantity_coerced", d.QuantityCoerced).
			Int("balance_coerced", d.BalanceCoerced).
			Msg("malformed input cells were coerced or dropped")
	}
	if d.WindowFallback {
		log.Warn().
			Str("run_id", report.Summary.RunID).
			Int("requested_window_days", d.RequestedWindowDays).
			Int("effective_window_days", d.EffectiveWindowDays).
			Msg("requested window had no sales, used full history")
	}
}
