package planning

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

// fulfillmentCodes maps vendor fulfillment codes to the normalized channel.
var fulfillmentCodes = map[string]domain.FulfillmentType{
	"AFN":       domain.FulfillmentFBA,
	"AMAZON":    domain.FulfillmentFBA,
	"AMAZON_IN": domain.FulfillmentFBA,
	"AMAZON.IN": domain.FulfillmentFBA,
	"FBA":       domain.FulfillmentFBA,
	"MFN":       domain.FulfillmentFBM,
	"MERCHANT":  domain.FulfillmentFBM,
	"SELLER":    domain.FulfillmentFBM,
	"FBM":       domain.FulfillmentFBM,
	"EASY SHIP": domain.FulfillmentFBM,
	"EASYSHIP":  domain.FulfillmentFBM,
	"SELF SHIP": domain.FulfillmentFBM,
	"SELFSHIP":  domain.FulfillmentFBM,
}

// DefaultChannel is the channel of every row of a table that carries no
// fulfillment column at all. Sales and inventory share it so that the two
// tables still meet at channel granularity.
const DefaultChannel = domain.FulfillmentFBA

// MapFulfillment normalizes a raw fulfillment value. Blank values map to
// fallback; unknown codes pass through uppercased.
func MapFulfillment(raw string, fallback domain.FulfillmentType) domain.FulfillmentType {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return fallback
	}
	if ft, ok := fulfillmentCodes[code]; ok {
		return ft
	}
	return domain.FulfillmentType(code)
}

// SalesResult holds normalized sales rows and the counts of cells that had
// to be coerced or rows that had to be dropped.
type SalesResult struct {
	Records         []domain.SalesRecord
	RowsRead        int
	DroppedBadDate  int
	DroppedBlankSKU int
	QuantityCoerced int
}

// InventoryResult holds normalized ledger rows and their parse counters.
type InventoryResult struct {
	Snapshots       []domain.InventorySnapshot
	KeyField        Field
	RowsRead        int
	DroppedBlankSKU int
	BalanceCoerced  int
	Undated         int
}

// Normalizer coerces raw tables into typed records.
type Normalizer struct {
	inventoryKeys []Field
}

// NewNormalizer creates a normalizer. An empty key preference falls back to
// DefaultInventoryKeys (ASIN, then MSKU, then SKU).
func NewNormalizer(inventoryKeys []Field) *Normalizer {
	if len(inventoryKeys) == 0 {
		inventoryKeys = DefaultInventoryKeys
	}
	return &Normalizer{inventoryKeys: inventoryKeys}
}

// NormalizeSales types the sales table. Rows without a parseable shipment
// date or without a SKU are dropped and counted.
func (n *Normalizer) NormalizeSales(t Table) (*SalesResult, error) {
	cols := ResolveColumns(t.Header, SalesFields)
	for _, f := range []Field{FieldSKU, FieldQuantity, FieldShipDate} {
		if _, ok := cols.Index(f); !ok {
			return nil, &domain.SchemaError{Table: domain.TableSales, Field: string(f)}
		}
	}

	idxSKU, _ := cols.Index(FieldSKU)
	idxQty, _ := cols.Index(FieldQuantity)
	idxDate, _ := cols.Index(FieldShipDate)
	idxTo := indexOr(cols, FieldShipTo)
	idxCity := indexOr(cols, FieldShipToCity)
	idxFrom := indexOr(cols, FieldShipFrom)
	idxFulfillment := indexOr(cols, FieldFulfillment)
	blankChannel := domain.FulfillmentUnknown
	if idxFulfillment < 0 {
		blankChannel = DefaultChannel
	}

	res := &SalesResult{Records: make([]domain.SalesRecord, 0, len(t.Rows))}
	for _, record := range t.Rows {
		res.RowsRead++

		sku := cell(record, idxSKU)
		if sku == "" {
			res.DroppedBlankSKU++
			continue
		}

		date, ok := parseDate(cell(record, idxDate))
		if !ok {
			res.DroppedBadDate++
			continue
		}

		qty, ok := parseQuantity(cell(record, idxQty))
		if !ok {
			res.QuantityCoerced++
		}

		res.Records = append(res.Records, domain.SalesRecord{
			SKU:               sku,
			Quantity:          qty,
			ShipmentDate:      date,
			DestinationRegion: normalizeRegion(cell(record, idxTo)),
			DestinationCity:   strings.ToUpper(cell(record, idxCity)),
			OriginRegion:      normalizeRegion(cell(record, idxFrom)),
			Fulfillment:       MapFulfillment(cell(record, idxFulfillment), blankChannel),
		})
	}

	return res, nil
}

// NormalizeInventory types the inventory ledger. The SKU key column is the
// first of the configured preference list present in the header.
func (n *Normalizer) NormalizeInventory(t Table) (*InventoryResult, error) {
	cols := ResolveColumns(t.Header, InventoryFields)
	keyField, idxKey, ok := cols.First(n.inventoryKeys)
	if !ok {
		return nil, &domain.SchemaError{Table: domain.TableInventory, Field: string(FieldSKU)}
	}
	idxBalance, ok := cols.Index(FieldBalance)
	if !ok {
		return nil, &domain.SchemaError{Table: domain.TableInventory, Field: string(FieldBalance)}
	}
	idxDate := indexOr(cols, FieldAsOf)
	idxFrom := indexOr(cols, FieldShipFrom)
	idxWarehouse := indexOr(cols, FieldWarehouse)
	idxFulfillment := indexOr(cols, FieldFulfillment)

	res := &InventoryResult{
		Snapshots: make([]domain.InventorySnapshot, 0, len(t.Rows)),
		KeyField:  keyField,
	}
	for _, record := range t.Rows {
		res.RowsRead++

		sku := cell(record, idxKey)
		if sku == "" {
			res.DroppedBlankSKU++
			continue
		}

		balance, ok := parseQuantity(cell(record, idxBalance))
		if !ok {
			res.BalanceCoerced++
		}

		asOf, ok := parseDate(cell(record, idxDate))
		if !ok {
			res.Undated++
		}

		res.Snapshots = append(res.Snapshots, domain.InventorySnapshot{
			SKU:           sku,
			AsOf:          asOf,
			EndingBalance: balance,
			OriginRegion:  strings.ToUpper(cell(record, idxFrom)),
			WarehouseCode: strings.ToUpper(cell(record, idxWarehouse)),
			Fulfillment:   MapFulfillment(cell(record, idxFulfillment), DefaultChannel),
		})
	}

	return res, nil
}

func indexOr(cols ColumnMap, f Field) int {
	if idx, ok := cols.Index(f); ok {
		return idx
	}
	return -1
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func normalizeRegion(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return domain.UnknownRegion
	}
	return v
}

// parseQuantity returns the non-negative value of v. ok is false when the
// value had to be coerced to 0.
func parseQuantity(v string) (float64, bool) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// Month-first layouts precede their day-first counterparts, so ambiguous
// dates resolve month-first and only unambiguous ones fall through.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"01-02-2006 15:04:05",
	"01-02-2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"02-Jan-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// parseDate parses v in any supported layout and truncates it to the
// calendar date written in the value.
func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
