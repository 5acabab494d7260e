package planning

import "strings"

// Table is a raw tabular data source: a header row plus string cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Field is a canonical column of a sales or inventory table.
type Field string

const (
	FieldSKU         Field = "sku"
	FieldASIN        Field = "asin"
	FieldMSKU        Field = "msku"
	FieldQuantity    Field = "quantity"
	FieldShipDate    Field = "shipment_date"
	FieldShipTo      Field = "destination_region"
	FieldShipToCity  Field = "destination_city"
	FieldShipFrom    Field = "origin_region"
	FieldFulfillment Field = "fulfillment_type"
	FieldBalance     Field = "ending_balance"
	FieldAsOf        Field = "as_of_date"
	FieldWarehouse   Field = "warehouse_code"
)

// FieldSpec binds a canonical field to the header spellings accepted for it.
type FieldSpec struct {
	Field   Field
	Aliases []string
}

// SalesFields are the header spellings accepted for the sales table.
var SalesFields = []FieldSpec{
	{Field: FieldSKU, Aliases: []string{"sku", "seller sku", "msku"}},
	{Field: FieldQuantity, Aliases: []string{"quantity", "qty", "quantity shipped"}},
	{Field: FieldShipDate, Aliases: []string{"shipment date", "order date", "invoice date"}},
	{Field: FieldShipTo, Aliases: []string{"ship to state", "ship-to state"}},
	{Field: FieldShipToCity, Aliases: []string{"ship to city", "ship-to city"}},
	{Field: FieldShipFrom, Aliases: []string{"ship from state", "ship-from state"}},
	{Field: FieldFulfillment, Aliases: []string{"fulfillment channel", "fulfillment", "fulfilment", "fulfillment type", "fulfilment channel"}},
}

// InventoryFields are the header spellings accepted for the inventory ledger.
var InventoryFields = []FieldSpec{
	{Field: FieldASIN, Aliases: []string{"asin"}},
	{Field: FieldMSKU, Aliases: []string{"msku", "merchant sku"}},
	{Field: FieldSKU, Aliases: []string{"sku", "seller sku"}},
	{Field: FieldBalance, Aliases: []string{"ending warehouse balance"}},
	{Field: FieldAsOf, Aliases: []string{"date", "snapshot date"}},
	{Field: FieldShipFrom, Aliases: []string{"ship from state", "warehouse state", "location state"}},
	{Field: FieldWarehouse, Aliases: []string{"warehouse code", "fc", "fulfillment center", "fulfillment centre", "location"}},
	{Field: FieldFulfillment, Aliases: []string{"fulfillment type", "fulfillment channel", "fulfilment type", "disposition channel"}},
}

// DefaultInventoryKeys is the preference order for the inventory SKU key column.
var DefaultInventoryKeys = []Field{FieldASIN, FieldMSKU, FieldSKU}

// ColumnMap maps canonical fields to column positions.
type ColumnMap map[Field]int

// Index returns the position of f, or ok=false when no header matched it.
func (m ColumnMap) Index(f Field) (int, bool) {
	idx, ok := m[f]
	return idx, ok
}

// First returns the first field of prefs present in the map.
func (m ColumnMap) First(prefs []Field) (Field, int, bool) {
	for _, f := range prefs {
		if idx, ok := m[f]; ok {
			return f, idx, true
		}
	}
	return "", -1, false
}

// ResolveColumns maps raw headers to canonical fields by exact match on the
// normalized alias list. It never guesses: unmatched fields are simply absent.
// When two headers match the same field the leftmost wins.
func ResolveColumns(header []string, specs []FieldSpec) ColumnMap {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeColumnName(h)
		if _, seen := byName[key]; !seen {
			byName[key] = i
		}
	}

	out := make(ColumnMap, len(specs))
	for _, spec := range specs {
		best := -1
		for _, alias := range spec.Aliases {
			if idx, ok := byName[NormalizeColumnName(alias)]; ok && (best == -1 || idx < best) {
				best = idx
			}
		}
		if best >= 0 {
			out[spec.Field] = best
		}
	}
	return out
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "", "\ufeff", "")

// NormalizeColumnName folds a header to the form aliases are matched on:
// lowercase, without spaces, separators or a byte order mark.
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}
