package planning

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveColumns(t *testing.T) {
	t.Parallel()

	t.Run("matches normalized aliases", func(t *testing.T) {
		t.Parallel()
		cols := ResolveColumns([]string{"\ufeffSku", "Quantity", "Shipment-Date", "ship_to_state"}, SalesFields)

		idx, ok := cols.Index(FieldSKU)
		require.True(t, ok)
		assert.Equal(t, 0, idx)
		idx, ok = cols.Index(FieldShipDate)
		require.True(t, ok)
		assert.Equal(t, 2, idx)
		idx, ok = cols.Index(FieldShipTo)
		require.True(t, ok)
		assert.Equal(t, 3, idx)
	})

	t.Run("never guesses on partial names", func(t *testing.T) {
		t.Parallel()
		cols := ResolveColumns([]string{"SKU Code", "Total Quantity"}, SalesFields)
		_, ok := cols.Index(FieldSKU)
		assert.False(t, ok)
		_, ok = cols.Index(FieldQuantity)
		assert.False(t, ok)
	})

	t.Run("leftmost duplicate wins", func(t *testing.T) {
		t.Parallel()
		cols := ResolveColumns([]string{"Qty", "Quantity"}, SalesFields)
		idx, _ := cols.Index(FieldQuantity)
		assert.Equal(t, 0, idx)
	})

	t.Run("inventory key preference", func(t *testing.T) {
		t.Parallel()
		cols := ResolveColumns([]string{"SKU", "MSKU", "ASIN"}, InventoryFields)
		f, idx, ok := cols.First(DefaultInventoryKeys)
		require.True(t, ok)
		assert.Equal(t, FieldASIN, f)
		assert.Equal(t, 2, idx)
	})
}

func TestMapFulfillment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want domain.FulfillmentType
	}{
		{"AFN", domain.FulfillmentFBA},
		{"amazon_in", domain.FulfillmentFBA},
		{" MFN ", domain.FulfillmentFBM},
		{"Easy Ship", domain.FulfillmentFBM},
		{"", domain.FulfillmentUnknown},
		{"prime", domain.FulfillmentType("PRIME")},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapFulfillment(tt.raw, domain.FulfillmentUnknown))
		})
	}
}

func TestNormalizeSales(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil)

	t.Run("missing mandatory column is a schema error", func(t *testing.T) {
		t.Parallel()
		_, err := n.NormalizeSales(Table{Header: []string{"Sku", "Shipment Date"}})
		require.Error(t, err)

		var schemaErr *domain.SchemaError
		require.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, domain.TableSales, schemaErr.Table)
		assert.Equal(t, "quantity", schemaErr.Field)
	})

	t.Run("coerces and drops malformed rows", func(t *testing.T) {
		t.Parallel()
		res, err := n.NormalizeSales(Table{
			Header: []string{"Sku", "Quantity", "Shipment Date", "Ship To State", "Fulfillment Channel"},
			Rows: [][]string{
				{"A", "2", "2024-01-01", "karnataka", "AFN"},
				{"A", "abc", "2024-01-02", "", "MFN"},
				{"B", "1", "not a date", "KA", "AFN"},
				{"", "4", "2024-01-03", "KA", "AFN"},
				{"C", "1,200", "01/02/2024 10:00", "KA"},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, 5, res.RowsRead)
		assert.Equal(t, 1, res.DroppedBadDate)
		assert.Equal(t, 1, res.DroppedBlankSKU)
		assert.Equal(t, 1, res.QuantityCoerced)
		require.Len(t, res.Records, 3)

		assert.Equal(t, "KARNATAKA", res.Records[0].DestinationRegion)
		assert.Equal(t, domain.UnknownRegion, res.Records[0].OriginRegion)
		assert.Equal(t, domain.FulfillmentFBA, res.Records[0].Fulfillment)

		assert.Equal(t, 0.0, res.Records[1].Quantity)
		assert.Equal(t, domain.UnknownRegion, res.Records[1].DestinationRegion)
		assert.Equal(t, domain.FulfillmentFBM, res.Records[1].Fulfillment)

		assert.Equal(t, 1200.0, res.Records[2].Quantity)
		assert.Equal(t, day(2024, time.January, 2), res.Records[2].ShipmentDate)
		assert.Equal(t, domain.FulfillmentUnknown, res.Records[2].Fulfillment)
	})

	t.Run("table without fulfillment column takes the default channel", func(t *testing.T) {
		t.Parallel()
		res, err := n.NormalizeSales(Table{
			Header: []string{"Sku", "Quantity", "Shipment Date"},
			Rows:   [][]string{{"A", "1", "2024-01-01"}},
		})
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, DefaultChannel, res.Records[0].Fulfillment)

		inv, err := n.NormalizeInventory(Table{
			Header: []string{"Sku", "Ending Warehouse Balance"},
			Rows:   [][]string{{"A", "3"}},
		})
		require.NoError(t, err)
		require.Len(t, inv.Snapshots, 1)
		assert.Equal(t, res.Records[0].Fulfillment, inv.Snapshots[0].Fulfillment)
	})
}

func TestNormalizeInventory(t *testing.T) {
	t.Parallel()

	t.Run("missing key column", func(t *testing.T) {
		t.Parallel()
		_, err := NewNormalizer(nil).NormalizeInventory(Table{Header: []string{"Ending Warehouse Balance"}})
		var schemaErr *domain.SchemaError
		require.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, domain.TableInventory, schemaErr.Table)
		assert.Equal(t, "sku", schemaErr.Field)
	})

	t.Run("missing balance column", func(t *testing.T) {
		t.Parallel()
		_, err := NewNormalizer(nil).NormalizeInventory(Table{Header: []string{"MSKU", "Date"}})
		var schemaErr *domain.SchemaError
		require.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, "ending_balance", schemaErr.Field)
	})

	t.Run("prefers asin and defaults channel to FBA", func(t *testing.T) {
		t.Parallel()
		res, err := NewNormalizer(nil).NormalizeInventory(Table{
			Header: []string{"MSKU", "ASIN", "Ending Warehouse Balance", "Date", "Warehouse Code"},
			Rows: [][]string{
				{"m-1", "B0001", "12", "2024-02-01", "blr7"},
				{"m-2", "B0002", "n/a", "", "bom5"},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, FieldASIN, res.KeyField)
		assert.Equal(t, 1, res.BalanceCoerced)
		assert.Equal(t, 1, res.Undated)
		require.Len(t, res.Snapshots, 2)
		assert.Equal(t, "B0001", res.Snapshots[0].SKU)
		assert.Equal(t, "BLR7", res.Snapshots[0].WarehouseCode)
		assert.Equal(t, domain.FulfillmentFBA, res.Snapshots[0].Fulfillment)
		assert.False(t, res.Snapshots[1].Dated())
	})

	t.Run("configurable key preference", func(t *testing.T) {
		t.Parallel()
		res, err := NewNormalizer([]Field{FieldSKU, FieldASIN}).NormalizeInventory(Table{
			Header: []string{"ASIN", "SKU", "Ending Warehouse Balance"},
			Rows:   [][]string{{"B0001", "A", "3"}},
		})
		require.NoError(t, err)
		assert.Equal(t, FieldSKU, res.KeyField)
		assert.Equal(t, "A", res.Snapshots[0].SKU)
	})
}

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{" 2.5 ", 2.5, true},
		{"1,000", 1000, true},
		{"", 0, false},
		{"-3", 0, false},
		{"NaN", 0, false},
		{"x", 0, false},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := parseQuantity(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15", day(2024, time.January, 15)},
		{"2024-01-15T23:10:00+05:30", day(2024, time.January, 15)},
		{"01/02/2024", day(2024, time.January, 2)},
		{"25/12/2023", day(2023, time.December, 25)},
		{"05-Mar-2024", day(2024, time.March, 5)},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := parseDate(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := parseDate("tomorrow")
	assert.False(t, ok)
}
