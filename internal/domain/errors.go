package domain

import "fmt"

const (
	TableSales     = "sales"
	TableInventory = "inventory"
)

// SchemaError reports a mandatory field that is entirely absent from an input table.
// It is fatal for a planning run.
type SchemaError struct {
	Table string
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s table is missing mandatory field %q", e.Table, e.Field)
}
