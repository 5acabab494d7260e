package domain

import "time"

// FulfillmentType is the normalized fulfillment channel of a sale or a stock position.
// Values outside the known set are vendor codes passed through uppercased.
type FulfillmentType string

const (
	FulfillmentFBA     FulfillmentType = "FBA"
	FulfillmentFBM     FulfillmentType = "FBM"
	FulfillmentUnknown FulfillmentType = "UNKNOWN"
)

// UnknownRegion is used whenever an origin region or site cannot be determined.
const UnknownRegion = "UNKNOWN"

// SalesRecord is one shipped line item after normalization.
type SalesRecord struct {
	SKU               string          `json:"sku"`
	Quantity          float64         `json:"quantity"`
	ShipmentDate      time.Time       `json:"shipment_date"`
	DestinationRegion string          `json:"destination_region"`
	DestinationCity   string          `json:"destination_city,omitempty"`
	OriginRegion      string          `json:"origin_region"`
	Fulfillment       FulfillmentType `json:"fulfillment_type"`
}

// InventorySnapshot is one ledger entry for a SKU at a point in time.
// AsOf is the zero time when the ledger carried no usable date.
type InventorySnapshot struct {
	SKU           string          `json:"sku"`
	AsOf          time.Time       `json:"as_of_date"`
	EndingBalance float64         `json:"ending_balance"`
	OriginRegion  string          `json:"origin_region"`
	WarehouseCode string          `json:"warehouse_code"`
	Fulfillment   FulfillmentType `json:"fulfillment_type"`
}

// Dated reports whether the snapshot carries an as-of date.
func (s InventorySnapshot) Dated() bool {
	return !s.AsOf.IsZero()
}

// GroupKey identifies an entity group. Dimensions that are not part of the
// grouping in use are left empty.
type GroupKey struct {
	SKU         string          `json:"sku"`
	Channel     FulfillmentType `json:"channel,omitempty"`
	Site        string          `json:"site,omitempty"`
	Destination string          `json:"destination,omitempty"`
	Cluster     string          `json:"cluster,omitempty"`
}
