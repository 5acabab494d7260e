package planning

import (
	"fmt"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

// Dimension is one axis an entity group can be keyed on.
type Dimension int

const (
	DimSKU Dimension = iota
	DimChannel
	DimSite        // origin region / warehouse site
	DimDestination // ship-to region
	DimCluster     // geographic cluster of the ship-to region
)

func (d Dimension) String() string {
	switch d {
	case DimSKU:
		return "sku"
	case DimChannel:
		return "channel"
	case DimSite:
		return "site"
	case DimDestination:
		return "destination"
	case DimCluster:
		return "cluster"
	default:
		return fmt.Sprintf("dimension(%d)", int(d))
	}
}

// Grouping is a composable grouping specification.
type Grouping []Dimension

// Has reports whether d is part of the grouping.
func (g Grouping) Has(d Dimension) bool {
	for _, x := range g {
		if x == d {
			return true
		}
	}
	return false
}

// Extends reports whether every dimension of parent is also in g.
func (g Grouping) Extends(parent Grouping) bool {
	for _, d := range parent {
		if !g.Has(d) {
			return false
		}
	}
	return true
}

// Stockable reports whether inventory can be keyed at this granularity.
// Ledgers carry no destination, so destination-based groupings are not.
func (g Grouping) Stockable() bool {
	return !g.Has(DimDestination) && !g.Has(DimCluster)
}

// SalesKey keys a sales record.
func (g Grouping) SalesKey(r domain.SalesRecord, lookups Lookups) domain.GroupKey {
	var k domain.GroupKey
	for _, d := range g {
		switch d {
		case DimSKU:
			k.SKU = r.SKU
		case DimChannel:
			k.Channel = r.Fulfillment
		case DimSite:
			k.Site = r.OriginRegion
		case DimDestination:
			k.Destination = r.DestinationRegion
		case DimCluster:
			k.Cluster = lookups.ClusterOf(r.DestinationRegion)
		}
	}
	return k
}

// InventoryKey keys a snapshot. ok is false for groupings that are not Stockable.
func (g Grouping) InventoryKey(s domain.InventorySnapshot, lookups Lookups) (domain.GroupKey, bool) {
	if !g.Stockable() {
		return domain.GroupKey{}, false
	}
	var k domain.GroupKey
	for _, d := range g {
		switch d {
		case DimSKU:
			k.SKU = s.SKU
		case DimChannel:
			k.Channel = s.Fulfillment
		case DimSite:
			k.Site = lookups.SiteOf(s)
		}
	}
	return k, true
}

// Project reduces k to the dimensions of g.
func (g Grouping) Project(k domain.GroupKey) domain.GroupKey {
	var out domain.GroupKey
	for _, d := range g {
		switch d {
		case DimSKU:
			out.SKU = k.SKU
		case DimChannel:
			out.Channel = k.Channel
		case DimSite:
			out.Site = k.Site
		case DimDestination:
			out.Destination = k.Destination
		case DimCluster:
			out.Cluster = k.Cluster
		}
	}
	return out
}

// Level is one named granularity of a planning hierarchy.
type Level struct {
	Name     string
	Grouping Grouping
}

// Hierarchy is an ordered list of levels, each refining the previous one.
type Hierarchy []Level

// DefaultHierarchy is SKU -> SKU x channel -> SKU x channel x site.
func DefaultHierarchy() Hierarchy {
	return Hierarchy{
		{Name: "sku", Grouping: Grouping{DimSKU}},
		{Name: "channel", Grouping: Grouping{DimSKU, DimChannel}},
		{Name: "site", Grouping: Grouping{DimSKU, DimChannel, DimSite}},
	}
}

// Validate checks that every level is stockable and refines its parent.
func (h Hierarchy) Validate() error {
	if len(h) == 0 {
		return fmt.Errorf("hierarchy has no levels")
	}
	for i, lvl := range h {
		if !lvl.Grouping.Has(DimSKU) {
			return fmt.Errorf("level %q must group by sku", lvl.Name)
		}
		if !lvl.Grouping.Stockable() {
			return fmt.Errorf("level %q cannot be matched against inventory", lvl.Name)
		}
		if i > 0 && !lvl.Grouping.Extends(h[i-1].Grouping) {
			return fmt.Errorf("level %q does not refine level %q", lvl.Name, h[i-1].Name)
		}
	}
	return nil
}
