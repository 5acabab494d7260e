package planning

import (
	"strings"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

// UnmappedCluster is the cluster of a destination region missing from the cluster map.
const UnmappedCluster = "UNMAPPED"

// FulfillmentCenter describes one warehouse site.
type FulfillmentCenter struct {
	Code   string `json:"code" yaml:"code" db:"code"`
	Name   string `json:"name" yaml:"name" db:"name"`
	Region string `json:"region" yaml:"region" db:"region"`
}

// Lookups are the deployment-specific lookup tables injected into a planner.
// A Lookups value is treated as immutable once handed to NewPlanner.
type Lookups struct {
	Clusters           map[string]string            // destination region -> geographic cluster
	FulfillmentCenters map[string]FulfillmentCenter // warehouse code -> site description
}

// NewLookups builds a Lookups with uppercased keys, copying its inputs.
func NewLookups(clusters map[string]string, centers []FulfillmentCenter) Lookups {
	l := Lookups{
		Clusters:           make(map[string]string, len(clusters)),
		FulfillmentCenters: make(map[string]FulfillmentCenter, len(centers)),
	}
	for region, cluster := range clusters {
		region = strings.ToUpper(strings.TrimSpace(region))
		cluster = strings.TrimSpace(cluster)
		if region == "" || cluster == "" {
			continue
		}
		l.Clusters[region] = cluster
	}
	for _, fc := range centers {
		code := strings.ToUpper(strings.TrimSpace(fc.Code))
		if code == "" {
			continue
		}
		fc.Code = code
		fc.Region = strings.ToUpper(strings.TrimSpace(fc.Region))
		l.FulfillmentCenters[code] = fc
	}
	return l
}

// ClusterOf returns the geographic cluster of a destination region.
func (l Lookups) ClusterOf(region string) string {
	if c, ok := l.Clusters[strings.ToUpper(region)]; ok {
		return c
	}
	return UnmappedCluster
}

// SiteOf returns the warehouse site region of a snapshot: its own origin
// region, else the region of its fulfillment center, else UNKNOWN.
func (l Lookups) SiteOf(s domain.InventorySnapshot) string {
	if s.OriginRegion != "" && s.OriginRegion != domain.UnknownRegion {
		return s.OriginRegion
	}
	if fc, ok := l.FulfillmentCenters[s.WarehouseCode]; ok && fc.Region != "" {
		return fc.Region
	}
	return domain.UnknownRegion
}
