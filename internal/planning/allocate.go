package planning

import (
	"sort"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
)

// Partition is one child of a parent group with its own historical demand.
type Partition struct {
	Key     domain.GroupKey
	History float64
}

// Share is a partition's fraction of its siblings' total demand.
type Share struct {
	Partition
	Share      float64
	EqualSplit bool
}

// DemandShares computes each partition's share of the sibling total. When
// the siblings have no history at all every partition gets 1/N.
func DemandShares(parts []Partition) []Share {
	out := make([]Share, len(parts))
	if len(parts) == 0 {
		return out
	}

	var total float64
	for _, p := range parts {
		total += p.History
	}

	for i, p := range parts {
		out[i].Partition = p
		if total > 0 {
			out[i].Share = p.History / total
			continue
		}
		out[i].Share = 1 / float64(len(parts))
		out[i].EqualSplit = true
	}
	return out
}

// Allocate splits parentQty across shares. Values are unrounded.
func Allocate(parentQty float64, shares []Share) []float64 {
	out := make([]float64, len(shares))
	for i, s := range shares {
		out[i] = parentQty * s.Share
	}
	return out
}

// allocationLevel describes one parent -> child refinement to allocate over.
type allocationLevel struct {
	name   string
	parent Grouping
	child  Grouping
}

// allocate distributes the required and recommended quantities of each
// parent row across its child partitions. Partitions are the children seen
// in the sales history plus, for stockable children, those holding stock.
// Rounding to whole units happens here, once per output row.
func allocate(
	lvl allocationLevel,
	parents []domain.PlanningRow,
	childDemand map[domain.GroupKey]*DemandGroup,
	childStock map[domain.GroupKey]float64,
) []domain.AllocationRow {
	children := make(map[domain.GroupKey]map[domain.GroupKey]float64)
	add := func(key domain.GroupKey, history float64) {
		pk := lvl.parent.Project(key)
		if children[pk] == nil {
			children[pk] = make(map[domain.GroupKey]float64)
		}
		children[pk][key] += history
	}
	for key, g := range childDemand {
		add(key, g.Total)
	}
	for key := range childStock {
		add(key, 0)
	}

	rows := make([]domain.AllocationRow, 0, len(childDemand))
	for _, parent := range parents {
		kids := children[lvl.parent.Project(parent.Key())]
		if len(kids) == 0 {
			continue
		}

		parts := make([]Partition, 0, len(kids))
		for key, history := range kids {
			parts = append(parts, Partition{Key: key, History: history})
		}
		sort.Slice(parts, func(i, j int) bool { return keyLess(parts[i].Key, parts[j].Key) })

		shares := DemandShares(parts)
		required := Allocate(parent.RequiredStock, shares)
		dispatch := Allocate(parent.RecommendedDispatchQty, shares)
		for i, s := range shares {
			rows = append(rows, domain.AllocationRow{
				Level:                  lvl.name,
				SKU:                    s.Key.SKU,
				Channel:                s.Key.Channel,
				Site:                   s.Key.Site,
				Cluster:                s.Key.Cluster,
				ParentRequiredStock:    parent.RequiredStock,
				ParentDispatchQty:      parent.RecommendedDispatchQty,
				PartitionHistorySales:  s.History,
				DemandShare:            s.Share,
				EqualSplit:             s.EqualSplit,
				AllocatedRequiredStock: roundUnits(required[i]),
				AllocatedDispatchQty:   roundUnits(dispatch[i]),
			})
		}
	}
	return rows
}

func keyLess(a, b domain.GroupKey) bool {
	if a.SKU != b.SKU {
		return a.SKU < b.SKU
	}
	if a.Channel != b.Channel {
		return a.Channel < b.Channel
	}
	if a.Site != b.Site {
		return a.Site < b.Site
	}
	if a.Destination != b.Destination {
		return a.Destination < b.Destination
	}
	return a.Cluster < b.Cluster
}
