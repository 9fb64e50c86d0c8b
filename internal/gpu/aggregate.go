package gpu

import (
	"sort"

	"github.com/Godmook/multigpu-be/internal/constants"
)

type tenantKey struct {
	user string
	team string
}

type gpuBucket struct {
	id      string
	total   int
	pods    []string
	tenants map[tenantKey]int
	// tenantOrder preserves first-observation order so equal-sized segments
	// come out deterministically.
	tenantOrder []tenantKey
}

// AggregateByGPU merges the allocation records of every pod on one node into
// per-GPU slots, attributing allocation to (user, team) tenant segments.
// Slots come back in the order their GPU id was first observed, which mirrors
// the pod scan order. Records with an empty GPU id cannot be attributed and
// are skipped; a GPU referenced only with zero units still gets a slot.
func AggregateByGPU(allocs []PodAllocation, family string) []GPUSlot {
	buckets := make(map[string]*gpuBucket)
	var order []string

	for _, a := range allocs {
		id := a.Record.GPUID
		if id == "" {
			continue
		}
		b, ok := buckets[id]
		if !ok {
			b = &gpuBucket{id: id, tenants: make(map[tenantKey]int)}
			buckets[id] = b
			order = append(order, id)
		}
		b.total += a.Record.Units
		b.pods = append(b.pods, a.PodName)

		// Anonymous pods count toward the total but get no named segment.
		if a.UserName == "" && a.TeamName == "" {
			continue
		}
		key := tenantKey{user: a.UserName, team: a.TeamName}
		if _, seen := b.tenants[key]; !seen {
			b.tenantOrder = append(b.tenantOrder, key)
		}
		b.tenants[key] += a.Record.Units
	}

	slots := make([]GPUSlot, 0, len(order))
	for _, id := range order {
		b := buckets[id]
		slots = append(slots, GPUSlot{
			GPUID:           b.id,
			Family:          family,
			TotalAllocation: b.total,
			Source:          constants.SourcePodAnnotation,
			Pods:            b.pods,
			Segments:        b.segments(),
		})
	}
	return slots
}

// segments converts the tenant accumulation into a list sorted by units
// descending, largest first so a presentation layer can stack them directly.
// Ties keep first-observation order.
func (b *gpuBucket) segments() []TenantSegment {
	out := make([]TenantSegment, 0, len(b.tenantOrder))
	for _, key := range b.tenantOrder {
		out = append(out, TenantSegment{
			UserName:        key.user,
			TeamName:        key.team,
			AllocationUnits: b.tenants[key],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AllocationUnits > out[j].AllocationUnits
	})
	return out
}
