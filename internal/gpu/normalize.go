package gpu

import "github.com/Godmook/multigpu-be/internal/constants"

// NormalizeSlots maps a node's real GPU slots onto a fixed-width presentation
// list of exactly slotCount entries: surplus slots are truncated and missing
// ones padded with empty placeholders. The second return value is how many
// real slots were dropped, so callers can surface possible oversubscription
// instead of losing it silently.
func NormalizeSlots(slots []GPUSlot, slotCount int, family string) ([]GPUSlot, int) {
	dropped := 0
	if len(slots) > slotCount {
		dropped = len(slots) - slotCount
		slots = slots[:slotCount]
	}
	out := make([]GPUSlot, 0, slotCount)
	out = append(out, slots...)
	for len(out) < slotCount {
		out = append(out, emptySlot(family))
	}
	return out, dropped
}

func emptySlot(family string) GPUSlot {
	return GPUSlot{
		Family:   family,
		Source:   constants.SourceNodeStatus,
		Pods:     []string{},
		Segments: []TenantSegment{},
	}
}
