package gpu

// AllocationRecord is one parsed entry of an allocation annotation: a GPU
// identifier and the fraction of that GPU (0-100 units) a pod holds. The id
// may be empty for padding placeholders or malformed producer output.
type AllocationRecord struct {
	GPUID string `json:"gpuId"`
	Units int    `json:"allocationUnits"`
}

// TenantSegment is the portion of one GPU attributable to one (user, team)
// pair, accumulated across every pod of that pair on the GPU.
type TenantSegment struct {
	UserName        string `json:"userName"`
	TeamName        string `json:"teamName"`
	AllocationUnits int    `json:"allocationUnits"`
}

// GPUSlot is one fixed-index position of a node's GPU list. A slot with an
// empty GPUID is an unfilled placeholder and never carries pods or segments.
type GPUSlot struct {
	GPUID           string          `json:"gpuId"`
	Family          string          `json:"gpuFamily"`
	TotalAllocation int             `json:"totalAllocation"`
	Source          string          `json:"source"`
	Pods            []string        `json:"contributingPods"`
	Segments        []TenantSegment `json:"segments"`
}

// NodeStatus summarizes a node's GPU situation.
type NodeStatus string

const (
	NodeStatusActive    NodeStatus = "Active"
	NodeStatusAvailable NodeStatus = "Available"
	NodeStatusNoGPU     NodeStatus = "NoGPU"
	NodeStatusError     NodeStatus = "Error"
)

// NodeInventory is the per-node allocation view. Slots always has exactly
// SlotCount entries regardless of how many GPUs the node really carries.
type NodeInventory struct {
	Name      string     `json:"name"`
	Family    string     `json:"gpuFamily"`
	SlotCount int        `json:"slotCount"`
	Status    NodeStatus `json:"status"`
	Slots     []GPUSlot  `json:"slots"`
}

// PodAllocation ties one parsed allocation record back to the pod and tenant
// it came from. It is the aggregator's input unit.
type PodAllocation struct {
	PodName  string
	Record   AllocationRecord
	UserName string
	TeamName string
}
