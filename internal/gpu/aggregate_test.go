package gpu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Godmook/multigpu-be/internal/gpu"
)

func alloc(pod, gpuID string, units int, user, team string) gpu.PodAllocation {
	return gpu.PodAllocation{
		PodName:  pod,
		Record:   gpu.AllocationRecord{GPUID: gpuID, Units: units},
		UserName: user,
		TeamName: team,
	}
}

var _ = Describe("AggregateByGPU", func() {
	It("merges two tenants on one GPU into ordered segments", func() {
		slots := gpu.AggregateByGPU([]gpu.PodAllocation{
			alloc("pod-alice", "gpu-0", 30, "alice", "teamA"),
			alloc("pod-bob", "gpu-0", 50, "bob", "teamB"),
		}, "H100")

		Expect(slots).To(HaveLen(1))
		Expect(slots[0].GPUID).To(Equal("gpu-0"))
		Expect(slots[0].TotalAllocation).To(Equal(80))
		Expect(slots[0].Pods).To(Equal([]string{"pod-alice", "pod-bob"}))
		Expect(slots[0].Segments).To(Equal([]gpu.TenantSegment{
			{UserName: "bob", TeamName: "teamB", AllocationUnits: 50},
			{UserName: "alice", TeamName: "teamA", AllocationUnits: 30},
		}))
	})

	It("accumulates multiple pods of the same tenant into one segment", func() {
		slots := gpu.AggregateByGPU([]gpu.PodAllocation{
			alloc("pod-1", "gpu-0", 20, "alice", "teamA"),
			alloc("pod-2", "gpu-0", 25, "alice", "teamA"),
		}, "H100")

		Expect(slots[0].Segments).To(HaveLen(1))
		Expect(slots[0].Segments[0].AllocationUnits).To(Equal(45))
		Expect(slots[0].Pods).To(HaveLen(2))
	})

	It("keeps first-observation order for equal-sized segments", func() {
		slots := gpu.AggregateByGPU([]gpu.PodAllocation{
			alloc("pod-1", "gpu-0", 25, "carol", "teamC"),
			alloc("pod-2", "gpu-0", 25, "dave", "teamD"),
		}, "H100")

		Expect(slots[0].Segments[0].UserName).To(Equal("carol"))
		Expect(slots[0].Segments[1].UserName).To(Equal("dave"))
	})

	It("skips records with an empty GPU id", func() {
		slots := gpu.AggregateByGPU([]gpu.PodAllocation{
			alloc("pod-1", "", 40, "alice", "teamA"),
			alloc("pod-2", "gpu-0", 10, "bob", "teamB"),
		}, "H100")

		Expect(slots).To(HaveLen(1))
		Expect(slots[0].GPUID).To(Equal("gpu-0"))
		Expect(slots[0].TotalAllocation).To(Equal(10))
	})

	It("counts anonymous pods toward the total without a segment", func() {
		slots := gpu.AggregateByGPU([]gpu.PodAllocation{
			alloc("pod-anon", "gpu-0", 30, "", ""),
			alloc("pod-bob", "gpu-0", 50, "bob", "teamB"),
		}, "H100")

		Expect(slots[0].TotalAllocation).To(Equal(80))
		Expect(slots[0].Segments).To(HaveLen(1))
		Expect(slots[0].Segments[0].UserName).To(Equal("bob"))
	})

	It("registers a segment when only one tenant field is set", func() {
		slots := gpu.AggregateByGPU([]gpu.PodAllocation{
			alloc("pod-1", "gpu-0", 30, "", "teamOnly"),
		}, "H100")

		Expect(slots[0].Segments).To(Equal([]gpu.TenantSegment{
			{UserName: "", TeamName: "teamOnly", AllocationUnits: 30},
		}))
	})

	It("keeps zero-allocation GPUs with an empty segment list", func() {
		slots := gpu.AggregateByGPU([]gpu.PodAllocation{
			alloc("pod-1", "gpu-0", 0, "", ""),
		}, "H100")

		Expect(slots).To(HaveLen(1))
		Expect(slots[0].TotalAllocation).To(BeZero())
		Expect(slots[0].Segments).To(BeEmpty())
		Expect(slots[0].Pods).To(Equal([]string{"pod-1"}))
	})

	It("orders slots by first observation and never splits a GPU", func() {
		slots := gpu.AggregateByGPU([]gpu.PodAllocation{
			alloc("pod-1", "gpu-b", 10, "alice", "teamA"),
			alloc("pod-2", "gpu-a", 20, "alice", "teamA"),
			alloc("pod-3", "gpu-b", 5, "bob", "teamB"),
		}, "H100")

		Expect(slots).To(HaveLen(2))
		Expect(slots[0].GPUID).To(Equal("gpu-b"))
		Expect(slots[0].TotalAllocation).To(Equal(15))
		Expect(slots[1].GPUID).To(Equal("gpu-a"))
	})

	It("sums segments to the slot total when every pod has a tenant", func() {
		slots := gpu.AggregateByGPU([]gpu.PodAllocation{
			alloc("pod-1", "gpu-0", 30, "alice", "teamA"),
			alloc("pod-2", "gpu-0", 50, "bob", "teamB"),
			alloc("pod-3", "gpu-0", 20, "alice", "teamA"),
		}, "H100")

		sum := 0
		for _, seg := range slots[0].Segments {
			sum += seg.AllocationUnits
		}
		Expect(sum).To(Equal(slots[0].TotalAllocation))
	})
})
