package gpu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Godmook/multigpu-be/internal/gpu"
)

var _ = Describe("ParseAllocation", func() {
	DescribeTable("compact encoding",
		func(text string, expected []gpu.AllocationRecord) {
			Expect(gpu.ParseAllocation(text, 0)).To(Equal(expected))
		},
		Entry("two records", "gpuA:50,gpuB:30", []gpu.AllocationRecord{
			{GPUID: "gpuA", Units: 50},
			{GPUID: "gpuB", Units: 30},
		}),
		Entry("trailing malformed token dropped", "gpuA:50,bad", []gpu.AllocationRecord{
			{GPUID: "gpuA", Units: 50},
		}),
		Entry("non-numeric units dropped", "gpuA:50,gpuB:lots,gpuC:10", []gpu.AllocationRecord{
			{GPUID: "gpuA", Units: 50},
			{GPUID: "gpuC", Units: 10},
		}),
		Entry("zero allocation kept", "gpuA:0", []gpu.AllocationRecord{
			{GPUID: "gpuA", Units: 0},
		}),
		Entry("whitespace tolerated", "gpuA: 50, gpuB :30", []gpu.AllocationRecord{
			{GPUID: "gpuA", Units: 50},
			{GPUID: "gpuB", Units: 30},
		}),
	)

	DescribeTable("extended encoding",
		func(text string, expected []gpu.AllocationRecord) {
			Expect(gpu.ParseAllocation(text, 0)).To(Equal(expected))
		},
		Entry("two entries", "gpuA,NVIDIA,40000,70:gpuB,NVIDIA,40000,10", []gpu.AllocationRecord{
			{GPUID: "gpuA", Units: 70},
			{GPUID: "gpuB", Units: 10},
		}),
		Entry("trailing separator ignored", "gpuA,NVIDIA,40000,70:", []gpu.AllocationRecord{
			{GPUID: "gpuA", Units: 70},
		}),
		Entry("extra fields ignored", "gpuA,NVIDIA,40000,70,true,extra", []gpu.AllocationRecord{
			{GPUID: "gpuA", Units: 70},
		}),
		Entry("short entry dropped", "gpuA,NVIDIA,40000,70:gpuB,NVIDIA", []gpu.AllocationRecord{
			{GPUID: "gpuA", Units: 70},
		}),
		Entry("non-numeric units dropped", "gpuA,NVIDIA,40000,seventy:gpuB,NVIDIA,40000,10", []gpu.AllocationRecord{
			{GPUID: "gpuB", Units: 10},
		}),
	)

	Describe("padding", func() {
		It("pads empty input up to the expected slot count", func() {
			records := gpu.ParseAllocation("", 4)
			Expect(records).To(HaveLen(4))
			for _, r := range records {
				Expect(r.GPUID).To(BeEmpty())
				Expect(r.Units).To(BeZero())
			}
		})

		It("pads a partially filled result", func() {
			records := gpu.ParseAllocation("gpuA:50", 3)
			Expect(records).To(HaveLen(3))
			Expect(records[0]).To(Equal(gpu.AllocationRecord{GPUID: "gpuA", Units: 50}))
			Expect(records[1]).To(Equal(gpu.AllocationRecord{}))
		})

		It("does not pad when the expected count is zero", func() {
			Expect(gpu.ParseAllocation("", 0)).To(BeEmpty())
		})

		It("does not truncate when more records exist than expected", func() {
			Expect(gpu.ParseAllocation("a:1,b:2,c:3", 2)).To(HaveLen(3))
		})
	})

	Describe("drop accounting", func() {
		It("counts malformed compact tokens", func() {
			records, dropped := gpu.ParseAllocationStats("gpuA:50,bad,gpuB:x", 0)
			Expect(records).To(HaveLen(1))
			Expect(dropped).To(Equal(2))
		})

		It("counts malformed extended entries but not trailing separators", func() {
			records, dropped := gpu.ParseAllocationStats("gpuA,NVIDIA,40000,70:gpuB,NVIDIA:", 0)
			Expect(records).To(HaveLen(1))
			Expect(dropped).To(Equal(1))
		})
	})
})
