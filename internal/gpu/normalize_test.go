package gpu_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Godmook/multigpu-be/internal/gpu"
)

func realSlots(n int) []gpu.GPUSlot {
	slots := make([]gpu.GPUSlot, 0, n)
	for i := 0; i < n; i++ {
		slots = append(slots, gpu.GPUSlot{
			GPUID:           fmt.Sprintf("gpu-%d", i),
			Family:          "H100",
			TotalAllocation: 10,
			Source:          "pod_annotation",
			Pods:            []string{"pod"},
		})
	}
	return slots
}

var _ = Describe("NormalizeSlots", func() {
	It("truncates surplus GPUs and reports the drop count", func() {
		out, dropped := gpu.NormalizeSlots(realSlots(10), 8, "H100")
		Expect(out).To(HaveLen(8))
		Expect(dropped).To(Equal(2))
		Expect(out[7].GPUID).To(Equal("gpu-7"))
	})

	It("pads short lists with empty placeholders", func() {
		out, dropped := gpu.NormalizeSlots(realSlots(3), 8, "H100")
		Expect(out).To(HaveLen(8))
		Expect(dropped).To(BeZero())
		for _, slot := range out[3:] {
			Expect(slot.GPUID).To(BeEmpty())
			Expect(slot.Family).To(Equal("H100"))
			Expect(slot.TotalAllocation).To(BeZero())
			Expect(slot.Source).To(Equal("node_status"))
			Expect(slot.Pods).To(BeEmpty())
			Expect(slot.Segments).To(BeEmpty())
		}
	})

	It("returns all placeholders for a node with no GPUs", func() {
		out, dropped := gpu.NormalizeSlots(nil, 8, "A100")
		Expect(out).To(HaveLen(8))
		Expect(dropped).To(BeZero())
		Expect(out[0].Family).To(Equal("A100"))
	})

	It("leaves an exact-width list untouched", func() {
		in := realSlots(8)
		out, dropped := gpu.NormalizeSlots(in, 8, "H100")
		Expect(dropped).To(BeZero())
		Expect(out).To(Equal(in))
	})
})
