package gpu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Godmook/multigpu-be/internal/gpu"
)

var _ = Describe("Namer", func() {
	namer := gpu.NewNamer("violet")

	DescribeTable("classifies node names",
		func(name string, expectedFamily string, expectedOK bool) {
			family, ok := namer.Classify(name)
			Expect(ok).To(Equal(expectedOK))
			if expectedOK {
				Expect(family).To(Equal(expectedFamily))
			}
		},
		Entry("h100 node", "violet-h100-023", "H100", true),
		Entry("a100 node", "violet-a100-001", "A100", true),
		Entry("mixed case family", "violet-Rtx4090-104", "RTX4090", true),
		Entry("two digit suffix", "violet-h100-23", "", false),
		Entry("four digit suffix", "violet-h100-0023", "", false),
		Entry("wrong prefix", "indigo-h100-023", "", false),
		Entry("missing family", "violet--023", "", false),
		Entry("family with punctuation", "violet-h_100-023", "", false),
		Entry("trailing junk", "violet-h100-023x", "", false),
		Entry("empty name", "", "", false),
	)

	It("falls back to the unknown sentinel for invalid names", func() {
		Expect(namer.Family("not-a-fleet-node")).To(Equal("UNKNOWN"))
		Expect(namer.Family("violet-h100-023")).To(Equal("H100"))
	})

	It("escapes regexp metacharacters in the prefix", func() {
		dotted := gpu.NewNamer("fleet.a")
		_, ok := dotted.Classify("fleetxa-h100-001")
		Expect(ok).To(BeFalse())
		family, ok := dotted.Classify("fleet.a-h100-001")
		Expect(ok).To(BeTrue())
		Expect(family).To(Equal("H100"))
	})
})
