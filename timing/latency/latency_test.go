package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/riscvperf/cva6perf/insts"
	"github.com/riscvperf/cva6perf/timing/latency"
)

var _ = Describe("Latency", func() {
	var (
		table   *latency.Table
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		table = latency.NewTable()
		decoder = insts.NewDecoder()
	})

	Describe("default timing values", func() {
		It("should make every single-cycle unit one cycle", func() {
			config := table.Config()
			Expect(config.ALULatency).To(Equal(uint64(1)))
			Expect(config.BranchLatency).To(Equal(uint64(1)))
			Expect(config.LoadLatency).To(Equal(uint64(1)))
			Expect(config.StoreLatency).To(Equal(uint64(1)))
		})

		It("should make multiply/divide multi-cycle", func() {
			Expect(table.Config().MulDivLatency).To(Equal(uint64(2)))
		})
	})

	Describe("Latency", func() {
		It("should look up by functional unit", func() {
			add := decoder.Decode(0x00C58533)  // add a0, a1, a2
			mul := decoder.Decode(0x02C58533)  // mul a0, a1, a2
			load := decoder.Decode(0x0005A503) // lw a0, 0(a1)
			ret := decoder.Decode(0x00008067)  // jalr zero, ra

			Expect(table.Latency(add)).To(Equal(uint64(1)))
			Expect(table.Latency(mul)).To(Equal(uint64(2)))
			Expect(table.Latency(load)).To(Equal(uint64(1)))
			Expect(table.Latency(ret)).To(Equal(uint64(1)))
		})

		It("should give a direct jump the ALU latency", func() {
			jump := decoder.Decode(0x0080006F) // j 8
			Expect(table.Latency(jump)).To(Equal(uint64(1)))
		})
	})

	Describe("LoadConfig", func() {
		It("should apply overrides and keep defaults elsewhere", func() {
			path := filepath.Join(GinkgoT().TempDir(), "timing.json")
			Expect(os.WriteFile(path,
				[]byte(`{"muldiv_latency": 5}`), 0o644)).To(Succeed())

			config, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(config.MulDivLatency).To(Equal(uint64(5)))
			Expect(config.ALULatency).To(Equal(uint64(1)))
		})

		It("should fail on malformed JSON", func() {
			path := filepath.Join(GinkgoT().TempDir(), "timing.json")
			Expect(os.WriteFile(path, []byte(`{`), 0o644)).To(Succeed())

			_, err := latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
