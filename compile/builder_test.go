package compile_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lightningsim/compile"
	"github.com/sarchlab/lightningsim/graph"
)

var _ = Describe("Builder", func() {
	It("compiles a leaf module with no I/O to a single control-flow edge", func() {
		b := compile.NewBuilder()
		b.Return("top", 10)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.TopModule.Name).To(Equal("top"))
		Expect(sim.Graph.Edges).To(Equal([]graph.Edge{
			graph.ControlFlowEdge{U: graph.NodeWithDelay{Node: 0, Delay: 10}},
		}))
	})

	It("rejects Finish when a call frame is still open", func() {
		b := compile.NewBuilder()
		b.Call(0, 0, 5, 0, false)
		_, err := b.Finish()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("call frame"))
	})

	It("rejects Finish when a FIFO write never gets a matching read", func() {
		const fifo graph.FifoID = 1
		b := compile.NewBuilder()
		b.AddFifoWrite(0, 3, fifo)
		b.Return("top", 4)
		_, err := b.Finish()
		Expect(err).To(HaveOccurred())
	})

	It("rejects calling Finish twice", func() {
		b := compile.NewBuilder()
		b.Return("top", 1)
		_, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())
		_, err = b.Finish()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("twice"))
	})

	It("nests a submodule's start and end inside its caller's timeline", func() {
		b := compile.NewBuilder()
		b.Call(0, 2, 8, 1, false)
		b.Return("child", 8)
		b.Return("top", 10)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.TopModule.Submodules).To(HaveLen(1))
		Expect(sim.TopModule.Submodules[0].Name).To(Equal("child"))
		// Called at the caller's stage 2 with a 1-cycle start delay, the child
		// starts 3 cycles after the caller's start and ends 8 cycles later.
		Expect(sim.TopModule.Start).To(Equal(graph.NodeWithDelay{Node: 0, Delay: 0}))
		Expect(sim.TopModule.Submodules[0].Start).To(Equal(graph.NodeWithDelay{Node: 0, Delay: 3}))
		Expect(sim.TopModule.Submodules[0].End).To(Equal(graph.NodeWithDelay{Node: 0, Delay: 11}))
	})

	It("drops trace events arriving after the top module returned", func() {
		b := compile.NewBuilder()
		b.Return("top", 5)
		b.Return("ghost", 9)
		b.AddFifoWrite(0, 1, 1)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.TopModule.Name).To(Equal("top"))
		Expect(sim.FifoNodes).To(BeEmpty())
	})

	It("commits events sitting at the module's final stage on return", func() {
		const fifo graph.FifoID = 1
		b := compile.NewBuilder()
		b.AddFifoWrite(0, 3, fifo)
		b.AddFifoRead(3, 6, fifo)
		b.Return("top", 6)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.FifoNodes[fifo].Reads).To(HaveLen(1))
	})

	It("finishes an rctl-overflowing read stream with no incomplete edges", func() {
		const iface graph.AxiAddress = 0x4000
		b := compile.NewBuilder()
		for i := 0; i < 20; i++ {
			s := graph.SimulationStage(i)
			b.AddAxiReadReq(s, s, iface, compile.AxiRequestRange{Offset: 0, Increment: 8, Count: 1})
			b.AddAxiRead(s, s+20, iface)
		}
		b.Return("top", 41)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.AxiInterfaceNodes[iface].ReadReqs).To(HaveLen(20))
		Expect(sim.AxiInterfaceNodes[iface].Reads).To(HaveLen(20))
	})

	It("merges a dataflow child's rctl queue into its parent on return", func() {
		const iface graph.AxiAddress = 0x5000
		b := compile.NewBuilder()
		b.Call(0, 0, 25, 0, false)
		for i := 0; i < 9; i++ {
			s := graph.SimulationStage(i)
			b.AddAxiReadReq(s, s, iface, compile.AxiRequestRange{Offset: 0, Increment: 8, Count: 1})
			b.AddAxiRead(s, s+9, iface)
		}
		b.Return("loader_a", 25)
		b.Call(0, 0, 25, 0, false)
		for i := 0; i < 9; i++ {
			s := graph.SimulationStage(i)
			b.AddAxiReadReq(s, s, iface, compile.AxiRequestRange{Offset: 4096, Increment: 8, Count: 1})
			b.AddAxiRead(s, s+9, iface)
		}
		b.Return("loader_b", 25)
		b.Return("top", 25)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.AxiInterfaceNodes[iface].Reads).To(HaveLen(18))
	})

	It("wires a FIFO write to its read with a FifoRaw edge", func() {
		const fifo graph.FifoID = 1
		b := compile.NewBuilder()
		b.AddFifoWrite(0, 3, fifo)
		b.AddFifoRead(3, 5, fifo)
		b.Return("top", 6)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())
		Expect(sim.FifoNodes).To(HaveKey(fifo))
		Expect(sim.FifoNodes[fifo].Writes).To(HaveLen(1))
		Expect(sim.FifoNodes[fifo].Reads).To(HaveLen(1))
		Expect(sim.Graph.InEdges(sim.FifoNodes[fifo].Reads[0])).To(ContainElement(
			graph.FifoRawEdge{U: sim.FifoNodes[fifo].Writes[0], Fifo: fifo},
		))
	})
})
