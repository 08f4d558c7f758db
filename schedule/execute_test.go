package schedule_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lightningsim/compile"
	"github.com/sarchlab/lightningsim/graph"
	"github.com/sarchlab/lightningsim/schedule"
)

var _ = Describe("Execute end-to-end", func() {
	It("resolves a linear, IO-free module to its own duration", func() {
		b := compile.NewBuilder()
		b.Return("top", 10)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())

		cycles, err := schedule.Execute(sim, schedule.NewSimulationParametersBuilder().Build())
		Expect(err).NotTo(HaveOccurred())

		Expect(sim.TopModule.Start.Resolve(cycles)).To(Equal(graph.ClockCycle(0)))
		Expect(sim.TopModule.End.Resolve(cycles)).To(Equal(graph.ClockCycle(10)))
	})

	It("schedules a FIFO read from control flow when the write is already long done", func() {
		const fifo graph.FifoID = 1

		b := compile.NewBuilder()
		b.AddFifoWrite(0, 3, fifo)
		b.AddFifoRead(3, 5, fifo)
		b.Return("top", 6)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())

		depth := 2
		params := schedule.NewSimulationParametersBuilder().WithFifoDepth(fifo, &depth).Build()
		cycles, err := schedule.Execute(sim, params)
		Expect(err).NotTo(HaveOccurred())

		Expect(sim.FifoNodes[fifo].Writes[0].Resolve(cycles)).To(Equal(graph.ClockCycle(3)))
		Expect(cycles[sim.FifoNodes[fifo].Reads[0]]).To(Equal(graph.ClockCycle(5)))
		Expect(sim.TopModule.End.Resolve(cycles)).To(Equal(graph.ClockCycle(6)))
	})

	It("stalls a FIFO read on the matching write by the RAW delay", func() {
		const fifo graph.FifoID = 1

		// A producer and a consumer started back to back at stage 0; the
		// consumer tries to read at its stage 3, the same cycle the producer
		// writes, and is pushed one cycle later by the RAW dependency.
		b := compile.NewBuilder()
		b.Call(0, 0, 4, 0, false)
		b.AddFifoWrite(0, 3, fifo)
		b.Return("producer", 4)
		b.Call(0, 0, 8, 0, false)
		b.AddFifoRead(0, 3, fifo)
		b.Return("consumer", 8)
		b.Return("top", 8)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())

		depth := 2
		params := schedule.NewSimulationParametersBuilder().WithFifoDepth(fifo, &depth).Build()
		cycles, err := schedule.Execute(sim, params)
		Expect(err).NotTo(HaveOccurred())

		Expect(sim.FifoNodes[fifo].Writes[0].Resolve(cycles)).To(Equal(graph.ClockCycle(3)))
		Expect(cycles[sim.FifoNodes[fifo].Reads[0]]).To(Equal(graph.ClockCycle(4)))
	})

	It("reports a deadlock for a FIFO pair that cross-depends on itself", func() {
		graphNodes := graph.SimulationGraph{
			NodeOffsets: []int{0, 1, 2},
			Edges: []graph.Edge{
				graph.ControlFlowEdge{U: graph.NodeWithDelay{Node: 1}},
				graph.FifoRawEdge{U: graph.NodeWithDelay{Node: 0}, Fifo: 1},
			},
		}
		sim := &graph.CompiledSimulation{Graph: graphNodes, EndNode: 0}

		depth := 1
		params := schedule.NewSimulationParametersBuilder().WithFifoDepth(1, &depth).Build()
		_, err := schedule.Execute(sim, params)
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&schedule.DeadlockError{}))
	})

	It("couples the 17th read request to the 1st read through the rctl queue", func() {
		const (
			iface    graph.AxiAddress = 0x1000
			axiDelay graph.ClockCycle = 100
		)

		// Requests pipeline ahead of their data: request i issues at stage i
		// while read i only lands at stage 17+i, so all 17 requests are in
		// flight at once and the 17th must wait for the rctl queue to drain.
		b := compile.NewBuilder()
		for i := 0; i < 17; i++ {
			s := graph.SimulationStage(i)
			b.AddAxiReadReq(s, s, iface, compile.AxiRequestRange{Offset: 0, Increment: 8, Count: 1})
			b.AddAxiRead(s, s+17, iface)
		}
		b.Return("top", 35)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())

		params := schedule.NewSimulationParametersBuilder().WithAxiDelay(iface, axiDelay).Build()
		cycles, err := schedule.Execute(sim, params)
		Expect(err).NotTo(HaveOccurred())

		reads := sim.AxiInterfaceNodes[iface].Reads
		Expect(reads).To(HaveLen(17))

		// The 1st read follows its request by the full round trip; the 17th
		// overflows the 16-burst rctl queue and must additionally wait out
		// the 1st read's response.
		first := reads[0].Node.Resolve(cycles)
		last := reads[16].Node.Resolve(cycles)
		Expect(first).To(Equal(axiDelay + graph.AxiReadOverhead))
		Expect(last).To(Equal(first + axiDelay + graph.AxiReadOverhead - graph.AxiWriteOverhead))
	})

	It("schedules every node at or after each of its resolved in-edges", func() {
		const (
			fifo  graph.FifoID     = 1
			iface graph.AxiAddress = 0x3000
		)

		b := compile.NewBuilder()
		b.AddAxiReadReq(0, 0, iface, compile.AxiRequestRange{Offset: 0, Increment: 8, Count: 2})
		b.AddAxiRead(0, 2, iface)
		b.AddAxiRead(2, 3, iface)
		b.AddFifoWrite(3, 4, fifo)
		b.AddFifoRead(4, 6, fifo)
		b.Return("top", 8)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())

		depth := 4
		params := schedule.NewSimulationParametersBuilder().
			WithFifoDepth(fifo, &depth).
			WithAxiDelay(iface, 10).
			Build()
		cycles, err := schedule.Execute(sim, params)
		Expect(err).NotTo(HaveOccurred())

		for v := graph.NodeIndex(0); int(v) < sim.NodeCount(); v++ {
			for _, e := range sim.Graph.InEdges(v) {
				nd, ok, err := e.Resolve(sim, params)
				Expect(err).NotTo(HaveOccurred())
				if !ok {
					continue
				}
				Expect(cycles[v]).To(BeNumerically(">=", cycles[nd.Node]+nd.Delay))
			}
		}
	})

	It("resolves a write response after its last write by axi_delay+WRITE_OH", func() {
		const iface graph.AxiAddress = 0x2000

		b := compile.NewBuilder()
		b.AddAxiWriteReq(0, 0, iface, compile.AxiRequestRange{Offset: 0, Increment: 8, Count: 2})
		b.AddAxiWrite(0, 0, iface)
		b.AddAxiWrite(0, 1, iface)
		b.AddAxiWriteResp(1, 2, iface)
		b.Return("top", 3)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())

		params := schedule.NewSimulationParametersBuilder().WithAxiDelay(iface, 5).Build()
		cycles, err := schedule.Execute(sim, params)
		Expect(err).NotTo(HaveOccurred())

		lastWrite := sim.AxiInterfaceNodes[iface].Writes[1].Node.Resolve(cycles)
		writeResp := sim.AxiInterfaceNodes[iface].WriteResps[0].Resolve(cycles)
		Expect(lastWrite).To(Equal(graph.ClockCycle(1)))
		Expect(writeResp).To(Equal(lastWrite + 5 + graph.AxiWriteOverhead))
	})
})

var _ = Describe("Run", func() {
	const fifo graph.FifoID = 1

	compileFifoPair := func() *graph.CompiledSimulation {
		b := compile.NewBuilder()
		b.AddFifoWrite(0, 3, fifo)
		b.AddFifoRead(3, 5, fifo)
		b.Return("top", 6)
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())
		return sim
	}

	It("assembles the module tree and I/O cycle views", func() {
		sim := compileFifoPair()
		depth := 2
		params := schedule.NewSimulationParametersBuilder().WithFifoDepth(fifo, &depth).Build()

		result, err := schedule.Run(sim, params)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.TopModule.Name).To(Equal("top"))
		Expect(result.Latency()).To(Equal(graph.ClockCycle(6)))
		Expect(result.FifoIO[fifo].Writes).To(Equal([]graph.ClockCycle{3}))
		Expect(result.FifoIO[fifo].Reads).To(Equal([]graph.ClockCycle{5}))
	})

	It("derives the top ap_continue handshake from the configured port count", func() {
		sim := compileFifoPair()
		depth := 2
		params := schedule.NewSimulationParametersBuilder().
			WithFifoDepth(fifo, &depth).
			WithApCtrlChainTopPortCount(2).
			Build()

		result, err := schedule.Run(sim, params)
		Expect(err).NotTo(HaveOccurred())

		// ap_done = 6; interval = 5+2+1 = 8; the next status read lands at
		// 8+5 = 13 and the status write completes 6 cycles later.
		Expect(result.TopModule.ApDone).To(Equal(graph.ClockCycle(6)))
		Expect(result.TopModule.End).To(Equal(graph.ClockCycle(19)))
	})

	It("replays identically under the same parameters", func() {
		sim := compileFifoPair()
		depth := 3
		params := schedule.NewSimulationParametersBuilder().WithFifoDepth(fifo, &depth).Build()

		first, err := schedule.Run(sim, params)
		Expect(err).NotTo(HaveOccurred())
		second, err := schedule.Run(sim, params)
		Expect(err).NotTo(HaveOccurred())

		Expect(first.NodeCycles).To(Equal(second.NodeCycles))
		Expect(first.TopModule).To(Equal(second.TopModule))
		Expect(first.FifoIO).To(Equal(second.FifoIO))
	})
})
