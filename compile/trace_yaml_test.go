package compile_test

import (
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/lightningsim/compile"
	"github.com/sarchlab/lightningsim/graph"
)

// yamlTrace is the on-disk shape of a trace fixture: a flat event list in
// trace order, one entry per builder call.
type yamlTrace struct {
	Name   string           `yaml:"name"`
	Events []yamlTraceEvent `yaml:"events"`
}

type yamlTraceEvent struct {
	Op         string                `yaml:"op"`
	SafeOffset graph.SimulationStage `yaml:"safe_offset"`
	Stage      graph.SimulationStage `yaml:"stage"`

	Fifo      graph.FifoID     `yaml:"fifo"`
	Interface graph.AxiAddress `yaml:"interface"`
	Offset    graph.AxiAddress `yaml:"offset"`
	Increment graph.AxiAddress `yaml:"increment"`
	Count     uint32           `yaml:"count"`

	StartStage        graph.SimulationStage `yaml:"start_stage"`
	EndStage          graph.SimulationStage `yaml:"end_stage"`
	StartDelay        graph.ClockCycle      `yaml:"start_delay"`
	InheritApContinue bool                  `yaml:"inherit_ap_continue"`
	Module            string                `yaml:"module"`
}

func loadTrace(path string) (*yamlTrace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trace fixture: %w", err)
	}
	var trace yamlTrace
	if err := yaml.Unmarshal(data, &trace); err != nil {
		return nil, fmt.Errorf("parsing trace fixture: %w", err)
	}
	return &trace, nil
}

func replayTrace(b *compile.Builder, trace *yamlTrace) error {
	for i, ev := range trace.Events {
		switch ev.Op {
		case "fifo_read":
			b.AddFifoRead(ev.SafeOffset, ev.Stage, ev.Fifo)
		case "fifo_write":
			b.AddFifoWrite(ev.SafeOffset, ev.Stage, ev.Fifo)
		case "axi_readreq":
			b.AddAxiReadReq(ev.SafeOffset, ev.Stage, ev.Interface, compile.AxiRequestRange{
				Offset: ev.Offset, Increment: ev.Increment, Count: ev.Count,
			})
		case "axi_writereq":
			b.AddAxiWriteReq(ev.SafeOffset, ev.Stage, ev.Interface, compile.AxiRequestRange{
				Offset: ev.Offset, Increment: ev.Increment, Count: ev.Count,
			})
		case "axi_read":
			b.AddAxiRead(ev.SafeOffset, ev.Stage, ev.Interface)
		case "axi_write":
			b.AddAxiWrite(ev.SafeOffset, ev.Stage, ev.Interface)
		case "axi_writeresp":
			b.AddAxiWriteResp(ev.SafeOffset, ev.Stage, ev.Interface)
		case "call":
			b.Call(ev.SafeOffset, ev.StartStage, ev.EndStage, ev.StartDelay, ev.InheritApContinue)
		case "return":
			b.Return(ev.Module, ev.EndStage)
		default:
			return fmt.Errorf("event %d: unknown op %q", i, ev.Op)
		}
	}
	return nil
}

var _ = Describe("YAML trace fixtures", func() {
	It("compiles the vecadd pipeline fixture into a well-formed simulation", func() {
		trace, err := loadTrace(filepath.Join("testdata", "vecadd_pipeline.yaml"))
		Expect(err).NotTo(HaveOccurred())
		Expect(trace.Name).To(Equal("vecadd_pipeline"))

		b := compile.NewBuilder()
		Expect(replayTrace(b, trace)).To(Succeed())
		sim, err := b.Finish()
		Expect(err).NotTo(HaveOccurred())

		Expect(sim.TopModule.Name).To(Equal("vecadd"))
		names := make([]string, 0, len(sim.TopModule.Submodules))
		for _, sub := range sim.TopModule.Submodules {
			names = append(names, sub.Name)
		}
		Expect(names).To(Equal([]string{"load_input", "compute", "store_output"}))

		Expect(sim.FifoNodes[7].Writes).To(HaveLen(2))
		Expect(sim.FifoNodes[7].Reads).To(HaveLen(2))
		Expect(sim.FifoNodes[8].Writes).To(HaveLen(2))
		Expect(sim.FifoNodes[8].Reads).To(HaveLen(2))

		load := sim.AxiInterfaceNodes[0x40000000]
		Expect(load.ReadReqs).To(HaveLen(1))
		Expect(load.Reads).To(HaveLen(2))
		store := sim.AxiInterfaceNodes[0x40001000]
		Expect(store.WriteReqs).To(HaveLen(1))
		Expect(store.Writes).To(HaveLen(2))
		Expect(store.WriteResps).To(HaveLen(1))

		// CSR well-formedness: offsets are non-decreasing and every edge's
		// resolvable source is a valid node index.
		offsets := sim.Graph.NodeOffsets
		for i := 1; i < len(offsets); i++ {
			Expect(offsets[i]).To(BeNumerically(">=", offsets[i-1]))
		}
		nodeCount := sim.Graph.NodeCount()
		for _, e := range sim.Graph.Edges {
			switch edge := e.(type) {
			case graph.ControlFlowEdge:
				Expect(int(edge.U.Node)).To(BeNumerically("<", nodeCount))
			case graph.FifoRawEdge:
				Expect(int(edge.U.Node)).To(BeNumerically("<", nodeCount))
			case graph.AxiRctlEdge:
				Expect(int(edge.U.Node)).To(BeNumerically("<", nodeCount))
			case graph.AxiReadEdge:
				Expect(int(edge.U.Node)).To(BeNumerically("<", nodeCount))
			case graph.AxiWriteRespEdge:
				Expect(int(edge.U.Node)).To(BeNumerically("<", nodeCount))
			}
		}
	})
})
