package schedule

//go:generate mockgen -write_package_comment=false -package=schedule -destination=mock_parametersource_test.go github.com/sarchlab/lightningsim/graph ParameterSource

import (
	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lightningsim/graph"
)

// straightLineGraph returns a three-node chain 0 -> 1 -> 2 joined by
// ControlFlow edges, with EndNode = 2, so Execute has something trivial to
// walk without needing a FIFO or AXI parameter at all.
func straightLineGraph() *graph.CompiledSimulation {
	edges := []graph.Edge{
		graph.ControlFlowEdge{U: graph.NodeWithDelay{Node: 0, Delay: 3}},
		graph.ControlFlowEdge{U: graph.NodeWithDelay{Node: 1, Delay: 4}},
	}
	g := graph.SimulationGraph{NodeOffsets: []int{0, 0, 1, 2}, Edges: edges}
	return &graph.CompiledSimulation{Graph: g, EndNode: 2}
}

var _ = Describe("Execute", func() {
	var mockCtrl *gomock.Controller

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	It("relaxes a straight-line chain to the sum of its delays", func() {
		params := NewMockParameterSource(mockCtrl)
		cycles, err := Execute(straightLineGraph(), params)
		Expect(err).NotTo(HaveOccurred())
		Expect(cycles).To(Equal([]graph.ClockCycle{0, 3, 7}))
	})

	It("surfaces a missing FIFO depth as an error rather than a deadlock", func() {
		g := graph.SimulationGraph{
			NodeOffsets: []int{0, 0, 1},
			Edges:       []graph.Edge{graph.FifoRawEdge{U: graph.NodeWithDelay{Node: 0}, Fifo: 9}},
		}
		sim := &graph.CompiledSimulation{Graph: g, EndNode: 1}

		params := NewMockParameterSource(mockCtrl)
		params.EXPECT().FifoDepth(graph.FifoID(9)).Return(nil, false)

		_, err := Execute(sim, params)
		Expect(err).To(HaveOccurred())
		var notProvided *graph.FifoDepthNotProvidedError
		Expect(err).To(BeAssignableToTypeOf(notProvided))
	})

	It("detects a two-node cycle as a deadlock", func() {
		edges := []graph.Edge{
			graph.ControlFlowEdge{U: graph.NodeWithDelay{Node: 1}},
			graph.ControlFlowEdge{U: graph.NodeWithDelay{Node: 0}},
		}
		g := graph.SimulationGraph{NodeOffsets: []int{0, 1, 2}, Edges: edges}
		sim := &graph.CompiledSimulation{Graph: g, EndNode: 0}

		params := NewMockParameterSource(mockCtrl)
		_, err := Execute(sim, params)
		Expect(err).To(HaveOccurred())
		var deadlock *DeadlockError
		Expect(err).To(BeAssignableToTypeOf(deadlock))
	})
})
