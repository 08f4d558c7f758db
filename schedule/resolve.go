package schedule

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sarchlab/lightningsim/graph"
)

var kindCaser = cases.Title(language.English)

func titleCase(s string) string {
	return kindCaser.String(strings.ToLower(s))
}

// DeadlockError is returned when resolving the graph discovers a cycle: a
// node transitively depends on itself under the given parameters. Node names
// the node the cycle was discovered re-entering.
type DeadlockError struct {
	Node graph.NodeIndex
}

func (e *DeadlockError) Error() string {
	return fmt.Sprintf("schedule: deadlock detected at node %d", e.Node)
}

const (
	stateUnvisited uint8 = iota
	stateVisiting
	stateVisited
)

// visit is one entry of the resolver's explicit DFS stack. preorder
// distinguishes "descend into node" entries from the postorder sentinel
// pushed right after a node is marked visiting, which relaxes the node's
// parent once every in-edge beneath it has finished.
type visit struct {
	node        graph.NodeIndex
	parent      graph.NodeIndex
	hasParent   bool
	parentDelay graph.ClockCycle
	preorder    bool
}

// Execute replays sim under params, walking the CSR dependency graph from
// its end node via an explicit-stack iterative DFS, and returns the clock
// cycle computed for every node: node_cycles[v] is the maximum, over v's
// in-edges, of source_cycle + edge_delay.
func Execute(sim *graph.CompiledSimulation, params ParameterSource) ([]graph.ClockCycle, error) {
	n := sim.NodeCount()
	nodeCycles := make([]graph.ClockCycle, n)
	state := make([]uint8, n)

	relax := func(parent, node graph.NodeIndex, delay graph.ClockCycle) {
		if v := nodeCycles[node] + delay; v > nodeCycles[parent] {
			nodeCycles[parent] = v
		}
	}

	stack := []visit{{node: sim.EndNode, preorder: true}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !item.preorder {
			state[item.node] = stateVisited
			if item.hasParent {
				relax(item.parent, item.node, item.parentDelay)
			}
			continue
		}

		switch state[item.node] {
		case stateVisited:
			if item.hasParent {
				relax(item.parent, item.node, item.parentDelay)
			}
			continue
		case stateVisiting:
			logDeadlock(sim, item.node)
			return nil, &DeadlockError{Node: item.node}
		}

		state[item.node] = stateVisiting
		stack = append(stack, visit{
			node:        item.node,
			parent:      item.parent,
			hasParent:   item.hasParent,
			parentDelay: item.parentDelay,
			preorder:    false,
		})

		for _, e := range sim.Graph.InEdges(item.node) {
			nd, ok, err := e.Resolve(sim, params)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			stack = append(stack, visit{
				node:        nd.Node,
				parent:      item.node,
				hasParent:   true,
				parentDelay: nd.Delay,
				preorder:    true,
			})
		}
	}

	return nodeCycles, nil
}

func logDeadlock(sim *graph.CompiledSimulation, node graph.NodeIndex) {
	kinds := make([]string, 0, len(sim.Graph.InEdges(node)))
	for _, e := range sim.Graph.InEdges(node) {
		kinds = append(kinds, titleCase(edgeKindName(e)))
	}
	slog.Warn("Schedule",
		"Behavior", "DeadlockDetected",
		"Node", node,
		"ReenteredInEdgeKinds", kinds,
	)
}

func edgeKindName(e graph.Edge) string {
	switch e.(type) {
	case graph.ControlFlowEdge:
		return "control flow"
	case graph.FifoRawEdge:
		return "fifo raw"
	case graph.FifoWarEdge:
		return "fifo war"
	case graph.AxiRctlEdge:
		return "axi rctl"
	case graph.AxiReadEdge:
		return "axi read"
	case graph.AxiWriteRespEdge:
		return "axi write resp"
	default:
		return "unknown"
	}
}
