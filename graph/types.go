// Package graph defines the static, immutable vocabulary that the rest of
// the simulator shares: clock cycles, node/edge identifiers, the CSR
// dependency graph a trace compiles into, and the compiled module tree.
//
// Everything here is read-only once a [CompiledSimulation] finishes
// construction; the compile package is the only writer.
package graph

// ClockCycle counts simulated clock cycles.
type ClockCycle uint64

// NodeIndex indexes into a SimulationGraph's node array.
type NodeIndex uint32

// SimulationStage is a position within a module's static or dynamic
// schedule.
type SimulationStage uint32

// FifoID identifies a FIFO channel.
type FifoID uint32

// AxiAddress is the base address identifying an AXI interface, or a byte
// offset/length within one.
type AxiAddress uint64

// Wire-exact constants. These values come from the hardware models the
// trace was captured against and must never be "tuned."
const (
	MaxRctlDepth = 16

	AxiReadOverhead  ClockCycle = 12
	AxiWriteOverhead ClockCycle = 7

	ShiftRegisterRawDelay ClockCycle = 1
	ShiftRegisterWarDelay ClockCycle = 1
	RamRawDelay           ClockCycle = 2
	RamWarDelay           ClockCycle = 1

	SaxiStatusUpdateOverhead ClockCycle = 5
	SaxiStatusReadDelay      ClockCycle = 5
	SaxiStatusWriteDelay     ClockCycle = 6

	AxiPageSize AxiAddress = 4096
)

// NodeWithDelay is "the time Delay cycles after Node completes." It is used
// both as an edge source and as a module start/end cursor, so that partial
// offsets between a committed node and the current stage can accumulate
// without forcing a new node into existence.
type NodeWithDelay struct {
	Node  NodeIndex
	Delay ClockCycle
}

// Plus returns the node shifted later by d cycles.
func (n NodeWithDelay) Plus(d ClockCycle) NodeWithDelay {
	return NodeWithDelay{Node: n.Node, Delay: n.Delay + d}
}

// Add shifts n later by d cycles in place.
func (n *NodeWithDelay) Add(d ClockCycle) {
	n.Delay += d
}

// Resolve looks up the node's own cycle and adds the delay.
func (n NodeWithDelay) Resolve(nodeCycles []ClockCycle) ClockCycle {
	return nodeCycles[n.Node] + n.Delay
}

// NodeTime is either a node known to be absolute (a specific node index plus
// delay) or a delay relative to a module's not-yet-committed start. Events
// deferred on an uncommitted module carry a NodeTime so they can be replayed
// in absolute time once the module commits.
type NodeTime struct {
	absolute bool
	abs      NodeWithDelay
	rel      ClockCycle
}

// AbsoluteTime builds a NodeTime anchored to a known node.
func AbsoluteTime(n NodeWithDelay) NodeTime {
	return NodeTime{absolute: true, abs: n}
}

// RelativeTime builds a NodeTime that is delay cycles after its owning
// module's eventual start.
func RelativeTime(delay ClockCycle) NodeTime {
	return NodeTime{rel: delay}
}

// IsAbsolute reports whether the time is already anchored to a node.
func (t NodeTime) IsAbsolute() bool {
	return t.absolute
}

// Absolute returns the anchored node. Panics if !IsAbsolute().
func (t NodeTime) Absolute() NodeWithDelay {
	if !t.absolute {
		panic("graph: NodeTime is not absolute")
	}
	return t.abs
}

// RelativeDelay returns the delay-from-start. Panics if IsAbsolute().
func (t NodeTime) RelativeDelay() ClockCycle {
	if t.absolute {
		panic("graph: NodeTime is absolute, not relative")
	}
	return t.rel
}

// Resolve turns a possibly-relative time into an absolute node, given the
// start of the owning module.
func (t NodeTime) Resolve(start NodeWithDelay) NodeWithDelay {
	if t.absolute {
		return t.abs
	}
	return start.Plus(t.rel)
}

// Plus returns the time shifted later by d cycles.
func (t NodeTime) Plus(d ClockCycle) NodeTime {
	if t.absolute {
		return AbsoluteTime(t.abs.Plus(d))
	}
	return RelativeTime(t.rel + d)
}

// Add shifts t later by d cycles in place.
func (t *NodeTime) Add(d ClockCycle) {
	if t.absolute {
		t.abs.Add(d)
	} else {
		t.rel += d
	}
}
