package graph

import "fmt"

// ParameterSource answers the two questions the resolver needs to turn a
// symbolic edge delay into a concrete one: the configured depth of a FIFO,
// and the configured latency of an AXI interface. A missing entry is an
// error, not a zero value — unlike a FIFO depth of Some(None), which is a
// deliberate "use the default" and is represented by a nil *int with ok
// true, vs. ok false for "not provided."
type ParameterSource interface {
	// FifoDepth returns the configured depth for id. ok is false if the
	// caller never provided an entry for this FIFO at all; depth is nil if
	// the caller explicitly left the depth unset (defaulting to a shift
	// register).
	FifoDepth(id FifoID) (depth *int, ok bool)

	// AxiDelay returns the configured per-request latency for addr. ok is
	// false if the caller never provided an entry for this interface.
	AxiDelay(addr AxiAddress) (delay ClockCycle, ok bool)
}

// FifoDepthNotProvidedError is returned when a ParameterSource has no entry
// for a FIFO referenced by the graph.
type FifoDepthNotProvidedError struct {
	Fifo FifoID
}

func (e *FifoDepthNotProvidedError) Error() string {
	return fmt.Sprintf("no depth provided for FIFO with id %d", e.Fifo)
}

// AxiDelayNotProvidedError is returned when a ParameterSource has no entry
// for an AXI interface referenced by the graph.
type AxiDelayNotProvidedError struct {
	Interface AxiAddress
}

func (e *AxiDelayNotProvidedError) Error() string {
	return fmt.Sprintf("no delay provided for AXI interface with address %#010x", uint64(e.Interface))
}

func fifoDepth(p ParameterSource, fifo FifoID) (*int, error) {
	depth, ok := p.FifoDepth(fifo)
	if !ok {
		return nil, &FifoDepthNotProvidedError{Fifo: fifo}
	}
	return depth, nil
}

func axiDelay(p ParameterSource, iface AxiAddress) (ClockCycle, error) {
	delay, ok := p.AxiDelay(iface)
	if !ok {
		return 0, &AxiDelayNotProvidedError{Interface: iface}
	}
	if delay < 1 {
		delay = 1
	}
	return delay, nil
}

// Edge is an in-edge of the CSR dependency graph: "the node whose CSR slot
// holds this edge depends on the edge's source, at least Delay cycles
// later." The concrete delay of some edge kinds is only known once
// simulation parameters are supplied, which is what Resolve computes.
//
// This is a closed sum type: the only implementations are the ones in this
// file.
type Edge interface {
	// Resolve computes the edge's source node and total delay under the
	// given parameters. A nil NodeWithDelay-returning (false, ...) result
	// means the edge creates no dependency at all under these parameters
	// (e.g. a FifoWar edge whose index predates the FIFO filling up).
	Resolve(sim *CompiledSimulation, params ParameterSource) (NodeWithDelay, bool, error)
	isEdge()
}

// ControlFlowEdge has a delay fully known at build time.
type ControlFlowEdge struct {
	U NodeWithDelay
}

func (ControlFlowEdge) isEdge() {}

// Resolve implements Edge.
func (e ControlFlowEdge) Resolve(*CompiledSimulation, ParameterSource) (NodeWithDelay, bool, error) {
	return e.U, true, nil
}

// FifoRawEdge is a read-after-write dependency: a FIFO read depends on its
// matching write, with a delay determined by the FIFO's hardware
// implementation.
type FifoRawEdge struct {
	U    NodeWithDelay
	Fifo FifoID
}

func (FifoRawEdge) isEdge() {}

// Resolve implements Edge.
func (e FifoRawEdge) Resolve(_ *CompiledSimulation, params ParameterSource) (NodeWithDelay, bool, error) {
	depth, err := fifoDepth(params, e.Fifo)
	if err != nil {
		return NodeWithDelay{}, false, err
	}
	return e.U.Plus(FifoTypeFromDepth(depth).RawDelay()), true, nil
}

// FifoWarEdge is a write-after-read dependency: a FIFO write with Index>0
// depends on the read that last vacated the slot it reuses, which is only
// determined once the FIFO depth is known. If Index < depth (the FIFO never
// actually wrapped around that far), the edge is elided entirely.
type FifoWarEdge struct {
	Fifo  FifoID
	Index int
}

func (FifoWarEdge) isEdge() {}

// Resolve implements Edge.
func (e FifoWarEdge) Resolve(sim *CompiledSimulation, params ParameterSource) (NodeWithDelay, bool, error) {
	depth, err := fifoDepth(params, e.Fifo)
	if err != nil {
		return NodeWithDelay{}, false, err
	}
	if depth == nil || e.Index < *depth {
		return NodeWithDelay{}, false, nil
	}
	readIndex := e.Index - *depth
	source := sim.FifoNodes[e.Fifo].Reads[readIndex]
	return NodeWithDelay{Node: source, Delay: FifoTypeFromDepth(depth).WarDelay()}, true, nil
}

// AxiRctlEdge is a dependency caused by the AXI read-control FIFO filling
// up: a new read request must wait for an earlier read's response.
type AxiRctlEdge struct {
	U         NodeWithDelay
	Interface AxiAddress
}

func (AxiRctlEdge) isEdge() {}

// Resolve implements Edge.
func (e AxiRctlEdge) Resolve(_ *CompiledSimulation, params ParameterSource) (NodeWithDelay, bool, error) {
	delay, err := axiDelay(params, e.Interface)
	if err != nil {
		return NodeWithDelay{}, false, err
	}
	return e.U.Plus(delay + AxiReadOverhead - AxiWriteOverhead), true, nil
}

// AxiReadEdge is a dependency between an AXI read request and one of its
// corresponding reads.
type AxiReadEdge struct {
	U         NodeWithDelay
	Interface AxiAddress
}

func (AxiReadEdge) isEdge() {}

// Resolve implements Edge.
func (e AxiReadEdge) Resolve(_ *CompiledSimulation, params ParameterSource) (NodeWithDelay, bool, error) {
	delay, err := axiDelay(params, e.Interface)
	if err != nil {
		return NodeWithDelay{}, false, err
	}
	return e.U.Plus(delay + AxiReadOverhead), true, nil
}

// AxiWriteRespEdge is a dependency between an AXI write and its
// corresponding write response.
type AxiWriteRespEdge struct {
	U         NodeWithDelay
	Interface AxiAddress
}

func (AxiWriteRespEdge) isEdge() {}

// Resolve implements Edge.
func (e AxiWriteRespEdge) Resolve(_ *CompiledSimulation, params ParameterSource) (NodeWithDelay, bool, error) {
	delay, err := axiDelay(params, e.Interface)
	if err != nil {
		return NodeWithDelay{}, false, err
	}
	return e.U.Plus(delay + AxiWriteOverhead), true, nil
}
