package compile

import (
	"fmt"

	"github.com/sarchlab/lightningsim/graph"
)

// edgeKey identifies an incomplete edge within an [edgeBuilder]. voidEdgeKey
// is a sentinel accepted by every mutating method as a pre-voided no-op,
// used when a caller already knows an edge will never matter (e.g. a
// synthetic rctl transaction fabricated by [axiRctl.extend]).
type edgeKey = int

const voidEdgeKey edgeKey = -1

type edgeKind int

const (
	edgeControlFlow edgeKind = iota
	edgeFifoRaw
	edgeAxiRctl
	edgeAxiRead
	edgeAxiWriteResp
)

type incompleteEdge struct {
	kind  edgeKind
	fifo  graph.FifoID
	iface graph.AxiAddress
	delay graph.ClockCycle

	sourceKnown  bool
	sourceIsSome bool
	sourceNode   graph.NodeIndex

	destKnown  bool
	destIsSome bool
	destIdx    int

	isRedirect bool
	redirect   edgeKey
}

func (e incompleteEdge) materialize() graph.Edge {
	u := graph.NodeWithDelay{Node: e.sourceNode, Delay: e.delay}
	switch e.kind {
	case edgeControlFlow:
		return graph.ControlFlowEdge{U: u}
	case edgeFifoRaw:
		return graph.FifoRawEdge{U: u, Fifo: e.fifo}
	case edgeAxiRctl:
		return graph.AxiRctlEdge{U: u, Interface: e.iface}
	case edgeAxiRead:
		return graph.AxiReadEdge{U: u, Interface: e.iface}
	case edgeAxiWriteResp:
		return graph.AxiWriteRespEdge{U: u, Interface: e.iface}
	default:
		panic("compile: unknown incomplete edge kind")
	}
}

// edgeBuilder accumulates the CSR dependency graph one node and one edge
// endpoint at a time. Edges are created with one or both endpoints unknown
// and are completed, voided, or joined into one another as the trace
// replays; at [edgeBuilder.Finish] every incomplete edge must have resolved.
type edgeBuilder struct {
	nodeOffsets []int
	edges       []graph.Edge
	incomplete  slab[incompleteEdge]
	pending     int
}

// newEdgeBuilder returns an empty edgeBuilder.
func newEdgeBuilder() *edgeBuilder {
	return &edgeBuilder{}
}

// InsertNode allocates a new node, whose in-edges are whatever gets pushed
// into the builder between this call and the next InsertNode call.
func (b *edgeBuilder) InsertNode() graph.NodeIndex {
	index := len(b.nodeOffsets)
	b.nodeOffsets = append(b.nodeOffsets, len(b.edges))
	return graph.NodeIndex(index)
}

func (b *edgeBuilder) insert(kind edgeKind, fifo graph.FifoID, iface graph.AxiAddress) edgeKey {
	key := b.incomplete.insert(incompleteEdge{kind: kind, fifo: fifo, iface: iface})
	b.pending++
	return key
}

// InsertControlFlowEdge starts a new edge of known type ControlFlow.
func (b *edgeBuilder) InsertControlFlowEdge() edgeKey { return b.insert(edgeControlFlow, 0, 0) }

// InsertFifoRawEdge starts a new edge of known type FifoRaw for fifo.
func (b *edgeBuilder) InsertFifoRawEdge(fifo graph.FifoID) edgeKey {
	return b.insert(edgeFifoRaw, fifo, 0)
}

// InsertAxiRctlEdge starts a new edge of known type AxiRctl for iface.
func (b *edgeBuilder) InsertAxiRctlEdge(iface graph.AxiAddress) edgeKey {
	return b.insert(edgeAxiRctl, 0, iface)
}

// InsertAxiReadEdge starts a new edge of known type AxiRead for iface.
func (b *edgeBuilder) InsertAxiReadEdge(iface graph.AxiAddress) edgeKey {
	return b.insert(edgeAxiRead, 0, iface)
}

// InsertAxiWriteRespEdge starts a new edge of known type AxiWriteResp for iface.
func (b *edgeBuilder) InsertAxiWriteRespEdge(iface graph.AxiAddress) edgeKey {
	return b.insert(edgeAxiWriteResp, 0, iface)
}

// PushEdge appends a fully known edge directly, bypassing the incomplete
// table. Used for synthetic edges (e.g. FifoWar) whose existence is decided
// at commit time but whose delay is entirely resolved at replay time.
func (b *edgeBuilder) PushEdge(e graph.Edge) {
	b.edges = append(b.edges, e)
}

func (b *edgeBuilder) resolve(key edgeKey) edgeKey {
	for {
		if key == voidEdgeKey {
			return voidEdgeKey
		}
		e := b.incomplete.get(key)
		if !e.isRedirect {
			return key
		}
		key = e.redirect
	}
}

// AddDelay adds d to key's accumulated delay.
func (b *edgeBuilder) AddDelay(key edgeKey, d graph.ClockCycle) {
	if key = b.resolve(key); key == voidEdgeKey {
		return
	}
	b.incomplete.get(key).delay += d
}

// UpdateSource fixes key's source to source, completing the edge if its
// destination is already known.
func (b *edgeBuilder) UpdateSource(key edgeKey, source graph.NodeWithDelay) {
	if key = b.resolve(key); key == voidEdgeKey {
		return
	}
	e := b.incomplete.get(key)
	if e.sourceKnown {
		panic("compile: edge source already assigned")
	}
	e.delay += source.Delay
	e.sourceKnown = true
	e.sourceIsSome = true
	e.sourceNode = source.Node
	b.tryComplete(key)
}

// VoidSource marks key's source as never arriving: the edge will never emit
// a dependency, and its accumulated delay is discarded.
func (b *edgeBuilder) VoidSource(key edgeKey) {
	if key = b.resolve(key); key == voidEdgeKey {
		return
	}
	e := b.incomplete.get(key)
	if e.sourceKnown {
		panic("compile: edge source already assigned")
	}
	e.sourceKnown = true
	b.tryComplete(key)
}

// PushDestination reserves the next CSR slot as key's destination,
// completing the edge if its source is already known. Returns the reserved
// slot index (callers normally discard it; CSR offsets account for it
// implicitly via the node it was reserved under).
func (b *edgeBuilder) PushDestination(key edgeKey) int {
	if key = b.resolve(key); key == voidEdgeKey {
		return -1
	}
	e := b.incomplete.get(key)
	if e.destKnown {
		panic("compile: edge destination already assigned")
	}
	idx := len(b.edges)
	b.edges = append(b.edges, nil)
	e.destKnown = true
	e.destIsSome = true
	e.destIdx = idx
	b.tryComplete(key)
	return idx
}

// VoidDestination marks key's destination as never arriving. Unlike
// PushDestination, no CSR slot is reserved: no node will ever list this edge.
func (b *edgeBuilder) VoidDestination(key edgeKey) {
	if key = b.resolve(key); key == voidEdgeKey {
		return
	}
	e := b.incomplete.get(key)
	if e.destKnown {
		panic("compile: edge destination already assigned")
	}
	e.destKnown = true
	b.tryComplete(key)
}

// Join merges two incomplete edges of the same type into one logical edge:
// sourceKey keeps receiving UpdateSource/VoidSource, destKey keeps receiving
// PushDestination/VoidDestination, and both act on the merged edge. Their
// delays add.
func (b *edgeBuilder) Join(sourceKey, destKey edgeKey) {
	sourceKey = b.resolve(sourceKey)
	destKey = b.resolve(destKey)
	if sourceKey == destKey {
		return
	}
	// Joining against the pre-voided sentinel voids the matching half of the
	// surviving edge: a source that will never arrive, or a destination that
	// will never be pushed.
	if sourceKey == voidEdgeKey {
		b.VoidSource(destKey)
		return
	}
	if destKey == voidEdgeKey {
		b.VoidDestination(sourceKey)
		return
	}
	s := b.incomplete.get(sourceKey)
	d := *b.incomplete.get(destKey)
	if s.kind != d.kind || s.fifo != d.fifo || s.iface != d.iface {
		panic("compile: join across mismatched edge types")
	}
	if s.sourceKnown && d.sourceKnown {
		panic("compile: edge source already assigned")
	}
	if s.destKnown && d.destKnown {
		panic("compile: edge destination already assigned")
	}
	s.delay += d.delay
	if d.destKnown {
		s.destKnown, s.destIsSome, s.destIdx = true, d.destIsSome, d.destIdx
	}
	if d.sourceKnown {
		s.sourceKnown, s.sourceIsSome, s.sourceNode = true, d.sourceIsSome, d.sourceNode
	}
	*b.incomplete.get(destKey) = incompleteEdge{isRedirect: true, redirect: sourceKey}
	b.pending--
	b.tryComplete(sourceKey)
}

func (b *edgeBuilder) tryComplete(key edgeKey) {
	e := b.incomplete.get(key)
	if !e.sourceKnown || !e.destKnown {
		return
	}
	edge := b.incomplete.remove(key)
	b.pending--
	if edge.sourceIsSome && edge.destIsSome {
		b.edges[edge.destIdx] = edge.materialize()
	}
}

// Finish compacts the CSR arrays and returns the finished graph. It fails if
// any incomplete edge never resolved.
func (b *edgeBuilder) Finish() (*graph.SimulationGraph, error) {
	if b.pending != 0 {
		return nil, fmt.Errorf("compile: %d incomplete edge(s) remain at finish", b.pending)
	}

	voidedBefore := make([]int, len(b.edges)+1)
	compacted := make([]graph.Edge, 0, len(b.edges))
	for i, e := range b.edges {
		voidedBefore[i+1] = voidedBefore[i]
		if e == nil {
			voidedBefore[i+1]++
			continue
		}
		compacted = append(compacted, e)
	}

	offsets := make([]int, len(b.nodeOffsets)+1)
	for i, off := range b.nodeOffsets {
		offsets[i] = off - voidedBefore[off]
	}
	offsets[len(b.nodeOffsets)] = len(compacted)

	return &graph.SimulationGraph{NodeOffsets: offsets, Edges: compacted}, nil
}
