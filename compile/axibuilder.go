package compile

import (
	"fmt"

	"github.com/sarchlab/lightningsim/graph"
)

// AxiRequestRange is a read or write request: count transfers of increment
// bytes each, starting at offset.
type AxiRequestRange struct {
	Offset    graph.AxiAddress
	Increment graph.AxiAddress
	Count     uint32
}

func (r AxiRequestRange) fullRange() graph.AxiAddressRange {
	return graph.AxiAddressRange{Offset: r.Offset, Length: r.Increment * graph.AxiAddress(r.Count)}
}

func (r AxiRequestRange) firstRange() graph.AxiAddressRange {
	return graph.AxiAddressRange{Offset: r.Offset, Length: r.Increment}
}

type axiGenericIoOptionalNode struct {
	node *graph.NodeWithDelay
	rng  graph.AxiAddressRange
}

// firstReadRctlData is handed back from axiBuilder.insertRead for the first
// read of a request: the transaction the driver must submit to the owning
// module's [axiRctl] once this read commits.
type firstReadRctlData struct {
	txn rctlTransaction
}

// axiBuilder accumulates one AXI interface's read/write traffic: request and
// transfer node lists, plus the bookkeeping needed to wire each transfer's
// AxiRead/AxiWriteResp edges and to hand the first read of every request off
// to the interface's [axiRctl] queue.
type axiBuilder struct {
	readReqs, reads, writeReqs, writes []axiGenericIoOptionalNode
	writeResps                         []*graph.NodeWithDelay

	pendingReadEdge edgeKey
	haveReadEdge    bool

	pendingWriteRespEdge edgeKey

	currentRead             graph.AxiAddressRange
	readReqReadsRemaining   uint32
	currentWrite            graph.AxiAddressRange
	writeReqWritesRemaining uint32

	pendingReadTxn   rctlTransaction
	firstReadPending bool
}

// insertReadReq records a new read request and returns its index and the
// AxiRead edge key its node should supply as source.
func (b *axiBuilder) insertReadReq(edges *edgeBuilder, iface graph.AxiAddress, req AxiRequestRange) (index int, readEdge edgeKey) {
	rng := req.fullRange()
	index = len(b.readReqs)
	b.readReqs = append(b.readReqs, axiGenericIoOptionalNode{rng: rng})

	b.currentRead = req.firstRange()
	b.readReqReadsRemaining = req.Count
	b.firstReadPending = true

	readEdge = edges.InsertAxiReadEdge(iface)
	b.pendingReadEdge, b.haveReadEdge = readEdge, true

	b.pendingReadTxn = rctlTransaction{
		burstCount: rng.BurstCount(),
		inEdge:     edges.InsertAxiRctlEdge(iface),
		outEdge:    edges.InsertAxiRctlEdge(iface),
	}
	return index, readEdge
}

// insertWriteReq records a new write request and returns its index.
func (b *axiBuilder) insertWriteReq(req AxiRequestRange) (index int) {
	index = len(b.writeReqs)
	b.writeReqs = append(b.writeReqs, axiGenericIoOptionalNode{rng: req.fullRange()})
	b.currentWrite = req.firstRange()
	b.writeReqWritesRemaining = req.Count
	return index
}

// insertRead records a new read transfer of the current request. readEdge is
// non-nil only for the transfer immediately following a readreq. first is
// non-nil only for the first transfer of a request; lastOutEdge is non-nil
// only for the last.
func (b *axiBuilder) insertRead() (index int, readEdge *edgeKey, first *firstReadRctlData, lastOutEdge *edgeKey) {
	rng := b.currentRead
	b.currentRead = rng.Advance(rng.Length)

	index = len(b.reads)
	b.reads = append(b.reads, axiGenericIoOptionalNode{rng: rng})

	if b.haveReadEdge {
		e := b.pendingReadEdge
		readEdge = &e
		b.haveReadEdge = false
	}

	if b.firstReadPending {
		first = &firstReadRctlData{txn: b.pendingReadTxn}
		b.firstReadPending = false
	}

	b.readReqReadsRemaining--
	if b.readReqReadsRemaining == 0 {
		e := b.pendingReadTxn.outEdge
		lastOutEdge = &e
	}
	return index, readEdge, first, lastOutEdge
}

// insertWrite records a new write transfer of the current request.
// writeRespEdge is non-nil only for the last transfer of a request.
func (b *axiBuilder) insertWrite(edges *edgeBuilder, iface graph.AxiAddress) (index int, writeRespEdge *edgeKey) {
	rng := b.currentWrite
	b.currentWrite = rng.Advance(rng.Length)

	index = len(b.writes)
	b.writes = append(b.writes, axiGenericIoOptionalNode{rng: rng})

	b.writeReqWritesRemaining--
	if b.writeReqWritesRemaining == 0 {
		e := edges.InsertAxiWriteRespEdge(iface)
		b.pendingWriteRespEdge = e
		writeRespEdge = &e
	}
	return index, writeRespEdge
}

// insertWriteResp records a new write response and returns its index and the
// AxiWriteResp edge key its node should supply as destination.
func (b *axiBuilder) insertWriteResp() (index int, writeRespEdge edgeKey) {
	index = len(b.writeResps)
	b.writeResps = append(b.writeResps, nil)
	return index, b.pendingWriteRespEdge
}

func (b *axiBuilder) updateReadReq(index int, node graph.NodeWithDelay) {
	setGenericNode(&b.readReqs[index], node)
}
func (b *axiBuilder) updateRead(index int, node graph.NodeWithDelay) {
	setGenericNode(&b.reads[index], node)
}
func (b *axiBuilder) updateWriteReq(index int, node graph.NodeWithDelay) {
	setGenericNode(&b.writeReqs[index], node)
}
func (b *axiBuilder) updateWrite(index int, node graph.NodeWithDelay) {
	setGenericNode(&b.writes[index], node)
}
func (b *axiBuilder) updateWriteResp(index int, node graph.NodeWithDelay) {
	if b.writeResps[index] != nil {
		panic("compile: AXI write response already committed")
	}
	b.writeResps[index] = &node
}

func setGenericNode(n *axiGenericIoOptionalNode, node graph.NodeWithDelay) {
	if n.node != nil {
		panic("compile: AXI transfer already committed")
	}
	n.node = &node
}

// finish converts the builder into its finished [graph.AxiInterfaceIoNodes].
func (b *axiBuilder) finish() (graph.AxiInterfaceIoNodes, error) {
	readReqs, err := resolveGenericList(b.readReqs)
	if err != nil {
		return graph.AxiInterfaceIoNodes{}, err
	}
	reads, err := resolveGenericList(b.reads)
	if err != nil {
		return graph.AxiInterfaceIoNodes{}, err
	}
	writeReqs, err := resolveGenericList(b.writeReqs)
	if err != nil {
		return graph.AxiInterfaceIoNodes{}, err
	}
	writes, err := resolveGenericList(b.writes)
	if err != nil {
		return graph.AxiInterfaceIoNodes{}, err
	}
	writeResps := make([]graph.NodeWithDelay, len(b.writeResps))
	for i, w := range b.writeResps {
		if w == nil {
			return graph.AxiInterfaceIoNodes{}, fmt.Errorf("compile: AXI write response %d never committed", i)
		}
		writeResps[i] = *w
	}
	return graph.AxiInterfaceIoNodes{
		ReadReqs:   readReqs,
		Reads:      reads,
		WriteReqs:  writeReqs,
		Writes:     writes,
		WriteResps: writeResps,
	}, nil
}

func resolveGenericList(nodes []axiGenericIoOptionalNode) ([]graph.AxiGenericIoNode, error) {
	out := make([]graph.AxiGenericIoNode, len(nodes))
	for i, n := range nodes {
		if n.node == nil {
			return nil, fmt.Errorf("compile: AXI transfer %d never committed", i)
		}
		out[i] = graph.AxiGenericIoNode{Node: *n.node, Range: n.rng}
	}
	return out, nil
}
