package graph

// AxiAddressRange is a byte range of an AXI transfer, used for burst
// accounting.
type AxiAddressRange struct {
	Offset AxiAddress
	Length AxiAddress
}

// BurstCount returns how many 4KiB-page-aligned AXI bursts this range spans.
func (r AxiAddressRange) BurstCount() int {
	last := r.Offset + r.Length - 1
	return int(last/AxiPageSize) - int(r.Offset/AxiPageSize) + 1
}

// Advance returns the range shifted forward by by bytes, keeping its length.
// Used to walk a read/write request's cursor one transfer at a time.
func (r AxiAddressRange) Advance(by AxiAddress) AxiAddressRange {
	return AxiAddressRange{Offset: r.Offset + by, Length: r.Length}
}

// AxiGenericIoNode is a single AXI transfer (read, read-request, write, or
// write-request) and the byte range it covers.
type AxiGenericIoNode struct {
	Node  NodeWithDelay
	Range AxiAddressRange
}

// AxiInterfaceIoNodes records every transfer observed on one AXI interface.
// Write responses carry no range: they are not addressed transfers
// themselves, only acknowledgements of one.
type AxiInterfaceIoNodes struct {
	ReadReqs   []AxiGenericIoNode
	Reads      []AxiGenericIoNode
	WriteReqs  []AxiGenericIoNode
	Writes     []AxiGenericIoNode
	WriteResps []NodeWithDelay
}

// AxiInterfaceIO is the resolved, per-cycle view of one interface's activity.
type AxiInterfaceIO struct {
	ReadReqs   []ClockCycle
	Reads      []ClockCycle
	WriteReqs  []ClockCycle
	Writes     []ClockCycle
	WriteResps []ClockCycle
}

// NewAxiInterfaceIO resolves an AxiInterfaceIoNodes against a computed
// node-cycle vector.
func NewAxiInterfaceIO(nodes AxiInterfaceIoNodes, nodeCycles []ClockCycle) AxiInterfaceIO {
	resolveGeneric := func(ns []AxiGenericIoNode) []ClockCycle {
		out := make([]ClockCycle, len(ns))
		for i, n := range ns {
			out[i] = n.Node.Resolve(nodeCycles)
		}
		return out
	}
	resolveDelay := func(ns []NodeWithDelay) []ClockCycle {
		out := make([]ClockCycle, len(ns))
		for i, n := range ns {
			out[i] = n.Resolve(nodeCycles)
		}
		return out
	}
	return AxiInterfaceIO{
		ReadReqs:   resolveGeneric(nodes.ReadReqs),
		Reads:      resolveGeneric(nodes.Reads),
		WriteReqs:  resolveGeneric(nodes.WriteReqs),
		Writes:     resolveGeneric(nodes.Writes),
		WriteResps: resolveDelay(nodes.WriteResps),
	}
}
