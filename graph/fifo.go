package graph

// FifoType is the hardware implementation a FIFO compiles down to, which is
// entirely determined by its configured depth.
type FifoType int

const (
	// ShiftRegister is used for unset or shallow (<=2) depths.
	ShiftRegister FifoType = iota
	// RAM is used for depths greater than 2.
	RAM
)

// FifoTypeFromDepth selects the hardware implementation for a FIFO depth.
// depth == nil means "unset," which behaves like the shift-register default.
func FifoTypeFromDepth(depth *int) FifoType {
	if depth == nil || *depth <= 2 {
		return ShiftRegister
	}
	return RAM
}

// RawDelay is the read-after-write delay added on top of the write node.
func (t FifoType) RawDelay() ClockCycle {
	if t == RAM {
		return RamRawDelay
	}
	return ShiftRegisterRawDelay
}

// WarDelay is the write-after-read delay added on top of the read node.
func (t FifoType) WarDelay() ClockCycle {
	if t == RAM {
		return RamWarDelay
	}
	return ShiftRegisterWarDelay
}

// FifoIoNodes records, for one FIFO, the graph node backing every write and
// every read observed in the trace.
//
// The first write may have no dependencies of its own and therefore may not
// be its own node, hence NodeWithDelay; every read always depends on its
// matching write and so is always its own node, hence plain NodeIndex.
type FifoIoNodes struct {
	Writes []NodeWithDelay
	Reads  []NodeIndex
}

// FifoIO is the resolved, per-cycle view of a FIFO's activity once a
// schedule has been computed.
type FifoIO struct {
	Writes []ClockCycle
	Reads  []ClockCycle
}

// NewFifoIO resolves a FifoIoNodes against a computed node-cycle vector.
func NewFifoIO(nodes FifoIoNodes, nodeCycles []ClockCycle) FifoIO {
	io := FifoIO{
		Writes: make([]ClockCycle, len(nodes.Writes)),
		Reads:  make([]ClockCycle, len(nodes.Reads)),
	}
	for i, w := range nodes.Writes {
		io.Writes[i] = w.Resolve(nodeCycles)
	}
	for i, r := range nodes.Reads {
		io.Reads[i] = nodeCycles[r]
	}
	return io
}

// ObservedDepth replays the resolved write/read cycles in cycle order and
// reports the actual high-water mark of in-flight FIFO entries. This is
// independent of the configured depth used to compute the schedule; it is
// useful for confirming that a chosen depth was actually sufficient.
func (f FifoIO) ObservedDepth() int {
	depth, maxDepth := 0, 0
	wi, ri := 0, 0
	for wi < len(f.Writes) {
		if ri >= len(f.Reads) {
			panic("graph: last read should never happen before last write")
		}
		if f.Writes[wi] < f.Reads[ri] {
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
			wi++
		} else {
			depth--
			ri++
		}
	}
	return maxDepth
}
