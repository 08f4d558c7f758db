package compile

import (
	"fmt"

	"github.com/sarchlab/lightningsim/graph"
)

// fifoBuilder accumulates one FIFO's write and read node lists, pairing each
// write with its matching read through a [tee] so that exactly one FifoRaw
// edge is created per slot no matter which side of the pair the trace
// mentions first.
type fifoBuilder struct {
	writes []*graph.NodeWithDelay
	reads  []*graph.NodeIndex
	raw    tee
}

// insertWrite records a new write slot and returns its index plus the
// FifoRaw edge key to use as its source, allocating a fresh one if the
// matching read hasn't arrived yet.
func (f *fifoBuilder) insertWrite(edges *edgeBuilder, fifo graph.FifoID) (index int, rawEdge edgeKey) {
	index = len(f.writes)
	f.writes = append(f.writes, nil)
	if key, ok := f.raw.next(teeA); ok {
		return index, key
	}
	key := edges.InsertFifoRawEdge(fifo)
	f.raw.provide(teeA, key)
	return index, key
}

// insertRead records a new read slot and returns its index plus the FifoRaw
// edge key to use as its destination.
func (f *fifoBuilder) insertRead(edges *edgeBuilder, fifo graph.FifoID) (index int, rawEdge edgeKey) {
	index = len(f.reads)
	f.reads = append(f.reads, nil)
	if key, ok := f.raw.next(teeB); ok {
		return index, key
	}
	key := edges.InsertFifoRawEdge(fifo)
	f.raw.provide(teeB, key)
	return index, key
}

func (f *fifoBuilder) updateWrite(index int, node graph.NodeWithDelay) {
	if f.writes[index] != nil {
		panic("compile: FIFO write already committed")
	}
	f.writes[index] = &node
}

func (f *fifoBuilder) updateRead(index int, node graph.NodeIndex) {
	if f.reads[index] != nil {
		panic("compile: FIFO read already committed")
	}
	f.reads[index] = &node
}

// finish converts the builder into its finished [graph.FifoIoNodes], failing
// if any write/read slot or tee key is still outstanding.
func (f *fifoBuilder) finish() (graph.FifoIoNodes, error) {
	if !f.raw.isEmpty() {
		return graph.FifoIoNodes{}, fmt.Errorf("compile: incomplete FIFO edges remain")
	}
	writes := make([]graph.NodeWithDelay, len(f.writes))
	for i, w := range f.writes {
		if w == nil {
			return graph.FifoIoNodes{}, fmt.Errorf("compile: FIFO write %d never committed", i)
		}
		writes[i] = *w
	}
	reads := make([]graph.NodeIndex, len(f.reads))
	for i, r := range f.reads {
		if r == nil {
			return graph.FifoIoNodes{}, fmt.Errorf("compile: FIFO read %d never committed", i)
		}
		reads[i] = *r
	}
	return graph.FifoIoNodes{Writes: writes, Reads: reads}, nil
}
