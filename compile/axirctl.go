package compile

import "github.com/sarchlab/lightningsim/graph"

// rctlTransaction is one outstanding AXI read burst as seen by an [axiRctl]
// queue: the capacity it consumes, and the two edges that couple it to its
// neighbors once the queue overflows.
type rctlTransaction struct {
	burstCount int
	inEdge     edgeKey
	outEdge    edgeKey
}

type rctlHeadTransaction struct {
	burstCount int
	inEdge     edgeKey
}

// axiRctl models the bounded-depth AXI read-control queue of one interface,
// which holds up to [graph.MaxRctlDepth] outstanding bursts. A push that finds
// the queue already holding MaxRctlDepth or more bursts first evicts the
// oldest outstanding transactions until fewer remain, and the new
// transaction is made to depend on the last of them. The check happens before
// the new transaction is added, so a multi-burst transaction can leave the
// queue above MaxRctlDepth —
// the real hardware constraint this represents is that the read-response
// control FIFO has nowhere to put a new entry until an old one drains.
//
// A zero-value axiRctl is a valid empty queue.
type axiRctl struct {
	overflowed bool
	queue      []rctlTransaction // valid only while !overflowed
	head       []rctlHeadTransaction
	tail       []rctlTransaction // valid only while overflowed
	depth      int
}

// push submits transaction, evicting from the front as needed to stay within
// capacity and wiring the resulting dependency edges via edges.
func (r *axiRctl) push(edges *edgeBuilder, transaction rctlTransaction) {
	blockingOutEdge := voidEdgeKey
	haveBlocking := false

	for r.depth >= graph.MaxRctlDepth {
		var evicted rctlTransaction
		if !r.overflowed {
			r.head = make([]rctlHeadTransaction, len(r.queue))
			for i, t := range r.queue {
				r.head[i] = rctlHeadTransaction{burstCount: t.burstCount, inEdge: t.inEdge}
			}
			evicted, r.queue = r.queue[0], r.queue[1:]
			r.tail = r.queue
			r.queue = nil
			r.overflowed = true
		} else {
			evicted, r.tail = r.tail[0], r.tail[1:]
		}
		r.depth -= evicted.burstCount

		if haveBlocking {
			edges.VoidDestination(blockingOutEdge)
		}
		blockingOutEdge = evicted.outEdge
		haveBlocking = true
	}

	if haveBlocking {
		edges.Join(blockingOutEdge, transaction.inEdge)
	} else if r.overflowed {
		edges.VoidSource(transaction.inEdge)
	}

	r.depth += transaction.burstCount
	if r.overflowed {
		r.tail = append(r.tail, transaction)
	} else {
		r.queue = append(r.queue, transaction)
	}
}

// extend splices a sibling dataflow region's rctl queue onto the end of r,
// used when a dataflow-sink child module returns and its per-interface
// queues must merge into the parent's.
func (r *axiRctl) extend(edges *edgeBuilder, other axiRctl) {
	if !other.overflowed {
		for _, t := range other.queue {
			r.push(edges, t)
		}
		return
	}

	overlapLen := len(other.head)
	for _, t := range other.head {
		r.push(edges, rctlTransaction{burstCount: t.burstCount, inEdge: t.inEdge, outEdge: voidEdgeKey})
	}
	if !r.overflowed {
		panic("compile: axiRctl.extend produced a queue that did not overflow")
	}

	// The transactions still in r's tail fall into two groups: the last
	// overlapLen are the synthetic copies of other's head just pushed (their
	// out edges are pre-voided), and anything before them is a real
	// transaction displaced by the splice, whose out edge now dangles.
	if len(r.tail) > overlapLen {
		for _, t := range r.tail[:len(r.tail)-overlapLen] {
			edges.VoidDestination(t.outEdge)
		}
	}
	r.tail = other.tail
	r.depth = other.depth
}

// finish voids every edge still referenced by outstanding transactions, so
// the graph never contains a stray incomplete edge.
func (r *axiRctl) finish(edges *edgeBuilder) {
	if !r.overflowed {
		for _, t := range r.queue {
			edges.VoidSource(t.inEdge)
			edges.VoidDestination(t.outEdge)
		}
		return
	}
	for _, t := range r.head {
		edges.VoidSource(t.inEdge)
	}
	for _, t := range r.tail {
		edges.VoidDestination(t.outEdge)
	}
}
