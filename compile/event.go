package compile

import "github.com/sarchlab/lightningsim/graph"

// event is one trace event deferred against a window offset until its static
// stage's safe offset has passed. hasInEdge reports whether the eventual
// commit needs to look up an in-edge from the owning stack frame's current
// control-flow cursor; isStalled reports whether the event represents work
// that occupies its producing stage (almost everything except a subcall's
// start, which is instantaneous from the caller's perspective).
type event interface {
	hasInEdge() bool
	isStalled() bool
}

// subcallStartEvent never induces an in-edge: the callee's start edge uses
// the caller's position as its source, so the call stage itself doesn't need
// a node of its own.
type subcallStartEvent struct {
	module moduleKey
	edge   edgeKey
}

func (subcallStartEvent) hasInEdge() bool { return false }
func (subcallStartEvent) isStalled() bool { return false }

type subcallEndEvent struct {
	edge edgeKey
}

func (subcallEndEvent) hasInEdge() bool { return true }
func (subcallEndEvent) isStalled() bool { return true }

type fifoReadEvent struct {
	fifo    graph.FifoID
	index   int
	rawEdge edgeKey
}

// Every read depends on its matching write through a FifoRaw edge, so a read
// always forces its own node, regardless of index.
func (fifoReadEvent) hasInEdge() bool { return true }
func (fifoReadEvent) isStalled() bool { return true }

type fifoWriteEvent struct {
	fifo    graph.FifoID
	index   int
	rawEdge edgeKey
}

func (e fifoWriteEvent) hasInEdge() bool { return e.index != 0 }
func (fifoWriteEvent) isStalled() bool   { return true }

type axiReadReqEvent struct {
	iface    graph.AxiAddress
	index    int
	readEdge edgeKey
}

func (axiReadReqEvent) hasInEdge() bool { return false }
func (axiReadReqEvent) isStalled() bool { return true }

type axiReadEvent struct {
	iface graph.AxiAddress
	index int

	haveReadEdge bool
	readEdge     edgeKey

	haveFirstRctl bool
	firstRctl     rctlTransaction

	haveLastOutEdge bool
	lastOutEdge     edgeKey
}

func (e axiReadEvent) hasInEdge() bool { return e.haveFirstRctl }
func (axiReadEvent) isStalled() bool   { return true }

type axiWriteReqEvent struct {
	iface graph.AxiAddress
	index int
}

func (axiWriteReqEvent) hasInEdge() bool { return false }
func (axiWriteReqEvent) isStalled() bool { return true }

// axiWriteEvent never carries an in-edge: a write's own completion never
// waits on anything upstream in the graph, even though the last write of a
// request produces a write-response edge downstream.
type axiWriteEvent struct {
	iface graph.AxiAddress
	index int

	haveWriteRespEdge bool
	writeRespEdge     edgeKey
}

func (axiWriteEvent) hasInEdge() bool { return false }
func (axiWriteEvent) isStalled() bool { return true }

type axiWriteResponseEvent struct {
	iface         graph.AxiAddress
	index         int
	writeRespEdge edgeKey
}

func (axiWriteResponseEvent) hasInEdge() bool { return true }
func (axiWriteResponseEvent) isStalled() bool { return true }
