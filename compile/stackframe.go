package compile

import "github.com/sarchlab/lightningsim/graph"

// uncommittedNode is one static stage's worth of trace events, waiting in a
// stack frame's sliding window to discover whether any of them forces the
// stage to become its own graph node.
type uncommittedNode struct {
	events []event
}

// hasInEdge reports whether any event queued against this stage induces an
// in-edge, which is what forces the stage to become its own node rather than
// folding into the delay of whatever node precedes it.
func (n uncommittedNode) hasInEdge() bool {
	for _, e := range n.events {
		if e.hasInEdge() {
			return true
		}
	}
	return false
}

// stackFrame is the open call frame for one module on the builder's call
// stack: the sliding window of stages not yet committed to the graph, the
// control-flow edge currently accumulating delay, and the frame's current
// position (anchored to a node once one exists, otherwise still relative to
// the module's own not-yet-resolved start).
type stackFrame struct {
	moduleKey   moduleKey
	currentEdge edgeKey
	currentTime graph.NodeTime
	offset      graph.SimulationStage
	window      []uncommittedNode
}

func newStackFrame(key moduleKey, edge edgeKey, start graph.NodeTime) *stackFrame {
	return &stackFrame{moduleKey: key, currentEdge: edge, currentTime: start}
}

// addEvent queues ev against stage, growing the window as needed. Callers
// must have already committed the frame up to at least the event's
// safe_offset so that stage - offset never goes negative.
func (f *stackFrame) addEvent(stage graph.SimulationStage, ev event) {
	rel := int(stage) - int(f.offset)
	if rel < 0 {
		panic("compile: event stage precedes the frame's committed offset")
	}
	for len(f.window) <= rel {
		f.window = append(f.window, uncommittedNode{})
	}
	f.window[rel].events = append(f.window[rel].events, ev)
}

// commitUntil drains frame's window until its committed offset reaches
// target, inserting a graph node for every stage that turns out to need one
// and folding the rest into accumulated delay on the frame's current
// control-flow edge.
func (b *Builder) commitUntil(frame *stackFrame, target graph.SimulationStage) {
	for frame.offset < target && len(frame.window) > 0 {
		node := frame.window[0]
		frame.window = frame.window[1:]
		b.commitNode(frame, node, 1)
		frame.offset++
	}
	if frame.offset < target {
		delta := graph.ClockCycle(target - frame.offset)
		b.edges.AddDelay(frame.currentEdge, delta)
		frame.currentTime.Add(delta)
		frame.offset = target
	}
}

// commitNode resolves one stage's worth of events: if any of them induces an
// in-edge, the stage becomes its own node and the frame's control-flow edge
// is closed into it and reopened from advanceBy cycles past it; otherwise
// advanceBy cycles of delay are folded onto the still-open edge. Stalled
// events commit at the stage's own time (the new node itself, or the frame's
// pre-advance time); the one non-stalled kind (subcallStartEvent) commits at
// the frame's time from just before the stage committed, so a stalled call
// stage doesn't push the callee's start later than the call actually was.
func (b *Builder) commitNode(frame *stackFrame, node uncommittedNode, advanceBy graph.ClockCycle) {
	preTime := frame.currentTime
	stageTime := preTime

	if node.hasInEdge() {
		newNode := b.edges.InsertNode()
		b.edges.PushDestination(frame.currentEdge)
		next := graph.NodeWithDelay{Node: newNode, Delay: advanceBy}
		frame.currentEdge = b.edges.InsertControlFlowEdge()
		b.edges.UpdateSource(frame.currentEdge, next)
		frame.currentTime = graph.AbsoluteTime(next)
		stageTime = graph.AbsoluteTime(graph.NodeWithDelay{Node: newNode})
	} else {
		b.edges.AddDelay(frame.currentEdge, advanceBy)
		frame.currentTime.Add(advanceBy)
	}

	for _, ev := range node.events {
		t := stageTime
		if !ev.isStalled() {
			t = preTime
		}
		b.dispatchTimedEvent(frame.moduleKey, t, ev)
	}
}

// dispatchTimedEvent commits ev immediately if t is already anchored to a
// node, or defers it on the owning module until t's module resolves.
func (b *Builder) dispatchTimedEvent(owner moduleKey, t graph.NodeTime, ev event) {
	if t.IsAbsolute() {
		b.commitEvent(owner, t.Absolute(), ev)
		return
	}
	b.modules.DeferEvent(owner, t.RelativeDelay(), ev)
}
