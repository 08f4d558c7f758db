// Package compile ingests a streaming sequence of trace events — subcall
// enter/leave, FIFO reads/writes, AXI read/write traffic — and compiles them
// into an immutable [graph.CompiledSimulation]: a CSR dependency graph plus
// the module call tree and per-FIFO/per-AXI node tables the schedule
// resolver needs to turn it back into a cycle-accurate schedule.
//
// Builder is the package's public surface, together with the
// [AxiRequestRange] payload its AXI entry points accept. Everything else
// (edgeBuilder, fifoBuilder, axiBuilder, axiRctl, moduleBuilder, stackFrame)
// is private machinery behind it.
package compile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarchlab/lightningsim/graph"
)

// LevelTrace is a custom slog level for per-event builder tracing, logged
// far more often than Debug would normally warrant.
const LevelTrace slog.Level = slog.LevelDebug - 4

// Builder ingests one trace event at a time and, once finished, produces a
// compiled simulation. It assumes a single producer thread: methods are not
// safe to call concurrently.
type Builder struct {
	edges   *edgeBuilder
	modules *moduleBuilder

	fifos map[graph.FifoID]*fifoBuilder
	axis  map[graph.AxiAddress]*axiBuilder

	stack []*stackFrame

	startNode graph.NodeIndex
	endNode   graph.NodeIndex
	finished  bool

	logger *slog.Logger
}

// NewBuilder returns an empty Builder with its top-level module's frame
// already on the stack, anchored at node 0.
func NewBuilder() *Builder {
	edges := newEdgeBuilder()
	modules := newModuleBuilder()

	startNode := edges.InsertNode()
	// The top module's InheritApContinue is true so that schedule's
	// post-processing can drive its ap_continue handshake entirely from the
	// state it is constructed with (TopLevel or NotApplicable, depending on
	// whether the caller's parameters name an ap_ctrl_chain port count): the
	// top has no caller of its own to "inherit" from, but the field doubles
	// as "derive my handshake from the state I'm given" versus "always
	// NotApplicable," and the top always wants the former.
	topKey := modules.InsertModule(nil, 0, true)

	startEdge := edges.InsertControlFlowEdge()
	edges.UpdateSource(startEdge, graph.NodeWithDelay{Node: startNode})

	top := newStackFrame(topKey, startEdge, graph.AbsoluteTime(graph.NodeWithDelay{Node: startNode}))

	return &Builder{
		edges:     edges,
		modules:   modules,
		fifos:     make(map[graph.FifoID]*fifoBuilder),
		axis:      make(map[graph.AxiAddress]*axiBuilder),
		stack:     []*stackFrame{top},
		startNode: startNode,
		logger:    slog.Default(),
	}
}

// SetLogger overrides the logger used for per-event tracing.
func (b *Builder) SetLogger(logger *slog.Logger) {
	b.logger = logger
}

func (b *Builder) trace(msg string, args ...any) {
	b.logger.Log(context.Background(), LevelTrace, msg, args...)
}

// topFrame returns the open frame events target, or nil once the top module
// has returned. Trace events arriving after that are dropped rather than
// panicking; Finish reports the inconsistency if it left anything dangling.
func (b *Builder) topFrame() *stackFrame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) popFrame() *stackFrame {
	frame := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return frame
}

func (b *Builder) fifoFor(id graph.FifoID) *fifoBuilder {
	f, ok := b.fifos[id]
	if !ok {
		f = &fifoBuilder{}
		b.fifos[id] = f
	}
	return f
}

func (b *Builder) axiFor(addr graph.AxiAddress) *axiBuilder {
	a, ok := b.axis[addr]
	if !ok {
		a = &axiBuilder{}
		b.axis[addr] = a
	}
	return a
}

// AddFifoRead records a FIFO read at stage, targeting the top of the call
// stack. safeOffset is the producer's promise that no earlier stage will
// ever gain another event, letting the builder commit the frame's window up
// to it before adding this one.
func (b *Builder) AddFifoRead(safeOffset, stage graph.SimulationStage, fifo graph.FifoID) {
	b.trace("fifo read", "fifo", fifo, "stage", stage)
	frame := b.topFrame()
	if frame == nil {
		return
	}
	b.commitUntil(frame, safeOffset)
	fb := b.fifoFor(fifo)
	index, rawEdge := fb.insertRead(b.edges, fifo)
	frame.addEvent(stage, fifoReadEvent{fifo: fifo, index: index, rawEdge: rawEdge})
}

// AddFifoWrite records a FIFO write at stage.
func (b *Builder) AddFifoWrite(safeOffset, stage graph.SimulationStage, fifo graph.FifoID) {
	b.trace("fifo write", "fifo", fifo, "stage", stage)
	frame := b.topFrame()
	if frame == nil {
		return
	}
	b.commitUntil(frame, safeOffset)
	fb := b.fifoFor(fifo)
	index, rawEdge := fb.insertWrite(b.edges, fifo)
	frame.addEvent(stage, fifoWriteEvent{fifo: fifo, index: index, rawEdge: rawEdge})
}

// AddAxiReadReq records an AXI read request spanning req on iface.
func (b *Builder) AddAxiReadReq(safeOffset, stage graph.SimulationStage, iface graph.AxiAddress, req AxiRequestRange) {
	b.trace("axi readreq", "iface", iface, "stage", stage, "count", req.Count)
	frame := b.topFrame()
	if frame == nil {
		return
	}
	b.commitUntil(frame, safeOffset)
	ab := b.axiFor(iface)
	index, readEdge := ab.insertReadReq(b.edges, iface, req)
	frame.addEvent(stage, axiReadReqEvent{iface: iface, index: index, readEdge: readEdge})
}

// AddAxiWriteReq records an AXI write request spanning req on iface.
func (b *Builder) AddAxiWriteReq(safeOffset, stage graph.SimulationStage, iface graph.AxiAddress, req AxiRequestRange) {
	b.trace("axi writereq", "iface", iface, "stage", stage, "count", req.Count)
	frame := b.topFrame()
	if frame == nil {
		return
	}
	b.commitUntil(frame, safeOffset)
	ab := b.axiFor(iface)
	index := ab.insertWriteReq(req)
	frame.addEvent(stage, axiWriteReqEvent{iface: iface, index: index})
}

// AddAxiRead records the next read transfer of the current request on iface.
func (b *Builder) AddAxiRead(safeOffset, stage graph.SimulationStage, iface graph.AxiAddress) {
	b.trace("axi read", "iface", iface, "stage", stage)
	frame := b.topFrame()
	if frame == nil {
		return
	}
	b.commitUntil(frame, safeOffset)
	ab := b.axiFor(iface)
	index, readEdge, first, lastOutEdge := ab.insertRead()

	ev := axiReadEvent{iface: iface, index: index}
	if readEdge != nil {
		ev.haveReadEdge, ev.readEdge = true, *readEdge
	}
	if first != nil {
		ev.haveFirstRctl, ev.firstRctl = true, first.txn
	}
	if lastOutEdge != nil {
		ev.haveLastOutEdge, ev.lastOutEdge = true, *lastOutEdge
	}
	frame.addEvent(stage, ev)
}

// AddAxiWrite records the next write transfer of the current request on iface.
func (b *Builder) AddAxiWrite(safeOffset, stage graph.SimulationStage, iface graph.AxiAddress) {
	b.trace("axi write", "iface", iface, "stage", stage)
	frame := b.topFrame()
	if frame == nil {
		return
	}
	b.commitUntil(frame, safeOffset)
	ab := b.axiFor(iface)
	index, writeRespEdge := ab.insertWrite(b.edges, iface)

	ev := axiWriteEvent{iface: iface, index: index}
	if writeRespEdge != nil {
		ev.haveWriteRespEdge, ev.writeRespEdge = true, *writeRespEdge
	}
	frame.addEvent(stage, ev)
}

// AddAxiWriteResp records the write response produced by the current
// request's last write on iface.
func (b *Builder) AddAxiWriteResp(safeOffset, stage graph.SimulationStage, iface graph.AxiAddress) {
	b.trace("axi writeresp", "iface", iface, "stage", stage)
	frame := b.topFrame()
	if frame == nil {
		return
	}
	b.commitUntil(frame, safeOffset)
	ab := b.axiFor(iface)
	index, writeRespEdge := ab.insertWriteResp()
	frame.addEvent(stage, axiWriteResponseEvent{iface: iface, index: index, writeRespEdge: writeRespEdge})
}

// Call enters a new module: startStage is the stage in the caller at which
// the call occurs, startDelay is the fixed delay (0 or 1 cycle, depending on
// the caller's region kind) before the callee's first stage, and
// inheritApContinue marks a callee whose ap_continue handshake is derived
// from its caller rather than its own ap_done/interval formula.
//
// endStage is accepted for parity with the trace format but unused here:
// the caller's resumption stage is needed only once the callee returns, and
// [Builder.Return] carries it again.
func (b *Builder) Call(safeOffset, startStage, endStage graph.SimulationStage, startDelay graph.ClockCycle, inheritApContinue bool) {
	_ = endStage
	b.trace("call", "stage", startStage, "delay", startDelay)

	parent := b.topFrame()
	if parent == nil {
		return
	}
	b.commitUntil(parent, safeOffset)

	startEdge := b.edges.InsertControlFlowEdge()
	b.edges.AddDelay(startEdge, startDelay)

	parentKey := parent.moduleKey
	childKey := b.modules.InsertModule(&parentKey, startDelay, inheritApContinue)

	parent.addEvent(startStage, subcallStartEvent{module: childKey, edge: startEdge})
	b.stack = append(b.stack, newStackFrame(childKey, startEdge, graph.RelativeTime(0)))
}

// Return leaves the current module, named name. endStage is the stage at
// which the module ends, both as its own residual delay and as the position
// in the caller at which the caller resumes.
func (b *Builder) Return(name string, endStage graph.SimulationStage) {
	b.trace("return", "name", name, "endStage", endStage)

	if len(b.stack) == 0 {
		return
	}
	frame := b.popFrame()
	for len(frame.window) > 0 {
		node := frame.window[0]
		frame.window = frame.window[1:]
		var advanceBy graph.ClockCycle
		if len(frame.window) > 0 {
			advanceBy = 1
		}
		b.commitNode(frame, node, advanceBy)
		frame.offset += graph.SimulationStage(advanceBy)
	}
	if frame.offset < endStage {
		delta := graph.ClockCycle(endStage - frame.offset)
		b.edges.AddDelay(frame.currentEdge, delta)
		frame.currentTime.Add(delta)
		frame.offset = endStage
	}

	b.modules.UpdateModuleName(frame.moduleKey, name)
	b.modules.UpdateModuleEnd(frame.moduleKey, frame.currentTime)

	ifaces := b.modules.AxiRctlInterfaces(frame.moduleKey)

	if len(b.stack) > 0 {
		parent := b.topFrame()
		for _, iface := range ifaces {
			child := b.modules.AxiRctlFor(frame.moduleKey, iface)
			parentRctl := b.modules.AxiRctlFor(parent.moduleKey, iface)
			parentRctl.extend(b.edges, *child)
		}
		parent.addEvent(endStage, subcallEndEvent{edge: frame.currentEdge})
		return
	}

	for _, iface := range ifaces {
		b.modules.AxiRctlFor(frame.moduleKey, iface).finish(b.edges)
	}
	b.commitTopModule(frame)
}

// commitEvent performs the graph wiring one trace event needs once its
// absolute node time t is known. owner is the module whose deferred-event
// list (if any) this event was replayed from, used for rctl lookups.
func (b *Builder) commitEvent(owner moduleKey, t graph.NodeWithDelay, ev event) {
	switch e := ev.(type) {
	case subcallStartEvent:
		b.edges.UpdateSource(e.edge, t)
		b.commitModule(e.module, t)

	case subcallEndEvent:
		b.edges.PushDestination(e.edge)

	case fifoReadEvent:
		fb := b.fifos[e.fifo]
		fb.updateRead(e.index, t.Node)
		b.edges.PushDestination(e.rawEdge)

	case fifoWriteEvent:
		fb := b.fifos[e.fifo]
		fb.updateWrite(e.index, t)
		b.edges.UpdateSource(e.rawEdge, t)
		if e.index > 0 {
			b.edges.PushEdge(graph.FifoWarEdge{Fifo: e.fifo, Index: e.index})
		}

	case axiReadReqEvent:
		ab := b.axis[e.iface]
		ab.updateReadReq(e.index, t)
		b.edges.UpdateSource(e.readEdge, t)

	case axiReadEvent:
		ab := b.axis[e.iface]
		ab.updateRead(e.index, t)
		if e.haveReadEdge {
			b.edges.PushDestination(e.readEdge)
		}
		if e.haveFirstRctl {
			b.edges.PushDestination(e.firstRctl.inEdge)
			b.modules.AxiRctlFor(owner, e.iface).push(b.edges, e.firstRctl)
		}
		if e.haveLastOutEdge {
			b.edges.UpdateSource(e.lastOutEdge, t)
		}

	case axiWriteReqEvent:
		ab := b.axis[e.iface]
		ab.updateWriteReq(e.index, t)

	case axiWriteEvent:
		ab := b.axis[e.iface]
		ab.updateWrite(e.index, t)
		if e.haveWriteRespEdge {
			b.edges.UpdateSource(e.writeRespEdge, t)
		}

	case axiWriteResponseEvent:
		ab := b.axis[e.iface]
		ab.updateWriteResp(e.index, t)
		b.edges.PushDestination(e.writeRespEdge)

	default:
		panic(fmt.Sprintf("compile: unknown event type %T", ev))
	}
}

// commitModule resolves key's start against parent and replays every event
// that had been deferred against it.
func (b *Builder) commitModule(key moduleKey, parent graph.NodeWithDelay) {
	deferred := b.modules.CommitModule(key, parent)
	for _, d := range deferred {
		b.commitEvent(key, d.Node, d.Event)
	}
}

// commitTopModule commits the top-level module against the start node and
// closes the graph with its end node.
func (b *Builder) commitTopModule(frame *stackFrame) {
	b.commitModule(frame.moduleKey, graph.NodeWithDelay{Node: b.startNode})
	endNode := b.edges.InsertNode()
	b.edges.PushDestination(frame.currentEdge)
	b.endNode = endNode
}

// Finish completes the trace and returns the compiled simulation. It fails
// if any call frame is still open, any incomplete edge never resolved, or
// any FIFO/AXI node table has a gap.
func (b *Builder) Finish() (*graph.CompiledSimulation, error) {
	if b.finished {
		return nil, fmt.Errorf("compile: Finish called twice")
	}
	if len(b.stack) != 0 {
		return nil, fmt.Errorf("compile: Finish called with %d call frame(s) still open", len(b.stack))
	}
	b.finished = true

	topModule, err := b.modules.Finish()
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	g, err := b.edges.Finish()
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	fifoNodes := make(map[graph.FifoID]graph.FifoIoNodes, len(b.fifos))
	for id, fb := range b.fifos {
		nodes, err := fb.finish()
		if err != nil {
			return nil, fmt.Errorf("compile: fifo %d: %w", id, err)
		}
		fifoNodes[id] = nodes
	}

	axiNodes := make(map[graph.AxiAddress]graph.AxiInterfaceIoNodes, len(b.axis))
	for addr, ab := range b.axis {
		nodes, err := ab.finish()
		if err != nil {
			return nil, fmt.Errorf("compile: axi interface %#x: %w", uint64(addr), err)
		}
		axiNodes[addr] = nodes
	}

	return &graph.CompiledSimulation{
		Graph:             *g,
		TopModule:         topModule,
		FifoNodes:         fifoNodes,
		AxiInterfaceNodes: axiNodes,
		StartNode:         b.startNode,
		EndNode:           b.endNode,
	}, nil
}
