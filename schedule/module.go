package schedule

import "github.com/sarchlab/lightningsim/graph"

// ApContinueState is the sum type driving a module's ap_continue handshake
// derivation. It is a closed type: the only implementations are the ones in
// this file.
type ApContinueState interface {
	isApContinueState()
}

// NotApplicable means the module's end cycle is simply its own ap_done; no
// saxi status handshake applies.
type NotApplicable struct{}

func (NotApplicable) isApContinueState() {}

// TopLevel marks the top module of an ap_ctrl_chain kernel, whose
// ap_continue delay is derived from the saxi status read/write formula using
// NumParameters status ports.
type TopLevel struct {
	NumParameters uint32
}

func (TopLevel) isApContinueState() {}

// Propagated carries a computed end cycle down to modules that inherit their
// caller's ap_continue handshake rather than deriving their own.
type Propagated struct {
	End graph.ClockCycle
}

func (Propagated) isApContinueState() {}

// SimulatedModule is one resolved module: its start and ap_done cycles
// (both direct reads of the node-cycle vector), its ap_continue-adjusted end
// cycle, and its resolved submodules.
type SimulatedModule struct {
	Name               string
	Start, ApDone, End graph.ClockCycle
	Submodules         []*SimulatedModule
}

// NewSimulatedModule resolves module and its whole subtree against
// nodeCycles, deriving each module's end cycle from state. state is
// typically NotApplicable, unless module is the top of an ap_ctrl_chain
// kernel, in which case it is TopLevel{NumParameters: portCount}.
func NewSimulatedModule(nodeCycles []graph.ClockCycle, module *graph.CompiledModule, state ApContinueState) *SimulatedModule {
	start := module.Start.Resolve(nodeCycles)
	apDone := module.End.Resolve(nodeCycles)

	if !module.InheritApContinue {
		state = NotApplicable{}
	}

	var end graph.ClockCycle
	var childState ApContinueState = NotApplicable{}

	switch s := state.(type) {
	case NotApplicable:
		end = apDone
		childState = NotApplicable{}

	case TopLevel:
		interval := graph.SaxiStatusUpdateOverhead + graph.ClockCycle(s.NumParameters) + 1
		readCycle := (apDone+interval-graph.SaxiStatusReadDelay-1)/interval*interval + graph.SaxiStatusReadDelay
		end = readCycle + graph.SaxiStatusWriteDelay
		childState = Propagated{End: end}

	case Propagated:
		end = s.End
		childState = Propagated{End: end}
	}

	sm := &SimulatedModule{Name: module.Name, Start: start, ApDone: apDone, End: end}
	sm.Submodules = make([]*SimulatedModule, len(module.Submodules))
	for i, sub := range module.Submodules {
		sm.Submodules[i] = NewSimulatedModule(nodeCycles, sub, childState)
	}
	return sm
}
