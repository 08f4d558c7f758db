// Package schedule replays a compiled simulation under concrete hardware
// parameters: an iterative-DFS walk of the CSR dependency graph computes a
// per-node clock cycle, and a module-tree post-pass derives each module's
// ap_continue-adjusted end cycle.
package schedule

import "github.com/sarchlab/lightningsim/graph"

// ParameterSource is the interface the resolver needs from a parameter set.
// It is exactly [graph.ParameterSource]; the alias exists so callers and
// mocks in this package don't need to import graph just to name the type.
type ParameterSource = graph.ParameterSource

// SimulationParameters is the parameter set a schedule is resolved under: a
// configured depth per FIFO, a configured per-request delay per AXI
// interface, and an optional ap_ctrl_chain top-level port count. The zero
// value configures no FIFO and no AXI interface; query an unconfigured FIFO
// or AXI interface and the resolver reports [graph.FifoDepthNotProvidedError]
// or [graph.AxiDelayNotProvidedError].
type SimulationParameters struct {
	fifoDepths             map[graph.FifoID]*int
	axiDelays              map[graph.AxiAddress]graph.ClockCycle
	haveApCtrlChainTop     bool
	apCtrlChainTopNumPorts uint32
}

// FifoDepth implements [graph.ParameterSource].
func (p SimulationParameters) FifoDepth(id graph.FifoID) (*int, bool) {
	depth, ok := p.fifoDepths[id]
	return depth, ok
}

// AxiDelay implements [graph.ParameterSource].
func (p SimulationParameters) AxiDelay(addr graph.AxiAddress) (graph.ClockCycle, bool) {
	delay, ok := p.axiDelays[addr]
	return delay, ok
}

// ApCtrlChainTopPortCount returns the configured top-level ap_ctrl_chain port
// count, if any.
func (p SimulationParameters) ApCtrlChainTopPortCount() (uint32, bool) {
	return p.apCtrlChainTopNumPorts, p.haveApCtrlChainTop
}

// SimulationParametersBuilder builds a [SimulationParameters] through a
// chain of With... calls, each returning a new value so a partially built
// chain can be safely reused as a base for several configurations (the way
// DSE overlays per-sweep FIFO depths onto one shared base).
type SimulationParametersBuilder struct {
	params SimulationParameters
}

// NewSimulationParametersBuilder returns an empty builder.
func NewSimulationParametersBuilder() SimulationParametersBuilder {
	return SimulationParametersBuilder{}
}

// FromSimulationParameters starts a builder from an existing parameter set,
// the way DSE overlays per-configuration FIFO depths onto a shared base.
func FromSimulationParameters(base SimulationParameters) SimulationParametersBuilder {
	return SimulationParametersBuilder{params: base}
}

// WithFifoDepth sets the depth for fifo. depth == nil means "explicitly
// unset," which still differs from never calling WithFifoDepth at all: the
// former resolves to the shift-register default, the latter is an error.
func (b SimulationParametersBuilder) WithFifoDepth(fifo graph.FifoID, depth *int) SimulationParametersBuilder {
	b.params.fifoDepths = cloneFifoDepths(b.params.fifoDepths)
	b.params.fifoDepths[fifo] = depth
	return b
}

// WithAxiDelay sets the per-request delay for iface.
func (b SimulationParametersBuilder) WithAxiDelay(iface graph.AxiAddress, delay graph.ClockCycle) SimulationParametersBuilder {
	b.params.axiDelays = cloneAxiDelays(b.params.axiDelays)
	b.params.axiDelays[iface] = delay
	return b
}

// WithApCtrlChainTopPortCount marks the top module as an ap_ctrl_chain kernel
// with numPorts saxi status ports.
func (b SimulationParametersBuilder) WithApCtrlChainTopPortCount(numPorts uint32) SimulationParametersBuilder {
	b.params.haveApCtrlChainTop = true
	b.params.apCtrlChainTopNumPorts = numPorts
	return b
}

// Build returns the finished parameter set.
func (b SimulationParametersBuilder) Build() SimulationParameters {
	return b.params
}

func cloneFifoDepths(m map[graph.FifoID]*int) map[graph.FifoID]*int {
	out := make(map[graph.FifoID]*int, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAxiDelays(m map[graph.AxiAddress]graph.ClockCycle) map[graph.AxiAddress]graph.ClockCycle {
	out := make(map[graph.AxiAddress]graph.ClockCycle, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
