package schedule

import "github.com/sarchlab/lightningsim/graph"

// Simulation is one complete replay of a compiled simulation under a
// concrete parameter set: the raw node-cycle vector, the resolved module
// tree, and the per-FIFO and per-AXI-interface I/O cycle views.
type Simulation struct {
	NodeCycles []graph.ClockCycle
	TopModule  *SimulatedModule

	FifoIO         map[graph.FifoID]graph.FifoIO
	AxiInterfaceIO map[graph.AxiAddress]graph.AxiInterfaceIO
}

// Run executes sim under params and assembles the full Simulation view. The
// top module's ap_continue handshake is derived from the parameter set's
// ap_ctrl_chain port count if one was configured, and is NotApplicable
// otherwise.
func Run(sim *graph.CompiledSimulation, params SimulationParameters) (*Simulation, error) {
	cycles, err := Execute(sim, params)
	if err != nil {
		return nil, err
	}

	var state ApContinueState = NotApplicable{}
	if numPorts, ok := params.ApCtrlChainTopPortCount(); ok {
		state = TopLevel{NumParameters: numPorts}
	}

	fifoIO := make(map[graph.FifoID]graph.FifoIO, len(sim.FifoNodes))
	for id, nodes := range sim.FifoNodes {
		fifoIO[id] = graph.NewFifoIO(nodes, cycles)
	}
	axiIO := make(map[graph.AxiAddress]graph.AxiInterfaceIO, len(sim.AxiInterfaceNodes))
	for addr, nodes := range sim.AxiInterfaceNodes {
		axiIO[addr] = graph.NewAxiInterfaceIO(nodes, cycles)
	}

	return &Simulation{
		NodeCycles:     cycles,
		TopModule:      NewSimulatedModule(cycles, sim.TopModule, state),
		FifoIO:         fifoIO,
		AxiInterfaceIO: axiIO,
	}, nil
}

// Latency returns the top module's end cycle.
func (s *Simulation) Latency() graph.ClockCycle {
	return s.TopModule.End
}
