package graph

// CompiledModule is one call frame in the compiled module tree: a named
// span of the simulation, bounded by Start and End, that may itself contain
// nested calls.
//
// Once construction finishes, every submodule's Start/End lies within
// [Start, End] of its parent.
type CompiledModule struct {
	Name       string
	Start, End NodeWithDelay
	Submodules []*CompiledModule

	// InheritApContinue marks a module whose ap_continue handshake delay is
	// derived from its caller rather than computed from its own
	// ap_done/interval, per the top-level handshake formula.
	InheritApContinue bool
}
