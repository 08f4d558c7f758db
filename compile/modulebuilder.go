package compile

import (
	"fmt"

	"github.com/sarchlab/lightningsim/graph"
)

// moduleKey identifies a module within a [moduleBuilder], committed or not.
type moduleKey = int

type deferredEvent struct {
	position graph.ClockCycle
	event    event
}

type committedModule struct {
	name              string
	start, end        graph.NodeWithDelay
	inheritApContinue bool
	submoduleIndices  []int
}

type uncommittedModule struct {
	index             int
	name              string
	startDelay        graph.ClockCycle
	end               graph.NodeTime
	inheritApContinue bool
	submoduleIndices  []int
	events            []deferredEvent
	axiRctl           map[graph.AxiAddress]*axiRctl
}

// moduleBuilder tracks the nested module call tree: every module is
// uncommitted (its start not yet known) until its parent's start resolves,
// at which point its own start resolves and any events deferred against it
// can finally be committed against absolute node times.
type moduleBuilder struct {
	committed   []*committedModule
	uncommitted slab[uncommittedModule]
}

// newModuleBuilder returns an empty moduleBuilder.
func newModuleBuilder() *moduleBuilder {
	return &moduleBuilder{}
}

// InsertModule allocates a new module under parent (nil for the top module)
// and returns its key.
func (b *moduleBuilder) InsertModule(parent *moduleKey, startDelay graph.ClockCycle, inheritApContinue bool) moduleKey {
	index := len(b.committed)
	b.committed = append(b.committed, nil)
	if parent != nil {
		p := b.uncommitted.get(*parent)
		p.submoduleIndices = append(p.submoduleIndices, index)
	}
	return b.uncommitted.insert(uncommittedModule{
		index:             index,
		startDelay:        startDelay,
		end:               graph.RelativeTime(0),
		inheritApContinue: inheritApContinue,
		axiRctl:           make(map[graph.AxiAddress]*axiRctl),
	})
}

// UpdateModuleName sets key's display name, which is only known once the
// module returns.
func (b *moduleBuilder) UpdateModuleName(key moduleKey, name string) {
	b.uncommitted.get(key).name = name
}

// UpdateModuleEnd sets key's end time.
func (b *moduleBuilder) UpdateModuleEnd(key moduleKey, end graph.NodeTime) {
	b.uncommitted.get(key).end = end
}

// DeferEvent queues event to be committed once key resolves, at position
// cycles after key's eventual start.
func (b *moduleBuilder) DeferEvent(key moduleKey, position graph.ClockCycle, e event) {
	m := b.uncommitted.get(key)
	m.events = append(m.events, deferredEvent{position: position, event: e})
}

// AxiRctlFor returns key's per-interface rctl queue, allocating one if this
// is the first transaction seen on iface within this module.
func (b *moduleBuilder) AxiRctlFor(key moduleKey, iface graph.AxiAddress) *axiRctl {
	m := b.uncommitted.get(key)
	r, ok := m.axiRctl[iface]
	if !ok {
		r = &axiRctl{}
		m.axiRctl[iface] = r
	}
	return r
}

// AxiRctlInterfaces returns the set of interfaces key has touched, so a
// caller merging a dataflow child into its parent can enumerate them without
// guessing which interfaces are involved.
func (b *moduleBuilder) AxiRctlInterfaces(key moduleKey) []graph.AxiAddress {
	m := b.uncommitted.get(key)
	out := make([]graph.AxiAddress, 0, len(m.axiRctl))
	for iface := range m.axiRctl {
		out = append(out, iface)
	}
	return out
}

// CommitModule resolves key's start against parent (the node its call site
// resolved to) and returns every event that had been deferred against it,
// now anchored to absolute node times.
func (b *moduleBuilder) CommitModule(key moduleKey, parent graph.NodeWithDelay) []struct {
	Node  graph.NodeWithDelay
	Event event
} {
	m := b.uncommitted.remove(key)
	start := parent.Plus(m.startDelay)
	end := m.end.Resolve(start)
	b.committed[m.index] = &committedModule{
		name:              m.name,
		start:             start,
		end:               end,
		inheritApContinue: m.inheritApContinue,
		submoduleIndices:  m.submoduleIndices,
	}
	out := make([]struct {
		Node  graph.NodeWithDelay
		Event event
	}, len(m.events))
	for i, d := range m.events {
		out[i].Node = start.Plus(d.position)
		out[i].Event = d.event
	}
	return out
}

// Finish converts the builder into its finished [graph.CompiledModule] tree,
// failing if the top module or any of its descendants never committed.
func (b *moduleBuilder) Finish() (*graph.CompiledModule, error) {
	if len(b.committed) == 0 {
		return nil, fmt.Errorf("compile: kernel did not run; no top module was started")
	}
	top := b.committed[0]
	if top == nil {
		return nil, fmt.Errorf("compile: top module was never committed")
	}
	b.committed[0] = nil
	resolved, ok := b.tryResolveModule(top)
	if !ok {
		return nil, fmt.Errorf("compile: not all modules were committed")
	}
	return resolved, nil
}

func (b *moduleBuilder) tryResolveModule(m *committedModule) (*graph.CompiledModule, bool) {
	submodules := make([]*graph.CompiledModule, len(m.submoduleIndices))
	for i, index := range m.submoduleIndices {
		sub := b.committed[index]
		if sub == nil {
			return nil, false
		}
		b.committed[index] = nil
		resolved, ok := b.tryResolveModule(sub)
		if !ok {
			return nil, false
		}
		submodules[i] = resolved
	}
	return &graph.CompiledModule{
		Name:              m.name,
		Start:             m.start,
		End:               m.end,
		Submodules:        submodules,
		InheritApContinue: m.inheritApContinue,
	}, true
}
