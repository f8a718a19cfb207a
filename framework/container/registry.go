package container

import (
	"reflect"
	"sort"
)

// Registry holds every Blueprint of a container, indexed by name.
// It is populated before start and sealed afterwards.
type Registry struct {
	byName map[string]*Blueprint
	list   []*Blueprint // registration order
	sealed bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Blueprint)}
}

// Register validates and adds blueprints. The first failure stops the call.
//
//	err := reg.Register(
//	    container.Configuration("db", NewDBConfig, container.Value("${db.url}")).WithOrder(0),
//	    container.Bean("conn", "db", (*DBConfig).Open),
//	)
func (r *Registry) Register(bps ...*Blueprint) error {
	for _, bp := range bps {
		if bp == nil {
			return newError(KindBeanDefinition, "", "nil blueprint")
		}
		if r.sealed {
			return newError(KindBeanDefinition, bp.name, "registry is sealed after start")
		}
		if err := bp.validate(); err != nil {
			return err
		}
		if existing, ok := r.byName[bp.name]; ok {
			return newError(KindDuplicateName, bp.name, "duplicate bean name, already declared as %v", existing.typ)
		}
		r.byName[bp.name] = bp
		r.list = append(r.list, bp)
	}
	return nil
}

func (r *Registry) seal() { r.sealed = true }

// FindByName returns the blueprint registered as name.
func (r *Registry) FindByName(name string) (*Blueprint, bool) {
	bp, ok := r.byName[name]
	return bp, ok
}

// FindByNameAndType returns the blueprint registered as name, failing with
// ErrNoSuchBean when absent and ErrTypeMismatch when it does not satisfy t.
func (r *Registry) FindByNameAndType(name string, t reflect.Type) (*Blueprint, error) {
	bp, ok := r.byName[name]
	if !ok {
		return nil, newError(KindNoSuchBean, name, "no bean named %q", name)
	}
	if !bp.AssignableTo(t) {
		return nil, newError(KindTypeMismatch, name, "declared type %v is not assignable to %v", bp.typ, t)
	}
	return bp, nil
}

// FindAllByType returns every blueprint assignable to t, sorted by
// (order, name). The order is the initialization and disambiguation order.
func (r *Registry) FindAllByType(t reflect.Type) []*Blueprint {
	var out []*Blueprint
	for _, bp := range r.list {
		if bp.AssignableTo(t) {
			out = append(out, bp)
		}
	}
	sortBlueprints(out)
	return out
}

// FindByType returns the single blueprint for t. Among several candidates
// exactly one must be primary. Zero candidates returns (nil, nil).
func (r *Registry) FindByType(t reflect.Type) (*Blueprint, error) {
	all := r.FindAllByType(t)
	switch len(all) {
	case 0:
		return nil, nil
	case 1:
		return all[0], nil
	}
	var primaries []*Blueprint
	for _, bp := range all {
		if bp.primary {
			primaries = append(primaries, bp)
		}
	}
	switch len(primaries) {
	case 1:
		return primaries[0], nil
	case 0:
		return nil, newError(KindNoUniqueMatch, "", "Multiple bean with type '%v' found, but no primary specified", t)
	}
	return nil, newError(KindNoUniqueMatch, "", "Multiple bean with type '%v' found, and multiple primary specified", t)
}

// All returns every blueprint in registration order.
func (r *Registry) All() []*Blueprint {
	out := make([]*Blueprint, len(r.list))
	copy(out, r.list)
	return out
}

// Sorted returns every blueprint sorted by (order, name).
func (r *Registry) Sorted() []*Blueprint {
	out := r.All()
	sortBlueprints(out)
	return out
}

// Names returns every bean name in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.list))
	for i, bp := range r.list {
		out[i] = bp.name
	}
	return out
}

// Len returns the number of blueprints.
func (r *Registry) Len() int { return len(r.list) }

func sortBlueprints(bps []*Blueprint) {
	sort.SliceStable(bps, func(i, j int) bool {
		if bps[i].order != bps[j].order {
			return bps[i].order < bps[j].order
		}
		return bps[i].name < bps[j].name
	})
}
