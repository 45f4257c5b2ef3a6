package thermo

import "fmt"

type bindingKey struct {
	role Role
	id   string
	kind Kind
}

// Binding is a resolved reference to one result of one provider.
type Binding struct {
	Role Role
	ID   string
	Kind Kind

	provider Provider
}

// Name is the keyword form of the binding, e.g. "c_thermo_temp".
func (b Binding) Name() string { return b.Role.Prefix() + b.ID }

// Registry deduplicates provider bindings by (role, id, kind). Indices are
// stable for the lifetime of the registry, so fields built by different
// Configure calls share bindings.
type Registry struct {
	env      Environment
	bindings []Binding
	index    map[bindingKey]int
}

func NewRegistry(env Environment) *Registry {
	return &Registry{
		env:   env,
		index: make(map[bindingKey]int),
	}
}

// Bind returns the index of the (role, id, kind) binding, resolving and
// validating the provider on first request.
func (r *Registry) Bind(role Role, id string, kind Kind) (int, error) {
	key := bindingKey{role: role, id: id, kind: kind}
	if i, ok := r.index[key]; ok {
		return i, nil
	}
	p, err := r.resolve(role, id, kind)
	if err != nil {
		return -1, err
	}
	r.bindings = append(r.bindings, Binding{Role: role, ID: id, Kind: kind, provider: p})
	i := len(r.bindings) - 1
	r.index[key] = i
	return i, nil
}

func (r *Registry) resolve(role Role, id string, kind Kind) (Provider, error) {
	p, ok := r.env.Lookup(role, id)
	if !ok || p == nil {
		return nil, configErr("", role.Prefix()+id, fmt.Errorf("%w: %s %s", ErrProviderNotFound, role, id))
	}
	if !supportsKind(p, kind) {
		return nil, configErr("", role.Prefix()+id, fmt.Errorf("%w: %s %s has no %s", ErrWrongKind, role, id, kind))
	}
	return p, nil
}

func (r *Registry) Len() int { return len(r.bindings) }

func (r *Registry) Binding(i int) Binding { return r.bindings[i] }

// Provider returns the cached provider of binding i, looking it up again
// if the cache was dropped.
func (r *Registry) Provider(i int) (Provider, error) {
	b := &r.bindings[i]
	if b.provider != nil {
		return b.provider, nil
	}
	p, err := r.resolve(b.Role, b.ID, b.Kind)
	if err != nil {
		return nil, err
	}
	b.provider = p
	return p, nil
}

// Refresh drops every cached handle and re-resolves the bindings in use.
// Called at the start of each run; providers may have been deleted or
// replaced between runs.
func (r *Registry) Refresh(inUse []int) error {
	for i := range r.bindings {
		r.bindings[i].provider = nil
	}
	for _, i := range inUse {
		if _, err := r.Provider(i); err != nil {
			return err
		}
	}
	return nil
}
