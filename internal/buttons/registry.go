// Package buttons implements the search and gallery button registries:
// named switches with toggled and hidden flags and a declared render order.
package buttons

// State is the mutable part of a button
type State struct {
	Toggled bool `yaml:"toggled"`
	Hidden  bool `yaml:"hidden"`
}

// Button is one registry entry
type Button struct {
	ID    string
	Label string
	State State
}

// Registry is an ordered set of buttons. Render order is the order buttons
// were declared in, independent of any key ordering.
type Registry struct {
	buttons []Button
	index   map[string]int
}

// NewRegistry declares buttons in render order. Duplicate ids keep the first
// declaration.
func NewRegistry(buttons ...Button) *Registry {
	r := &Registry{index: make(map[string]int, len(buttons))}
	for _, b := range buttons {
		if _, dup := r.index[b.ID]; dup {
			continue
		}
		r.index[b.ID] = len(r.buttons)
		r.buttons = append(r.buttons, b)
	}
	return r
}

// Get returns the state of a button
func (r *Registry) Get(id string) (State, bool) {
	i, ok := r.index[id]
	if !ok {
		return State{}, false
	}
	return r.buttons[i].State, true
}

// Toggled is shorthand for the toggled flag of id; unknown ids are false
func (r *Registry) Toggled(id string) bool {
	s, _ := r.Get(id)
	return s.Toggled
}

// Toggle flips the toggled flag of id
func (r *Registry) Toggle(id string) bool {
	i, ok := r.index[id]
	if !ok {
		return false
	}
	r.buttons[i].State.Toggled = !r.buttons[i].State.Toggled
	return true
}

// ToggleHidden flips the hidden flag of id
func (r *Registry) ToggleHidden(id string) bool {
	i, ok := r.index[id]
	if !ok {
		return false
	}
	r.buttons[i].State.Hidden = !r.buttons[i].State.Hidden
	return true
}

// Set overwrites the state of id
func (r *Registry) Set(id string, s State) bool {
	i, ok := r.index[id]
	if !ok {
		return false
	}
	r.buttons[i].State = s
	return true
}

// SelectExclusive turns id on and every other member of group off. It is a
// no-op when id is not in group or not registered.
func (r *Registry) SelectExclusive(group []string, id string) bool {
	if !contains(group, id) {
		return false
	}
	if _, ok := r.index[id]; !ok {
		return false
	}
	for _, member := range group {
		if i, ok := r.index[member]; ok {
			r.buttons[i].State.Toggled = member == id
		}
	}
	return true
}

// Order returns button ids in render order
func (r *Registry) Order() []string {
	out := make([]string, len(r.buttons))
	for i, b := range r.buttons {
		out[i] = b.ID
	}
	return out
}

// Buttons returns a copy of every button in render order
func (r *Registry) Buttons() []Button {
	return append([]Button(nil), r.buttons...)
}

// States returns the state of every button keyed by id
func (r *Registry) States() map[string]State {
	out := make(map[string]State, len(r.buttons))
	for _, b := range r.buttons {
		out[b.ID] = b.State
	}
	return out
}

// Restore applies saved states, skipping ids that are no longer registered
func (r *Registry) Restore(states map[string]State) {
	for id, s := range states {
		r.Set(id, s)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
