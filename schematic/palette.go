package schematic

import "maps"

// Palette manages an append-only mapping between block states and dense ids.
// Air always occupies id 0 and ids are never reused or renumbered.
type Palette struct {
	states []BlockState
	index  map[string]int
}

// NewPalette creates a palette holding only air at id 0.
func NewPalette() *Palette {
	p := &Palette{
		states: make([]BlockState, 0, 8),
		index:  make(map[string]int),
	}
	p.GetOrInsert(Air())
	return p
}

// GetOrInsert returns the id of a value-equal state, appending the state if it is absent.
func (p *Palette) GetOrInsert(state BlockState) int {
	key := state.String()
	if id, ok := p.index[key]; ok {
		return id
	}
	id := len(p.states)
	p.states = append(p.states, state.Clone())
	p.index[key] = id
	return id
}

// Get returns the block state at the given id.
func (p *Palette) Get(id int) (BlockState, bool) {
	if id < 0 || id >= len(p.states) {
		return BlockState{}, false
	}
	return p.states[id], true
}

// Index returns the id of a block state, or -1 if not found.
func (p *Palette) Index(state BlockState) int {
	if id, ok := p.index[state.String()]; ok {
		return id
	}
	return -1
}

// Len returns the number of entries in the palette, air included.
func (p *Palette) Len() int {
	return len(p.states)
}

// States returns all block states in id order. The slice must not be modified.
func (p *Palette) States() []BlockState {
	return p.states
}

// Clone returns an independent copy of the palette.
func (p *Palette) Clone() *Palette {
	c := &Palette{
		states: make([]BlockState, len(p.states)),
		index:  maps.Clone(p.index),
	}
	for i, s := range p.states {
		c.states[i] = s.Clone()
	}
	return c
}

// PaletteFromStates creates a palette whose ids are the positions in states, as read
// from a file. Unlike NewPalette, id 0 is whatever the file put there and states may
// repeat (e.g., air filling holes); GetOrInsert then returns the lowest matching id.
func PaletteFromStates(states []BlockState) *Palette {
	p := &Palette{
		states: make([]BlockState, len(states)),
		index:  make(map[string]int, len(states)),
	}
	for i, s := range states {
		p.states[i] = s.Clone()
		key := s.String()
		if _, ok := p.index[key]; !ok {
			p.index[key] = i
		}
	}
	return p
}
