package core

// GenPool is the generational pool backing every GPU object kind: a hot
// array (driver handle + fast-path fields), a cold array (full descriptor
// + memory binding), a generation counter per slot, and a free-index
// stack that recycles slots.
//
// The hot and cold halves are kept separate so callers on the hot path
// (command recording) never touch cold descriptor data.
//
// A GenPool is exclusive to one device and follows the
// single-threaded-per-device model: it is not safe for concurrent use.
type GenPool[Hot any, Cold any, M any] struct {
	hot         []Hot
	cold        []Cold
	generations []uint32
	live        []bool
	freeIndices []uint32
}

// NewGenPool creates an empty generational pool.
func NewGenPool[Hot any, Cold any, M any]() *GenPool[Hot, Cold, M] {
	return &GenPool[Hot, Cold, M]{}
}

// New allocates a slot (popping the free-index stack if non-empty, else
// appending), bumps its generation, and stores the hot/cold payloads.
// Generations strictly increase per slot over the process lifetime because
// they are never rolled back on free.
func (p *GenPool[Hot, Cold, M]) New(hot Hot, cold Cold) Handle[M] {
	var index uint32
	if n := len(p.freeIndices); n > 0 {
		index = p.freeIndices[n-1]
		p.freeIndices = p.freeIndices[:n-1]
	} else {
		index = uint32(len(p.hot))
		p.hot = append(p.hot, hot)
		p.cold = append(p.cold, cold)
		p.generations = append(p.generations, 0)
		p.live = append(p.live, false)
	}

	p.generations[index]++
	p.hot[index] = hot
	p.cold[index] = cold
	p.live[index] = true

	return NewHandle[M](index, p.generations[index])
}

// Resolve returns the cold struct for a handle if its generation is still
// current. A stale handle (generation mismatch) resolves to "not found".
func (p *GenPool[Hot, Cold, M]) Resolve(h Handle[M]) (*Cold, bool) {
	index, gen := h.Index(), h.Generation()
	if int(index) >= len(p.cold) || !p.live[index] || p.generations[index] != gen {
		return nil, false
	}
	return &p.cold[index], true
}

// ResolveHot returns the hot struct for a handle if its generation is
// still current.
func (p *GenPool[Hot, Cold, M]) ResolveHot(h Handle[M]) (*Hot, bool) {
	index, gen := h.Index(), h.Generation()
	if int(index) >= len(p.hot) || !p.live[index] || p.generations[index] != gen {
		return nil, false
	}
	return &p.hot[index], true
}

// Contains reports whether the handle currently resolves.
func (p *GenPool[Hot, Cold, M]) Contains(h Handle[M]) bool {
	_, ok := p.Resolve(h)
	return ok
}

// QueueFree bumps the slot's generation IMMEDIATELY, so that any later
// resolve through the old handle fails even though the driver object is
// not yet destroyed, and returns the hot and cold payloads the caller
// must push into the current frame's garbage list (see
// FrameContext.Garbage). The index is pushed to the free-index stack so a
// future New can reuse the slot.
//
// Bumping the generation at queue-free time, not at actual driver
// destruction, is what makes handles safe across the N-frame destruction
// delay: no later operation through the old handle can match, yet any
// command buffer already submitted still references the valid driver
// object.
func (p *GenPool[Hot, Cold, M]) QueueFree(h Handle[M]) (hot Hot, cold Cold, ok bool) {
	index, gen := h.Index(), h.Generation()
	if int(index) >= len(p.cold) || !p.live[index] || p.generations[index] != gen {
		var zeroHot Hot
		var zeroCold Cold
		return zeroHot, zeroCold, false
	}

	hot = p.hot[index]
	cold = p.cold[index]
	p.live[index] = false
	p.generations[index]++ // stale to every later caller, including resubmission of this exact handle
	p.freeIndices = append(p.freeIndices, index)

	var zeroHot Hot
	var zeroCold Cold
	p.hot[index] = zeroHot
	p.cold[index] = zeroCold

	return hot, cold, true
}

// Len reports the number of live slots.
func (p *GenPool[Hot, Cold, M]) Len() int {
	n := 0
	for _, v := range p.live {
		if v {
			n++
		}
	}
	return n
}

// ForEach iterates over every live slot in index order. The callback
// receives the live handle, its hot struct, and its cold struct; returning
// false stops the iteration.
func (p *GenPool[Hot, Cold, M]) ForEach(fn func(Handle[M], *Hot, *Cold) bool) {
	for i := range p.hot {
		if !p.live[i] {
			continue
		}
		h := NewHandle[M](uint32(i), p.generations[i])
		if !fn(h, &p.hot[i], &p.cold[i]) {
			return
		}
	}
}
