package vm

const (
	hashmapInitialCap = 64
	hashmapGrowFactor = 1.62
)

type entryState uint8

const (
	slotEmpty entryState = iota
	slotUsed
	slotTombstone
)

type hashmapEntry struct {
	key   Value
	value Value
	state entryState
}

// Hashmap is an open-addressed hash table with linear probing, mapping
// value keys to value values. It backs both hashmap values and the
// context's name table. Lookup of a missing key returns nil, so nil is
// reserved as the missing sentinel and keys may not be bound to it.
type Hashmap struct {
	entries []hashmapEntry
	size    int // live entries
	filled  int // live entries plus tombstones

	id uint64
}

func NewHashmap() *Hashmap {
	return &Hashmap{
		entries: make([]hashmapEntry, hashmapInitialCap),
		id:      nextObjectId(),
	}
}

func (h *Hashmap) objectId() uint64 { return h.id }

func (h *Hashmap) Len() int {
	return h.size
}

// Put binds key to value, replacing any previous binding.
func (h *Hashmap) Put(key, value Value) {
	if h.filled >= len(h.entries) {
		h.rehash(int(float64(len(h.entries)) * hashmapGrowFactor))
	}

	cap := len(h.entries)
	idx := int(key.Hash()) % cap
	if idx < 0 {
		idx += cap
	}
	insertAt := -1
	for probes := 0; probes < cap; probes++ {
		e := &h.entries[idx]
		switch e.state {
		case slotEmpty:
			if insertAt < 0 {
				insertAt = idx
				h.filled++
			}
			h.entries[insertAt] = hashmapEntry{key: key, value: value, state: slotUsed}
			h.size++
			return
		case slotTombstone:
			if insertAt < 0 {
				insertAt = idx
			}
		case slotUsed:
			if key.Equals(e.key) {
				e.value = value
				return
			}
		}
		idx = (idx + 1) % cap
	}
	if insertAt >= 0 {
		h.entries[insertAt] = hashmapEntry{key: key, value: value, state: slotUsed}
		h.size++
		return
	}
	panic("hashmap: table full")
}

// Get returns the bound value, or nil when the key is missing.
func (h *Hashmap) Get(key Value) Value {
	cap := len(h.entries)
	idx := int(key.Hash()) % cap
	if idx < 0 {
		idx += cap
	}
	for probes := 0; probes < cap; probes++ {
		e := &h.entries[idx]
		switch e.state {
		case slotEmpty:
			return NilVal()
		case slotUsed:
			if key.Equals(e.key) {
				return e.value
			}
		}
		idx = (idx + 1) % cap
	}
	return NilVal()
}

// Del removes the binding for key, reporting whether one existed.
func (h *Hashmap) Del(key Value) bool {
	cap := len(h.entries)
	idx := int(key.Hash()) % cap
	if idx < 0 {
		idx += cap
	}
	for probes := 0; probes < cap; probes++ {
		e := &h.entries[idx]
		switch e.state {
		case slotEmpty:
			return false
		case slotUsed:
			if key.Equals(e.key) {
				*e = hashmapEntry{state: slotTombstone}
				h.size--
				return true
			}
		}
		idx = (idx + 1) % cap
	}
	return false
}

// Each visits every live entry in slot order.
func (h *Hashmap) Each(fn func(key, value Value)) {
	for i := range h.entries {
		if h.entries[i].state == slotUsed {
			fn(h.entries[i].key, h.entries[i].value)
		}
	}
}

func (h *Hashmap) rehash(newCap int) {
	old := h.entries
	h.entries = make([]hashmapEntry, newCap)
	h.size = 0
	h.filled = 0
	for i := range old {
		if old[i].state == slotUsed {
			h.Put(old[i].key, old[i].value)
		}
	}
}

// equals is structural: same live size and every binding of h appears in
// other. It scans rather than probes so that deep-copied container keys
// still match.
func (h *Hashmap) equals(other *Hashmap) bool {
	if h == other {
		return true
	}
	if h.size != other.size {
		return false
	}
	matched := true
	h.Each(func(k, v Value) {
		if !matched {
			return
		}
		found := false
		other.Each(func(k2, v2 Value) {
			if !found && k.Equals(k2) && v.Equals(v2) {
				found = true
			}
		})
		if !found {
			matched = false
		}
	})
	return matched
}

func (h *Hashmap) copyDeep() *Hashmap {
	dst := NewHashmap()
	h.Each(func(k, v Value) {
		dst.Put(k.Copy(), v.Copy())
	})
	return dst
}
