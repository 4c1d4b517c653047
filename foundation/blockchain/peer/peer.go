// Package peer maintains the identity of the participants in a simulated
// network and the sets used to track which of them a node follows or
// distrusts.
package peer

import (
	"math/bits"
	"sync"
)

// ID identifies a participant by its position in the network.
type ID int

// =============================================================================

// Set represents a fixed capacity set of peers backed by a bitmap.
type Set struct {
	mu    sync.RWMutex
	bits  []uint64
	size  int
	count int
}

// NewSet constructs a set that can hold the ids 0 through size-1.
func NewSet(size int) *Set {
	if size < 0 {
		size = 0
	}

	return &Set{
		bits: make([]uint64, (size+63)/64),
		size: size,
	}
}

// SetOf constructs a set of the specified size holding the provided ids.
func SetOf(size int, ids ...ID) *Set {
	s := NewSet(size)
	for _, id := range ids {
		s.Add(id)
	}

	return s
}

// Add marks the peer as a member. It reports false when the peer was
// already a member or the id is out of range.
func (s *Set) Add(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRange(id) {
		return false
	}

	word, mask := id/64, uint64(1)<<(id%64)
	if s.bits[word]&mask != 0 {
		return false
	}

	s.bits[word] |= mask
	s.count++

	return true
}

// Remove removes the peer from the set.
func (s *Set) Remove(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRange(id) {
		return
	}

	word, mask := id/64, uint64(1)<<(id%64)
	if s.bits[word]&mask != 0 {
		s.bits[word] &^= mask
		s.count--
	}
}

// Has reports whether the peer is a member.
func (s *Set) Has(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.has(id)
}

// Len returns the number of members.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.count
}

// Size returns the capacity of the set.
func (s *Set) Size() int {
	return s.size
}

// IDs returns the members in ascending order.
func (s *Set) IDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]ID, 0, s.count)
	for w, word := range s.bits {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			ids = append(ids, ID(w*64+b))
			word &= word - 1
		}
	}

	return ids
}

// Missing returns the members of the set that are not members of other.
func (s *Set) Missing(other *Set) []ID {
	var missing []ID
	for _, id := range s.IDs() {
		if !other.Has(id) {
			missing = append(missing, id)
		}
	}

	return missing
}

// Copy returns an independent copy of the set.
func (s *Set) Copy() *Set {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := make([]uint64, len(s.bits))
	copy(b, s.bits)

	return &Set{
		bits:  b,
		size:  s.size,
		count: s.count,
	}
}

func (s *Set) inRange(id ID) bool {
	return id >= 0 && int(id) < s.size
}

// has checks membership, caller must hold the lock.
func (s *Set) has(id ID) bool {
	if !s.inRange(id) {
		return false
	}

	return s.bits[id/64]&(uint64(1)<<(id%64)) != 0
}
