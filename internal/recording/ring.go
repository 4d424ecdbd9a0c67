package recording

import "sync/atomic"

// Ring is a fixed-capacity single-producer/single-consumer queue of byte
// blocks. Push never blocks or allocates, so it is safe to call from an audio
// callback; Front and Release are called by exactly one consumer goroutine.
type Ring struct {
	slots [][]byte
	lens  []int

	head atomic.Uint64 // next slot to write
	tail atomic.Uint64 // next slot to read
}

func NewRing(blocks, blockSize int) *Ring {
	if blocks < 1 {
		blocks = 1
	}
	r := &Ring{
		slots: make([][]byte, blocks),
		lens:  make([]int, blocks),
	}
	for i := range r.slots {
		r.slots[i] = make([]byte, blockSize)
	}
	return r
}

// Push copies p into the next free slot. It reports false when the ring is
// full; p is truncated to the slot size.
func (r *Ring) Push(p []byte) bool {
	head := r.head.Load()
	if head-r.tail.Load() == uint64(len(r.slots)) {
		return false
	}
	i := head % uint64(len(r.slots))
	r.lens[i] = copy(r.slots[i], p)
	r.head.Store(head + 1)
	return true
}

// Front returns the oldest unread block without removing it. The slice is
// only valid until Release.
func (r *Ring) Front() ([]byte, bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return nil, false
	}
	i := tail % uint64(len(r.slots))
	return r.slots[i][:r.lens[i]], true
}

// Release drops the block returned by Front.
func (r *Ring) Release() {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return
	}
	r.tail.Store(tail + 1)
}

// Len is the number of unread blocks.
func (r *Ring) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

func (r *Ring) Cap() int { return len(r.slots) }

func (r *Ring) BlockSize() int {
	return len(r.slots[0])
}
