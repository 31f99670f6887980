package synfuzz

import (
	"encoding/binary"
	"math/rand"
	"sync"
)

// lockedSource serialises access to a rand.Source.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func newLockedSource(src rand.Source) *lockedSource {
	return &lockedSource{src: src}
}

func (l *lockedSource) Int63() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Int63()
}

func (l *lockedSource) Seed(seed int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.src.Seed(seed)
}

// bytesSource is a rand.Source reading 8 bytes per draw from data.
type bytesSource struct {
	data []byte
}

func (b *bytesSource) Uint64() uint64 {
	var buf [8]byte
	n := copy(buf[:], b.data)
	b.data = b.data[n:]
	return binary.BigEndian.Uint64(buf[:])
}

func (b *bytesSource) Int63() int64 {
	return int64(b.Uint64() & (1<<63 - 1))
}

func (b *bytesSource) Seed(int64) {}
