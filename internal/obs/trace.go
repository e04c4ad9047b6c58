package obs

import (
	"sync/atomic"
	"time"
)

// SeqGenerator creates monotonically increasing sequence numbers used
// to correlate dispatch log lines for one inbound payload.
type SeqGenerator struct {
	next uint64
}

// NewSeqGenerator returns a generator seeded with the given value.
func NewSeqGenerator(seed uint64) *SeqGenerator {
	if seed == 0 {
		seed = uint64(time.Now().UTC().UnixNano())
	}
	return &SeqGenerator{next: seed}
}

// Next returns the next sequence number.
func (g *SeqGenerator) Next() uint64 {
	if g == nil {
		return 0
	}
	return atomic.AddUint64(&g.next, 1)
}
