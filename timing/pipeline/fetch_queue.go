package pipeline

import (
	"github.com/riscvperf/cva6perf/insts"
)

// FetchQueue models the frontend instruction queue as a byte count. It
// captures fetch-level stalls (startup, redirects, flushes) without
// holding instruction bytes: the stream is word-granular on the fetch
// side but consumed at 2- or 4-byte granularity, so the count tracks
// which bytes of the current fetch word are still valid.
type FetchQueue struct {
	fetchSize int // fetch-word size in bytes, power of two >= 4
	len       int // buffered bytes
	newFetch  bool
}

// NewFetchQueue creates a queue for the requested fetch-word size,
// rounded up to the next power of two with a 4-byte minimum. The queue
// starts with one freshly fetched word buffered.
func NewFetchQueue(fetchSize int) *FetchQueue {
	size := 4
	for size < fetchSize {
		size <<= 1
	}
	return &FetchQueue{
		fetchSize: size,
		len:       size,
		newFetch:  true,
	}
}

// FetchSize returns the resolved fetch-word size in bytes.
func (q *FetchQueue) FetchSize() int {
	return q.fetchSize
}

// Len returns the buffered byte count.
func (q *FetchQueue) Len() int {
	return q.len
}

// Fetch buffers one more fetch word.
func (q *FetchQueue) Fetch() {
	q.len += q.fetchSize
	q.newFetch = true
}

// Flush empties the queue (misprediction or exception).
func (q *FetchQueue) Flush() {
	q.len = 0
	q.newFetch = false
}

// Jump models a taken redirect: one fetch slot is lost if a fresh fetch
// was still pending, and the queue is truncated to the bytes valid at a
// word-aligned target.
func (q *FetchQueue) Jump() {
	if q.newFetch {
		q.len -= q.fetchSize
		q.newFetch = false
	}
	q.truncate(0)
}

// Has reports whether the queue holds the instruction's bytes. An
// instruction straddling the end of a fetch word costs an extra
// fetchSize-2 bytes of occupancy, because its tail arrives with the next
// word.
func (q *FetchQueue) Has(inst *insts.Instruction) bool {
	length := q.len
	if q.crossword(inst) {
		length -= q.fetchSize - 2
	}
	return length >= int(inst.Size)
}

// Remove consumes the instruction from the queue: its bytes are
// subtracted, the count is truncated to the alignment of the following
// address, and a control-flow redirect additionally pays the jump
// discard.
func (q *FetchQueue) Remove(inst *insts.Instruction) {
	q.len -= int(inst.Size)
	q.truncate(q.addrIndex(inst.NextAddr()))
	if inst.Redirects() {
		q.Jump()
	}
}

// addrIndex is an address's byte offset within its fetch word.
func (q *FetchQueue) addrIndex(addr uint32) int {
	return int(addr) & (q.fetchSize - 1)
}

// crossword reports whether the instruction starts on the last
// half-word of a fetch word without being compact-encoded.
func (q *FetchQueue) crossword(inst *insts.Instruction) bool {
	isLast := q.addrIndex(inst.Addr) == q.fetchSize-2
	return isLast && !inst.Compressed
}

// truncate discards the bytes between the current queue tail and a
// target's offset within its fetch word, reproducing word-granular
// refill without modeling byte contents. index is 0 for a word-aligned
// target.
func (q *FetchQueue) truncate(index int) {
	occupancy := q.fetchSize - (q.len & (q.fetchSize - 1))
	toRemove := index - occupancy
	if toRemove < 0 {
		toRemove += q.fetchSize
	}
	q.len -= toRemove
}
