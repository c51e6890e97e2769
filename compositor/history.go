package compositor

import (
	"time"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/ruapotato/Flick-sub004/gesture"
	"github.com/ruapotato/Flick-sub004/shell"
)

// DefaultHistorySize is how many gesture records the journal keeps
const DefaultHistorySize = 256

// Record is one recognized gesture together with what the shell did with it
type Record struct {
	Seq      uint64         `json:"seq"`
	Time     time.Time      `json:"time"`
	Event    gesture.Event  `json:"event"`
	Consumed bool           `json:"consumed"`
	Action   gesture.Action `json:"action"`
	View     shell.View     `json:"view"`
}

// journal is a bounded gesture log keyed by sequence number; the oldest
// records are evicted first
type journal struct {
	cache *lru.Cache[uint64, Record]
}

func newJournal(size int) (*journal, error) {
	if size <= 0 {
		size = DefaultHistorySize
	}
	cache, err := lru.New[uint64, Record](size)
	if err != nil {
		return nil, err
	}
	return &journal{cache: cache}, nil
}

func (j *journal) add(r Record) {
	j.cache.Add(r.Seq, r)
}

// update rewrites a stored record, if it is still present
func (j *journal) update(seq uint64, fn func(*Record)) {
	r, ok := j.cache.Peek(seq)
	if !ok {
		return
	}
	fn(&r)
	j.cache.Add(seq, r)
}

// recent returns up to n records, newest first. n <= 0 returns everything.
func (j *journal) recent(n int) []Record {
	keys := j.cache.Keys()
	if n <= 0 || n > len(keys) {
		n = len(keys)
	}

	records := make([]Record, 0, n)
	for i := len(keys) - 1; i >= 0 && len(records) < n; i-- {
		if r, ok := j.cache.Peek(keys[i]); ok {
			records = append(records, r)
		}
	}
	return records
}

func (j *journal) clear() {
	j.cache.Purge()
}
