package worker

import (
	"container/list"
	"sync"
)

// WaveformCache is an LRU keyed by file content hash, bounding the memory
// held by computed waveform peaks, per spec's "memory-bounded by a LRU
// keyed on file content hash" — grounded on the teacher's in-process
// caching idiom (map + container/list, no third-party cache library
// appears anywhere in the pack for this shape, so this is stdlib by
// default rather than dropped deliberately).
type WaveformCache struct {
	maxEntries int

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
}

type waveformCacheEntry struct {
	key  string
	data *WaveformData
}

// WaveformData holds per-millisecond peak pairs, normalized to [-1, 1].
type WaveformData struct {
	PositiveMs []float32
	NegativeMs []float32
}

func NewWaveformCache(maxEntries int) *WaveformCache {
	if maxEntries <= 0 {
		maxEntries = 32
	}
	return &WaveformCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (c *WaveformCache) Get(key string) (*WaveformData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*waveformCacheEntry).data, true
}

func (c *WaveformCache) Put(key string, data *WaveformData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*waveformCacheEntry).data = data
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&waveformCacheEntry{key: key, data: data})
	c.entries[key] = el

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*waveformCacheEntry).key)
	}
}
