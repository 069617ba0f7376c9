// The MIT License (MIT)
//
// Copyright (c) 2019 West Damron
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package infer

import (
	"github.com/wdamron/infer/types"
)

// DefaultCacheCapacity is the number of resolved types cached by a context, by default.
const DefaultCacheCapacity = 4096

// CacheStats describes the resolution cache of a context.
type CacheStats struct {
	Entries  int
	Capacity int
	Hits     int
	Misses   int
}

// resolutionCache maps canonical type keys to resolved types. Entries are only valid for the
// store generation in which they were added; reads from a newer generation discard the cache.
type resolutionCache struct {
	capacity   int
	generation uint64
	entries    map[string]types.Type
	hits       int
	misses     int
}

func newResolutionCache(capacity int) *resolutionCache {
	return &resolutionCache{capacity: capacity, entries: make(map[string]types.Type, min(capacity, 64))}
}

func (c *resolutionCache) get(key string, generation uint64) (types.Type, bool) {
	if generation != c.generation {
		c.clear()
		c.generation = generation
	}
	t, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return t, ok
}

// put adds an entry for the current generation. A full cache is emptied first.
func (c *resolutionCache) put(key string, generation uint64, t types.Type) {
	if c.capacity <= 0 || generation != c.generation {
		return
	}
	if len(c.entries) >= c.capacity {
		c.clear()
	}
	c.entries[key] = t
}

func (c *resolutionCache) clear() { clear(c.entries) }

func (c *resolutionCache) stats() CacheStats {
	return CacheStats{Entries: len(c.entries), Capacity: c.capacity, Hits: c.hits, Misses: c.misses}
}
