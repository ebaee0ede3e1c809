package cache

// lruNode is a node in a doubly-linked LRU list. It carries the entry so
// that eviction can delete the map key in O(1).
type lruNode[K comparable, V any] struct {
	key   K
	value V
	prev  *lruNode[K, V]
	next  *lruNode[K, V]
}

// lruList is a doubly-linked list. The head is the most recently used
// node, the tail the least recently used.
type lruList[K comparable, V any] struct {
	head *lruNode[K, V]
	tail *lruNode[K, V]
}

func (l *lruList[K, V]) pushFront(node *lruNode[K, V]) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
}

func (l *lruList[K, V]) moveToFront(node *lruNode[K, V]) {
	if node == l.head {
		return
	}
	l.unlink(node)
	l.pushFront(node)
}

// unlink removes node from the list and clears its links.
func (l *lruList[K, V]) unlink(node *lruNode[K, V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
}

// Stats reports cache usage.
type Stats struct {
	Len      int
	Capacity int
	Hits     uint64
	Misses   uint64
}

// LRU is a cache holding at most Capacity entries. Setting a new key on a
// full cache evicts the least recently used entry.
type LRU[K comparable, V any] struct {
	entries  map[K]*lruNode[K, V]
	order    lruList[K, V]
	capacity int
	hits     uint64
	misses   uint64
}

// NewLRU creates a cache of the given capacity. A capacity below 1 is
// treated as 1.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		entries:  make(map[K]*lruNode[K, V], capacity),
		capacity: capacity,
	}
}

// Get returns the value of key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	node, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.moveToFront(node)
	return node.value, true
}

// Set stores value under key.
func (c *LRU[K, V]) Set(key K, value V) {
	if node, ok := c.entries[key]; ok {
		node.value = value
		c.order.moveToFront(node)
		return
	}
	if len(c.entries) >= c.capacity {
		oldest := c.order.tail
		c.order.unlink(oldest)
		delete(c.entries, oldest.key)
	}
	node := &lruNode[K, V]{key: key, value: value}
	c.entries[key] = node
	c.order.pushFront(node)
}

// GetOrCreate returns the cached value of key, calling create and storing
// its result on a miss.
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create()
	c.Set(key, v)
	return v
}

// Delete removes key. It reports whether key was present.
func (c *LRU[K, V]) Delete(key K) bool {
	node, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.unlink(node)
	delete(c.entries, key)
	return true
}

// Clear removes every entry. Statistics are kept.
func (c *LRU[K, V]) Clear() {
	clear(c.entries)
	c.order = lruList[K, V]{}
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int { return len(c.entries) }

// Stats returns the cache statistics.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{
		Len:      len(c.entries),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}
