// Package cache provides a small generic LRU cache.
//
//	c := cache.NewLRU[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// LRU is not safe for concurrent use.
package cache
