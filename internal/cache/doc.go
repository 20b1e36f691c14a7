// Package cache provides a small thread-safe cache with a soft size limit
// and per-entry expiry.
//
//	c := cache.New[string, bool](256, time.Minute)
//	c.Set("4/curve_idx_4_slice_12_cor_0_10_20_30.png", true)
//	exists, ok := c.Get("4/curve_idx_4_slice_12_cor_0_10_20_30.png")
//
// When the cache grows past its soft limit, the least recently used
// quarter of the entries is evicted.
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
