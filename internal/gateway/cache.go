package gateway

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// CacheEntry 缓存条目
type CacheEntry struct {
	Data        []byte
	ContentType string
	ExpiresAt   time.Time
	ETag        string
}

// MemoryCache 内存响应缓存
type MemoryCache struct {
	entries map[string]*CacheEntry
	mutex   sync.RWMutex

	MaxEntries      int
	CleanupInterval time.Duration
	now             func() time.Time
}

// NewMemoryCache 创建内存缓存，ctx 结束时停止清理协程
func NewMemoryCache(ctx context.Context) *MemoryCache {
	c := &MemoryCache{
		entries:         make(map[string]*CacheEntry),
		MaxEntries:      1000,
		CleanupInterval: time.Minute,
		now:             time.Now,
	}
	go c.cleanup(ctx)
	return c
}

// Get 获取未过期的条目
func (mc *MemoryCache) Get(key string) *CacheEntry {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	entry, ok := mc.entries[key]
	if !ok || mc.now().After(entry.ExpiresAt) {
		return nil
	}
	return entry
}

// Set 写入条目，超过上限时先淘汰过期条目，再淘汰最早过期的条目
func (mc *MemoryCache) Set(key string, entry *CacheEntry) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if len(mc.entries) >= mc.MaxEntries {
		mc.evictExpired()
		if len(mc.entries) >= mc.MaxEntries {
			mc.evictOldest()
		}
	}
	mc.entries[key] = entry
}

// Len 当前条目数
func (mc *MemoryCache) Len() int {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	return len(mc.entries)
}

func (mc *MemoryCache) evictExpired() {
	now := mc.now()
	for key, entry := range mc.entries {
		if now.After(entry.ExpiresAt) {
			delete(mc.entries, key)
		}
	}
}

func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range mc.entries {
		if oldestKey == "" || entry.ExpiresAt.Before(oldest) {
			oldestKey, oldest = key, entry.ExpiresAt
		}
	}
	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

func (mc *MemoryCache) cleanup(ctx context.Context) {
	ticker := time.NewTicker(mc.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			mc.mutex.Lock()
			mc.evictExpired()
			mc.mutex.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// CacheMiddleware 只读接口的响应缓存
type CacheMiddleware struct {
	cache *MemoryCache
	// 路径前缀到缓存时间
	CacheTTL map[string]time.Duration
}

// NewCacheMiddleware 创建缓存中间件。排行榜只在胜利时变化，短时间缓存即可
func NewCacheMiddleware(ctx context.Context) *CacheMiddleware {
	return &CacheMiddleware{
		cache: NewMemoryCache(ctx),
		CacheTTL: map[string]time.Duration{
			"/leaderboard": 30 * time.Second,
		},
	}
}

// Middleware 缓存中间件，支持 If-None-Match
func (cm *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ttl, ok := cm.ttlFor(r.URL.Path)
		if r.Method != http.MethodGet || !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}

		if entry := cm.cache.Get(key); entry != nil {
			w.Header().Set("ETag", entry.ETag)
			w.Header().Set("X-Cache", "HIT")
			if r.Header.Get("If-None-Match") == entry.ETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.Header().Set("Content-Type", entry.ContentType)
			w.WriteHeader(http.StatusOK)
			w.Write(entry.Data)
			return
		}

		recorder := &cacheResponseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode == http.StatusOK && len(recorder.body) > 0 {
			cm.cache.Set(key, &CacheEntry{
				Data:        recorder.body,
				ContentType: w.Header().Get("Content-Type"),
				ExpiresAt:   cm.cache.now().Add(ttl),
				ETag:        fmt.Sprintf(`"%x"`, sha256.Sum256(recorder.body)),
			})
		}
	})
}

func (cm *CacheMiddleware) ttlFor(path string) (time.Duration, bool) {
	for prefix, ttl := range cm.CacheTTL {
		if strings.HasPrefix(path, prefix) {
			return ttl, true
		}
	}
	return 0, false
}

// cacheResponseRecorder 同时写出并记录响应体
type cacheResponseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       []byte
}

// WriteHeader 记录状态码
func (crr *cacheResponseRecorder) WriteHeader(code int) {
	crr.statusCode = code
	crr.ResponseWriter.WriteHeader(code)
}

// Write 记录响应体
func (crr *cacheResponseRecorder) Write(data []byte) (int, error) {
	crr.body = append(crr.body, data...)
	return crr.ResponseWriter.Write(data)
}
