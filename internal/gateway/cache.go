package gateway

import (
	"crypto/md5"
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

// MemoryCache 内存缓存
type MemoryCache struct {
	entries map[string]*CacheEntry
	mutex   sync.Mutex
	now     func() time.Time

	MaxEntries int
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]*CacheEntry),
		now:        time.Now,
		MaxEntries: maxEntries,
	}
}

// Get 获取未过期的缓存条目
func (mc *MemoryCache) Get(key string) *CacheEntry {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	entry, exists := mc.entries[key]
	if !exists {
		return nil
	}
	if !mc.now().Before(entry.ExpiresAt) {
		delete(mc.entries, key)
		return nil
	}
	return entry
}

// Set 设置缓存条目，满了先清过期条目，再淘汰最早过期的
func (mc *MemoryCache) Set(key string, entry *CacheEntry) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if _, exists := mc.entries[key]; !exists && len(mc.entries) >= mc.MaxEntries {
		mc.evictExpired()
		if len(mc.entries) >= mc.MaxEntries {
			mc.evictOldest()
		}
	}
	mc.entries[key] = entry
}

// Len 当前条目数
func (mc *MemoryCache) Len() int {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	return len(mc.entries)
}

func (mc *MemoryCache) evictExpired() {
	now := mc.now()
	for key, entry := range mc.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(mc.entries, key)
		}
	}
}

func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, entry := range mc.entries {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.ExpiresAt
		}
	}
	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

// CacheMiddleware 缓存排行榜这类读多写少的GET响应
type CacheMiddleware struct {
	cache *MemoryCache

	// 路径前缀到缓存时间
	CacheTTL map[string]time.Duration
}

// NewCacheMiddleware 创建缓存中间件
func NewCacheMiddleware() *CacheMiddleware {
	return &CacheMiddleware{
		cache: NewMemoryCache(1000),
		CacheTTL: map[string]time.Duration{
			"/stats/leaderboard": 10 * time.Second,
			"/stats/player/":     30 * time.Second,
		},
	}
}

// Middleware 缓存中间件
func (cm *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ttl, ok := cm.ttl(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.Path + "?" + r.URL.RawQuery
		if entry := cm.cache.Get(key); entry != nil {
			w.Header().Set("ETag", entry.ETag)
			if r.Header.Get("If-None-Match") == entry.ETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.Header().Set("Content-Type", entry.ContentType)
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(entry.Data)
			return
		}

		recorder := &cacheResponseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		w.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(recorder, r)

		if recorder.statusCode == http.StatusOK && len(recorder.body) > 0 {
			cm.cache.Set(key, &CacheEntry{
				Data:        recorder.body,
				ContentType: w.Header().Get("Content-Type"),
				ExpiresAt:   cm.cache.now().Add(ttl),
				ETag:        etag(recorder.body),
			})
		}
	})
}

// ttl 只缓存配置了前缀的GET请求
func (cm *CacheMiddleware) ttl(r *http.Request) (time.Duration, bool) {
	if r.Method != http.MethodGet {
		return 0, false
	}
	for prefix, ttl := range cm.CacheTTL {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return ttl, true
		}
	}
	return 0, false
}

func etag(data []byte) string {
	return fmt.Sprintf(`"%x"`, md5.Sum(data))
}

// cacheResponseRecorder 记录响应体
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
