package vdom

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/minio/blake2b-simd"
)

// TemplateCache caches compiled template tables by content hash, so a
// hot-reload swap that doesn't actually change a template's content reuses
// the previously compiled value instead of producing a fresh one.  One
// cache can be shared by any number of registries.
type TemplateCache interface {
	// Add records freshly compiled tables under their content hash.
	Add(key, value interface{})
	// Contains indicates tables with the given hash have been compiled.
	Contains(key interface{}) bool
	// Get retrieves the compiled tables with the given hash, if cached.
	Get(key interface{}) (value interface{}, ok bool)
}

// NewTemplateCache creates a new LRU-based template cache of the given
// size.
func NewTemplateCache(size int) TemplateCache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return cache
}

// hashTables derives the content-hash cache key for a tables value.
func hashTables(tables *TemplateTables) string {
	encoded, err := json.Marshal(tables)
	if err != nil {
		panic(fmt.Sprintf("marshal template tables: %v", err))
	}
	hashBytes := blake2b.Sum256(encoded)
	return base64.RawURLEncoding.EncodeToString(hashBytes[:])
}
