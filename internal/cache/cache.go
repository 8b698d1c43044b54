package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ppiankov/speclens/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// DocumentKey generates a cache key for a workbook parsed with the given reader layout
// (see reader.Reader.Fingerprint). Size and modification time are part of the key so an
// edited workbook misses, and so does a workbook read with other columns.
func DocumentKey(path, layout string, info os.FileInfo) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(layout))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(info.Size(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))
	return "speclens-v2-" + hex.EncodeToString(h.Sum(nil))
}

// Documents stores parsed sentence records on top of a byte cache
type Documents struct {
	cache Cache
	ttl   time.Duration
}

// NewDocuments wraps c; ttl 0 uses the layer defaults
func NewDocuments(c Cache, ttl time.Duration) *Documents {
	return &Documents{cache: c, ttl: ttl}
}

// Get returns the cached sentences for key, treating undecodable entries as misses
func (d *Documents) Get(key string) ([]model.Sentence, bool) {
	data, ok := d.cache.Get(key)
	if !ok {
		return nil, false
	}
	var sentences []model.Sentence
	if err := json.Unmarshal(data, &sentences); err != nil {
		_ = d.cache.Delete(key)
		return nil, false
	}
	return sentences, true
}

// Put stores sentences under key
func (d *Documents) Put(key string, sentences []model.Sentence) error {
	data, err := json.Marshal(sentences)
	if err != nil {
		return fmt.Errorf("marshal sentences: %w", err)
	}
	return d.cache.Set(key, data, d.ttl)
}
