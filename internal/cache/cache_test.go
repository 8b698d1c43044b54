package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/speclens/internal/model"
	"github.com/ppiankov/speclens/internal/reader"
)

func TestDocumentKey_ChangesWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PackML.xlsx")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	info1, _ := os.Stat(path)

	if DocumentKey(path, "Sheet1", info1) != DocumentKey(path, "Sheet1", info1) {
		t.Error("Expected stable key for unchanged file")
	}
	if DocumentKey(path, "Sheet1", info1) == DocumentKey(path, "Sheet2", info1) {
		t.Error("Expected different key for a different sheet")
	}

	if err := os.WriteFile(path, []byte("version two"), 0644); err != nil {
		t.Fatal(err)
	}
	info2, _ := os.Stat(path)
	if DocumentKey(path, "Sheet1", info1) == DocumentKey(path, "Sheet1", info2) {
		t.Error("Expected different key after the file changed size")
	}
}

func TestDocumentKey_ChangesWithLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PackML.xlsx")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(path)

	columns := model.DefaultConfig().Columns
	before := reader.NewReader("Sheet1", columns).Fingerprint()
	columns.Relational = "Constraint_keywords"
	after := reader.NewReader("Sheet1", columns).Fingerprint()

	if DocumentKey(path, before, info) == DocumentKey(path, after, info) {
		t.Error("Expected different key after a column header changed")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("k", []byte("value"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "value" {
		t.Fatalf("Expected cached value, got %q %v", got, ok)
	}

	if err := c.Set("old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("old"); ok {
		t.Error("Expected expired entry to miss")
	}
	if _, err := os.Stat(filepath.Join(dir, "old"+diskSuffix)); !os.IsNotExist(err) {
		t.Error("Expected expired entry file to be removed")
	}
}

func TestDiskCache_ClearKeepsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	foreign := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(foreign, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewDiskCache(dir, time.Hour)
	_ = c.Set("a", []byte("1"), 0)
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Expected entry to be cleared")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Errorf("Expected foreign file to survive: %v", err)
	}
	if err := c.Delete("missing"); err != nil {
		t.Errorf("Expected deleting a missing key to succeed, got %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir, time.Hour)
	_ = disk.Set("k", []byte("from disk"), 0)

	mem := NewMemoryCache(time.Minute, time.Minute)
	c := &LayeredCache{memory: mem, disk: disk}

	got, ok := c.Get("k")
	if !ok || string(got) != "from disk" {
		t.Fatalf("Expected disk hit, got %q %v", got, ok)
	}
	if mem.Len() != 1 {
		t.Errorf("Expected disk hit to be promoted to memory, got %d entries", mem.Len())
	}
}

func TestDocuments_RoundTrip(t *testing.T) {
	docs := NewDocuments(NewMemoryCache(time.Minute, time.Minute), 0)

	var s model.Sentence
	s.Text = "The pump shall stop"
	s.Rule = true
	s.Keywords[model.InformationModel] = []string{"pump"}
	s.Keywords[model.Constraint] = []string{"shall"}

	if err := docs.Put("doc", []model.Sentence{s}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok := docs.Get("doc")
	if !ok || len(got) != 1 {
		t.Fatalf("Expected one cached sentence, got %v %v", got, ok)
	}
	if got[0].Text != s.Text || !got[0].Rule || got[0].Counts() != s.Counts() {
		t.Errorf("Unexpected sentence: %+v", got[0])
	}
}

func TestDocuments_CorruptEntryMisses(t *testing.T) {
	mem := NewMemoryCache(time.Minute, time.Minute)
	_ = mem.Set("doc", []byte("{not json"), 0)

	docs := NewDocuments(mem, 0)
	if _, ok := docs.Get("doc"); ok {
		t.Error("Expected corrupt entry to miss")
	}
	if mem.Len() != 0 {
		t.Error("Expected corrupt entry to be deleted")
	}
}

func TestFromConfig(t *testing.T) {
	if FromConfig(model.CacheConfig{Enabled: false}) != nil {
		t.Error("Expected nil cache when disabled")
	}
	if _, ok := FromConfig(model.CacheConfig{Enabled: true}).(*MemoryCache); !ok {
		t.Error("Expected memory-only cache without a directory")
	}
	if _, ok := FromConfig(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("Expected layered cache with a directory")
	}
}
