package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestKeyIsStableAndDistinct(t *testing.T) {
	a := Key("tts-1", "shimmer", "Hello world.")
	b := Key("tts-1", "shimmer", "Hello world.")
	if a != b {
		t.Error("identical inputs produced different keys")
	}
	if a == Key("tts-1", "alloy", "Hello world.") {
		t.Error("different voice produced the same key")
	}
	if a == Key("tts-1", "shimmer", "Other text.") {
		t.Error("different text produced the same key")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	data := bytes.Repeat([]byte("audio-bytes "), 500)
	key := Key("tts-1", "shimmer", "some text")

	if err := c.Put(key, data); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("entry not found after Put")
	}
	if !bytes.Equal(got, data) {
		t.Error("round-tripped data differs")
	}
}

func TestGetMissingKey(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(Key("never", "stored")); ok {
		t.Error("Get returned ok for missing key")
	}
}

func TestGetRemovesCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	key := Key("model", "voice", "text")
	path := filepath.Join(dir, key+".zst")
	if err := os.WriteFile(path, []byte("not zstd data"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(key); ok {
		t.Fatal("corrupt entry decoded successfully")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry was not removed")
	}
}
