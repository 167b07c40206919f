package media

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()
	content := []byte("fake video payload")

	path, err := SaveUpload(memFile{bytes.NewReader(content)}, "clip.mp4", dir, 1024)
	if err != nil {
		t.Fatalf("saving upload: %v", err)
	}

	if filepath.Ext(path) != ".mp4" {
		t.Fatalf("spooled file %s does not keep the upload extension", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("spooled file content differs from the upload")
	}

	Cleanup(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("cleanup left the file behind: %v", err)
	}
}

func TestSaveUploadLimit(t *testing.T) {
	dir := t.TempDir()
	big := strings.Repeat("x", 100)

	if _, err := SaveUpload(memFile{bytes.NewReader([]byte(big))}, "big.mp4", dir, 99); err == nil {
		t.Fatal("oversized upload accepted")
	}

	// Nothing may be left spooled after a rejected upload.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected upload left %d files behind", len(entries))
	}

	// An upload exactly at the limit goes through.
	path, err := SaveUpload(memFile{bytes.NewReader([]byte(big))}, "big.mp4", dir, 100)
	if err != nil {
		t.Fatalf("upload at the limit rejected: %v", err)
	}
	Cleanup(path)
}
