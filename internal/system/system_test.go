package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	files := []string{"a.txt", "b.md", "c.txt", "ignored.mp4"}
	for i, name := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("- scene"), 0644); err != nil {
			t.Fatal(err)
		}
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(path, mod, mod)
	}

	latest, err := FindLatest(dir, ".txt", ".md")
	if err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	if filepath.Base(latest) != "c.txt" {
		t.Errorf("latest = %s, want c.txt", latest)
	}

	if _, err := FindLatest(dir, ".pdf"); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func TestImagePool(t *testing.T) {
	pool := NewImagePool()
	rect := image.Rect(0, 0, 64, 36)

	img := pool.Get(rect)
	if img.Bounds() != rect {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), rect)
	}
	pool.Put(img)
	pool.Put(nil)

	other := pool.Get(image.Rect(0, 0, 32, 18))
	if other.Bounds().Dx() != 32 {
		t.Errorf("size-keyed pool returned %v", other.Bounds())
	}
}

func TestRecommendedWorkers(t *testing.T) {
	if n := RecommendedWorkers(); n < 1 {
		t.Errorf("RecommendedWorkers() = %d", n)
	}
}
