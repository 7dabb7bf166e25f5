package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"noticeboard/internal/pipeline"
)

func writeFeed(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write feed %s: %v", path, err)
	}
}

func TestLoadPostsSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.json")
	writeFeed(t, path, `[
		{"source": "club_a", "caption": "Hack Night tonight!"},
		{"source": "club_b", "caption": "Concert on Friday", "fetched_at": "2024-06-01T10:00:00Z"}
	]`)

	posts, err := pipeline.LoadPosts(path)
	if err != nil {
		t.Fatalf("LoadPosts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].Source != "club_a" || posts[1].Source != "club_b" {
		t.Fatalf("unexpected sources: %q, %q", posts[0].Source, posts[1].Source)
	}
	if posts[1].FetchedAt.IsZero() {
		t.Fatal("expected fetched_at to be parsed")
	}
}

func TestLoadPostsDirectoryInNameOrder(t *testing.T) {
	dir := t.TempDir()
	writeFeed(t, filepath.Join(dir, "b.json"), `[{"source": "second", "caption": "x"}]`)
	writeFeed(t, filepath.Join(dir, "a.json"), `[{"source": "first", "caption": "x"}]`)
	writeFeed(t, filepath.Join(dir, "notes.txt"), "not a feed")

	posts, err := pipeline.LoadPosts(dir)
	if err != nil {
		t.Fatalf("LoadPosts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].Source != "first" || posts[1].Source != "second" {
		t.Fatalf("unexpected order: %q, %q", posts[0].Source, posts[1].Source)
	}
}

func TestLoadPostsRejectsMissingSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.json")
	writeFeed(t, path, `[{"source": "  ", "caption": "no source"}]`)

	if _, err := pipeline.LoadPosts(path); err == nil {
		t.Fatal("expected error for post without source")
	}
}

func TestLoadPostsMissingPath(t *testing.T) {
	if _, err := pipeline.LoadPosts(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing feed path")
	}
}
