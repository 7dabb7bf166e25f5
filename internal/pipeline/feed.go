package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Post is one fetched social-media post awaiting ingestion. Fetching is an
// external collaborator's concern; feeds arrive on disk as JSON arrays.
type Post struct {
	Source    string    `json:"source"`
	Caption   string    `json:"caption"`
	FetchedAt time.Time `json:"fetched_at,omitzero"`
}

// LoadPosts reads a post feed from a JSON file, or from every *.json file
// in a directory (in name order, so batches process deterministically).
func LoadPosts(path string) ([]Post, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("inspect feed %q: %w", path, err)
	}

	if !info.IsDir() {
		return loadFeedFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read feed directory %q: %w", path, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var posts []Post
	for _, name := range names {
		filePosts, err := loadFeedFile(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		posts = append(posts, filePosts...)
	}
	return posts, nil
}

func loadFeedFile(path string) ([]Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed %q: %w", path, err)
	}

	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("parse feed %q: %w", path, err)
	}

	for i := range posts {
		posts[i].Source = strings.TrimSpace(posts[i].Source)
		if posts[i].Source == "" {
			return nil, fmt.Errorf("feed %q: post %d has no source", path, i)
		}
	}
	return posts, nil
}
