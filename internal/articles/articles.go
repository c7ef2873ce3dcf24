// internal/articles/articles.go
// Package articles enumerates and selects the markdown source documents a
// quiz session draws questions from.
package articles

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Article is one markdown source document.
type Article struct {
	// Title is the file name, shown beside the question.
	Title string
	// Text is the full document body.
	Text string
}

// List returns the names of the markdown files in dir, sorted. A missing
// directory is treated as an empty corpus.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// PickRandom selects one article uniformly at random from dir and reads it.
func PickRandom(dir string) (Article, error) {
	names, err := List(dir)
	if err != nil {
		return Article{}, err
	}
	if len(names) == 0 {
		return Article{}, fmt.Errorf("no .md files found in %s", dir)
	}

	name := names[rand.Intn(len(names))]
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return Article{}, err
	}
	return Article{Title: name, Text: string(data)}, nil
}
