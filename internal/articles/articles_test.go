// internal/articles/articles_test.go
package articles

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zebra.md", "# zebra")
	writeFile(t, dir, "alpha.md", "# alpha")
	writeFile(t, dir, "notes.txt", "not markdown")
	writeFile(t, dir, "UPPER.MD", "# upper")
	if err := os.Mkdir(filepath.Join(dir, "nested.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := List(dir)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	want := []string{"UPPER.MD", "alpha.md", "zebra.md"}
	if len(names) != len(want) {
		t.Fatalf("List = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestListMissingDirIsEmpty(t *testing.T) {
	names, err := List(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty list, got %v", names)
	}
}

func TestPickRandomReadsArticle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "only.md", "# The Only Article\n\nBody text.")

	article, err := PickRandom(dir)
	if err != nil {
		t.Fatalf("PickRandom returned error: %v", err)
	}
	if article.Title != "only.md" {
		t.Errorf("Title = %q, want only.md", article.Title)
	}
	if article.Text != "# The Only Article\n\nBody text." {
		t.Errorf("unexpected text: %q", article.Text)
	}
}

func TestPickRandomEmptyDir(t *testing.T) {
	_, err := PickRandom(t.TempDir())
	if err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestPickRandomStaysInCorpus(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "a")
	writeFile(t, dir, "b.md", "b")
	writeFile(t, dir, "c.md", "c")

	for i := 0; i < 20; i++ {
		article, err := PickRandom(dir)
		if err != nil {
			t.Fatalf("PickRandom returned error: %v", err)
		}
		if article.Title != "a.md" && article.Title != "b.md" && article.Title != "c.md" {
			t.Fatalf("picked a file outside the corpus: %q", article.Title)
		}
	}
}
