package pkg

import (
	"os"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "strata"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestDescription(t *testing.T) {
	if !strings.Contains(Description, "front end") {
		t.Errorf("Expected Description to mention the front end, got %q", Description)
	}
}

func TestVersion(t *testing.T) {
	// Tests run with the package directory as working directory.
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Expected Author to have at least one entry")
	}

	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Expected Author to contain ardnew")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestPaths(t *testing.T) {
	if Prefix() == "" {
		t.Error("Expected non-empty Prefix")
	}

	if !strings.HasSuffix(ConfigDir(), Prefix()) {
		t.Errorf("Expected ConfigDir %q to end with %q", ConfigDir(), Prefix())
	}

	if !strings.HasSuffix(CacheDir(), Prefix()) {
		t.Errorf("Expected CacheDir %q to end with %q", CacheDir(), Prefix())
	}
}
