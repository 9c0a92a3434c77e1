package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestJSONLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	content := `{"top": "value", "editor": {"tabSize": 4, "theme": "dark"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	doc, err := NewJSONLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if doc["top"] != "value" {
		t.Errorf("top = %v, want %q", doc["top"], "value")
	}
	editor, ok := doc["editor"].(map[string]any)
	if !ok {
		t.Fatalf("editor = %T, want map", doc["editor"])
	}
	if editor["tabSize"] != float64(4) {
		t.Errorf("editor.tabSize = %v (%T), want 4", editor["tabSize"], editor["tabSize"])
	}
}

func TestJSONLoader_Load_MissingFile(t *testing.T) {
	doc, err := NewJSONLoader(filepath.Join(t.TempDir(), "absent.json")).Load()
	if err != nil {
		t.Fatalf("Load() error = %v for missing file, want nil", err)
	}
	if doc != nil {
		t.Errorf("Load() = %v for missing file, want nil", doc)
	}
}

func TestJSONLoader_Load_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `{"unterminated`},
		{"top-level array", `[1, 2, 3]`},
		{"top-level scalar", `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJSONLoader("").LoadFromReader(strings.NewReader(tt.content))
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("LoadFromReader() error = %T, want *ParseError", err)
			}
		})
	}
}

func TestJSONLoader_Marshal(t *testing.T) {
	doc := map[string]any{
		"top": "value",
		"editor": map[string]any{
			"tabSize": 4,
		},
	}

	data, err := NewJSONLoader("").Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	result := gjson.ParseBytes(data)
	if got := result.Get("top").String(); got != "value" {
		t.Errorf("top = %q, want %q", got, "value")
	}
	if got := result.Get("editor.tabSize").Int(); got != 4 {
		t.Errorf("editor.tabSize = %d, want 4", got)
	}
}
