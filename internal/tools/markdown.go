package tools

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
)

// ConvertMarkdown renders markdown text to HTML and saves the raw markdown
// under dir. Returns the HTML and the saved file path.
func ConvertMarkdown(text, fileName, dir string) (string, string, error) {
	if fileName == "" {
		fileName = "output.md"
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return "", "", fmt.Errorf("failed to render markdown: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", "", err
	}

	return buf.String(), path, nil
}
