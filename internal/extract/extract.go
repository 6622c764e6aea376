// Package extract wraps the external text-extraction collaborator. The
// pipeline treats it as a black box that turns an opaque document into
// plain text; everything downstream works on that text alone.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// TextExtractor produces a document's plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// CommandExtractor shells out to a pdftotext-compatible binary for PDF
// documents and reads .txt files directly, which keeps pre-extracted
// fixtures and tests off the external tool.
type CommandExtractor struct {
	// Binary is the text extraction command; defaults to "pdftotext".
	Binary string
}

// NewCommandExtractor creates an extractor backed by the given binary, or
// pdftotext when empty.
func NewCommandExtractor(binary string) *CommandExtractor {
	if binary == "" {
		binary = "pdftotext"
	}
	return &CommandExtractor{Binary: binary}
}

// ExtractText returns the document's plain text.
func (e *CommandExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Binary, path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w (%s)", e.Binary, filepath.Base(path), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
