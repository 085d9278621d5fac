// Package ingest turns uploaded files into indexed chunks: extraction,
// translation, department tagging, chunking and embedding.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/rafiq/internal/pkg/rafiq/textutil"
)

// ErrToolNotFound is returned when a required external binary is missing.
var ErrToolNotFound = errors.New("required extraction tool not found in PATH")

// ErrUnsupportedFormat is returned for file types the extractor cannot read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ocrLanguages is the tesseract language pack for bilingual documents.
const ocrLanguages = "eng+ara"

// minPDFTextChars is the yield below which a PDF is treated as scanned and
// routed through OCR.
const minPDFTextChars = 100

// Runner executes external extraction tools. The production implementation
// shells out; tests substitute fakes.
type Runner interface {
	// Run executes the named tool and returns its stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// LookPath reports whether the named tool is available.
	LookPath(name string) (string, error)
}

// ExecRunner runs tools with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s failed: %s", name, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return out, nil
}

// LookPath implements Runner.
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Extractor pulls plain text out of uploaded documents. PDFs go through
// pdftotext with an OCR fallback for scanned pages; images go straight to
// tesseract; plain text files are read as-is.
type Extractor struct {
	runner Runner
	// tempDir receives intermediate page images during OCR.
	tempDir string
}

// NewExtractor creates an Extractor using the given runner. An empty
// tempDir falls back to the system temp directory.
func NewExtractor(runner Runner, tempDir string) *Extractor {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Extractor{runner: runner, tempDir: tempDir}
}

// Extract returns the cleaned text content of the file at path.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.extractPDF(ctx, path)
	case ".png", ".jpg", ".jpeg", ".tiff", ".bmp":
		return e.extractImage(ctx, path)
	case ".txt", ".md":
		return e.extractPlain(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// extractPDF tries structured text extraction first and falls back to OCR
// when the yield looks like a scanned document.
func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	if _, err := e.runner.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("%w: pdftotext", ErrToolNotFound)
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		logger.Warnw("pdftotext extraction failed, trying OCR",
			"file", filepath.Base(path),
			"error", err.Error(),
		)
		return e.ocrPDF(ctx, path)
	}

	text := textutil.CleanText(string(out))
	if len(text) < minPDFTextChars {
		logger.Infow("low text yield, treating PDF as scanned",
			"file", filepath.Base(path),
			"chars", len(text),
		)
		if ocrText, ocrErr := e.ocrPDF(ctx, path); ocrErr == nil && len(ocrText) > len(text) {
			return ocrText, nil
		}
	}
	return text, nil
}

// ocrPDF renders pages to images with pdftoppm and runs tesseract on each.
func (e *Extractor) ocrPDF(ctx context.Context, path string) (string, error) {
	for _, tool := range []string{"pdftoppm", "tesseract"} {
		if _, err := e.runner.LookPath(tool); err != nil {
			return "", fmt.Errorf("%w: %s", ErrToolNotFound, tool)
		}
	}

	pageDir, err := os.MkdirTemp(e.tempDir, "ocr-pages-")
	if err != nil {
		return "", fmt.Errorf("failed to create OCR work dir: %w", err)
	}
	defer os.RemoveAll(pageDir)

	prefix := filepath.Join(pageDir, "page")
	if _, err := e.runner.Run(ctx, "pdftoppm", "-png", "-r", "300", path, prefix); err != nil {
		return "", fmt.Errorf("failed to render PDF pages: %w", err)
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return "", err
	}
	sort.Strings(pages)
	if len(pages) == 0 {
		return "", fmt.Errorf("no pages rendered from %s", filepath.Base(path))
	}

	var b strings.Builder
	for _, page := range pages {
		out, err := e.runner.Run(ctx, "tesseract", page, "stdout", "-l", ocrLanguages)
		if err != nil {
			logger.Warnw("OCR failed for page", "page", filepath.Base(page), "error", err.Error())
			continue
		}
		b.WriteString(string(out))
		b.WriteString("\n")
	}

	// A scanned document OCR cannot read is not an extraction failure: it
	// comes back as empty text and the document is recorded without chunks.
	text := textutil.CleanText(b.String())
	if text == "" {
		logger.Warnw("OCR produced no text", "file", filepath.Base(path))
	}
	return text, nil
}

// extractImage runs tesseract directly on an image file.
func (e *Extractor) extractImage(ctx context.Context, path string) (string, error) {
	if _, err := e.runner.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("%w: tesseract", ErrToolNotFound)
	}

	out, err := e.runner.Run(ctx, "tesseract", path, "stdout", "-l", ocrLanguages)
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	text := textutil.CleanText(string(out))
	if text == "" {
		logger.Warnw("OCR produced no text", "file", filepath.Base(path))
	}
	return text, nil
}

// extractPlain reads a text file directly.
func (e *Extractor) extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return textutil.CleanText(string(data)), nil
}
