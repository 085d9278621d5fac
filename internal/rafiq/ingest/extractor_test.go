package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner scripts tool invocations for extractor tests.
type fakeRunner struct {
	missing map[string]bool
	outputs map[string][]byte
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, name)
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	return f.outputs[name], nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + name, nil
}

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "circular.txt")
	require.NoError(t, os.WriteFile(path, []byte("Reserve   requirements\n\n\n\nrevised."), 0o644))

	e := NewExtractor(&fakeRunner{}, dir)
	text, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Reserve requirements\n\nrevised.", text)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := NewExtractor(&fakeRunner{}, t.TempDir())
	_, err := e.Extract(context.Background(), "report.docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractPDFUsesPdftotext(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string][]byte{
			"pdftotext": []byte("Licensing requirements for commercial banks operating in Oman. " +
				"Applications are reviewed by the supervision department within ninety days."),
		},
	}
	e := NewExtractor(runner, t.TempDir())

	text, err := e.Extract(context.Background(), "banking.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "Licensing requirements")
	assert.Equal(t, []string{"pdftotext"}, runner.calls)
}

func TestExtractPDFMissingTool(t *testing.T) {
	runner := &fakeRunner{missing: map[string]bool{"pdftotext": true}}
	e := NewExtractor(runner, t.TempDir())

	_, err := e.Extract(context.Background(), "banking.pdf")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestExtractPDFLowYieldFallsBackToOCR(t *testing.T) {
	// pdftotext yields almost nothing, and the OCR chain is unavailable, so
	// the extractor keeps the structured yield rather than failing.
	runner := &fakeRunner{
		outputs: map[string][]byte{"pdftotext": []byte("p. 1")},
		missing: map[string]bool{"pdftoppm": true},
	}
	e := NewExtractor(runner, t.TempDir())

	text, err := e.Extract(context.Background(), "scanned.pdf")
	require.NoError(t, err)
	assert.Equal(t, "p. 1", text)
}

func TestExtractImageMissingTesseract(t *testing.T) {
	runner := &fakeRunner{missing: map[string]bool{"tesseract": true}}
	e := NewExtractor(runner, t.TempDir())

	_, err := e.Extract(context.Background(), "stamp.png")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestExtractImage(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string][]byte{"tesseract": []byte("  البنك المركزي العماني  ")},
	}
	e := NewExtractor(runner, t.TempDir())

	text, err := e.Extract(context.Background(), "sign.jpg")
	require.NoError(t, err)
	assert.Equal(t, "البنك المركزي العماني", text)
}

func TestExtractImageEmptyOCR(t *testing.T) {
	// An unreadable scan is not an extraction failure: the caller gets empty
	// text and records the document without chunks.
	runner := &fakeRunner{outputs: map[string][]byte{"tesseract": []byte("   ")}}
	e := NewExtractor(runner, t.TempDir())

	text, err := e.Extract(context.Background(), "blank.png")
	require.NoError(t, err)
	assert.Empty(t, text)
}
