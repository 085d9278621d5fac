package ingest

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerFiresOncePerBurst(t *testing.T) {
	var mu sync.Mutex
	fired := make(map[string]int)

	d := newDebouncer(20*time.Millisecond, func(path string) {
		mu.Lock()
		fired[path]++
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		d.touch("report.pdf")
	}
	d.touch("notice.txt")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired["report.pdf"] == 1 && fired["notice.txt"] == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDebouncerRemovesFiredEntries(t *testing.T) {
	d := newDebouncer(10*time.Millisecond, func(string) {})

	d.touch("a.pdf")
	d.touch("b.pdf")
	assert.Equal(t, 2, d.size())

	// A fired path must not stay tracked for the process lifetime.
	assert.Eventually(t, func() bool {
		return d.size() == 0
	}, time.Second, 5*time.Millisecond)

	// The same path debounces again from scratch afterwards.
	d.touch("a.pdf")
	assert.Equal(t, 1, d.size())
	d.stop()
	assert.Equal(t, 0, d.size())
}

func TestSupportedFile(t *testing.T) {
	assert.True(t, supportedFile("circular.PDF"))
	assert.True(t, supportedFile("scan.jpeg"))
	assert.True(t, supportedFile("notes.md"))
	assert.False(t, supportedFile("archive.zip"))
	assert.False(t, supportedFile("noext"))
}
