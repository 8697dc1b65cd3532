package splice

import (
	"errors"
	"io"
	"testing"

	"github.com/simonhull/tagsplice/internal/binary"
)

var errInjected = errors.New("injected failure")

// faultyStream fails selected writes or truncations.
type faultyStream struct {
	*binary.MemoryStream

	failWrite    int   // 1-based index of the write to fail, 0 for none
	sticky       bool  // keep failing every write after the first failure
	failTruncate int64 // size whose Truncate fails, -1 for none

	writes int
	failed bool
}

func newFaultyStream(data []byte) *faultyStream {
	return &faultyStream{
		MemoryStream: binary.NewMemoryStream(data),
		failTruncate: -1,
	}
}

func (f *faultyStream) WriteAt(p []byte, off int64) (int, error) {
	f.writes++
	if f.writes == f.failWrite || (f.failed && f.sticky) {
		f.failed = true
		return 0, errInjected
	}
	return f.MemoryStream.WriteAt(p, off)
}

func (f *faultyStream) Truncate(size int64) error {
	if size == f.failTruncate {
		return errInjected
	}
	return f.MemoryStream.Truncate(size)
}

func canary(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func position(t *testing.T, s binary.Stream) int64 {
	t.Helper()
	pos, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		t.Fatalf("query position: %v", err)
	}
	return pos
}
