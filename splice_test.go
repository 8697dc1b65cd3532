package tagsplice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// rwsOnly hides every method but io.ReadWriteSeeker.
type rwsOnly struct {
	io.ReadWriteSeeker
}

// failOnWrite fails any WriteAt whose payload equals marker.
type failOnWrite struct {
	*MemoryStream
	marker []byte
}

var errWriteFailed = errors.New("write failed")

func (f *failOnWrite) WriteAt(p []byte, off int64) (int, error) {
	if bytes.Equal(p, f.marker) {
		return 0, errWriteFailed
	}
	return f.MemoryStream.WriteAt(p, off)
}

func tempFile(t *testing.T, data []byte) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stream.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func contents(t *testing.T, f *os.File) []byte {
	t.Helper()
	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestLengthenShorten(t *testing.T) {
	s := NewMemoryStream([]byte("0123456789"))

	if err := Lengthen(s, 5, 3, true); err != nil {
		t.Fatalf("Lengthen: %v", err)
	}
	if got := string(s.Bytes()); got != "01234\x00\x00\x0056789" {
		t.Fatalf("after Lengthen got %q", got)
	}

	if err := Shorten(s, 8, 3); err != nil {
		t.Fatalf("Shorten: %v", err)
	}
	if got := string(s.Bytes()); got != "0123456789" {
		t.Fatalf("after Shorten got %q", got)
	}
}

func TestLengthen_UnsupportedStream(t *testing.T) {
	s := NewMemoryStream([]byte("0123456789"))

	err := Lengthen(rwsOnly{s}, 5, 3, true)

	var unsupported *UnsupportedStreamError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedStreamError, got %v", err)
	}
	if got := string(s.Bytes()); got != "0123456789" {
		t.Errorf("stream modified: %q", got)
	}
}

func TestInverse_File(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		n := rng.Intn(5000)
		original := make([]byte, n)
		rng.Read(original)
		k := int64(rng.Intn(n + 1))
		d := int64(rng.Intn(3000))

		f := tempFile(t, original)
		if err := Lengthen(f, k, d, false, WithBufferSize(256)); err != nil {
			t.Fatalf("Lengthen(%d, %d): %v", k, d, err)
		}
		if err := Shorten(f, k+d, d, WithBufferSize(256)); err != nil {
			t.Fatalf("Shorten(%d, %d): %v", k+d, d, err)
		}
		if !bytes.Equal(contents(t, f), original) {
			t.Fatalf("n=%d k=%d d=%d: file not restored", n, k, d)
		}
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"grow", "[a much longer tag]"},
		{"shrink", "[t]"},
		{"same", "[tag]"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStream([]byte("ID3[tag]frames"))

			if err := Replace(context.Background(), s, 3, 5, []byte(tt.data), WithBufferSize(2)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want := "ID3" + tt.data + "frames"; string(s.Bytes()) != want {
				t.Errorf("got %q, want %q", s.Bytes(), want)
			}
			pos, _ := s.Seek(0, io.SeekCurrent) //nolint:errcheck // MemoryStream
			if pos != int64(3+len(tt.data)) {
				t.Errorf("expected position %d, got %d", 3+len(tt.data), pos)
			}
		})
	}
}

func TestReplace_WriteFailureRestores(t *testing.T) {
	original := []byte("ID3[tag]frames-and-more-frames")
	s := &failOnWrite{MemoryStream: NewMemoryStream(original), marker: []byte("<<new tag>>")}

	err := Replace(context.Background(), s, 3, 5, s.marker, WithBufferSize(4))
	if !errors.Is(err, errWriteFailed) {
		t.Fatalf("expected write failure, got %v", err)
	}
	var rbErr *RollbackError
	if errors.As(err, &rbErr) {
		t.Fatalf("rollback should have succeeded: %v", err)
	}
	if !bytes.Equal(s.Bytes(), original) {
		t.Errorf("stream not restored: %q", s.Bytes())
	}
}

func TestReplace_InvalidRange(t *testing.T) {
	s := NewMemoryStream([]byte("short"))

	err := Replace(context.Background(), s, 3, 10, []byte("x"))
	var rangeErr *InvalidRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected InvalidRangeError, got %v", err)
	}
}

func TestApply(t *testing.T) {
	s := NewMemoryStream([]byte("keep-REMOVE-keep"))

	if err := Apply(context.Background(), s, Request{EditOffset: 12, Delta: -7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(s.Bytes()); got != "keep-keep" {
		t.Errorf("got %q", got)
	}

	if err := Apply(context.Background(), s, Request{EditOffset: 5, Delta: 2, FillZeroes: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(s.Bytes()); got != "keep-\x00\x00keep" {
		t.Errorf("got %q", got)
	}
}

func TestCopyWithin_Overlap(t *testing.T) {
	s := NewMemoryStream([]byte("abcdefghij"))

	if err := CopyWithin(context.Background(), s, 0, 3, 6, WithBufferSize(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(s.Bytes()); got != "abcabcdefj" {
		t.Errorf("got %q", got)
	}
}

func TestWithProgress(t *testing.T) {
	var updates []float64
	s := NewMemoryStream(make([]byte, 100000))

	err := Lengthen(s, 10, 1000, true,
		WithBufferSize(1000),
		WithProgress(func(p float64) { updates = append(updates, p) }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updates) == 0 || len(updates) > 11 {
		t.Fatalf("expected 1 to 11 updates, got %d", len(updates))
	}
	if updates[len(updates)-1] != 1 {
		t.Errorf("last update %v, want 1", updates[len(updates)-1])
	}
}

func TestWithLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	s := NewMemoryStream([]byte("0123456789"))
	if err := Shorten(s, 5, 2, WithLogger(logger)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected log entries")
	}
	if entry.Message != "Shortened stream." || entry.Data["op"] != "shorten" {
		t.Errorf("unexpected entry %q %v", entry.Message, entry.Data)
	}
}
