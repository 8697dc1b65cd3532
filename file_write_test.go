package tagsplice

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReplaceFile(t *testing.T) {
	tests := []struct {
		name   string
		newTag string
	}{
		{"grow", "NEWTAG-LONGER"},
		{"shrink", "T"},
		{"same size", "TAGGG"},
		{"remove", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, []byte("TAG01audio-frames"))

			if err := ReplaceFile(context.Background(), path, 0, 5, []byte(tt.newTag), WithoutSync()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if want := tt.newTag + "audio-frames"; string(got) != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestReplaceFile_Backup(t *testing.T) {
	original := []byte("TAG01audio-frames")
	path := writeTemp(t, original)

	if err := ReplaceFile(context.Background(), path, 0, 5, []byte("X"), WithBackup(".bak")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("backup not created: %v", err)
	}
	if !bytes.Equal(backup, original) {
		t.Errorf("backup content %q, want %q", backup, original)
	}
}

func TestReplaceFile_PreserveModTime(t *testing.T) {
	path := writeTemp(t, []byte("TAG01audio-frames"))
	past := time.Date(2020, time.January, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	if err := ReplaceFile(context.Background(), path, 0, 5, []byte("LONGER-TAG"), WithPreserveModTime()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(past) {
		t.Errorf("mod time %v, want %v", info.ModTime(), past)
	}
}

func TestReplaceFile_InvalidRange(t *testing.T) {
	original := []byte("TAG01audio-frames")
	path := writeTemp(t, original)

	err := ReplaceFile(context.Background(), path, 10, 20, []byte("X"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	got, _ := os.ReadFile(path) //nolint:errcheck // compared below
	if !bytes.Equal(got, original) {
		t.Errorf("file modified on failure: %q", got)
	}
}

func TestReplaceFile_Missing(t *testing.T) {
	err := ReplaceFile(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"), 0, 0, nil)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
