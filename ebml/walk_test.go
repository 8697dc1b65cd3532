package ebml

import (
	"bytes"
	"errors"
	"testing"
)

type visit struct {
	id    uint64
	depth int
}

func segment(t testing.TB) []byte {
	t.Helper()
	return build(t, func(w *Writer) error {
		return w.WriteMaster(IDSegment, func(w *Writer) error {
			if err := w.WriteMaster(IDInfo, func(w *Writer) error {
				return w.WriteString(IDTitle, "Pilot")
			}); err != nil {
				return err
			}
			return w.WriteMaster(IDTags, func(w *Writer) error {
				return w.WriteMaster(IDTag, func(w *Writer) error {
					return w.WriteMaster(IDSimpleTag, func(w *Writer) error {
						if err := w.WriteString(IDTagName, "ARTIST"); err != nil {
							return err
						}
						return w.WriteString(IDTagString, "Someone")
					})
				})
			})
		})
	})
}

func TestWalk(t *testing.T) {
	r := newReader(t, segment(t))

	var got []visit
	err := r.Walk(-1, func(_ *Reader, e Element, depth int) error {
		got = append(got, visit{e.ID, depth})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []visit{
		{IDSegment, 0},
		{IDInfo, 1},
		{IDTitle, 2},
		{IDTags, 1},
		{IDTag, 2},
		{IDSimpleTag, 3},
		{IDTagName, 4},
		{IDTagString, 4},
	}
	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visit %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWalk_ReadsPayloadAndSkipsChildren(t *testing.T) {
	r := newReader(t, segment(t))

	var title string
	var visited int
	err := r.Walk(-1, func(r *Reader, e Element, _ int) error {
		visited++
		switch e.ID {
		case IDTitle:
			b, err := r.ReadPayload(e.Size)
			if err != nil {
				return err
			}
			title = DecodeUTF8(b)
		case IDTags:
			return SkipChildren
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "Pilot" {
		t.Errorf("expected title Pilot, got %q", title)
	}
	if visited != 4 {
		t.Errorf("expected 4 visits with Tags skipped, got %d", visited)
	}
}

func TestWalk_UnknownSizeMaster(t *testing.T) {
	var body bytes.Buffer
	w := NewWriter(&body)
	if err := w.WriteUint(IDTimestamp, 42); err != nil {
		t.Fatal(err)
	}
	// Cluster with unknown size: 4-byte ID then the 8-byte all-ones size.
	data := []byte{0x1F, 0x43, 0xB6, 0x75, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	data = append(data, body.Bytes()...)
	r := newReader(t, data)

	var got []visit
	err := r.Walk(-1, func(_ *Reader, e Element, depth int) error {
		got = append(got, visit{e.ID, depth})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != (visit{IDCluster, 0}) || got[1] != (visit{IDTimestamp, 1}) {
		t.Errorf("unexpected visits %v", got)
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	r := newReader(t, segment(t))
	stop := errors.New("stop")

	err := r.Walk(-1, func(_ *Reader, e Element, _ int) error {
		if e.ID == IDTitle {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected stop error, got %v", err)
	}
}
