package ebml

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/simonhull/tagsplice/internal/types"
)

func TestEncodeVint(t *testing.T) {
	tests := []struct {
		name     string
		value    uint64
		optimize bool
		want     []byte
	}{
		{"zero", 0, true, []byte{0x80}},
		{"largest one byte", 127, true, []byte{0xFF}},
		{"smallest two bytes", 128, true, []byte{0x40, 0x80}},
		{"two bytes", 0x3FFF, true, []byte{0x7F, 0xFF}},
		{"three bytes", 0x4000, true, []byte{0x20, 0x40, 0x00}},
		{"not optimized", 1, false, []byte{0x01, 0, 0, 0, 0, 0, 0, 0x01}},
		{"max value", MaxValue, true, []byte{0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeVint(tt.value, tt.optimize)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeVint(%d) = % X, want % X", tt.value, got, tt.want)
			}
		})
	}
}

func TestEncodeVint_TooLarge(t *testing.T) {
	_, err := EncodeVint(MaxValue+1, true)
	if !errors.Is(err, ErrValueTooLarge) {
		t.Fatalf("expected ErrValueTooLarge, got %v", err)
	}
}

// vintSamples returns values around every width boundary plus random ones,
// skipping the all-ones pattern of each width.
func vintSamples() []uint64 {
	var values []uint64
	for w := 1; w <= MaxWidth; w++ {
		limit := uint64(1)<<(7*w) - 1
		values = append(values, limit-1, limit+1, 1<<(7*(w-1)))
	}
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		values = append(values, rng.Uint64N(MaxValue+1))
	}

	out := values[:0]
	for _, v := range values {
		if v > MaxValue || isAllOnes(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func isAllOnes(v uint64) bool {
	for w := 1; w <= MaxWidth; w++ {
		if v == uint64(1)<<(7*w)-1 {
			return true
		}
	}
	return false
}

func TestVint_RoundTrip(t *testing.T) {
	for _, v := range vintSamples() {
		for _, optimize := range []bool{true, false} {
			b, err := EncodeVint(v, optimize)
			if err != nil {
				t.Fatalf("EncodeVint(%d): %v", v, err)
			}
			got, width, err := DecodeVint(b, false)
			if err != nil {
				t.Fatalf("DecodeVint(% X): %v", b, err)
			}
			if uint64(got) != v || width != len(b) {
				t.Fatalf("round trip of %d: got %d (width %d), encoded % X", v, got, width, b)
			}
		}
	}
}

func TestEncodeSize_RoundTrip(t *testing.T) {
	values := vintSamples()
	for w := 1; w <= MaxWidth; w++ {
		values = append(values, uint64(1)<<(7*w)-1, uint64(1)<<(7*w)-2)
	}

	for _, v := range values {
		if v >= MaxValue {
			continue
		}
		b, err := EncodeSize(int64(v))
		if err != nil {
			t.Fatalf("EncodeSize(%d): %v", v, err)
		}
		got, _, err := DecodeVint(b, false)
		if err != nil {
			t.Fatalf("DecodeVint(% X): %v", b, err)
		}
		if got != int64(v) {
			t.Fatalf("size %d decoded as %d from % X", v, got, b)
		}
	}
}

func TestEncodeSize_AvoidsUnknownPattern(t *testing.T) {
	b, err := EncodeSize(127)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(b, []byte{0x40, 0x7F}) {
		t.Errorf("EncodeSize(127) = % X, want 40 7F", b)
	}

	b, err = EncodeSize(UnknownSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _, _ := DecodeVint(b, false); got != UnknownSize {
		t.Errorf("EncodeSize(UnknownSize) decoded as %d", got)
	}

	if _, err := EncodeSize(MaxValue); !errors.Is(err, ErrValueTooLarge) {
		t.Errorf("expected ErrValueTooLarge for MaxValue, got %v", err)
	}
}

func TestDecodeVint_UnknownSizeEveryWidth(t *testing.T) {
	for w := 1; w <= MaxWidth; w++ {
		b := putVint(uint64(1)<<(7*w)-1, w)

		got, width, err := DecodeVint(b, false)
		if err != nil {
			t.Fatalf("width %d: %v", w, err)
		}
		if got != UnknownSize || width != w {
			t.Errorf("width %d: got %d (width %d), want UnknownSize", w, got, width)
		}

		raw, _, err := DecodeVint(b, true)
		if err != nil {
			t.Fatalf("width %d raw: %v", w, err)
		}
		if raw == UnknownSize {
			t.Errorf("width %d: raw decode returned the sentinel", w)
		}

		r := newReader(t, b)
		if got, err := r.ReadVint(false); err != nil || got != UnknownSize {
			t.Errorf("width %d: ReadVint = %d, %v", w, got, err)
		}
	}
}

func TestDecodeVint_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"no marker", []byte{0x00, 0xFF}},
		{"truncated", []byte{0x20, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeVint(tt.data, false); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadVint_NoMarker(t *testing.T) {
	r := newReader(t, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x81})

	_, err := r.ReadVint(false)
	var corrupted *types.CorruptedFileError
	if !errors.As(err, &corrupted) {
		t.Fatalf("expected CorruptedFileError, got %v", err)
	}
	if corrupted.Offset != 0 {
		t.Errorf("expected offset 0, got %d", corrupted.Offset)
	}
}

func TestReadVint_Truncated(t *testing.T) {
	r := newReader(t, []byte{0x10, 0x01})

	_, err := r.ReadVint(false)
	var oob *types.OutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("expected OutOfBoundsError, got %v", err)
	}
}

func TestReadVint_Raw(t *testing.T) {
	r := newReader(t, []byte{0x1A, 0x45, 0xDF, 0xA3})

	id, err := r.ReadID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != IDEBML {
		t.Errorf("expected 0x%X, got 0x%X", IDEBML, id)
	}
}

func BenchmarkDecodeVint(b *testing.B) {
	data := []byte{0x10, 0x23, 0x45, 0x67}
	for b.Loop() {
		_, _, _ = DecodeVint(data, false)
	}
}
