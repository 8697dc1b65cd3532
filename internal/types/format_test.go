package types

import (
	"testing"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatUnknown, "Unknown"},
		{FormatMP3, "MP3"},
		{FormatMatroska, "Matroska"},
		{Format(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", int(tt.format), got, tt.want)
		}
	}
}

func TestFormat_Extensions(t *testing.T) {
	if got := FormatUnknown.Extensions(); got != nil {
		t.Errorf("FormatUnknown.Extensions() = %v, want nil", got)
	}
	exts := FormatMatroska.Extensions()
	found := false
	for _, ext := range exts {
		if ext == ".webm" {
			found = true
		}
	}
	if !found {
		t.Errorf("FormatMatroska.Extensions() = %v, want .webm included", exts)
	}
}

func TestRegion_End(t *testing.T) {
	r := Region{Offset: 100, Length: 28}
	if got := r.End(); got != 128 {
		t.Errorf("End() = %d, want 128", got)
	}
}
