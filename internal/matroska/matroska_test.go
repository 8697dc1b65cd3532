package matroska

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simonhull/tagsplice/ebml"
	"github.com/simonhull/tagsplice/internal/types"
)

func writeHeader(w *ebml.Writer) error {
	return w.WriteMaster(ebml.IDEBML, func(w *ebml.Writer) error {
		return w.WriteString(ebml.IDDocType, "matroska")
	})
}

func writeInfo(w *ebml.Writer) error {
	return w.WriteMaster(ebml.IDInfo, func(w *ebml.Writer) error {
		return w.WriteUint(ebml.IDTimestampScale, 1000000)
	})
}

func writeTags(w *ebml.Writer) error {
	return w.WriteMaster(ebml.IDTags, func(w *ebml.Writer) error {
		return w.WriteMaster(ebml.IDTag, func(w *ebml.Writer) error {
			return w.WriteMaster(ebml.IDSimpleTag, func(w *ebml.Writer) error {
				if err := w.WriteString(ebml.IDTagName, "TITLE"); err != nil {
					return err
				}
				return w.WriteString(ebml.IDTagString, "Intro")
			})
		})
	})
}

func writeCluster(w *ebml.Writer) error {
	return w.WriteMaster(ebml.IDCluster, func(w *ebml.Writer) error {
		return w.WriteUint(ebml.IDTimestamp, 0)
	})
}

// file builds a Matroska file whose Segment holds the given children.
func file(t *testing.T, children ...func(*ebml.Writer) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := ebml.NewWriter(&buf)
	require.NoError(t, writeHeader(w))
	require.NoError(t, w.WriteMaster(ebml.IDSegment, func(w *ebml.Writer) error {
		for _, fn := range children {
			if err := fn(w); err != nil {
				return err
			}
		}
		return nil
	}))
	return buf.Bytes()
}

func encoded(t *testing.T, fn func(*ebml.Writer) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fn(ebml.NewWriter(&buf)))
	return buf.Bytes()
}

func TestLocate(t *testing.T) {
	tags := encoded(t, writeTags)

	tests := []struct {
		name     string
		children []func(*ebml.Writer) error
	}{
		{"tags before clusters", []func(*ebml.Writer) error{writeInfo, writeTags, writeCluster}},
		{"tags at the end", []func(*ebml.Writer) error{writeInfo, writeCluster, writeTags}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := file(t, tt.children...)
			offset := int64(bytes.Index(data, tags))
			require.Greater(t, offset, int64(0))

			region, err := (&locator{}).Locate(bytes.NewReader(data), int64(len(data)), "test.mkv")
			require.NoError(t, err)
			require.Equal(t, types.Region{Offset: offset, Length: int64(len(tags))}, region)
		})
	}
}

func TestLocate_NoTags(t *testing.T) {
	data := file(t, writeInfo, writeCluster)

	region, err := (&locator{}).Locate(bytes.NewReader(data), int64(len(data)), "test.mkv")
	require.NoError(t, err)
	require.Equal(t, types.Region{Offset: int64(len(data))}, region)
}

func TestLocate_NotMatroska(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeInfo(ebml.NewWriter(&buf)))

	_, err := (&locator{}).Locate(bytes.NewReader(buf.Bytes()), int64(buf.Len()), "test.mkv")
	var cfe *types.CorruptedFileError
	require.True(t, errors.As(err, &cfe), "got %v", err)
	require.Equal(t, "missing EBML header", cfe.Reason)
}

func TestLocate_NoSegment(t *testing.T) {
	data := encoded(t, writeHeader)

	_, err := (&locator{}).Locate(bytes.NewReader(data), int64(len(data)), "test.mkv")
	var cfe *types.CorruptedFileError
	require.True(t, errors.As(err, &cfe), "got %v", err)
	require.Equal(t, "missing Segment element", cfe.Reason)
}
