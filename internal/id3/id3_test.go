package id3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/tagsplice/internal/binary"
	"github.com/simonhull/tagsplice/internal/splice"
	"github.com/simonhull/tagsplice/internal/types"
)

var audio = bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x64}, 64)

func mp3(t *testing.T, title string) []byte {
	t.Helper()
	tg := id3v2.NewEmptyTag()
	tg.SetVersion(4)
	tg.SetTitle(title)
	tg.SetArtist("Original Artist")

	var buf bytes.Buffer
	_, err := tg.WriteTo(&buf)
	require.NoError(t, err)
	buf.Write(audio)
	return buf.Bytes()
}

func TestTagSize(t *testing.T) {
	data := mp3(t, "Intro")

	size, err := TagSize(bytes.NewReader(data), "song.mp3")
	require.NoError(t, err)
	require.EqualValues(t, len(data)-len(audio), size)
}

func TestTagSize_NoTag(t *testing.T) {
	size, err := TagSize(bytes.NewReader(audio), "song.mp3")
	require.NoError(t, err)
	require.Zero(t, size)

	size, err = TagSize(bytes.NewReader([]byte("ID")), "tiny.mp3")
	require.NoError(t, err)
	require.Zero(t, size)
}

func TestTagSize_Footer(t *testing.T) {
	header := []byte{'I', 'D', '3', 4, 0, flagFooter, 0, 0, 0x01, 0x00}
	size, err := TagSize(bytes.NewReader(append(header, make([]byte, 200)...)), "song.mp3")
	require.NoError(t, err)
	require.EqualValues(t, headerSize+128+footerSize, size)
}

func TestTagSize_BadSyncsafe(t *testing.T) {
	header := []byte{'I', 'D', '3', 3, 0, 0, 0, 0x80, 0, 0}
	_, err := TagSize(bytes.NewReader(header), "song.mp3")

	var corrupted *types.CorruptedFileError
	require.True(t, errors.As(err, &corrupted), "expected CorruptedFileError, got %v", err)
}

func TestUpdate_SplicesIntoStream(t *testing.T) {
	s := binary.NewMemoryStream(mp3(t, "Intro"))

	newTag, oldSize, err := Update(s, "song.mp3", map[string]string{
		"Title": "A considerably longer title than before",
		"Album": "Debut",
	})
	require.NoError(t, err)

	m := splice.NewMover(s, splice.Config{BufferSize: 16})
	require.NoError(t, m.Lengthen(context.Background(), oldSize, int64(len(newTag))-oldSize, false))
	require.NoError(t, binary.WriteAt(s, newTag, 0))

	md, err := tag.ReadFrom(bytes.NewReader(s.Bytes()))
	require.NoError(t, err)
	require.Equal(t, "A considerably longer title than before", md.Title())
	require.Equal(t, "Original Artist", md.Artist())
	require.Equal(t, "Debut", md.Album())
	require.True(t, bytes.HasSuffix(s.Bytes(), audio))
}

func TestUpdate_NoExistingTag(t *testing.T) {
	newTag, oldSize, err := Update(bytes.NewReader(audio), "song.mp3", map[string]string{"Artist": "Someone"})
	require.NoError(t, err)
	require.Zero(t, oldSize)

	m, err := tag.ReadFrom(bytes.NewReader(append(newTag, audio...)))
	require.NoError(t, err)
	require.Equal(t, "Someone", m.Artist())
}

func TestUpdate_RemoveAndUnknown(t *testing.T) {
	data := mp3(t, "Intro")

	newTag, _, err := Update(bytes.NewReader(data), "song.mp3", map[string]string{"Artist": ""})
	require.NoError(t, err)
	m, err := tag.ReadFrom(bytes.NewReader(append(newTag, audio...)))
	require.NoError(t, err)
	require.Empty(t, m.Artist())
	require.Equal(t, "Intro", m.Title())

	_, _, err = Update(bytes.NewReader(data), "song.mp3", map[string]string{"Nonsense": "x"})
	require.Error(t, err)
}

func TestTagSize_ThroughBufferedReader(t *testing.T) {
	data := mp3(t, "Intro")

	// Parked mid-stream; TagSize still reads the header at offset 0.
	br, err := binary.NewBufferedReader(bytes.NewReader(data), 64)
	require.NoError(t, err)
	_, err = br.Seek(100, io.SeekStart)
	require.NoError(t, err)

	size, err := TagSize(br, "song.mp3")
	require.NoError(t, err)
	require.EqualValues(t, len(data)-len(audio), size)
}

func TestTagSize_TruncatedHeader(t *testing.T) {
	size, err := TagSize(bytes.NewReader([]byte{'I', 'D', '3', 4, 0, 0, 0}), "cut.mp3")
	require.NoError(t, err)
	require.Zero(t, size)
}
