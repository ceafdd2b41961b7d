package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExtensions(t *testing.T) {
	got := NormalizeExtensions([]string{"MP4", " .mkv ", "", ".", ".Mp4", "webm"})
	assert.Equal(t, []string{".mp4", ".mkv", ".webm"}, got)
}

func TestClean(t *testing.T) {
	s := &Server{BaseURL: "/media/", ChunkSize: -1}
	s.Clean()

	assert.Equal(t, "/media", s.BaseURL)
	assert.Equal(t, DefaultChunkSize, s.ChunkSize)
	assert.Equal(t, DefaultExtensions, s.Extensions)
}

func TestNewDefaultServer(t *testing.T) {
	s := NewDefaultServer()
	assert.Equal(t, DefaultRoot, s.Root)
	assert.Equal(t, "0.0.0.0:8000", s.ListenAddr())

	s.Extensions[0] = ".avi"
	assert.Equal(t, ".mp4", DefaultExtensions[0])
}
