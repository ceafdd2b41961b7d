package settings

import (
	"path/filepath"
	"strings"
)

const (
	DefaultRoot      = "/mnt/nas/media"
	DefaultChunkSize = 1024 * 1024 // 1 MiB
)

var DefaultExtensions = []string{".mp4", ".mkv", ".mov", ".webm"}

// Server specific settings. A Server is built once at start and only read afterwards.
type Server struct {
	Root       string   `json:"root"`
	BaseURL    string   `json:"baseURL"`
	Port       string   `json:"port"`
	Address    string   `json:"address"`
	Log        string   `json:"log"`
	ChunkSize  int      `json:"chunkSize"`
	Extensions []string `json:"extensions"`
	EnableZstd bool     `json:"enableZstd"`
}

func NewDefaultServer() *Server {
	return &Server{
		Root:       DefaultRoot,
		BaseURL:    "",
		Port:       "8000",
		Address:    "0.0.0.0",
		Log:        "stdout",
		ChunkSize:  DefaultChunkSize,
		Extensions: append([]string(nil), DefaultExtensions...),
		EnableZstd: false,
	}
}

// Clean cleans any variables that might need cleaning.
func (s *Server) Clean() {
	s.BaseURL = strings.TrimSuffix(s.BaseURL, "/")
	if s.ChunkSize <= 0 {
		s.ChunkSize = DefaultChunkSize
	}
	s.Extensions = NormalizeExtensions(s.Extensions)
	if len(s.Extensions) == 0 {
		s.Extensions = append([]string(nil), DefaultExtensions...)
	}
}

// NormalizeExtensions lowercases extensions, adds the leading dot and drops blanks and duplicates.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	result := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		result = append(result, ext)
	}
	return result
}

// ListenAddr joins address and port.
func (s *Server) ListenAddr() string {
	return s.Address + ":" + s.Port
}

// AbsRoot returns the media root as an absolute path.
func (s *Server) AbsRoot() (string, error) {
	return filepath.Abs(s.Root)
}
