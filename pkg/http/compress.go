package http

import (
	"net/http"
	"strings"

	"github.com/klauspost/compress/zstd"
	"k8s.io/klog/v2"
)

// zstdWriter wraps http.ResponseWriter to provide Zstandard compression.
type zstdWriter struct {
	http.ResponseWriter
	encoder *zstd.Encoder
}

func (z *zstdWriter) Write(data []byte) (int, error) {
	return z.encoder.Write(data)
}

func (z *zstdWriter) WriteHeader(status int) {
	z.Header().Del("Content-Length")
	z.ResponseWriter.WriteHeader(status)
}

func (z *zstdWriter) Flush() {
	if err := z.encoder.Flush(); err != nil {
		klog.V(2).Infof("zstd flush: %v", err)
	}
	if f, ok := z.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// zstdMiddleware compresses listing pages for clients that accept zstd. It is
// only mounted on listing routes; media bytes are never recompressed.
func zstdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead || !acceptsZstd(r) {
			next.ServeHTTP(w, r)
			return
		}

		encoder, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		if err != nil {
			klog.Errorf("Error creating Zstd encoder: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		defer encoder.Close()

		w.Header().Set("Content-Encoding", "zstd")
		w.Header().Add("Vary", "Accept-Encoding")
		next.ServeHTTP(&zstdWriter{ResponseWriter: w, encoder: encoder}, r)
	})
}

func acceptsZstd(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(coding, "zstd") {
			return true
		}
	}
	return false
}
