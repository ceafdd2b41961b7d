package stream

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"

	"github.com/spf13/afero"
	"k8s.io/klog/v2"

	"mediaserver/pkg/common"
	"mediaserver/pkg/files"
)

const DefaultChunkSize = 1024 * 1024 // 1 MiB

// Streamer reads byte ranges of media files in bounded chunks. It holds no
// per-request state; every Open gets its own file handle.
type Streamer struct {
	fs        afero.Fs
	chunkSize int
}

func NewStreamer(fs afero.Fs, chunkSize int) *Streamer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Streamer{fs: fs, chunkSize: chunkSize}
}

func (s *Streamer) ChunkSize() int { return s.chunkSize }

// Stat probes a regular file. Missing paths and directories are ErrNotFound.
func (s *Streamer) Stat(p files.ResolvedPath) (os.FileInfo, error) {
	if p.IsZero() {
		return nil, fmt.Errorf("stat: %w", common.ErrInvalidPath)
	}
	info, err := s.fs.Stat(p.String())
	if err != nil {
		if common.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", p.Rel(), common.ErrNotFound)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("stat %s: %w", p.Rel(), common.ErrIsDirectory)
	}
	return info, nil
}

// Open positions a new handle at r.Start. The caller owns the returned Stream
// and must Close it; exhausting it or ranging over Chunks closes it too.
func (s *Streamer) Open(p files.ResolvedPath, r ByteRange) (*Stream, error) {
	if p.IsZero() {
		return nil, fmt.Errorf("open: %w", common.ErrInvalidPath)
	}
	if r.Start < 0 || r.Start > r.End {
		return nil, fmt.Errorf("open %s with range %d-%d: %w", p.Rel(), r.Start, r.End, common.ErrRangeNotSatisfiable)
	}

	f, err := s.fs.Open(p.String())
	if err != nil {
		if common.IsNotExist(err) {
			return nil, fmt.Errorf("open %s: %w", p.Rel(), common.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", p.Rel(), err)
	}
	if _, err := f.Seek(r.Start, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek %s to %d: %w: %w", p.Rel(), r.Start, common.ErrIOFailure, err)
	}

	bufSize := int64(s.chunkSize)
	if r.Length() < bufSize {
		bufSize = r.Length()
	}

	return &Stream{
		path:      p,
		file:      f,
		rng:       r,
		remaining: r.Length(),
		buf:       make([]byte, bufSize),
	}, nil
}

// Stream is a single pass, forward only sequence of chunks of one byte range.
// It is not safe for concurrent use.
type Stream struct {
	path      files.ResolvedPath
	file      afero.File
	rng       ByteRange
	remaining int64
	delivered int64
	short     bool
	closed    bool
	buf       []byte
}

func (s *Stream) Range() ByteRange { return s.rng }

// Delivered is the number of bytes handed out so far.
func (s *Stream) Delivered() int64 { return s.delivered }

// Short reports whether the file ended before the whole range was read.
func (s *Stream) Short() bool { return s.short }

// Next returns the next chunk, at most the chunk size long. The slice is only
// valid until the following call. At the end of the range, or when the file
// turns out shorter than promised, Next closes the handle and returns io.EOF.
// Read failures close the handle and wrap common.ErrIOFailure.
func (s *Stream) Next() ([]byte, error) {
	if s.closed {
		return nil, io.EOF
	}
	if s.remaining <= 0 {
		s.Close()
		return nil, io.EOF
	}

	want := int64(len(s.buf))
	if s.remaining < want {
		want = s.remaining
	}

	n, err := s.file.Read(s.buf[:want])
	if n > 0 {
		s.remaining -= int64(n)
		s.delivered += int64(n)
		return s.buf[:n], nil
	}
	if err != nil && err != io.EOF {
		s.Close()
		return nil, fmt.Errorf("read %s at %d: %w: %w", s.path.Rel(), s.rng.Start+s.delivered, common.ErrIOFailure, err)
	}

	s.short = true
	klog.Warningf("short read on %s: promised %d bytes of range %d-%d, delivered %d",
		s.path.String(), s.rng.Length(), s.rng.Start, s.rng.End, s.delivered)
	s.Close()
	return nil, io.EOF
}

// Chunks adapts the stream to a range-over-func sequence. The handle is
// released when the sequence ends, fails, or the loop body breaks out early.
func (s *Stream) Chunks() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		defer s.Close()
		for {
			chunk, err := s.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// CopyTo writes the remaining chunks to w, flushing after each one when w
// supports it, and stops as soon as ctx is done. The stream is closed on return.
func (s *Stream) CopyTo(ctx context.Context, w io.Writer) (int64, error) {
	flusher, _ := w.(http.Flusher)

	var written int64
	for chunk, err := range s.Chunks() {
		if err != nil {
			return written, err
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	return written, nil
}

// Close releases the file handle. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}
