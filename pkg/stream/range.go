package stream

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"mediaserver/pkg/common"
)

// ByteRange is an inclusive interval [Start, End] of a file.
type ByteRange struct {
	Start int64
	End   int64
}

// Length is the number of bytes covered by the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// Within reports whether r is a valid sub-interval of [0, size).
func (r ByteRange) Within(size int64) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End < size
}

// ContentRange formats the Content-Range header value for a file of the given size.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// UnsatisfiedContentRange is the Content-Range value sent along a 416 response.
func UnsatisfiedContentRange(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}

var rangePattern = regexp.MustCompile(`^bytes=(\d*)-(\d*)$`)

// ParseRange turns a Range header value into a concrete interval of a file of
// the given size. An empty header selects the whole file.
//
// Only the single range form is understood. Header text that does not match it,
// multi-range requests included, is treated as if no header was sent and the
// whole file is returned; clients in the wild send odd values and a full
// response is always acceptable to them.
func ParseRange(header string, size int64) (ByteRange, error) {
	if size <= 0 {
		return ByteRange{}, fmt.Errorf("empty file: %w", common.ErrRangeNotSatisfiable)
	}
	whole := ByteRange{Start: 0, End: size - 1}

	m := rangePattern.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil || (m[1] == "" && m[2] == "") {
		return whole, nil
	}

	if m[1] == "" {
		// suffix range: the last n bytes
		n := parseOffset(m[2])
		if n == 0 {
			return ByteRange{}, fmt.Errorf("suffix length 0: %w", common.ErrRangeNotSatisfiable)
		}
		if n >= size {
			return whole, nil
		}
		return ByteRange{Start: size - n, End: size - 1}, nil
	}

	start := parseOffset(m[1])
	if start >= size {
		return ByteRange{}, fmt.Errorf("start %d beyond size %d: %w", start, size, common.ErrRangeNotSatisfiable)
	}

	end := size - 1
	if m[2] != "" {
		if e := parseOffset(m[2]); e < end {
			end = e
		}
	}
	if start > end {
		return ByteRange{}, fmt.Errorf("start %d after end %d: %w", start, end, common.ErrRangeNotSatisfiable)
	}

	return ByteRange{Start: start, End: end}, nil
}

// parseOffset parses a run of digits, saturating at MaxInt64.
func parseOffset(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil && errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64
	}
	return v
}
