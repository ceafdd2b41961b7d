package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaserver/pkg/common"
)

func TestParseRange(t *testing.T) {
	const n = 10_000

	cases := []struct {
		name   string
		header string
		want   ByteRange
	}{
		{"absent", "", ByteRange{0, n - 1}},
		{"open ended", "bytes=100-", ByteRange{100, n - 1}},
		{"closed", "bytes=0-499", ByteRange{0, 499}},
		{"single byte", "bytes=7-7", ByteRange{7, 7}},
		{"last byte", "bytes=9999-", ByteRange{9999, 9999}},
		{"end clipped", "bytes=9000-20000", ByteRange{9000, n - 1}},
		{"end overflow clipped", "bytes=1-99999999999999999999999", ByteRange{1, n - 1}},
		{"suffix", "bytes=-500", ByteRange{n - 500, n - 1}},
		{"suffix larger than file", "bytes=-20000", ByteRange{0, n - 1}},
		{"surrounding space", "  bytes=10-19 ", ByteRange{10, 19}},
		{"malformed unit", "items=0-10", ByteRange{0, n - 1}},
		{"malformed number", "bytes=abc-def", ByteRange{0, n - 1}},
		{"malformed empty", "bytes=-", ByteRange{0, n - 1}},
		{"multi range", "bytes=0-1,5-9", ByteRange{0, n - 1}},
		{"garbage", "bytes", ByteRange{0, n - 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ParseRange(c.header, n)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
			assert.True(t, got.Within(n))
		})
	}
}

func TestParseRange_SmallFile(t *testing.T) {
	got, err := ParseRange("bytes=0-499", 100)
	require.NoError(t, err)
	assert.Equal(t, ByteRange{0, 99}, got)
}

func TestParseRange_NotSatisfiable(t *testing.T) {
	cases := []struct {
		header string
		size   int64
	}{
		{"bytes=5000000-6000000", 1000},
		{"bytes=1000-", 1000},
		{"bytes=1000-1000", 1000},
		{"bytes=500-100", 1000},
		{"bytes=-0", 1000},
		{"bytes=99999999999999999999999-", 1000},
		{"", 0},
		{"bytes=0-", 0},
	}
	for _, c := range cases {
		_, err := ParseRange(c.header, c.size)
		assert.ErrorIs(t, err, common.ErrRangeNotSatisfiable, "%q on %d bytes", c.header, c.size)
	}
}

func TestByteRange_Headers(t *testing.T) {
	r := ByteRange{Start: 1000, End: 1999}
	assert.EqualValues(t, 1000, r.Length())
	assert.Equal(t, "bytes 1000-1999/10000000", r.ContentRange(10_000_000))
	assert.Equal(t, "bytes */42", UnsatisfiedContentRange(42))

	assert.False(t, ByteRange{Start: 5, End: 4}.Within(10))
	assert.False(t, ByteRange{Start: 0, End: 10}.Within(10))
	assert.False(t, ByteRange{Start: -1, End: 3}.Within(10))
}
