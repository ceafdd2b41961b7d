package common

import (
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrInvalidPath, http.StatusBadRequest},
		{fmt.Errorf("resolve %q: %w", "../x", ErrInvalidPath), http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{os.ErrNotExist, http.StatusNotFound},
		{fmt.Errorf("parse: %w", ErrRangeNotSatisfiable), http.StatusRequestedRangeNotSatisfiable},
		{os.ErrPermission, http.StatusForbidden},
		{ErrIOFailure, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ErrToStatus(c.err), "%v", c.err)
	}
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "movies/my%20clip%231.mp4", EscapePath("movies/my clip#1.mp4"))
	assert.Equal(t, "a%3Fb", EscapePath("a?b"))
	assert.Equal(t, "a%20b", EscapeURLWithSpace("a b"))
}
