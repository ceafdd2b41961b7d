package common

import (
	"errors"
	"net/http"
	"os"
	"syscall"
)

var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrNotFound             = errors.New("the resource does not exist")
	ErrRangeNotSatisfiable  = errors.New("range not satisfiable")
	ErrIOFailure            = errors.New("io failure")
	ErrIsDirectory          = errors.New("file is directory")
	ErrInvalidRequestParams = errors.New("invalid request params")
)

func ErrToStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidPath), errors.Is(err, ErrInvalidRequestParams):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrIsDirectory), IsNotExist(err):
		return http.StatusNotFound
	case errors.Is(err, ErrRangeNotSatisfiable):
		return http.StatusRequestedRangeNotSatisfiable
	case os.IsPermission(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// IsNotExist reports whether err means the path is missing, including a path
// component that turned out to be a regular file.
func IsNotExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR)
}
