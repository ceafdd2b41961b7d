package http

import (
	"errors"
	"net/http"
	"strconv"

	"k8s.io/klog/v2"

	"mediaserver/pkg/common"
	"mediaserver/pkg/stream"
)

const videoContentType = "video/mp4"

// streamHandler answers every request with 206, including the implicit whole
// file range, so players always see Content-Range.
func streamHandler(w http.ResponseWriter, r *http.Request, d *data) (int, error) {
	target, err := d.resolveVar(r)
	if err != nil {
		return common.ErrToStatus(err), err
	}
	info, err := d.streamer.Stat(target)
	if err != nil {
		return common.ErrToStatus(err), err
	}

	size := info.Size()
	h := w.Header()
	h.Set("Accept-Ranges", "bytes")

	if size == 0 {
		// no byte of an empty file can be addressed
		h.Set("Content-Type", videoContentType)
		h.Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)
		return 0, nil
	}

	rng, err := stream.ParseRange(r.Header.Get("Range"), size)
	if err != nil {
		h.Set("Content-Range", stream.UnsatisfiedContentRange(size))
		return common.ErrToStatus(err), err
	}

	st, err := d.streamer.Open(target, rng)
	if err != nil {
		return common.ErrToStatus(err), err
	}
	defer st.Close()

	h.Set("Content-Type", videoContentType)
	h.Set("Content-Range", rng.ContentRange(size))
	h.Set("Content-Length", strconv.FormatInt(rng.Length(), 10))
	w.WriteHeader(http.StatusPartialContent)

	if r.Method == http.MethodHead {
		return 0, nil
	}
	sendStream(w, r, st)
	return 0, nil
}

// sendStream copies st to the client after the headers went out. A client
// that goes away just ends the copy. A read failure can no longer change the
// status, so the connection is torn down instead.
func sendStream(w http.ResponseWriter, r *http.Request, st *stream.Stream) {
	n, err := st.CopyTo(r.Context(), w)
	switch {
	case err == nil:
		if st.Short() {
			klog.Warningf("[%s] %s: sent %d of %d bytes, file shrank", requestID(r), r.URL.Path, n, st.Range().Length())
		}
	case errors.Is(err, common.ErrIOFailure):
		klog.Errorf("[%s] %s: aborting after %d bytes: %v", requestID(r), r.URL.Path, n, err)
		panic(http.ErrAbortHandler)
	default:
		klog.V(2).Infof("[%s] %s: client gone after %d bytes: %v", requestID(r), r.URL.Path, n, err)
	}
}
