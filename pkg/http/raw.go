package http

import (
	"net/http"
	"strconv"

	"mediaserver/pkg/common"
	"mediaserver/pkg/stream"
)

func downloadHandler(w http.ResponseWriter, r *http.Request, d *data) (int, error) {
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
	h.Set("Content-Type", videoContentType)
	h.Set("Content-Disposition", contentDisposition(target.Name()))
	h.Set("Content-Length", strconv.FormatInt(size, 10))
	h.Set("Cache-Control", "private")

	if size == 0 || r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return 0, nil
	}

	st, err := d.streamer.Open(target, stream.ByteRange{Start: 0, End: size - 1})
	if err != nil {
		h.Del("Content-Disposition")
		h.Del("Content-Length")
		return common.ErrToStatus(err), err
	}
	defer st.Close()

	w.WriteHeader(http.StatusOK)
	sendStream(w, r, st)
	return 0, nil
}
