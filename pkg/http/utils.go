package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"k8s.io/klog/v2"
)

// This is an addaptation if http.StripPrefix in which we don't
// return 404 if the page doesn't have the needed prefix.
func stripPrefix(prefix string, h http.Handler) http.Handler {
	if prefix == "" || prefix == "/" {
		return h
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(r.URL.Path, prefix)
		rp := strings.TrimPrefix(r.URL.RawPath, prefix)
		if p == "" {
			p = "/"
		}
		r2 := new(http.Request)
		*r2 = *r
		r2.URL = new(url.URL)
		*r2.URL = *r.URL
		r2.URL.Path = p
		r2.URL.RawPath = rp
		h.ServeHTTP(w, r2)
	})
}

func renderJSON(w http.ResponseWriter, _ *http.Request, v interface{}) (int, error) {
	marsh, err := json.Marshal(v)
	if err != nil {
		return http.StatusInternalServerError, err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if _, err := w.Write(marsh); err != nil {
		klog.V(2).Infof("write json response: %v", err)
	}
	return 0, nil
}

func contentDisposition(name string) string {
	return "attachment; filename*=utf-8''" + url.PathEscape(name)
}
