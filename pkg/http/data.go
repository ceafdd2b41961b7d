package http

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tomasen/realip"
	"k8s.io/klog/v2"

	"mediaserver/pkg/common"
	"mediaserver/pkg/files"
	"mediaserver/pkg/settings"
	"mediaserver/pkg/stream"
)

type handleFunc func(w http.ResponseWriter, r *http.Request, d *data) (int, error)

// data is shared by all requests and never modified after NewHandler.
type data struct {
	server   *settings.Server
	resolver *files.Resolver
	lister   *files.Lister
	streamer *stream.Streamer
	tmpl     *template.Template
}

func handle(fn handleFunc, d *data) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, err := fn(w, r, d)

		if status >= 400 || err != nil {
			clientIP := realip.FromRequest(r)
			klog.Errorf("[%s] %s: %v %s %v", requestID(r), r.URL.Path, status, clientIP, err)
		}

		if status != 0 {
			txt := http.StatusText(status)
			http.Error(w, strconv.Itoa(status)+" "+txt, status)
			return
		}
	})
}

// resolveVar resolves the escaped {filename} route variable.
func (d *data) resolveVar(r *http.Request) (files.ResolvedPath, error) {
	rel, err := filenameVar(r)
	if err != nil {
		return files.ResolvedPath{}, err
	}
	return d.resolver.Resolve(rel)
}

func filenameVar(r *http.Request) (string, error) {
	raw := mux.Vars(r)["filename"]
	rel, err := url.PathUnescape(raw)
	if err != nil {
		return "", common.ErrInvalidPath
	}
	return rel, nil
}

// link prefixes an application path with the configured base url.
func (d *data) link(p string) string {
	return d.server.BaseURL + p
}
