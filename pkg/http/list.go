package http

import (
	"net/http"
	"strings"

	"k8s.io/klog/v2"

	"mediaserver/pkg/common"
	"mediaserver/pkg/files"
)

type crumb struct {
	Name string
	Path string
}

type listing struct {
	Path      string        `json:"path"`
	Parent    string        `json:"parent"`
	HasParent bool          `json:"-"`
	Items     []files.Entry `json:"items"`
}

func (d *data) listDir(r *http.Request) (*listing, error) {
	dir, err := d.resolver.Resolve(r.URL.Query().Get("path"))
	if err != nil {
		return nil, err
	}
	entries, err := d.lister.List(dir)
	if err != nil {
		return nil, err
	}
	return &listing{
		Path:      dir.Rel(),
		Parent:    dir.Parent(),
		HasParent: !dir.IsRoot(),
		Items:     entries,
	}, nil
}

func browseHandler(w http.ResponseWriter, r *http.Request, d *data) (int, error) {
	l, err := d.listDir(r)
	if err != nil {
		return common.ErrToStatus(err), err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	err = d.tmpl.ExecuteTemplate(w, "browse.html", map[string]interface{}{
		"BaseURL":   d.server.BaseURL,
		"Path":      l.Path,
		"Parent":    l.Parent,
		"HasParent": l.HasParent,
		"Crumbs":    crumbs(l.Path),
		"Entries":   l.Items,
	})
	if err != nil {
		klog.Errorf("render listing %q: %v", l.Path, err)
	}
	return 0, nil
}

func browseJSONHandler(w http.ResponseWriter, r *http.Request, d *data) (int, error) {
	l, err := d.listDir(r)
	if err != nil {
		return common.ErrToStatus(err), err
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	return renderJSON(w, r, l)
}

func crumbs(rel string) []crumb {
	if rel == "" {
		return nil
	}
	parts := strings.Split(rel, "/")
	result := make([]crumb, 0, len(parts))
	for i, name := range parts {
		result = append(result, crumb{Name: name, Path: strings.Join(parts[:i+1], "/")})
	}
	return result
}
