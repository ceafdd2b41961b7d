package http

import (
	"net/http"
	"path"

	"k8s.io/klog/v2"

	"mediaserver/pkg/common"
)

// watchHandler renders the player page. It never touches the filesystem;
// the stream route validates the path when the player asks for bytes.
func watchHandler(w http.ResponseWriter, r *http.Request, d *data) (int, error) {
	rel, err := filenameVar(r)
	if err != nil {
		return http.StatusBadRequest, err
	}

	escaped := common.EscapePath(rel)
	parent := path.Dir(rel)
	if parent == "." || parent == "/" {
		parent = ""
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = d.tmpl.ExecuteTemplate(w, "watch.html", map[string]interface{}{
		"BaseURL":     d.server.BaseURL,
		"Name":        path.Base(rel),
		"Parent":      parent,
		"StreamURL":   d.link("/stream/" + escaped),
		"DownloadURL": d.link("/download/" + escaped),
	})
	if err != nil {
		klog.Errorf("render player %q: %v", rel, err)
	}
	return 0, nil
}
