package http

import (
	"embed"
	"fmt"
	"html/template"

	"mediaserver/pkg/common"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"escapePath": common.EscapePath,
		"humanSize":  humanSize,
	}).ParseFS(templatesFS, "templates/*.html")
}

// humanSize formats bytes into human-readable string.
func humanSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
