package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"mediaserver/pkg/files"
	"mediaserver/pkg/settings"
	"mediaserver/pkg/stream"
)

func NewHandler(
	server *settings.Server,
	resolver *files.Resolver,
	lister *files.Lister,
	streamer *stream.Streamer,
) (http.Handler, error) {
	server.Clean()

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	d := &data{
		server:   server,
		resolver: resolver,
		lister:   lister,
		streamer: streamer,
		tmpl:     tmpl,
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(timingMiddleware)
	r.Use(securityHeadersMiddleware)

	// Paths are matched escaped and never cleaned by the router: a "%2F" or
	// ".." inside {filename} must reach the resolver untouched.
	r = r.SkipClean(true).UseEncodedPath()

	monkey := func(fn handleFunc) http.Handler {
		return handle(fn, d)
	}

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	listings := r.NewRoute().Subrouter()
	if server.EnableZstd {
		listings.Use(zstdMiddleware)
	}
	listings.Path("/").Handler(monkey(browseHandler)).Methods(http.MethodGet)
	listings.Path("/browse").Handler(monkey(browseHandler)).Methods(http.MethodGet)
	listings.Path("/api/browse").Handler(monkey(browseJSONHandler)).Methods(http.MethodGet)

	r.Path("/watch/{filename:.+}").Handler(monkey(watchHandler)).Methods(http.MethodGet)
	r.Path("/download/{filename:.+}").Handler(monkey(downloadHandler)).Methods(http.MethodGet, http.MethodHead)
	r.Path("/stream/{filename:.+}").Handler(monkey(streamHandler)).Methods(http.MethodGet, http.MethodHead)

	return stripPrefix(server.BaseURL, r), nil
}
