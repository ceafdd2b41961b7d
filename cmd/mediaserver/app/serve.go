package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"k8s.io/klog/v2"

	"mediaserver/pkg/files"
	fbhttp "mediaserver/pkg/http"
	"mediaserver/pkg/settings"
	"mediaserver/pkg/stream"
)

const shutdownTimeout = 10 * time.Second

func newHandler(server *settings.Server, fs afero.Fs) (http.Handler, error) {
	root, err := server.AbsRoot()
	if err != nil {
		return nil, err
	}

	resolver, err := files.NewResolver(root)
	if err != nil {
		return nil, err
	}

	lister := files.NewLister(fs, resolver, server.Extensions)
	streamer := stream.NewStreamer(fs, server.ChunkSize)

	return fbhttp.NewHandler(server, resolver, lister, streamer)
}

func serve(ctx context.Context, server *settings.Server) error {
	handler, err := newHandler(server, afero.NewReadOnlyFs(afero.NewOsFs()))
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", server.ListenAddr())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	klog.Infof("Listening on %s", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	klog.Info("Caught signal: shutting down.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		klog.Errorf("shutdown: %v", err)
		return srv.Close()
	}
	return nil
}
