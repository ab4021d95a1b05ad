package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"path"
	"regexp"
	"time"

	"github.com/soar/padremap/internal/hub"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
)

type asset struct {
	data      []byte
	mediatype string
	modified  time.Time
}

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	selector    hub.SetSelector
	assets      map[string]asset
	addr        string
	httpServer  *http.Server
}

// New creates the status page server. The page assets are minified once,
// here.
func New(h *hub.Hub, b *hub.Broadcaster, sel hub.SetSelector, frontendFS fs.FS, addr string) (*Server, error) {
	assets, err := loadAssets(frontendFS)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	return &Server{
		hub:         h,
		broadcaster: b,
		selector:    sel,
		assets:      assets,
		addr:        addr,
	}, nil
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	m.AddFuncRegexp(regexp.MustCompile("[/+]json$"), json.Minify)
	return m
}

// loadAssets reads every file of fsys and minifies what it knows how to.
func loadAssets(fsys fs.FS) (map[string]asset, error) {
	m := newMinifier()
	now := time.Now()
	assets := make(map[string]asset)

	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}

		a := asset{
			data:      data,
			mediatype: mime.TypeByExtension(path.Ext(name)),
			modified:  now,
		}
		if a.mediatype != "" {
			small, err := m.Bytes(a.mediatype, data)
			switch {
			case err == nil:
				a.data = small
			case !errors.Is(err, minify.ErrNotExist):
				log.Printf("[WARN] Serving %s unminified: %v", name, err)
			}
		}

		assets[name] = a
		return nil
	})
	return assets, err
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.selector))

	// Static files (frontend)
	mux.Handle("/", handleAssets(s.assets))

	return mux
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("[INFO] HTTP server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		log.Println("[INFO] Shutting down HTTP server...")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
