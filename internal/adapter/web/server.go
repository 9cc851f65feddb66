package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Chauhan-saab2006/music--app/internal/domain"
)

//go:embed static
var staticFiles embed.FS

// Controller is the part of the player the browser can drive.
type Controller interface {
	SelectTrack(index int) error
	PlayTrack(index int) error
	TogglePlayPause()
	Play()
	Pause()
	Advance()
	Retreat()
	Seek(fraction float64) error
	SetVolume(level float64)
	SetSearchTerm(term string)
	ToggleShuffle()
	SetShuffle(enabled bool)
	ToggleRepeat()
	SetRepeat(enabled bool)
	HandleKey(key string) bool
	Refresh()
	State() domain.PlayerState
}

// TrackSource exposes the loaded catalog.
type TrackSource interface {
	Tracks() []domain.Track
	TrackByID(id int) (domain.Track, bool)
}

// Config configures the HTTP server.
type Config struct {
	Addr string
}

// Server serves the browser UI, the JSON API, local media files and the websocket.
type Server struct {
	logger     *slog.Logger
	cfg        Config
	hub        *Hub
	media      *RemoteMedia
	controller Controller
	catalog    TrackSource
	router     *mux.Router
}

// NewServer wires the routes and the websocket handlers. The hub must not be started yet.
func NewServer(
	logger *slog.Logger,
	cfg Config,
	hub *Hub,
	media *RemoteMedia,
	controller Controller,
	catalog TrackSource,
) *Server {
	s := &Server{
		logger:     logger.With("component", "web-server"),
		cfg:        cfg,
		hub:        hub,
		media:      media,
		controller: controller,
		catalog:    catalog,
	}

	hub.OnConnect(s.handleConnect)
	hub.OnMessage(s.handleMessage)
	hub.OnPrimaryChange(s.media.Sync)
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/tracks", s.handleTracks).Methods(http.MethodGet)
	router.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	router.HandleFunc("/media/{id:[0-9]+}", s.handleMedia).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/ws", s.hub.ServeWS)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	router.PathPrefix("/").Handler(http.FileServer(http.FS(static)))
	return router
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", slog.String("addr", s.cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("web server stopped")
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleTracks(w http.ResponseWriter, _ *http.Request) {
	tracks := s.catalog.Tracks()
	if tracks == nil {
		tracks = []domain.Track{}
	}
	writeJSON(w, http.StatusOK, tracks)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.State())
}

// handleMedia streams a catalog entry's local file, or redirects to its remote URL.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid track id", http.StatusBadRequest)
		return
	}
	track, ok := s.catalog.TrackByID(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if isRemote(track.MediaURL) {
		http.Redirect(w, r, track.MediaURL, http.StatusFound)
		return
	}
	http.ServeFile(w, r, track.MediaURL)
}

func isRemote(mediaURL string) bool {
	u, err := url.Parse(mediaURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// MediaResolver returns a resolver for RemoteMedia that serves local catalog
// files through /media/{id}. Remote URLs are passed through.
func MediaResolver(catalog TrackSource) func(string) string {
	return func(mediaURL string) string {
		if isRemote(mediaURL) {
			return mediaURL
		}
		for _, t := range catalog.Tracks() {
			if t.MediaURL == mediaURL {
				return "/media/" + strconv.Itoa(t.ID)
			}
		}
		return mediaURL
	}
}

func (s *Server) handleConnect(c *Client) {
	s.controller.Refresh()
	s.media.Sync(c)
}

func (s *Server) handleMessage(c *Client, msg Message) {
	if msg.Type == MsgMediaLoaded || msg.Type == MsgMediaProgress ||
		msg.Type == MsgMediaEnded || msg.Type == MsgMediaError {
		// Only one browser drives playback.
		if c != s.hub.Primary() {
			return
		}
		s.media.HandleReport(msg)
		return
	}

	if err := s.dispatch(msg); err != nil {
		s.logger.Debug("intent rejected",
			slog.String("client", c.ID),
			slog.String("type", string(msg.Type)),
			slog.Any("error", err))
	}
}

// dispatch translates a user intent into a controller operation.
func (s *Server) dispatch(msg Message) error {
	switch msg.Type {
	case IntentSelect, IntentPlayTrack:
		var p indexPayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		if msg.Type == IntentSelect {
			return s.controller.SelectTrack(p.Index)
		}
		return s.controller.PlayTrack(p.Index)

	case IntentToggle:
		s.controller.TogglePlayPause()
	case IntentPlay:
		s.controller.Play()
	case IntentPause:
		s.controller.Pause()
	case IntentNext:
		s.controller.Advance()
	case IntentPrev:
		s.controller.Retreat()

	case IntentSeek:
		var p seekPayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		return s.controller.Seek(p.Fraction)

	case IntentVolume:
		var p volumePayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		s.controller.SetVolume(p.Volume)

	case IntentSearch:
		var p searchPayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		s.controller.SetSearchTerm(p.Term)

	case IntentShuffle, IntentRepeat:
		var p togglePayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		switch {
		case msg.Type == IntentShuffle && p.Enabled == nil:
			s.controller.ToggleShuffle()
		case msg.Type == IntentShuffle:
			s.controller.SetShuffle(*p.Enabled)
		case p.Enabled == nil:
			s.controller.ToggleRepeat()
		default:
			s.controller.SetRepeat(*p.Enabled)
		}

	case IntentKey:
		var p keyPayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		if !s.controller.HandleKey(p.Key) {
			return errors.New("unbound key " + p.Key)
		}

	default:
		return errors.New("unknown message type")
	}
	return nil
}
