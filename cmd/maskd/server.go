package main

import (
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/synanno/maskdraw"
	"github.com/synanno/maskdraw/notify"
	"github.com/synanno/maskdraw/surface"
)

const maxEventSize = 1 << 16

type server struct {
	session   *maskdraw.Session
	hub       *notify.Hub
	maxCanvas int
}

// routes returns the service API. store, if not nil, serves the local
// raster store under the remaining paths.
func (s *server) routes(store http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", s.events)
	mux.HandleFunc("GET /state", s.state)
	mux.HandleFunc("GET /layers/{name}", s.layer)
	mux.HandleFunc("GET /composite.png", s.composite)
	mux.Handle("GET /ws", s.hub)
	if store != nil {
		mux.Handle("/", store)
	}
	return mux
}

func (s *server) events(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxEventSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	width, height := s.session.Size()
	ev, err := decodeEvent(data, width, height, s.maxCanvas)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.session.Dispatch(r.Context(), ev); err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, maskdraw.ErrCanvasSize):
			code = http.StatusBadRequest
		case errors.Is(err, maskdraw.ErrInsufficientPoints):
			code = http.StatusUnprocessableEntity
		case errors.Is(err, maskdraw.ErrGatewayUnavailable):
			code = http.StatusBadGateway
		}
		http.Error(w, err.Error(), code)
		return
	}
	s.state(w, r)
}

func (s *server) state(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.session.State()); err != nil {
		maskdraw.Logger().Warn("write state", "err", err)
	}
}

func (s *server) layer(w http.ResponseWriter, r *http.Request) {
	k, err := surface.ParseLayerKind(strings.TrimSuffix(r.PathValue("name"), ".png"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data, err := s.session.LayerPNG(k)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func (s *server) composite(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, s.session.Composite()); err != nil {
		maskdraw.Logger().Warn("write composite", "err", err)
	}
}
