package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/synanno/maskdraw"
	"github.com/synanno/maskdraw/surface"
)

// Store is a Gateway whose stored rasters can be served as files.
type Store interface {
	maskdraw.Gateway
	fs.FS
	Target(imageID int) (maskdraw.Target, bool)

	// PutAutoMask stores a model-generated raster for the image's middle
	// slice.
	PutAutoMask(ctx context.Context, imageID int, png []byte) error
}

// maxAutoMaskSize bounds the body of an auto mask upload.
const maxAutoMaskSize = 64 << 20

type handler struct {
	store Store
}

// NewHandler serves store over the annotation server wire protocol, so
// that an HTTP gateway can talk to it. Stored rasters are served under
// maskPrefix.
func NewHandler(store Store, maskPrefix string) http.Handler {
	h := &handler{store: store}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+pathSaveCanvas, h.saveCanvas)
	mux.HandleFunc("POST "+pathSaveCoordinates, h.saveCoordinates)
	mux.HandleFunc("POST "+pathAutoAnnotate, h.autoAnnotate)
	mux.HandleFunc("PUT "+pathAutoMask+"{id}", h.putAutoMask)
	mux.Handle(maskPrefix, http.StripPrefix(maskPrefix, http.FileServerFS(store)))
	return mux
}

func (h *handler) saveCanvas(w http.ResponseWriter, r *http.Request) {
	var (
		m   maskdraw.MaskSubmission
		err error
	)
	if m.Raster, err = ParseDataURL(r.PostFormValue("imageBase64")); err != nil {
		badRequest(w, err)
		return
	}
	if m.Kind, err = surface.ParseLayerKind(r.PostFormValue("canvas_type")); err != nil {
		badRequest(w, err)
		return
	}
	if m.ImageID, m.Page, m.Slice, err = formInts(r, "data_id", "page", "viewed_instance_slice"); err != nil {
		badRequest(w, err)
		return
	}

	res, err := h.store.SubmitMask(r.Context(), m)
	if err != nil {
		storeError(w, err)
		return
	}
	inner, err := json.Marshal(res)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"data": string(inner)})
}

func (h *handler) saveCoordinates(w http.ResponseWriter, r *http.Request) {
	var (
		m   maskdraw.MarkerSubmission
		err error
	)
	if m.X, err = strconv.ParseFloat(r.PostFormValue("x"), 64); err != nil {
		badRequest(w, err)
		return
	}
	if m.Y, err = strconv.ParseFloat(r.PostFormValue("y"), 64); err != nil {
		badRequest(w, err)
		return
	}
	if m.Role, err = maskdraw.ParseRole(r.PostFormValue("id")); err != nil {
		badRequest(w, err)
		return
	}
	if m.Z, m.ImageID, m.Page, err = formInts(r, "z", "data_id", "page"); err != nil {
		badRequest(w, err)
		return
	}
	if err := h.store.SubmitMarkerCoordinate(r.Context(), m); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"result": "success"})
}

// autoAnnotate reports whether a model-generated mask is available; the
// model itself runs elsewhere.
func (h *handler) autoAnnotate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PostFormValue("data_id"))
	if err != nil {
		badRequest(w, err)
		return
	}
	t, ok := h.store.Target(id)
	if !ok {
		storeError(w, ErrUnknownImage)
		return
	}
	_, found, err := h.store.QueryAutoMask(r.Context(), id, t.MiddleSlice)
	if err != nil {
		storeError(w, err)
		return
	}
	result := "failure"
	if found {
		result = "success"
	}
	writeJSON(w, map[string]string{"result": result})
}

// putAutoMask ingests the PNG body as the image's model-generated mask.
func (h *handler) putAutoMask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		badRequest(w, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAutoMaskSize))
	if err != nil {
		badRequest(w, fmt.Errorf("read auto mask: %w", err))
		return
	}
	if err := h.store.PutAutoMask(r.Context(), id, data); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func formInts(r *http.Request, a, b, c string) (int, int, int, error) {
	var out [3]int
	for i, name := range []string{a, b, c} {
		v, err := strconv.Atoi(r.PostFormValue(name))
		if err != nil {
			return 0, 0, 0, errors.New("bad " + name + ": " + err.Error())
		}
		out[i] = v
	}
	return out[0], out[1], out[2], nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		maskdraw.Logger().Warn("write reply", "err", err)
	}
}

func badRequest(w http.ResponseWriter, err error) {
	maskdraw.Logger().Debug("bad gateway request", "err", err)
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func storeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnknownImage):
		code = http.StatusNotFound
	case errors.Is(err, ErrNotPNG):
		code = http.StatusUnsupportedMediaType
	}
	maskdraw.Logger().Warn("store request failed", "err", err, "status", code)
	http.Error(w, err.Error(), code)
}
