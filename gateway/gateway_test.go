package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synanno/maskdraw"
	"github.com/synanno/maskdraw/geom"
	"github.com/synanno/maskdraw/surface"
)

var catalog = []maskdraw.Target{
	{ImageID: 3, Page: 1, MiddleSlice: 5, BoundingBox: []int{0, 8, 10, 74, 20, 84}},
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	l := surface.NewLayer(surface.LayerCurve, 16, 16)
	l.DrawEllipseMarker(geom.Circle(geom.Pt(8, 8), 4), surface.MaskColor)
	data, err := l.ToImage()
	require.NoError(t, err)
	return data
}

func TestDataURL(t *testing.T) {
	data := testPNG(t)
	u := DataURL(data)
	assert.True(t, strings.HasPrefix(u, "data:image/png;base64,"))

	got, err := ParseDataURL(u)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = ParseDataURL("data:image/jpeg;base64,AAAA")
	assert.ErrorIs(t, err, ErrBadDataURL)
	_, err = ParseDataURL("data:image/png;base64,!!!")
	assert.ErrorIs(t, err, ErrBadDataURL)
}

func TestNewHTTPInvalid(t *testing.T) {
	_, err := NewHTTP("localhost:5000")
	assert.Error(t, err)
	_, err = NewHTTP("://bad")
	assert.Error(t, err)
}

func TestHTTPSubmitMask(t *testing.T) {
	data := testPNG(t)
	for _, tt := range []struct {
		name  string
		reply string
	}{
		{"nested string", `{"data": "{\"Adjusted_Bbox\": [1, 2, 3], \"Image_Index\": 3, \"Middle_Slice\": 5}"}`},
		{"object", `{"data": {"Adjusted_Bbox": [1, 2, 3], "Image_Index": 3, "Middle_Slice": 5}}`},
	} {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/save_canvas", r.URL.Path)
				assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
				raster, err := ParseDataURL(r.PostFormValue("imageBase64"))
				assert.NoError(t, err)
				assert.Equal(t, data, raster)
				assert.Equal(t, "3", r.PostFormValue("data_id"))
				assert.Equal(t, "2", r.PostFormValue("page"))
				assert.Equal(t, "7", r.PostFormValue("viewed_instance_slice"))
				assert.Equal(t, "circlePost", r.PostFormValue("canvas_type"))
				io.WriteString(w, tt.reply)
			}))
			defer srv.Close()

			gw, err := NewHTTP(srv.URL)
			require.NoError(t, err)
			res, err := gw.SubmitMask(t.Context(), maskdraw.MaskSubmission{
				Raster: data, ImageID: 3, Page: 2, Slice: 7, Kind: maskdraw.MaskPostMarker,
			})
			require.NoError(t, err)
			assert.Equal(t, maskdraw.SaveResult{AdjustedBoundingBox: []int{1, 2, 3}, ImageIndex: 3, MiddleSlice: 5}, res)
		})
	}
}

func TestHTTPSubmitMarkerCoordinate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/save_pre_post_coordinates", r.URL.Path)
		assert.Equal(t, "12.5", r.PostFormValue("x"))
		assert.Equal(t, "40", r.PostFormValue("y"))
		assert.Equal(t, "7", r.PostFormValue("z"))
		assert.Equal(t, "pre", r.PostFormValue("id"))
	}))
	defer srv.Close()

	gw, err := NewHTTP(srv.URL)
	require.NoError(t, err)
	err = gw.SubmitMarkerCoordinate(t.Context(), maskdraw.MarkerSubmission{X: 12.5, Y: 40, Z: 7, ImageID: 3, Role: maskdraw.RolePre})
	assert.NoError(t, err)
}

func TestHTTPErrorsWrapUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	gw, err := NewHTTP(srv.URL)
	require.NoError(t, err)

	_, err = gw.SubmitMask(t.Context(), maskdraw.MaskSubmission{})
	assert.ErrorIs(t, err, maskdraw.ErrGatewayUnavailable)
	assert.Contains(t, err.Error(), "boom")

	_, err = gw.MaskExists(t.Context(), maskdraw.MaskKey{ImageID: 1})
	assert.ErrorIs(t, err, maskdraw.ErrGatewayUnavailable)

	srv.Close()
	err = gw.SubmitMarkerCoordinate(t.Context(), maskdraw.MarkerSubmission{})
	assert.ErrorIs(t, err, maskdraw.ErrGatewayUnavailable)
}

func TestHTTPMaskExists(t *testing.T) {
	key := maskdraw.MaskKey{ImageID: 3, Kind: maskdraw.MaskCurve, Slice: 5, BoundingBox: []int{1, 2}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path != "/static/Images/Mask/3/curve_idx_3_slice_5_cor_1_2.png" {
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	gw, err := NewHTTP(srv.URL)
	require.NoError(t, err)
	ok, err := gw.MaskExists(t.Context(), key)
	require.NoError(t, err)
	assert.True(t, ok)

	key.Slice = 6
	ok, err = gw.MaskExists(t.Context(), key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPQueryAutoMask(t *testing.T) {
	data := testPNG(t)
	result := "failure"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auto_annotate":
			assert.Equal(t, "3", r.PostFormValue("data_id"))
			io.WriteString(w, `{"result": "`+result+`"}`)
		case "/static/Images/Mask/3/auto_curve_idx_3_slice_5.png":
			w.Write(data)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	gw, err := NewHTTP(srv.URL)
	require.NoError(t, err)

	_, found, err := gw.QueryAutoMask(t.Context(), 3, 5)
	require.NoError(t, err)
	assert.False(t, found)

	result = "success"
	got, found, err := gw.QueryAutoMask(t.Context(), 3, 5)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, data, got)

	_, found, err = gw.QueryAutoMask(t.Context(), 3, 6)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, catalog)
	require.NoError(t, err)
	ctx := t.Context()
	data := testPNG(t)

	_, err = store.SubmitMask(ctx, maskdraw.MaskSubmission{Raster: []byte("GIF89a"), ImageID: 3})
	assert.ErrorIs(t, err, ErrNotPNG)
	_, err = store.SubmitMask(ctx, maskdraw.MaskSubmission{Raster: data, ImageID: 99})
	assert.ErrorIs(t, err, ErrUnknownImage)

	res, err := store.SubmitMask(ctx, maskdraw.MaskSubmission{Raster: data, ImageID: 3, Page: 1, Slice: 4, Kind: maskdraw.MaskCurve})
	require.NoError(t, err)
	assert.Equal(t, maskdraw.SaveResult{AdjustedBoundingBox: catalog[0].BoundingBox, ImageIndex: 3, MiddleSlice: 5}, res)

	stored, err := os.ReadFile(filepath.Join(dir, "3", "curve_idx_3_slice_4_cor_0_8_10_74_20_84.png"))
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	ok, err := store.MaskExists(ctx, maskdraw.MaskKey{ImageID: 3, Kind: maskdraw.MaskCurve, Slice: 4, BoundingBox: catalog[0].BoundingBox})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.MaskExists(ctx, maskdraw.MaskKey{ImageID: 3, Kind: maskdraw.MaskCurve, Slice: 5, BoundingBox: catalog[0].BoundingBox})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreMarkers(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), catalog)
	require.NoError(t, err)
	ctx := t.Context()

	m, err := store.StoredMarkers(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, m)

	require.NoError(t, store.SubmitMarkerCoordinate(ctx, maskdraw.MarkerSubmission{X: 1, Y: 2, Z: 4, ImageID: 3, Role: maskdraw.RolePre}))
	require.NoError(t, store.SubmitMarkerCoordinate(ctx, maskdraw.MarkerSubmission{X: 5, Y: 6, Z: 5, ImageID: 3, Role: maskdraw.RolePost}))
	require.NoError(t, store.SubmitMarkerCoordinate(ctx, maskdraw.MarkerSubmission{X: 9, Y: 9, Z: 5, ImageID: 3, Role: maskdraw.RolePre}))

	m, err = store.StoredMarkers(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, map[maskdraw.Role]maskdraw.MarkerCoordinate{
		maskdraw.RolePre:  {X: 9, Y: 9, Z: 5},
		maskdraw.RolePost: {X: 5, Y: 6, Z: 5},
	}, m)

	err = store.SubmitMarkerCoordinate(ctx, maskdraw.MarkerSubmission{ImageID: 42})
	assert.ErrorIs(t, err, ErrUnknownImage)
}

func TestFileStoreAutoMask(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), catalog)
	require.NoError(t, err)
	data := testPNG(t)

	_, found, err := store.QueryAutoMask(t.Context(), 3, 5)
	require.NoError(t, err)
	assert.False(t, found)

	ctx := t.Context()
	assert.ErrorIs(t, store.PutAutoMask(ctx, 3, []byte("nope")), ErrNotPNG)
	assert.ErrorIs(t, store.PutAutoMask(ctx, 42, data), ErrUnknownImage)
	require.NoError(t, store.PutAutoMask(ctx, 3, data))

	got, found, err := store.QueryAutoMask(t.Context(), 3, 5)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, data, got)
}

// TestHTTPAgainstHandler runs a session through the HTTP gateway against a
// FileStore served by Handler.
func TestHTTPAgainstHandler(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, catalog)
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(store, DefaultMaskPrefix))
	defer srv.Close()

	gw, err := NewHTTP(srv.URL)
	require.NoError(t, err)
	s := maskdraw.NewSession(NewCachedGateway(gw, 64, time.Minute), maskdraw.WithCanvasSize(64, 64))
	ctx := t.Context()

	require.NoError(t, s.Dispatch(ctx, maskdraw.NewTarget{Target: catalog[0]}))
	assert.Equal(t, maskdraw.CurveNone, s.State().Source)

	events := []maskdraw.Event{
		maskdraw.EnterDraw{},
		maskdraw.CurveClick{Pos: geom.Pt(10, 10)},
		maskdraw.CurveClick{Pos: geom.Pt(40, 10)},
		maskdraw.CurveClick{Pos: geom.Pt(40, 40)},
		maskdraw.FillRequested{},
		maskdraw.SaveRequested{Kind: maskdraw.MaskCurve},
		maskdraw.BeginMarking{Role: maskdraw.RolePost},
		maskdraw.MarkerClick{Pos: geom.Pt(20, 30)},
	}
	for _, ev := range events {
		require.NoError(t, s.Dispatch(ctx, ev), "%T", ev)
	}
	assert.Equal(t, maskdraw.Saved, s.Mode())
	assert.True(t, s.State().Visibility.Curve)

	_, err = os.Stat(filepath.Join(dir, "3", "curve_idx_3_slice_5_cor_0_8_10_74_20_84.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "3", "circlePost_idx_3_slice_5_cor_0_8_10_74_20_84.png"))
	assert.NoError(t, err)
	markers, err := store.StoredMarkers(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, maskdraw.MarkerCoordinate{X: 20, Y: 30, Z: 5}, markers[maskdraw.RolePost])

	// the stored curve is found when the target is opened again
	require.NoError(t, s.Dispatch(ctx, maskdraw.NewTarget{Target: catalog[0]}))
	assert.Equal(t, maskdraw.CurveHuman, s.State().Source)

	fresh, err := NewHTTP(srv.URL)
	require.NoError(t, err)
	ok, err := fresh.MaskExists(ctx, maskdraw.MaskKey{ImageID: 3, Kind: maskdraw.MaskCurve, Slice: 5, BoundingBox: catalog[0].BoundingBox})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHandlerAutoAnnotate(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), catalog)
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(store, DefaultMaskPrefix))
	defer srv.Close()
	gw, err := NewHTTP(srv.URL)
	require.NoError(t, err)

	_, found, err := gw.QueryAutoMask(t.Context(), 3, 5)
	require.NoError(t, err)
	assert.False(t, found)

	data := testPNG(t)
	putAutoMask(t, srv.URL+"/auto_mask/3", data, http.StatusNoContent)
	got, found, err := gw.QueryAutoMask(t.Context(), 3, 5)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, data, got)

	_, _, err = gw.QueryAutoMask(t.Context(), 77, 0)
	assert.ErrorIs(t, err, maskdraw.ErrGatewayUnavailable)
}

func putAutoMask(t *testing.T, url string, body []byte, code int) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPut, url, bytes.NewReader(body))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, code, res.StatusCode, url)
}

func TestHandlerPutAutoMask(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), catalog)
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(store, DefaultMaskPrefix))
	defer srv.Close()
	data := testPNG(t)

	putAutoMask(t, srv.URL+"/auto_mask/3", []byte("nope"), http.StatusUnsupportedMediaType)
	putAutoMask(t, srv.URL+"/auto_mask/42", data, http.StatusNotFound)
	putAutoMask(t, srv.URL+"/auto_mask/x", data, http.StatusBadRequest)

	_, found, err := store.QueryAutoMask(t.Context(), 3, 5)
	require.NoError(t, err)
	assert.False(t, found)

	putAutoMask(t, srv.URL+"/auto_mask/3", data, http.StatusNoContent)
	got, found, err := store.QueryAutoMask(t.Context(), 3, 5)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, data, got)

	// the session picks the ingested mask up as its curve source
	s := maskdraw.NewSession(store, maskdraw.WithCanvasSize(64, 64))
	require.NoError(t, s.Dispatch(t.Context(), maskdraw.NewTarget{Target: catalog[0]}))
	assert.Equal(t, maskdraw.CurveAuto, s.State().Source)
}

// TestFileStoreSessionRestoresMarkers reopens a target in a fresh session
// and expects the stored markers back.
func TestFileStoreSessionRestoresMarkers(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), catalog)
	require.NoError(t, err)
	ctx := t.Context()

	s := maskdraw.NewSession(store, maskdraw.WithCanvasSize(64, 64))
	require.NoError(t, s.Dispatch(ctx, maskdraw.NewTarget{Target: catalog[0]}))
	require.NoError(t, s.Dispatch(ctx, maskdraw.BeginMarking{Role: maskdraw.RolePre}))
	require.NoError(t, s.Dispatch(ctx, maskdraw.MarkerClick{Pos: geom.Pt(20, 30)}))

	fresh := maskdraw.NewSession(NewCachedGateway(store, 16, time.Minute), maskdraw.WithCanvasSize(64, 64))
	require.NoError(t, fresh.Dispatch(ctx, maskdraw.NewTarget{Target: catalog[0]}))

	m, ok := fresh.Marker(maskdraw.RolePre)
	assert.True(t, ok)
	assert.Equal(t, maskdraw.MarkerCoordinate{X: 20, Y: 30, Z: 5}, m)
	_, ok = fresh.Marker(maskdraw.RolePost)
	assert.False(t, ok)

	vis := fresh.State().Visibility
	assert.True(t, vis.Pre)
	assert.False(t, vis.Post)
	assert.NotZero(t, fresh.Snapshot(maskdraw.MaskPreMarker).RGBAAt(20, 30).A)

	// restored markers are stored ones, so reset keeps them
	require.NoError(t, fresh.Dispatch(ctx, maskdraw.Reset{}))
	_, ok = fresh.Marker(maskdraw.RolePre)
	assert.True(t, ok)
}

func TestHandlerRejectsBadForms(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), catalog)
	require.NoError(t, err)
	h := NewHandler(store, DefaultMaskPrefix)

	for _, tt := range []struct {
		path, body string
		code       int
	}{
		{"/save_canvas", "imageBase64=nope&canvas_type=curve&data_id=3&page=1&viewed_instance_slice=5", http.StatusBadRequest},
		{"/save_canvas", "imageBase64=" + DataURL([]byte("x")) + "&canvas_type=bogus", http.StatusBadRequest},
		{"/save_pre_post_coordinates", "x=1&y=2&z=3&data_id=3&page=1&id=middle", http.StatusBadRequest},
		{"/save_pre_post_coordinates", "x=1&y=2&z=3&data_id=9&page=1&id=pre", http.StatusNotFound},
		{"/auto_annotate", "data_id=abc", http.StatusBadRequest},
	} {
		req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.code, rec.Code, "%s %s", tt.path, tt.body)
	}
}

// countingGateway counts MaskExists calls.
type countingGateway struct {
	maskdraw.Gateway
	lookups int
	err    error
}

func (g *countingGateway) MaskExists(context.Context, maskdraw.MaskKey) (bool, error) {
	g.lookups++
	return false, g.err
}

func (g *countingGateway) SubmitMask(context.Context, maskdraw.MaskSubmission) (maskdraw.SaveResult, error) {
	return maskdraw.SaveResult{AdjustedBoundingBox: []int{1}, MiddleSlice: 2}, nil
}

func TestCachedGateway(t *testing.T) {
	inner := &countingGateway{}
	p := NewCachedGateway(inner, 16, time.Minute)
	ctx := t.Context()
	key := maskdraw.MaskKey{ImageID: 1, Kind: maskdraw.MaskCurve, Slice: 2, BoundingBox: []int{1}}

	for i := 0; i < 3; i++ {
		ok, err := p.MaskExists(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 1, inner.lookups)
	assert.Equal(t, uint64(2), p.cache.Stats().Hits)

	_, err := p.SubmitMask(ctx, maskdraw.MaskSubmission{ImageID: 1, Kind: maskdraw.MaskCurve, Slice: 2})
	require.NoError(t, err)
	ok, err := p.MaskExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, inner.lookups)
}

func TestCachedGatewayDoesNotCacheErrors(t *testing.T) {
	inner := &countingGateway{err: errors.New("down")}
	p := NewCachedGateway(inner, 16, time.Minute)
	key := maskdraw.MaskKey{ImageID: 1}

	_, err := p.MaskExists(t.Context(), key)
	assert.Error(t, err)
	inner.err = nil
	_, err = p.MaskExists(t.Context(), key)
	assert.NoError(t, err)
	assert.Equal(t, 2, inner.lookups)
}
