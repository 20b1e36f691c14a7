package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/synanno/maskdraw"
)

// DefaultMaskPrefix is the URL path under which stored rasters are served.
const DefaultMaskPrefix = "/static/Images/Mask/"

// Wire endpoints of the annotation server.
const (
	pathSaveCanvas      = "/save_canvas"
	pathSaveCoordinates = "/save_pre_post_coordinates"
	pathAutoAnnotate    = "/auto_annotate"
	pathAutoMask        = "/auto_mask/"
)

// HTTP is a Gateway backed by an annotation server.
//
// Every failed call wraps maskdraw.ErrGatewayUnavailable. HTTP is safe for
// concurrent use.
type HTTP struct {
	base       *url.URL
	client     *http.Client
	maskPrefix string
}

// HTTPOption configures an HTTP gateway.
type HTTPOption func(*HTTP)

// WithClient sets the HTTP client. The default client times out after
// 30 seconds.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		if c != nil {
			h.client = c
		}
	}
}

// WithMaskPrefix sets the URL path under which stored rasters are served.
func WithMaskPrefix(prefix string) HTTPOption {
	return func(h *HTTP) {
		h.maskPrefix = prefix
	}
}

// NewHTTP creates a gateway for the server at baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("gateway: base URL %q needs a scheme and host", baseURL)
	}
	h := &HTTP{
		base:       u,
		client:     &http.Client{Timeout: 30 * time.Second},
		maskPrefix: DefaultMaskPrefix,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// saveResponse is the /save_canvas reply. The server nests the
// bookkeeping as a JSON document inside a string.
type saveResponse struct {
	Data json.RawMessage `json:"data"`
}

func (r saveResponse) result() (maskdraw.SaveResult, error) {
	var res maskdraw.SaveResult
	raw := []byte(r.Data)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return res, err
		}
		raw = []byte(inner)
	}
	if len(raw) == 0 {
		return res, errors.New("empty save response")
	}
	err := json.Unmarshal(raw, &res)
	return res, err
}

// SubmitMask posts the raster as a data URL to /save_canvas.
func (h *HTTP) SubmitMask(ctx context.Context, m maskdraw.MaskSubmission) (maskdraw.SaveResult, error) {
	form := url.Values{
		"imageBase64":           {DataURL(m.Raster)},
		"data_id":               {strconv.Itoa(m.ImageID)},
		"page":                  {strconv.Itoa(m.Page)},
		"viewed_instance_slice": {strconv.Itoa(m.Slice)},
		"canvas_type":           {m.Kind.String()},
	}
	var resp saveResponse
	if err := h.postForm(ctx, pathSaveCanvas, form, &resp); err != nil {
		return maskdraw.SaveResult{}, err
	}
	res, err := resp.result()
	if err != nil {
		return res, fmt.Errorf("%w: decode %s reply: %w", maskdraw.ErrGatewayUnavailable, pathSaveCanvas, err)
	}
	return res, nil
}

// SubmitMarkerCoordinate posts the marker position.
func (h *HTTP) SubmitMarkerCoordinate(ctx context.Context, m maskdraw.MarkerSubmission) error {
	form := url.Values{
		"x":       {strconv.FormatFloat(m.X, 'f', -1, 64)},
		"y":       {strconv.FormatFloat(m.Y, 'f', -1, 64)},
		"z":       {strconv.Itoa(m.Z)},
		"data_id": {strconv.Itoa(m.ImageID)},
		"page":    {strconv.Itoa(m.Page)},
		"id":      {m.Role.String()},
	}
	return h.postForm(ctx, pathSaveCoordinates, form, nil)
}

// QueryAutoMask asks the server to produce the model-generated mask and
// downloads it.
func (h *HTTP) QueryAutoMask(ctx context.Context, imageID, middleSlice int) ([]byte, bool, error) {
	var resp struct {
		Result string `json:"result"`
	}
	form := url.Values{"data_id": {strconv.Itoa(imageID)}}
	if err := h.postForm(ctx, pathAutoAnnotate, form, &resp); err != nil {
		return nil, false, err
	}
	if resp.Result != "success" {
		maskdraw.Logger().Info("auto annotation unavailable", "image", imageID, "result", resp.Result)
		return nil, false, nil
	}

	key := maskdraw.MaskKey{ImageID: imageID, Slice: middleSlice, Auto: true}
	res, err := h.do(ctx, http.MethodGet, h.maskURL(key), nil, "")
	if err != nil {
		return nil, false, err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if err := checkStatus(res); err != nil {
		return nil, false, err
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: read auto mask: %w", maskdraw.ErrGatewayUnavailable, err)
	}
	return data, true, nil
}

// MaskExists sends a HEAD request for the stored raster.
func (h *HTTP) MaskExists(ctx context.Context, key maskdraw.MaskKey) (bool, error) {
	res, err := h.do(ctx, http.MethodHead, h.maskURL(key), nil, "")
	if err != nil {
		return false, err
	}
	defer res.Body.Close()
	switch {
	case res.StatusCode == http.StatusNotFound:
		return false, nil
	case res.StatusCode/100 == 2:
		return true, nil
	}
	return false, checkStatus(res)
}

func (h *HTTP) maskURL(key maskdraw.MaskKey) string {
	return h.base.JoinPath(h.maskPrefix, key.Path()).String()
}

func (h *HTTP) postForm(ctx context.Context, path string, form url.Values, out any) error {
	body := strings.NewReader(form.Encode())
	res, err := h.do(ctx, http.MethodPost, h.base.JoinPath(path).String(), body, "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := checkStatus(res); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s reply: %w", maskdraw.ErrGatewayUnavailable, path, err)
	}
	return nil
}

func (h *HTTP) do(ctx context.Context, method, u string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", maskdraw.ErrGatewayUnavailable, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	id := uuid.NewString()
	req.Header.Set("X-Request-ID", id)

	maskdraw.Logger().Debug("gateway request", "method", method, "url", u, "request", id)
	res, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", maskdraw.ErrGatewayUnavailable, method, u, err)
	}
	return res, nil
}

func checkStatus(res *http.Response) error {
	if res.StatusCode/100 == 2 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("%w: %s %s: %s: %s", maskdraw.ErrGatewayUnavailable,
		res.Request.Method, res.Request.URL.Path, res.Status, bytes.TrimSpace(msg))
}
