package gateway

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const pngDataURLPrefix = "data:image/png;base64,"

// ErrBadDataURL is returned for rasters that are not base64 PNG data URLs.
var ErrBadDataURL = errors.New("gateway: not a base64 PNG data URL")

// DataURL encodes a PNG raster the way a canvas serializes itself.
func DataURL(png []byte) string {
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(png)
}

// ParseDataURL decodes a raster produced by DataURL.
func ParseDataURL(s string) ([]byte, error) {
	payload, ok := strings.CutPrefix(s, pngDataURLPrefix)
	if !ok {
		return nil, ErrBadDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDataURL, err)
	}
	return data, nil
}
