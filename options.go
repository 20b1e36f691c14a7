package maskdraw

import (
	"image/color"

	"github.com/synanno/maskdraw/surface"
)

// Option configures a Session during creation.
// Use functional options to customize Session behavior.
//
// Example:
//
//	// Default 512x512 layers, 20px brush
//	s := maskdraw.NewSession(gw)
//
//	// Wider brush, signals pushed to a websocket hub
//	s := maskdraw.NewSession(gw, maskdraw.WithThickness(30), maskdraw.WithNotifier(hub))
type Option func(*options)

// options holds optional configuration for Session creation.
type options struct {
	width, height    int
	maxCanvas        int
	thickness        float64
	markerRadius     float64
	previewWidth     float64
	previewPointSize float64
	maskColor        color.Color
	preColor         color.Color
	postColor        color.Color
	notifier         Notifier
	autoSaveMarkers  bool
}

// Defaults used when no option overrides them.
const (
	DefaultThickness    = 20
	DefaultMarkerRadius = 10
	DefaultCanvasSize   = 512

	// MaxCanvasSize is the largest layer width or height a session accepts.
	MaxCanvasSize = 8192
)

// defaultOptions returns the default session options.
func defaultOptions() options {
	return options{
		width:            DefaultCanvasSize,
		height:           DefaultCanvasSize,
		maxCanvas:        MaxCanvasSize,
		thickness:        DefaultThickness,
		markerRadius:     DefaultMarkerRadius,
		previewWidth:     3,
		previewPointSize: 4,
		maskColor:        surface.MaskColor,
		preColor:         surface.PreMarkerColor,
		postColor:        surface.PostMarkerColor,
		notifier:         nopNotifier{},
		autoSaveMarkers:  true,
	}
}

// WithCanvasSize sets the initial layer dimensions. NewTarget events may
// rebind them to the displayed image later.
// Sizes outside 1..MaxCanvasSize are ignored.
func WithCanvasSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 && width <= MaxCanvasSize && height <= MaxCanvasSize {
			o.width = width
			o.height = height
		}
	}
}

// WithMaxCanvasSize lowers the largest layer width or height a NewTarget
// may request. Values outside 1..MaxCanvasSize are ignored.
func WithMaxCanvasSize(n int) Option {
	return func(o *options) {
		if n > 0 && n <= MaxCanvasSize {
			o.maxCanvas = n
		}
	}
}

// WithThickness sets the brush thickness used for the stroke region and
// the erase brush. Non-positive values are ignored.
func WithThickness(t float64) Option {
	return func(o *options) {
		if t > 0 {
			o.thickness = t
		}
	}
}

// WithMarkerRadius sets the radius of the marker circles.
func WithMarkerRadius(r float64) Option {
	return func(o *options) {
		if r > 0 {
			o.markerRadius = r
		}
	}
}

// WithMaskColor sets the fill color of the stroke region.
func WithMaskColor(c color.Color) Option {
	return func(o *options) {
		if c != nil {
			o.maskColor = c
		}
	}
}

// WithMarkerColors sets the pre- and post-synaptic marker colors.
func WithMarkerColors(pre, post color.Color) Option {
	return func(o *options) {
		if pre != nil {
			o.preColor = pre
		}
		if post != nil {
			o.postColor = post
		}
	}
}

// WithNotifier sets the receiver of session signals.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithAutoSaveMarkers controls whether a placed marker is stored right
// away. It is enabled by default.
func WithAutoSaveMarkers(enabled bool) Option {
	return func(o *options) {
		o.autoSaveMarkers = enabled
	}
}
