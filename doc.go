// Package maskdraw builds synapse annotation masks on a single image slice.
//
// # Overview
//
// An annotator outlines a synaptic structure with a few clicks, thickens
// the outline into a filled region, erases parts of that region and drops
// pre- and post-synaptic point markers. The finished rasters are handed to
// a [Gateway] for storage.
//
// # Quick Start
//
//	s := maskdraw.NewSession(gw, maskdraw.WithCanvasSize(512, 512))
//
//	ctx := context.Background()
//	s.Dispatch(ctx, maskdraw.EnterDraw{})
//	for _, p := range clicks {
//	    s.Dispatch(ctx, maskdraw.CurveClick{Pos: p})
//	}
//	if err := s.Dispatch(ctx, maskdraw.FillRequested{}); err != nil {
//	    // errors.Is(err, maskdraw.ErrInsufficientPoints)
//	}
//	s.Dispatch(ctx, maskdraw.SaveRequested{Kind: maskdraw.MaskCurve})
//
// # Architecture
//
// The module is organized into:
//   - geom: curve sampling and brush shapes (pure functions)
//   - surface: the curve, pre-marker and post-marker raster layers
//   - maskdraw: the editing [Session], its events and the [Gateway] contract
//   - gateway: HTTP and filesystem Gateway implementations
//   - notify: websocket delivery of session signals
//   - config: service configuration and image catalog
//   - cmd/maskd: HTTP service hosting one session
//
// # Modes
//
// A [Session] accepts gestures only for its current [Mode]. A gesture that
// arrives in the wrong mode is ignored; the page is expected to have
// disabled the control that produced it. [Signal] values report mode
// changes together with the [Affordances] the page should enable.
//
// # Coordinate System
//
// Points are in layer pixels with the origin at the top-left, X to the
// right and Y down. Use geom.MapToSurface to convert client positions.
package maskdraw
