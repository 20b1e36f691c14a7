// Package gateway implements maskdraw.Gateway.
//
// HTTP talks to an annotation server over its form-encoded wire protocol.
// FileStore keeps rasters in a local directory using the same storage
// paths, and Handler serves a FileStore over that protocol. CachedGateway caches
// stored-mask existence checks in front of any Gateway.
//
//	store, err := gateway.NewFileStore("masks", catalog)
//	http.Handle("/", gateway.NewHandler(store, gateway.DefaultMaskPrefix))
//
//	gw, err := gateway.NewHTTP("http://annotator.local:5000")
//	s := maskdraw.NewSession(gateway.NewCachedGateway(gw, 256, time.Minute))
package gateway
