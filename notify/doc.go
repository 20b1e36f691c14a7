// Package notify fans session signals out to websocket clients.
//
// A Hub implements maskdraw.Notifier. Each connected client has its own
// bounded queue; a client that falls behind loses signals rather than
// stalling the session.
//
//	hub := notify.NewHub(notify.WithQueueSize(32))
//	s := maskdraw.NewSession(gw, maskdraw.WithNotifier(hub))
//	http.Handle("/ws", hub)
package notify
