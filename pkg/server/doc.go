// Package server serves the route registry over HTTP and WebSocket.
//
// Plain HTTP requests are rendered on the server: the path is resolved, the
// route's guards run and the composed output is written as an HTML
// document. A browser that loaded the client script then keeps one
// WebSocket open and sends navigate messages over it; each connection owns
// a navigation.Navigator, so only the most recent navigation is answered.
//
// # Endpoints
//
//   - GET /healthz: liveness probe
//   - GET /metrics: Prometheus exposition, when metrics are enabled
//   - GET /routes: route manifest (JSON, or YAML with ?format=yaml)
//   - GET /ws: navigation WebSocket
//   - GET /_outlet/client.js: navigation client
//   - GET /*: server-rendered pages
//
// # Frames
//
// The client sends JSON text messages:
//
//	{"type":"navigate","path":"/jobs/42"}
//
// and receives one of:
//
//	{"type":"render","seq":3,"path":"/jobs/42","html":"<!DOCTYPE html>..."}
//	{"type":"redirect","seq":3,"path":"/jobs","to":"/login?redirect=%2Fjobs"}
//	{"type":"notfound","seq":3,"path":"/nope","html":"..."}
//	{"type":"error","seq":3,"path":"/admin","code":"forbidden","message":"..."}
//
// Navigations overtaken by a newer one produce no frame.
package server
