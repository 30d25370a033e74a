// Package server runs the gin engine behind foremit's HTTP surface.
//
// The engine is served over HTTP/1.1 and HTTP/2 cleartext so many SSE streams
// can share one connection. New installs recovery, request id and request
// logging middleware; routes are registered on Engine before Start.
package server
