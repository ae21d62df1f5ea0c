// Package server provides a development HTTP server for chartbook documents.
//
// The server re-loads and re-renders its source document on every request,
// so document edits show up on the next browser refresh without restarting
// the process.
//
// Design decision: We serve with net/http from the standard library rather
// than a web framework. The server exposes a single page, holds no session
// state, and negotiates nothing, so routing and middleware layers would add
// moving parts without carrying any weight.
package server
