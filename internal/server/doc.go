// Package server is the transport layer of the groupchat relay: HTTP
// routing, websocket upgrades, per-connection read/write pumps, origin
// checks, and rate limiting.
//
// The server owns the physical connections and nothing else. Everything
// a message means is decided by the chat package; the server just moves
// frames between the wire and each connection's session.
package server
