// Package chat implements the room and session core of the groupchat
// relay: a registry of named rooms, per-room membership and broadcast,
// and the per-connection session state machine that interprets client
// messages.
//
// The package has no knowledge of the transport. The server layer hands
// each session a send capability and feeds it raw inbound payloads; the
// session decides whether a payload fans out to the whole room or is
// answered privately.
package chat
