// Package protocol owns the message data model and urgency routing.
//
// Ownership boundary:
// - Message and its Urgency classification
// - the Dispatcher and Handler capability
// - the wire envelope that carries urgency alongside the payload
//
// The package is transport-agnostic: it never touches sockets or TLS
// material, only decoded byte payloads handed over by a session.
package protocol
