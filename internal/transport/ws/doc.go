// Package ws is the WebSocket transport behind the session capability.
//
// Ownership boundary:
// - dialing and the TLS client configuration
// - the connection wrapper (read pump, write serialization, close)
// - handshake failure classification (terminal vs transient)
//
// Frames are opaque byte payloads here; urgency and envelope decoding
// belong to the protocol package.
package ws
