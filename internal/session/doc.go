// Package session owns the connection lifecycle state machine.
//
// Ownership boundary:
// - session configuration and transport security validation
// - the Transport/Conn capability contracts and terminal-error marking
// - the lifecycle state machine (idle through closed/failed)
//
// A session drives exactly one logical connection: it borrows a retry
// executor to establish the transport, runs a single receive loop while
// open, and routes each decoded frame through a dispatcher. The actual
// handshake and byte-level I/O live behind the Transport capability.
package session
