// Package retry owns bounded retry execution with pluggable backoff.
//
// Ownership boundary:
// - retry configuration and validation
// - fixed/linear/exponential backoff policies
// - the retry executor and per-call outcome reporting
//
// The executor wraps one fallible operation at a time. Attempts are
// strictly sequential: a new attempt starts only after the previous one
// returned and the backoff wait elapsed or was canceled.
package retry
