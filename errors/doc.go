// Package errors provides the structured application error used across
// subtitler. Every failure carries a machine-readable code, an HTTP status,
// a retryable flag, and optional details, and renders to a stable JSON body.
package errors
