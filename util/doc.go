// Package util holds small helpers shared by the server, config, and media
// layers: human-readable size parsing, secret masking, and filename hygiene.
package util
