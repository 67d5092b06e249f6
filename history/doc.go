// Package history keeps a SQLite log of translation runs, successful and
// failed. It uses the pure-Go modernc.org/sqlite driver, so no cgo toolchain
// is required.
package history
