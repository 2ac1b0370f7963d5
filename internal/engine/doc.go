// Package engine orchestrates the full pipeline over a batch: parallel
// fetch, strictly sequential normalize, merge (lossless concat or one-pass
// crossfade re-encode), and an optional background-music overlay.
//
// The normalize and merge stages never run concurrently with each other or
// with themselves; the encoder is a single shared hardware resource, and the
// engine additionally holds a file lock on the cache directory so two
// processes cannot contend for it. Cancellation is cooperative: a request
// cancels the run context, which is observed at stage boundaries, before each
// unit of work, and inside retry loops, but never kills an external process
// that is already running.
package engine
