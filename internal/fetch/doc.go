// Package fetch acquires the raw source media for batch entries.
//
// It drives yt-dlp as a subprocess, bounded by a per-batch resolution
// ceiling, with exponential-backoff retries and a manifest-backed cache
// short-circuit. The subprocess runner is an interface so the retry and
// cancellation behaviour is testable without the network.
package fetch
