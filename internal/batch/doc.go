// Package batch models the unit of work flowing through the pipeline.
//
// An Entry is exclusively owned by whichever stage worker is operating on it,
// but its status and progress are read concurrently by reporting code. All
// cross-thread reads go through Snapshot; mutation goes through SetStatus and
// SetProgress. Entries never reference each other, so a per-entry mutex is the
// only exclusion needed.
package batch
