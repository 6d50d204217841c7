package sync

// SyncResult reports what a sync run did. Errored records do not abort the
// run; the first error encountered is kept for the caller.
type SyncResult struct {
	// Processed counts upstream records merged into canonical state
	Processed int
	// Skipped counts records left unmerged because the match was ambiguous
	Skipped int
	// Errored counts records that failed to reconcile plus stream failures
	Errored int
	// FirstError is the first error encountered during the run, if any
	FirstError error
}

// recordError counts a failure and keeps the first one seen
func (r *SyncResult) recordError(err error) {
	r.Errored++
	if r.FirstError == nil {
		r.FirstError = err
	}
}

// ReconcileStats aggregates the outcomes of a batch reconcile
type ReconcileStats struct {
	// Created counts new canonical orders written from platform records
	Created int
	// Merged counts records folded into an already-known order
	Merged int
	// Placeholders counts warehouse records left standalone for lack of a match
	Placeholders int
	// Upgraded counts placeholders superseded by their platform order
	Upgraded int
	// Ambiguous counts records refused a merge because more than one
	// plausible match existed
	Ambiguous int
	// TouchedProducts are the product ids whose numbering may have changed
	TouchedProducts []string
}

// ReconcileOutcome describes what reconciling a single upstream record did
type ReconcileOutcome struct {
	// Created is true when a new canonical order row was written
	Created bool
	// Merged is true when the record was folded into an existing order
	Merged bool
	// Placeholder is true when a warehouse record was stored standalone
	Placeholder bool
	// Upgraded is true when a placeholder was superseded during this record
	Upgraded bool
	// Ambiguous is true when a merge was refused due to multiple candidates
	Ambiguous bool
	// TouchedProducts are the product ids whose line items changed
	TouchedProducts []string
}
