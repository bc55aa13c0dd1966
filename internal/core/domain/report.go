package domain

// DocumentResult is the per-item outcome of a batch indexing run.
type DocumentResult struct {
	// DocumentID identifies the processed document.
	DocumentID int64

	// SourceType names the document kind.
	SourceType string

	// Skipped is true when the entry was left untouched because its
	// content fingerprint matched the stored one.
	Skipped bool

	// Err is non-nil when indexing this document failed. A failure
	// never aborts the rest of the batch.
	Err error
}

// IndexReport summarises a batch indexing run.
type IndexReport struct {
	// Indexed counts documents written to the store.
	Indexed int

	// Skipped counts documents left untouched (unchanged fingerprint).
	Skipped int

	// Failed counts documents that errored.
	Failed int

	// Results holds the per-document outcomes in completion order.
	Results []DocumentResult
}

// Add records one outcome and updates the counters.
func (r *IndexReport) Add(res DocumentResult) {
	switch {
	case res.Err != nil:
		r.Failed++
	case res.Skipped:
		r.Skipped++
	default:
		r.Indexed++
	}
	r.Results = append(r.Results, res)
}
