package storage

// Persistence

type WriteResult struct {
	path        string
	contentHash string
	unchanged   bool
	dryRun      bool
}

func NewWriteResult(
	path string,
	contentHash string,
	unchanged bool,
	dryRun bool,
) WriteResult {
	return WriteResult{
		path:        path,
		contentHash: contentHash,
		unchanged:   unchanged,
		dryRun:      dryRun,
	}
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}

// Unchanged reports that the file already held exactly these bytes.
func (w *WriteResult) Unchanged() bool {
	return w.unchanged
}

func (w *WriteResult) DryRun() bool {
	return w.dryRun
}
