package models

// SourceDocument is one input file handed to the batch runner.
type SourceDocument struct {
	Name string // Base name written to the filename column
	Path string // Path the document was loaded from, for logging
	Data []byte // Raw bytes, never modified

	// LoadErr is set by the loader when the bytes could not be obtained
	// (unreadable or oversized file). The runner records it without decoding.
	LoadErr error
}
