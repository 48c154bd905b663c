package port

// StagedDoc is a handle to a locally staged document, valid until released.
type StagedDoc struct {
	ID       string
	Path     string
	Filename string
	Size     int64
}

// Stager persists uploaded document bytes to a location readable by the
// extraction client and guarantees cleanup via Release.
type Stager interface {
	Stage(data []byte, filename string) (*StagedDoc, error)
	// Release removes the staged file. It is safe to call on every exit
	// path; failures are logged by the implementation, never returned.
	Release(doc *StagedDoc)
}
