package domain

import "time"

// DocumentMetadata describes a processed manual. It is created once per
// extraction run and is immutable after creation.
type DocumentMetadata struct {
	// Title from the PDF info dictionary, may be empty.
	Title string

	// Author from the PDF info dictionary, may be empty.
	Author string

	// CreationDate is the raw PDF creation date string (D:YYYYMMDD...).
	CreationDate string

	// PageCount is the number of pages in the document.
	PageCount int

	// FileSize is the size of the source file in bytes.
	FileSize int64

	// Language is the detected ISO 639-1 code, or "unknown" when the
	// detector's confidence fell below the configured minimum.
	Language string

	// LanguageConfidence is the detector's probability for Language.
	LanguageConfidence float64

	// Engine is the name of the backend that produced the text.
	Engine string

	// FallbackUsed reports whether the secondary backend or OCR ran.
	FallbackUsed bool

	// PagesFailed counts pages that yielded no text from any backend.
	PagesFailed int
}

// Document is the persisted record for a processed manual.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Path is the filesystem location of the source PDF.
	Path string

	// Filename is the base name of the source PDF.
	Filename string

	// Manufacturer is the canonical detected manufacturer name.
	Manufacturer string

	// ManufacturerScore is the detection score that selected Manufacturer.
	ManufacturerScore float64

	// Metadata holds the extraction-run metadata.
	Metadata DocumentMetadata

	// CreatedAt is when the document was first processed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-processed.
	UpdatedAt time.Time
}

// PageError records a single page that failed during extraction.
// Page failures never abort the run; they are surfaced as warnings.
type PageError struct {
	Page int
	Err  error
}

// Statistics summarises a completed processing run.
type Statistics struct {
	Pages       int
	PagesFailed int
	Chunks      int
	ErrorCodes  int
	Parts       int
	Products    int
	Versions    int
	Images      int
	Links       int
	Duration    time.Duration
}

// ProcessingResult is returned by the pipeline orchestrator. A run can
// succeed while still reporting partial extraction gaps in
// ValidationErrors; only "no text extracted" produces Success == false.
type ProcessingResult struct {
	DocumentID       string
	Success          bool
	Manufacturer     string
	Statistics       Statistics
	ValidationErrors []ValidationIssue
}
