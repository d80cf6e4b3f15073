package domain

import (
	"fmt"
	"strings"
)

// EntityKind tags the concrete variant of an extracted entity.
type EntityKind string

// Entity kinds.
const (
	KindErrorCode EntityKind = "error_code"
	KindPart      EntityKind = "part"
	KindProduct   EntityKind = "product"
	KindVersion   EntityKind = "version"
)

// PageFilename is the page sentinel for entities derived from the
// filename rather than from page text. Real pages are 1-based.
const PageFilename = 0

// Extraction method tags.
const (
	MethodPattern         = "pattern_matching"
	MethodStructuredLines = "structured_lines"
	MethodFilenameParsing = "filename_parsing"
	MethodLLM             = "llm_supplemental"
)

// Entity is the contract shared by all extracted entity variants.
// Implementations are concrete structs; callers that need variant
// behaviour switch on Kind rather than on dynamic type checks.
type Entity interface {
	// Kind returns the variant tag.
	Kind() EntityKind

	// NaturalKey returns the business key used for idempotent upserts.
	// Keys are computed from normalised fields only so re-processing a
	// document produces the same keys.
	NaturalKey() string

	// PageNumber returns the 1-based source page, or PageFilename.
	PageNumber() int

	// Score returns the extraction confidence in [0,1].
	Score() float64

	// Record serialises the entity for the persistence collaborator.
	Record() Record
}

// Record is the normalised persistence form of an entity. Every field an
// adapter needs to compute the natural key is present explicitly.
type Record struct {
	Kind       EntityKind
	NaturalKey string
	DocumentID string
	Page       int
	Confidence float64
	Fields     map[string]string
}

// Validate checks the invariants shared by all entities. A confidence
// outside [0,1] is a severity-error issue and excludes the entity.
func Validate(e Entity) []ValidationIssue {
	var issues []ValidationIssue
	if s := e.Score(); s < 0 || s > 1 {
		issues = append(issues, ValidationIssue{
			Stage:    string(e.Kind()),
			Severity: SeverityError,
			Message:  fmt.Sprintf("confidence %.3f outside [0,1] for %s", s, e.NaturalKey()),
		})
	}
	if e.PageNumber() < PageFilename {
		issues = append(issues, ValidationIssue{
			Stage:    string(e.Kind()),
			Severity: SeverityError,
			Message:  fmt.Sprintf("negative page %d for %s", e.PageNumber(), e.NaturalKey()),
		})
	}
	return issues
}

// ErrorCode is a manufacturer fault code with recovered remediation text.
type ErrorCode struct {
	Code         string
	Description  string
	Solution     string
	Severity     string
	Category     string
	Manufacturer string
	DocumentID   string
	ChunkID      string
	Page         int
	Method       string
	Context      string
	Confidence   float64
}

// Kind returns KindErrorCode.
func (e ErrorCode) Kind() EntityKind { return KindErrorCode }

// NaturalKey is code+manufacturer+document.
func (e ErrorCode) NaturalKey() string {
	return strings.ToUpper(e.Code) + "|" + strings.ToLower(e.Manufacturer) + "|" + e.DocumentID
}

// PageNumber returns the source page.
func (e ErrorCode) PageNumber() int { return e.Page }

// Score returns the extraction confidence.
func (e ErrorCode) Score() float64 { return e.Confidence }

// Record serialises the error code.
func (e ErrorCode) Record() Record {
	return Record{
		Kind:       KindErrorCode,
		NaturalKey: e.NaturalKey(),
		DocumentID: e.DocumentID,
		Page:       e.Page,
		Confidence: e.Confidence,
		Fields: map[string]string{
			"code":         e.Code,
			"description":  e.Description,
			"solution":     e.Solution,
			"severity":     e.Severity,
			"category":     e.Category,
			"manufacturer": e.Manufacturer,
			"chunk_id":     e.ChunkID,
			"method":       e.Method,
			"context":      e.Context,
		},
	}
}

// Part is a spare-part reference.
type Part struct {
	Number       string
	Description  string
	Manufacturer string
	DocumentID   string
	Page         int
	Method       string
	Context      string
	Confidence   float64
}

// Kind returns KindPart.
func (p Part) Kind() EntityKind { return KindPart }

// NaturalKey is part number+document.
func (p Part) NaturalKey() string {
	return strings.ToUpper(p.Number) + "|" + p.DocumentID
}

// PageNumber returns the source page.
func (p Part) PageNumber() int { return p.Page }

// Score returns the extraction confidence.
func (p Part) Score() float64 { return p.Confidence }

// Record serialises the part.
func (p Part) Record() Record {
	return Record{
		Kind:       KindPart,
		NaturalKey: p.NaturalKey(),
		DocumentID: p.DocumentID,
		Page:       p.Page,
		Confidence: p.Confidence,
		Fields: map[string]string{
			"number":       p.Number,
			"description":  p.Description,
			"manufacturer": p.Manufacturer,
			"method":       p.Method,
			"context":      p.Context,
		},
	}
}

// ProductModel is a product or series designation.
type ProductModel struct {
	Model        string
	Series       string
	Manufacturer string
	DocumentID   string
	Page         int
	Method       string
	Context      string
	Confidence   float64
}

// Kind returns KindProduct.
func (p ProductModel) Kind() EntityKind { return KindProduct }

// NaturalKey is model+document.
func (p ProductModel) NaturalKey() string {
	return strings.ToUpper(p.Model) + "|" + p.DocumentID
}

// PageNumber returns the source page.
func (p ProductModel) PageNumber() int { return p.Page }

// Score returns the extraction confidence.
func (p ProductModel) Score() float64 { return p.Confidence }

// Record serialises the product model.
func (p ProductModel) Record() Record {
	return Record{
		Kind:       KindProduct,
		NaturalKey: p.NaturalKey(),
		DocumentID: p.DocumentID,
		Page:       p.Page,
		Confidence: p.Confidence,
		Fields: map[string]string{
			"model":        p.Model,
			"series":       p.Series,
			"manufacturer": p.Manufacturer,
			"method":       p.Method,
			"context":      p.Context,
		},
	}
}

// Version is a firmware or document revision marker.
type Version struct {
	// Label classifies the version ("firmware", "document", "software").
	Label      string
	Value      string
	DocumentID string
	Page       int
	Method     string
	Context    string
	Confidence float64
}

// Kind returns KindVersion.
func (v Version) Kind() EntityKind { return KindVersion }

// NaturalKey is label+value+document.
func (v Version) NaturalKey() string {
	return strings.ToLower(v.Label) + "|" + strings.ToUpper(v.Value) + "|" + v.DocumentID
}

// PageNumber returns the source page.
func (v Version) PageNumber() int { return v.Page }

// Score returns the extraction confidence.
func (v Version) Score() float64 { return v.Confidence }

// Record serialises the version.
func (v Version) Record() Record {
	return Record{
		Kind:       KindVersion,
		NaturalKey: v.NaturalKey(),
		DocumentID: v.DocumentID,
		Page:       v.Page,
		Confidence: v.Confidence,
		Fields: map[string]string{
			"label":   v.Label,
			"value":   v.Value,
			"method":  v.Method,
			"context": v.Context,
		},
	}
}
