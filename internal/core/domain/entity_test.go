package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeNaturalKeyNormalised(t *testing.T) {
	a := ErrorCode{Code: "13.a1.b2", Manufacturer: "HP", DocumentID: "doc-1"}
	b := ErrorCode{Code: "13.A1.B2", Manufacturer: "hp", DocumentID: "doc-1"}

	assert.Equal(t, a.NaturalKey(), b.NaturalKey())
	assert.Equal(t, "13.A1.B2|hp|doc-1", a.NaturalKey())
}

func TestValidateConfidenceBounds(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		wantIssues int
	}{
		{"zero", 0, 0},
		{"one", 1, 0},
		{"mid", 0.73, 0},
		{"negative", -0.1, 1},
		{"above one", 1.01, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Part{Number: "RM1-1234", DocumentID: "d", Confidence: tt.confidence}
			issues := Validate(e)
			assert.Len(t, issues, tt.wantIssues)
			for _, issue := range issues {
				assert.Equal(t, SeverityError, issue.Severity)
			}
		})
	}
}

func TestRecordIsExhaustivePerVariant(t *testing.T) {
	e := ErrorCode{
		Code: "59.F0", Description: "Transfer alienation failure",
		Solution: "1. Reseat the ITB.", Severity: "high", Category: "transfer",
		Manufacturer: "hp", DocumentID: "doc-9", Page: 12,
		Method: MethodPattern, Context: "ctx", Confidence: 0.8,
	}
	rec := e.Record()
	require.Equal(t, KindErrorCode, rec.Kind)
	assert.Equal(t, e.NaturalKey(), rec.NaturalKey)
	assert.Equal(t, 12, rec.Page)
	assert.Equal(t, "59.F0", rec.Fields["code"])
	assert.Equal(t, "high", rec.Fields["severity"])
	assert.Equal(t, "1. Reseat the ITB.", rec.Fields["solution"])

	v := Version{Label: "firmware", Value: "4.11.2", DocumentID: "doc-9", Confidence: 0.6}
	rv := v.Record()
	assert.Equal(t, KindVersion, rv.Kind)
	assert.Equal(t, "firmware|4.11.2|doc-9", rv.NaturalKey)
}

func TestFilenameSentinel(t *testing.T) {
	p := ProductModel{Model: "E475", DocumentID: "d", Page: PageFilename, Method: MethodFilenameParsing, Confidence: 0.4}
	assert.Equal(t, 0, p.PageNumber())
	assert.Empty(t, Validate(p))
}

func TestFingerprintDeterministic(t *testing.T) {
	assert.Equal(t, Fingerprint("same text"), Fingerprint("same text"))
	assert.NotEqual(t, Fingerprint("same text"), Fingerprint("other text"))
	assert.Len(t, Fingerprint(""), 64)
}

func TestChunkContainsPage(t *testing.T) {
	c := Chunk{PageStart: 3, PageEnd: 5}
	assert.False(t, c.ContainsPage(2))
	assert.True(t, c.ContainsPage(3))
	assert.True(t, c.ContainsPage(5))
	assert.False(t, c.ContainsPage(6))
}
