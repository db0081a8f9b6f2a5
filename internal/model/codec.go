package model

import (
	"encoding/json"
	"fmt"
)

// LedgerSchemaVersion is the version written into persisted ledgers.
// Documents without a schema_version key are read as version 1.
const LedgerSchemaVersion = 1

type ledgerDocument struct {
	SchemaVersion   int       `json:"schema_version,omitempty"`
	CreatedSessions []Session `json:"created_events"`
	CompletedMarks  []Mark    `json:"completed_events"`
	MissedMarks     []Mark    `json:"missed_events"`
}

// EncodeLedger marshals l into its persisted JSON document. All three
// top-level arrays are always present, empty rather than null.
func EncodeLedger(l Ledger) ([]byte, error) {
	doc := ledgerDocument{
		SchemaVersion:   LedgerSchemaVersion,
		CreatedSessions: l.CreatedSessions,
		CompletedMarks:  l.CompletedMarks,
		MissedMarks:     l.MissedMarks,
	}
	if doc.CreatedSessions == nil {
		doc.CreatedSessions = []Session{}
	}
	if doc.CompletedMarks == nil {
		doc.CompletedMarks = []Mark{}
	}
	if doc.MissedMarks == nil {
		doc.MissedMarks = []Mark{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeLedger parses a persisted ledger document, rejecting documents
// written by a newer schema than this build understands.
func DecodeLedger(b []byte) (Ledger, error) {
	var doc ledgerDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return Ledger{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if doc.SchemaVersion > LedgerSchemaVersion {
		return Ledger{}, fmt.Errorf("%w: version %d, this build reads up to %d",
			ErrSchema, doc.SchemaVersion, LedgerSchemaVersion)
	}
	return Ledger{
		CreatedSessions: doc.CreatedSessions,
		CompletedMarks:  doc.CompletedMarks,
		MissedMarks:     doc.MissedMarks,
	}, nil
}
