package guide

import (
	"fmt"
	"time"

	"github.com/roach88/craftforge/internal/ir"
)

// Share envelope constants.
const (
	ShareType    = "craft-guide-share"
	ShareVersion = "1.0"

	// shareIDLength is the number of hex characters of the fingerprint kept
	// as the share id.
	shareIDLength = 16
)

// ShareEnvelope wraps a guide for sharing. The guide carries no id and has
// its share id populated.
type ShareEnvelope struct {
	Version    string     `json:"version" yaml:"version"`
	Type       string     `json:"type" yaml:"type"`
	ExportedAt time.Time  `json:"exportedAt" yaml:"exportedAt"`
	Guide      CraftGuide `json:"guide" yaml:"guide"`
}

// Fingerprint returns the content hash of g. Identity and bookkeeping
// fields (id, createdAt, updatedAt, shareId) do not contribute, so a guide
// and its re-imported copy share a fingerprint.
func Fingerprint(g CraftGuide) (string, error) {
	doc, err := ir.CanonicalDocument(g)
	if err != nil {
		return "", fmt.Errorf("fingerprint guide: %w", err)
	}
	fields, _ := doc.Fields()
	for _, k := range []string{"id", "createdAt", "updatedAt", "shareId"} {
		delete(fields, k)
	}
	return ir.Fingerprint(ir.DomainGuide, ir.FromObject(fields))
}

// ShareID returns the short content id used in share envelopes.
func ShareID(g CraftGuide) (string, error) {
	fp, err := Fingerprint(g)
	if err != nil {
		return "", err
	}
	return fp[:shareIDLength], nil
}

// NewShareEnvelope wraps a copy of g with its id stripped and its share id
// set.
func NewShareEnvelope(g CraftGuide, exportedAt time.Time) (ShareEnvelope, error) {
	shared := Copy(g)
	shared.ID = ""
	id, err := ShareID(shared)
	if err != nil {
		return ShareEnvelope{}, err
	}
	shared.ShareID = id
	return ShareEnvelope{
		Version:    ShareVersion,
		Type:       ShareType,
		ExportedAt: exportedAt.UTC(),
		Guide:      shared,
	}, nil
}
