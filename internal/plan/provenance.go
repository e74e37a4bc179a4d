package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ComputeProvenance derives the discovery validation hash from the metadata
// fields that identify a discovery run. A document whose stored hash matches
// is known to have been produced by discovery rather than authored by hand.
func ComputeProvenance(generatedDate, sourceSchema, sourceService string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{generatedDate, sourceSchema, sourceService}, "|")))
	return hex.EncodeToString(sum[:])
}

// StampProvenance fills in the metadata hash from the current metadata fields.
func (d *Document) StampProvenance() {
	d.Metadata.DiscoveryValidationHash = ComputeProvenance(
		d.Metadata.GeneratedDate, d.Metadata.SourceSchema, d.Metadata.SourceDatabaseService)
}

// DiscoveryGenerated reports whether the document carries a hash consistent
// with its own metadata. Callers decide whether a failed check blocks.
func (d *Document) DiscoveryGenerated() bool {
	if d.Metadata.DiscoveryValidationHash == "" {
		return false
	}
	want := ComputeProvenance(
		d.Metadata.GeneratedDate, d.Metadata.SourceSchema, d.Metadata.SourceDatabaseService)
	return d.Metadata.DiscoveryValidationHash == want
}
