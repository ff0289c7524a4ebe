// Package variant defines the decomposed and reconstructed variant models
// shared by the store, the VCF decomposer and the exporter.
package variant

import (
	"slices"
	"strconv"
	"strings"
)

// MissingAllele is the allele string written for an alternate that a single
// decomposed record cannot represent.
const MissingAllele = "."

// NoCall is the genotype allele index for an uncalled allele ("." in GT).
const NoCall = -1

// Decomposed is one biallelic record as stored: a single alternate allele of
// a possibly multi-allelic site, with every study's genotypes for it.
type Decomposed struct {
	Chrom     string // Chromosome name as loaded
	Pos       int64  // 1-based position after normalization
	ID        string // Variant identifier, "." when absent
	Ref       string // Reference allele, empty for a pure insertion
	Alt       string // Alternate allele, empty for a pure deletion
	Anchor    string // Reference prefix trimmed before Pos; its last base precedes Pos
	AltIndex  int    // Position of Alt in the original ALT list (1-based)
	Secondary []string

	// Entries holds the per-study source data keyed by study ID.
	Entries map[string]*SourceEntry
}

// SourceEntry holds one study's data for a decomposed record.
type SourceEntry struct {
	StudyID string
	FileID  string

	// Genotypes maps sample name to the GT string, numbered relative to the
	// original multi-allelic site (e.g. "1|2").
	Genotypes map[string]string

	Attributes Attributes
}

// Attributes carries the source entry metadata the exporter consumes.
type Attributes struct {
	Source  string // Original VCF line, empty unless retained at load time
	Quality string // QUAL column
	Filter  string // FILTER column
}

// NeedsPadding reports whether either allele is empty, in which case the
// exchange format requires an anchor base.
func (d *Decomposed) NeedsPadding() bool {
	return d.Ref == "" || d.Alt == ""
}

// RawSourceLine returns the first retained original line among the record's
// source entries.
func (d *Decomposed) RawSourceLine() (string, bool) {
	for _, e := range d.Entries {
		if e != nil && e.Attributes.Source != "" {
			return e.Attributes.Source, true
		}
	}
	return "", false
}

// Studies returns the IDs from studyIDs that have an entry in the record,
// preserving the requested order. Repeated IDs are reported once.
func (d *Decomposed) Studies(studyIDs []string) []string {
	var present []string
	for _, id := range studyIDs {
		if _, ok := d.Entries[id]; ok && !slices.Contains(present, id) {
			present = append(present, id)
		}
	}
	return present
}

// StudyMetadata describes a study as recorded in the variant store.
type StudyMetadata struct {
	StudyID     string
	FileID      string
	FileName    string
	SampleNames []string // Output column order
}

// Genotype is a reconstructed sample genotype. Alleles index into
// Record.Alleles(), or hold NoCall.
type Genotype struct {
	Alleles []int
	Phased  bool
}

// String renders the genotype as a VCF GT value.
func (g Genotype) String() string {
	if len(g.Alleles) == 0 {
		return "."
	}
	sep := "/"
	if g.Phased {
		sep = "|"
	}
	var sb strings.Builder
	for i, a := range g.Alleles {
		if i > 0 {
			sb.WriteString(sep)
		}
		if a == NoCall {
			sb.WriteByte('.')
			continue
		}
		sb.WriteString(strconv.Itoa(a))
	}
	return sb.String()
}

// Record is a reconstructed multi-sample record for one study.
type Record struct {
	Chrom     string
	Pos       int64
	ID        string
	Ref       string
	Alts      []string
	Quality   string
	Filter    string
	Genotypes map[string]Genotype
}

// Alleles returns the reference followed by the alternates, the list that
// genotype indices refer to.
func (r *Record) Alleles() []string {
	alleles := make([]string, 0, len(r.Alts)+1)
	alleles = append(alleles, r.Ref)
	return append(alleles, r.Alts...)
}

// AlleleString returns the allele string for a genotype index, or "." for a
// no-call.
func (r *Record) AlleleString(idx int) string {
	if idx == NoCall || idx < 0 || idx > len(r.Alts) {
		return MissingAllele
	}
	if idx == 0 {
		return r.Ref
	}
	return r.Alts[idx-1]
}
