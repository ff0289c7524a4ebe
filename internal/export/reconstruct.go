// Package export rebuilds per-study multi-sample records from decomposed
// biallelic variants and drives region exports over the variant store.
package export

import (
	"fmt"
	"maps"
	"slices"

	"github.com/inodb/vcfdump/internal/variant"
	"github.com/inodb/vcfdump/internal/vcf"
)

// AnchorLookup returns the reference base at a 1-based position.
type AnchorLookup interface {
	Base(chrom string, pos int64) (byte, bool)
}

// Outcome is the reconstruction of one decomposed record for one study:
// either a record or the error that prevented it.
type Outcome struct {
	Record *variant.Record
	Err    error
}

// Reconstruction maps study ID to the outcome for that study.
type Reconstruction map[string]Outcome

// Reconstructor converts decomposed records back into exchange records. It
// holds no mutable state and is safe for concurrent use.
type Reconstructor struct {
	anchors AnchorLookup
}

// NewReconstructor creates a reconstructor that relies only on the data
// carried by each record.
func NewReconstructor() *Reconstructor {
	return &Reconstructor{}
}

// SetAnchorLookup configures a reference sequence used to pad indels whose
// anchor base was not retained.
func (r *Reconstructor) SetAnchorLookup(l AnchorLookup) {
	r.anchors = l
}

// Reconstruct rebuilds d for every requested study that has a source entry
// in it. Studies without an entry are absent from the result.
func (r *Reconstructor) Reconstruct(d *variant.Decomposed, studyIDs []string) Reconstruction {
	out := make(Reconstruction, len(studyIDs))
	for _, id := range studyIDs {
		entry, ok := d.Entries[id]
		if !ok || entry == nil {
			continue
		}
		rec, err := r.reconstructStudy(d, id, entry)
		out[id] = Outcome{Record: rec, Err: err}
	}
	return out
}

func (r *Reconstructor) reconstructStudy(d *variant.Decomposed, studyID string, entry *variant.SourceEntry) (*variant.Record, error) {
	src := newSourceLine(d, entry)

	pos, ref, alt, err := r.realize(d, src)
	if err != nil {
		return nil, &UnresolvableAlleleError{
			Chrom:   d.Chrom,
			Pos:     d.Pos,
			StudyID: studyID,
			Reason:  err.Error(),
		}
	}

	rec := &variant.Record{
		Chrom:     d.Chrom,
		Pos:       pos,
		ID:        d.ID,
		Ref:       ref,
		Alts:      []string{alt},
		Quality:   entry.Attributes.Quality,
		Filter:    entry.Attributes.Filter,
		Genotypes: make(map[string]variant.Genotype, len(entry.Genotypes)),
	}

	usesMissing := false
	for _, sample := range slices.Sorted(maps.Keys(entry.Genotypes)) {
		gt := entry.Genotypes[sample]
		call, err := vcf.ParseGenotype(gt)
		if err != nil {
			return nil, &MalformedGenotypeError{
				Chrom:    d.Chrom,
				Pos:      d.Pos,
				StudyID:  studyID,
				Sample:   sample,
				Genotype: gt,
				Err:      err,
			}
		}

		g := variant.Genotype{Phased: call.Phased, Alleles: make([]int, len(call.Alleles))}
		for i, idx := range call.Alleles {
			switch idx {
			case vcf.MissingIndex:
				g.Alleles[i] = variant.NoCall
			case 0:
				g.Alleles[i] = 0
			case d.AltIndex:
				g.Alleles[i] = 1
			default:
				if reason := checkOtherAllele(d, originalRefLen(d, ref), idx, src); reason != "" {
					return nil, &UnresolvableAlleleError{
						Chrom:    d.Chrom,
						Pos:      d.Pos,
						StudyID:  studyID,
						Sample:   sample,
						Genotype: gt,
						Token:    call.Tokens[i],
						Reason:   reason,
					}
				}
				g.Alleles[i] = 2
				usesMissing = true
			}
		}
		rec.Genotypes[sample] = g
	}

	if usesMissing {
		rec.Alts = append(rec.Alts, variant.MissingAllele)
	}
	return rec, nil
}

// realize returns the position and allele strings of the record in exchange
// form. Empty alleles are padded with the preceding reference base, taken
// from the record's anchor, the original line, or the reference lookup, in
// that order.
func (r *Reconstructor) realize(d *variant.Decomposed, src *sourceLine) (int64, string, string, error) {
	if !d.NeedsPadding() {
		return d.Pos, d.Ref, d.Alt, nil
	}

	if d.Anchor != "" {
		anchor := d.Anchor[len(d.Anchor)-1:]
		return d.Pos - 1, anchor + d.Ref, anchor + d.Alt, nil
	}

	v, err := src.parse()
	if err != nil {
		return 0, "", "", err
	}
	if v != nil {
		alts := v.Alts()
		if d.AltIndex < 1 || d.AltIndex > len(alts) {
			return 0, "", "", fmt.Errorf("allele index %d not present in source line", d.AltIndex)
		}
		return v.Pos, v.Ref, alts[d.AltIndex-1], nil
	}

	if r.anchors != nil && d.Pos > 1 {
		if b, ok := r.anchors.Base(d.Chrom, d.Pos-1); ok {
			anchor := string(b)
			return d.Pos - 1, anchor + d.Ref, anchor + d.Alt, nil
		}
	}

	return 0, "", "", fmt.Errorf("no anchor base available to pad indel")
}

// originalRefLen returns the length of the REF column the record was
// decomposed from. Without a carried prefix the realized reference is the
// closest known value.
func originalRefLen(d *variant.Decomposed, realizedRef string) int {
	if d.Anchor != "" {
		return len(d.Anchor) + len(d.Ref)
	}
	return len(realizedRef)
}

// checkOtherAllele decides whether a genotype allele outside this record can
// be written as the missing-allele marker. It returns an empty string when
// it can, or the reason it cannot.
func checkOtherAllele(d *variant.Decomposed, refLen int, idx int, src *sourceLine) string {
	allele, known := secondaryAllele(d, idx)
	if known && !needsOwnPadding(allele, d.Alt, refLen) {
		return ""
	}

	v, err := src.parse()
	if err != nil {
		return err.Error()
	}
	if v == nil {
		if !known {
			return fmt.Sprintf("allele index %d is beyond the %d secondary alternates and the source line was not retained",
				idx, len(d.Secondary))
		}
		return fmt.Sprintf("indel alternate %q cannot be recovered without the source line", allele)
	}
	if idx > len(v.Alts()) {
		return fmt.Sprintf("allele index %d not present in source line", idx)
	}
	return ""
}

// secondaryAllele maps an original allele index to the sibling alternate it
// names. Secondary alternates skip the record's own allele.
func secondaryAllele(d *variant.Decomposed, idx int) (string, bool) {
	pos := idx - 1
	if idx > d.AltIndex {
		pos = idx - 2
	}
	if pos < 0 || pos >= len(d.Secondary) {
		return "", false
	}
	return d.Secondary[pos], true
}

// needsOwnPadding reports whether a sibling alternate is an indel relative to
// the original reference of refLen bases, meaning its decomposed form would
// have been trimmed and anchored independently.
func needsOwnPadding(allele, alt string, refLen int) bool {
	if allele == alt || vcf.IsSymbolic(allele) {
		return false
	}
	return len(allele) != refLen
}

// sourceLine lazily parses the original VCF line retained for a record.
type sourceLine struct {
	line   string
	parsed *vcf.Variant
	err    error
	done   bool
}

func newSourceLine(d *variant.Decomposed, entry *variant.SourceEntry) *sourceLine {
	line := entry.Attributes.Source
	if line == "" {
		line, _ = d.RawSourceLine()
	}
	return &sourceLine{line: line}
}

// parse returns nil, nil when no line was retained.
func (s *sourceLine) parse() (*vcf.Variant, error) {
	if s.line == "" {
		return nil, nil
	}
	if !s.done {
		s.done = true
		s.parsed, s.err = vcf.ParseLine(s.line)
		if s.err != nil {
			s.err = fmt.Errorf("unreadable source line: %w", s.err)
		}
	}
	return s.parsed, s.err
}
