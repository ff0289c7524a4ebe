package vcf

import (
	"fmt"

	"github.com/inodb/vcfdump/internal/variant"
)

// Decompose splits a VCF line into one biallelic record per alternate
// allele. Indel alleles are normalized by trimming the prefix they share
// with the reference; the trimmed prefix is kept as the record's anchor.
// Symbolic alternates produce no record but remain visible to their
// siblings as secondary alternates.
//
// Genotype strings keep their original numbering and are shared, read-only,
// between the records produced from one line.
func Decompose(v *Variant, study variant.StudyMetadata, keepSource bool) ([]*variant.Decomposed, error) {
	alts := v.Alts()
	if len(alts) == 0 {
		return nil, nil
	}
	if v.Ref == "" || v.Ref == "." {
		return nil, fmt.Errorf("%s:%d: missing reference allele", v.Chrom, v.Pos)
	}

	genotypes := make(map[string]string, len(v.Samples))
	for i, name := range study.SampleNames {
		gt, ok := v.SampleField(i, "GT")
		if !ok {
			continue
		}
		genotypes[name] = gt
	}

	attrs := variant.Attributes{Quality: v.Qual, Filter: v.Filter}
	if keepSource {
		attrs.Source = v.Line
	}

	id := v.ID
	if id == "" {
		id = "."
	}

	records := make([]*variant.Decomposed, 0, len(alts))
	for i, alt := range alts {
		if IsSymbolic(alt) {
			continue
		}

		ref, pos, anchor := v.Ref, v.Pos, ""
		if len(ref) != len(alt) {
			if n := commonPrefix(ref, alt); n > 0 {
				anchor = ref[:n]
				ref = ref[n:]
				alt = alt[n:]
				pos += int64(n)
			}
		}

		secondary := make([]string, 0, len(alts)-1)
		secondary = append(secondary, alts[:i]...)
		secondary = append(secondary, alts[i+1:]...)

		records = append(records, &variant.Decomposed{
			Chrom:     v.Chrom,
			Pos:       pos,
			ID:        id,
			Ref:       ref,
			Alt:       alt,
			Anchor:    anchor,
			AltIndex:  i + 1,
			Secondary: secondary,
			Entries: map[string]*variant.SourceEntry{
				study.StudyID: {
					StudyID:    study.StudyID,
					FileID:     study.FileID,
					Genotypes:  genotypes,
					Attributes: attrs,
				},
			},
		})
	}
	return records, nil
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
