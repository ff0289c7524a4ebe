// Package vcf provides VCF parsing and biallelic decomposition.
package vcf

import "strings"

// Variant represents a single data line of a VCF file.
type Variant struct {
	Chrom   string   // Chromosome name (e.g., "12", "chr12")
	Pos     int64    // 1-based genomic position
	ID      string   // Variant identifier (e.g., rs ID)
	Ref     string   // Reference allele
	Alt     string   // Comma-separated alternate alleles
	Qual    string   // Quality column, verbatim
	Filter  string   // Filter status (PASS or filter name)
	Info    string   // INFO column, verbatim
	Format  []string // FORMAT keys, nil when there are no sample columns
	Samples []string // Raw sample columns in header order
	Line    string   // Original line without the trailing newline
}

// Alts returns the alternate alleles in their original order.
func (v *Variant) Alts() []string {
	if v.Alt == "" || v.Alt == "." {
		return nil
	}
	return strings.Split(v.Alt, ",")
}

// SampleField returns the value of a FORMAT key for the i-th sample column.
// Trailing fields dropped by the writer are reported as missing.
func (v *Variant) SampleField(i int, key string) (string, bool) {
	if i < 0 || i >= len(v.Samples) {
		return "", false
	}
	idx := -1
	for j, k := range v.Format {
		if k == key {
			idx = j
			break
		}
	}
	if idx < 0 {
		return "", false
	}
	fields := strings.Split(v.Samples[i], ":")
	if idx >= len(fields) {
		return "", false
	}
	return fields[idx], true
}

// NormalizeChrom returns a chromosome name without "chr" prefix.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}

// IsSymbolic returns true for alleles that carry no sequence: structural
// notation like "<DEL>", breakends, the spanning deletion "*", and ".".
func IsSymbolic(allele string) bool {
	if allele == "*" || allele == "." {
		return true
	}
	return strings.ContainsAny(allele, "<>[]")
}
