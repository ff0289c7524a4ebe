package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// MissingIndex is returned by ParseGenotype for an uncalled allele (".").
const MissingIndex = -1

// GenotypeCall is a tokenized GT value. Alleles hold indices into the
// original REF+ALT list, or MissingIndex.
type GenotypeCall struct {
	Alleles []int
	Tokens  []string
	Phased  bool
}

// ParseGenotype splits a GT string into one or two allele indices.
// Both "|" (phased) and "/" (unphased) separators are accepted; mixing them
// or carrying more than two alleles is rejected.
func ParseGenotype(gt string) (GenotypeCall, error) {
	if gt == "" {
		return GenotypeCall{}, fmt.Errorf("empty genotype")
	}

	phased := strings.Contains(gt, "|")
	if phased && strings.Contains(gt, "/") {
		return GenotypeCall{}, fmt.Errorf("genotype %q mixes phased and unphased separators", gt)
	}
	sep := "/"
	if phased {
		sep = "|"
	}

	tokens := strings.Split(gt, sep)
	if len(tokens) > 2 {
		return GenotypeCall{}, fmt.Errorf("genotype %q has %d alleles, at most 2 supported", gt, len(tokens))
	}

	call := GenotypeCall{
		Alleles: make([]int, len(tokens)),
		Tokens:  tokens,
		Phased:  phased,
	}
	for i, tok := range tokens {
		if tok == "." {
			call.Alleles[i] = MissingIndex
			continue
		}
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 0 {
			return GenotypeCall{}, fmt.Errorf("genotype %q: invalid allele %q", gt, tok)
		}
		call.Alleles[i] = idx
	}
	return call, nil
}
