package export

import (
	"errors"
	"fmt"
)

// UnresolvableAlleleError reports a record that cannot be rebuilt for a
// study because an allele string is not recoverable from the decomposed
// data. Sample and Token are empty when the record's own alleles failed.
type UnresolvableAlleleError struct {
	Chrom    string
	Pos      int64
	StudyID  string
	Sample   string
	Genotype string
	Token    string
	Reason   string
}

func (e *UnresolvableAlleleError) Error() string {
	if e.Sample == "" {
		return fmt.Sprintf("unresolvable alleles at %s:%d in study %s: %s",
			e.Chrom, e.Pos, e.StudyID, e.Reason)
	}
	return fmt.Sprintf("unresolvable allele %s in genotype %q of sample %s at %s:%d in study %s: %s",
		e.Token, e.Genotype, e.Sample, e.Chrom, e.Pos, e.StudyID, e.Reason)
}

// MalformedGenotypeError reports a GT string that does not tokenize into one
// or two allele indices.
type MalformedGenotypeError struct {
	Chrom    string
	Pos      int64
	StudyID  string
	Sample   string
	Genotype string
	Err      error
}

func (e *MalformedGenotypeError) Error() string {
	return fmt.Sprintf("malformed genotype %q of sample %s at %s:%d in study %s: %v",
		e.Genotype, e.Sample, e.Chrom, e.Pos, e.StudyID, e.Err)
}

func (e *MalformedGenotypeError) Unwrap() error {
	return e.Err
}

// Failure kinds used as metric labels.
const (
	kindUnresolvable = "unresolvable_allele"
	kindMalformed    = "malformed_genotype"
	kindOther        = "other"
)

func failureKind(err error) string {
	var unresolvable *UnresolvableAlleleError
	var malformed *MalformedGenotypeError
	switch {
	case errors.As(err, &unresolvable):
		return kindUnresolvable
	case errors.As(err, &malformed):
		return kindMalformed
	default:
		return kindOther
	}
}
