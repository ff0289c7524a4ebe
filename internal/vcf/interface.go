// Package vcf provides VCF parsing and biallelic decomposition.
package vcf

// VariantParser is the interface for parsers that read VCF data lines.
type VariantParser interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// SampleNames returns the sample columns declared in the header.
	SampleNames() []string

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}
