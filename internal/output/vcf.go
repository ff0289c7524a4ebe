// Package output writes reconstructed records as per-study VCF files.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vcfdump/internal/export"
	"github.com/inodb/vcfdump/internal/variant"
)

// Source is written as the ##source header value.
const Source = "vcfdump"

// VCFWriter writes the records of one study in VCF format. Sample columns
// follow the order of the header's sample names.
type VCFWriter struct {
	w      *bufio.Writer
	header *export.Header
}

// NewVCFWriter creates a new VCF output writer for a study header.
func NewVCFWriter(w io.Writer, h *export.Header) *VCFWriter {
	return &VCFWriter{
		w:      bufio.NewWriter(w),
		header: h,
	}
}

// WriteHeader writes the meta lines and the #CHROM column line.
func (vw *VCFWriter) WriteHeader() error {
	lines := []string{
		"##fileformat=VCFv4.2",
		"##source=" + Source,
		"##study=<ID=" + vw.header.StudyID + ",FileID=" + vw.header.FileID + ">",
	}
	if vw.header.HasGenotypes {
		lines = append(lines, `##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`)
	}

	cols := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO"
	if vw.header.HasGenotypes {
		cols += "\tFORMAT\t" + strings.Join(vw.header.SampleNames, "\t")
	}
	lines = append(lines, cols)

	for _, line := range lines {
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes one record. Samples without a genotype in the record are
// written as a no-call.
func (vw *VCFWriter) Write(rec *variant.Record) error {
	var lb strings.Builder
	lb.Grow(64 + 4*len(vw.header.SampleNames))

	lb.WriteString(rec.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(rec.Pos, 10))
	lb.WriteByte('\t')
	lb.WriteString(orMissing(rec.ID))
	lb.WriteByte('\t')
	lb.WriteString(rec.Ref)
	lb.WriteByte('\t')
	lb.WriteString(orMissing(strings.Join(rec.Alts, ",")))
	lb.WriteByte('\t')
	lb.WriteString(orMissing(rec.Quality))
	lb.WriteByte('\t')
	lb.WriteString(orMissing(rec.Filter))
	lb.WriteString("\t.")

	if vw.header.HasGenotypes {
		lb.WriteString("\tGT")
		for _, name := range vw.header.SampleNames {
			lb.WriteByte('\t')
			gt, ok := rec.Genotypes[name]
			if !ok {
				lb.WriteByte('.')
				continue
			}
			lb.WriteString(gt.String())
		}
	}

	lb.WriteByte('\n')
	_, err := vw.w.WriteString(lb.String())
	return err
}

// Flush flushes the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

func orMissing(s string) string {
	if s == "" {
		return "."
	}
	return s
}
