// Package genome loads reference sequences used to recover indel anchor
// bases.
package genome

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/inodb/vcfdump/internal/vcf"
)

// Reference holds whole chromosome sequences in memory, keyed by chromosome
// name without a "chr" prefix.
type Reference struct {
	path      string
	sequences map[string][]byte
}

// Load parses a FASTA file (optionally gzipped) into memory.
func Load(path string) (*Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	ref, err := Parse(reader)
	if err != nil {
		return nil, err
	}
	ref.path = path
	return ref, nil
}

// Parse reads FASTA content from r.
func Parse(r io.Reader) (*Reference, error) {
	ref := &Reference{sequences: make(map[string][]byte)}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var current string
	var seq bytes.Buffer
	save := func() {
		if current != "" {
			ref.sequences[current] = bytes.ToUpper(seq.Bytes())
		}
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) > 0 && line[0] == '>' {
			save()
			current = parseHeader(string(line))
			seq = bytes.Buffer{}
			continue
		}
		seq.Write(bytes.TrimSpace(line))
	}
	save()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	return ref, nil
}

// parseHeader extracts the chromosome name: the first word after '>',
// without a "chr" prefix.
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if idx := strings.IndexAny(header, " \t"); idx != -1 {
		header = header[:idx]
	}
	return vcf.NormalizeChrom(header)
}

// Base returns the reference base at a 1-based position.
func (r *Reference) Base(chrom string, pos int64) (byte, bool) {
	seq, ok := r.sequences[vcf.NormalizeChrom(chrom)]
	if !ok || pos < 1 || pos > int64(len(seq)) {
		return 0, false
	}
	return seq[pos-1], true
}

// Len returns the length of a chromosome, or 0 if it is not loaded.
func (r *Reference) Len(chrom string) int64 {
	return int64(len(r.sequences[vcf.NormalizeChrom(chrom)]))
}

// ChromosomeCount returns the number of loaded sequences.
func (r *Reference) ChromosomeCount() int {
	return len(r.sequences)
}

// Path returns the file the reference was loaded from.
func (r *Reference) Path() string {
	return r.path
}
