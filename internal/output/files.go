package output

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/inodb/vcfdump/internal/export"
	"github.com/inodb/vcfdump/internal/variant"
)

// StudyFiles writes one VCF file per study into a directory.
type StudyFiles struct {
	dir     string
	writers map[string]*studyFile
	closed  bool
}

type studyFile struct {
	path string
	f    *os.File
	gz   *gzip.Writer
	vw   *VCFWriter
}

// FileName returns the output file name for a study.
func FileName(studyID string, compress bool) string {
	name := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(studyID) + ".vcf"
	if compress {
		name += ".gz"
	}
	return name
}

// CreateStudyFiles creates the output directory and one file per header,
// and writes each header.
func CreateStudyFiles(dir string, headers map[string]*export.Header, compress bool) (*StudyFiles, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	sf := &StudyFiles{dir: dir, writers: make(map[string]*studyFile, len(headers))}
	for id, h := range headers {
		path := filepath.Join(dir, FileName(id, compress))
		f, err := os.Create(path)
		if err != nil {
			sf.Close()
			return nil, fmt.Errorf("create output file: %w", err)
		}

		out := &studyFile{path: path, f: f}
		var w io.Writer = f
		if compress {
			out.gz = gzip.NewWriter(f)
			w = out.gz
		}
		out.vw = NewVCFWriter(w, h)
		sf.writers[id] = out

		if err := out.vw.WriteHeader(); err != nil {
			sf.Close()
			return nil, fmt.Errorf("write header for study %s: %w", id, err)
		}
	}
	return sf, nil
}

// Write appends a record to the study's file. It has the signature of an
// export sink.
func (sf *StudyFiles) Write(studyID string, rec *variant.Record) error {
	out, ok := sf.writers[studyID]
	if !ok || sf.closed {
		return fmt.Errorf("no output file for study %s", studyID)
	}
	return out.vw.Write(rec)
}

// Paths returns the output file path of each study.
func (sf *StudyFiles) Paths() map[string]string {
	paths := make(map[string]string, len(sf.writers))
	for id, out := range sf.writers {
		paths[id] = out.path
	}
	return paths
}

// Close flushes and closes every file, returning the first error.
func (sf *StudyFiles) Close() error {
	if sf.closed {
		return nil
	}
	sf.closed = true

	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	for _, id := range slices.Sorted(maps.Keys(sf.writers)) {
		out := sf.writers[id]
		keep(out.vw.Flush())
		if out.gz != nil {
			keep(out.gz.Close())
		}
		keep(out.f.Close())
	}
	return first
}
