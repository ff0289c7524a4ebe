package output

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vcfdump/internal/export"
	"github.com/inodb/vcfdump/internal/variant"
)

func readLines(t *testing.T, path string, gzipped bool) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if gzipped {
		gz, err := gzip.NewReader(f)
		require.NoError(t, err)
		defer gz.Close()
		scanner = bufio.NewScanner(gz)
	}

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "7.vcf", FileName("7", false))
	assert.Equal(t, "7.vcf.gz", FileName("7", true))
	assert.Equal(t, "a_b.vcf", FileName("a/b", false))
}

func TestStudyFiles(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(FileName("study", compress), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			headers := map[string]*export.Header{
				"7": {StudyID: "7", FileID: "6", SampleNames: []string{"s0"}, HasGenotypes: true},
				"8": {StudyID: "8", FileID: "5", SampleNames: []string{"s0"}, HasGenotypes: true},
			}

			sf, err := CreateStudyFiles(dir, headers, compress)
			require.NoError(t, err)

			var sink export.Sink = sf.Write
			rec := &variant.Record{
				Chrom: "1", Pos: 100, ID: ".", Ref: "A", Alts: []string{"G"},
				Genotypes: map[string]variant.Genotype{"s0": {Alleles: []int{0, 1}}},
			}
			require.NoError(t, sink("7", rec))
			require.NoError(t, sink("7", rec))
			assert.Error(t, sink("9", rec))

			require.NoError(t, sf.Close())
			require.NoError(t, sf.Close())
			assert.Error(t, sf.Write("7", rec))

			paths := sf.Paths()
			require.Len(t, paths, 2)
			assert.Equal(t, filepath.Join(dir, FileName("7", compress)), paths["7"])

			lines := readLines(t, paths["7"], compress)
			require.GreaterOrEqual(t, len(lines), 3)
			assert.Equal(t, "1\t100\t.\tA\tG\t.\t.\t.\tGT\t0/1", lines[len(lines)-1])
			assert.Equal(t, lines[len(lines)-1], lines[len(lines)-2])

			// Study with no records still gets a header.
			lines = readLines(t, paths["8"], compress)
			assert.Equal(t, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\ts0", lines[len(lines)-1])
		})
	}
}
