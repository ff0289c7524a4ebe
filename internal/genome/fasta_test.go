package genome

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{">1", "1"},
		{">1 test chromosome", "1"},
		{">chr2", "2"},
		{">chrX\tAC:CM000685.2", "X"},
		{">MT", "MT"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseHeader(tt.header), tt.header)
	}
}

func TestParse(t *testing.T) {
	content := ">chr1 description\nacgt\nNNAC\n\n>2\nTTTT\n"
	ref, err := Parse(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, 2, ref.ChromosomeCount())
	assert.Equal(t, int64(8), ref.Len("1"))
	assert.Equal(t, int64(8), ref.Len("chr1"))

	b, ok := ref.Base("1", 1)
	require.True(t, ok)
	assert.Equal(t, byte('A'), b)

	b, ok = ref.Base("chr1", 6)
	require.True(t, ok)
	assert.Equal(t, byte('N'), b)

	_, ok = ref.Base("1", 0)
	assert.False(t, ok)
	_, ok = ref.Base("1", 9)
	assert.False(t, ok)
	_, ok = ref.Base("3", 1)
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	ref, err := Load(findTestFile(t, "reference.fa"))
	require.NoError(t, err)

	assert.Equal(t, 2, ref.ChromosomeCount())
	assert.Equal(t, int64(20), ref.Len("1"))
	assert.Equal(t, int64(8), ref.Len("2"))

	// Second line of chromosome 1 starts at position 11.
	b, ok := ref.Base("1", 11)
	require.True(t, ok)
	assert.Equal(t, byte('G'), b)

	b, ok = ref.Base("chr2", 5)
	require.True(t, ok)
	assert.Equal(t, byte('A'), b)
}

func TestLoad_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(">1\nCCGG\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "ref.fa.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	ref, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, ref.Path())

	b, ok := ref.Base("1", 3)
	require.True(t, ok)
	assert.Equal(t, byte('G'), b)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.fa"))
	assert.Error(t, err)
}

func findTestFile(t *testing.T, name string) string {
	t.Helper()
	for _, p := range []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Fatalf("Test file not found: %s", name)
	return ""
}
