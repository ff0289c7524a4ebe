package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vcfdump/internal/variant"
)

func testStudy() variant.StudyMetadata {
	return variant.StudyMetadata{
		StudyID:     "studyId",
		FileID:      "fileId",
		SampleNames: []string{"s0", "s1", "s2", "s3", "s4", "s5"},
	}
}

func mustParseLine(t *testing.T, line string) *Variant {
	t.Helper()
	v, err := ParseLine(line)
	require.NoError(t, err)
	return v
}

func TestDecompose_MultiAllelicSNV(t *testing.T) {
	v := mustParseLine(t, "1\t1000\tid\tC\tA,T\t100\tPASS\t.\tGT\t0|0\t0|0\t0|1\t1|1\t1|2\t0|1")

	records, err := Decompose(v, testStudy(), true)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first, second := records[0], records[1]
	assert.Equal(t, int64(1000), first.Pos)
	assert.Equal(t, "C", first.Ref)
	assert.Equal(t, "A", first.Alt)
	assert.Equal(t, 1, first.AltIndex)
	assert.Equal(t, []string{"T"}, first.Secondary)
	assert.Empty(t, first.Anchor)

	assert.Equal(t, "T", second.Alt)
	assert.Equal(t, 2, second.AltIndex)
	assert.Equal(t, []string{"A"}, second.Secondary)

	entry := first.Entries["studyId"]
	require.NotNil(t, entry)
	assert.Equal(t, "fileId", entry.FileID)
	assert.Equal(t, "1|2", entry.Genotypes["s4"])
	assert.Len(t, entry.Genotypes, 6)
	assert.Equal(t, v.Line, entry.Attributes.Source)
	assert.Equal(t, "100", entry.Attributes.Quality)
	assert.Equal(t, "PASS", entry.Attributes.Filter)
}

func TestDecompose_Indels(t *testing.T) {
	tests := []struct {
		name   string
		ref    string
		alt    string
		pos    int64
		wRef   string
		wAlt   string
		anchor string
	}{
		{"insertion", "N", "NA", 1001, "", "A", "N"},
		{"deletion", "CTT", "C", 1001, "TT", "", "C"},
		{"partial deletion", "CTT", "CT", 1002, "T", "", "CT"},
		{"three base prefix", "ACGT", "ACG", 1003, "T", "", "ACG"},
		{"two base prefix of longer ref", "ACGT", "AC", 1002, "GT", "", "AC"},
		{"complex indel without shared prefix", "TA", "G", 1000, "TA", "G", ""},
		{"mnv is untouched", "AT", "GT", 1000, "AT", "GT", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Chrom: "1", Pos: 1000, Ref: tt.ref, Alt: tt.alt}
			records, err := Decompose(v, testStudy(), false)
			require.NoError(t, err)
			require.Len(t, records, 1)

			d := records[0]
			assert.Equal(t, tt.pos, d.Pos)
			assert.Equal(t, tt.wRef, d.Ref)
			assert.Equal(t, tt.wAlt, d.Alt)
			assert.Equal(t, tt.anchor, d.Anchor)
			assert.Equal(t, ".", d.ID)
			assert.Empty(t, d.Entries["studyId"].Attributes.Source)
		})
	}
}

func TestDecompose_MultiAllelicIndel(t *testing.T) {
	v := mustParseLine(t, "1\t1000\tid\tC\tCA,T\t100\tPASS\t.\tGT\t0|0\t0|0\t0|1\t1|1\t1|2\t0|1")

	records, err := Decompose(v, testStudy(), false)
	require.NoError(t, err)
	require.Len(t, records, 2)

	ins := records[0]
	assert.Equal(t, int64(1001), ins.Pos)
	assert.Equal(t, "", ins.Ref)
	assert.Equal(t, "A", ins.Alt)
	assert.Equal(t, "C", ins.Anchor)
	assert.Equal(t, []string{"T"}, ins.Secondary)

	snv := records[1]
	assert.Equal(t, int64(1000), snv.Pos)
	assert.Equal(t, "C", snv.Ref)
	assert.Equal(t, "T", snv.Alt)
	assert.Equal(t, []string{"CA"}, snv.Secondary)
}

func TestDecompose_SymbolicAlternate(t *testing.T) {
	v := mustParseLine(t, "2\t500\t.\tG\tA,<DEL>\t99\tPASS\t.\tGT\t0/1\t0/2\t1/2\t0/0\t0/0\t0/0")

	records, err := Decompose(v, testStudy(), false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].Alt)
	assert.Equal(t, []string{"<DEL>"}, records[0].Secondary)
}

func TestDecompose_NoAlternates(t *testing.T) {
	v := mustParseLine(t, "1\t100\t.\tA\t.\t.\tPASS\t.")
	records, err := Decompose(v, testStudy(), false)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecompose_MissingReference(t *testing.T) {
	v := mustParseLine(t, "1\t100\t.\t.\tA\t.\tPASS\t.")
	_, err := Decompose(v, testStudy(), false)
	assert.Error(t, err)
}

func TestDecompose_MissingGTField(t *testing.T) {
	v := mustParseLine(t, "1\t100\t.\tA\tG\t.\tPASS\t.\tDP\t10\t12")
	records, err := Decompose(v, testStudy(), false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Entries["studyId"].Genotypes)
}
