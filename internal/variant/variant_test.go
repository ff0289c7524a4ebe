package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in   string
		want Region
	}{
		{"20", Region{Chrom: "20"}},
		{"20:61000", Region{Chrom: "20", Start: 61000}},
		{"20:61000-69000", Region{Chrom: "20", Start: 61000, End: 69000}},
		{"chrX:1,000-2,000", Region{Chrom: "chrX", Start: 1000, End: 2000}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRegion(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRegion_Invalid(t *testing.T) {
	for _, in := range []string{"", ":100-200", "1:abc", "1:0-10", "1:200-100", "1:100-x"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseRegion(in)
			assert.Error(t, err)
		})
	}
}

func TestRegion_StringRoundTrip(t *testing.T) {
	for _, in := range []string{"20", "20:61000", "20:61000-69000"} {
		r, err := ParseRegion(in)
		require.NoError(t, err)
		assert.Equal(t, in, r.String())
	}
}

func TestGenotype_String(t *testing.T) {
	tests := []struct {
		name string
		gt   Genotype
		want string
	}{
		{"phased het", Genotype{Alleles: []int{0, 1}, Phased: true}, "0|1"},
		{"unphased hom", Genotype{Alleles: []int{1, 1}}, "1/1"},
		{"haploid", Genotype{Alleles: []int{1}}, "1"},
		{"no call", Genotype{Alleles: []int{NoCall, NoCall}}, "./."},
		{"missing marker", Genotype{Alleles: []int{1, 2}, Phased: true}, "1|2"},
		{"empty", Genotype{}, "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gt.String())
		})
	}
}

func TestRecord_Alleles(t *testing.T) {
	r := &Record{Ref: "C", Alts: []string{"A", MissingAllele}}
	assert.Equal(t, []string{"C", "A", "."}, r.Alleles())
	assert.Equal(t, "C", r.AlleleString(0))
	assert.Equal(t, "A", r.AlleleString(1))
	assert.Equal(t, ".", r.AlleleString(2))
	assert.Equal(t, ".", r.AlleleString(NoCall))
	assert.Equal(t, ".", r.AlleleString(5))
}

func TestDecomposed_Studies(t *testing.T) {
	d := &Decomposed{Entries: map[string]*SourceEntry{
		"A": {StudyID: "A"},
		"C": {StudyID: "C"},
	}}
	assert.Equal(t, []string{"C", "A"}, d.Studies([]string{"C", "B", "A"}))
	assert.Empty(t, d.Studies([]string{"B"}))
	assert.Equal(t, []string{"A", "C"}, d.Studies([]string{"A", "A", "C", "A"}))
}

func TestDecomposed_RawSourceLine(t *testing.T) {
	d := &Decomposed{Entries: map[string]*SourceEntry{"A": {StudyID: "A"}}}
	_, ok := d.RawSourceLine()
	assert.False(t, ok)

	d.Entries["B"] = &SourceEntry{StudyID: "B", Attributes: Attributes{Source: "1\t100\t.\tA\tT"}}
	line, ok := d.RawSourceLine()
	assert.True(t, ok)
	assert.Equal(t, "1\t100\t.\tA\tT", line)
}

func TestDecomposed_Padding(t *testing.T) {
	ins := &Decomposed{Ref: "", Alt: "A"}
	assert.True(t, ins.NeedsPadding())

	del := &Decomposed{Ref: "T", Alt: ""}
	assert.True(t, del.NeedsPadding())

	snv := &Decomposed{Ref: "C", Alt: "T"}
	assert.False(t, snv.NeedsPadding())
}
