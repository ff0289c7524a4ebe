package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/goccy/go-json"

	"github.com/inodb/vcfdump/internal/variant"
	"github.com/inodb/vcfdump/internal/vcf"
)

// Iterator streams decomposed records for a region, restricted to a set of
// studies. Rows describing the same biallelic variant in different studies
// are merged into one record.
type Iterator struct {
	rows    *sql.Rows
	pending *entryRow
	done    bool
}

// entryRow is one variant_entries row.
type entryRow struct {
	chrom, id, ref, alt, anchor string
	pos                         int64
	alleleIndex                 int32
	secondary                   string
	studyID, fileID             string
	genotypes                   string
	quality, filter, src        string
}

func (r *entryRow) sameVariant(o *entryRow) bool {
	return r.chrom == o.chrom && r.pos == o.pos && r.ref == o.ref && r.alt == o.alt &&
		r.alleleIndex == o.alleleIndex && r.secondary == o.secondary
}

// Iterator opens an iterator over the records in region that have an entry
// for at least one of studyIDs, ordered by position. "chr20" and "20" select
// the same rows. The caller must Close it.
func (s *Store) Iterator(ctx context.Context, region variant.Region, studyIDs []string) (*Iterator, error) {
	if len(studyIDs) == 0 {
		return &Iterator{done: true}, nil
	}

	query := `SELECT chrom, pos, id, ref, alt, anchor, allele_index, secondary,
		study_id, file_id, genotypes, quality, filter, src
		FROM variant_entries
		WHERE chrom IN (?, ?) AND pos>=?`
	chrom := vcf.NormalizeChrom(region.Chrom)
	args := []any{chrom, "chr" + chrom, region.Start}
	if region.End > 0 {
		query += ` AND pos<=?`
		args = append(args, region.End)
	}
	query += ` AND study_id IN (` + placeholders(len(studyIDs)) + `)
		ORDER BY pos, ref, alt, allele_index, secondary, study_id`
	args = append(args, toArgs(studyIDs)...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	return &Iterator{rows: rows}, nil
}

// Next returns the next record, or nil, nil when the region is exhausted.
func (it *Iterator) Next(ctx context.Context) (*variant.Decomposed, error) {
	if it.done {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	first := it.pending
	it.pending = nil
	if first == nil {
		var err error
		first, err = it.scan()
		if err != nil || first == nil {
			return nil, err
		}
	}

	d := &variant.Decomposed{
		Chrom:    first.chrom,
		Pos:      first.pos,
		ID:       first.id,
		Ref:      first.ref,
		Alt:      first.alt,
		Anchor:   first.anchor,
		AltIndex: int(first.alleleIndex),
		Entries:  make(map[string]*variant.SourceEntry, 1),
	}
	if err := json.Unmarshal([]byte(first.secondary), &d.Secondary); err != nil {
		return nil, fmt.Errorf("decode secondary alternates at %s:%d: %w", d.Chrom, d.Pos, err)
	}

	row := first
	for {
		if err := addEntry(d, row); err != nil {
			return nil, err
		}
		next, err := it.scan()
		if err != nil {
			return nil, err
		}
		if next == nil {
			return d, nil
		}
		if !next.sameVariant(first) {
			it.pending = next
			return d, nil
		}
		row = next
	}
}

func addEntry(d *variant.Decomposed, row *entryRow) error {
	e := &variant.SourceEntry{
		StudyID: row.studyID,
		FileID:  row.fileID,
		Attributes: variant.Attributes{
			Source:  row.src,
			Quality: row.quality,
			Filter:  row.filter,
		},
	}
	if err := json.Unmarshal([]byte(row.genotypes), &e.Genotypes); err != nil {
		return fmt.Errorf("decode genotypes of study %s at %s:%d: %w", row.studyID, d.Chrom, d.Pos, err)
	}
	d.Entries[row.studyID] = e
	return nil
}

// scan reads the next row, returning nil at the end of the result set.
func (it *Iterator) scan() (*entryRow, error) {
	if !it.rows.Next() {
		it.done = true
		if err := it.rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate variants: %w", err)
		}
		return nil, nil
	}
	var r entryRow
	if err := it.rows.Scan(
		&r.chrom, &r.pos, &r.id, &r.ref, &r.alt, &r.anchor, &r.alleleIndex, &r.secondary,
		&r.studyID, &r.fileID, &r.genotypes, &r.quality, &r.filter, &r.src,
	); err != nil {
		return nil, fmt.Errorf("scan variant: %w", err)
	}
	return &r, nil
}

// Close releases the underlying result set.
func (it *Iterator) Close() error {
	it.done = true
	if it.rows == nil {
		return nil
	}
	return it.rows.Close()
}

// Collect drains the iterator into a slice.
func (it *Iterator) Collect(ctx context.Context) ([]*variant.Decomposed, error) {
	var out []*variant.Decomposed
	for {
		d, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return slices.Clip(out), nil
		}
		out = append(out, d)
	}
}
