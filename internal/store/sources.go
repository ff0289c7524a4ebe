package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/inodb/vcfdump/internal/variant"
)

// Sources returns the metadata of the requested studies that exist in the
// store, ordered by study ID. Unknown IDs are ignored.
func (s *Store) Sources(ctx context.Context, studyIDs []string) ([]variant.StudyMetadata, error) {
	if len(studyIDs) == 0 {
		return nil, nil
	}
	return s.querySources(ctx,
		`SELECT study_id, file_id, file_name, samples FROM variant_sources
		WHERE study_id IN (`+placeholders(len(studyIDs))+`) ORDER BY study_id`,
		toArgs(studyIDs)...)
}

// Studies returns every study in the store, ordered by study ID.
func (s *Store) Studies(ctx context.Context) ([]variant.StudyMetadata, error) {
	return s.querySources(ctx,
		`SELECT study_id, file_id, file_name, samples FROM variant_sources ORDER BY study_id`)
}

func (s *Store) querySources(ctx context.Context, query string, args ...any) ([]variant.StudyMetadata, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []variant.StudyMetadata
	for rows.Next() {
		var m variant.StudyMetadata
		var samples string
		if err := rows.Scan(&m.StudyID, &m.FileID, &m.FileName, &samples); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		if err := json.Unmarshal([]byte(samples), &m.SampleNames); err != nil {
			return nil, fmt.Errorf("decode samples of study %s: %w", m.StudyID, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}
