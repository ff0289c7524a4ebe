package export

import (
	"context"
	"fmt"

	"github.com/inodb/vcfdump/internal/variant"
)

// SourceLookup fetches stored study metadata. Unknown study IDs are simply
// absent from the returned slice.
type SourceLookup interface {
	Sources(ctx context.Context, studyIDs []string) ([]variant.StudyMetadata, error)
}

// ResolveStudies returns the metadata of every requested study that exists
// in the store, keyed by study ID. Missing studies are not an error.
func ResolveStudies(ctx context.Context, lookup SourceLookup, studyIDs []string) (map[string]variant.StudyMetadata, error) {
	resolved := make(map[string]variant.StudyMetadata, len(studyIDs))
	if len(studyIDs) == 0 {
		return resolved, nil
	}

	requested := make(map[string]bool, len(studyIDs))
	unique := make([]string, 0, len(studyIDs))
	for _, id := range studyIDs {
		if !requested[id] {
			requested[id] = true
			unique = append(unique, id)
		}
	}

	sources, err := lookup.Sources(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("lookup study sources: %w", err)
	}
	for _, src := range sources {
		if !requested[src.StudyID] {
			continue
		}
		if _, dup := resolved[src.StudyID]; dup {
			continue
		}
		resolved[src.StudyID] = src
	}
	return resolved, nil
}

// Header describes the output record stream of one study.
type Header struct {
	StudyID      string
	FileID       string
	SampleNames  []string
	HasGenotypes bool
}

// SynthesizeHeaders builds one header per study. Sample order is copied from
// the study metadata and fixes the output column order.
func SynthesizeHeaders(meta map[string]variant.StudyMetadata) map[string]*Header {
	headers := make(map[string]*Header, len(meta))
	for id, m := range meta {
		samples := make([]string, len(m.SampleNames))
		copy(samples, m.SampleNames)
		headers[id] = &Header{
			StudyID:      id,
			FileID:       m.FileID,
			SampleNames:  samples,
			HasGenotypes: len(samples) > 0,
		}
	}
	return headers
}
