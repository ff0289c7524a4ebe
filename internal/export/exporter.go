package export

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vcfdump/internal/variant"
)

// Iterator yields decomposed records already filtered by region and study,
// ordered by chromosome and position.
type Iterator interface {
	// Next returns the next record, or nil, nil when the sequence is exhausted.
	Next(ctx context.Context) (*variant.Decomposed, error)
}

// Sink receives reconstructed records, per study, in input order.
type Sink func(studyID string, rec *variant.Record) error

// Summary counts what an export processed.
type Summary struct {
	Variants int            // decomposed records read
	Records  map[string]int // records delivered per study
	Failed   int            // variant/study pairs skipped
}

// Result is the buffered output of Export.
type Result struct {
	Region  variant.Region
	Records map[string][]*variant.Record
	Failed  int
}

// Exporter drives reconstruction over a stream of decomposed records.
type Exporter struct {
	recon   *Reconstructor
	workers int
	logger  *zap.Logger
}

// NewExporter creates an exporter around the given reconstructor.
func NewExporter(r *Reconstructor) *Exporter {
	return &Exporter{
		recon:   r,
		workers: runtime.NumCPU(),
		logger:  zap.NewNop(),
	}
}

// SetWorkers sets the number of reconstruction workers. Values below 1 use
// runtime.NumCPU().
func (e *Exporter) SetWorkers(n int) {
	if n < 1 {
		n = runtime.NumCPU()
	}
	e.workers = n
}

// SetLogger sets the logger for warning and info messages.
func (e *Exporter) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Export reconstructs every record from it for the requested studies and
// returns them grouped by study in input order. Records that cannot be
// reconstructed for a study are skipped and counted in Result.Failed; only
// iterator failures and cancellation abort the export.
func (e *Exporter) Export(ctx context.Context, it Iterator, region variant.Region, studyIDs []string) (*Result, error) {
	res := &Result{
		Region:  region,
		Records: make(map[string][]*variant.Record, len(studyIDs)),
	}
	for _, id := range studyIDs {
		res.Records[id] = []*variant.Record{}
	}

	summary, err := e.ExportTo(ctx, it, region, studyIDs, func(studyID string, rec *variant.Record) error {
		res.Records[studyID] = append(res.Records[studyID], rec)
		return nil
	})
	res.Failed = summary.Failed
	return res, err
}

// ExportTo streams reconstructed records to sink instead of buffering them.
// The sink is called from a single goroutine, in input order per study.
func (e *Exporter) ExportTo(ctx context.Context, it Iterator, region variant.Region, studyIDs []string, sink Sink) (Summary, error) {
	studyIDs = uniqueStudies(studyIDs)
	summary := Summary{Records: make(map[string]int, len(studyIDs))}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	items := make(chan WorkItem, 2*e.workers)

	g.Go(func() error {
		defer close(items)
		for seq := 0; ; seq++ {
			d, err := it.Next(gctx)
			if err != nil {
				return fmt.Errorf("read variant: %w", err)
			}
			if d == nil {
				return nil
			}
			select {
			case items <- WorkItem{Seq: seq, Variant: d}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	results := e.recon.ParallelReconstruct(items, studyIDs, e.workers)

	g.Go(func() error {
		return OrderedCollect(results, func(r WorkResult) error {
			summary.Variants++
			for _, id := range r.Studies {
				out, ok := r.Outcomes[id]
				if !ok {
					continue
				}
				if out.Err != nil {
					summary.Failed++
					e.logFailure(r.Variant, id, out.Err)
					reconstructionFailures.WithLabelValues(failureKind(out.Err)).Inc()
					continue
				}
				if err := sink(id, out.Record); err != nil {
					cancel()
					return fmt.Errorf("write record for study %s: %w", id, err)
				}
				summary.Records[id]++
				exportedRecords.WithLabelValues(id).Inc()
			}
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		return summary, err
	}

	e.logger.Info("export finished",
		zap.String("region", region.String()),
		zap.Int("variants", summary.Variants),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// uniqueStudies drops repeated IDs, keeping first occurrences in order.
func uniqueStudies(studyIDs []string) []string {
	seen := make(map[string]bool, len(studyIDs))
	out := make([]string, 0, len(studyIDs))
	for _, id := range studyIDs {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (e *Exporter) logFailure(d *variant.Decomposed, studyID string, err error) {
	fields := []zap.Field{
		zap.String("chrom", d.Chrom),
		zap.Int64("pos", d.Pos),
		zap.String("study", studyID),
		zap.Error(err),
	}

	var unresolvable *UnresolvableAlleleError
	var malformed *MalformedGenotypeError
	switch {
	case errors.As(err, &unresolvable) && unresolvable.Sample != "":
		fields = append(fields, zap.String("sample", unresolvable.Sample), zap.String("token", unresolvable.Token))
	case errors.As(err, &malformed):
		fields = append(fields, zap.String("sample", malformed.Sample), zap.String("genotype", malformed.Genotype))
	}

	e.logger.Warn("skipping variant that cannot be reconstructed", fields...)
}

// SliceIterator iterates over an in-memory slice of records.
type SliceIterator struct {
	records []*variant.Decomposed
	next    int
}

// NewSliceIterator creates an iterator over records.
func NewSliceIterator(records []*variant.Decomposed) *SliceIterator {
	return &SliceIterator{records: records}
}

// Next returns the next record, or nil, nil at the end.
func (s *SliceIterator) Next(ctx context.Context) (*variant.Decomposed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.records) {
		return nil, nil
	}
	d := s.records[s.next]
	s.next++
	return d, nil
}
