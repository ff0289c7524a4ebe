package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/inodb/vcfdump/internal/variant"
	"github.com/inodb/vcfdump/internal/vcf"
)

// ErrStudyLoaded is returned when loading into a study that already holds a
// file and LoadOptions.Force is not set.
var ErrStudyLoaded = errors.New("study already loaded")

var validate = validator.New()

// LoadOptions controls how a VCF file is loaded into a study.
type LoadOptions struct {
	StudyID    string `validate:"required"`
	FileID     string `validate:"required"`
	KeepSource bool   // retain each original line as the src attribute
	Force      bool   // replace an existing load of the study
}

// LoadStats reports what a load wrote.
type LoadStats struct {
	Lines   int  // data lines read
	Records int  // decomposed records written
	Skipped bool // the same file was already loaded
}

// LoadFile loads a VCF file from disk. A file whose fingerprint matches the
// one already recorded for the study is skipped unless Force is set.
func (s *Store) LoadFile(ctx context.Context, path string, opts LoadOptions, logger *zap.Logger) (LoadStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fp, err := StatFile(path)
	if err != nil {
		return LoadStats{}, fmt.Errorf("stat %s: %w", path, err)
	}

	prev, ok, err := s.LoadedFile(ctx, opts.StudyID)
	if err != nil {
		return LoadStats{}, err
	}
	if ok && !opts.Force && prev.Matches(fp) {
		logger.Info("file already loaded, skipping",
			zap.String("study", opts.StudyID),
			zap.String("file", fp.String()))
		return LoadStats{Skipped: true}, nil
	}

	p, err := vcf.NewParser(path)
	if err != nil {
		return LoadStats{}, err
	}
	defer p.Close()

	return s.load(ctx, p, filepath.Base(path), &fp, opts, logger)
}

// LoadVCF decomposes every line from p and stores the records under the
// study. fileName is recorded in the study metadata.
func (s *Store) LoadVCF(ctx context.Context, p vcf.VariantParser, fileName string, opts LoadOptions) (LoadStats, error) {
	return s.load(ctx, p, fileName, nil, opts, zap.NewNop())
}

func (s *Store) load(ctx context.Context, p vcf.VariantParser, fileName string, fp *FileFingerprint, opts LoadOptions, logger *zap.Logger) (LoadStats, error) {
	if err := validate.Struct(opts); err != nil {
		return LoadStats{}, fmt.Errorf("invalid load options: %w", err)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return LoadStats{}, fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var existing string
	err = conn.QueryRowContext(ctx, `SELECT file_id FROM variant_sources WHERE study_id=?`, opts.StudyID).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return LoadStats{}, fmt.Errorf("query study: %w", err)
	case !opts.Force:
		return LoadStats{}, fmt.Errorf("%w: study %s holds file %s", ErrStudyLoaded, opts.StudyID, existing)
	default:
		logger.Info("replacing study", zap.String("study", opts.StudyID), zap.String("previous_file", existing))
	}
	// Also clears rows left behind by an interrupted load.
	if err := deleteStudy(ctx, conn, opts.StudyID); err != nil {
		return LoadStats{}, err
	}

	study := variant.StudyMetadata{
		StudyID:     opts.StudyID,
		FileID:      opts.FileID,
		FileName:    fileName,
		SampleNames: p.SampleNames(),
	}

	stats, err := appendEntries(ctx, conn, p, study, opts.KeepSource)
	if err != nil {
		if cerr := deleteStudy(context.WithoutCancel(ctx), conn, opts.StudyID); cerr != nil {
			logger.Warn("cleanup after failed load", zap.String("study", opts.StudyID), zap.Error(cerr))
		}
		return stats, err
	}

	samples, err := json.Marshal(study.SampleNames)
	if err != nil {
		return stats, fmt.Errorf("encode samples: %w", err)
	}
	if _, err := conn.ExecContext(ctx,
		`INSERT INTO variant_sources (study_id, file_id, file_name, samples) VALUES (?, ?, ?, ?)`,
		study.StudyID, study.FileID, study.FileName, string(samples)); err != nil {
		return stats, fmt.Errorf("insert study: %w", err)
	}
	if fp != nil {
		if _, err := conn.ExecContext(ctx,
			`INSERT INTO loaded_files (study_id, path, size, mod_time) VALUES (?, ?, ?, ?)`,
			study.StudyID, fp.Path, fp.Size, fp.modTime()); err != nil {
			return stats, fmt.Errorf("record loaded file: %w", err)
		}
	}

	logger.Info("loaded study",
		zap.String("study", study.StudyID),
		zap.String("file", fileName),
		zap.Int("samples", len(study.SampleNames)),
		zap.Int("lines", stats.Lines),
		zap.Int("records", stats.Records))
	return stats, nil
}

// appendEntries batch-inserts decomposed records using the Appender API.
func appendEntries(ctx context.Context, conn *sql.Conn, p vcf.VariantParser, study variant.StudyMetadata, keepSource bool) (LoadStats, error) {
	var stats LoadStats

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "variant_entries")
		return err
	}); err != nil {
		return stats, fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for {
		if stats.Lines%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}

		v, err := p.Next()
		if err != nil {
			return stats, err
		}
		if v == nil {
			break
		}
		stats.Lines++

		records, err := vcf.Decompose(v, study, keepSource)
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", p.LineNumber(), err)
		}
		if len(records) == 0 {
			continue
		}

		// Records from one line share their source entry.
		entry := records[0].Entries[study.StudyID]
		genotypes, err := json.Marshal(entry.Genotypes)
		if err != nil {
			return stats, fmt.Errorf("line %d: encode genotypes: %w", p.LineNumber(), err)
		}

		for _, d := range records {
			secondary, err := json.Marshal(d.Secondary)
			if err != nil {
				return stats, fmt.Errorf("line %d: encode secondary alternates: %w", p.LineNumber(), err)
			}
			if err := appender.AppendRow(
				d.Chrom, d.Pos, d.ID, d.Ref, d.Alt, d.Anchor, int32(d.AltIndex), string(secondary),
				study.StudyID, study.FileID, string(genotypes),
				entry.Attributes.Quality, entry.Attributes.Filter, entry.Attributes.Source,
			); err != nil {
				return stats, fmt.Errorf("append variant entry: %w", err)
			}
			stats.Records++
		}
	}

	if err := appender.Flush(); err != nil {
		return stats, fmt.Errorf("flush entries: %w", err)
	}
	return stats, nil
}
