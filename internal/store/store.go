// Package store keeps decomposed variants and study metadata in DuckDB.
// Each study is loaded from exactly one VCF file; genotype maps, sample
// lists and secondary alternates are stored as JSON text.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding loaded variants.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path, empty for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS variant_sources (
		study_id VARCHAR PRIMARY KEY,
		file_id VARCHAR NOT NULL,
		file_name VARCHAR,
		samples VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS variant_entries (
		chrom VARCHAR NOT NULL,
		pos BIGINT NOT NULL,
		id VARCHAR,
		ref VARCHAR,
		alt VARCHAR,
		anchor VARCHAR,
		allele_index INTEGER,
		secondary VARCHAR,
		study_id VARCHAR NOT NULL,
		file_id VARCHAR,
		genotypes VARCHAR,
		quality VARCHAR,
		filter VARCHAR,
		src VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS loaded_files (
		study_id VARCHAR PRIMARY KEY,
		path VARCHAR,
		size BIGINT,
		mod_time VARCHAR
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func deleteStudy(ctx context.Context, db execer, studyID string) error {
	for _, table := range []string{"variant_entries", "variant_sources", "loaded_files"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE study_id=?", studyID); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}
