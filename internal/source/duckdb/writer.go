// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package duckdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/source"
)

const createTableSQL = `CREATE TABLE %s (
	row_id       BIGINT PRIMARY KEY,
	antenna1     INTEGER NOT NULL,
	antenna2     INTEGER NOT NULL,
	time         DOUBLE NOT NULL,
	data_desc_id INTEGER NOT NULL,
	field_id     INTEGER NOT NULL,
	u            DOUBLE NOT NULL,
	v            DOUBLE NOT NULL,
	w            DOUBLE NOT NULL,
	flag_row     BOOLEAN NOT NULL,
	weight       BLOB,
	data         BLOB,
	lag_data     BLOB,
	flag         BLOB
)`

// Write creates (or replaces) the named visibility table and inserts rows
// in one transaction.
func Write(ctx context.Context, path, name string, nchan, npol int, rows []source.Row, opts Options) (err error) {
	if !identRe.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	conn, err := openConn(path, opts)
	if err != nil {
		return err
	}
	defer closeWithLog(conn, "database")

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS " + catalogTable + " (name VARCHAR PRIMARY KEY, n_chan INTEGER NOT NULL, n_pol INTEGER NOT NULL, version VARCHAR)",
		"ALTER TABLE " + catalogTable + " ADD COLUMN IF NOT EXISTS version VARCHAR",
		"DROP TABLE IF EXISTS " + name,
		fmt.Sprintf(createTableSQL, name),
	}
	for _, s := range stmts {
		if _, err = tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM "+catalogTable+" WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to update catalog: %w", err)
	}
	// Every write gets a new version so cached reductions of the old
	// content are never served for the new one.
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO "+catalogTable+" (name, n_chan, n_pol, version) VALUES (?, ?, ?, ?)",
		name, nchan, npol, uuid.NewString()); err != nil {
		return fmt.Errorf("failed to update catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+name+" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeWithLog(stmt, "statement")

	ncell := nchan * npol
	for i := range rows {
		r := &rows[i]
		if len(r.Data) != ncell || len(r.Weight) != npol {
			return fmt.Errorf("row %d: data/weight do not match %d x %d", i, nchan, npol)
		}
		if _, err = stmt.ExecContext(ctx,
			i, r.Antenna1, r.Antenna2, r.Time, r.DataDescID, r.FieldID,
			r.UVW[0], r.UVW[1], r.UVW[2], r.FlagRow,
			encodeFloat(r.Weight), encodeComplex(r.Data), optional(r.LagData, encodeComplex, ncell),
			optional(r.Flag, encodeBool, ncell),
		); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logging.Info().Str("path", path).Str("table", name).Int("rows", len(rows)).Msg("Visibility table written")
	return nil
}

// optional encodes v, or a zero-filled cube when v is empty.
func optional[T any](v []T, enc func([]T) []byte, n int) []byte {
	if len(v) == 0 {
		v = make([]T, n)
	}
	return enc(v)
}
