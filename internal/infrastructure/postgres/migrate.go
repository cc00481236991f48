package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ApplyMigrations ejecuta en orden léxico los *.sql de fsys que no figuren en schema_migrations.
// Cada script corre en su propia transacción.
func ApplyMigrations(ctx context.Context, q Querier, fsys fs.FS, log zerolog.Logger) ([]string, error) {
	_, err := q.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(200) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return nil, storageErr("create schema_migrations", err)
	}

	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("listar migraciones: %w", err)
	}
	sort.Strings(names)

	var applied []string
	for _, name := range names {
		version := strings.TrimSuffix(name, ".sql")
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists); err != nil {
			return applied, storageErr("check migration", err)
		}
		if exists {
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, fmt.Errorf("leer %s: %w", name, err)
		}
		if err := applyOne(ctx, q, version, string(script)); err != nil {
			return applied, err
		}
		log.Info().Str("version", version).Msg("migración aplicada")
		applied = append(applied, version)
	}
	return applied, nil
}

func applyOne(ctx context.Context, q Querier, version, script string) error {
	tx, err := q.Begin(ctx)
	if err != nil {
		return storageErr("begin migration "+version, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, script); err != nil {
		return fmt.Errorf("migración %s: %w", version, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`, version, time.Now().UTC()); err != nil {
		return storageErr("record migration "+version, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit migration "+version, err)
	}
	return nil
}
