package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/molset/pkg/molset/dataset"
	"github.com/cognicore/molset/pkg/molset/internalerr"
	"github.com/cognicore/molset/pkg/molset/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDSource
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:  db,
		ids: store.NewIDSource(),
	}, nil
}

// dsn turns on foreign keys for every pooled connection, not just the first
func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_pragma=foreign_keys(1)"
	}
	return path + "?_pragma=foreign_keys(1)"
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS builds (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	created_at TEXT NOT NULL,
	records INTEGER NOT NULL DEFAULT 0,
	finished INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS records (
	build_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	smiles TEXT,
	payload TEXT NOT NULL,
	PRIMARY KEY(build_id, idx),
	FOREIGN KEY(build_id) REFERENCES builds(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// CreateBuild inserts a new, unfinished build row
func (s *sqliteStore) CreateBuild(ctx context.Context, source string) (store.Build, error) {
	now := time.Now().UTC()
	b := store.Build{
		ID:        s.ids.New(now),
		Source:    source,
		CreatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (id, source, created_at) VALUES (?, ?, ?)`,
		b.ID, b.Source, now.Format(time.RFC3339Nano))
	if err != nil {
		return store.Build{}, err
	}
	return b, nil
}

// FinishBuild records the final count and marks the build complete
func (s *sqliteStore) FinishBuild(ctx context.Context, id string, records int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE builds SET records=?, finished=1 WHERE id=?`, records, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: build %s", internalerr.ErrNotFound, id)
	}
	return nil
}

// GetBuild returns a build by ID
func (s *sqliteStore) GetBuild(ctx context.Context, id string) (store.Build, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, created_at, records, finished FROM builds WHERE id=?`, id)
	b, err := scanBuild(row)
	if err == sql.ErrNoRows {
		return store.Build{}, false, nil
	}
	if err != nil {
		return store.Build{}, false, err
	}
	return b, true, nil
}

// ListBuilds returns every build, oldest first
func (s *sqliteStore) ListBuilds(ctx context.Context) ([]store.Build, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, created_at, records, finished FROM builds ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(sc scanner) (store.Build, error) {
	var (
		b        store.Build
		created  string
		finished int
	)
	if err := sc.Scan(&b.ID, &b.Source, &created, &b.Records, &finished); err != nil {
		return store.Build{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return store.Build{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	b.CreatedAt = t
	b.Finished = finished != 0
	return b, nil
}

// AppendRecords inserts recs at positions start, start+1, ... in one transaction
func (s *sqliteStore) AppendRecords(ctx context.Context, buildID string, start int, recs []dataset.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM builds WHERE id=?`, buildID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: build %s", internalerr.ErrNotFound, buildID)
	}
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (build_id, idx, smiles, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range recs {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record %d: %w", start+i, err)
		}
		var smiles sql.NullString
		if v, ok := rec.Smiles(); ok {
			smiles = sql.NullString{String: v, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, buildID, start+i, smiles, string(payload)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Records returns a build's records in index order
func (s *sqliteStore) Records(ctx context.Context, buildID string) ([]store.StoredRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, smiles, payload FROM records WHERE build_id=? ORDER BY idx`, buildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.StoredRecord
	for rows.Next() {
		var (
			rec     store.StoredRecord
			smiles  sql.NullString
			payload string
		)
		if err := rows.Scan(&rec.Index, &smiles, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &rec.Payload); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", rec.Index, err)
		}
		rec.BuildID = buildID
		rec.Smiles = smiles.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
