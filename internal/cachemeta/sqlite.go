package cachemeta

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/wavecore/internal/db"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS cache_entries (
		kind       TEXT NOT NULL,
		storage_id TEXT NOT NULL,
		key        TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		size       INTEGER NOT NULL,
		checksum   INTEGER NOT NULL,
		PRIMARY KEY (kind, storage_id)
	);

	CREATE INDEX IF NOT EXISTS idx_cache_entries_expiry ON cache_entries(kind, expires_at);
`

// SQLiteStore keeps metadata in a SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the index database at path (db.Memory for tests).
func OpenSQLite(path string) (*SQLiteStore, error) {
	sqlDB, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &SQLiteStore{db: sqlDB}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (kind, storage_id, key, created_at, expires_at, size, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, storage_id) DO UPDATE SET
			key = excluded.key,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at,
			size = excluded.size,
			checksum = excluded.checksum
	`, e.Kind, e.StorageID, e.Key, e.CreatedAt.UnixNano(), e.ExpiresAt.UnixNano(), e.Size, int64(e.Checksum))
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, kind, storageID string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT kind, storage_id, key, created_at, expires_at, size, checksum
		FROM cache_entries
		WHERE kind = ? AND storage_id = ?
	`, kind, storageID)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, kind, storageID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE kind = ? AND storage_id = ?`, kind, storageID)
	return err
}

func (s *SQLiteStore) DeleteIf(ctx context.Context, kind, storageID string, createdAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE kind = ? AND storage_id = ? AND created_at = ?`,
		kind, storageID, createdAt.UnixNano())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteKind(ctx context.Context, kind string) error {
	return dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM cache_entries WHERE kind = ?`, kind)
		return err
	})
}

func (s *SQLiteStore) List(ctx context.Context, kind string) ([]Entry, error) {
	return s.query(ctx, `
		SELECT kind, storage_id, key, created_at, expires_at, size, checksum
		FROM cache_entries
		WHERE kind = ?
		ORDER BY created_at
	`, kind)
}

func (s *SQLiteStore) Expired(ctx context.Context, kind string, now time.Time) ([]Entry, error) {
	return s.query(ctx, `
		SELECT kind, storage_id, key, created_at, expires_at, size, checksum
		FROM cache_entries
		WHERE kind = ? AND expires_at <= ?
		ORDER BY expires_at
	`, kind, now.UnixNano())
}

func (s *SQLiteStore) Usage(ctx context.Context, kind string) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(size) FROM cache_entries WHERE kind = ?`, kind).Scan(&total)
	if err != nil {
		return 0, err
	}
	return dbutil.NullInt64Value(total), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var createdAt, expiresAt, checksum int64
	err := row.Scan(&e.Kind, &e.StorageID, &e.Key, &createdAt, &expiresAt, &e.Size, &checksum)
	if err != nil {
		return Entry{}, err
	}
	e.CreatedAt = time.Unix(0, createdAt)
	e.ExpiresAt = time.Unix(0, expiresAt)
	e.Checksum = uint64(checksum)
	return e, nil
}
