package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS http_cache (
	key        TEXT PRIMARY KEY,
	method     TEXT NOT NULL,
	url        TEXT NOT NULL,
	status     INTEGER NOT NULL,
	header     TEXT NOT NULL,
	body       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_http_cache_expires_at ON http_cache(expires_at);
`

// Migrate creates the cache schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetResponse(ctx context.Context, key string) (*CachedResponse, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, method, url, status, header, body, fetched_at, expires_at
		 FROM http_cache WHERE key = ? AND expires_at > ?`,
		key, s.now().Unix(),
	)

	var (
		cr                   CachedResponse
		headerJSON           string
		fetchedAt, expiresAt int64
	)
	err := row.Scan(&cr.Key, &cr.Method, &cr.URL, &cr.Status, &headerJSON, &cr.Body, &fetchedAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached response")
	}
	if err := json.Unmarshal([]byte(headerJSON), &cr.Header); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached header")
	}
	cr.FetchedAt = time.Unix(fetchedAt, 0).UTC()
	cr.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &cr, nil
}

func (s *SQLiteStore) PutResponse(ctx context.Context, resp *CachedResponse) error {
	headerJSON, err := json.Marshal(resp.Header)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal header")
	}
	body := resp.Body
	if body == nil {
		body = []byte{}
	}
	fetchedAt := resp.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO http_cache (key, method, url, status, header, body, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   method = excluded.method, url = excluded.url, status = excluded.status,
		   header = excluded.header, body = excluded.body,
		   fetched_at = excluded.fetched_at, expires_at = excluded.expires_at`,
		resp.Key, resp.Method, resp.URL, resp.Status, string(headerJSON), body,
		fetchedAt.Unix(), resp.ExpiresAt.Unix(),
	)
	return eris.Wrap(err, "sqlite: put cached response")
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM http_cache WHERE expires_at <= ?`, s.now().Unix(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired responses")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}
