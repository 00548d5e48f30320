package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/otelkit/docscan/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS scans (
	id              TEXT PRIMARY KEY,
	provider        TEXT,
	success         INTEGER NOT NULL,
	fallback_used   INTEGER NOT NULL,
	chain_attempted TEXT NOT NULL,
	quality_score   INTEGER NOT NULL,
	confidence      REAL NOT NULL,
	review_needed   INTEGER NOT NULL,
	cost_usd        REAL NOT NULL,
	response_ms     INTEGER NOT NULL,
	result          TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_scans_provider ON scans(provider);
CREATE INDEX IF NOT EXISTS idx_scans_success ON scans(success);
CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveScan(ctx context.Context, rec *model.ScanRecord) error {
	if rec.ID == "" {
		return eris.New("sqlite: scan record has no id")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var resultJSON []byte
	if rec.Result != nil {
		var err error
		resultJSON, err = json.Marshal(rec.Result)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal result")
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (id, provider, success, fallback_used, chain_attempted,
			quality_score, confidence, review_needed, cost_usd, response_ms, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Provider, boolInt(rec.Success), boolInt(rec.FallbackUsed),
		strings.Join(rec.ChainAttempted, ","), rec.QualityScore, rec.Confidence,
		boolInt(rec.ReviewNeeded), rec.CostUSD, rec.ResponseTime.Milliseconds(),
		nullable(resultJSON), rec.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert scan %s", rec.ID)
}

func (s *SQLiteStore) GetScan(ctx context.Context, id string) (*model.ScanRecord, error) {
	row := s.db.QueryRowContext(ctx, scanSelect+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: scan %s not found", id)
	}
	return rec, err
}

func (s *SQLiteStore) ListScans(ctx context.Context, filter ScanFilter) ([]model.ScanRecord, error) {
	query := scanSelect + ` WHERE 1=1`
	var args []any

	if filter.Provider != "" {
		query += ` AND provider = ?`
		args = append(args, filter.Provider)
	}
	if filter.Success != nil {
		query += ` AND success = ?`
		args = append(args, boolInt(*filter.Success))
	}
	if filter.ReviewNeeded != nil {
		query += ` AND review_needed = ?`
		args = append(args, boolInt(*filter.ReviewNeeded))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scans")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.ScanRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate scans")
}

func (s *SQLiteStore) Totals(ctx context.Context) (*Totals, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(success), 0),
			COALESCE(SUM(fallback_used), 0),
			COALESCE(SUM(review_needed), 0),
			COALESCE(SUM(cost_usd), 0)
		FROM scans`)

	var t Totals
	if err := row.Scan(&t.Scans, &t.Successes, &t.Fallbacks, &t.ReviewNeeded, &t.TotalCostUSD); err != nil {
		return nil, eris.Wrap(err, "sqlite: totals")
	}
	return &t, nil
}

const scanSelect = `SELECT id, provider, success, fallback_used, chain_attempted,
	quality_score, confidence, review_needed, cost_usd, response_ms, result, created_at
	FROM scans`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.ScanRecord, error) {
	var (
		rec        model.ScanRecord
		success    int
		fallback   int
		review     int
		chain      string
		responseMS int64
		resultJSON sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.Provider, &success, &fallback, &chain,
		&rec.QualityScore, &rec.Confidence, &review, &rec.CostUSD, &responseMS,
		&resultJSON, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan row")
	}

	rec.Success = success != 0
	rec.FallbackUsed = fallback != 0
	rec.ReviewNeeded = review != 0
	rec.ResponseTime = time.Duration(responseMS) * time.Millisecond
	if chain != "" {
		rec.ChainAttempted = strings.Split(chain, ",")
	}
	if resultJSON.Valid && resultJSON.String != "" {
		var res model.ExtractionResult
		if err := json.Unmarshal([]byte(resultJSON.String), &res); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal result for %s", rec.ID)
		}
		rec.Result = &res
	}
	return &rec, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
