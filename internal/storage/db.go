package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/adit301104/DrData/internal"
)

// DB is the run ledger. It records sweeps and fetch attempts, never doctor records.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "create db dir for %s", path)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, eris.Wrap(err, "enable wal")
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, eris.Wrap(err, "init schema")
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL,
  countsJson TEXT NOT NULL DEFAULT '{}',
  exportPath TEXT,
  errorMessage TEXT,
  startedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  finishedAt TEXT
);

CREATE TABLE IF NOT EXISTS fetch_attempts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  url TEXT NOT NULL,
  provider TEXT NOT NULL,
  area TEXT NOT NULL,
  specialty TEXT NOT NULL,
  ok INTEGER NOT NULL,
  records INTEGER NOT NULL DEFAULT 0,
  error TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_fetch_attempts_traceId ON fetch_attempts(traceId);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) StartRun(traceID string) error {
	if _, err := d.conn.Exec(`INSERT INTO runs (traceId, status) VALUES (?, ?)`, traceID, string(internal.RunRunning)); err != nil {
		return eris.Wrapf(err, "start run %s", traceID)
	}
	return nil
}

func (d *DB) FinishRun(traceID string, status internal.RunStatus, counts internal.RunCounts, exportPath, errorMessage *string) error {
	countsJSON, _ := json.Marshal(counts)
	res, err := d.conn.Exec(`
UPDATE runs SET status = ?, countsJson = ?, exportPath = ?, errorMessage = ?, finishedAt = CURRENT_TIMESTAMP
WHERE traceId = ?
`, string(status), string(countsJSON), exportPath, errorMessage, traceID)
	if err != nil {
		return eris.Wrapf(err, "finish run %s", traceID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("run not found: traceId=%s", traceID)
	}
	return nil
}

func (d *DB) InsertFetchAttempt(a internal.FetchAttempt) error {
	var errText *string
	if a.Error != "" {
		errText = &a.Error
	}
	_, err := d.conn.Exec(`
INSERT INTO fetch_attempts (traceId, url, provider, area, specialty, ok, records, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, a.TraceID, a.URL, a.Provider, a.Area, a.Specialty, a.OK, a.Records, errText)
	if err != nil {
		return eris.Wrap(err, "insert fetch attempt")
	}
	return nil
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, startedAt, finishedAt, status, countsJson, exportPath, errorMessage
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "list runs")
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		var status, countsJSON string
		if err := rows.Scan(&row.ID, &row.TraceID, &row.StartedAt, &row.FinishedAt, &status, &countsJSON, &row.ExportPath, &row.ErrorMessage); err != nil {
			return nil, eris.Wrap(err, "scan run")
		}
		row.Status = internal.RunStatus(status)
		_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) RunAttemptStats(traceID string) (internal.AttemptStats, error) {
	var stats internal.AttemptStats
	err := d.conn.QueryRow(`
SELECT COUNT(*), COALESCE(SUM(ok), 0), COALESCE(SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END), 0), COALESCE(SUM(records), 0)
FROM fetch_attempts WHERE traceId = ?
`, traceID).Scan(&stats.Attempts, &stats.OK, &stats.Failed, &stats.Records)
	if err != nil {
		return internal.AttemptStats{}, eris.Wrapf(err, "attempt stats %s", traceID)
	}
	return stats, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	if err != nil {
		return eris.Wrapf(err, "set metadata %s", key)
	}
	return nil
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "get metadata %s", key)
	}
	return &value, nil
}
