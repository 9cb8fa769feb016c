package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/anonyreport/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "anonyreport.db"

// State keys.
const (
	keySessionToken = "session_token"
	keyCompleted    = "form_completed"
)

// StateDB stores the session token, the completed flag and the attempt log.
// It is safe for concurrent use.
type StateDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now is the time source for attempt timestamps.
	now func() time.Time
}

// Options configures StateDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a StateDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*StateDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// The directory holds the session token; keep it private.
		if err := os.MkdirAll(dbDir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &StateDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *StateDB) Close() error {
	return sdb.db.Close()
}

// Path returns the database file path.
func (sdb *StateDB) Path() string {
	return sdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (sdb *StateDB) createTables() error {
	schema := `
	-- Key/value state that survives between runs
	CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	-- One row per explicit submit
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		token_digest TEXT NOT NULL,
		status TEXT NOT NULL,
		detail TEXT,
		record_digest TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_timestamp ON submissions(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// get returns the value of key and whether it exists.
func (sdb *StateDB) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := sdb.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// set stores value under key.
func (sdb *StateDB) set(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO state (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := sdb.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// SessionToken returns the stored session token, creating a random one on first use.
func (sdb *StateDB) SessionToken(ctx context.Context) (string, error) {
	token, ok, err := sdb.get(ctx, keySessionToken)
	if err != nil {
		return "", err
	}
	if ok {
		return token, nil
	}

	token = uuid.NewString()
	// INSERT OR IGNORE keeps the first token if two processes race.
	if _, err := sdb.db.ExecContext(ctx, `INSERT OR IGNORE INTO state (key, value) VALUES (?, ?)`, keySessionToken, token); err != nil {
		return "", fmt.Errorf("failed to store session token: %w", err)
	}

	token, _, err = sdb.get(ctx, keySessionToken)
	return token, err
}

// MarkCompleted sets the completed flag.
func (sdb *StateDB) MarkCompleted(ctx context.Context) error {
	return sdb.set(ctx, keyCompleted, "true")
}

// Completed reports whether a response from this machine was accepted.
func (sdb *StateDB) Completed(ctx context.Context) (bool, error) {
	value, _, err := sdb.get(ctx, keyCompleted)
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

// Reset forgets the session token, the completed flag and the attempt log.
func (sdb *StateDB) Reset(ctx context.Context) error {
	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reset: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM state`); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions`); err != nil {
		return fmt.Errorf("failed to clear submissions: %w", err)
	}
	return tx.Commit()
}

// AttemptRecord is a stored submission attempt.
type AttemptRecord struct {
	ID           int64
	TokenDigest  string
	Status       model.SubmissionStatus
	Detail       string
	RecordDigest string
	Timestamp    time.Time
}

// RecordAttempt appends an attempt to the log. Only digests of the token and
// the record are stored.
func (sdb *StateDB) RecordAttempt(ctx context.Context, attempt model.Attempt) error {
	recordDigest, err := RecordDigest(attempt.Record)
	if err != nil {
		return err
	}

	at := attempt.At
	if at.IsZero() {
		at = sdb.now()
	}

	query := `
	INSERT INTO submissions (token_digest, status, detail, record_digest, timestamp)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err = sdb.db.ExecContext(ctx, query,
		Digest([]byte(attempt.Token)),
		attempt.Status.String(),
		attempt.Detail,
		recordDigest,
		at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// Attempts returns every recorded attempt, oldest first.
func (sdb *StateDB) Attempts(ctx context.Context) ([]AttemptRecord, error) {
	query := `
	SELECT id, token_digest, status, detail, record_digest, timestamp
	FROM submissions
	ORDER BY id
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var results []AttemptRecord
	for rows.Next() {
		var rec AttemptRecord
		var status, timestamp string
		var detail sql.NullString

		if err := rows.Scan(&rec.ID, &rec.TokenDigest, &status, &detail, &rec.RecordDigest, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		rec.Status = model.SubmissionStatus(status)
		rec.Detail = detail.String
		rec.Timestamp = parseTimestamp(timestamp)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// Digest returns the hex SHA3-256 digest of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RecordDigest returns the digest of the record's JSON encoding, the same
// bytes sent to the collection endpoint.
func RecordDigest(record model.SubmissionRecord) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	return Digest(data), nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses a stored timestamp, returning the zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
