package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver
)

// DBFileName is the metadata database file inside the data directory.
const DBFileName = "doc-scanner.db"

// Upload statuses.
const (
	StatusDone   = "done"
	StatusFailed = "failed"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("upload not found")

// Upload is the metadata row of one uploaded document.
type Upload struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Filename    string    `json:"filename"`
	OriginalKey string    `json:"original_key"`
	CroppedKey  string    `json:"cropped_key,omitempty"`
	Detected    bool      `json:"detected"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Digest      string    `json:"digest"`
	Camera      string    `json:"camera,omitempty"`
	CapturedAt  time.Time `json:"captured_at,omitzero"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Digest returns the hex SHA3-256 digest of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MetadataDB stores upload metadata in SQLite.
type MetadataDB struct {
	db     *sql.DB
	dbPath string
}

// OpenMetadataDB opens or creates the database in dir.
func OpenMetadataDB(dir string) (*MetadataDB, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dbPath := filepath.Join(dir, DBFileName)

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	m := &MetadataDB{db: db, dbPath: dbPath}
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := m.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return m, nil
}

// Path returns the database file path.
func (m *MetadataDB) Path() string { return m.dbPath }

// Close closes the database.
func (m *MetadataDB) Close() error {
	return m.db.Close()
}

func (m *MetadataDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS uploads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		original_key TEXT NOT NULL,
		cropped_key TEXT NOT NULL DEFAULT '',
		detected INTEGER NOT NULL DEFAULT 0,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		digest TEXT NOT NULL,
		camera TEXT NOT NULL DEFAULT '',
		captured_at INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_user ON uploads(user_id);
	CREATE INDEX IF NOT EXISTS idx_uploads_digest ON uploads(digest);
	`
	_, err := m.db.ExecContext(ctx, schema)
	return err
}

// Record inserts u and returns its id. CreatedAt defaults to now.
func (m *MetadataDB) Record(ctx context.Context, u *Upload) (int64, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	query := `
	INSERT INTO uploads (user_id, filename, original_key, cropped_key, detected, width, height,
		digest, camera, captured_at, status, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := m.db.ExecContext(ctx, query,
		u.UserID, u.Filename, u.OriginalKey, u.CroppedKey, u.Detected, u.Width, u.Height,
		u.Digest, u.Camera, unixNano(u.CapturedAt), u.Status, u.Error, unixNano(u.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to record upload: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read upload id: %w", err)
	}
	u.ID = id
	return id, nil
}

const selectColumns = `SELECT id, user_id, filename, original_key, cropped_key, detected, width, height,
	digest, camera, captured_at, status, error, created_at FROM uploads`

// Get returns the upload with the given id.
func (m *MetadataDB) Get(ctx context.Context, id int64) (*Upload, error) {
	row := m.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	u, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	return u, nil
}

// List returns the most recent uploads, newest first. An empty userID
// lists every user; a limit below one means DefaultListLimit.
func (m *MetadataDB) List(ctx context.Context, userID string, limit int) ([]*Upload, error) {
	if limit < 1 {
		limit = DefaultListLimit
	}
	query := selectColumns
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var uploads []*Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(s rowScanner) (*Upload, error) {
	var (
		u                   Upload
		captured, createdAt int64
	)
	err := s.Scan(&u.ID, &u.UserID, &u.Filename, &u.OriginalKey, &u.CroppedKey, &u.Detected,
		&u.Width, &u.Height, &u.Digest, &u.Camera, &captured, &u.Status, &u.Error, &createdAt)
	if err != nil {
		return nil, err
	}
	u.CapturedAt = fromUnixNano(captured)
	u.CreatedAt = fromUnixNano(createdAt)
	return &u, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
