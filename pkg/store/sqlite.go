package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/peerfact-labs/peerfact/pkg/contracts"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a durable implementation of every store interface backed by
// a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return NewSQLiteStore(db)
}

// NewSQLiteStore wraps an existing database handle and runs migrations.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		reputation REAL NOT NULL DEFAULT 1.0,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		author_id TEXT NOT NULL,
		body TEXT NOT NULL,
		link TEXT NOT NULL DEFAULT '',
		annotation JSON,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS verifications (
		id TEXT PRIMARY KEY,
		claim_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		stance TEXT NOT NULL,
		source_url TEXT NOT NULL DEFAULT '',
		explanation TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_verifications_claim ON verifications(claim_id);
	CREATE TABLE IF NOT EXISTS status_checks (
		id TEXT PRIMARY KEY,
		client_name TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user contracts.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, reputation, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Username, user.Reputation, user.CreatedAt)
	return err
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (contracts.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, reputation, created_at FROM users WHERE id = ?`, id)
	var u contracts.User
	err := row.Scan(&u.ID, &u.Username, &u.Reputation, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return contracts.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]contracts.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, reputation, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []contracts.User
	for rows.Next() {
		var u contracts.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Reputation, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) CreateClaim(ctx context.Context, claim contracts.Claim) error {
	var annotation []byte
	if claim.Annotation != nil {
		var err error
		annotation, err = json.Marshal(claim.Annotation)
		if err != nil {
			return fmt.Errorf("marshal annotation: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO claims (id, author_id, body, link, annotation, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		claim.ID, claim.AuthorID, claim.Text, claim.Link, annotation, claim.CreatedAt)
	return err
}

func (s *SQLiteStore) GetClaim(ctx context.Context, id string) (contracts.Claim, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, author_id, body, link, annotation, created_at FROM claims WHERE id = ?`, id)
	claim, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return contracts.Claim{}, ErrClaimNotFound
	}
	return claim, err
}

func (s *SQLiteStore) ListClaims(ctx context.Context, limit int) ([]contracts.Claim, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, author_id, body, link, annotation, created_at FROM claims ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var claims []contracts.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (contracts.Claim, error) {
	var c contracts.Claim
	var annotation []byte
	if err := row.Scan(&c.ID, &c.AuthorID, &c.Text, &c.Link, &annotation, &c.CreatedAt); err != nil {
		return contracts.Claim{}, err
	}
	if len(annotation) > 0 {
		var a contracts.Annotation
		if err := json.Unmarshal(annotation, &a); err == nil {
			c.Annotation = &a
		}
		// A malformed annotation is dropped, not fatal: it is opaque
		// display data and must never break a claim read.
	}
	return c, nil
}

func (s *SQLiteStore) AppendVerification(ctx context.Context, v contracts.Verification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verifications (id, claim_id, author_id, stance, source_url, explanation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.ClaimID, v.AuthorID, string(v.Stance), v.SourceURL, v.Explanation, v.CreatedAt)
	return err
}

func (s *SQLiteStore) VerificationsForClaim(ctx context.Context, claimID string) ([]contracts.Verification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claim_id, author_id, stance, source_url, explanation, created_at
		 FROM verifications WHERE claim_id = ? ORDER BY created_at DESC, id DESC`, claimID)
	if err != nil {
		return nil, err
	}
	return collectVerifications(rows)
}

func (s *SQLiteStore) AllVerifications(ctx context.Context) ([]contracts.Verification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claim_id, author_id, stance, source_url, explanation, created_at
		 FROM verifications ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return collectVerifications(rows)
}

func collectVerifications(rows *sql.Rows) ([]contracts.Verification, error) {
	defer func() { _ = rows.Close() }()
	var out []contracts.Verification
	for rows.Next() {
		var v contracts.Verification
		var stance string
		if err := rows.Scan(&v.ID, &v.ClaimID, &v.AuthorID, &stance, &v.SourceURL, &v.Explanation, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.Stance = contracts.Stance(stance)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Reputation(ctx context.Context, userID string) (float64, error) {
	row := s.db.QueryRowContext(ctx, `SELECT reputation FROM users WHERE id = ?`, userID)
	var rep float64
	err := row.Scan(&rep)
	if errors.Is(err, sql.ErrNoRows) {
		return contracts.DefaultReputation, nil
	}
	if err != nil {
		return 0, err
	}
	return rep, nil
}

// AdjustReputation applies the delta in a single UPDATE so concurrent
// adjustments from different verifications never lose an update.
func (s *SQLiteStore) AdjustReputation(ctx context.Context, userID string, delta float64) (float64, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE users SET reputation = reputation + ? WHERE id = ? RETURNING reputation`,
		delta, userID)
	var rep float64
	err := row.Scan(&rep)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	return rep, nil
}

func (s *SQLiteStore) RecordStatus(ctx context.Context, check StatusCheck) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO status_checks (id, client_name, timestamp) VALUES (?, ?, ?)`,
		check.ID, check.ClientName, check.Timestamp)
	return err
}

func (s *SQLiteStore) ListStatus(ctx context.Context) ([]StatusCheck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_name, timestamp FROM status_checks ORDER BY timestamp`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var checks []StatusCheck
	for rows.Next() {
		var c StatusCheck
		if err := rows.Scan(&c.ID, &c.ClientName, &c.Timestamp); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}
