package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/voyagekit/resdesk/pkg/booking"
	"github.com/voyagekit/resdesk/pkg/constants"
	"github.com/voyagekit/resdesk/pkg/errors"
)

// SQLite implements Store using modernc.org/sqlite. The draft's document
// layers are stored as JSON text columns; the status column carries the
// lifecycle state and is the target of the check-and-set commit.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path, configures WAL mode,
// and runs the schema migration.
func NewSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewStoreError("sqlite", "open", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.NewStoreError("sqlite", pragma, err)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS drafts (
	id            TEXT PRIMARY KEY,
	raw_text      TEXT NOT NULL,
	parsed        TEXT,
	normalized    TEXT,
	manual        TEXT,
	flags         TEXT NOT NULL DEFAULT '[]',
	confidence    REAL NOT NULL DEFAULT 0,
	notes         TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'draft',
	reject_reason TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS reservations (
	id           TEXT PRIMARY KEY,
	draft_id     TEXT NOT NULL UNIQUE REFERENCES drafts(id),
	record       TEXT NOT NULL,
	flags        TEXT NOT NULL DEFAULT '[]',
	audit_diff   TEXT,
	committed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_drafts_status ON drafts(status);
CREATE INDEX IF NOT EXISTS idx_drafts_created_at ON drafts(created_at);
`

func (s *SQLite) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	if err != nil {
		return errors.NewStoreError("sqlite", "migrate", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateDraft implements Store.
func (s *SQLite) CreateDraft(ctx context.Context, draft *booking.Draft) error {
	flags, err := marshalJSON(draft.Flags)
	if err != nil {
		return errors.NewStoreError("sqlite", "marshal flags", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO drafts (id, raw_text, flags, confidence, notes, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.ID, draft.RawText, flags, draft.Confidence, draft.Notes,
		string(draft.Status), draft.CreatedAt.UTC(), draft.UpdatedAt.UTC(),
	)
	if err != nil {
		return errors.NewStoreError("sqlite", "insert draft", err)
	}
	return nil
}

// GetDraft implements Store.
func (s *SQLite) GetDraft(ctx context.Context, id string) (*booking.Draft, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, raw_text, parsed, normalized, manual, flags, confidence, notes,
		        status, reject_reason, created_at, updated_at
		 FROM drafts WHERE id = ?`, id)
	return scanDraft(row, id)
}

// SaveParsed implements Store.
func (s *SQLite) SaveParsed(ctx context.Context, id string, parsed booking.Document, confidence float64, notes string) error {
	doc, err := marshalJSON(parsed)
	if err != nil {
		return errors.NewStoreError("sqlite", "marshal parsed", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE drafts SET parsed = ?, confidence = ?, notes = ?, updated_at = ? WHERE id = ?`,
		doc, confidence, notes, time.Now().UTC(), id,
	)
	if err != nil {
		return errors.NewStoreError("sqlite", "save parsed", err)
	}
	return checkRowsAffected(res, "draft", id)
}

// SaveNormalized implements Store.
func (s *SQLite) SaveNormalized(ctx context.Context, id string, rec *booking.Record) error {
	doc, err := marshalJSON(rec.Document())
	if err != nil {
		return errors.NewStoreError("sqlite", "marshal normalized", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE drafts SET normalized = ?, updated_at = ? WHERE id = ?`,
		doc, time.Now().UTC(), id,
	)
	if err != nil {
		return errors.NewStoreError("sqlite", "save normalized", err)
	}
	return checkRowsAffected(res, "draft", id)
}

// SaveManual implements Store.
func (s *SQLite) SaveManual(ctx context.Context, id string, manual booking.Patch) error {
	doc, err := marshalJSON(manual)
	if err != nil {
		return errors.NewStoreError("sqlite", "marshal manual", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE drafts SET manual = ?, updated_at = ? WHERE id = ?`,
		doc, time.Now().UTC(), id,
	)
	if err != nil {
		return errors.NewStoreError("sqlite", "save manual", err)
	}
	return checkRowsAffected(res, "draft", id)
}

// AppendFlags implements Store. The read-modify-write runs in a transaction
// so concurrent appenders cannot drop each other's flags.
func (s *SQLite) AppendFlags(ctx context.Context, id string, flags []booking.Flag) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("sqlite", "begin append flags", err)
	}
	defer tx.Rollback()

	var raw string
	if err := tx.QueryRowContext(ctx, `SELECT flags FROM drafts WHERE id = ?`, id).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return errors.NewNotFoundError("draft", id)
		}
		return errors.NewStoreError("sqlite", "read flags", err)
	}

	var existing []booking.Flag
	if err := json.Unmarshal([]byte(raw), &existing); err != nil {
		return errors.NewStoreError("sqlite", "decode flags", err)
	}
	draft := booking.Draft{Flags: existing}
	draft.AppendFlags(flags)

	merged, err := marshalJSON(draft.Flags)
	if err != nil {
		return errors.NewStoreError("sqlite", "marshal flags", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE drafts SET flags = ?, updated_at = ? WHERE id = ?`,
		merged, time.Now().UTC(), id,
	); err != nil {
		return errors.NewStoreError("sqlite", "append flags", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.NewStoreError("sqlite", "commit append flags", err)
	}
	return nil
}

// SwapStatus implements Store. The WHERE clause on the current status plus
// the rows-affected check is the atomicity the commit path depends on.
func (s *SQLite) SwapStatus(ctx context.Context, id string, from, to booking.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE drafts SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), time.Now().UTC(), id, string(from),
	)
	if err != nil {
		return errors.NewStoreError("sqlite", "swap status", err)
	}
	return s.checkSwap(ctx, res, id, from)
}

// RejectDraft implements Store.
func (s *SQLite) RejectDraft(ctx context.Context, id string, from booking.Status, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE drafts SET status = ?, reject_reason = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(booking.StatusRejected), reason, time.Now().UTC(), id, string(from),
	)
	if err != nil {
		return errors.NewStoreError("sqlite", "reject draft", err)
	}
	return s.checkSwap(ctx, res, id, from)
}

// checkSwap distinguishes a missing draft from a lost status race.
func (s *SQLite) checkSwap(ctx context.Context, res sql.Result, id string, from booking.Status) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewStoreError("sqlite", "rows affected", err)
	}
	if n > 0 {
		return nil
	}

	var current string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM drafts WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return errors.NewNotFoundError("draft", id)
	}
	if err != nil {
		return errors.NewStoreError("sqlite", "read status", err)
	}
	return errors.Wrapf(errors.ErrInvalidState, "draft %s is %q, expected %q", id, current, from)
}

// SaveReservation implements Store.
func (s *SQLite) SaveReservation(ctx context.Context, r *booking.Reservation) error {
	record, err := marshalJSON(r.Record.Document())
	if err != nil {
		return errors.NewStoreError("sqlite", "marshal record", err)
	}
	flags, err := marshalJSON(r.Flags)
	if err != nil {
		return errors.NewStoreError("sqlite", "marshal flags", err)
	}
	diff, err := marshalJSON(r.AuditDiff)
	if err != nil {
		return errors.NewStoreError("sqlite", "marshal audit diff", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reservations (id, draft_id, record, flags, audit_diff, committed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.DraftID, record, flags, diff, r.CommittedAt.UTC(),
	)
	if err != nil {
		return errors.NewStoreError("sqlite", "insert reservation", err)
	}
	return nil
}

// GetReservation implements Store.
func (s *SQLite) GetReservation(ctx context.Context, id string) (*booking.Reservation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, draft_id, record, flags, audit_diff, committed_at
		 FROM reservations WHERE id = ?`, id)
	return scanReservation(row, id)
}

// GetReservationByDraft implements Store.
func (s *SQLite) GetReservationByDraft(ctx context.Context, draftID string) (*booking.Reservation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, draft_id, record, flags, audit_diff, committed_at
		 FROM reservations WHERE draft_id = ?`, draftID)
	return scanReservation(row, draftID)
}

// ListDrafts implements Store.
func (s *SQLite) ListDrafts(ctx context.Context, status booking.Status, limit int) ([]*booking.Draft, error) {
	if limit <= 0 {
		limit = constants.DefaultListLimit
	}

	query := `SELECT id, raw_text, parsed, normalized, manual, flags, confidence, notes,
	                 status, reject_reason, created_at, updated_at
	          FROM drafts`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("sqlite", "list drafts", err)
	}
	defer rows.Close()

	var drafts []*booking.Draft
	for rows.Next() {
		draft, err := scanDraft(rows, "")
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("sqlite", "list drafts", err)
	}
	return drafts, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(row scanner, id string) (*booking.Draft, error) {
	var (
		draft                      booking.Draft
		parsed, normalized, manual sql.NullString
		flags, status              string
	)
	err := row.Scan(&draft.ID, &draft.RawText, &parsed, &normalized, &manual, &flags,
		&draft.Confidence, &draft.Notes, &status, &draft.RejectReason,
		&draft.CreatedAt, &draft.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("draft", id)
	}
	if err != nil {
		return nil, errors.NewStoreError("sqlite", "scan draft", err)
	}

	draft.Status = booking.Status(status)
	if err := json.Unmarshal([]byte(flags), &draft.Flags); err != nil {
		return nil, errors.NewStoreError("sqlite", "decode flags", err)
	}
	if parsed.Valid {
		if err := json.Unmarshal([]byte(parsed.String), &draft.Parsed); err != nil {
			return nil, errors.NewStoreError("sqlite", "decode parsed", err)
		}
	}
	if normalized.Valid {
		var doc booking.Document
		if err := json.Unmarshal([]byte(normalized.String), &doc); err != nil {
			return nil, errors.NewStoreError("sqlite", "decode normalized", err)
		}
		draft.Normalized = booking.FromDocument(doc)
	}
	if manual.Valid {
		if err := json.Unmarshal([]byte(manual.String), &draft.Manual); err != nil {
			return nil, errors.NewStoreError("sqlite", "decode manual", err)
		}
	}
	return &draft, nil
}

func scanReservation(row scanner, id string) (*booking.Reservation, error) {
	var (
		res          booking.Reservation
		record       string
		flags        string
		diff         sql.NullString
	)
	err := row.Scan(&res.ID, &res.DraftID, &record, &flags, &diff, &res.CommittedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("reservation", id)
	}
	if err != nil {
		return nil, errors.NewStoreError("sqlite", "scan reservation", err)
	}

	var doc booking.Document
	if err := json.Unmarshal([]byte(record), &doc); err != nil {
		return nil, errors.NewStoreError("sqlite", "decode record", err)
	}
	res.Record = booking.FromDocument(doc)
	if err := json.Unmarshal([]byte(flags), &res.Flags); err != nil {
		return nil, errors.NewStoreError("sqlite", "decode flags", err)
	}
	if diff.Valid && diff.String != "" && diff.String != "null" {
		if err := json.Unmarshal([]byte(diff.String), &res.AuditDiff); err != nil {
			return nil, errors.NewStoreError("sqlite", "decode audit diff", err)
		}
	}
	return &res, nil
}

func checkRowsAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewStoreError("sqlite", "rows affected", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(resource, id)
	}
	return nil
}

func marshalJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
