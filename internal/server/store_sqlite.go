package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tarotfutura/futura/internal/i18n"
	"github.com/tarotfutura/futura/internal/payment"
	"github.com/tarotfutura/futura/internal/reading"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

var _ Store = (*SQLiteStore)(nil)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *SQLiteStore) CreateReading(ctx context.Context, r reading.Record) error {
	unlocked := 0
	if r.Unlocked {
		unlocked = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO readings (id, user_id, user_name, focus, question, language,
			card_past, card_present, card_future, raw_text, is_premium_unlocked, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, r.UserName, string(r.Focus), r.Question, string(r.Language),
		r.Cards[0], r.Cards[1], r.Cards[2], r.RawText, unlocked, formatTime(r.CreatedAt))
	return err
}

const readingColumns = `id, user_id, user_name, focus, question, language,
	card_past, card_present, card_future, raw_text, is_premium_unlocked, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(row scanner) (reading.Record, error) {
	var (
		r               reading.Record
		focus, lang, ts string
	)
	err := row.Scan(&r.ID, &r.UserID, &r.UserName, &focus, &r.Question, &lang,
		&r.Cards[0], &r.Cards[1], &r.Cards[2], &r.RawText, &r.Unlocked, &ts)
	if err != nil {
		return reading.Record{}, err
	}
	r.Focus = reading.Focus(focus)
	r.Language = i18n.Lang(lang)
	r.CreatedAt = parseTime(ts)
	return r, nil
}

func (s *SQLiteStore) Reading(ctx context.Context, id string) (reading.Record, error) {
	r, err := scanReading(s.db.QueryRowContext(ctx, `SELECT `+readingColumns+` FROM readings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	return r, err
}

func (s *SQLiteStore) ListReadings(ctx context.Context, userID string, limit int) ([]reading.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+readingColumns+`
		FROM readings
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []reading.Record
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveInterpretation(ctx context.Context, id, raw string) (string, error) {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE readings SET raw_text = ? WHERE id = ? AND raw_text = ''
	`, raw, id); err != nil {
		return "", err
	}
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT raw_text FROM readings WHERE id = ?`, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return stored, err
}

// --- payment.Ledger ---

func (s *SQLiteStore) ReadingOwner(ctx context.Context, readingID string) (string, bool, error) {
	var (
		owner    string
		unlocked bool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, is_premium_unlocked FROM readings WHERE id = ?
	`, readingID).Scan(&owner, &unlocked)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, payment.ErrReadingNotFound
	}
	return owner, unlocked, err
}

func (s *SQLiteStore) PaymentExists(ctx context.Context, transactionID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM payments WHERE transaction_id = ?
	`, transactionID).Scan(&n)
	return n > 0, err
}

func (s *SQLiteStore) CommitUnlock(ctx context.Context, p payment.Payment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, reading_id, user_id, transaction_id, provider, amount, currency, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.ReadingID, p.UserID, p.TransactionID, p.Provider, p.Amount.String(), p.Currency, string(p.Status), formatTime(p.CreatedAt))
	if isUniqueViolation(err) {
		return payment.ErrAlreadyProcessed
	}
	if err != nil {
		return fmt.Errorf("recording payment: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE readings SET is_premium_unlocked = 1 WHERE id = ?
	`, p.ReadingID)
	if err != nil {
		return fmt.Errorf("unlocking reading: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.ErrReadingNotFound
	}
	return tx.Commit()
}

// --- horoscope.Cache ---

func (s *SQLiteStore) Horoscope(ctx context.Context, sign, day string, lang i18n.Lang) (string, bool, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `
		SELECT prediction FROM daily_horoscopes WHERE sign = ? AND day = ? AND language = ?
	`, sign, day, string(lang)).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (s *SQLiteStore) SaveHoroscope(ctx context.Context, sign, day string, lang i18n.Lang, text string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_horoscopes (sign, day, language, prediction)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (sign, day, language) DO NOTHING
	`, sign, day, string(lang), text)
	return err
}

// --- AdminStore ---

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM admins WHERE email = ?
	`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return id, hash, err
}

func (s *SQLiteStore) CreateAdmin(ctx context.Context, email, passwordHash string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admins (email, password_hash)
		VALUES (?, ?)
		ON CONFLICT (email) DO UPDATE SET password_hash = excluded.password_hash
		RETURNING id
	`, email, passwordHash).Scan(&id)
	return id, err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admin_sessions (admin_id)
		VALUES (?)
		RETURNING id
	`, adminID).Scan(&id)
	return id, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}

func (s *SQLiteStore) ListPayments(ctx context.Context, limit int) ([]payment.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reading_id, user_id, transaction_id, provider, amount, currency, status, created_at
		FROM payments
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payment.Payment
	for rows.Next() {
		var (
			p              payment.Payment
			amount, status string
			ts             string
		)
		if err := rows.Scan(&p.ID, &p.ReadingID, &p.UserID, &p.TransactionID, &p.Provider, &amount, &p.Currency, &status, &ts); err != nil {
			return nil, err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("payment %s: bad amount %q: %w", p.ID, amount, err)
		}
		p.Status = payment.Status(status)
		p.CreatedAt = parseTime(ts)
		out = append(out, p)
	}
	return out, rows.Err()
}
