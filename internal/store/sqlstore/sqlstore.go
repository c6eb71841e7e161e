// Package sqlstore persists users in PostgreSQL or SQLite through sqlx.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roadbuddy/quizbot/core/logger"
	"github.com/roadbuddy/quizbot/internal/model"
)

type userRow struct {
	ID              int64          `db:"id"`
	ChatID          int64          `db:"chat_id"`
	Phase           string         `db:"phase"`
	WrongCount      int            `db:"wrong_answer_count"`
	CorrectCount    int            `db:"correct_answer_count"`
	PendingAnswerID string         `db:"current_correct_answer_id"`
	Explanation     string         `db:"explanation"`
	Country         sql.NullString `db:"country"`
	City            sql.NullString `db:"city"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

const userColumns = `id, chat_id, phase, wrong_answer_count, correct_answer_count,
	current_correct_answer_id, explanation, country, city, created_at, updated_at`

// Store is a sqlx backed user store.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New wraps an open database. Placeholders are rebound for the driver.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// GetOrCreate loads the chat's user, inserting a fresh onboarding record first if none exists.
func (s *Store) GetOrCreate(ctx context.Context, chatID int64) (*model.User, error) {
	now := s.now().UTC()
	insert := s.db.Rebind(`INSERT INTO users (chat_id, phase, created_at, updated_at)
		VALUES (?, ?, ?, ?) ON CONFLICT (chat_id) DO NOTHING`)
	res, err := s.db.ExecContext(ctx, insert, chatID, string(model.PhaseOnboarding), now, now)
	if err != nil {
		return nil, fmt.Errorf("create user %d: %w", chatID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.Info(ctx, logger.CompStore, "user.created", slog.Int64("chat_id", chatID))
	}

	var row userRow
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE chat_id = ?`)
	if err := s.db.GetContext(ctx, &row, query, chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load user %d: %w", chatID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("load user %d: %w", chatID, err)
	}
	return row.toModel(), nil
}

// Save overwrites the stored user. Unknown chats yield model.ErrNotFound.
func (s *Store) Save(ctx context.Context, u *model.User) error {
	row := fromModel(u)
	row.UpdatedAt = s.now().UTC()

	res, err := s.db.NamedExecContext(ctx, `UPDATE users SET
		phase = :phase,
		wrong_answer_count = :wrong_answer_count,
		correct_answer_count = :correct_answer_count,
		current_correct_answer_id = :current_correct_answer_id,
		explanation = :explanation,
		country = :country,
		city = :city,
		updated_at = :updated_at
		WHERE chat_id = :chat_id`, row)
	if err != nil {
		return fmt.Errorf("save user %d: %w", u.ChatID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save user %d: %w", u.ChatID, err)
	}
	if n == 0 {
		return fmt.Errorf("save user %d: %w", u.ChatID, model.ErrNotFound)
	}
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (r userRow) toModel() *model.User {
	return &model.User{
		ID:              r.ID,
		ChatID:          r.ChatID,
		Phase:           model.Phase(r.Phase),
		WrongCount:      r.WrongCount,
		CorrectCount:    r.CorrectCount,
		PendingAnswerID: r.PendingAnswerID,
		Explanation:     r.Explanation,
		Location: model.Location{
			Country: model.Country(r.Country.String),
			City:    model.City(r.City.String),
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromModel(u *model.User) userRow {
	return userRow{
		ID:              u.ID,
		ChatID:          u.ChatID,
		Phase:           string(u.Phase),
		WrongCount:      u.WrongCount,
		CorrectCount:    u.CorrectCount,
		PendingAnswerID: u.PendingAnswerID,
		Explanation:     u.Explanation,
		Country:         nullString(string(u.Location.Country)),
		City:            nullString(string(u.Location.City)),
		CreatedAt:       u.CreatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
