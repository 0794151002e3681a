package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/dmitrijs2005/roomchat/internal/dbx"
	"github.com/dmitrijs2005/roomchat/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// LockRoom takes a transaction-scoped advisory lock keyed by the room id.
func (r *PostgresRepository) LockRoom(ctx context.Context, roomID string) error {
	query := `SELECT pg_advisory_xact_lock(hashtext($1))`
	if _, err := r.db.ExecContext(ctx, query, roomID); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

func (r *PostgresRepository) LastCreatedAt(ctx context.Context, roomID string) (time.Time, error) {
	query := `
		SELECT MAX(created_at)
		FROM messages
		WHERE room_id = $1
	`
	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, roomID).Scan(&last); err != nil {
		return time.Time{}, fmt.Errorf("db error: %w", err)
	}
	if !last.Valid {
		return time.Time{}, nil
	}
	return last.Time, nil
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (id, room_id, text, author, reply_to, deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query, m.ID, m.RoomID, m.Text, m.Author, m.ReplyTo, m.Deleted, m.CreatedAt); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, roomID, id string) (*models.Message, error) {
	query := `
		SELECT id, room_id, text, author, reply_to, deleted, created_at, edited_at
		FROM messages
		WHERE room_id = $1 AND id = $2
	`
	m, err := scanMessage(r.db.QueryRowContext(ctx, query, roomID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m *models.Message) error {
	query := `
		UPDATE messages
		SET text = $3, deleted = $4, edited_at = $5
		WHERE room_id = $1 AND id = $2
	`
	var editedAt sql.NullTime
	if m.EditedAt != nil {
		editedAt = sql.NullTime{Time: *m.EditedAt, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query, m.RoomID, m.ID, m.Text, m.Deleted, editedAt)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	query := `
		SELECT id, room_id, text, author, reply_to, deleted, created_at, edited_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (*models.Message, error) {
	m := &models.Message{}
	var editedAt sql.NullTime
	if err := s.Scan(&m.ID, &m.RoomID, &m.Text, &m.Author, &m.ReplyTo, &m.Deleted, &m.CreatedAt, &editedAt); err != nil {
		return nil, err
	}
	if editedAt.Valid {
		t := editedAt.Time
		m.EditedAt = &t
	}
	return m, nil
}
