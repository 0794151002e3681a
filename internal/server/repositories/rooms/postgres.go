package rooms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/roomchat/internal/common"
	"github.com/dmitrijs2005/roomchat/internal/dbx"
	"github.com/dmitrijs2005/roomchat/internal/server/models"
)

// PostgresRepository works over dbx.DBTX (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Room, error) {
	query := `
		SELECT id, has_passkey, passkey_hash, passkey_salt, created_at
		FROM rooms
		WHERE id = $1
	`
	room := &models.Room{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&room.ID, &room.HasPasskey, &room.PasskeyHash, &room.PasskeySalt, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return room, nil
}

// CreateIfAbsent relies on ON CONFLICT DO NOTHING, so of two concurrent
// creators exactly one inserts and the other reads the winner's row.
func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, room *models.Room) (*models.Room, bool, error) {
	query := `
		INSERT INTO rooms (id, has_passkey, passkey_hash, passkey_salt, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at
	`
	created := *room
	err := r.db.QueryRowContext(ctx, query, room.ID, room.HasPasskey, room.PasskeyHash, room.PasskeySalt, room.CreatedAt).
		Scan(&created.CreatedAt)
	if err == nil {
		return &created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("error performing sql request: %v", err)
	}

	existing, err := r.Get(ctx, room.ID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
