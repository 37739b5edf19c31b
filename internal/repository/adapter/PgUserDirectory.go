package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lamiaker/sou9i-sub003/internal/repository/port"
)

// PgUserDirectory reads the identity service's users table directly.
// The messaging core never writes to it.
type PgUserDirectory struct {
	pool *pgxpool.Pool
}

func NewPgUserDirectory(pool *pgxpool.Pool) *PgUserDirectory {
	return &PgUserDirectory{pool: pool}
}

var _ port.UserDirectory = (*PgUserDirectory)(nil)

func (d *PgUserDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	if d == nil || d.pool == nil {
		return false, errors.New("PgUserDirectory: nil pool")
	}
	var exists bool
	err := d.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE id = $1::uuid)",
		userID,
	).Scan(&exists)
	return exists, err
}

func (d *PgUserDirectory) GetByIDs(ctx context.Context, userIDs []string) (map[string]port.UserRef, error) {
	if d == nil || d.pool == nil {
		return nil, errors.New("PgUserDirectory: nil pool")
	}
	if len(userIDs) == 0 {
		return map[string]port.UserRef{}, nil
	}
	rows, err := d.pool.Query(ctx, `
		SELECT id::text, display_name, avatar_url
		FROM users
		WHERE id = ANY($1::uuid[])
	`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make(map[string]port.UserRef, len(userIDs))
	for rows.Next() {
		var ref port.UserRef
		if err := rows.Scan(&ref.ID, &ref.DisplayName, &ref.AvatarURL); err != nil {
			return nil, err
		}
		refs[ref.ID] = ref
	}
	return refs, rows.Err()
}
