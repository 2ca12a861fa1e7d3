package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	store "wealth-server/src/db"
	"wealth-server/src/models"
)

const userColumns = `id, external_user_id, email, name, image_url, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.ExternalUserID, &u.Email, &u.Name, &u.ImageURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func GetUserByExternalID(ctx context.Context, pool store.DBTX, externalID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_user_id = $1`
	return scanUser(pool.QueryRow(ctx, query, externalID))
}

func GetUserByID(ctx context.Context, pool store.DBTX, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(pool.QueryRow(ctx, query, id))
}

// UpsertUser creates the user on first sight of an identity and refreshes the profile after.
func UpsertUser(ctx context.Context, pool store.DBTX, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (external_user_id, email, name, image_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_user_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			image_url = EXCLUDED.image_url,
			updated_at = NOW()
		RETURNING ` + userColumns
	user, err := scanUser(pool.QueryRow(ctx, query, u.ExternalUserID, u.Email, u.Name, u.ImageURL))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func GetAllUsers(ctx context.Context, pool store.DBTX) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
