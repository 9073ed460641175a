package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindActiveByUsername(ctx context.Context, username string) (*models.Account, error) {
	query :=
		`SELECT id, username, password, refresh_token, created_at FROM account
		 WHERE username = $1 AND is_active = TRUE
		 `
	return r.findActive(ctx, query, username)
}

func (r *PostgresRepository) FindActiveByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT id, username, password, refresh_token, created_at FROM account
		 WHERE id = $1 AND is_active = TRUE
		 `
	return r.findActive(ctx, query, id)
}

func (r *PostgresRepository) findActive(ctx context.Context, query string, arg string) (*models.Account, error) {
	acc := &models.Account{}
	var refresh sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&acc.ID, &acc.UserName, &acc.PasswordHash, &refresh, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if refresh.Valid {
		acc.RefreshToken = &refresh.String
	}

	acc.Permissions, err = r.permissions(ctx, acc.ID)
	if err != nil {
		return nil, err
	}

	return acc, nil
}

func (r *PostgresRepository) permissions(ctx context.Context, accountID string) ([]string, error) {
	query :=
		`SELECT DISTINCT p.name FROM permission p
		 JOIN group_permission gp ON gp.permission_id = p.id
		 JOIN account_group ag ON ag.group_id = gp.group_id
		 WHERE ag.account_id = $1
		 ORDER BY p.name
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return names, nil
}

func (r *PostgresRepository) CompareAndSwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	query :=
		`UPDATE account SET refresh_token = $3
		 WHERE id = $1 AND refresh_token = $2 AND is_active = TRUE
		 `

	n, err := dbx.ExecAffected(ctx, r.db, query, id, expected, next)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n == 1, nil
}

func (r *PostgresRepository) ReplaceRefreshToken(ctx context.Context, id, next string) (*string, error) {
	query :=
		`UPDATE account a SET refresh_token = $2
		 FROM (SELECT id, refresh_token FROM account WHERE id = $1 AND is_active = TRUE FOR UPDATE) prev
		 WHERE a.id = prev.id
		 RETURNING prev.refresh_token
		 `

	prev, err := r.swapRefreshToken(ctx, query, id, next)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	return prev, err
}

func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, id string) (*string, error) {
	query :=
		`UPDATE account a SET refresh_token = NULL
		 FROM (SELECT id, refresh_token FROM account WHERE id = $1 FOR UPDATE) prev
		 WHERE a.id = prev.id
		 RETURNING prev.refresh_token
		 `

	prev, err := r.swapRefreshToken(ctx, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return prev, err
}

// swapRefreshToken runs an UPDATE ... RETURNING of the previous token.
// sql.ErrNoRows is passed through unwrapped.
func (r *PostgresRepository) swapRefreshToken(ctx context.Context, query string, args ...any) (*string, error) {
	var prev sql.NullString
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&prev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if !prev.Valid {
		return nil, nil
	}

	return &prev.String, nil
}
