package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/dbx"
)

// PostgresLedger stores the ledger in the token_pair and
// revoked_access_token tables. Rows past expires_at are ignored by reads and
// removed by Sweep.
type PostgresLedger struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresLedger(db *sql.DB, opts ...Option) *PostgresLedger {
	o := buildOptions(opts)
	return &PostgresLedger{db: db, now: o.now}
}

func (l *PostgresLedger) Record(ctx context.Context, p Pairing) error {
	if !p.ExpiresAt.After(l.now()) {
		return nil
	}

	query :=
		`INSERT INTO token_pair (refresh_id, access_id, access_expires_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (refresh_id) DO UPDATE
		 SET access_id = EXCLUDED.access_id,
		     access_expires_at = EXCLUDED.access_expires_at,
		     expires_at = EXCLUDED.expires_at
		 `

	_, err := l.db.ExecContext(ctx, query, p.RefreshID, p.AccessID, p.AccessExpiresAt, p.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Blacklist(ctx context.Context, accessID string, expiresAt time.Time) error {
	if !expiresAt.After(l.now()) {
		return nil
	}

	query :=
		`INSERT INTO revoked_access_token (access_id, expires_at)
		 VALUES ($1, $2)
		 ON CONFLICT (access_id) DO UPDATE
		 SET expires_at = GREATEST(revoked_access_token.expires_at, EXCLUDED.expires_at)
		 `

	if _, err := l.db.ExecContext(ctx, query, accessID, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (l *PostgresLedger) IsBlacklisted(ctx context.Context, accessID string) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM revoked_access_token
		   WHERE access_id = $1 AND expires_at > $2
		 )
		 `

	var revoked bool
	if err := l.db.QueryRowContext(ctx, query, accessID, l.now()).Scan(&revoked); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return revoked, nil
}

func (l *PostgresLedger) DropPair(ctx context.Context, refreshID string) (*Pairing, error) {
	query :=
		`DELETE FROM token_pair
		 WHERE refresh_id = $1
		 RETURNING access_id, access_expires_at, expires_at
		 `

	p := &Pairing{RefreshID: refreshID}
	err := l.db.QueryRowContext(ctx, query, refreshID).Scan(&p.AccessID, &p.AccessExpiresAt, &p.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if !p.ExpiresAt.After(l.now()) {
		return nil, nil
	}
	return p, nil
}

// Sweep deletes expired pairings and revocations in one transaction and
// returns how many rows it removed.
func (l *PostgresLedger) Sweep(ctx context.Context) (int64, error) {
	var removed int64

	err := dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		now := l.now()

		n, err := dbx.ExecAffected(ctx, tx, `DELETE FROM token_pair WHERE expires_at <= $1`, now)
		if err != nil {
			return err
		}
		removed += n

		n, err = dbx.ExecAffected(ctx, tx, `DELETE FROM revoked_access_token WHERE expires_at <= $1`, now)
		if err != nil {
			return err
		}
		removed += n

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return removed, nil
}
