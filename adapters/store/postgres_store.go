package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xrplist/warden/core"
)

// uniqueViolation is the Postgres error code raised by a unique index.
const uniqueViolation = "23505"

// PostgresStore implements every store port on top of a pgx connection pool.
// Uniqueness of admin and allow-list wallet addresses is enforced by unique
// indexes, not by check-then-insert; ConsumeChallenge is a conditional UPDATE
// so that only one of two concurrent verifiers can flip the used flag.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a store to an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// NewPostgresPool opens and pings a connection pool.
func NewPostgresPool(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info("connected to postgres")
	return pool, nil
}

func (s *PostgresStore) InsertChallenge(ctx context.Context, c *core.Challenge) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO auth_challenges (id, wallet_address, nonce, message, issued_at, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Address, c.Nonce, c.Message, c.IssuedAt, c.ExpiresAt, c.Used, c.CreatedAt)
	return err
}

func (s *PostgresStore) GetChallenge(ctx context.Context, id string) (*core.Challenge, error) {
	var c core.Challenge
	err := s.pool.QueryRow(ctx, `
		SELECT id, wallet_address, nonce, message, issued_at, expires_at, used, created_at
		FROM auth_challenges WHERE id = $1
	`, id).Scan(&c.ID, &c.Address, &c.Nonce, &c.Message, &c.IssuedAt, &c.ExpiresAt, &c.Used, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) ConsumeChallenge(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE auth_challenges SET used = TRUE WHERE id = $1 AND used = FALSE
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Zero rows: either the challenge does not exist or it was already
	// consumed, possibly by a concurrent verifier that won the update.
	var used bool
	err = s.pool.QueryRow(ctx, `SELECT used FROM auth_challenges WHERE id = $1`, id).Scan(&used)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrChallengeNotFound
	}
	if err != nil {
		return err
	}
	return core.ErrChallengeUsed
}

func (s *PostgresStore) InsertAdmin(ctx context.Context, a *core.AdminAccount) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admin_wallets (id, wallet_address, role, added_by, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	`, a.ID, a.Address, string(a.Role), a.AddedBy, a.CreatedAt)
	if isUniqueViolation(err) {
		return core.ErrDuplicateAdmin
	}
	return err
}

func (s *PostgresStore) GetAdmin(ctx context.Context, address string) (*core.AdminAccount, error) {
	a, err := scanAdmin(s.pool.QueryRow(ctx, `
		SELECT id, wallet_address, role, COALESCE(added_by, ''), created_at
		FROM admin_wallets WHERE wallet_address = $1
	`, address))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrAdminNotFound
	}
	return a, err
}

func (s *PostgresStore) DeleteAdmin(ctx context.Context, address string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM admin_wallets WHERE wallet_address = $1`, address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrAdminNotFound
	}
	return nil
}

func (s *PostgresStore) ListAdmins(ctx context.Context) ([]core.AdminAccount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, wallet_address, role, COALESCE(added_by, ''), created_at
		FROM admin_wallets ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []core.AdminAccount
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *a)
	}
	return admins, rows.Err()
}

func (s *PostgresStore) InsertEntry(ctx context.Context, e *core.AllowlistEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO whitelist_entries
			(id, full_name, email, wallet_address, street_address, city, state_province, zip_postal, country, phone_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)
	`, e.ID, e.FullName, e.Email, e.WalletAddress, e.StreetAddress, e.City,
		e.StateProvince, e.ZipPostal, e.Country, e.PhoneNumber, e.CreatedAt)
	if isUniqueViolation(err) {
		return core.ErrDuplicateEntry
	}
	return err
}

func (s *PostgresStore) ListEntries(ctx context.Context) ([]core.AllowlistEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, full_name, email, wallet_address, street_address, city, state_province,
			zip_postal, country, COALESCE(phone_number, ''), created_at
		FROM whitelist_entries ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []core.AllowlistEntry
	for rows.Next() {
		var e core.AllowlistEntry
		if err := rows.Scan(&e.ID, &e.FullName, &e.Email, &e.WalletAddress, &e.StreetAddress,
			&e.City, &e.StateProvince, &e.ZipPostal, &e.Country, &e.PhoneNumber, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) ClearEntries(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM whitelist_entries`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) InsertCollection(ctx context.Context, c *core.Collection) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO nft_collections (id, name, issuer, taxon, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.Name, c.Issuer, c.Taxon, c.CreatedAt)
	return err
}

func (s *PostgresStore) ListCollections(ctx context.Context) ([]core.Collection, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, issuer, taxon, created_at
		FROM nft_collections ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []core.Collection
	for rows.Next() {
		var c core.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.Issuer, &c.Taxon, &c.CreatedAt); err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func (s *PostgresStore) DeleteCollection(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM nft_collections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrCollectionNotFound
	}
	return nil
}

func (s *PostgresStore) ClearCollections(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM nft_collections`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanAdmin(row pgx.Row) (*core.AdminAccount, error) {
	var a core.AdminAccount
	var role string
	if err := row.Scan(&a.ID, &a.Address, &role, &a.AddedBy, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Role = core.Role(role)
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
