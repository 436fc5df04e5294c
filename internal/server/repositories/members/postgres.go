// Package members provides the PostgreSQL-backed allow-list repository.
package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/boardingpass/internal/common"
	"github.com/dmitrijs2005/boardingpass/internal/dbx"
	"github.com/dmitrijs2005/boardingpass/internal/server/models"
)

const memberColumns = `id, twitter, twitter_id, discord, discord_id, address, project, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Member) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO members (id, twitter, discord, project)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, m.ID, m.Twitter, m.Discord, m.Project).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, where string, args ...any) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE ` + where + ` ORDER BY created_at LIMIT 1`

	m := &models.Member{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&m.ID, &m.Twitter, &m.TwitterID, &m.Discord, &m.DiscordID, &m.Address, &m.Project, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) FindByHandles(ctx context.Context, twitter, discord string) (*models.Member, error) {
	return r.findOne(ctx, `(twitter = $1 AND $1 <> '') OR (discord = $2 AND $2 <> '')`, twitter, discord)
}

func (r *PostgresRepository) FindByTwitterID(ctx context.Context, twitterID string) (*models.Member, error) {
	if twitterID == "" {
		return nil, common.ErrorNotFound
	}
	return r.findOne(ctx, `twitter_id = $1`, twitterID)
}

func (r *PostgresRepository) FindByTwitter(ctx context.Context, twitter string) (*models.Member, error) {
	if twitter == "" {
		return nil, common.ErrorNotFound
	}
	return r.findOne(ctx, `twitter = $1`, twitter)
}

func (r *PostgresRepository) FindByAddress(ctx context.Context, address string) (*models.Member, error) {
	if address == "" {
		return nil, common.ErrorNotFound
	}
	return r.findOne(ctx, `address = $1`, address)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
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

func (r *PostgresRepository) UpdateProfile(ctx context.Context, m *models.Member) error {
	query :=
		`UPDATE members
		 SET twitter = $2, twitter_id = $3, discord = $4, discord_id = $5, updated_at = now()
		 WHERE id = $1`

	return r.exec(ctx, query, m.ID, m.Twitter, m.TwitterID, m.Discord, m.DiscordID)
}

func (r *PostgresRepository) UpdateHandles(ctx context.Context, m *models.Member) error {
	query :=
		`UPDATE members
		 SET twitter = $2, discord = $3, project = $4, updated_at = now()
		 WHERE id = $1`

	return r.exec(ctx, query, m.ID, m.Twitter, m.Discord, m.Project)
}

func (r *PostgresRepository) SetAddress(ctx context.Context, id, address string) error {
	query :=
		`UPDATE members
		 SET address = $2, updated_at = now()
		 WHERE id = $1`

	return r.exec(ctx, query, id, address)
}
