package database

import (
	"context"
	"database/sql"
	"discord-giveaways/internal/models"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("database: not found")

type Database struct {
	db *sql.DB
}

const schema = `
-- Giveaways table
CREATE TABLE IF NOT EXISTS giveaways (
    id SERIAL PRIMARY KEY,
    message_id TEXT UNIQUE NOT NULL,
    channel_id TEXT NOT NULL,
    guild_id TEXT NOT NULL,
    host_id TEXT NOT NULL,
    prize TEXT NOT NULL,
    winner_count INTEGER NOT NULL,
    start_at BIGINT NOT NULL,
    end_at BIGINT NOT NULL,
    ended BOOLEAN DEFAULT FALSE,
    created_at BIGINT NOT NULL
);

-- Guild Settings table
CREATE TABLE IF NOT EXISTS guild_settings (
    guild_id TEXT PRIMARY KEY,
    prefix TEXT NOT NULL,
    language TEXT NOT NULL,
    plugins TEXT[] NOT NULL DEFAULT '{}',
    moderation_clear_toggle BOOLEAN DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_giveaways_guild ON giveaways(guild_id);
CREATE INDEX IF NOT EXISTS idx_giveaways_ended ON giveaways(ended);
`

// NewDatabase opens the Postgres connection described by dsn and applies
// the schema.
func NewDatabase(ctx context.Context, dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(1 * time.Hour)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Giveaway operations

const giveawayColumns = `id, message_id, channel_id, guild_id, host_id, prize, winner_count,
	start_at, end_at, ended, created_at`

func (d *Database) CreateGiveaway(ctx context.Context, g *models.Giveaway) (int64, error) {
	query := `
		INSERT INTO giveaways (
			message_id, channel_id, guild_id, host_id, prize, winner_count,
			start_at, end_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := d.db.QueryRowContext(ctx, query,
		g.MessageID, g.ChannelID, g.GuildID, g.HostID, g.Prize, g.WinnerCount,
		g.StartAt, g.EndAt, models.Now(),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (d *Database) GetGiveaway(ctx context.Context, messageID string) (*models.Giveaway, error) {
	query := `SELECT ` + giveawayColumns + ` FROM giveaways WHERE message_id = $1`
	g, err := scanGiveaway(d.db.QueryRowContext(ctx, query, messageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

func (d *Database) GetActiveGiveaways(ctx context.Context) ([]*models.Giveaway, error) {
	query := `SELECT ` + giveawayColumns + ` FROM giveaways WHERE ended = FALSE ORDER BY end_at ASC`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var giveaways []*models.Giveaway
	for rows.Next() {
		g, err := scanGiveaway(rows)
		if err != nil {
			return nil, err
		}
		giveaways = append(giveaways, g)
	}
	return giveaways, rows.Err()
}

// UpdateGiveaway persists the editable fields of g.
func (d *Database) UpdateGiveaway(ctx context.Context, g *models.Giveaway) error {
	res, err := d.db.ExecContext(ctx,
		"UPDATE giveaways SET prize = $1, winner_count = $2, end_at = $3 WHERE message_id = $4 AND ended = FALSE",
		g.Prize, g.WinnerCount, g.EndAt, g.MessageID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (d *Database) EndGiveaway(ctx context.Context, messageID string) error {
	res, err := d.db.ExecContext(ctx, "UPDATE giveaways SET ended = TRUE WHERE message_id = $1", messageID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// Helpers

type scanner interface {
	Scan(dest ...any) error
}

func scanGiveaway(row scanner) (*models.Giveaway, error) {
	var g models.Giveaway
	err := row.Scan(
		&g.ID, &g.MessageID, &g.ChannelID, &g.GuildID, &g.HostID, &g.Prize, &g.WinnerCount,
		&g.StartAt, &g.EndAt, &g.Ended, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
