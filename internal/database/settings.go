package database

import (
	"context"
	"database/sql"
	"discord-giveaways/internal/models"
	"errors"

	"github.com/lib/pq"
)

func (d *Database) GetGuildSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	s := &models.GuildSettings{GuildID: guildID}
	err := d.db.QueryRowContext(ctx,
		"SELECT prefix, language, plugins, moderation_clear_toggle FROM guild_settings WHERE guild_id = $1", guildID,
	).Scan(&s.Prefix, &s.Language, pq.Array(&s.Plugins), &s.ModerationClearToggle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Database) SetGuildSettings(ctx context.Context, s *models.GuildSettings) error {
	query := `
		INSERT INTO guild_settings (guild_id, prefix, language, plugins, moderation_clear_toggle)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT(guild_id) DO UPDATE SET
			prefix = EXCLUDED.prefix,
			language = EXCLUDED.language,
			plugins = EXCLUDED.plugins,
			moderation_clear_toggle = EXCLUDED.moderation_clear_toggle
	`
	_, err := d.db.ExecContext(ctx, query, s.GuildID, s.Prefix, s.Language, pq.Array(s.Plugins), s.ModerationClearToggle)
	return err
}
