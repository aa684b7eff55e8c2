package database

import (
	"context"
	"fmt"

	"github.com/thinkscotty/reelhouse/internal/models"
)

// LogRender records how one render was resolved.
func (db *DB) LogRender(ctx context.Context, entry models.RenderLog) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO render_log (id, scope, slug, provider, model, outcome, reason, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Scope, entry.Slug, entry.Provider, entry.Model,
		entry.Outcome, entry.Reason, entry.DurationMs)
	return err
}

// RecentRenders returns the N most recent render log entries.
func (db *DB) RecentRenders(limit int) ([]models.RenderLog, error) {
	rows, err := db.conn.Query(`
		SELECT id, scope, slug, provider, model, outcome, reason, duration_ms, created_at
		FROM render_log
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.RenderLog
	for rows.Next() {
		var entry models.RenderLog
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.Scope, &entry.Slug, &entry.Provider,
			&entry.Model, &entry.Outcome, &entry.Reason, &entry.DurationMs,
			&createdAt); err != nil {
			return nil, err
		}
		entry.CreatedAt, _ = parseTime(createdAt)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (db *DB) GetRenderStats() (models.RenderStats, error) {
	var s models.RenderStats

	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM render_log`).Scan(&s.TotalRenders); err != nil {
		return s, err
	}
	db.conn.QueryRow(`SELECT COUNT(*) FROM render_log WHERE outcome = ?`, models.OutcomeProvider).Scan(&s.ProviderRenders)
	db.conn.QueryRow(`SELECT COUNT(*) FROM render_log WHERE outcome = ?`, models.OutcomeFallback).Scan(&s.FallbackRenders)

	s.TotalFilms, _ = db.FilmCount()
	s.DatabaseSize, _ = db.DatabaseSizeBytes()

	return s, nil
}

// CleanOldRenders removes render log entries older than the given number of days.
func (db *DB) CleanOldRenders(days int) error {
	_, err := db.conn.Exec(`DELETE FROM render_log WHERE created_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", days))
	return err
}
