package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/thinkscotty/reelhouse/internal/models"
)

const filmColumns = `slug, title, release_year, registry_year, runtime_minutes,
		       genres, directors, cast_members, logline, summary, why_important,
		       watch_url, image`

// ListFilms returns every film in insertion order.
func (db *DB) ListFilms(ctx context.Context) ([]models.Film, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+filmColumns+` FROM films ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFilms(rows)
}

// GetFilm returns the film with the given slug, or sql.ErrNoRows.
func (db *DB) GetFilm(ctx context.Context, slug string) (models.Film, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+filmColumns+` FROM films WHERE slug = ?`, slug)
	return scanFilm(row)
}

func (db *DB) FilmCount() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM films`).Scan(&n)
	return n, err
}

// UpsertFilms inserts new films and updates existing ones by slug. Existing films
// keep their position.
func (db *DB) UpsertFilms(ctx context.Context, films []models.Film) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO films (`+filmColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			release_year = excluded.release_year,
			registry_year = excluded.registry_year,
			runtime_minutes = excluded.runtime_minutes,
			genres = excluded.genres,
			directors = excluded.directors,
			cast_members = excluded.cast_members,
			logline = excluded.logline,
			summary = excluded.summary,
			why_important = excluded.why_important,
			watch_url = excluded.watch_url,
			image = excluded.image,
			updated_at = datetime('now')`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, f := range films {
		if _, err := stmt.ExecContext(ctx,
			f.Slug, f.Title, f.ReleaseYear, f.RegistryYear, f.RuntimeMinutes,
			encodeList(f.Genres), encodeList(f.Directors), encodeList(f.Cast),
			f.Logline, f.Summary, f.WhyImportant, f.WatchURL, f.Image); err != nil {
			return fmt.Errorf("upsert film %s: %w", f.Slug, err)
		}
	}

	return tx.Commit()
}

// SeedFilms imports a JSON array of films when the films table is empty.
// A missing file is not an error.
func (db *DB) SeedFilms(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	count, err := db.FilmCount()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("No seed dataset found, starting with an empty catalog", "path", path)
			return 0, nil
		}
		return 0, fmt.Errorf("read seed dataset: %w", err)
	}

	var films []models.Film
	if err := json.Unmarshal(data, &films); err != nil {
		return 0, fmt.Errorf("parse seed dataset: %w", err)
	}
	if err := db.UpsertFilms(ctx, films); err != nil {
		return 0, err
	}
	return len(films), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFilm(row rowScanner) (models.Film, error) {
	var f models.Film
	var genres, directors, cast string
	err := row.Scan(&f.Slug, &f.Title, &f.ReleaseYear, &f.RegistryYear, &f.RuntimeMinutes,
		&genres, &directors, &cast,
		&f.Logline, &f.Summary, &f.WhyImportant, &f.WatchURL, &f.Image)
	if err != nil {
		return f, err
	}
	f.Genres = decodeList(genres)
	f.Directors = decodeList(directors)
	f.Cast = decodeList(cast)
	return f, nil
}

func scanFilms(rows *sql.Rows) ([]models.Film, error) {
	var films []models.Film
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		films = append(films, f)
	}
	return films, rows.Err()
}

func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(list)
	return string(data)
}

func decodeList(data string) []string {
	list := []string{}
	json.Unmarshal([]byte(data), &list)
	return list
}
