package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"language-learner/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    language TEXT NOT NULL,
    prompt TEXT NOT NULL,
    reminder_on INTEGER NOT NULL DEFAULT 0,
    device_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schedules (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    weekday INTEGER NOT NULL,
    hour INTEGER NOT NULL,
    minute INTEGER NOT NULL,
    repeat_schedule TEXT NOT NULL
);`

// Repository persists the learner's settings.
type Repository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Set(ctx context.Context, s domain.Settings) error
}

// SQLite stores settings in a single-row table plus a schedules table.
type SQLite struct {
	db    *sql.DB
	newID func() string
}

// Open opens (or creates) the database at path. Use ":memory:" for tests.
func Open(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("settings: database path must not be empty")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("settings: open %s: %w", path, err)
	}
	// One connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("settings: apply schema: %w", err)
	}
	return &SQLite{db: db, newID: uuid.NewString}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get returns the stored settings, writing defaults and a fresh device id on
// first use.
func (s *SQLite) Get(ctx context.Context) (domain.Settings, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("settings: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	out, err := s.loadOrInit(ctx, tx)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Settings{}, fmt.Errorf("settings: commit: %w", err)
	}
	return out, nil
}

// Set validates and stores st, replacing all schedules. An empty DeviceID
// keeps the stored one.
func (s *SQLite) Set(ctx context.Context, st domain.Settings) error {
	if err := st.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("settings: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if st.DeviceID == "" {
		current, err := s.loadOrInit(ctx, tx)
		if err != nil {
			return err
		}
		st.DeviceID = current.DeviceID
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO settings (id, language, prompt, reminder_on, device_id)
        VALUES (1, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            language = excluded.language,
            prompt = excluded.prompt,
            reminder_on = excluded.reminder_on,
            device_id = excluded.device_id`,
		string(st.Language), string(st.Prompt), st.ReminderOn, st.DeviceID)
	if err != nil {
		return fmt.Errorf("settings: save settings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedules`); err != nil {
		return fmt.Errorf("settings: clear schedules: %w", err)
	}
	for _, sch := range st.Schedules {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO schedules (weekday, hour, minute, repeat_schedule)
            VALUES (?, ?, ?, ?)`,
			sch.Weekday, sch.Hour, sch.Minute, string(sch.Repeat))
		if err != nil {
			return fmt.Errorf("settings: save schedule: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("settings: commit: %w", err)
	}
	return nil
}

func (s *SQLite) loadOrInit(ctx context.Context, tx *sql.Tx) (domain.Settings, error) {
	var (
		language, prompt, deviceID string
		reminderOn                 bool
	)
	err := tx.QueryRowContext(ctx,
		`SELECT language, prompt, reminder_on, device_id FROM settings WHERE id = 1`,
	).Scan(&language, &prompt, &reminderOn, &deviceID)

	if errors.Is(err, sql.ErrNoRows) {
		st := domain.DefaultSettings()
		st.DeviceID = s.newID()
		_, err := tx.ExecContext(ctx, `
            INSERT INTO settings (id, language, prompt, reminder_on, device_id)
            VALUES (1, ?, ?, 0, ?)`,
			string(st.Language), string(st.Prompt), st.DeviceID)
		if err != nil {
			return domain.Settings{}, fmt.Errorf("settings: init settings: %w", err)
		}
		return st, nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("settings: load settings: %w", err)
	}

	st := domain.Settings{ReminderOn: reminderOn, DeviceID: deviceID}
	if st.Language, err = domain.ParseLanguage(language); err != nil {
		return domain.Settings{}, fmt.Errorf("settings: stored language: %w", err)
	}
	if st.Prompt, err = domain.ParsePrompt(prompt); err != nil {
		return domain.Settings{}, fmt.Errorf("settings: stored prompt: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT weekday, hour, minute, repeat_schedule FROM schedules ORDER BY id`)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("settings: load schedules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sch    domain.NotificationSchedule
			repeat string
		)
		if err := rows.Scan(&sch.Weekday, &sch.Hour, &sch.Minute, &repeat); err != nil {
			return domain.Settings{}, fmt.Errorf("settings: scan schedule: %w", err)
		}
		sch.Repeat = domain.RepeatSchedule(repeat)
		st.Schedules = append(st.Schedules, sch)
	}
	if err := rows.Err(); err != nil {
		return domain.Settings{}, fmt.Errorf("settings: load schedules: %w", err)
	}
	return st, nil
}
