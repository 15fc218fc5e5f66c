package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS events (
            id BIGSERIAL PRIMARY KEY,
            chat_id BIGINT NOT NULL,
            poll_id TEXT NOT NULL UNIQUE,
            poll_message_id BIGINT NOT NULL,
            card_message_id BIGINT,
            creator_user_id BIGINT,
            starts_at TIMESTAMPTZ NOT NULL,
            title TEXT NOT NULL,
            cost TEXT NOT NULL,
            location TEXT NOT NULL,
            details TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS votes (
            poll_id TEXT NOT NULL,
            user_id BIGINT NOT NULL,
            option_id INT,
            updated_at TIMESTAMPTZ NOT NULL,
            PRIMARY KEY (poll_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS reminders (
            id BIGSERIAL PRIMARY KEY,
            event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
            kind TEXT NOT NULL,
            run_at TIMESTAMPTZ NOT NULL,
            sent BOOLEAN NOT NULL DEFAULT FALSE,
            sent_at TIMESTAMPTZ,
            UNIQUE(event_id, kind)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_events_chat_starts ON events(chat_id, starts_at);`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(sent, run_at);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
