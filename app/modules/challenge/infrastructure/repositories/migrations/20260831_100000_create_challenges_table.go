package challengemigrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			CREATE TABLE IF NOT EXISTS challenges (
				id          uuid        PRIMARY KEY,
				title       text        NOT NULL,
				description text        NOT NULL DEFAULT '',
				rules       jsonb       NOT NULL DEFAULT '[]',
				start_time  timestamptz NOT NULL,
				end_time    timestamptz NOT NULL,
				max_score   integer     NOT NULL,
				created_at  timestamptz NOT NULL DEFAULT current_timestamp,
				CONSTRAINT challenges_window_check CHECK (end_time > start_time),
				CONSTRAINT challenges_max_score_check CHECK (max_score > 0)
			)
		`).Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewRaw(`
			CREATE INDEX IF NOT EXISTS idx_challenges_window ON challenges (start_time, end_time)
		`).Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`DROP TABLE IF EXISTS challenges`).Exec(ctx)
		return err
	})
}
