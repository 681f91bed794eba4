package submissionmigrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			CREATE TABLE IF NOT EXISTS submissions (
				id              uuid        PRIMARY KEY,
				challenge_id    uuid        NOT NULL REFERENCES challenges (id),
				participant_id  text        NOT NULL,
				display_name    text        NOT NULL DEFAULT '',
				artifact_kind   text        NOT NULL,
				artifact_size   bigint      NOT NULL,
				artifact_handle text        NOT NULL,
				submitted_at    timestamptz NOT NULL,
				score           integer     NULL,
				score_status    text        NOT NULL DEFAULT 'pending',
				CONSTRAINT submissions_one_per_pair UNIQUE (challenge_id, participant_id)
			)
		`).Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewRaw(`
			CREATE INDEX IF NOT EXISTS idx_submissions_scored
			ON submissions (challenge_id, score_status)
		`).Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`DROP TABLE IF EXISTS submissions`).Exec(ctx)
		return err
	})
}
