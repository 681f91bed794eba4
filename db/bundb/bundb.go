package bundb

import (
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	challengedb "github.com/snapclash/arena/app/modules/challenge/infrastructure/repositories"
	submissiondb "github.com/snapclash/arena/app/modules/submission/infrastructure/repositories"
	"github.com/snapclash/arena/config"
)

// DBService bundles the per-module repositories over one connection pool.
type DBService struct {
	ChallengeDB  *challengedb.ChallengeRepositoryImpl
	SubmissionDB *submissiondb.SubmissionRepositoryImpl
	db           *bun.DB
}

// GetDB returns the underlying database handle.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// Close closes the connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService connects to Postgres and wires the repositories.
func NewBunDBService(cfg config.PostgresConfig) (*DBService, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	if err := sqldb.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	db.RegisterModel(&challengedb.Challenge{})
	db.RegisterModel(&submissiondb.Submission{})

	return &DBService{
		ChallengeDB:  &challengedb.ChallengeRepositoryImpl{DB: db},
		SubmissionDB: &submissiondb.SubmissionRepositoryImpl{DB: db},
		db:           db,
	}, nil
}
