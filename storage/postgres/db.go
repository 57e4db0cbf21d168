// Package postgres is the PostgreSQL implementation of users.Repo and posts.Repo.
package postgres

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	_ "github.com/lib/pq"
)

// Open opens a connection pool and verifies it with a ping bounded by pingTimeout.
func Open(ctx context.Context, databaseURL string, pingTimeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[postgres Open] failed to open database")
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, apperrors.Wrapf(err, "[postgres Open] failed to ping database")
	}
	return db, nil
}
