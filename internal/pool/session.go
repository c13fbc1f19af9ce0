package pool

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Session is one borrowed connection, exclusive to its holder for the duration
// of a single check invocation. Release returns it to the pool and is safe to
// call more than once and on every exit path.
type Session struct {
	targetID string
	conn     *sqlx.Conn
	once     sync.Once
}

func (s *Session) TargetID() string { return s.targetID }

// Scalar fetches a single-column single-row value. No rows is not an error:
// checks treat the absent value as "NOT SET".
func (s *Session) Scalar(ctx context.Context, query string) (sql.NullString, error) {
	var v sql.NullString
	if err := s.conn.GetContext(ctx, &v, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.NullString{}, nil
		}
		return sql.NullString{}, err
	}
	return v, nil
}

func (s *Session) Select(ctx context.Context, dest any, query string) error {
	return s.conn.SelectContext(ctx, dest, query)
}

// Ping verifies the session is live against the diagnostic view layer.
func (s *Session) Ping(ctx context.Context) error {
	_, err := s.Scalar(ctx, "SELECT 1 FROM dual")
	return err
}

func (s *Session) Release() {
	s.once.Do(func() {
		_ = s.conn.Close()
	})
}
