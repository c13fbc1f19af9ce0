package pool

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	go_ora "github.com/sijms/go-ora/v2"
	"go.uber.org/zap"

	"github.com/dbguardian/dbguardian/internal/core"
)

type Config struct {
	// MinSessions is the number of idle sessions a pool keeps warm.
	MinSessions int
	// MaxSessions bounds concurrent sessions per target. Borrowing beyond it
	// blocks up to BorrowTimeout, then fails with pool_exhausted.
	MaxSessions int
	// IdleTTL evicts sessions idle for longer than this.
	IdleTTL time.Duration
	// BorrowTimeout bounds the wait for a free session (and the underlying
	// connect on first use).
	BorrowTimeout time.Duration
}

// Opener produces the underlying DB handle for one target. Replaceable in
// tests; the default dials Oracle through go-ora.
type Opener func(t core.Target) (*sqlx.DB, error)

// Manager owns one bounded session pool per target. Pools are created lazily
// on first borrow and torn down together at the end of the run. Safe for
// concurrent borrow/release from multiple workers.
type Manager struct {
	cfg    Config
	logger *zap.Logger
	opener Opener

	mu    sync.Mutex
	pools map[string]*targetPool
}

type targetPool struct {
	target core.Target
	db     *sqlx.DB
}

func NewManager(cfg Config, logger *zap.Logger) *Manager {
	m := &Manager{
		cfg:    cfg,
		logger: logger,
		pools:  make(map[string]*targetPool),
	}
	m.opener = m.openOracle
	return m
}

// openOracle resolves the auth mode into the DSN at pool-creation time.
func (m *Manager) openOracle(t core.Target) (*sqlx.DB, error) {
	opts := map[string]string{}
	switch t.AuthMode {
	case core.AuthSysDBA:
		opts["dba privilege"] = "sysdba"
	case core.AuthSysOper:
		opts["dba privilege"] = "sysoper"
	}
	dsn := go_ora.BuildUrl(t.Hostname, t.Port, t.ServiceName, t.Username, t.Password, opts)
	return sqlx.Open("oracle", dsn)
}

func (m *Manager) pool(t core.Target) (*targetPool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.pools[t.ID]; ok {
		return p, nil
	}

	db, err := m.opener(t)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(m.cfg.MaxSessions)
	db.SetMaxIdleConns(m.cfg.MinSessions)
	db.SetConnMaxIdleTime(m.cfg.IdleTTL)

	p := &targetPool{target: t, db: db}
	m.pools[t.ID] = p
	m.logger.Debug("session pool created",
		zap.String("target", t.ID),
		zap.String("addr", t.Addr()),
		zap.String("auth_mode", string(t.AuthMode)),
		zap.Int("max_sessions", m.cfg.MaxSessions),
	)
	return p, nil
}

// Borrow hands out an exclusive session for one check invocation. When the
// pool is at MaxSessions the call blocks until a session frees up or
// BorrowTimeout elapses, in which case the error reason is pool_exhausted
// (backpressure, not a target failure).
func (m *Manager) Borrow(ctx context.Context, t core.Target) (*Session, error) {
	p, err := m.pool(t)
	if err != nil {
		return nil, classify(t.ID, err, false)
	}

	waitCtx := ctx
	var cancel context.CancelFunc
	if m.cfg.BorrowTimeout > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, m.cfg.BorrowTimeout)
		defer cancel()
	}

	conn, err := p.db.Connx(waitCtx)
	if err != nil {
		saturated := p.db.Stats().InUse >= m.cfg.MaxSessions
		return nil, classify(t.ID, err, saturated)
	}
	return &Session{targetID: t.ID, conn: conn}, nil
}

// Stats reports the underlying pool statistics per target, for metrics.
func (m *Manager) Stats() map[string]sql.DBStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]sql.DBStats, len(m.pools))
	for id, p := range m.pools {
		out[id] = p.db.Stats()
	}
	return out
}

// CloseAll drains every pool: idle sessions close immediately, in-flight ones
// when released. Called once at run end.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, p := range m.pools {
		if err := p.db.Close(); err != nil {
			m.logger.Warn("error closing session pool", zap.String("target", id), zap.Error(err))
		} else {
			m.logger.Debug("session pool closed", zap.String("target", id))
		}
		delete(m.pools, id)
	}
}
