package journal

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lukemcneil/shields-up-engineering-client/internal/action"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
)

type memStore struct {
	mu      sync.Mutex
	entries []Entry
	fail    error
	failOut error
	closed  bool
}

func (m *memStore) Append(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.failOut
}

func TestRecorder_FlushesOnClose(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store, zap.NewNop())

	r.Record(Sent("s1", "friday", game.Player1, action.StopResolvingEffects{}))
	r.Record(Acked("s1", "friday", game.Player1, "not your turn"))
	r.Record(Acked("s1", "friday", game.Player1, ""))
	require.NoError(t, r.Close())

	require.Len(t, store.entries, 3)
	assert.True(t, store.closed)

	sent := store.entries[0]
	assert.Equal(t, DirOut, sent.Direction)
	assert.Equal(t, "StopResolvingEffects", sent.Kind)
	assert.Equal(t, `"StopResolvingEffects"`, sent.Payload)

	assert.Equal(t, KindRejected, store.entries[1].Kind)
	assert.Equal(t, "not your turn", store.entries[1].Payload)
	assert.Equal(t, KindAccepted, store.entries[2].Kind)

	// Record after Close is ignored, second Close is a no-op.
	r.Record(Acked("s1", "friday", game.Player1, ""))
	require.NoError(t, r.Close())
	assert.Len(t, store.entries, 3)
}

func TestRecorder_StoreErrorsSurfaceOnClose(t *testing.T) {
	writeErr := errors.New("db down")
	closeErr := errors.New("close failed")
	store := &memStore{fail: writeErr, failOut: closeErr}
	r := NewRecorder(store, zap.NewNop())

	// Record never blocks or fails, even while the store is down.
	r.Record(Acked("s1", "g", game.Player2, ""))
	err := r.Close()
	assert.ErrorIs(t, err, writeErr)
	assert.ErrorIs(t, err, closeErr)
	assert.Empty(t, store.entries)
}

func TestOpenStoreWithoutDSN(t *testing.T) {
	s, err := OpenStore("")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, s)
	require.NoError(t, s.Append(context.Background(), []Entry{{Kind: "x"}}))
}

func TestGormStoreStatements(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=127.0.0.1 user=test dbname=test sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Discard,
	})
	require.NoError(t, err)
	s := NewGormStore(db)

	entries := []Entry{Sent("s1", "friday", game.Player1, action.Pass{})}
	stmt := s.db.Session(&gorm.Session{DryRun: true}).Create(&entries).Statement
	sql := stmt.SQL.String()
	assert.True(t, strings.Contains(sql, `INSERT INTO "journal_entries"`), sql)

	require.NoError(t, s.Append(context.Background(), nil))

	var out []Entry
	stmt = s.db.Session(&gorm.Session{DryRun: true}).Where("game = ?", "friday").Order("created_at desc").Limit(5).Find(&out).Statement
	assert.True(t, strings.Contains(stmt.SQL.String(), `FROM "journal_entries"`), stmt.SQL.String())
}

func TestOpenClosesConnectionWhenMigrateFails(t *testing.T) {
	// Nothing listens on port 1.
	sqlDB, err := sql.Open("pgx", "host=127.0.0.1 port=1 user=test dbname=test sslmode=disable connect_timeout=1")
	require.NoError(t, err)

	_, err = open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Discard,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal: migrate")

	assert.ErrorContains(t, sqlDB.Ping(), "database is closed")
}
