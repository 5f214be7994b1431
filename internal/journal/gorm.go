package journal

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type GormStore struct {
	db *gorm.DB
}

// Open connects to postgres and migrates the journal table.
func Open(dsn string) (*GormStore, error) {
	return open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
}

func open(dialector gorm.Dialector, cfg *gorm.Config) (*GormStore, error) {
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		s := NewGormStore(db)
		return nil, multierr.Append(fmt.Errorf("journal: migrate: %w", err), s.Close())
	}
	return NewGormStore(db), nil
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Append(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&entries).Error
}

// Recent returns the newest entries for a game, newest first.
func (s *GormStore) Recent(ctx context.Context, gameName string, limit int) ([]Entry, error) {
	var out []Entry
	err := s.db.WithContext(ctx).
		Where("game = ?", gameName).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// OpenStore picks the store for a DSN: postgres when set, Nop otherwise.
func OpenStore(dsn string) (Store, error) {
	if dsn == "" {
		return Nop{}, nil
	}
	return Open(dsn)
}
