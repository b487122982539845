package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storekd-sms/internal/config"
)

// TexterRecord is a named texter configuration row. Nullable columns fall
// back to the global settings.
type TexterRecord struct {
	Name        string `gorm:"primaryKey;size:64"`
	Driver      string `gorm:"size:64;not null"`
	From        *string
	To          *string
	AsFlash     *bool
	CallbackURI *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TexterRecord) TableName() string { return "texters" }

// TexterStore implements ports.TexterStore using PostgreSQL.
type TexterStore struct {
	db *gorm.DB
}

// New opens a PostgreSQL connection and returns a TexterStore.
func New(dsn string) (*TexterStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an open gorm handle.
func NewWithDB(db *gorm.DB) *TexterStore {
	return &TexterStore{db: db}
}

// Migrate creates or updates the texters table.
func (s *TexterStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&TexterRecord{}); err != nil {
		return fmt.Errorf("migrate texters: %w", err)
	}
	return nil
}

// LoadTexters returns every stored texter keyed by name.
func (s *TexterStore) LoadTexters(ctx context.Context) (map[string]config.Texter, error) {
	var records []TexterRecord
	if err := s.db.WithContext(ctx).Order("name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query texters: %w", err)
	}

	out := make(map[string]config.Texter, len(records))
	for _, r := range records {
		out[r.Name] = r.toConfig()
	}
	return out, nil
}

// SaveTexter inserts or updates the named texter.
func (s *TexterStore) SaveTexter(ctx context.Context, name string, t config.Texter) error {
	r := TexterRecord{
		Name:        name,
		Driver:      t.Driver,
		From:        t.From,
		To:          t.To,
		AsFlash:     t.AsFlash,
		CallbackURI: t.CallbackURI,
	}
	if err := s.db.WithContext(ctx).Save(&r).Error; err != nil {
		return fmt.Errorf("save texter %s: %w", name, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *TexterStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r TexterRecord) toConfig() config.Texter {
	driver := r.Driver
	if driver == "" {
		driver = r.Name
	}
	return config.Texter{
		Driver:      driver,
		From:        r.From,
		To:          r.To,
		AsFlash:     r.AsFlash,
		CallbackURI: r.CallbackURI,
	}
}
