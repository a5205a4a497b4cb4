// Package store persists login attempts to SQLite for later analysis.
// It is an optional secondary sink; the logfile remains authoritative.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/telnetpot/telnetpot/internal/session"
)

// Attempt is one captured credential pair plus what the peer claimed
// about its terminal.
type Attempt struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	Addr          string    `gorm:"index;not null"`
	Username      string    `gorm:"not null"`
	Password      string    `gorm:"not null"`
	TerminalType  string
	TerminalWidth int
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

type Store struct {
	db *gorm.DB
}

// Open opens the database and migrates the schema. The journal is kept
// in memory because the process chroots right after startup: the main
// database descriptor stays usable, but SQLite could no longer create
// journal files on disk.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=MEMORY"); err != nil {
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if err := db.AutoMigrate(&Attempt{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(rec session.CredentialRecord) error {
	a := Attempt{
		Addr:          rec.Addr,
		Username:      rec.Username,
		Password:      rec.Password,
		TerminalType:  rec.TerminalType,
		TerminalWidth: rec.TerminalWidth,
	}
	if err := s.db.Create(&a).Error; err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// Recent returns the most recent attempts, newest first.
func (s *Store) Recent(limit int) ([]Attempt, error) {
	var out []Attempt
	err := s.db.Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Store) Count() (int64, error) {
	var n int64
	err := s.db.Model(&Attempt{}).Count(&n).Error
	return n, err
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
