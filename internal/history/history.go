// Package history persists the commands entered in the fsagent REPL.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// HistoryManager stores REPL commands in a SQLite database.
type HistoryManager struct {
	db         *gorm.DB
	schemaPath string
	logger     *zap.Logger
}

// HistoryEntry is one command entered at the prompt.
type HistoryEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	Command   string
	Directory string
	// Succeeded is unset until FinishCommand is called.
	Succeeded sql.NullBool
}

const (
	historySchemaVersion = 2

	// searchWindow bounds how many recent commands a fuzzy search ranks.
	searchWindow = 2000
)

// NewHistoryManager opens (creating if needed) the history database at
// dbFilePath. The schema version marker is kept next to the database file.
func NewHistoryManager(dbFilePath string, log *zap.Logger) (*HistoryManager, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dbFileExists := true
	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		dbFileExists = false
	} else if err != nil {
		return nil, fmt.Errorf("error checking history db: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening history db: %w", err)
	}

	hm := &HistoryManager{
		db:         db,
		schemaPath: filepath.Join(filepath.Dir(dbFilePath), "history_schema_version"),
		logger:     log,
	}

	if hm.needsMigration(dbFileExists) {
		log.Debug("migrating history schema", zap.String("path", dbFilePath))
		if err := db.AutoMigrate(&HistoryEntry{}); err != nil {
			return nil, fmt.Errorf("error auto-migrating history schema: %w", err)
		}
		if err := os.WriteFile(hm.schemaPath, []byte(strconv.Itoa(historySchemaVersion)), 0644); err != nil {
			return nil, fmt.Errorf("error writing history schema version: %w", err)
		}
	}

	return hm, nil
}

func (historyManager *HistoryManager) needsMigration(dbFileExists bool) bool {
	if !dbFileExists {
		return true
	}

	if err := historyManager.checkSchemaVersion(); err != nil {
		historyManager.logger.Debug("history schema out of date", zap.Error(err))
		return true
	}

	// The version marker may survive a deleted table.
	return !historyManager.db.Migrator().HasTable(&HistoryEntry{})
}

func (historyManager *HistoryManager) checkSchemaVersion() error {
	data, err := os.ReadFile(historyManager.schemaPath)
	if err != nil {
		return err
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return err
	}
	if version != historySchemaVersion {
		return fmt.Errorf("history schema version mismatch: got %d, want %d", version, historySchemaVersion)
	}
	return nil
}

// Close releases the underlying database handle.
func (historyManager *HistoryManager) Close() error {
	sqlDB, err := historyManager.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StartCommand records a command before it runs.
func (historyManager *HistoryManager) StartCommand(command string, directory string) (*HistoryEntry, error) {
	entry := HistoryEntry{
		Command:   command,
		Directory: directory,
	}

	if result := historyManager.db.Create(&entry); result.Error != nil {
		return nil, result.Error
	}
	return &entry, nil
}

// FinishCommand records whether a started command succeeded.
func (historyManager *HistoryManager) FinishCommand(entry *HistoryEntry, succeeded bool) (*HistoryEntry, error) {
	entry.Succeeded = sql.NullBool{Bool: succeeded, Valid: true}

	if result := historyManager.db.Save(entry); result.Error != nil {
		return nil, result.Error
	}
	return entry, nil
}

// GetRecentEntries returns up to limit entries in chronological order,
// optionally restricted to one directory.
func (historyManager *HistoryManager) GetRecentEntries(directory string, limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	db := historyManager.db
	if directory != "" {
		db = db.Where("directory = ?", directory)
	}
	if result := db.Order("id desc").Limit(limit).Find(&entries); result.Error != nil {
		return nil, result.Error
	}

	slices.Reverse(entries)
	return entries, nil
}

// GetRecentEntriesByPrefix returns entries starting with prefix, most recent first.
func (historyManager *HistoryManager) GetRecentEntriesByPrefix(prefix string, limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	result := historyManager.db.Where("command LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("id desc").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

// SearchHistory fuzzy-matches query against recent commands and returns up
// to limit distinct commands, best match first.
func (historyManager *HistoryManager) SearchHistory(query string, limit int) ([]HistoryEntry, error) {
	var recent []HistoryEntry
	if result := historyManager.db.Order("id desc").Limit(searchWindow).Find(&recent); result.Error != nil {
		return nil, result.Error
	}

	seen := map[string]bool{}
	var unique []HistoryEntry
	for _, entry := range recent {
		if seen[entry.Command] {
			continue
		}
		seen[entry.Command] = true
		unique = append(unique, entry)
	}

	if query == "" {
		return unique[:min(limit, len(unique))], nil
	}

	commands := make([]string, len(unique))
	for i, entry := range unique {
		commands[i] = entry.Command
	}

	matches := fuzzy.Find(query, commands)
	entries := make([]HistoryEntry, 0, min(limit, len(matches)))
	for _, match := range matches {
		if len(entries) == limit {
			break
		}
		entries = append(entries, unique[match.Index])
	}
	return entries, nil
}

// DeleteEntry removes one entry by id.
func (historyManager *HistoryManager) DeleteEntry(id uint) error {
	result := historyManager.db.Delete(&HistoryEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no history entry found with id %d", id)
	}
	return nil
}

// ResetHistory removes every entry.
func (historyManager *HistoryManager) ResetHistory() error {
	return historyManager.db.Exec("DELETE FROM history_entries").Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
