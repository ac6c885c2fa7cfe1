package history

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// RepeatChar starts a history expression such as "!!" or "!-2".
const RepeatChar = '!'

var ErrEntryNotFound = errors.New("history entry not found")

type HistoryManager struct {
	db *gorm.DB
}

type HistoryEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	Command   string
	Directory string
	ExitCode  sql.NullInt32
}

func NewHistoryManager(dbFilePath string) (*HistoryManager, error) {
	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("error opening history database: %w", err)
	}

	if err := db.AutoMigrate(&HistoryEntry{}); err != nil {
		return nil, err
	}

	return &HistoryManager{
		db: db,
	}, nil
}

// Close closes the database connection.
func (historyManager *HistoryManager) Close() error {
	sqlDB, err := historyManager.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (historyManager *HistoryManager) StartCommand(command string, directory string) (*HistoryEntry, error) {
	entry := HistoryEntry{
		Command:   command,
		Directory: directory,
	}

	result := historyManager.db.Create(&entry)
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

func (historyManager *HistoryManager) FinishCommand(entry *HistoryEntry, exitCode int) (*HistoryEntry, error) {
	entry.ExitCode = sql.NullInt32{Int32: int32(exitCode), Valid: true}

	result := historyManager.db.Save(entry)
	if result.Error != nil {
		return nil, result.Error
	}

	return entry, nil
}

// GetRecentEntries returns up to limit entries, oldest first. An empty
// directory matches every directory.
func (historyManager *HistoryManager) GetRecentEntries(directory string, limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	var db = historyManager.db
	if directory != "" {
		db = db.Where("directory = ?", directory)
	}
	result := db.Order("id desc").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return lo.Reverse(entries), nil
}

// GetRecentCommands returns up to limit command lines, most recent first.
func (historyManager *HistoryManager) GetRecentCommands(limit int) ([]string, error) {
	var commands []string
	result := historyManager.db.Model(&HistoryEntry{}).
		Order("id desc").
		Limit(limit).
		Pluck("command", &commands)
	if result.Error != nil {
		return nil, result.Error
	}
	return commands, nil
}

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

func (historyManager *HistoryManager) ResetHistory() error {
	result := historyManager.db.Exec("DELETE FROM history_entries")
	if result.Error != nil {
		return result.Error
	}

	return nil
}

func (historyManager *HistoryManager) GetRecentEntriesByPrefix(prefix string, limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	result := historyManager.db.Where("command LIKE ?", prefix+"%").
		Order("id desc").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// IsExpression reports whether s is a history expression.
func IsExpression(s string) bool {
	return len(s) > 1 && s[0] == RepeatChar
}

// FindString resolves a history expression to the command line it names:
//
//	!!   the most recent command
//	!-N  the Nth most recent command, !-1 being the same as !!
//	!N   the Nth command ever recorded, counting from 1
func (historyManager *HistoryManager) FindString(expr string) (string, error) {
	if !IsExpression(expr) {
		return "", fmt.Errorf("not a history expression: %q", expr)
	}

	body := expr[1:]
	if body == string(RepeatChar) {
		body = "-1"
	}

	fromEnd := strings.HasPrefix(body, "-")
	n, err := strconv.Atoi(strings.TrimPrefix(body, "-"))
	if err != nil || n < 1 {
		return "", fmt.Errorf("invalid history expression %q", expr)
	}

	order := "id asc"
	if fromEnd {
		order = "id desc"
	}

	var entry HistoryEntry
	result := historyManager.db.Order(order).Offset(n - 1).Limit(1).Find(&entry)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", fmt.Errorf("%w: %s", ErrEntryNotFound, expr)
	}
	return entry.Command, nil
}
