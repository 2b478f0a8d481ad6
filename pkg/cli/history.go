package cli

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// History persists REPL input lines to a sqlite database so sessions can
// recall earlier work.
type History struct {
	db *sql.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	line TEXT NOT NULL
);`

// OpenHistory opens or creates the history database at path.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing history %s: %w", path, err)
	}
	return &History{db: db}, nil
}

func (h *History) Append(line string) error {
	_, err := h.db.Exec("INSERT INTO history (line) VALUES (?)", line)
	return err
}

// Recent returns up to n lines, oldest first.
func (h *History) Recent(n int) ([]string, error) {
	rows, err := h.db.Query(
		"SELECT line FROM (SELECT id, line FROM history ORDER BY id DESC LIMIT ?) ORDER BY id ASC", n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (h *History) Close() error {
	return h.db.Close()
}
