//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error { return nil }

func ftsUpsert(tx *sql.Tx, id, typeID, body string) error { return nil }

func ftsClear(tx *sql.Tx) {}

// Search falls back to a LIKE scan over node ids and bodies when the
// binary was built without the sqlite_fts5 tag.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + strings.ReplaceAll(strings.ReplaceAll(query, "%", `\%`), "_", `\_`) + "%"
	rows, err := db.conn.Query(`
		SELECT id, type_id, substr(body, 1, 200)
		FROM nodes
		WHERE id LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\'
		ORDER BY id
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.TypeID, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
