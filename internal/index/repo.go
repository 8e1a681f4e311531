package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/graph"
)

// NodeRow is one row of the nodes table.
type NodeRow struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	TypeID    string    `json:"typeId"`
	RecordID  string    `json:"recordId,omitempty"`
	File      string    `json:"file"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchResult is one full-text search hit.
type SearchResult struct {
	ID      string `json:"id"`
	TypeID  string `json:"typeId"`
	Snippet string `json:"snippet"`
}

// GraphLink is one directed edge for graph export.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ReplaceGraph replaces the whole index with the contents of a freshly
// built graph, in one transaction.
func (db *DB) ReplaceGraph(g *graph.Graph) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, table := range []string{"links", "type_defs", "nodes"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("index: clear %s: %w", table, err)
		}
	}
	ftsClear(tx)

	now := time.Now().UTC()
	nodeStmt, err := tx.Prepare(`
		INSERT INTO nodes (id, kind, type_id, record_id, file, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	linkStmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	for _, n := range g.Nodes() {
		if _, err := nodeStmt.Exec(n.ID, n.Kind, n.TypeID, n.RecordID, n.File, n.Body, now); err != nil {
			return fmt.Errorf("index: insert node %s: %w", n.ID, err)
		}
		if err := ftsUpsert(tx, n.ID, n.TypeID, n.Body); err != nil {
			return err
		}
		for _, target := range g.LinksFrom(n.ID) {
			if _, err := linkStmt.Exec(n.ID, target); err != nil {
				return fmt.Errorf("index: insert link %s -> %s: %w", n.ID, target, err)
			}
		}
	}

	for _, def := range g.Types() {
		if _, err := tx.Exec(`INSERT INTO type_defs (record_type_id, node_id, file) VALUES (?, ?, ?)`,
			def.RecordTypeID, def.NodeID, def.File); err != nil {
			return fmt.Errorf("index: insert type def %s: %w", def.RecordTypeID, err)
		}
	}

	return tx.Commit()
}

// GetNode returns one node by id, or apperr.ErrNotFound.
func (db *DB) GetNode(id string) (*NodeRow, string, error) {
	var row NodeRow
	var body string
	err := db.conn.QueryRow(`
		SELECT id, kind, type_id, record_id, file, body, updated_at
		FROM nodes WHERE id = ?
	`, id).Scan(&row.ID, &row.Kind, &row.TypeID, &row.RecordID, &row.File, &body, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", apperr.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("index: get node: %w", err)
	}
	return &row, body, nil
}

// ListNodes returns nodes filtered by kind and/or type id, paginated, with
// the unfiltered-total count for the same filter.
func (db *DB) ListNodes(kind, typeID string, limit, offset int) ([]NodeRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	where := `WHERE (? = '' OR kind = ?) AND (? = '' OR type_id = ?)`
	args := []any{kind, kind, typeID, typeID}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM nodes `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count nodes: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT id, kind, type_id, record_id, file, updated_at
		FROM nodes `+where+` ORDER BY id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list nodes: %w", err)
	}
	defer rows.Close()

	var out []NodeRow
	for rows.Next() {
		var r NodeRow
		if err := rows.Scan(&r.ID, &r.Kind, &r.TypeID, &r.RecordID, &r.File, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// Links returns the ids a node links to, sorted.
func (db *DB) Links(source string) ([]string, error) {
	return db.linkColumn(`SELECT target FROM links WHERE source = ? ORDER BY target`, source)
}

// Backlinks returns the ids of nodes linking to target, sorted.
func (db *DB) Backlinks(target string) ([]string, error) {
	return db.linkColumn(`SELECT source FROM links WHERE target = ? ORDER BY source`, target)
}

func (db *DB) linkColumn(query, arg string) ([]string, error) {
	rows, err := db.conn.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("index: links: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Export returns every node and edge for graph visualization. Unlike
// ListNodes it is unpaginated: the graph is only meaningful whole.
func (db *DB) Export() ([]NodeRow, []GraphLink, error) {
	nodeRows, err := db.conn.Query(`
		SELECT id, kind, type_id, record_id, file, updated_at
		FROM nodes ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: export nodes: %w", err)
	}
	defer nodeRows.Close()

	var nodes []NodeRow
	for nodeRows.Next() {
		var r NodeRow
		if err := nodeRows.Scan(&r.ID, &r.Kind, &r.TypeID, &r.RecordID, &r.File, &r.UpdatedAt); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, r)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, nil, err
	}
	rows, err := db.conn.Query(`SELECT source, target FROM links ORDER BY source, target`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: export links: %w", err)
	}
	defer rows.Close()

	var links []GraphLink
	for rows.Next() {
		var l GraphLink
		if err := rows.Scan(&l.Source, &l.Target); err != nil {
			return nil, nil, err
		}
		links = append(links, l)
	}
	return nodes, links, rows.Err()
}
