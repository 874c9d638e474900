package source

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// rootParentID is the parent id the host gives to top-level media items.
const rootParentID = -1

// SQLiteProvider reads the media tree from a SQLite snapshot.
//
// The snapshot holds one row per node in media_node and one row per
// property value in media_property. Top-level nodes have a NULL or -1
// parent_id. Children are ordered by sort_order, then id.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLite opens (and if needed creates) a snapshot database.
// Use ":memory:" for a throwaway database.
func OpenSQLite(dbPath string) (*SQLiteProvider, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection: keeps :memory: databases alive and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteProvider{db: db, dbPath: dbPath}, nil
}

// Close closes the database.
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

// Roots returns the top-level nodes.
func (s *SQLiteProvider) Roots(ctx context.Context) ([]RawNode, error) {
	nodes, err := s.queryNodes(ctx, `
		SELECT id, node_key, name, content_type, sort_order
		FROM media_node
		WHERE parent_id IS NULL OR parent_id = ?
		ORDER BY sort_order, id`, rootParentID)
	if err != nil {
		return nil, fmt.Errorf("query roots: %w", err)
	}
	return nodes, nil
}

// Children returns one page of the children of parentID.
func (s *SQLiteProvider) Children(ctx context.Context, parentID, page, pageSize int) ([]RawNode, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media_node WHERE parent_id = ?`, parentID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count children of %d: %w", parentID, err)
	}

	nodes, err := s.queryNodes(ctx, `
		SELECT id, node_key, name, content_type, sort_order
		FROM media_node
		WHERE parent_id = ?
		ORDER BY sort_order, id
		LIMIT ? OFFSET ?`, parentID, pageSize, page*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("query children of %d: %w", parentID, err)
	}
	return nodes, total, nil
}

// queryNodes reads all matching rows first and only then loads their
// properties, since the pool holds a single connection.
func (s *SQLiteProvider) queryNodes(ctx context.Context, query string, args ...any) ([]RawNode, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var nodes []RawNode
	for rows.Next() {
		var n RawNode
		if err := rows.Scan(&n.ID, &n.Key, &n.Name, &n.ContentType, &n.SortOrder); err != nil {
			rows.Close()
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range nodes {
		props, err := s.properties(ctx, nodes[i].ID)
		if err != nil {
			return nil, err
		}
		nodes[i].Properties = props
	}
	return nodes, nil
}

func (s *SQLiteProvider) properties(ctx context.Context, nodeID int) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT alias, COALESCE(value, '') FROM media_property WHERE node_id = ?`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("query properties of %d: %w", nodeID, err)
	}
	defer rows.Close()

	props := make(map[string]string)
	for rows.Next() {
		var alias, value string
		if err := rows.Scan(&alias, &value); err != nil {
			return nil, err
		}
		props[alias] = value
	}
	return props, rows.Err()
}

// Insert stores node under parentID (use -1 for a top-level node),
// replacing any existing node with the same id.
func (s *SQLiteProvider) Insert(ctx context.Context, parentID int, node RawNode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO media_node (id, parent_id, sort_order, node_key, name, content_type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		node.ID, parentID, node.SortOrder, node.Key, node.Name, node.ContentType)
	if err != nil {
		return fmt.Errorf("insert node %d: %w", node.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM media_property WHERE node_id = ?`, node.ID); err != nil {
		return fmt.Errorf("clear properties of %d: %w", node.ID, err)
	}
	for alias, value := range node.Properties {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO media_property (node_id, alias, value) VALUES (?, ?, ?)`,
			node.ID, alias, value)
		if err != nil {
			return fmt.Errorf("insert property %s of %d: %w", alias, node.ID, err)
		}
	}

	return tx.Commit()
}

// Snapshot copies the whole tree of src into dst and returns the number of
// nodes written. Children of every node are copied, not only of folders.
func Snapshot(ctx context.Context, src Provider, dst *SQLiteProvider, pageSize int) (int, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	roots, err := src.Roots(ctx)
	if err != nil {
		return 0, fmt.Errorf("load media roots: %w", err)
	}

	count := 0
	var copyNode func(parentID int, node RawNode) error
	copyNode = func(parentID int, node RawNode) error {
		if err := dst.Insert(ctx, parentID, node); err != nil {
			return err
		}
		count++

		for page := 0; ; page++ {
			items, total, err := src.Children(ctx, node.ID, page, pageSize)
			if err != nil {
				return fmt.Errorf("load children of %d: %w", node.ID, err)
			}
			for _, child := range items {
				if err := copyNode(node.ID, child); err != nil {
					return err
				}
			}
			if len(items) == 0 || (page+1)*pageSize >= total {
				return nil
			}
		}
	}

	for _, root := range roots {
		if err := copyNode(rootParentID, root); err != nil {
			return count, err
		}
	}
	return count, nil
}
