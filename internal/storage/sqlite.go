package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/rohansaphal97/rmllib/network"

	_ "modernc.org/sqlite"
)

// Schema creates the tables LoadSQLite reads. Features missing from
// node_features are 0; a NULL label on an Unlabeled node means belief 0 and is an error
// on a Labeled one.
const Schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id      TEXT PRIMARY KEY,
	label   REAL,
	labeled INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS node_features (
	node_id TEXT NOT NULL REFERENCES nodes(id),
	feature TEXT NOT NULL,
	value   REAL NOT NULL DEFAULT 1,
	PRIMARY KEY (node_id, feature)
);
CREATE TABLE IF NOT EXISTS edges (
	src    TEXT NOT NULL REFERENCES nodes(id),
	dst    TEXT NOT NULL REFERENCES nodes(id),
	weight REAL NOT NULL DEFAULT 1
);
`

// LoadSQLite reads a dataset from a SQLite database laid out as Schema.
// Nodes keep their insertion order; features are ordered by name.
func LoadSQLite(ctx context.Context, path string, opts LoadOptions) (*network.Dataset, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	b := newBuilder()
	if err := loadFeatureNames(ctx, db, b); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := loadNodes(ctx, db, b); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := loadNodeFeatures(ctx, db, b); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := loadEdges(ctx, db, b, opts); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	ds, err := b.build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("Dataset loaded", "db", path, "nodes", ds.N(), "features", ds.NumFeatures(),
		"labeled", len(ds.LabeledIndices()), "edges", len(b.edges))
	return ds, nil
}

func loadFeatureNames(ctx context.Context, db *sql.DB, b *builder) error {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT feature FROM node_features ORDER BY feature`)
	if err != nil {
		return fmt.Errorf("query features: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan feature: %w", err)
		}
		b.features.Add(name)
	}
	return rows.Err()
}

func loadNodes(ctx context.Context, db *sql.DB, b *builder) error {
	rows, err := db.QueryContext(ctx, `SELECT id, label, labeled FROM nodes ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	f := b.features.Size()
	for rows.Next() {
		var (
			id      string
			label   sql.NullFloat64
			labeled bool
		)
		if err := rows.Scan(&id, &label, &labeled); err != nil {
			return fmt.Errorf("scan node: %w", err)
		}
		if labeled && !label.Valid {
			return fmt.Errorf("node %q: %w", id, ErrMissingLabel)
		}
		if err := b.addNode(id, label.Float64, labeled, make([]float64, f)); err != nil {
			return err
		}
	}
	return rows.Err()
}

func loadNodeFeatures(ctx context.Context, db *sql.DB, b *builder) error {
	rows, err := db.QueryContext(ctx, `SELECT node_id, feature, value FROM node_features`)
	if err != nil {
		return fmt.Errorf("query node features: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			id, feature string
			value       float64
		)
		if err := rows.Scan(&id, &feature, &value); err != nil {
			return fmt.Errorf("scan node feature: %w", err)
		}
		i := b.nodes.Get(id)
		if i < 0 {
			return fmt.Errorf("feature %q for unknown node %q", feature, id)
		}
		b.rows[i][b.features.Get(feature)] = value
	}
	return rows.Err()
}

func loadEdges(ctx context.Context, db *sql.DB, b *builder, opts LoadOptions) error {
	rows, err := db.QueryContext(ctx, `SELECT src, dst, weight FROM edges`)
	if err != nil {
		return fmt.Errorf("query edges: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			src, dst string
			w        float64
		)
		if err := rows.Scan(&src, &dst, &w); err != nil {
			return fmt.Errorf("scan edge: %w", err)
		}
		if err := b.addEdge(src, dst, w, opts.Symmetric); err != nil {
			return err
		}
	}
	return rows.Err()
}
