// Package storage loads network datasets from a data folder of CSV files or
// from a SQLite database.
package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rohansaphal97/rmllib/network"
	"gonum.org/v1/gonum/mat"
)

const (
	nodesFile = "nodes.csv"
	edgesFile = "edges.csv"
)

// Storage wraps a dataset folder.
type Storage struct {
	Folder string
}

// NewStorage creates a Storage for the given data folder.
func NewStorage(folder string) *Storage {
	return &Storage{Folder: folder}
}

// LoadOptions controls how edges are read.
type LoadOptions struct {
	// Symmetric mirrors every edge so that i->j also adds j->i.
	Symmetric bool
}

// DefaultLoadOptions returns the default options: edges are directed.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{}
}

// Open loads a dataset from a folder or, for .db/.sqlite/.sqlite3 files, a
// SQLite database.
func Open(ctx context.Context, path string, opts LoadOptions) (*network.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return NewStorage(path).Load(opts)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(ctx, path, opts)
	}
	return nil, fmt.Errorf("unsupported dataset %s: want a folder or a SQLite file", path)
}

// Load reads nodes.csv and, if present, edges.csv.
//
// nodes.csv starts with the columns id,label,labeled followed by one column
// per binary feature. An empty label on an Unlabeled node means belief 0; a Labeled
// node must have one.
// edges.csv has the columns src,dst and an optional weight (default 1);
// repeated pairs add up.
func (s *Storage) Load(opts LoadOptions) (*network.Dataset, error) {
	b := newBuilder()
	if err := s.readNodes(b); err != nil {
		return nil, err
	}
	if err := s.readEdges(b, opts); err != nil {
		return nil, err
	}
	ds, err := b.build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Folder, err)
	}
	slog.Debug("Dataset loaded", "folder", s.Folder, "nodes", ds.N(), "features", ds.NumFeatures(),
		"labeled", len(ds.LabeledIndices()), "edges", len(b.edges))
	return ds, nil
}

func (s *Storage) readNodes(b *builder) error {
	path := filepath.Join(s.Folder, nodesFile)
	records, err := readCSV(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%s: missing header", path)
	}
	header := records[0]
	if len(header) < 3 || !strings.EqualFold(header[0], "id") ||
		!strings.EqualFold(header[1], "label") || !strings.EqualFold(header[2], "labeled") {
		return fmt.Errorf("%s: header must start with id,label,labeled", path)
	}
	for _, name := range header[3:] {
		b.features.Add(strings.TrimSpace(name))
	}

	for line, rec := range records[1:] {
		if len(rec) != len(header) {
			return fmt.Errorf("%s:%d: %d columns, want %d", path, line+2, len(rec), len(header))
		}
		labeled, err := parseBool(rec[2])
		if err != nil {
			return fmt.Errorf("%s:%d: labeled: %w", path, line+2, err)
		}
		if labeled && strings.TrimSpace(rec[1]) == "" {
			return fmt.Errorf("%s:%d: %w", path, line+2, ErrMissingLabel)
		}
		label, err := parseFloat(rec[1], 0)
		if err != nil {
			return fmt.Errorf("%s:%d: label: %w", path, line+2, err)
		}
		row := make([]float64, len(header)-3)
		for j, v := range rec[3:] {
			if row[j], err = parseFloat(v, 0); err != nil {
				return fmt.Errorf("%s:%d: feature %s: %w", path, line+2, header[3+j], err)
			}
		}
		if err := b.addNode(strings.TrimSpace(rec[0]), label, labeled, row); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line+2, err)
		}
	}
	return nil
}

func (s *Storage) readEdges(b *builder, opts LoadOptions) error {
	path := filepath.Join(s.Folder, edgesFile)
	records, err := readCSV(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("No edges file, dataset has no edges", "path", path)
		return nil
	}
	if err != nil {
		return err
	}
	for line, rec := range records {
		if line == 0 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "src") {
			continue
		}
		if len(rec) < 2 {
			return fmt.Errorf("%s:%d: want src,dst[,weight]", path, line+1)
		}
		w := 1.0
		if len(rec) > 2 {
			if w, err = parseFloat(rec[2], 1); err != nil {
				return fmt.Errorf("%s:%d: weight: %w", path, line+1, err)
			}
		}
		if err := b.addEdge(strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), w, opts.Symmetric); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line+1, err)
		}
	}
	return nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseFloat(s string, empty float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return empty, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "no", "n":
		return false, nil
	case "yes", "y":
		return true, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}

// ErrMissingLabel is returned for a Labeled node with no label value.
var ErrMissingLabel = errors.New("storage: labeled node has no label")

type edgeKey struct{ src, dst int }

// builder accumulates nodes and edges before the matrices are allocated.
type builder struct {
	nodes    *network.Index
	features *network.Index
	labels   []float64
	labeled  []bool
	rows     [][]float64
	edges    map[edgeKey]float64
}

func newBuilder() *builder {
	return &builder{
		nodes:    network.NewIndex(),
		features: network.NewIndex(),
		edges:    make(map[edgeKey]float64),
	}
}

func (b *builder) addNode(id string, label float64, labeled bool, row []float64) error {
	if id == "" {
		return fmt.Errorf("empty node id")
	}
	if b.nodes.Get(id) >= 0 {
		return fmt.Errorf("duplicate node %q", id)
	}
	b.nodes.Add(id)
	b.labels = append(b.labels, label)
	b.labeled = append(b.labeled, labeled)
	b.rows = append(b.rows, row)
	return nil
}

func (b *builder) addEdge(src, dst string, w float64, symmetric bool) error {
	i, j := b.nodes.Get(src), b.nodes.Get(dst)
	if i < 0 {
		return fmt.Errorf("unknown node %q", src)
	}
	if j < 0 {
		return fmt.Errorf("unknown node %q", dst)
	}
	b.edges[edgeKey{i, j}] += w
	if symmetric && i != j {
		b.edges[edgeKey{j, i}] += w
	}
	return nil
}

func (b *builder) build() (*network.Dataset, error) {
	n, f := b.nodes.Size(), b.features.Size()
	if n == 0 || f == 0 {
		return nil, network.ErrEmpty
	}
	x := mat.NewDense(n, f, nil)
	for i, row := range b.rows {
		x.SetRow(i, row)
	}
	e := mat.NewDense(n, n, nil)
	for k, w := range b.edges {
		e.Set(k.src, k.dst, w)
	}
	ds := &network.Dataset{
		Nodes:        b.nodes,
		FeatureNames: b.features,
		Features:     x,
		Labels:       b.labels,
		Edges:        e,
		Labeled:      b.labeled,
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}
