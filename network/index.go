package network

import "strconv"

// Index maps between string identifiers (node ids, feature names) and
// dense integer positions.
type Index struct {
	ToID  map[string]int
	ToStr []string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		ToID: make(map[string]int),
	}
}

// NewSequentialIndex creates an index naming positions "0".."n-1".
func NewSequentialIndex(n int) *Index {
	idx := NewIndex()
	for i := range n {
		idx.Add(strconv.Itoa(i))
	}
	return idx
}

// Add adds a string to the index if not already present, returns its position.
func (x *Index) Add(s string) int {
	if id, ok := x.ToID[s]; ok {
		return id
	}
	id := len(x.ToStr)
	x.ToID[s] = id
	x.ToStr = append(x.ToStr, s)
	return id
}

// Get returns the position for a string, or -1 if not found.
func (x *Index) Get(s string) int {
	if id, ok := x.ToID[s]; ok {
		return id
	}
	return -1
}

// Name returns the string at position id, or "" when out of range.
func (x *Index) Name(id int) string {
	if id < 0 || id >= len(x.ToStr) {
		return ""
	}
	return x.ToStr[id]
}

// Size returns the number of entries.
func (x *Index) Size() int {
	return len(x.ToStr)
}
