// Package workload enumerates the items a benchmark pass works on and
// renders the synthetic images those items point at.
package workload

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"imagebench/errors"
)

// Extension is the suffix of payload files considered part of a workload.
const Extension = ".png"

// Item is one unit of benchmark work. Key is the stable storage key (the
// file name) and Path locates the payload on disk.
type Item struct {
	Key  string
	Path string
}

// NewItem returns the item for the payload file at path.
func NewItem(path string) Item {
	return Item{Key: filepath.Base(path), Path: path}
}

// Load reads the item's payload into a pooled buffer. The caller must invoke
// release once the bytes are no longer referenced.
func (it Item) Load() (data []byte, release func(), err error) {
	f, err := os.Open(it.Path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open payload %s", it.Key)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "stat payload %s", it.Key)
	}

	buf := GetBuffer(int(st.Size()))
	if _, err := io.ReadFull(f, buf); err != nil {
		PutBuffer(buf)
		return nil, nil, errors.Wrapf(err, "read payload %s", it.Key)
	}
	return buf, func() { PutBuffer(buf) }, nil
}

// List returns the payload files in dir sorted by name, truncated to limit.
// A limit of 0 yields no items and a negative limit returns every file. A
// missing directory yields no items.
func List(dir string, limit int) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "list %s", dir)
	}

	// os.ReadDir sorts by file name
	var items []Item
	for _, e := range entries {
		if limit >= 0 && len(items) >= limit {
			break
		}
		if isPayload(e) {
			items = append(items, NewItem(filepath.Join(dir, e.Name())))
		}
	}
	return items, nil
}

// Count returns the number of payload files in dir, or 0 if it does not
// exist.
func Count(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if isPayload(e) {
			n++
		}
	}
	return n
}

func isPayload(e os.DirEntry) bool {
	return !e.IsDir() && strings.HasSuffix(e.Name(), Extension)
}

// PlannedBytes sums the payload sizes of items. Files that cannot be
// stat'ed are skipped.
func PlannedBytes(items []Item) int64 {
	var total int64
	for _, it := range items {
		st, err := os.Stat(it.Path)
		if err != nil {
			continue
		}
		total += st.Size()
	}
	return total
}
