package sink

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"funnelforge/pkg/errors"
)

// JSONL writes each dataset to <dir>/<dataset>.jsonl, one record per
// line. Files are created lazily on first write.
type JSONL struct {
	dir     string
	files   map[string]*os.File
	writers map[string]*bufio.Writer
}

// NewJSONL creates a JSONL sink rooted at dir, creating it if needed.
func NewJSONL(dir string) (*JSONL, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.SinkError("failed to create output directory", "", err).
			WithContext("dir", dir)
	}
	return &JSONL{
		dir:     dir,
		files:   make(map[string]*os.File),
		writers: make(map[string]*bufio.Writer),
	}, nil
}

// Write appends one record as a JSON line.
func (s *JSONL) Write(dataset string, record any) error {
	w, err := s.writer(dataset)
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return errors.SinkError("failed to marshal record", dataset, err)
	}
	if _, err := w.Write(data); err != nil {
		return errors.SinkError("failed to write record", dataset, err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return errors.SinkError("failed to write record", dataset, err)
	}
	return nil
}

// Close flushes and closes every open dataset file.
func (s *JSONL) Close() error {
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)

	var firstErr error
	for _, name := range names {
		if err := s.writers[name].Flush(); err != nil && firstErr == nil {
			firstErr = errors.SinkError("failed to flush dataset", name, err)
		}
		if err := s.files[name].Close(); err != nil && firstErr == nil {
			firstErr = errors.SinkError("failed to close dataset", name, err)
		}
	}
	s.files = make(map[string]*os.File)
	s.writers = make(map[string]*bufio.Writer)
	return firstErr
}

func (s *JSONL) writer(dataset string) (*bufio.Writer, error) {
	if w, ok := s.writers[dataset]; ok {
		return w, nil
	}

	path := filepath.Join(s.dir, dataset+".jsonl")
	f, err := os.Create(path) // #nosec G304 - path is built from a fixed dataset name
	if err != nil {
		return nil, errors.SinkError("failed to create dataset file", dataset, err).
			WithContext("path", path)
	}
	w := bufio.NewWriterSize(f, 1<<20)
	s.files[dataset] = f
	s.writers[dataset] = w
	return w, nil
}
