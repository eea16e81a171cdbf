package sink

// Memory buffers records in memory, preserving write order per
// dataset. Used by tests and by callers that post-process a run before
// persisting it.
type Memory struct {
	records map[string][]any
	closed  bool
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]any)}
}

// Write appends one record.
func (s *Memory) Write(dataset string, record any) error {
	s.records[dataset] = append(s.records[dataset], record)
	return nil
}

// Close marks the sink closed. Records stay readable.
func (s *Memory) Close() error {
	s.closed = true
	return nil
}

// Records returns the records written to a dataset, in write order.
func (s *Memory) Records(dataset string) []any {
	return s.records[dataset]
}

// Count returns how many records a dataset holds.
func (s *Memory) Count(dataset string) int {
	return len(s.records[dataset])
}

// Closed reports whether Close was called.
func (s *Memory) Closed() bool {
	return s.closed
}
