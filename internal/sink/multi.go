package sink

// Multi fans every write out to several sinks, e.g. local JSONL plus a
// warehouse load in the same run.
type Multi struct {
	sinks []Sink
}

// NewMulti combines sinks. Writes go to each in order.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Write forwards the record to every sink, stopping on the first
// failure.
func (m *Multi) Write(dataset string, record any) error {
	for _, s := range m.sinks {
		if err := s.Write(dataset, record); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, returning the first error seen.
func (m *Multi) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
