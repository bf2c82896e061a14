package metrics

// Noop discards every measurement.
type Noop struct{}

func (Noop) RecordTickerOutcome(string) {}

func (Noop) RecordCacheLookup(string, bool) {}

func (Noop) RecordError(string) {}

func (Noop) RecordLatency(string, float64) {}

func (Noop) RecordRun(float64, int, int) {}
