package language

import (
	"sync"

	"go.uber.org/zap"
)

// Diagnostic records a numerical defect detected while scoring. Defects are
// reported, not returned, so that an evaluation can run to completion.
type Diagnostic struct {
	Model   string
	Context string
	Word    string
	Value   float64
	Reason  string
}

// Diagnostics collects Diagnostic values. It is safe for concurrent use
// because frozen models record defects from read paths.
type Diagnostics struct {
	mu     sync.Mutex
	items  []Diagnostic
	logger *zap.Logger
}

func newDiagnostics(logger *zap.Logger) *Diagnostics {
	return &Diagnostics{logger: logger}
}

// Report records d and logs it at warn level.
func (d *Diagnostics) Report(diag Diagnostic) {
	d.mu.Lock()
	d.items = append(d.items, diag)
	d.mu.Unlock()
	d.logger.Warn("invalid probability",
		zap.String("model", diag.Model),
		zap.String("context", diag.Context),
		zap.String("word", diag.Word),
		zap.Float64("value", diag.Value),
		zap.String("reason", diag.Reason),
	)
}

// All returns a copy of the recorded diagnostics.
func (d *Diagnostics) All() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	return out
}

// Len returns the number of recorded diagnostics.
func (d *Diagnostics) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// Diagnoser is implemented by models that report numerical defects.
type Diagnoser interface {
	Diagnostics() *Diagnostics
}
