package logger

import "time"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation is one entry of the operation log consumed by the quality report.
type Operation struct {
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Dataset   string    `json:"dataset"`
	Records   int       `json:"records"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
}

// OperationLog collects the operations executed during a pipeline run.
// It is passed explicitly to every stage; the zero value is ready to use.
type OperationLog struct {
	entries []Operation
	now     func() time.Time
}

func NewOperationLog(now func() time.Time) *OperationLog {
	return &OperationLog{now: now}
}

func (l *OperationLog) Record(op Operation) {
	if op.Timestamp.IsZero() {
		op.Timestamp = l.clock()
	}
	l.entries = append(l.entries, op)
}

func (l *OperationLog) Success(operation, dataset string, records int) {
	l.Record(Operation{Operation: operation, Dataset: dataset, Records: records, Status: StatusSuccess})
}

func (l *OperationLog) Failure(operation, dataset string, err error) {
	op := Operation{Operation: operation, Dataset: dataset, Status: StatusError}
	if err != nil {
		op.Message = err.Error()
	}
	l.Record(op)
}

// Entries returns a copy of the recorded operations in insertion order.
func (l *OperationLog) Entries() []Operation {
	out := make([]Operation, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *OperationLog) Failures() int {
	n := 0
	for _, e := range l.entries {
		if e.Status == StatusError {
			n++
		}
	}
	return n
}

func (l *OperationLog) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}
