package agent

// Failure is a classified agent error. Retryable marks connection-class
// failures (already retried internally); the orchestrator uses the flag
// only to word the persisted failure message.
type Failure struct {
  Reason    string
  Retryable bool
}

func (f *Failure) Error() string { return f.Reason }

// Result is the outcome of one agent invocation: either Content is set or
// Failure is set, never both.
type Result struct {
  Content string
  Failure *Failure
}

func (r Result) OK() bool { return r.Failure == nil && r.Content != "" }
