package tool

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/smallnest/dinerec/log"
)

// Known tool names. The registry is a closed table: anything outside it is
// reported as an unknown tool, never dispatched dynamically.
const (
	NameMapsSearch  = "gmap.search"
	NameNotesSearch = "xhs.search"
)

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 8 * time.Second

// Invoker performs one external retrieval.
type Invoker interface {
	// Name returns the registry name of the tool, e.g. "gmap.search".
	Name() string

	// Description returns a human-readable description used in planner
	// tool schemas.
	Description() string

	// Invoke performs the retrieval. The returned output is normally a
	// []map[string]any row list.
	Invoke(ctx context.Context, params map[string]any) (any, error)
}

// Call is one planned tool invocation.
type Call struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// Query returns the "query" parameter of the call, if any.
func (c Call) Query() string {
	q, _ := c.Parameters["query"].(string)
	return q
}

// Execution is the normalized outcome of one tool invocation. Success
// implies Output is present (possibly an empty list); a failure never
// carries an output.
type Execution struct {
	Tool    string         `json:"tool"`
	Input   map[string]any `json:"input"`
	Output  any            `json:"output,omitempty"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
}

// ResultsCount returns the length of the output when it is list-shaped,
// otherwise 0.
func (e Execution) ResultsCount() int {
	switch out := e.Output.(type) {
	case []any:
		return len(out)
	case []map[string]any:
		return len(out)
	default:
		return 0
	}
}

// Registry maps tool names to invokers and dispatches calls with a bounded
// per-call timeout. Failures are captured in the Execution record, never
// raised.
type Registry struct {
	invokers map[string]Invoker
	timeout  time.Duration
	logger   log.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTimeout sets the per-invocation timeout.
func WithTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger log.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a registry holding the given invokers.
func NewRegistry(invokers []Invoker, opts ...RegistryOption) *Registry {
	r := &Registry{
		invokers: make(map[string]Invoker, len(invokers)),
		timeout:  DefaultTimeout,
		logger:   log.GetDefaultLogger(),
	}
	for _, inv := range invokers {
		r.invokers[inv.Name()] = inv
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces an invoker.
func (r *Registry) Register(inv Invoker) {
	r.invokers[inv.Name()] = inv
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.invokers))
	for name := range r.invokers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invokers returns the registered invokers.
func (r *Registry) Invokers() []Invoker {
	invs := make([]Invoker, 0, len(r.invokers))
	for _, name := range r.Names() {
		invs = append(invs, r.invokers[name])
	}
	return invs
}

// Dispatch runs one tool call and returns its execution record. Unknown
// names, timeouts, panics and invoker errors all become failed records.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]any) Execution {
	exec := Execution{Tool: name, Input: params}

	inv, ok := r.invokers[name]
	if !ok {
		exec.Error = fmt.Sprintf("Unknown tool: %s", name)
		r.logger.Warn("unknown tool encountered: %s", name)
		return exec
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		out any
		err error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- result{err: fmt.Errorf("tool panic: %v", p)}
			}
		}()
		out, err := inv.Invoke(cctx, params)
		ch <- result{out: out, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			exec.Error = res.err.Error()
			r.logger.Warn("tool %s failed: %v", name, res.err)
			return exec
		}
		exec.Output = res.out
		exec.Success = true
		r.logger.Debug("tool %s returned %d results", name, exec.ResultsCount())
	case <-cctx.Done():
		exec.Error = fmt.Sprintf("tool %s timed out after %s", name, r.timeout)
		r.logger.Warn("tool %s timed out", name)
	}
	return exec
}
