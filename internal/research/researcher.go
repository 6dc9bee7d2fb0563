package research

import "context"

// Request is what a Researcher is asked to investigate
type Request struct {
	// Slug is the canonical cache key
	Slug string
	// Topic is the caller's original wording
	Topic string
}

// Findings is the output of one research run
type Findings struct {
	Title   string
	Content string
	Sources []string
	Tags    []string
}

// Researcher performs the actual research. The service only decides when to
// call it and caches what it returns.
type Researcher interface {
	// Name identifies the backend in stored entries
	Name() string
	// Research must honour ctx cancellation
	Research(ctx context.Context, req Request) (*Findings, error)
}

// ResearcherFunc adapts a function to Researcher
type ResearcherFunc func(ctx context.Context, req Request) (*Findings, error)

// Name implements Researcher
func (f ResearcherFunc) Name() string { return "func" }

// Research implements Researcher
func (f ResearcherFunc) Research(ctx context.Context, req Request) (*Findings, error) {
	return f(ctx, req)
}
