package mcp

import (
	"context"

	"github.com/claude/onerm/internal/calc"
)

// DataSource computes estimates for MCP tools. Local computes in process;
// HTTPClient asks a running onerm server.
type DataSource interface {
	Estimate(ctx context.Context, in calc.Input) (calc.Result, error)
}

// Local computes estimates in process.
type Local struct{}

// Compile-time checks: both sources satisfy DataSource.
var (
	_ DataSource = Local{}
	_ DataSource = (*HTTPClient)(nil)
)

func (Local) Estimate(_ context.Context, in calc.Input) (calc.Result, error) {
	return calc.Estimate(in)
}
