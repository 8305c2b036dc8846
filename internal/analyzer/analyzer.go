// Package analyzer defines the detector contract and the composite
// orchestrator that fans detectors out concurrently and merges their findings
// deterministically.
package analyzer

import (
	"context"

	"github.com/sevigo/professor/internal/core"
)

// Context carries the unit of code a detector looks at. Code and Diff may be
// empty; Language is a free-text hint.
type Context struct {
	FilePath string
	Code     string
	Diff     string
	Language string
	Status   string
}

// Analyzer is the capability contract every detector implements. Supports is
// a pure capability check with no side effects; Analyze may suspend on I/O but
// must not mutate shared state outside its own return value.
type Analyzer interface {
	Name() string
	Supports(in Context) bool
	Analyze(ctx context.Context, in Context) ([]core.Finding, error)
}
