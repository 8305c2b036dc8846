package analyzer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/professor/internal/core"
)

// Composite runs a set of registered detectors against one context and merges
// their findings. Output order is the registration order of the applicable
// detectors, never completion order: results are reassembled into an indexed
// slice after the fan-out joins.
type Composite struct {
	analyzers []Analyzer
}

// NewComposite creates a composite over the given detectors. Registration
// order is preserved in the merged output.
func NewComposite(analyzers ...Analyzer) *Composite {
	return &Composite{analyzers: analyzers}
}

// Name implements Analyzer, so composites can nest.
func (c *Composite) Name() string {
	return "composite"
}

// Supports reports whether at least one registered detector supports the
// context.
func (c *Composite) Supports(in Context) bool {
	for _, a := range c.analyzers {
		if a.Supports(in) {
			return true
		}
	}
	return false
}

// Analyze filters the detector set by Supports, runs the applicable detectors
// concurrently and concatenates their findings in registration order. If no
// detector applies, it returns immediately without invoking anything.
//
// If any detector fails, the first error observed by the waiting logic is
// returned and every detector's results are discarded. Siblings still in
// flight are not cancelled; the group simply waits them out.
func (c *Composite) Analyze(ctx context.Context, in Context) ([]core.Finding, error) {
	var applicable []Analyzer
	for _, a := range c.analyzers {
		if a.Supports(in) {
			applicable = append(applicable, a)
		}
	}
	if len(applicable) == 0 {
		return nil, nil
	}

	results := make([][]core.Finding, len(applicable))
	var g errgroup.Group
	for i, a := range applicable {
		i, a := i, a
		g.Go(func() error {
			findings, err := a.Analyze(ctx, in)
			if err != nil {
				return fmt.Errorf("analyzer %q failed: %w", a.Name(), err)
			}
			results[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []core.Finding
	for _, findings := range results {
		merged = append(merged, findings...)
	}
	return merged, nil
}
