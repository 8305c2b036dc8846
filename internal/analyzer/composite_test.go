package analyzer

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/professor/internal/core"
)

// fakeAnalyzer is a scriptable detector for orchestration tests.
type fakeAnalyzer struct {
	name     string
	supports bool
	findings []core.Finding
	err      error
	delay    time.Duration
	calls    atomic.Int32
}

func (f *fakeAnalyzer) Name() string { return f.name }

func (f *fakeAnalyzer) Supports(Context) bool { return f.supports }

func (f *fakeAnalyzer) Analyze(context.Context, Context) ([]core.Finding, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.findings, nil
}

func finding(id string) core.Finding {
	return core.Finding{
		ID:       id,
		Severity: core.SeverityMedium,
		Category: core.CategoryBug,
		Title:    id,
		Message:  "test",
		Location: core.Location{FilePath: "a.go", StartLine: 1},
		Analyzer: "fake",
	}
}

func TestCompositeShortCircuitsWithoutSupportingAnalyzers(t *testing.T) {
	a := &fakeAnalyzer{name: "a", supports: false, findings: []core.Finding{finding("a1")}}
	b := &fakeAnalyzer{name: "b", supports: false, findings: []core.Finding{finding("b1")}}
	composite := NewComposite(a, b)

	assert.False(t, composite.Supports(Context{}))

	findings, err := composite.Analyze(context.Background(), Context{FilePath: "a.go"})
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Zero(t, a.calls.Load(), "non-supporting analyzer must not be invoked")
	assert.Zero(t, b.calls.Load(), "non-supporting analyzer must not be invoked")
}

func TestCompositeMergesInRegistrationOrder(t *testing.T) {
	// The slow analyzer is registered first; its findings must still come
	// first even though it finishes last.
	slow := &fakeAnalyzer{
		name:     "slow",
		supports: true,
		delay:    60 * time.Millisecond,
		findings: []core.Finding{finding("slow-1"), finding("slow-2")},
	}
	fast := &fakeAnalyzer{
		name:     "fast",
		supports: true,
		findings: []core.Finding{finding("fast-1")},
	}
	composite := NewComposite(slow, fast)

	findings, err := composite.Analyze(context.Background(), Context{FilePath: "a.go"})
	require.NoError(t, err)
	require.Len(t, findings, 3)
	assert.Equal(t, "slow-1", findings[0].ID)
	assert.Equal(t, "slow-2", findings[1].ID)
	assert.Equal(t, "fast-1", findings[2].ID)
}

func TestCompositeSkipsNonSupportingAnalyzers(t *testing.T) {
	skipped := &fakeAnalyzer{name: "skipped", supports: false, findings: []core.Finding{finding("x")}}
	active := &fakeAnalyzer{name: "active", supports: true, findings: []core.Finding{finding("y")}}
	composite := NewComposite(skipped, active)

	findings, err := composite.Analyze(context.Background(), Context{FilePath: "a.go"})
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "y", findings[0].ID)
	assert.Zero(t, skipped.calls.Load())
	assert.Equal(t, int32(1), active.calls.Load())
}

func TestCompositeSurfacesSingleAnalyzerError(t *testing.T) {
	boom := errors.New("boom")
	failing := &fakeAnalyzer{name: "failing", supports: true, err: boom}
	healthy := &fakeAnalyzer{name: "healthy", supports: true, findings: []core.Finding{finding("h1")}}
	composite := NewComposite(failing, healthy)

	findings, err := composite.Analyze(context.Background(), Context{FilePath: "a.go"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), `analyzer "failing"`)
	assert.Nil(t, findings, "sibling results are discarded on failure")
	assert.Equal(t, int32(1), healthy.calls.Load(), "siblings still run to completion")
}

func TestCompositeReportsOneErrorWhenSeveralFail(t *testing.T) {
	first := &fakeAnalyzer{name: "first", supports: true, err: errors.New("first failed")}
	second := &fakeAnalyzer{name: "second", supports: true, err: errors.New("second failed"), delay: 30 * time.Millisecond}
	composite := NewComposite(first, second)

	_, err := composite.Analyze(context.Background(), Context{FilePath: "a.go"})
	require.Error(t, err)
	// Exactly one of the two errors surfaces, whichever the join observed
	// first.
	surfaced := 0
	for _, msg := range []string{"first failed", "second failed"} {
		if strings.Contains(err.Error(), msg) {
			surfaced++
		}
	}
	assert.Equal(t, 1, surfaced)
}

func TestCompositeNests(t *testing.T) {
	inner := NewComposite(&fakeAnalyzer{name: "inner", supports: true, findings: []core.Finding{finding("i1")}})
	outer := NewComposite(inner)

	findings, err := outer.Analyze(context.Background(), Context{FilePath: "a.go"})
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "i1", findings[0].ID)
}
