package analyzer

import (
	"sort"
	"strings"
)

// LanguageCapabilities describes what tooling is available for one language.
// It is introspection metadata only and does not change dispatch semantics.
type LanguageCapabilities struct {
	Language     string
	Lint         bool
	TypeCheck    bool
	SecurityScan bool
	Complexity   bool
	Semantic     bool
	Tools        []string
}

// Router registers detectors globally or per language and answers which
// detectors apply to a given language. The effective set for a language is
// global ∪ language-specific, in registration order (globals first).
type Router struct {
	global       []Analyzer
	byLanguage   map[string][]Analyzer
	capabilities map[string]LanguageCapabilities
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		byLanguage:   map[string][]Analyzer{},
		capabilities: map[string]LanguageCapabilities{},
	}
}

// RegisterGlobal registers a detector that applies to all languages.
func (r *Router) RegisterGlobal(a Analyzer) {
	r.global = append(r.global, a)
}

// RegisterLanguage registers a detector for one named language.
func (r *Router) RegisterLanguage(language string, a Analyzer) {
	key := strings.ToLower(language)
	r.byLanguage[key] = append(r.byLanguage[key], a)
}

// SetCapabilities registers or overwrites the capability descriptor for a
// language.
func (r *Router) SetCapabilities(caps LanguageCapabilities) {
	r.capabilities[strings.ToLower(caps.Language)] = caps
}

// Capabilities returns the capability descriptor for a language, if any.
func (r *Router) Capabilities(language string) (LanguageCapabilities, bool) {
	caps, ok := r.capabilities[strings.ToLower(language)]
	return caps, ok
}

// Languages lists languages with registered capabilities, sorted ascending.
func (r *Router) Languages() []string {
	out := make([]string, 0, len(r.capabilities))
	for language := range r.capabilities {
		out = append(out, language)
	}
	sort.Strings(out)
	return out
}

// AnalyzersFor returns the detectors applicable to a language. When a context
// is supplied, the set is additionally filtered by Supports.
func (r *Router) AnalyzersFor(language string, in *Context) []Analyzer {
	key := strings.ToLower(language)
	analyzers := make([]Analyzer, 0, len(r.global)+len(r.byLanguage[key]))
	analyzers = append(analyzers, r.global...)
	analyzers = append(analyzers, r.byLanguage[key]...)

	if in == nil {
		return analyzers
	}
	var supported []Analyzer
	for _, a := range analyzers {
		if a.Supports(*in) {
			supported = append(supported, a)
		}
	}
	return supported
}
