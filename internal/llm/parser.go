package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/professor/internal/core"
)

// findingPayload is the JSON shape a model is asked to emit for one finding.
type findingPayload struct {
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	FilePath   string `json:"file_path"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Suggestion string `json:"suggestion"`
	Snippet    string `json:"snippet"`
}

type findingsDocument struct {
	Findings []findingPayload `json:"findings"`
}

// ParseFindings extracts structured findings from raw model output. It
// handles common model quirks:
//   - response wrapped in ```json ... ``` fences
//   - prose before or after the JSON document
//   - either {"findings": [...]} or a bare array
//
// Entries with unknown severity or category tokens are dropped, not guessed;
// the drop is logged so prompt regressions stay visible.
func ParseFindings(raw, analyzerName, filePath string, logger *slog.Logger) ([]core.Finding, error) {
	doc := extractJSON(raw)
	if doc == "" {
		return nil, fmt.Errorf("no JSON document found in model output")
	}

	var payloads []findingPayload
	if strings.HasPrefix(doc, "[") {
		if err := json.Unmarshal([]byte(doc), &payloads); err != nil {
			return nil, fmt.Errorf("parsing findings array: %w", err)
		}
	} else {
		var wrapper findingsDocument
		if err := json.Unmarshal([]byte(doc), &wrapper); err != nil {
			return nil, fmt.Errorf("parsing findings document: %w", err)
		}
		payloads = wrapper.Findings
	}

	findings := make([]core.Finding, 0, len(payloads))
	for _, p := range payloads {
		severity, err := core.ParseSeverity(p.Severity)
		if err != nil {
			logger.Warn("dropping finding with unknown severity", "severity", p.Severity, "title", p.Title)
			continue
		}
		category, err := core.ParseCategory(p.Category)
		if err != nil {
			logger.Warn("dropping finding with unknown category", "category", p.Category, "title", p.Title)
			continue
		}
		if strings.TrimSpace(p.Title) == "" && strings.TrimSpace(p.Message) == "" {
			logger.Warn("dropping finding without title or message")
			continue
		}

		path := p.FilePath
		if path == "" {
			path = filePath
		}
		startLine := p.StartLine
		if startLine <= 0 {
			startLine = 1
		}

		findings = append(findings, core.Finding{
			ID:         uuid.NewString(),
			Severity:   severity,
			Category:   category,
			Title:      p.Title,
			Message:    p.Message,
			Location:   core.Location{FilePath: path, StartLine: startLine, EndLine: p.EndLine},
			Suggestion: p.Suggestion,
			Snippet:    p.Snippet,
			Analyzer:   analyzerName,
			CreatedAt:  time.Now().UTC(),
		})
	}

	return findings, nil
}

// extractJSON pulls the JSON document out of raw model output, stripping code
// fences and surrounding prose.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		// Skip the fence language tag ("json", "markdown", ...).
		if nl := strings.Index(rest, "\n"); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.LastIndex(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = strings.TrimSpace(rest)
	}

	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	start, closing := objStart, "}"
	if objStart < 0 || (arrStart >= 0 && arrStart < objStart) {
		start, closing = arrStart, "]"
	}
	if start < 0 {
		return ""
	}

	end := strings.LastIndex(s, closing)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
