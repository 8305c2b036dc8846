package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sevigo/professor/internal/core"
)

// secretRule matches one class of credential material that must never appear
// in source.
type secretRule struct {
	name    string
	pattern *regexp.Regexp
}

// vulnRule matches one code pattern with a known risk.
type vulnRule struct {
	title    string
	message  string
	severity core.Severity
	pattern  *regexp.Regexp
}

var secretRules = []secretRule{
	{name: "AWS Access Key", pattern: regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{name: "GitHub Token", pattern: regexp.MustCompile(`ghp_[0-9a-zA-Z]{36}`)},
	{name: "Private Key", pattern: regexp.MustCompile(`-----BEGIN (RSA |DSA )?PRIVATE KEY-----`)},
	{name: "Generic API Key", pattern: regexp.MustCompile(`(?i)api[_-]?key['"]?\s*[:=]\s*['"][0-9a-zA-Z\-_]{20,}['"]`)},
	{name: "JWT Token", pattern: regexp.MustCompile(`eyJ[A-Za-z0-9-_=]+\.eyJ[A-Za-z0-9-_=]+\.[A-Za-z0-9-_.+/=]*`)},
}

var vulnRules = []vulnRule{
	{
		title:    "SQL Injection",
		message:  "Potential SQL injection - user input concatenated into a SQL query",
		severity: core.SeverityCritical,
		pattern:  regexp.MustCompile(`(?i)(query|exec)\w*\s*\(\s*["'][^"']*["']\s*\+`),
	},
	{
		title:    "Command Injection",
		message:  "Potential command injection - user input in a system command",
		severity: core.SeverityCritical,
		pattern:  regexp.MustCompile(`(os\.system|subprocess\.(call|run|Popen)|exec\.Command)\s*\([^)]*\+`),
	},
	{
		title:    "Hardcoded Password",
		message:  "Hardcoded password in source code",
		severity: core.SeverityHigh,
		pattern:  regexp.MustCompile(`(?i)password\s*[:=]{1,2}\s*["'][^"']+["']`),
	},
	{
		title:    "eval() Usage",
		message:  "Use of eval() - potential code execution vulnerability",
		severity: core.SeverityHigh,
		pattern:  regexp.MustCompile(`\beval\s*\(`),
	},
	{
		title:    "Weak Hash",
		message:  "Use of a weak hashing algorithm (MD5/SHA1)",
		severity: core.SeverityMedium,
		pattern:  regexp.MustCompile(`(hashlib\.(md5|sha1)|\bmd5\.New|\bsha1\.New)\s*\(`),
	},
}

// SecurityAnalyzer is the built-in pattern detector for secrets and common
// vulnerability shapes. It works on full file content and needs no external
// tooling.
type SecurityAnalyzer struct {
	logger *slog.Logger
}

// NewSecurityAnalyzer creates the built-in security detector.
func NewSecurityAnalyzer(logger *slog.Logger) *SecurityAnalyzer {
	return &SecurityAnalyzer{logger: logger}
}

func (a *SecurityAnalyzer) Name() string {
	return "security"
}

// Supports requires file content to scan.
func (a *SecurityAnalyzer) Supports(in Context) bool {
	return in.Code != ""
}

func (a *SecurityAnalyzer) Analyze(_ context.Context, in Context) ([]core.Finding, error) {
	var findings []core.Finding
	lines := strings.Split(in.Code, "\n")

	for lineNo, line := range lines {
		if isLikelyExample(line) {
			continue
		}
		for _, rule := range secretRules {
			if rule.pattern.MatchString(line) {
				findings = append(findings, a.finding(
					fmt.Sprintf("secret-%s-%d", slugify(rule.name), lineNo+1),
					core.SeverityCritical,
					rule.name+" detected",
					"Potential "+rule.name+" committed to source; rotate the credential and remove it from history",
					in.FilePath, lineNo+1, line,
				))
			}
		}
		for _, rule := range vulnRules {
			if rule.pattern.MatchString(line) {
				findings = append(findings, a.finding(
					fmt.Sprintf("vuln-%s-%d", slugify(rule.title), lineNo+1),
					rule.severity,
					rule.title,
					rule.message,
					in.FilePath, lineNo+1, line,
				))
			}
		}
	}

	a.logger.Debug("security analysis complete", "file", in.FilePath, "findings", len(findings))
	return findings, nil
}

func (a *SecurityAnalyzer) finding(id string, sev core.Severity, title, message, path string, line int, snippet string) core.Finding {
	return core.Finding{
		ID:       id,
		Severity: sev,
		Category: core.CategorySecurity,
		Title:    title,
		Message:  message,
		Location: core.Location{FilePath: path, StartLine: line},
		Snippet:  strings.TrimSpace(snippet),
		Analyzer: a.Name(),
	}
}

// isLikelyExample skips comments and placeholder values that would otherwise
// flood reviews with noise.
func isLikelyExample(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range []string{"example", "placeholder", "your-", "xxx", "changeme", "dummy"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}
