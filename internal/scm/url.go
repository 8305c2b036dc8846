package scm

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParsePullRequestURL extracts owner, repository and PR number from a GitHub
// pull request URL like https://github.com/owner/repo/pull/123.
func ParsePullRequestURL(raw string) (owner, repo string, number int, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid URL: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[2] != "pull" {
		return "", "", 0, fmt.Errorf("not a pull request URL: %s", raw)
	}

	number, err = strconv.Atoi(parts[3])
	if err != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("invalid pull request number in URL: %s", raw)
	}

	return parts[0], parts[1], number, nil
}
