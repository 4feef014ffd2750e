// Package updater checks GitHub Releases for a newer planwright version.
// It never replaces the binary; it only reports where to get the release.
package updater

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	githubRepo = "HendryAvila/planwright"

	// DefaultEndpoint is the GitHub API URL for the latest release.
	DefaultEndpoint = "https://api.github.com/repos/" + githubRepo + "/releases/latest"

	checkTimeout = 10 * time.Second
)

// Result is the outcome of a version check.
type Result struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// Checker queries a releases endpoint.
type Checker struct {
	Endpoint string
	Client   *http.Client
}

// NewChecker returns a Checker for the public GitHub endpoint.
func NewChecker() *Checker {
	return &Checker{Endpoint: DefaultEndpoint, Client: &http.Client{Timeout: checkTimeout}}
}

// Check fetches the latest release and compares it with current. Dev
// builds never report an update.
func (c *Checker) Check(ctx context.Context, current string) (*Result, error) {
	res := &Result{CurrentVersion: normalizeVersion(current)}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint, nil)
	if err != nil {
		return res, fmt.Errorf("updater: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "planwright/"+res.CurrentVersion)

	resp, err := c.Client.Do(req)
	if err != nil {
		return res, fmt.Errorf("updater: fetch release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("updater: GitHub API returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return res, fmt.Errorf("updater: read release: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return res, fmt.Errorf("updater: release response is not JSON")
	}

	release := gjson.ParseBytes(body)
	res.LatestVersion = normalizeVersion(release.Get("tag_name").String())
	res.ReleaseURL = release.Get("html_url").String()
	res.UpdateAvailable = isNewer(res.CurrentVersion, res.LatestVersion)
	return res, nil
}

// normalizeVersion strips the leading "v" from version strings.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}

// isNewer reports whether latest is a higher major.minor.patch than
// current. Missing parts count as zero; pre-release suffixes are ignored.
func isNewer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}
	cur, lat := versionParts(current), versionParts(latest)
	for i := range cur {
		if lat[i] != cur[i] {
			return lat[i] > cur[i]
		}
	}
	return false
}

func versionParts(v string) [3]int {
	var out [3]int
	for i, part := range strings.SplitN(v, ".", 3) {
		end := 0
		for end < len(part) && part[end] >= '0' && part[end] <= '9' {
			end++
		}
		out[i], _ = strconv.Atoi(part[:end])
	}
	return out
}
