package updater

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- normalizeVersion ---

func TestNormalizeVersion_StripsV(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{"", ""},
		{"v", ""},
		{"vv1.0.0", "v1.0.0"}, // only strips one leading v
	}

	for _, tt := range tests {
		if got := normalizeVersion(tt.input); got != tt.want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// --- isNewer ---

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{"newer patch", "0.2.0", "0.2.1", true},
		{"newer minor", "0.2.0", "0.3.0", true},
		{"newer major", "0.2.0", "1.0.0", true},
		{"same version", "0.2.0", "0.2.0", false},
		{"older version", "0.3.0", "0.2.0", false},
		{"empty current", "", "0.2.0", false},
		{"empty latest", "0.2.0", "", false},
		{"dev current", "dev", "0.2.0", false},
		{"two part version", "0.2", "0.3.0", true},
		{"minor jump", "0.9.0", "0.10.0", true},
		{"pre-release suffix", "1.0.0-rc1", "1.0.0", false},
		{"suffix on latest", "1.0.0", "1.0.1-beta", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNewer(tt.current, tt.latest); got != tt.want {
				t.Errorf("isNewer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
			}
		})
	}
}

// --- Check ---

func fakeReleases(t *testing.T, status int, body string) *Checker {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("missing User-Agent")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return &Checker{Endpoint: srv.URL, Client: srv.Client()}
}

func TestCheck_UpdateAvailable(t *testing.T) {
	c := fakeReleases(t, http.StatusOK, `{"tag_name":"v0.4.0","html_url":"https://example.test/r/0.4.0","assets":[]}`)

	res, err := c.Check(context.Background(), "v0.3.2")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.UpdateAvailable || res.LatestVersion != "0.4.0" || res.CurrentVersion != "0.3.2" {
		t.Errorf("result = %+v", res)
	}
	if res.ReleaseURL != "https://example.test/r/0.4.0" {
		t.Errorf("ReleaseURL = %q", res.ReleaseURL)
	}
}

func TestCheck_UpToDate(t *testing.T) {
	c := fakeReleases(t, http.StatusOK, `{"tag_name":"v0.4.0"}`)
	res, err := c.Check(context.Background(), "0.4.0")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.UpdateAvailable {
		t.Errorf("result = %+v", res)
	}
}

func TestCheck_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "oops"},
		{"rate limited", http.StatusForbidden, `{"message":"rate limit"}`},
		{"not json", http.StatusOK, "<html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fakeReleases(t, tt.status, tt.body)
			res, err := c.Check(context.Background(), "0.1.0")
			if err == nil {
				t.Fatal("expected error")
			}
			if res == nil || res.CurrentVersion != "0.1.0" || res.UpdateAvailable {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

func TestCheck_CanceledContext(t *testing.T) {
	c := fakeReleases(t, http.StatusOK, `{"tag_name":"v9.0.0"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Check(ctx, "0.1.0"); err == nil {
		t.Error("expected error for canceled context")
	}
}
