package profile

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"
)

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")

	f := &File{}
	f.Put(Profile{
		Name:            "staging-health",
		URL:             "https://staging.example.com/health",
		Method:          http.MethodGet,
		Users:           20,
		RequestsPerUser: 10,
		TimeoutSec:      5,
		DelayMs:         100,
		Headers:         map[string]string{"Authorization": "Bearer token"},
		PoolSize:        25,
	})
	if err := f.Save(path); err != nil {
		t.Fatalf("Failed to save profiles: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load profiles: %v", err)
	}

	p := loaded.Find("staging-health")
	if p == nil {
		t.Fatal("Expected to find saved profile")
	}
	if p.URL != "https://staging.example.com/health" || p.Users != 20 || p.RequestsPerUser != 10 {
		t.Errorf("Profile fields lost in round trip: %+v", p)
	}
	if p.Headers["Authorization"] != "Bearer token" {
		t.Errorf("Headers lost in round trip: %v", p.Headers)
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected empty collection for missing file, got: %v", err)
	}
	if len(f.Profiles) != 0 {
		t.Errorf("Expected 0 profiles, got %d", len(f.Profiles))
	}
}

func TestFile_PutReplacesByName(t *testing.T) {
	f := &File{}
	f.Put(Profile{Name: "a", Users: 1})
	f.Put(Profile{Name: "a", Users: 2})

	if len(f.Profiles) != 1 {
		t.Fatalf("Expected 1 profile after replace, got %d", len(f.Profiles))
	}
	if f.Profiles[0].Users != 2 {
		t.Errorf("Expected replacement to win, got users=%d", f.Profiles[0].Users)
	}
}

func TestProfile_Config(t *testing.T) {
	p := &Profile{
		Name:             "full",
		URL:              "http://localhost:9000",
		Method:           http.MethodPost,
		Users:            3,
		RequestsPerUser:  7,
		TimeoutSec:       15,
		DelayMs:          250,
		Body:             "payload",
		UserAgent:        "custom/2.0",
		Insecure:         true,
		DisableRedirects: true,
		PoolSize:         8,
	}

	cfg := p.Config()
	if cfg.TargetURL != "http://localhost:9000" || cfg.Method != http.MethodPost {
		t.Errorf("Target not mapped: %+v", cfg)
	}
	if cfg.ConcurrentUsers != 3 || cfg.RequestsPerUser != 7 {
		t.Errorf("Counts not mapped: users=%d requests=%d", cfg.ConcurrentUsers, cfg.RequestsPerUser)
	}
	if cfg.RequestTimeout != 15*time.Second || cfg.RequestDelay != 250*time.Millisecond {
		t.Errorf("Durations not mapped: timeout=%s delay=%s", cfg.RequestTimeout, cfg.RequestDelay)
	}
	if !cfg.InsecureSkipVerify || cfg.FollowRedirects {
		t.Errorf("TLS/redirect flags not mapped: %+v", cfg)
	}
	if cfg.MaxPoolSize != 8 {
		t.Errorf("Pool size not mapped: %d", cfg.MaxPoolSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected mapped config to validate, got: %v", err)
	}
}

func TestProfile_ConfigCopiesHeaders(t *testing.T) {
	p := &Profile{
		Name:    "with-headers",
		URL:     "http://localhost:9000",
		Headers: map[string]string{"Authorization": "Bearer token"},
	}

	cfg := p.Config()
	cfg.Headers["X-Extra"] = "override"
	cfg.Headers["Authorization"] = "Bearer other"

	if p.Headers["Authorization"] != "Bearer token" {
		t.Errorf("Config mutation leaked into the profile: %v", p.Headers)
	}
	if _, ok := p.Headers["X-Extra"]; ok {
		t.Errorf("Added header leaked into the profile: %v", p.Headers)
	}
}

func TestProfile_ConfigDefaults(t *testing.T) {
	p := &Profile{Name: "minimal", URL: "http://localhost:9000"}

	cfg := p.Config()
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("Expected default timeout, got %s", cfg.RequestTimeout)
	}
	if !cfg.FollowRedirects {
		t.Error("Expected redirects followed by default")
	}
	if cfg.InsecureSkipVerify {
		t.Error("Expected TLS verification by default")
	}
}
