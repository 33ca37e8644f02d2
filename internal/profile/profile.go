// Package profile stores named stress test configurations in a YAML file so
// recurring tests can be launched by name instead of a wall of flags.
package profile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/stresscli/internal/engine"
)

// Profile is one named, file-backed test configuration. Durations are stored
// in whole units (seconds, milliseconds) to keep the YAML hand-editable.
type Profile struct {
	Name             string            `yaml:"name"`
	URL              string            `yaml:"url"`
	Method           string            `yaml:"method,omitempty"`
	Users            int               `yaml:"users"`
	RequestsPerUser  int               `yaml:"requestsPerUser"`
	TimeoutSec       int               `yaml:"timeoutSec,omitempty"`
	DelayMs          int               `yaml:"delayMs,omitempty"`
	Headers          map[string]string `yaml:"headers,omitempty"`
	Body             string            `yaml:"body,omitempty"`
	UserAgent        string            `yaml:"userAgent,omitempty"`
	Insecure         bool              `yaml:"insecure,omitempty"`
	DisableRedirects bool              `yaml:"disableRedirects,omitempty"`
	PoolSize         int               `yaml:"poolSize,omitempty"`
}

// File is the on-disk collection of profiles.
type File struct {
	Profiles []Profile `yaml:"profiles"`
}

// Load reads a profile file. A missing file is not an error; it returns an
// empty collection so a first save can create it.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	return &f, nil
}

// Save writes the collection back to path.
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

// Find returns the profile with the given name, or nil.
func (f *File) Find(name string) *Profile {
	for i := range f.Profiles {
		if f.Profiles[i].Name == name {
			return &f.Profiles[i]
		}
	}
	return nil
}

// Put inserts or replaces a profile by name.
func (f *File) Put(p Profile) {
	for i := range f.Profiles {
		if f.Profiles[i].Name == p.Name {
			f.Profiles[i] = p
			return
		}
	}
	f.Profiles = append(f.Profiles, p)
}

// Config converts the profile into an engine configuration, filling engine
// defaults for everything the profile leaves unset. The result is validated
// by the engine at Start, not here.
func (p *Profile) Config() *engine.Config {
	cfg := engine.NewConfig(p.URL)
	if p.Method != "" {
		cfg.Method = p.Method
	}
	if p.Users > 0 {
		cfg.ConcurrentUsers = p.Users
	}
	if p.RequestsPerUser > 0 {
		cfg.RequestsPerUser = p.RequestsPerUser
	}
	if p.TimeoutSec > 0 {
		cfg.RequestTimeout = time.Duration(p.TimeoutSec) * time.Second
	}
	if p.DelayMs > 0 {
		cfg.RequestDelay = time.Duration(p.DelayMs) * time.Millisecond
	}
	if len(p.Headers) > 0 {
		// Copied so flag overrides on the run config cannot write back into
		// the loaded profile.
		cfg.Headers = make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			cfg.Headers[k] = v
		}
	}
	cfg.Body = p.Body
	if p.UserAgent != "" {
		cfg.UserAgent = p.UserAgent
	}
	cfg.InsecureSkipVerify = p.Insecure
	cfg.FollowRedirects = !p.DisableRedirects
	if p.PoolSize > 0 {
		cfg.MaxPoolSize = p.PoolSize
	}
	return cfg
}
