// Package platform talks to the per-platform rank collectors and turns their
// result lists into observations for a keyword's target URL.
package platform

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"

	"seotrack/internal/models"
)

// ErrUnknownPlatform is returned when no adapter is registered for a platform.
var ErrUnknownPlatform = errors.New("unknown platform")

// Result is one entry of a platform's result list.
type Result struct {
	Position int    `json:"position"`
	URL      string `json:"url"`
}

// Adapter fetches the ranked results a platform shows for a keyword.
type Adapter interface {
	Collect(ctx context.Context, keyword, country, platform string) ([]Result, error)
}

// Registry holds the platforms collected on every run, in collection order.
type Registry struct {
	order    []string
	adapters map[string]Adapter
}

// NewRegistry registers every name against the same adapter.
func NewRegistry(adapter Adapter, names ...string) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(names))}
	for _, name := range names {
		r.Register(name, adapter)
	}
	return r
}

// Register adds or replaces the adapter for a platform.
func (r *Registry) Register(name string, adapter Adapter) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || adapter == nil {
		return
	}
	if _, exists := r.adapters[name]; !exists {
		r.order = append(r.order, name)
	}
	r.adapters[name] = adapter
}

// Platforms returns the registered platform names in registration order.
func (r *Registry) Platforms() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Adapter returns the adapter registered for name.
func (r *Registry) Adapter(name string) (Adapter, error) {
	a, ok := r.adapters[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownPlatform
	}
	return a, nil
}

// Observe turns a platform's results into an observation. The position is
// the rank of the first result pointing at targetURL; when none does the
// observation is an explicit not-found carrying the top result's URL.
func Observe(platformName, targetURL string, results []Result) models.Observation {
	obs := models.Observation{Platform: platformName}
	if len(results) == 0 {
		return obs
	}

	ranked := make([]Result, len(results))
	copy(ranked, results)
	for i := range ranked {
		if ranked[i].Position <= 0 {
			ranked[i].Position = i + 1
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Position < ranked[j].Position
	})

	for _, r := range ranked {
		if MatchesTarget(r.URL, targetURL) {
			pos := r.Position
			obs.Position = &pos
			obs.URL = r.URL
			return obs
		}
	}

	obs.URL = ranked[0].URL
	return obs
}

// MatchesTarget reports whether candidate points at target: same host with
// any leading "www." ignored, and a path at or below the target's path.
func MatchesTarget(candidate, target string) bool {
	c, ok := parseLoose(candidate)
	if !ok {
		return false
	}
	t, ok := parseLoose(target)
	if !ok {
		return false
	}

	if normalizeHost(c.Hostname()) != normalizeHost(t.Hostname()) {
		return false
	}

	targetPath := strings.TrimSuffix(t.Path, "/")
	if targetPath == "" {
		return true
	}
	candidatePath := strings.TrimSuffix(c.Path, "/")
	return candidatePath == targetPath || strings.HasPrefix(candidatePath, targetPath+"/")
}

func parseLoose(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
