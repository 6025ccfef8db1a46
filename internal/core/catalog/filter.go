package catalog

import (
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/colonyops/vbisect/internal/core/config"
	"github.com/colonyops/vbisect/internal/core/version"
)

// Filter decides which versions are shown.
type Filter struct {
	Channels []version.Channel
	Include  []string
	Exclude  []string
	MinMajor int
}

// NewFilter builds a Filter from catalog config.
func NewFilter(cfg config.CatalogConfig) Filter {
	return Filter{
		Channels: cfg.Channels,
		Include:  cfg.Include,
		Exclude:  cfg.Exclude,
		MinMajor: cfg.MinMajor,
	}
}

// Allows reports whether a remote version passes every rule. An empty
// channel list allows all channels; an empty include list allows all names.
func (f Filter) Allows(v version.Version) bool {
	if len(f.Channels) > 0 && !slices.Contains(f.Channels, v.Channel) {
		return false
	}
	if f.MinMajor > 0 && v.Major() < f.MinMajor {
		return false
	}
	if len(f.Include) > 0 && !matchAny(f.Include, v.Version) {
		return false
	}
	return !matchAny(f.Exclude, v.Version)
}

// Apply returns the versions Allows accepts, in order.
func (f Filter) Apply(vs []version.Version) []version.Version {
	out := make([]version.Version, 0, len(vs))
	for _, v := range vs {
		if f.Allows(v) {
			out = append(out, v)
		}
	}
	return out
}

// ApplyLocal filters locally built versions. They were listed explicitly, so
// only exclude patterns apply.
func (f Filter) ApplyLocal(vs []version.Version) []version.Version {
	out := make([]version.Version, 0, len(vs))
	for _, v := range vs {
		if !matchAny(f.Exclude, v.Version) {
			out = append(out, v)
		}
	}
	return out
}

// matchAny ignores malformed patterns; config validation reports them.
func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
