// Package version defines the release descriptors that vbisect bisects over.
package version

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion is returned when a string is not a semantic version.
var ErrInvalidVersion = errors.New("invalid semantic version")

// Source identifies where a version comes from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Channel is the release channel derived from the prerelease tag.
type Channel string

const (
	ChannelStable  Channel = "stable"
	ChannelBeta    Channel = "beta"
	ChannelAlpha   Channel = "alpha"
	ChannelNightly Channel = "nightly"
)

// Channels lists every known channel in display order.
func Channels() []Channel {
	return []Channel{ChannelStable, ChannelBeta, ChannelAlpha, ChannelNightly}
}

// Version is an opaque descriptor for one candidate release. Two descriptors
// are the same release only if all fields are equal.
type Version struct {
	Version string  `json:"version"`
	Source  Source  `json:"source"`
	Channel Channel `json:"channel"`
}

// Parse normalizes s (with or without a leading "v") into a Version.
func Parse(s string, source Source) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if !semver.IsValid("v" + raw) {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	if source == "" {
		source = SourceRemote
	}

	return Version{
		Version: raw,
		Source:  source,
		Channel: channelOf("v" + raw),
	}, nil
}

// MustParse is Parse for static inputs. It panics on invalid versions.
func MustParse(s string, source Source) Version {
	v, err := Parse(s, source)
	if err != nil {
		panic(err)
	}
	return v
}

func channelOf(v string) Channel {
	pre := semver.Prerelease(v)
	switch {
	case pre == "":
		return ChannelStable
	case strings.HasPrefix(pre, "-nightly"):
		return ChannelNightly
	case strings.HasPrefix(pre, "-alpha"):
		return ChannelAlpha
	case strings.HasPrefix(pre, "-beta"):
		return ChannelBeta
	default:
		// custom tags such as "-local.1" are treated as stable builds
		return ChannelStable
	}
}

func (v Version) String() string { return v.Version }

// Semver returns the "v"-prefixed form expected by golang.org/x/mod/semver.
func (v Version) Semver() string { return "v" + v.Version }

// Major returns the major version number, or -1 if it cannot be determined.
func (v Version) Major() int {
	m := strings.TrimPrefix(semver.Major(v.Semver()), "v")
	n, err := strconv.Atoi(m)
	if err != nil {
		return -1
	}
	return n
}

// Compare orders two versions by semantic version precedence.
func Compare(a, b Version) int {
	return semver.Compare(a.Semver(), b.Semver())
}

// SortNewestFirst sorts versions in place, newest first. Ties keep their
// relative order so remote entries stay ahead of local duplicates.
func SortNewestFirst(versions []Version) {
	slices.SortStableFunc(versions, func(a, b Version) int {
		return Compare(b, a)
	})
}

// Strings returns the version strings of vs in order.
func Strings(vs []Version) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Version
	}
	return out
}
