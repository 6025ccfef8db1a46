package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/vbisect/internal/core/version"
)

func TestFilter_Allows(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		input  string
		want   bool
	}{
		{name: "empty filter allows all", filter: Filter{}, input: "30.0.0-nightly.20240101", want: true},
		{name: "channel match", filter: Filter{Channels: []version.Channel{version.ChannelBeta}}, input: "31.0.0-beta.1", want: true},
		{name: "channel mismatch", filter: Filter{Channels: []version.Channel{version.ChannelStable}}, input: "31.0.0-beta.1", want: false},
		{name: "below min major", filter: Filter{MinMajor: 30}, input: "29.4.6", want: false},
		{name: "at min major", filter: Filter{MinMajor: 30}, input: "30.0.0", want: true},
		{name: "include match", filter: Filter{Include: []string{"30.*", "31.*"}}, input: "31.2.0", want: true},
		{name: "include miss", filter: Filter{Include: []string{"30.*"}}, input: "31.2.0", want: false},
		{name: "include brace", filter: Filter{Include: []string{"{30,31}.0.*"}}, input: "31.0.1", want: true},
		{name: "exclude wins", filter: Filter{Include: []string{"30.*"}, Exclude: []string{"30.0.*"}}, input: "30.0.5", want: false},
		{name: "malformed pattern ignored", filter: Filter{Exclude: []string{"[30"}}, input: "30.0.5", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Allows(version.MustParse(tt.input, version.SourceRemote)))
		})
	}
}

func TestFilter_ApplyLocal(t *testing.T) {
	f := Filter{
		Channels: []version.Channel{version.ChannelStable},
		MinMajor: 40,
		Exclude:  []string{"*-broken*"},
	}
	in := []version.Version{
		version.MustParse("31.0.0-beta.1", version.SourceLocal),
		version.MustParse("32.0.0-broken.1", version.SourceLocal),
	}

	got := f.ApplyLocal(in)
	assert.Equal(t, []string{"31.0.0-beta.1"}, version.Strings(got))
}
