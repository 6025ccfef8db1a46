package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		channel Channel
		wantErr bool
	}{
		{name: "stable", input: "22.3.1", want: "22.3.1", channel: ChannelStable},
		{name: "v prefix", input: "v22.3.1", want: "22.3.1", channel: ChannelStable},
		{name: "beta", input: "23.0.0-beta.4", want: "23.0.0-beta.4", channel: ChannelBeta},
		{name: "alpha", input: "24.0.0-alpha.1", want: "24.0.0-alpha.1", channel: ChannelAlpha},
		{name: "nightly", input: "25.0.0-nightly.20230110", want: "25.0.0-nightly.20230110", channel: ChannelNightly},
		{name: "custom tag", input: "33.0.0-local.1", want: "33.0.0-local.1", channel: ChannelStable},
		{name: "garbage", input: "not-a-version", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input, SourceRemote)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Version)
			assert.Equal(t, tt.channel, v.Channel)
			assert.Equal(t, SourceRemote, v.Source)
		})
	}
}

func TestParse_DefaultsSource(t *testing.T) {
	v, err := Parse("1.0.0", "")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, v.Source)
}

func TestMajor(t *testing.T) {
	assert.Equal(t, 22, MustParse("22.3.1", SourceRemote).Major())
	assert.Equal(t, 0, MustParse("0.9.0", SourceRemote).Major())
	assert.Equal(t, -1, Version{Version: "bogus"}.Major())
}

func TestSortNewestFirst(t *testing.T) {
	vs := []Version{
		MustParse("1.2.0", SourceRemote),
		MustParse("2.0.0-beta.1", SourceRemote),
		MustParse("2.0.0", SourceRemote),
		MustParse("1.10.0", SourceRemote),
	}

	SortNewestFirst(vs)

	assert.Equal(t, []string{"2.0.0", "2.0.0-beta.1", "1.10.0", "1.2.0"}, Strings(vs))
}

func TestEquality(t *testing.T) {
	remote := MustParse("1.0.0", SourceRemote)
	local := MustParse("1.0.0", SourceLocal)

	assert.Equal(t, remote, MustParse("v1.0.0", SourceRemote))
	assert.NotEqual(t, remote, local)
	assert.Equal(t, 0, Compare(remote, local))
}
