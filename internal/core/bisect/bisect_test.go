package bisect

import (
	"fmt"
	"testing"

	"github.com/colonyops/vbisect/internal/core/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oldestFirst builds n versions 1.0.0 .. 1.(n-1).0, oldest first.
func oldestFirst(n int) []version.Version {
	vs := make([]version.Version, n)
	for i := range vs {
		vs[i] = version.MustParse(fmt.Sprintf("1.%d.0", i), version.SourceRemote)
	}
	return vs
}

func TestNew(t *testing.T) {
	t.Run("empty range", func(t *testing.T) {
		b, err := New(nil)
		require.ErrorIs(t, err, ErrEmptyRange)
		assert.Nil(t, b)
	})

	t.Run("initial pivot is the known-good boundary", func(t *testing.T) {
		vs := oldestFirst(4)
		b, err := New(vs)
		require.NoError(t, err)
		assert.Equal(t, vs[0], b.Current())
		assert.Equal(t, 4, b.Len())
		assert.False(t, b.Done())

		good, bad := b.Range()
		assert.Equal(t, vs[0], good)
		assert.Equal(t, vs[3], bad)
	})

	t.Run("copies input", func(t *testing.T) {
		vs := oldestFirst(3)
		b, err := New(vs)
		require.NoError(t, err)

		vs[0] = version.MustParse("9.9.9", version.SourceRemote)
		assert.Equal(t, "1.0.0", b.Current().Version)
	})
}

func TestContinue_FindsFirstBad(t *testing.T) {
	for _, n := range []int{2, 3, 4, 7, 11, 32} {
		for firstBad := 1; firstBad < n; firstBad++ {
			t.Run(fmt.Sprintf("n=%d/bad=%d", n, firstBad), func(t *testing.T) {
				vs := oldestFirst(n)
				b, err := New(vs)
				require.NoError(t, err)

				budget := b.StepsRemaining()
				steps := 0
				for !b.Done() {
					idx := indexOf(vs, b.Current())
					_, err := b.Continue(idx < firstBad)
					require.NoError(t, err)
					steps++
				}

				assert.LessOrEqual(t, steps, budget)
				res := b.Result()
				assert.False(t, res.Inconclusive)
				assert.Equal(t, vs[firstBad-1], res.Good)
				assert.Equal(t, vs[firstBad], res.Bad)
			})
		}
	}
}

func TestContinue_BadBoundary(t *testing.T) {
	vs := oldestFirst(5)
	b, err := New(vs)
	require.NoError(t, err)

	step, err := b.Continue(false)
	require.NoError(t, err)
	assert.True(t, step.Done)
	assert.True(t, step.Result.Inconclusive)
	assert.Equal(t, vs[0], step.Result.Bad)
}

func TestContinue_SingleVersion(t *testing.T) {
	vs := oldestFirst(1)
	b, err := New(vs)
	require.NoError(t, err)
	assert.Equal(t, 1, b.StepsRemaining())

	step, err := b.Continue(true)
	require.NoError(t, err)
	assert.True(t, step.Done)
	assert.True(t, step.Result.Inconclusive)
}

func TestContinue_AfterDone(t *testing.T) {
	b, err := New(oldestFirst(2))
	require.NoError(t, err)

	_, err = b.Continue(true)
	require.NoError(t, err)
	require.True(t, b.Done())

	_, err = b.Continue(true)
	require.ErrorIs(t, err, ErrSessionDone)
	assert.Len(t, b.History(), 1)
}

func TestContinue_StepReportsNext(t *testing.T) {
	vs := oldestFirst(9)
	b, err := New(vs)
	require.NoError(t, err)

	step, err := b.Continue(true)
	require.NoError(t, err)
	assert.False(t, step.Done)
	assert.Equal(t, vs[4], step.Next)
	assert.Equal(t, b.Current(), step.Next)

	step, err = b.Continue(false)
	require.NoError(t, err)
	assert.Equal(t, vs[2], step.Next)

	good, bad := b.Range()
	assert.Equal(t, vs[0], good)
	assert.Equal(t, vs[4], bad)

	hist := b.History()
	require.Len(t, hist, 2)
	assert.Equal(t, Verdict{Version: vs[0], Good: true}, hist[0])
	assert.Equal(t, Verdict{Version: vs[4], Good: false}, hist[1])
}

func TestStepsRemaining(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{n: 2, want: 1},
		{n: 3, want: 2},
		{n: 5, want: 3},
		{n: 11, want: 5},
	}
	for _, tt := range tests {
		b, err := New(oldestFirst(tt.n))
		require.NoError(t, err)
		assert.Equal(t, tt.want, b.StepsRemaining(), "n=%d", tt.n)
	}
}

func TestResult_CompareURL(t *testing.T) {
	r := Result{
		Good: version.MustParse("22.0.0", version.SourceRemote),
		Bad:  version.MustParse("22.0.1", version.SourceRemote),
	}

	got, err := r.CompareURL("")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/electron/electron/compare/v22.0.0...v22.0.1", got)

	got, err = r.CompareURL("https://example.com/{{ .Good }}/{{ .Bad }}")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/22.0.0/22.0.1", got)

	_, err = r.CompareURL("{{ .Nope }}")
	require.Error(t, err)
}

func indexOf(vs []version.Version, v version.Version) int {
	for i := range vs {
		if vs[i] == v {
			return i
		}
	}
	return -1
}
