// Package bisect implements a bisection session over an ordered run of
// versions, oldest (known-good) first and newest (known-bad) last.
package bisect

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"

	"github.com/colonyops/vbisect/internal/core/version"
	"github.com/colonyops/vbisect/pkg/tmpl"
)

// DefaultCompareURL links the final good/bad pair to a changelog diff.
const DefaultCompareURL = "https://github.com/electron/electron/compare/v{{ .Good }}...v{{ .Bad }}"

var (
	// ErrEmptyRange is returned when a session is created over no versions.
	ErrEmptyRange = errors.New("bisect range is empty")
	// ErrSessionDone is returned when a finished session is advanced.
	ErrSessionDone = errors.New("bisect session is already done")
)

// Verdict records the outcome of testing a single version.
type Verdict struct {
	Version version.Version `json:"version"`
	Good    bool            `json:"good"`
}

// Result is the final pair of adjacent versions: the last good and the first
// bad release. Inconclusive is set when the known-good boundary tested bad,
// meaning the regression predates the range.
type Result struct {
	Good         version.Version `json:"good"`
	Bad          version.Version `json:"bad"`
	Inconclusive bool            `json:"inconclusive"`
}

// CompareURL renders tpl with the result's Good and Bad versions.
func (r Result) CompareURL(tpl string) (string, error) {
	if tpl == "" {
		tpl = DefaultCompareURL
	}
	out, err := tmpl.Render(tpl, r)
	if err != nil {
		return "", fmt.Errorf("render compare url: %w", err)
	}
	return out, nil
}

// Step is returned after each verdict. When Done is false, Next is the
// version to test next.
type Step struct {
	Next   version.Version
	Done   bool
	Result Result
}

// Bisector is a single bisection session. The first pivot is the oldest
// version so the known-good boundary is confirmed before the search narrows.
type Bisector struct {
	revs     []version.Version
	min      int
	max      int
	pivot    int
	verified bool
	done     bool
	result   Result
	history  []Verdict
}

// New starts a session over versions ordered oldest to newest.
func New(versions []version.Version) (*Bisector, error) {
	if len(versions) == 0 {
		return nil, ErrEmptyRange
	}

	return &Bisector{
		revs: slices.Clone(versions),
		min:  0,
		max:  len(versions) - 1,
	}, nil
}

// Current returns the pivot version under test.
func (b *Bisector) Current() version.Version { return b.revs[b.pivot] }

// Done reports whether the session has produced a result.
func (b *Bisector) Done() bool { return b.done }

// Result returns the final result. It is the zero value until Done.
func (b *Bisector) Result() Result { return b.result }

// Len returns the number of versions in the session.
func (b *Bisector) Len() int { return len(b.revs) }

// Versions returns a copy of the session's versions, oldest first.
func (b *Bisector) Versions() []version.Version { return slices.Clone(b.revs) }

// Range returns the current good and bad bounds.
func (b *Bisector) Range() (good, bad version.Version) {
	return b.revs[b.min], b.revs[b.max]
}

// History returns the verdicts recorded so far.
func (b *Bisector) History() []Verdict { return slices.Clone(b.history) }

// StepsRemaining estimates how many more verdicts are needed.
func (b *Bisector) StepsRemaining() int {
	if b.done {
		return 0
	}
	n := 0
	if gap := b.max - b.min; gap > 1 {
		n = bits.Len(uint(gap - 1))
	}
	if !b.verified {
		n++
	}
	return n
}

// Continue records a verdict for the current pivot and advances the session.
func (b *Bisector) Continue(good bool) (Step, error) {
	if b.done {
		return Step{}, ErrSessionDone
	}

	b.history = append(b.history, Verdict{Version: b.Current(), Good: good})

	if !b.verified {
		if !good {
			b.finish(Result{Good: b.revs[b.min], Bad: b.revs[b.min], Inconclusive: true})
			return b.step(), nil
		}
		b.verified = true
	} else if good {
		b.min = b.pivot
	} else {
		b.max = b.pivot
	}

	if b.max-b.min <= 1 {
		b.finish(Result{
			Good:         b.revs[b.min],
			Bad:          b.revs[b.max],
			Inconclusive: b.min == b.max,
		})
		return b.step(), nil
	}

	b.pivot = b.min + (b.max-b.min)/2
	return b.step(), nil
}

func (b *Bisector) finish(r Result) {
	b.done = true
	b.result = r
}

func (b *Bisector) step() Step {
	if b.done {
		return Step{Done: true, Result: b.result}
	}
	return Step{Next: b.Current()}
}
