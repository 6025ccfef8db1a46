// Package rangesel owns the earliest/latest version pair chosen before a
// bisect starts. Both indices point into a newest-first version list, and the
// two disablement predicates keep the pair from ever encoding an empty or
// inverted range.
package rangesel

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/colonyops/vbisect/internal/core/bisect"
	"github.com/colonyops/vbisect/internal/core/logging"
	"github.com/colonyops/vbisect/internal/core/version"
)

// DefaultStartOffset is how far back from the newest version the earliest
// selection starts.
const DefaultStartOffset = 10

// unset marks an index that does not point into the list.
const unset = -1

// Sink receives the result of a submitted selection.
type Sink interface {
	// SetVersion activates v. It may block on I/O.
	SetVersion(ctx context.Context, v version.Version) error
	// SetBisector stores the newly created session.
	SetBisector(b *bisect.Bisector)
	// SetBisectDialogVisible flips the dialog visibility flag.
	SetBisectDialogVisible(visible bool)
}

// Snapshot is the derived view state published to subscribers after every
// mutation.
type Snapshot struct {
	StartIndex int
	EndIndex   int
	CanSubmit  bool
	ShowHelp   bool
}

// Option configures a Selector.
type Option func(*Selector)

// WithStartOffset overrides DefaultStartOffset.
func WithStartOffset(n int) Option {
	return func(s *Selector) { s.startOffset = n }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Selector) { s.log = l }
}

// Selector is the range selector state machine.
type Selector struct {
	versions    []version.Version
	startIndex  int
	endIndex    int
	showHelp    bool
	startOffset int

	nextSubID int
	subs      map[int]func(Snapshot)
	log       zerolog.Logger
}

// New creates a selector over versions (newest first) with default indices:
// latest is the newest version and earliest is DefaultStartOffset versions
// older, clamped to the oldest entry.
func New(versions []version.Version, opts ...Option) *Selector {
	s := &Selector{
		versions:    slices.Clone(versions),
		startOffset: DefaultStartOffset,
		subs:        make(map[int]func(Snapshot)),
		log:         logging.Component("rangesel"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.startIndex = min(max(s.startOffset, 0), len(s.versions)-1)
	s.endIndex = 0
	if len(s.versions) == 0 {
		s.endIndex = unset
	}

	return s
}

// Versions returns the list the indices point into.
func (s *Selector) Versions() []version.Version { return s.versions }

// StartIndex returns the earliest (known-good) index.
func (s *Selector) StartIndex() int { return s.startIndex }

// EndIndex returns the latest (known-bad) index.
func (s *Selector) EndIndex() int { return s.endIndex }

// Earliest returns the selected known-good version.
func (s *Selector) Earliest() (version.Version, bool) { return s.at(s.startIndex) }

// Latest returns the selected known-bad version.
func (s *Selector) Latest() (version.Version, bool) { return s.at(s.endIndex) }

// ShowHelp reports whether the help panel is open.
func (s *Selector) ShowHelp() bool { return s.showHelp }

func (s *Selector) at(i int) (version.Version, bool) {
	if i < 0 || i >= len(s.versions) {
		return version.Version{}, false
	}
	return s.versions[i], true
}

func (s *Selector) indexOf(v version.Version) int {
	return slices.Index(s.versions, v)
}

// SelectEarliest sets the known-good boundary. A version missing from the
// list stores -1; pickers must never emit one.
func (s *Selector) SelectEarliest(v version.Version) {
	s.startIndex = s.indexOf(v)
	if s.startIndex == unset {
		s.log.Warn().Str("version", v.Version).Msg("earliest version not in list")
	}
	s.notify()
}

// SelectLatest sets the known-bad boundary. See SelectEarliest.
func (s *Selector) SelectLatest(v version.Version) {
	s.endIndex = s.indexOf(v)
	if s.endIndex == unset {
		s.log.Warn().Str("version", v.Version).Msg("latest version not in list")
	}
	s.notify()
}

// IsEarliestItemDisabled reports whether v is the current latest pick or
// newer, which would make the good boundary collide with or pass the bad one.
func (s *Selector) IsEarliestItemDisabled(v version.Version) bool {
	return s.indexOf(v) < s.endIndex+1
}

// IsLatestItemDisabled reports whether v is the current earliest pick or older.
func (s *Selector) IsLatestItemDisabled(v version.Version) bool {
	return s.indexOf(v) > s.startIndex-1
}

// CanSubmit reports whether the pair describes a non-empty range.
func (s *Selector) CanSubmit() bool {
	return s.startIndex > s.endIndex
}

// ToggleHelp flips the help panel.
func (s *Selector) ToggleHelp() {
	s.showHelp = !s.showHelp
	s.notify()
}

// BisectRange returns versions endIndex..startIndex inclusive, oldest first.
// It returns nil when either index is unset or the pair cannot submit.
func (s *Selector) BisectRange() []version.Version {
	if !s.valid() {
		return nil
	}

	out := slices.Clone(s.versions[s.endIndex : s.startIndex+1])
	slices.Reverse(out)
	return out
}

func (s *Selector) valid() bool {
	return s.startIndex != unset && s.endIndex != unset &&
		s.startIndex < len(s.versions) && s.CanSubmit()
}

// Submit starts a bisect session over the selected range, hands it to sink,
// activates its first pivot and closes the dialog. It returns a nil session
// without touching sink when the selection is not submittable. If activation
// fails the session is still stored and the dialog stays open.
func (s *Selector) Submit(ctx context.Context, sink Sink) (*bisect.Bisector, error) {
	if !s.valid() {
		s.log.Debug().
			Int("start", s.startIndex).
			Int("end", s.endIndex).
			Msg("submit ignored: selection incomplete")
		return nil, nil
	}

	b, err := bisect.New(s.BisectRange())
	if err != nil {
		return nil, fmt.Errorf("start bisect: %w", err)
	}

	sink.SetBisector(b)

	pivot := b.Current()
	// the sink's error already names the version
	if err := sink.SetVersion(ctx, pivot); err != nil {
		return b, err
	}

	sink.SetBisectDialogVisible(false)

	good, bad := b.Range()
	s.log.Info().
		Str("good", good.Version).
		Str("bad", bad.Version).
		Int("size", b.Len()).
		Msg("bisect started")

	return b, nil
}

// Subscribe registers fn to receive a Snapshot after every mutation. The
// returned function removes the subscription.
func (s *Selector) Subscribe(fn func(Snapshot)) func() {
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

// Snapshot returns the current derived state.
func (s *Selector) Snapshot() Snapshot {
	return Snapshot{
		StartIndex: s.startIndex,
		EndIndex:   s.endIndex,
		CanSubmit:  s.CanSubmit(),
		ShowHelp:   s.showHelp,
	}
}

func (s *Selector) notify() {
	snap := s.Snapshot()
	for _, fn := range s.subs {
		fn(snap)
	}
}
