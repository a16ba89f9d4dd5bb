// Package registry tracks the globally rooted objects shown at the top of the
// explorer.
package registry

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/mabhi256/objexplorer/internal/memory"
	"github.com/mabhi256/objexplorer/internal/rtti"
)

// MinRefreshInterval bounds how often the source is refreshed.
const MinRefreshInterval = time.Second

// Root is one registry entry with its type name resolved for display.
type Root struct {
	Addr     memory.Address
	TypeName string
	Resolved bool
}

// Singletons rate-limits source refreshes and orders entries for display.
type Singletons struct {
	source      Source
	in          *rtti.Inspector
	interval    time.Duration
	nextRefresh time.Time
	logger      zerolog.Logger
}

func NewSingletons(source Source, in *rtti.Inspector, interval time.Duration, logger zerolog.Logger) *Singletons {
	return &Singletons{
		source:   source,
		in:       in,
		interval: max(interval, MinRefreshInterval),
		logger:   logger.With().Str("component", "registry").Logger(),
	}
}

// Snapshot refreshes the source when now has reached the next allowed refresh
// time, then returns every entry sorted by type name. Types are resolved on each
// call; nothing is cached between frames.
func (s *Singletons) Snapshot(now time.Time) []Root {
	if !now.Before(s.nextRefresh) {
		if err := s.source.Refresh(); err != nil {
			s.logger.Warn().Err(err).Msg("singleton refresh failed")
		}
		s.nextRefresh = now.Add(s.interval)
	}

	objects := s.source.Objects()
	roots := make([]Root, len(objects))
	for i, addr := range objects {
		roots[i].Addr = addr
		roots[i].TypeName, roots[i].Resolved = s.in.TypeName(addr)
	}

	SortRoots(roots)
	return roots
}

// SortRoots orders entries with unresolved types first, then by type name.
// Entries that compare equal keep their source order.
func SortRoots(roots []Root) {
	sort.SliceStable(roots, func(i, j int) bool {
		a, b := roots[i], roots[j]
		if !a.Resolved || !b.Resolved {
			return !a.Resolved && b.Resolved
		}
		return a.TypeName < b.TypeName
	})
}
