// Package feed orders candidate posts for the front page and home feed.
//
// Ranking is a pure function of the candidate set, the mode and the
// clock. Hot keys are computed fresh per request and never persisted.
package feed

import (
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nvalette/threaddit/internal/models"
)

// PageSize is the fixed number of posts per feed page.
const PageSize = 20

// Mode selects the ranking algorithm.
type Mode string

const (
	ModeNew Mode = "new"
	ModeTop Mode = "top"
	ModeHot Mode = "hot"
)

// ParseMode maps a query value to a Mode. Anything unrecognized falls
// back to hot.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeNew, ModeTop, ModeHot:
		return Mode(s)
	default:
		return ModeHot
	}
}

// Window bounds top-mode candidates by age. Zero means unbounded.
type Window time.Duration

const (
	Unbounded   Window = 0
	WindowHour         = Window(3600 * time.Second)
	WindowDay          = Window(86400 * time.Second)
	WindowWeek         = Window(604800 * time.Second)
	WindowMonth        = Window(2678400 * time.Second)
	WindowYear         = Window(31557600 * time.Second)
)

// ParseWindow maps a query value to a Window. Anything unrecognized
// means all time.
func ParseWindow(s string) Window {
	switch s {
	case "hour":
		return WindowHour
	case "day":
		return WindowDay
	case "week":
		return WindowWeek
	case "month":
		return WindowMonth
	case "year":
		return WindowYear
	default:
		return Unbounded
	}
}

// Ranker orders posts by mode. The clock is injected so tests can pin
// "now".
type Ranker struct {
	clock clockwork.Clock
}

func NewRanker(clock clockwork.Clock) *Ranker {
	return &Ranker{clock: clock}
}

// Rank returns a new slice ordered by mode; the input is not mutated.
// Ties break on newer date_posted, then higher id, so the order is total
// and stable across requests for the same candidate set.
func (r *Ranker) Rank(posts []models.Post, mode Mode, window Window) []models.Post {
	ranked := make([]models.Post, len(posts))
	copy(ranked, posts)
	now := r.clock.Now()

	switch mode {
	case ModeNew:
		sort.SliceStable(ranked, func(i, j int) bool {
			return newerFirst(ranked[i], ranked[j])
		})
	case ModeTop:
		if window != Unbounded {
			cutoff := now.Add(-time.Duration(window))
			kept := ranked[:0]
			for _, p := range ranked {
				if !p.CreatedAt.Before(cutoff) {
					kept = append(kept, p)
				}
			}
			ranked = kept
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].Score != ranked[j].Score {
				return ranked[i].Score > ranked[j].Score
			}
			return newerFirst(ranked[i], ranked[j])
		})
	default: // hot, also the fallback for unknown modes
		keys := make(map[int]float64, len(ranked))
		for _, p := range ranked {
			keys[p.ID] = hotKey(p, now)
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			ki, kj := keys[ranked[i].ID], keys[ranked[j].ID]
			if ki != kj {
				return ki > kj
			}
			return newerFirst(ranked[i], ranked[j])
		})
	}
	return ranked
}

// hotKey divides score by age in hours, flooring age at one hour so a
// just-created post never divides by zero. Negative scores are not
// clamped: a fresh downvoted post keys below any positive post.
func hotKey(p models.Post, now time.Time) float64 {
	age := now.Sub(p.CreatedAt).Hours()
	if age < 1 {
		age = 1
	}
	return float64(p.Score) / age
}

func newerFirst(a, b models.Post) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// Page applies fixed-size offset pagination to an already-ranked slice.
// Out-of-range starts yield an empty page, never an error.
func Page(posts []models.Post, start int) []models.Post {
	if start < 0 {
		start = 0
	}
	if start >= len(posts) {
		return []models.Post{}
	}
	end := start + PageSize
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end]
}
