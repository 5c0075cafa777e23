// Package streak decides per-day completion and counts consecutive days.
//
// Everything here is a pure function of the task list: nothing is cached and
// every call walks the completion history again.
package streak

import (
	"fmt"
	"strings"
	"time"

	"pair-tasks/internal/model"
	"pair-tasks/internal/pairing"
)

// MaxWalk bounds the backward walk on corrupted or very long histories.
const MaxWalk = 366

// Policy decides whether a day with no received tasks counts as met.
type Policy int

const (
	// Lenient treats an empty obligation set as satisfied.
	Lenient Policy = iota
	// Strict treats an empty obligation set as unmet.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// ParsePolicy accepts "strict" or "lenient" (case-insensitive).
func ParsePolicy(raw string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown streak policy %q (want strict or lenient)", raw)
	}
}

// IsDone reports whether task is checked off for day.
func IsDone(task model.Task, day time.Time) bool {
	return task.IsDone(day)
}

// AllObligationsMet reports whether account completed, on day, every task it
// had received by then.
func AllObligationsMet(tasks []model.Task, account pairing.Account, day time.Time, policy Policy) bool {
	received := 0
	for _, t := range tasks {
		if t.Recipient != account || !t.CreatedOnOrBefore(day) {
			continue
		}
		received++
		if !t.IsDone(day) {
			return false
		}
	}
	if received == 0 {
		return policy == Lenient
	}
	return true
}

// PairStreak counts consecutive days, ending at today, on which both members
// of pair met all their obligations. The walk also ends on the first day
// before the pair's earliest task, so empty history never counts.
func PairStreak(tasks []model.Task, pair pairing.PairID, today time.Time, policy Policy) int {
	lo, hi := pairing.Members(pair)
	var own []model.Task
	for _, t := range tasks {
		if t.PairID == pair {
			own = append(own, t)
		}
	}

	count := 0
	d := today
	for count < MaxWalk {
		if !hasHistory(own, d) {
			break
		}
		if !AllObligationsMet(own, lo, d, policy) || !AllObligationsMet(own, hi, d, policy) {
			break
		}
		count++
		d = d.AddDate(0, 0, -1)
	}
	return count
}

// TaskStreak counts consecutive checked-off days of a single task ending at
// today. Days before the task's start date never count.
func TaskStreak(task model.Task, today time.Time) int {
	count := 0
	d := today
	for count < MaxWalk {
		if task.StartDate != "" && model.DayKey(d) < task.StartDate {
			break
		}
		if !task.IsDone(d) {
			break
		}
		count++
		d = d.AddDate(0, 0, -1)
	}
	return count
}

func hasHistory(tasks []model.Task, day time.Time) bool {
	for _, t := range tasks {
		if t.CreatedOnOrBefore(day) {
			return true
		}
	}
	return false
}
