// Package timeline defines the replay order over loan mutation events.
//
// Two ledger events (charges, transactions) order by when they entered the
// system: submitted-on, then created-at, then effective date. A term
// variation orders against anything else by plan date alone and wins a
// same-day tie, so a rate change always takes effect before the charges and
// payments of that day. The two comparison bases are intentionally different;
// do not unify them.
package timeline

import (
	"sort"
	"time"

	"github.com/wicaksana/loan-engine/internal/domain"
)

// Compare returns -1, 0 or 1. It is anti-symmetric:
// Compare(a, b) == -Compare(b, a) for all operands.
func Compare(a, b domain.ChangeOperation) int {
	aVar := a.Kind == domain.OpTermVariation
	bVar := b.Kind == domain.OpTermVariation

	if aVar || bVar {
		if c := compareDates(a.EffectiveDate(), b.EffectiveDate()); c != 0 {
			return c
		}
		switch {
		case aVar && !bVar:
			return -1
		case bVar && !aVar:
			return 1
		default:
			return 0
		}
	}

	if c := compareDates(a.SubmittedOn, b.SubmittedOn); c != 0 {
		return c
	}
	if c := compareCreatedAt(a.CreatedAt, b.CreatedAt); c != 0 {
		return c
	}
	return compareDates(a.EffectiveDate(), b.EffectiveDate())
}

// Sort orders operations into replay order. Operations that compare equal
// keep their insertion order.
func Sort(ops []domain.ChangeOperation) {
	sort.SliceStable(ops, func(i, j int) bool {
		return Compare(ops[i], ops[j]) < 0
	})
}

func compareDates(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// compareCreatedAt orders audit timestamps ascending with a missing value
// sorting before any present one.
func compareCreatedAt(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return compareDates(*a, *b)
	}
}
