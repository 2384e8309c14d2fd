//go:build property
// +build property

package entities

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestReorderProperties checks that reordering is a pure permutation
func TestReorderProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	build := func(n int) []Event {
		events := make([]Event, n)
		for i := range events {
			events[i] = Event{ID: int64(1000 + i), Title: "t"}
		}
		return events
	}

	// Property: any permutation of the stored ids is accepted and applied
	properties.Property("permutations are applied", prop.ForAll(
		func(n int, seed int64) bool {
			events := build(n)
			ids := make([]int64, n)
			for i, e := range events {
				ids[i] = e.ID
			}
			// deterministic shuffle from the seed
			for i := n - 1; i > 0; i-- {
				j := int((seed + int64(i)*7919) % int64(i+1))
				if j < 0 {
					j = -j
				}
				ids[i], ids[j] = ids[j], ids[i]
			}

			out, err := ReorderByIDs(events, ids)
			if err != nil || len(out) != n {
				return false
			}
			for i := range out {
				if out[i].ID != ids[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 50),
		gen.Int64(),
	))

	// Property: dropping any id is rejected
	properties.Property("missing ids are rejected", prop.ForAll(
		func(n int, drop int) bool {
			events := build(n)
			ids := make([]int64, 0, n-1)
			for i, e := range events {
				if i != drop%n {
					ids = append(ids, e.ID)
				}
			}
			_, err := ReorderByIDs(events, ids)
			return err != nil
		},
		gen.IntRange(1, 50),
		gen.IntRange(0, 1000),
	))

	// Property: MaxEventID bounds every id
	properties.Property("max id bounds all ids", prop.ForAll(
		func(ids []int64) bool {
			events := make([]Event, len(ids))
			for i, id := range ids {
				events[i] = Event{ID: id}
			}
			max := MaxEventID(events)
			for _, e := range events {
				if e.ID > max {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(0, 1<<40)),
	))

	properties.TestingRun(t)
}
