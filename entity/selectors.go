package entity

import "reflect"

// Selectors bundles the memoized derived-state readers redux-toolkit's
// entity adapters expose (getSelectors()), built with a Selector
// implementation compatible with selector.CreateSelector1's equality
// contract: each selector recomputes only when the backing State value
// itself changed.
type Selectors[T any, Id comparable] struct {
	SelectIds      func(State[T, Id]) []Id
	SelectEntities func(State[T, Id]) map[Id]T
	SelectAll      func(State[T, Id]) []T
	SelectTotal    func(State[T, Id]) int
	SelectByID     func(State[T, Id], Id) (T, bool)
}

// GetSelectors returns the standard selector set for this adapter.
// SelectAll is memoized against the identity of the backing Ids slice
// and Entities map (via their runtime data pointers, the same trick
// reflect.DeepEqual's callers in the pack reach for when value equality
// would be too expensive to check on every read) so repeated calls with
// an unchanged collection return the identical slice value.
func (a *Adapter[T, Id]) GetSelectors() Selectors[T, Id] {
	var lastIdsPtr, lastEntitiesPtr uintptr
	var lastAll []T
	var hasLast bool

	return Selectors[T, Id]{
		SelectIds:      func(s State[T, Id]) []Id { return s.Ids },
		SelectEntities: func(s State[T, Id]) map[Id]T { return s.Entities },
		SelectAll: func(s State[T, Id]) []T {
			idsPtr := sliceDataPointer(s.Ids)
			entitiesPtr := reflect.ValueOf(s.Entities).Pointer()
			if hasLast && idsPtr == lastIdsPtr && entitiesPtr == lastEntitiesPtr {
				return lastAll
			}
			all := make([]T, 0, len(s.Ids))
			for _, id := range s.Ids {
				all = append(all, s.Entities[id])
			}
			lastIdsPtr, lastEntitiesPtr, lastAll, hasLast = idsPtr, entitiesPtr, all, true
			return all
		},
		SelectTotal: func(s State[T, Id]) int { return len(s.Ids) },
		SelectByID: func(s State[T, Id], id Id) (T, bool) {
			v, ok := s.Entities[id]
			return v, ok
		},
	}
}

func sliceDataPointer[Id any](s []Id) uintptr {
	if len(s) == 0 {
		return 0
	}
	return reflect.ValueOf(s).Pointer()
}
