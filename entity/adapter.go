// Package entity provides a normalized-collection CRUD adapter over
// {ids, entities} state, the way redux-toolkit's createEntityAdapter
// does: one canonical place to add/update/remove records by id while
// keeping ids a duplicate-free, optionally-sorted permutation of the
// entity map's keys.
package entity

import "sort"

// State is the normalized shape every adapter operation maintains.
type State[T any, Id comparable] struct {
	Ids      []Id
	Entities map[Id]T
}

// SelectID extracts an entity's id, the only thing the adapter needs to
// know about a concrete entity type.
type SelectID[T any, Id comparable] func(T) Id

// Comparator, when configured, keeps Ids sorted after every mutation;
// without one, insertion order is preserved (matching the default
// behavior the spec calls out in EntityState's invariant).
type Comparator[T any] func(a, b T) bool

// Adapter bundles the id selector and optional comparator used by every
// operation and selector it produces.
type Adapter[T any, Id comparable] struct {
	selectID SelectID[T, Id]
	less     Comparator[T]
}

// Option configures an Adapter.
type Option[T any, Id comparable] func(*Adapter[T, Id])

// WithSortComparator keeps Ids sorted by less after every mutation.
func WithSortComparator[T any, Id comparable](less Comparator[T]) Option[T, Id] {
	return func(a *Adapter[T, Id]) { a.less = less }
}

// CreateAdapter builds an Adapter keyed by selectID.
func CreateAdapter[T any, Id comparable](selectID SelectID[T, Id], opts ...Option[T, Id]) *Adapter[T, Id] {
	a := &Adapter[T, Id]{selectID: selectID}
	for _, apply := range opts {
		apply(a)
	}
	return a
}

// GetInitialState returns an empty, well-formed State.
func (a *Adapter[T, Id]) GetInitialState() State[T, Id] {
	return State[T, Id]{Ids: []Id{}, Entities: map[Id]T{}}
}

func (a *Adapter[T, Id]) clone(state State[T, Id]) State[T, Id] {
	ids := make([]Id, len(state.Ids))
	copy(ids, state.Ids)
	entities := make(map[Id]T, len(state.Entities))
	for k, v := range state.Entities {
		entities[k] = v
	}
	return State[T, Id]{Ids: ids, Entities: entities}
}

func (a *Adapter[T, Id]) resort(state *State[T, Id]) {
	if a.less == nil {
		return
	}
	sort.SliceStable(state.Ids, func(i, j int) bool {
		return a.less(state.Entities[state.Ids[i]], state.Entities[state.Ids[j]])
	})
}

// AddOne inserts one entity, overwriting any existing entity with the
// same id in place (its position in Ids is not changed).
func (a *Adapter[T, Id]) AddOne(state State[T, Id], entity T) State[T, Id] {
	return a.AddMany(state, []T{entity})
}

// AddMany inserts every entity, preserving first-seen order among the
// new ids and leaving existing ids' positions untouched.
func (a *Adapter[T, Id]) AddMany(state State[T, Id], entities []T) State[T, Id] {
	next := a.clone(state)
	for _, e := range entities {
		id := a.selectID(e)
		if _, exists := next.Entities[id]; !exists {
			next.Ids = append(next.Ids, id)
		}
		next.Entities[id] = e
	}
	a.resort(&next)
	return next
}

// SetOne inserts or fully replaces one entity.
func (a *Adapter[T, Id]) SetOne(state State[T, Id], entity T) State[T, Id] {
	return a.SetMany(state, []T{entity})
}

// SetMany inserts or fully replaces every entity.
func (a *Adapter[T, Id]) SetMany(state State[T, Id], entities []T) State[T, Id] {
	return a.AddMany(state, entities)
}

// SetAll replaces the entire collection with entities, in the given order.
func (a *Adapter[T, Id]) SetAll(state State[T, Id], entities []T) State[T, Id] {
	next := State[T, Id]{Ids: make([]Id, 0, len(entities)), Entities: make(map[Id]T, len(entities))}
	for _, e := range entities {
		id := a.selectID(e)
		if _, exists := next.Entities[id]; !exists {
			next.Ids = append(next.Ids, id)
		}
		next.Entities[id] = e
	}
	a.resort(&next)
	return next
}

// Update is a partial, merge-by-id change: apply mutates a copy of the
// existing entity in place. Ids not present in state are ignored.
type Update[T any, Id comparable] struct {
	Id    Id
	Apply func(draft *T)
}

// UpdateOne merges changes into one existing entity.
func (a *Adapter[T, Id]) UpdateOne(state State[T, Id], update Update[T, Id]) State[T, Id] {
	return a.UpdateMany(state, []Update[T, Id]{update})
}

// UpdateMany merges changes into every existing entity named. Ids that
// aren't present are skipped.
func (a *Adapter[T, Id]) UpdateMany(state State[T, Id], updates []Update[T, Id]) State[T, Id] {
	next := a.clone(state)
	changed := false
	for _, u := range updates {
		existing, ok := next.Entities[u.Id]
		if !ok {
			continue
		}
		u.Apply(&existing)
		newID := a.selectID(existing)
		if newID != u.Id {
			// id changed under the update: re-key it, preserving position.
			delete(next.Entities, u.Id)
			for i, id := range next.Ids {
				if id == u.Id {
					next.Ids[i] = newID
					break
				}
			}
		}
		next.Entities[newID] = existing
		changed = true
	}
	if !changed {
		return state
	}
	a.resort(&next)
	return next
}

// UpsertOne inserts the entity if its id is new, otherwise replaces it.
func (a *Adapter[T, Id]) UpsertOne(state State[T, Id], entity T) State[T, Id] {
	return a.AddMany(state, []T{entity})
}

// UpsertMany inserts new entities and replaces existing ones.
func (a *Adapter[T, Id]) UpsertMany(state State[T, Id], entities []T) State[T, Id] {
	return a.AddMany(state, entities)
}

// RemoveOne deletes one entity by id, a no-op if it isn't present.
func (a *Adapter[T, Id]) RemoveOne(state State[T, Id], id Id) State[T, Id] {
	return a.RemoveMany(state, []Id{id})
}

// RemoveMany deletes every entity named by id.
func (a *Adapter[T, Id]) RemoveMany(state State[T, Id], ids []Id) State[T, Id] {
	remove := make(map[Id]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}
	next := State[T, Id]{Ids: make([]Id, 0, len(state.Ids)), Entities: make(map[Id]T, len(state.Entities))}
	for _, id := range state.Ids {
		if _, drop := remove[id]; drop {
			continue
		}
		next.Ids = append(next.Ids, id)
		next.Entities[id] = state.Entities[id]
	}
	return next
}

// RemoveAll empties the collection.
func (a *Adapter[T, Id]) RemoveAll(state State[T, Id]) State[T, Id] {
	return a.GetInitialState()
}
