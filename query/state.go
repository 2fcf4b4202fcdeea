package query

// Status is a cache entry's place in the per-cacheKey state machine
// (spec.md §4.8): uninitialized -> pending -> fulfilled|rejected, with
// refetch and invalidation both re-entering pending.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusPending       Status = "pending"
	StatusFulfilled     Status = "fulfilled"
	StatusRejected      Status = "rejected"
)

// Tag identifies an invalidation group: a bare type ("Posts") or a type
// scoped to one id ("Posts", "42").
type Tag struct {
	Type string
	ID   string // empty means "the whole type", matching both (type,id) and (type,"") invalidations
}

// CacheEntry is the per-cacheKey (queries) or per-requestId (mutations)
// record described in spec.md §3.
type CacheEntry struct {
	Status      Status
	Data        any
	Error       *QueryError
	Subscribers int
	LastFetched int64 // epoch-ms, 0 means never fetched
	Tags        []Tag
	RequestID   string
	IsFetching  bool
}

// State is the endpoint-spanning sub-state an API's reducer owns.
type State struct {
	Queries       map[string]CacheEntry            // cacheKey -> entry
	Mutations     map[string]CacheEntry            // requestId or fixedCacheKey -> entry
	Provided      map[string]map[string]map[string]struct{} // tagType -> id ("" = untyped) -> set<cacheKey>
	Subscriptions map[string]int                   // cacheKey -> subscriber count, mirrors CacheEntry.Subscribers
}

func newState() State {
	return State{
		Queries:       map[string]CacheEntry{},
		Mutations:     map[string]CacheEntry{},
		Provided:      map[string]map[string]map[string]struct{}{},
		Subscriptions: map[string]int{},
	}
}

func (s State) clone() State {
	next := State{
		Queries:       make(map[string]CacheEntry, len(s.Queries)),
		Mutations:     make(map[string]CacheEntry, len(s.Mutations)),
		Provided:      make(map[string]map[string]map[string]struct{}, len(s.Provided)),
		Subscriptions: make(map[string]int, len(s.Subscriptions)),
	}
	for k, v := range s.Queries {
		next.Queries[k] = v
	}
	for k, v := range s.Mutations {
		next.Mutations[k] = v
	}
	for typ, byID := range s.Provided {
		cp := make(map[string]map[string]struct{}, len(byID))
		for id, keys := range byID {
			keyCp := make(map[string]struct{}, len(keys))
			for k := range keys {
				keyCp[k] = struct{}{}
			}
			cp[id] = keyCp
		}
		next.Provided[typ] = cp
	}
	for k, v := range s.Subscriptions {
		next.Subscriptions[k] = v
	}
	return next
}

func (s State) recordTags(cacheKey string, tags []Tag) {
	for _, tag := range tags {
		byID, ok := s.Provided[tag.Type]
		if !ok {
			byID = map[string]map[string]struct{}{}
			s.Provided[tag.Type] = byID
		}
		keys, ok := byID[tag.ID]
		if !ok {
			keys = map[string]struct{}{}
			byID[tag.ID] = keys
		}
		keys[cacheKey] = struct{}{}
	}
}

// cacheKeysForTags returns every cacheKey provided under any of tags,
// matching both an exact (type,id) entry and the type-wide (type,"")
// entry per spec.md §4.8's invalidation rule.
func (s State) cacheKeysForTags(tags []Tag) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tag := range tags {
		byID, ok := s.Provided[tag.Type]
		if !ok {
			continue
		}
		if keys, ok := byID[tag.ID]; ok {
			for k := range keys {
				out[k] = struct{}{}
			}
		}
		if tag.ID != "" {
			if keys, ok := byID[""]; ok {
				for k := range keys {
					out[k] = struct{}{}
				}
			}
		}
	}
	return out
}
