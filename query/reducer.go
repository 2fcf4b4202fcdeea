package query

import "github.com/fluxkit/fluxkit/store"

// buildReducer returns the pure State reducer for one API instance,
// keyed to actions under "<reducerPath>/...". It implements the cacheKey
// state machine from spec.md §4.8 without any side effects: starting a
// request, performing retention timers, and calling baseQuery all live
// in the thunks built by api.go, which dispatch the actions this reducer
// consumes.
func (a *API) buildReducer() store.Reducer {
	prefix := a.ReducerPath + "/"
	return func(raw any, action store.Action) any {
		s, ok := raw.(State)
		if !ok {
			s = newState()
		}
		if len(action.Type) <= len(prefix) || action.Type[:len(prefix)] != prefix {
			return s
		}
		switch action.Type[len(prefix):] {
		case "subscribe":
			cacheKey, _ := action.MetaValue("cacheKey")
			key, _ := cacheKey.(string)
			next := s.clone()
			entry := next.Queries[key]
			if entry.Status == "" {
				entry.Status = StatusUninitialized
			}
			entry.Subscribers++
			next.Queries[key] = entry
			next.Subscriptions[key] = entry.Subscribers
			return next

		case "unsubscribe":
			cacheKey, _ := action.MetaValue("cacheKey")
			key, _ := cacheKey.(string)
			next := s.clone()
			entry, ok := next.Queries[key]
			if !ok {
				return next
			}
			if entry.Subscribers > 0 {
				entry.Subscribers--
			}
			next.Queries[key] = entry
			next.Subscriptions[key] = entry.Subscribers
			return next

		case "queryStart":
			cacheKey, _ := action.MetaValue("cacheKey")
			key, _ := cacheKey.(string)
			requestID, _ := action.MetaValue("requestId")
			next := s.clone()
			entry := next.Queries[key]
			wasFulfilled := entry.Status == StatusFulfilled
			entry.Status = StatusPending
			entry.IsFetching = true
			if !wasFulfilled {
				entry.Data = nil
			}
			entry.Error = nil
			if rid, ok := requestID.(string); ok {
				entry.RequestID = rid
			}
			next.Queries[key] = entry
			return next

		case "querySuccess":
			cacheKey, _ := action.MetaValue("cacheKey")
			key, _ := cacheKey.(string)
			next := s.clone()
			entry := next.Queries[key]
			entry.Status = StatusFulfilled
			entry.IsFetching = false
			entry.Data = action.Payload
			entry.Error = nil
			entry.LastFetched = metaInt64(action, "now")
			if tags, ok := action.MetaValue("tags"); ok {
				if tagList, ok := tags.([]Tag); ok {
					entry.Tags = tagList
					next.recordTags(key, tagList)
				}
			}
			next.Queries[key] = entry
			return next

		case "queryError":
			cacheKey, _ := action.MetaValue("cacheKey")
			key, _ := cacheKey.(string)
			next := s.clone()
			entry := next.Queries[key]
			entry.Status = StatusRejected
			entry.IsFetching = false
			if qe, ok := action.Error.(*QueryError); ok {
				entry.Error = qe
			}
			next.Queries[key] = entry
			return next

		case "mutationStart":
			id, _ := action.MetaValue("mutationKey")
			key, _ := id.(string)
			next := s.clone()
			next.Mutations[key] = CacheEntry{Status: StatusPending, IsFetching: true, RequestID: key}
			return next

		case "mutationSuccess":
			id, _ := action.MetaValue("mutationKey")
			key, _ := id.(string)
			next := s.clone()
			entry := next.Mutations[key]
			entry.Status = StatusFulfilled
			entry.IsFetching = false
			entry.Data = action.Payload
			entry.Error = nil
			next.Mutations[key] = entry
			return next

		case "mutationError":
			id, _ := action.MetaValue("mutationKey")
			key, _ := id.(string)
			next := s.clone()
			entry := next.Mutations[key]
			entry.Status = StatusRejected
			entry.IsFetching = false
			if qe, ok := action.Error.(*QueryError); ok {
				entry.Error = qe
			}
			next.Mutations[key] = entry
			return next

		case "invalidateTags":
			tags, ok := action.Payload.([]Tag)
			if !ok {
				return s
			}
			next := s.clone()
			for key := range next.cacheKeysForTags(tags) {
				entry, ok := next.Queries[key]
				if !ok {
					continue
				}
				if entry.Subscribers > 0 {
					entry.Status = StatusPending
				} else {
					entry = CacheEntry{Status: StatusUninitialized}
				}
				next.Queries[key] = entry
			}
			return next

		case "retentionExpire":
			cacheKey, _ := action.MetaValue("cacheKey")
			key, _ := cacheKey.(string)
			next := s.clone()
			if entry, ok := next.Queries[key]; ok && entry.Subscribers == 0 {
				delete(next.Queries, key)
				delete(next.Subscriptions, key)
			}
			return next

		default:
			return s
		}
	}
}

func metaInt64(action store.Action, key string) int64 {
	v, ok := action.MetaValue(key)
	if !ok {
		return 0
	}
	n, _ := v.(int64)
	return n
}
