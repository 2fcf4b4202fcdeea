package persist

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/fluxkit/fluxkit/metrics"
	"github.com/fluxkit/fluxkit/store"
)

// Control action types dispatched/recognized by the persistence
// subsystem (spec.md §6).
const (
	RehydrateType = "persist/REHYDRATE"
	FlushType     = "persist/FLUSH"
	PurgeType     = "persist/PURGE"
	PauseType     = "persist/PAUSE"
	ResumeType    = "persist/RESUME"
)

// Config configures both the Enhancer and the Middleware for a given
// key; construct one Config per persisted slice of state.
type Config struct {
	Key               string
	Storage           Storage
	Version           int
	Migrations        map[int]Migration
	RehydrateStrategy string // "replace" (default) or "merge"
	Partialize        func(state any) any
	Whitelist         []string
	Blacklist         []string
	Throttle          time.Duration
	Logger            *zap.Logger
	Metrics           *metrics.Registry
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c Config) throttle() time.Duration {
	if c.Throttle <= 0 {
		return 100 * time.Millisecond
	}
	return c.Throttle
}

// Enhancer builds a store.Enhancer that rehydrates state from cfg.Storage
// at construction and writes it back, debounced, after every subsequent
// change (spec.md §4.11).
func Enhancer(cfg Config) store.Enhancer {
	return func(next store.CreateStoreFunc) store.CreateStoreFunc {
		return func(reducer store.Reducer, preloadedState any) store.Store {
			ctrl := GetController(cfg.Key, cfg.Storage)
			log := cfg.logger()

			rehydratedState := preloadedState
			var rehydratedPayload any
			shouldNotify := false

			raw, ok, err := cfg.Storage.GetItem(cfg.Key)
			if err != nil {
				log.Warn("persist: read failed, starting unrehydrated", zap.String("key", cfg.Key), zap.Error(err))
			} else if ok {
				rec, derr := DecodeRecord(raw)
				if derr != nil {
					log.Warn("persist: stored record unreadable, discarding", zap.String("key", cfg.Key), zap.Error(derr))
				} else if cfg.Migrations != nil && rec.Version != cfg.Version {
					newVersion, newState, merr := Migrate(cfg.Migrations, rec.Version, cfg.Version, rec.State)
					if merr != nil {
						log.Warn("persist: migration failed, discarding stored record", zap.String("key", cfg.Key), zap.Error(merr))
					} else if out, eerr := EncodeRecord(Record{Version: newVersion, State: newState}); eerr == nil {
						if werr := cfg.Storage.SetItem(cfg.Key, out); werr != nil {
							log.Warn("persist: migrated write failed", zap.String("key", cfg.Key), zap.Error(werr))
						}
					}
					// migration reshapes storage only; this session starts
					// from the reducer's own preloaded state.
				} else {
					switch cfg.RehydrateStrategy {
					case "merge":
						rehydratedState = shallowMerge(preloadedState, rec.State)
					default:
						rehydratedState = rec.State
					}
					rehydratedPayload = rec.State
					shouldNotify = true
				}
			}

			s := next(reducer, rehydratedState)

			ctrl.SetFlusher(func() {
				writeThrough(cfg, s.GetState())
			})

			if shouldNotify {
				s.Dispatch(store.Action{
					Type:    RehydrateType,
					Payload: rehydratedPayload,
					Meta:    map[string]any{"key": cfg.Key, "version": cfg.Version},
				})
			}

			s.Subscribe(func() {
				if ctrl.IsPaused() {
					return
				}
				ctrl.Schedule(cfg.throttle(), func() {
					writeThrough(cfg, s.GetState())
				})
			})

			return s
		}
	}
}

func writeThrough(cfg Config, state any) {
	start := time.Now()
	partial := applyPartialize(cfg, state)
	out, err := EncodeRecord(Record{Version: cfg.Version, State: partial})
	if err != nil {
		cfg.logger().Warn("persist: encode failed", zap.String("key", cfg.Key), zap.Error(err))
		return
	}
	if err := cfg.Storage.SetItem(cfg.Key, out); err != nil {
		cfg.logger().Warn("persist: write failed", zap.String("key", cfg.Key), zap.Error(err))
		return
	}
	cfg.Metrics.ObservePersistWriteDuration(cfg.Key, time.Since(start).Seconds())
}

func applyPartialize(cfg Config, state any) any {
	if cfg.Partialize != nil {
		return cfg.Partialize(state)
	}
	if len(cfg.Whitelist) == 0 && len(cfg.Blacklist) == 0 {
		return state
	}
	m := toMap(state)
	if m == nil {
		return state
	}
	if len(cfg.Whitelist) > 0 {
		out := make(map[string]any, len(cfg.Whitelist))
		for _, k := range cfg.Whitelist {
			if v, ok := m[k]; ok {
				out[k] = v
			}
		}
		return out
	}
	for _, k := range cfg.Blacklist {
		delete(m, k)
	}
	return m
}

func shallowMerge(preloaded, persisted any) any {
	pm := toMap(preloaded)
	sm := toMap(persisted)
	if sm == nil {
		return preloaded
	}
	if pm == nil {
		return persisted
	}
	merged := make(map[string]any, len(pm)+len(sm))
	for k, v := range pm {
		merged[k] = v
	}
	for k, v := range sm {
		merged[k] = v
	}
	return merged
}

func toMap(v any) map[string]any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
