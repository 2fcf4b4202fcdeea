package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistryExposesRecordedMetrics(t *testing.T) {
	reg := NewRegistry()
	reg.ObserveDispatch("counter/incremented")
	reg.ObserveReducerDuration(0.002)
	reg.ObserveQueryCacheResult("getUser", "hit")
	reg.ObservePersistWriteDuration("app/cart", 0.01)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		`fluxkit_store_dispatch_total{action_type="counter/incremented"} 1`,
		"fluxkit_store_reducer_duration_seconds",
		`fluxkit_query_cache_result_total{endpoint="getUser",result="hit"} 1`,
		`fluxkit_persist_write_duration_seconds_count{key="app/cart"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics output to contain %q, got:\n%s", want, body)
		}
	}
}

func TestNilRegistryObserveMethodsAreNoOps(t *testing.T) {
	var reg *Registry
	reg.ObserveDispatch("x")
	reg.ObserveReducerDuration(1)
	reg.ObserveQueryCacheResult("e", "miss")
	reg.ObservePersistWriteDuration("k", 1)
}
