// Package diagnostics exposes a Runtime's metrics and heap state over HTTP:
// one mux, one Prometheus registry, one JSON snapshot handler under
// /debug/<name>/snapshot.
package diagnostics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voskan/mjsvm/gcheap"
)

// HeapSource is the slice of runtime.Context the diagnostics server needs,
// named as its own interface so this package does not have to import
// runtime (and therefore every package runtime itself imports).
type HeapSource interface {
	Heap() *gcheap.Heap
}

// Snapshot is the JSON body served at /debug/mjsvm/snapshot, copied from
// gcheap.Stats field by field except RememberedCount, which it omits.
type Snapshot struct {
	YoungBytesUsed uintptr `json:"young_bytes_used"`
	YoungCapacity  int     `json:"young_capacity"`
	OldBytesUsed   uintptr `json:"old_bytes_used"`
	OldCapacity    int     `json:"old_capacity"`
	MinorGCCount   uint64  `json:"minor_gc_count"`
	MajorGCCount   uint64  `json:"major_gc_count"`
	LiveYoungCount int     `json:"live_young_count"`
	LiveOldCount   int     `json:"live_old_count"`
}

// NewMux builds the HTTP handler: /metrics against gatherer (nil-safe, the
// route is simply omitted if the embedder never registered Prometheus),
// /debug/mjsvm/snapshot against src's heap.
func NewMux(gatherer prometheus.Gatherer, src HeapSource) *http.ServeMux {
	mux := http.NewServeMux()

	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/debug/mjsvm/snapshot", func(w http.ResponseWriter, r *http.Request) {
		stats := src.Heap().Stats()
		snap := Snapshot{
			YoungBytesUsed: stats.YoungBytesUsed,
			YoungCapacity:  stats.YoungCapacity,
			OldBytesUsed:   stats.OldBytesUsed,
			OldCapacity:    stats.OldCapacity,
			MinorGCCount:   stats.MinorGCCount,
			MajorGCCount:   stats.MajorGCCount,
			LiveYoungCount: stats.LiveYoungCount,
			LiveOldCount:   stats.LiveOldCount,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	})

	return mux
}
