package cache

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csgtree_cache_hits_total",
		Help: "Cache hits by tier (memory, disk).",
	}, []string{"tier"})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csgtree_cache_misses_total",
		Help: "Cache lookups that found no usable entry.",
	})

	cacheStores = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csgtree_cache_stores_total",
		Help: "Values stored in the cache.",
	})

	cacheStoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csgtree_cache_store_errors_total",
		Help: "Persistent writes that failed and were dropped.",
	})

	cacheWeakEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "csgtree_cache_weak_entries",
		Help: "Entries in the in-process weak tier, live or not yet swept.",
	})
)

const metricPrefix = "csgtree_cache_"

// Counts is a snapshot of the cache metrics.
type Counts struct {
	MemoryHits  float64
	DiskHits    float64
	Misses      float64
	Stores      float64
	StoreErrors float64
	WeakEntries float64
}

// Hits returns the hits of both tiers.
func (c Counts) Hits() float64 { return c.MemoryHits + c.DiskHits }

// ReadCounts collects the cache metrics from g, normally
// prometheus.DefaultGatherer.
func ReadCounts(g prometheus.Gatherer) (Counts, error) {
	families, err := g.Gather()
	if err != nil {
		return Counts{}, fmt.Errorf("cache: gather metrics: %w", err)
	}
	var c Counts
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, metricPrefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			switch name {
			case "csgtree_cache_hits_total":
				v := m.GetCounter().GetValue()
				for _, l := range m.GetLabel() {
					if l.GetName() != "tier" {
						continue
					}
					switch l.GetValue() {
					case "memory":
						c.MemoryHits += v
					case "disk":
						c.DiskHits += v
					}
				}
			case "csgtree_cache_misses_total":
				c.Misses += m.GetCounter().GetValue()
			case "csgtree_cache_stores_total":
				c.Stores += m.GetCounter().GetValue()
			case "csgtree_cache_store_errors_total":
				c.StoreErrors += m.GetCounter().GetValue()
			case "csgtree_cache_weak_entries":
				c.WeakEntries += m.GetGauge().GetValue()
			}
		}
	}
	return c, nil
}
