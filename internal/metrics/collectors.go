package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/Verdenroz/buff-ai/pkg/logger"
)

// StoreCollector reports stored post counts and Redis pool health at scrape time
type StoreCollector struct {
	log        *logger.Logger
	redis      *redis.Client
	authorKeys []string

	storedPosts *prometheus.Desc
	poolHits    *prometheus.Desc
	poolMisses  *prometheus.Desc
	poolTimeout *prometheus.Desc
	poolConns   *prometheus.Desc
}

// NewStoreCollector creates a collector counting posts for each author key
func NewStoreCollector(redis *redis.Client, authorKeys ...string) *StoreCollector {
	return &StoreCollector{
		log:        logger.Get().With("component", "store_collector"),
		redis:      redis,
		authorKeys: authorKeys,

		storedPosts: prometheus.NewDesc(
			"buffai_stored_posts",
			"Posts currently held in Redis",
			[]string{"author"}, nil,
		),
		poolHits: prometheus.NewDesc(
			"buffai_redis_pool_hits_total",
			"Times a free connection was found in the pool",
			nil, nil,
		),
		poolMisses: prometheus.NewDesc(
			"buffai_redis_pool_misses_total",
			"Times a free connection was not found in the pool",
			nil, nil,
		),
		poolTimeout: prometheus.NewDesc(
			"buffai_redis_pool_timeouts_total",
			"Times a wait for a connection timed out",
			nil, nil,
		),
		poolConns: prometheus.NewDesc(
			"buffai_redis_pool_connections",
			"Connections in the pool by state",
			[]string{"state"}, // total|idle|stale
			nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.storedPosts
	ch <- c.poolHits
	ch <- c.poolMisses
	ch <- c.poolTimeout
	ch <- c.poolConns
}

// Collect implements prometheus.Collector
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectPoolStats(ch)
	c.collectPostCounts(ctx, ch)
}

func (c *StoreCollector) collectPoolStats(ch chan<- prometheus.Metric) {
	stats := c.redis.PoolStats()

	ch <- prometheus.MustNewConstMetric(c.poolHits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.poolMisses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.poolTimeout, prometheus.CounterValue, float64(stats.Timeouts))
	ch <- prometheus.MustNewConstMetric(c.poolConns, prometheus.GaugeValue, float64(stats.TotalConns), "total")
	ch <- prometheus.MustNewConstMetric(c.poolConns, prometheus.GaugeValue, float64(stats.IdleConns), "idle")
	ch <- prometheus.MustNewConstMetric(c.poolConns, prometheus.GaugeValue, float64(stats.StaleConns), "stale")
}

func (c *StoreCollector) collectPostCounts(ctx context.Context, ch chan<- prometheus.Metric) {
	for _, author := range c.authorKeys {
		var count int
		iter := c.redis.Scan(ctx, 0, author+":*", 200).Iterator()
		for iter.Next(ctx) {
			count++
		}
		if err := iter.Err(); err != nil {
			c.log.Warnw("Failed to count stored posts", "author", author, "error", err)
			continue
		}

		ch <- prometheus.MustNewConstMetric(c.storedPosts, prometheus.GaugeValue, float64(count), author)
	}
}

// RegisterStoreCollector registers the collector with the default registry
func RegisterStoreCollector(collector *StoreCollector) {
	prometheus.MustRegister(collector)
}
