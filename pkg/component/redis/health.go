package redis

import (
	"context"
	"time"
)

// HealthStats is the answer-cache health snapshot surfaced by /v1/status.
type HealthStats struct {
	// Healthy indicates whether Redis is reachable.
	Healthy bool `json:"healthy"`

	// Latency is the round-trip time of the ping.
	Latency time.Duration `json:"latency"`

	// PoolStats contains connection pool statistics.
	PoolStats *PoolStats `json:"pool_stats,omitempty"`

	// Error carries the failure message when unhealthy.
	Error string `json:"error,omitempty"`
}

// PoolStats contains connection pool statistics.
type PoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

// HealthWithStats pings the server and reports reachability, latency and
// pool statistics.
func (c *Client) HealthWithStats(ctx context.Context) *HealthStats {
	stats := &HealthStats{}

	start := time.Now()
	err := c.Ping(ctx)
	stats.Latency = time.Since(start)

	if err != nil {
		stats.Error = err.Error()
		return stats
	}

	stats.Healthy = true
	poolStats := c.client.PoolStats()
	stats.PoolStats = &PoolStats{
		Hits:       poolStats.Hits,
		Misses:     poolStats.Misses,
		Timeouts:   poolStats.Timeouts,
		TotalConns: poolStats.TotalConns,
		IdleConns:  poolStats.IdleConns,
		StaleConns: poolStats.StaleConns,
	}
	return stats
}
