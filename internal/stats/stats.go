package stats

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/alexivanou/wetter-proxy/internal/config"
	"github.com/jmoiron/sqlx"
)

type Stats struct {
	Timestamp time.Time      `json:"timestamp"`
	Memory    MemoryStats    `json:"memory"`
	Requests  []RouteStat    `json:"requests"`
	Gazetteer *GazetteerStat `json:"gazetteer,omitempty"`
	Runtime   RuntimeStats   `json:"runtime"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
	HeapInuse  uint64 `json:"heap_inuse"`
}

// RouteStat counts requests per route; ClientErrors and ServerErrors are 4xx and 5xx responses
type RouteStat struct {
	Route        string `json:"route"`
	Requests     int64  `json:"requests"`
	ClientErrors int64  `json:"client_errors"`
	ServerErrors int64  `json:"server_errors"`
}

type GazetteerStat struct {
	Type         string      `json:"type"`
	TotalRecords int64       `json:"total_records"`
	TableStats   []TableStat `json:"table_stats"`
}

type TableStat struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// Collector gathers runtime and request statistics.
// db is optional and only set when the local gazetteer is in use.
type Collector struct {
	db        *sqlx.DB
	dbType    config.DBType
	startTime time.Time

	routesMu sync.Mutex
	routes   map[string]*RouteStat

	cacheMutex sync.RWMutex
	cachedMem  *MemoryStats
	cacheTime  time.Time
}

var (
	memStatsCacheDuration = 5 * time.Second
	gazetteerTables       = []string{"countries", "cities", "city_translations", "country_translations"}
)

func NewCollector(db *sqlx.DB, dbType config.DBType) *Collector {
	return &Collector{
		db:        db,
		dbType:    dbType,
		startTime: time.Now(),
		routes:    make(map[string]*RouteStat),
	}
}

// Observe records one finished request
func (c *Collector) Observe(route string, status int) {
	c.routesMu.Lock()
	defer c.routesMu.Unlock()

	rs, ok := c.routes[route]
	if !ok {
		rs = &RouteStat{Route: route}
		c.routes[route] = rs
	}
	rs.Requests++
	switch {
	case status >= 500:
		rs.ServerErrors++
	case status >= 400:
		rs.ClientErrors++
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Timestamp: time.Now(),
		Memory:    c.collectMemoryStats(),
		Requests:  c.collectRouteStats(),
		Runtime:   c.collectRuntimeStats(),
	}

	if c.db != nil {
		gz, err := c.collectGazetteerStats(ctx)
		if err != nil {
			return nil, err
		}
		stats.Gazetteer = gz
	}

	return stats, nil
}

func (c *Collector) collectRouteStats() []RouteStat {
	c.routesMu.Lock()
	result := make([]RouteStat, 0, len(c.routes))
	for _, rs := range c.routes {
		result = append(result, *rs)
	}
	c.routesMu.Unlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Route < result[j].Route })
	return result
}

func (c *Collector) collectMemoryStats() MemoryStats {
	c.cacheMutex.RLock()
	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		mem := *c.cachedMem
		c.cacheMutex.RUnlock()
		return mem
	}
	c.cacheMutex.RUnlock()

	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		HeapInuse:  m.HeapInuse,
	}

	c.cachedMem = &mem
	c.cacheTime = time.Now()

	return mem
}

func (c *Collector) collectGazetteerStats(ctx context.Context) (*GazetteerStat, error) {
	stat := &GazetteerStat{Type: string(c.dbType)}

	for _, table := range gazetteerTables {
		var count int64
		// table names come from the fixed list above
		if err := c.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil {
			continue
		}
		stat.TableStats = append(stat.TableStats, TableStat{Name: table, RowCount: count})
		stat.TotalRecords += count
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return stat, nil
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
	}
}
