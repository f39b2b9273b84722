package server

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/greenmangroup/options-tracker/internal/database"
)

// SystemHandlers serves process and database health endpoints
type SystemHandlers struct {
	db      *database.DB
	dataDir string
	log     zerolog.Logger
	started time.Time
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(db *database.DB, dataDir string, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		db:      db,
		dataDir: dataDir,
		log:     log.With().Str("handler", "system").Logger(),
		started: time.Now(),
	}
}

// HandleStatus handles GET /status - process CPU/RAM and uptime
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, ramPct := h.systemStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"go_version":     runtime.Version(),
		"cpu_percent":    cpuPct,
		"ram_percent":    ramPct,
	})
}

// HandleDatabaseStats handles GET /database/stats - row counts and file size
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{}

	for _, table := range []string{"accounts", "tickers", "trades", "cost_basis", "cash_flows", "commissions"} {
		var count int64
		if err := h.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
			h.log.Error().Err(err).Str("table", table).Msg("Failed to count rows")
			http.Error(w, "Failed to read database stats", http.StatusInternalServerError)
			return
		}
		stats[table] = count
	}

	if info, err := os.Stat(h.db.Path()); err == nil {
		stats["size_bytes"] = info.Size()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// systemStats samples CPU and RAM usage percentages. The 100ms CPU window
// keeps the endpoint responsive.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}
