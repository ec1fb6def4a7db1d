package monitoring

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"crm-backend/internal/models"
	"crm-backend/pkg/utils"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// MonitoringServer runs on a side port with its own router: live server
// and database stats for the ops view, plus a websocket feed that
// pushes events (new leads, health alerts) to connected dashboards.
type MonitoringServer struct {
	db         *pgxpool.Pool
	port       int
	events     []Event
	eventsMux  sync.RWMutex
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Event
}

type Event struct {
	ID        int       `json:"id"`
	Severity  string    `json:"severity"` // info, warning, critical
	Type      string    `json:"type"`     // new_lead, database_down, high_latency
	Message   string    `json:"message"`
	LeadID    int       `json:"lead_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ServerStats struct {
	DatabaseStatus    string  `json:"database_status"`
	ActiveConnections int     `json:"active_connections"`
	ResponseTime      int64   `json:"response_time_ms"`
	DBSize            string  `json:"db_size"`
	DBUptime          string  `json:"db_uptime"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	MemoryUsed        string  `json:"memory_used"`
	MemoryTotal       string  `json:"memory_total"`
	DiskPercent       float64 `json:"disk_percent"`
	DiskUsed          string  `json:"disk_used"`
	DiskTotal         string  `json:"disk_total"`
	LeadsToday        int     `json:"leads_today"`
	PendingTasks      int     `json:"pending_tasks"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewMonitoringServer(db *pgxpool.Pool, port int) *MonitoringServer {
	return &MonitoringServer{
		db:        db,
		port:      port,
		events:    make([]Event, 0),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, 64),
	}
}

func (ms *MonitoringServer) Start() {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", ms.getStats).Methods("GET")
	r.HandleFunc("/api/events", ms.getEvents).Methods("GET")

	// WebSocket for real-time updates
	r.HandleFunc("/ws", ms.handleWebSocket)

	go ms.handleBroadcast()
	go ms.monitorHealth()

	addr := fmt.Sprintf(":%d", ms.port)
	log.Printf("[Monitoring] Ops server running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

// NewLead broadcasts a new-lead event to connected dashboards. The
// signature matches alerts.Dispatcher so the server can sit in the
// alert fan-out.
func (ms *MonitoringServer) NewLead(ctx context.Context, lead *models.Lead) {
	event := Event{
		Severity:  "info",
		Type:      "new_lead",
		Message:   fmt.Sprintf("Nuevo lead: %s (%s)", lead.Name, lead.Source),
		LeadID:    lead.ID,
		Timestamp: time.Now(),
	}
	ms.record(event)
}

func (ms *MonitoringServer) record(event Event) {
	ms.eventsMux.Lock()
	event.ID = len(ms.events) + 1
	ms.events = append(ms.events, event)
	ms.eventsMux.Unlock()

	select {
	case ms.broadcast <- event:
	default:
		log.Printf("[Monitoring] Broadcast buffer full, dropping event %s", event.Type)
	}
}

func (ms *MonitoringServer) getStats(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, ms.collectStats())
}

func (ms *MonitoringServer) getEvents(w http.ResponseWriter, r *http.Request) {
	ms.eventsMux.RLock()
	defer ms.eventsMux.RUnlock()
	utils.JSON(w, http.StatusOK, ms.events)
}

func (ms *MonitoringServer) collectStats() ServerStats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := ms.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	dbStatus := "healthy"
	if err != nil {
		dbStatus = "unhealthy"
	}

	var activeConns int
	ms.db.QueryRow(ctx, "SELECT count(*) FROM pg_stat_activity").Scan(&activeConns)

	var dbSizeBytes int64
	ms.db.QueryRow(ctx, "SELECT pg_database_size(current_database())").Scan(&dbSizeBytes)

	var uptimeSec int
	ms.db.QueryRow(ctx, "SELECT EXTRACT(EPOCH FROM (NOW() - pg_postmaster_start_time()))::int").Scan(&uptimeSec)

	var leadsToday int
	ms.db.QueryRow(ctx, "SELECT count(*) FROM leads WHERE created_at >= CURRENT_DATE").Scan(&leadsToday)

	var pendingTasks int
	ms.db.QueryRow(ctx, "SELECT count(*) FROM tasks WHERE status = 'pendiente'").Scan(&pendingTasks)

	cpuPercents, _ := cpu.Percent(time.Second, false)
	cpuPercent := 0.0
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	return ServerStats{
		DatabaseStatus:    dbStatus,
		ActiveConnections: activeConns,
		ResponseTime:      responseTime,
		DBSize:            formatBytes(uint64(dbSizeBytes)),
		DBUptime:          formatUptime(uptimeSec),
		CPUPercent:        cpuPercent,
		MemoryPercent:     memStats.UsedPercent,
		MemoryUsed:        formatBytes(memStats.Used),
		MemoryTotal:       formatBytes(memStats.Total),
		DiskPercent:       diskStats.UsedPercent,
		DiskUsed:          formatBytes(diskStats.Used),
		DiskTotal:         formatBytes(diskStats.Total),
		LeadsToday:        leadsToday,
		PendingTasks:      pendingTasks,
	}
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func formatUptime(seconds int) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func (ms *MonitoringServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	ms.clientsMux.Lock()
	ms.clients[conn] = true
	ms.clientsMux.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			ms.clientsMux.Lock()
			delete(ms.clients, conn)
			ms.clientsMux.Unlock()
			break
		}
	}
}

func (ms *MonitoringServer) handleBroadcast() {
	for event := range ms.broadcast {
		ms.clientsMux.Lock()
		for client := range ms.clients {
			err := client.WriteJSON(event)
			if err != nil {
				client.Close()
				delete(ms.clients, client)
			}
		}
		ms.clientsMux.Unlock()
	}
}

func (ms *MonitoringServer) monitorHealth() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := ms.collectStats()

		if stats.DatabaseStatus == "unhealthy" {
			ms.record(Event{
				Severity:  "critical",
				Type:      "database_down",
				Message:   "Database is unreachable",
				Timestamp: time.Now(),
			})
		}

		if stats.ResponseTime > 1000 {
			ms.record(Event{
				Severity:  "warning",
				Type:      "high_latency",
				Message:   fmt.Sprintf("Database response time: %dms", stats.ResponseTime),
				Timestamp: time.Now(),
			})
		}
	}
}
