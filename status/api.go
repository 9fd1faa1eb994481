package status

import (
	"fmt"
	"net/http"
	"net/http/pprof"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/webhookx-io/hookdash/pkg/http/middlewares"
	"github.com/webhookx-io/hookdash/pkg/http/response"
	"github.com/webhookx-io/hookdash/pkg/stats"
	"github.com/webhookx-io/hookdash/utils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type API struct {
	startAt        time.Time
	debugEndpoints bool
	indicators     []*Indicator
	stats          *stats.Collector
	tracing        bool
}

func (api *API) Index(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := StatusResponse{
		UpTime: time.Since(api.startAt).Round(time.Second).String(),
		Runtime: RuntimeStats{
			Go:         runtime.Version(),
			Goroutines: runtime.NumGoroutine(),
		},
		Memory: MemoryStats{
			Alloc:       fmt.Sprintf("%.2f MiB", BytesToMiB(m.Alloc)),
			Sys:         fmt.Sprintf("%.2f MiB", BytesToMiB(m.Sys)),
			HeapAlloc:   fmt.Sprintf("%.2f MiB", BytesToMiB(m.HeapAlloc)),
			HeapObjects: int64(m.HeapObjects),
			GC:          int64(m.NumGC),
		},
	}

	if api.stats != nil {
		s := api.stats.Collect()
		resp.Database.TotalConnections = s.Int("database.total_connections")
		resp.Database.ActiveConnections = s.Int("database.active_connections")
		resp.Queue.Size = s.Int64("queue.size")
		resp.Queue.InvisibleSize = s.Int64("queue.invisible_size")
	}

	response.JSON(w, http.StatusOK, resp)
}

func (api *API) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     StatusUp,
		Components: make(map[string]HealthResult),
	}
	for _, check := range api.indicators {
		res := HealthResult{
			Status: StatusUp,
		}
		if err := check.Check(); err != nil {
			resp.Status = StatusDown

			res.Status = StatusDown
			res.Error = utils.Pointer(err.Error())
		}
		resp.Components[check.Name] = res
	}

	if resp.Status != StatusUp {
		response.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

func (api *API) Handler() http.Handler {
	r := mux.NewRouter()

	if api.tracing {
		r.Use(otelhttp.NewMiddleware("api.status"))
	}
	r.Use(middlewares.NewRecovery(nil).Handle)

	r.HandleFunc("/", api.Index).Methods("GET")
	r.HandleFunc("/health", api.Health).Methods("GET")

	if api.debugEndpoints {
		r.HandleFunc("/debug/pprof/profile", pprof.Profile).Methods("GET")
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol).Methods("GET")
		r.HandleFunc("/debug/pprof/trace", pprof.Trace).Methods("GET")
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline).Methods("GET")
		r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index).Methods("GET")
	}

	return r
}
