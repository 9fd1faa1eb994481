package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/webhookx-io/hookdash/config"
	"github.com/webhookx-io/hookdash/db"
	"github.com/webhookx-io/hookdash/db/dao"
	dberrs "github.com/webhookx-io/hookdash/db/errs"
	"github.com/webhookx-io/hookdash/db/query"
	"github.com/webhookx-io/hookdash/pkg/errs"
	"github.com/webhookx-io/hookdash/pkg/http/middlewares"
	"github.com/webhookx-io/hookdash/pkg/http/response"
	"github.com/webhookx-io/hookdash/pkg/types"
)

type API struct {
	cfg         *config.Config
	db          *db.DB
	middlewares []mux.MiddlewareFunc
}

type Options struct {
	Config      *config.Config
	DB          *db.DB
	Middlewares []mux.MiddlewareFunc
}

func NewAPI(opts Options) *API {
	return &API{
		cfg:         opts.Config,
		db:          opts.DB,
		middlewares: opts.Middlewares,
	}
}

// param returns the value of an url variable
func (api *API) param(r *http.Request, variable string) string {
	return mux.Vars(r)[variable]
}

// query returns the url query value if it exists.
func (api *API) query(r *http.Request, name string) string {
	return r.URL.Query().Get(name)
}

func (api *API) json(code int, w http.ResponseWriter, data interface{}) {
	response.JSON(w, code, data)
}

func (api *API) bindQuery(r *http.Request, q *query.Query) {
	page, _ := strconv.Atoi(api.query(r, "page_no"))
	if page <= 0 {
		page = 1
	}

	pagesize, _ := strconv.Atoi(api.query(r, "page_size"))
	if pagesize <= 0 {
		pagesize = 20
	}

	q.Page(uint64(page), uint64(pagesize))
}

func (api *API) error(code int, w http.ResponseWriter, err error) {
	var e *errs.ValidateError
	if errors.As(err, &e) {
		api.json(code, w, types.ErrorResponse{
			Message: "Request Validation",
			Error:   e,
		})
		return
	}
	api.json(code, w, types.ErrorResponse{Message: err.Error()})
}

func (api *API) assert(err error) {
	if err != nil {
		panic(err)
	}
}

// customizeError maps database constraint errors raised by handlers to 400
func customizeError(err error, w http.ResponseWriter) bool {
	if errors.Is(err, dao.ErrConstraintViolation) {
		response.JSON(w, 400, types.ErrorResponse{Message: err.Error()})
		return true
	}
	var dbErr *dberrs.DBError
	if errors.As(dberrs.ConvertError(err), &dbErr) {
		response.JSON(w, 400, types.ErrorResponse{Message: dbErr.Error()})
		return true
	}
	return false
}

// Handler returns a http.Handler
func (api *API) Handler() http.Handler {
	r := mux.NewRouter()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, 404, types.ErrorResponse{Message: MsgNotFound})
	})

	for _, m := range api.middlewares {
		r.Use(m)
	}
	r.Use(middlewares.NewRecovery(customizeError).Handle)

	r.HandleFunc("/", api.Index).Methods("GET")

	r.HandleFunc("/endpoints", api.PageEndpoint).Methods("GET")
	r.HandleFunc("/endpoints", api.CreateEndpoint).Methods("POST")
	r.HandleFunc("/endpoints/{id}", api.GetEndpoint).Methods("GET")
	r.HandleFunc("/endpoints/{id}", api.DeleteEndpoint).Methods("DELETE")

	r.HandleFunc("/endpoints/{id}/webhooks", api.PageWebhook).Methods("GET")
	r.HandleFunc("/endpoints/{id}/webhooks", api.CreateWebhook).Methods("POST")
	r.HandleFunc("/endpoints/{id}/webhooks/{webhook_id}", api.GetWebhook).Methods("GET")
	r.HandleFunc("/endpoints/{id}/webhooks/{webhook_id}", api.UpdateWebhook).Methods("PUT")
	r.HandleFunc("/endpoints/{id}/webhooks/{webhook_id}", api.DeleteWebhook).Methods("DELETE")

	return r
}
