// Package router builds the HTTP route table.
//
// Route table:
//
//	POST   /api/students                                      → create a student
//	GET    /api/students                                      → list (?name=, ?classroom=)
//	GET    /api/students/{id}                                 → get one student
//	PUT    /api/students/{id}                                 → update a student
//	DELETE /api/students/{id}                                 → delete (and its consumptions)
//	GET    /api/students/{id}/consumptions                    → the student's history
//	POST   /api/products                                      → create a product
//	GET    /api/products                                      → list (?name=, ?active=)
//	GET    /api/products/{id}                                 → get one product
//	PUT    /api/products/{id}                                 → update a product
//	DELETE /api/products/{id}                                 → delete, 409 if consumed
//	POST   /api/consumptions                                  → record one consumption
//	POST   /api/consumptions/register                         → record a whole order
//	GET    /api/consumptions                                  → list (?student_id=, ?product_id=, ?from=, ?to=)
//	GET    /api/consumptions/{id}                             → get one consumption
//	DELETE /api/consumptions/{id}                             → delete a consumption
//	GET    /api/reports/monthly/{year}/{month}                → monthly totals
//	GET    /api/reports/monthly/{year}/{month}/students/{id}  → one student's statement
//	GET    /api/dashboard/stats                               → dashboard summary
//	GET    /health                                            → liveness
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/cantina-api/internal/http/handlers/consumption"
	"github.com/aanand-mishra/cantina-api/internal/http/handlers/product"
	"github.com/aanand-mishra/cantina-api/internal/http/handlers/report"
	"github.com/aanand-mishra/cantina-api/internal/http/handlers/student"
	"github.com/aanand-mishra/cantina-api/internal/http/middleware"
	"github.com/aanand-mishra/cantina-api/internal/storage"
	"github.com/aanand-mishra/cantina-api/internal/utils/response"
)

// Options tweaks New. The zero value is ready for production.
type Options struct {
	// Now is the clock used by the dashboard; defaults to time.Now.
	Now func() time.Time
}

// New registers every route on a fresh ServeMux and wraps it with the
// request-ID and access-log middleware.
func New(store storage.Storage, log *slog.Logger, opts Options) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	router := http.NewServeMux()

	router.HandleFunc("POST /api/students", student.New(store))
	router.HandleFunc("GET /api/students", student.GetList(store))
	router.HandleFunc("GET /api/students/{id}", student.GetByID(store))
	router.HandleFunc("PUT /api/students/{id}", student.Update(store))
	router.HandleFunc("DELETE /api/students/{id}", student.Delete(store))
	router.HandleFunc("GET /api/students/{id}/consumptions", student.Consumptions(store))

	router.HandleFunc("POST /api/products", product.New(store))
	router.HandleFunc("GET /api/products", product.GetList(store))
	router.HandleFunc("GET /api/products/{id}", product.GetByID(store))
	router.HandleFunc("PUT /api/products/{id}", product.Update(store))
	router.HandleFunc("DELETE /api/products/{id}", product.Delete(store))

	router.HandleFunc("POST /api/consumptions", consumption.New(store))
	router.HandleFunc("POST /api/consumptions/register", consumption.Register(store))
	router.HandleFunc("GET /api/consumptions", consumption.GetList(store))
	router.HandleFunc("GET /api/consumptions/{id}", consumption.GetByID(store))
	router.HandleFunc("DELETE /api/consumptions/{id}", consumption.Delete(store))

	router.HandleFunc("GET /api/reports/monthly/{year}/{month}", report.Monthly(store))
	router.HandleFunc("GET /api/reports/monthly/{year}/{month}/students/{id}", report.StudentMonthly(store))
	router.HandleFunc("GET /api/dashboard/stats", report.Dashboard(store, opts.Now))

	router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	})

	return middleware.RequestID(middleware.Logger(log)(router))
}
