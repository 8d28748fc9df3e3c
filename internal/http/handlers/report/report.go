// Package report serves the monthly reports and the dashboard summary.
package report

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aanand-mishra/cantina-api/internal/storage"
	"github.com/aanand-mishra/cantina-api/internal/utils/request"
	"github.com/aanand-mishra/cantina-api/internal/utils/response"
)

var errInvalidPeriod = errors.New("invalid period: year must be 1-9999 and month 1-12")

// period reads {year} and {month} from the path.
func period(r *http.Request) (int, time.Month, error) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, errInvalidPeriod
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errInvalidPeriod
	}
	return year, time.Month(month), nil
}

// Monthly handles GET /api/reports/monthly/{year}/{month}
//
// Success response (200 OK):
//
//	{ "year": 2025, "month": 3, "total_students": 1, "grand_total": 7,
//	  "students": [ { "student_id": 1, "full_name": "Ana Silva", "classroom": "5B",
//	                  "total_items": 2, "total_value": 7 } ] }
func Monthly(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, err := period(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("building monthly report", slog.Int("year", year), slog.Int("month", int(month)))

		report, err := store.MonthlyReport(r.Context(), year, month)
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, report)
	}
}

// StudentMonthly handles GET /api/reports/monthly/{year}/{month}/students/{id}
func StudentMonthly(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, err := period(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		id, ok := request.PathID(w, r, "id")
		if !ok {
			return
		}

		statement, err := store.StudentMonthlyReport(r.Context(), id, year, month)
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, statement)
	}
}

// Dashboard handles GET /api/dashboard/stats for the month now() falls in.
func Dashboard(store storage.Storage, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.DashboardStats(r.Context(), now())
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, stats)
	}
}
