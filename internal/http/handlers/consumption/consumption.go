// Package consumption contains the HTTP handlers that record and list
// purchases.
package consumption

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/cantina-api/internal/storage"
	"github.com/aanand-mishra/cantina-api/internal/types"
	"github.com/aanand-mishra/cantina-api/internal/utils/request"
	"github.com/aanand-mishra/cantina-api/internal/utils/response"
)

// Request is the body of POST /api/consumptions.
//
// Quantity defaults to 1. UnitPrice defaults to the product's current
// price; send it only to charge something else (a discount, say). Both
// are capped so a total always fits in a JSON number.
type Request struct {
	StudentID  int64      `json:"student_id" validate:"required"`
	ProductID  int64      `json:"product_id" validate:"required"`
	Quantity   *int64     `json:"quantity" validate:"omitempty,gte=1,lte=10000"`
	UnitPrice  *float64   `json:"unit_price" validate:"omitempty,gte=0,lte=1000000"`
	ConsumedAt *time.Time `json:"consumed_at"`
}

// RegisterRequest is the body of POST /api/consumptions/register.
type RegisterRequest struct {
	StudentID int64          `json:"student_id" validate:"required"`
	Items     []RegisterLine `json:"items" validate:"required,min=1,dive"`
}

// RegisterLine is one product of a RegisterRequest. A zero quantity
// means one unit.
type RegisterLine struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int64 `json:"quantity" validate:"gte=0,lte=10000"`
}

// New handles POST /api/consumptions
//
// Request body (JSON):
//
//	{ "student_id": 1, "product_id": 2, "quantity": 2 }
//
// Success response (201 Created) is the stored record, total included.
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("recording a consumption")

		var req Request
		if !request.Bind(w, r, &req) {
			return
		}

		c := types.Consumption{
			StudentID: req.StudentID,
			ProductID: req.ProductID,
			Quantity:  types.DefaultQuantity,
		}
		if req.Quantity != nil {
			c.Quantity = *req.Quantity
		}
		if req.ConsumedAt != nil {
			c.ConsumedAt = *req.ConsumedAt
		}

		if req.UnitPrice != nil {
			c.UnitPrice = *req.UnitPrice
		} else {
			product, err := store.GetProductByID(r.Context(), req.ProductID)
			if err != nil {
				response.StorageError(w, r, asReference(err))
				return
			}
			c.UnitPrice = product.Price
		}

		id, err := store.CreateConsumption(r.Context(), c)
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		created, err := store.GetConsumptionByID(r.Context(), id)
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		slog.Info("consumption recorded",
			slog.Int64("id", id),
			slog.Int64("student_id", c.StudentID),
			slog.Float64("total", created.Total()))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// Register handles POST /api/consumptions/register: a whole order for one
// student, stored atomically at the products' current prices.
//
//	{ "student_id": 1, "items": [ { "product_id": 2, "quantity": 2 }, { "product_id": 3 } ] }
func Register(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !request.Bind(w, r, &req) {
			return
		}
		slog.Info("registering an order",
			slog.Int64("student_id", req.StudentID),
			slog.Int("items", len(req.Items)))

		items := make([]storage.RegisterItem, 0, len(req.Items))
		for _, line := range req.Items {
			items = append(items, storage.RegisterItem{ProductID: line.ProductID, Quantity: line.Quantity})
		}

		created, err := store.RegisterConsumptions(r.Context(), req.StudentID, items)
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetByID handles GET /api/consumptions/{id}
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r, "id")
		if !ok {
			return
		}

		c, err := store.GetConsumptionByID(r.Context(), id)
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, c)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/consumptions
//
// Query parameters (all optional):
//
//	student_id, product_id  positive integers
//	from, to                dates as YYYY-MM-DD, both inclusive
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		list, err := store.GetConsumptions(r.Context(), filter)
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, list)
	}
}

// Delete handles DELETE /api/consumptions/{id}
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("deleting a consumption", slog.Int64("id", id))

		if err := store.DeleteConsumptionByID(r.Context(), id); err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func parseFilter(r *http.Request) (storage.ConsumptionFilter, error) {
	var (
		filter storage.ConsumptionFilter
		err    error
	)
	if filter.StudentID, err = request.QueryID(r, "student_id"); err != nil {
		return filter, err
	}
	if filter.ProductID, err = request.QueryID(r, "product_id"); err != nil {
		return filter, err
	}

	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		if filter.From, err = time.Parse(time.DateOnly, raw); err != nil {
			return filter, fmt.Errorf("invalid from: %q is not a YYYY-MM-DD date", raw)
		}
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid to: %q is not a YYYY-MM-DD date", raw)
		}
		// The storage filter is exclusive; include the whole "to" day.
		filter.To = to.AddDate(0, 0, 1)
	}

	return filter, nil
}

// asReference turns a missing product into an invalid reference: the
// client asked for a consumption, not for the product itself.
func asReference(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %v", storage.ErrInvalidReference, err)
	}
	return err
}
