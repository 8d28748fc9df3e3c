// Package product contains the HTTP handlers of the Product resource.
package product

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/cantina-api/internal/storage"
	"github.com/aanand-mishra/cantina-api/internal/types"
	"github.com/aanand-mishra/cantina-api/internal/utils/request"
	"github.com/aanand-mishra/cantina-api/internal/utils/response"
)

// Request is the body accepted by POST and PUT.
// Active is a pointer so an absent flag can default to true.
type Request struct {
	Name   string   `json:"name" validate:"required,max=100"`
	Price  *float64 `json:"price" validate:"required,gte=0,lte=1000000"`
	Active *bool    `json:"active"`
}

func (req Request) product() types.Product {
	p := types.NewProduct(req.Name, *req.Price)
	if req.Active != nil {
		p.Active = *req.Active
	}
	return p
}

// New handles POST /api/products
//
//	{ "name": "Juice", "price": 3.50 }            → active: true
//	{ "name": "Snack", "price": 2.00, "active": false }
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a product")

		var req Request
		if !request.Bind(w, r, &req) {
			return
		}

		lastID, err := store.CreateProduct(r.Context(), req.product())
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		slog.Info("product created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": lastID})
	}
}

// GetByID handles GET /api/products/{id}
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r, "id")
		if !ok {
			return
		}

		product, err := store.GetProductByID(r.Context(), id)
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, product)
	}
}

// GetList handles GET /api/products?name=juice&active=true
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := storage.ProductFilter{Name: q.Get("name")}

		if raw := q.Get("active"); raw != "" {
			active, err := strconv.ParseBool(raw)
			if err != nil {
				response.WriteJSON(w, http.StatusBadRequest,
					response.GeneralError(fmt.Errorf("invalid active: %q is not a boolean", raw)))
				return
			}
			filter.Active = &active
		}

		products, err := store.GetProducts(r.Context(), filter)
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, products)
	}
}

// Update handles PUT /api/products/{id}
// Changing the price does not touch existing consumption records.
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("updating a product", slog.Int64("id", id))

		var req Request
		if !request.Bind(w, r, &req) {
			return
		}

		updated, err := store.UpdateProductByID(r.Context(), id, req.product())
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/products/{id}
// A product that has been consumed answers 409 Conflict; deactivate it
// with PUT and "active": false instead.
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("deleting a product", slog.Int64("id", id))

		if err := store.DeleteProductByID(r.Context(), id); err != nil {
			response.StorageError(w, r, err)
			return
		}

		slog.Info("product deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
