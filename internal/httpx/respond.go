package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/paging"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/ariefcatur/go-storefront/pkg/logkey"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Status     string       `json:"status"`
	Message    string       `json:"message"`
	Data       any          `json:"data,omitempty"`
	Pagination *paging.Info `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, envelope{Status: "Success", Message: message, Data: data})
}

func okPage(w http.ResponseWriter, message string, data any, info paging.Info) {
	writeJSON(w, http.StatusOK, envelope{Status: "Success", Message: message, Data: data, Pagination: &info})
}

func fail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Status: "Error", Message: message})
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body!")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			fail(w, http.StatusBadRequest, fmt.Sprintf("%q failed on the %q rule", fe.Field(), fe.Tag()))
			return false
		}
		fail(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeError maps domain errors to status codes. Anything unrecognised is a 500 whose details
// only reach the log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *orders.InsufficientStockError
	var trErr *orders.TransitionError
	var txErr *orders.TransactionError

	switch {
	case errors.Is(err, orders.ErrEmptyCart):
		fail(w, http.StatusBadRequest, "Cart is empty!")
	case errors.As(err, &stockErr):
		fail(w, http.StatusBadRequest, fmt.Sprintf("Insufficient stock for product %q!", stockErr.ProductName))
	case errors.Is(err, orders.ErrOrderNotFound), errors.Is(err, orders.ErrNotOwner):
		fail(w, http.StatusNotFound, "Order not found!")
	case errors.As(err, &trErr):
		fail(w, http.StatusBadRequest, fmt.Sprintf("Cannot change order status from %q to %q!", trErr.From, trErr.To))
	case errors.Is(err, orders.ErrInvalidStatus):
		fail(w, http.StatusBadRequest, "Invalid status! Valid statuses: "+statusList())

	case errors.Is(err, catalog.ErrProductNotFound):
		fail(w, http.StatusNotFound, "Product not found!")
	case errors.Is(err, catalog.ErrSupplierNotFound):
		fail(w, http.StatusNotFound, "Supplier not found!")
	case errors.Is(err, catalog.ErrDuplicateName):
		fail(w, http.StatusConflict, "Supplier name already exists!")
	case errors.Is(err, catalog.ErrDuplicateEmail):
		fail(w, http.StatusConflict, "Supplier email already exists!")
	case errors.Is(err, catalog.ErrNotDeleted), errors.Is(err, users.ErrNotDeleted):
		fail(w, http.StatusBadRequest, "Data is not deleted!")

	case errors.Is(err, cart.ErrLineNotFound):
		fail(w, http.StatusNotFound, "Cart item not found!")
	case errors.Is(err, cart.ErrInvalidQty):
		fail(w, http.StatusBadRequest, "Quantity must be positive for a new cart item!")

	case errors.Is(err, users.ErrUserNotFound):
		fail(w, http.StatusNotFound, "User not found!")
	case errors.Is(err, users.ErrDuplicateUsername):
		fail(w, http.StatusConflict, "Username already exists!")
	case errors.Is(err, users.ErrDuplicateEmail):
		fail(w, http.StatusConflict, "Email already exists!")
	case errors.Is(err, auth.ErrPasswordTooShort):
		fail(w, http.StatusBadRequest, "Password must be at least 10 characters!")

	case errors.Is(err, paging.ErrBadCursor):
		fail(w, http.StatusBadRequest, "Invalid cursor!")

	case errors.As(err, &txErr):
		s.logError(r, "checkout transaction failed", err, slog.String("op", txErr.Op))
		fail(w, http.StatusInternalServerError, "Checkout failed, please try again!")
	default:
		s.logError(r, "request failed", err)
		fail(w, http.StatusInternalServerError, "Internal Server Error!")
	}
}

func (s *Server) logError(r *http.Request, msg string, err error, attrs ...any) {
	attrs = append(attrs,
		slog.String(logkey.TraceID, middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String(logkey.ERROR, err.Error()))
	s.log().Error(msg, attrs...)
}

func statusList() string {
	names := make([]string, len(orders.Statuses))
	for i, st := range orders.Statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}
