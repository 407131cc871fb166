package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type upsertCartReq struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	// Qty is a delta; negative values take items out of the cart.
	Qty int `json:"qty" validate:"ne=0,min=-1000000,max=1000000"`
}

func (s *Server) listCart(w http.ResponseWriter, r *http.Request) {
	lines, err := s.Cart.List(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Fetch cart success!", lines)
}

func (s *Server) upsertCart(w http.ResponseWriter, r *http.Request) {
	var req upsertCartReq
	if !s.decode(w, r, &req) {
		return
	}
	line, removed, err := s.Cart.Upsert(r.Context(), claimsFrom(r.Context()).UserID, req.ProductID, req.Qty)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if removed {
		ok(w, http.StatusOK, "Cart item removed!", nil)
		return
	}
	ok(w, http.StatusOK, "Cart updated!", line)
}

func (s *Server) deleteCartLine(w http.ResponseWriter, r *http.Request) {
	if err := s.Cart.Delete(r.Context(), claimsFrom(r.Context()).UserID, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Delete cart item success!", nil)
}
