package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/paging"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	items, info, err := s.Catalog.ListProducts(r.Context(), paging.FromQuery(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	okPage(w, "Fetch products success!", items, info)
}

func (s *Server) listAllProducts(w http.ResponseWriter, r *http.Request) {
	items, info, err := s.Catalog.ListAllProducts(r.Context(), paging.FromQuery(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	okPage(w, "Fetch products success!", items, info)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Fetch single product success!", p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if !s.decode(w, r, &in) {
		return
	}
	p, err := s.Catalog.CreateProduct(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "Create product success!", p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var patch catalog.ProductPatch
	if !s.decode(w, r, &patch) {
		return
	}
	p, err := s.Catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Update product success!", p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Delete product success!", nil)
}

func (s *Server) restoreProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.RestoreProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Restore product success!", nil)
}

// productSales reports units sold as counted by the sales projector; it lags checkouts slightly.
func (s *Server) productSales(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Catalog.GetProduct(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	sold, err := s.Sales.Sold(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Fetch product sales success!", map[string]any{"productId": id, "sold": sold})
}

func (s *Server) listSuppliers(w http.ResponseWriter, r *http.Request) {
	items, info, err := s.Catalog.ListSuppliers(r.Context(), paging.FromQuery(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	okPage(w, "Fetch suppliers success!", items, info)
}

func (s *Server) listAllSuppliers(w http.ResponseWriter, r *http.Request) {
	items, info, err := s.Catalog.ListAllSuppliers(r.Context(), paging.FromQuery(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	okPage(w, "Fetch suppliers success!", items, info)
}

func (s *Server) getSupplier(w http.ResponseWriter, r *http.Request) {
	sp, err := s.Catalog.GetSupplier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Fetch single supplier success!", sp)
}

func (s *Server) createSupplier(w http.ResponseWriter, r *http.Request) {
	var in catalog.SupplierInput
	if !s.decode(w, r, &in) {
		return
	}
	sp, err := s.Catalog.CreateSupplier(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "Create supplier success!", sp)
}

func (s *Server) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var patch catalog.SupplierPatch
	if !s.decode(w, r, &patch) {
		return
	}
	sp, err := s.Catalog.UpdateSupplier(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Update supplier success!", sp)
}

func (s *Server) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.DeleteSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Delete supplier success!", nil)
}

func (s *Server) restoreSupplier(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.RestoreSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Restore supplier success!", nil)
}
