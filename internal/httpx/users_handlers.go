package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/paging"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/go-chi/chi/v5"
)

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.Users.Get(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Fetch user success!", u)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var p users.Patch
	if !s.decode(w, r, &p) {
		return
	}
	u, err := s.Users.Update(r.Context(), claimsFrom(r.Context()).UserID, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Update user success!", u)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	items, info, err := s.Users.List(r.Context(), paging.FromQuery(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	okPage(w, "Fetch users success!", items, info)
}

func (s *Server) listAllUsers(w http.ResponseWriter, r *http.Request) {
	items, info, err := s.Users.ListAll(r.Context(), paging.FromQuery(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	okPage(w, "Fetch users success!", items, info)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.Users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Delete user success!", nil)
}

func (s *Server) restoreUser(w http.ResponseWriter, r *http.Request) {
	if err := s.Users.Restore(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "Restore user success!", nil)
}
