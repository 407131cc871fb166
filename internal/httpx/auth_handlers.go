package httpx

import (
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/users"
)

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=10,max=255"`
	Address  string `json:"address" validate:"max=255"`
	Profile  string `json:"profile" validate:"max=255"`
}

type loginReq struct {
	EmailOrUsername string `json:"emailOrUsername" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !s.decode(w, r, &req) {
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.Users.Create(r.Context(), users.NewUser{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		Address:      req.Address,
		Profile:      req.Profile,
		Role:         auth.RoleCustomer,
		PasswordHash: hash,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "Register success!", u)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.Users.FindByLogin(r.Context(), req.EmailOrUsername)
	if errors.Is(err, users.ErrUserNotFound) || (err == nil && !auth.CheckPassword(req.Password, u.PasswordHash)) {
		fail(w, http.StatusUnauthorized, "Invalid email/username or password!")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, expiresAt, err := s.JWT.Generate(u.ID, u.Username, u.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.SetCookie(w, s.sessionCookie(token, expiresAt))
	ok(w, http.StatusOK, "Login success!", nil)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	c := s.sessionCookie("", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
	ok(w, http.StatusOK, "Logout successful!", nil)
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	ok(w, http.StatusOK, "Fetch user success!", map[string]string{
		"id":       c.UserID,
		"username": c.Username,
		"role":     c.Role,
	})
}

func (s *Server) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     tokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}
