package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
)

// Server holds the storefront's dependencies and serves its REST API under /api/v1.
type Server struct {
	Users    UserStore
	Catalog  CatalogStore
	Cart     CartStore
	Orders   OrderStore
	Checkout Checkouter
	Sales    SalesCounter

	JWT     *auth.JWTService
	Limiter LoginLimiter
	// Cache holds order views; nil disables caching.
	Cache redis.Cmdable
	// Events receives order events after commit; nil disables publishing.
	Events EventPublisher

	Service      string
	CookieSecure bool
	CORSOrigins  []string
	Logger       *slog.Logger

	validate *validator.Validate
}

func (s *Server) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func NewRouter(origins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "Route Not Found!")
	})
	return r
}

func (s *Server) Routes() http.Handler {
	s.validate = newValidator()
	r := NewRouter(s.CORSOrigins)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.nonAuth).Post("/register", s.register)
		r.With(s.nonAuth, s.limitLogin).Post("/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/logout", s.logout)
			r.Get("/verify", s.verify)
			r.Get("/user/me", s.getMe)
			r.Put("/user/me", s.updateMe)

			r.Get("/product", s.listProducts)
			r.Get("/product/{id}", s.getProduct)
			r.Get("/product/{id}/sales", s.productSales)
			r.Get("/supplier", s.listSuppliers)
			r.Get("/supplier/{id}", s.getSupplier)
			r.Get("/order/{id}", s.getOrder)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(auth.RoleAdmin))

				r.Get("/user", s.listUsers)
				r.Get("/userAll", s.listAllUsers)
				r.Delete("/user/{id}", s.deleteUser)
				r.Patch("/user/{id}/restore", s.restoreUser)

				r.Get("/productAll", s.listAllProducts)
				r.Post("/product", s.createProduct)
				r.Put("/product/{id}", s.updateProduct)
				r.Delete("/product/{id}", s.deleteProduct)
				r.Patch("/product/{id}/restore", s.restoreProduct)

				r.Get("/supplierAll", s.listAllSuppliers)
				r.Post("/supplier", s.createSupplier)
				r.Put("/supplier/{id}", s.updateSupplier)
				r.Delete("/supplier/{id}", s.deleteSupplier)
				r.Patch("/supplier/{id}/restore", s.restoreSupplier)

				r.Get("/order", s.listOrders)
				r.Patch("/order/{id}/status", s.updateOrderStatus)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireRole(auth.RoleCustomer))

				r.Get("/cart/me", s.listCart)
				r.Post("/cart", s.upsertCart)
				r.Delete("/cart/{id}", s.deleteCartLine)

				r.Post("/order", s.checkout)
				r.Get("/order/me", s.listMyOrders)
				r.Delete("/order/{id}/status", s.cancelOrder)
			})
		})
	})
	return r
}
