package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"

	"github.com/mystore/product-catalog/internal/auth"
	"github.com/mystore/product-catalog/internal/employee"
	"github.com/mystore/product-catalog/internal/product"
	"github.com/mystore/product-catalog/internal/transport/middleware"
	"github.com/mystore/product-catalog/internal/transport/swagger"
	"github.com/mystore/product-catalog/internal/user"
)

// RouterDeps carries everything the route table needs.
type RouterDeps struct {
	DB              *sql.DB
	Redis           *redis.Client
	AuthHandler     *auth.Handler
	Gate            *auth.Gate
	ProductHandler  *product.Handler
	EmployeeHandler *employee.Handler
	UserHandler     *user.Handler
	RateLimiter     *middleware.RateLimiter
	AllowedOrigins  []string
	Logger          *slog.Logger
}

// RegisterAllRoutes wires the full HTTP surface under /api.
func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB, deps.Redis)

	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(ar chi.Router) {
			ar.Group(func(lr chi.Router) {
				if deps.RateLimiter != nil {
					lr.Use(deps.RateLimiter.Limit("auth"))
				}
				lr.Post("/register", deps.AuthHandler.Register)
				lr.Post("/login", deps.AuthHandler.Login)
				lr.Post("/resend-otp", deps.AuthHandler.ResendOTP)
				lr.Post("/forgotpassword", deps.AuthHandler.ForgotPassword)
			})

			ar.Post("/verify-email", deps.AuthHandler.VerifyEmail)
			ar.Post("/refresh", deps.AuthHandler.RefreshToken)
			ar.Put("/resetpassword/{token}", deps.AuthHandler.ResetPassword)

			ar.Group(func(pr chi.Router) {
				pr.Use(deps.AuthHandler.AuthMiddleware)
				pr.Get("/logout", deps.AuthHandler.Logout)
				pr.Get("/me", deps.AuthHandler.Me)
				pr.Put("/updatepassword", deps.AuthHandler.UpdatePassword)
			})
		})

		r.Route("/products", func(prr chi.Router) {
			// Storefront reads are public.
			prr.Get("/", deps.ProductHandler.List)

			prr.Group(func(mr chi.Router) {
				mr.Use(deps.AuthHandler.AuthMiddleware)

				mr.With(deps.Gate.RequirePermission(auth.PermViewDeletedProducts)).
					Get("/deleted", deps.ProductHandler.ListDeleted)
				mr.With(deps.Gate.RequirePermission(auth.PermCreateProduct)).
					Post("/", deps.ProductHandler.Create)
				mr.With(deps.Gate.RequirePermission(auth.PermUpdateProduct)).
					Put("/{id}", deps.ProductHandler.Update)
				mr.With(deps.Gate.RequirePermission(auth.PermDeleteProduct)).
					Delete("/{id}", deps.ProductHandler.Delete)
				mr.With(deps.Gate.RequirePermission(auth.PermRestoreProduct)).
					Put("/{id}/restore", deps.ProductHandler.Restore)
			})

			prr.Get("/{id}", deps.ProductHandler.Get)
		})

		r.Route("/employees", func(er chi.Router) {
			er.Use(deps.AuthHandler.AuthMiddleware)
			er.Use(deps.Gate.RequireRole(auth.RoleAdmin))

			er.Post("/", deps.EmployeeHandler.Create)
			er.Get("/", deps.EmployeeHandler.List)
			er.Get("/{id}", deps.EmployeeHandler.Get)
			er.Put("/{id}", deps.EmployeeHandler.Update)
			er.Patch("/{id}/toggle-status", deps.EmployeeHandler.ToggleStatus)
			er.Post("/{id}/reset-password", deps.EmployeeHandler.ResetPassword)
			er.Delete("/{id}", deps.EmployeeHandler.Delete)
		})

		r.Route("/users", func(ur chi.Router) {
			ur.Use(deps.AuthHandler.AuthMiddleware)

			ur.Get("/profile", deps.UserHandler.GetProfile)
			ur.Put("/profile", deps.UserHandler.UpdateProfile)
			ur.Put("/update-password", deps.AuthHandler.UpdatePassword)
		})
	})
}
