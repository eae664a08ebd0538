package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Cheertaboi/flash-coupon-service/internal/api/handlers"
	"github.com/Cheertaboi/flash-coupon-service/internal/api/middleware"
)

// NewRouter builds the HTTP router for the coupon-service
func NewRouter(couponHandler *handlers.CouponHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(logger))

	// Public coupon endpoints
	r.Route("/coupons", func(r chi.Router) {
		r.Get("/", couponHandler.ListCoupons)
		r.Post("/obtain", couponHandler.ObtainCoupon)
		r.Post("/use", couponHandler.UseCoupon)
		r.Post("/reconcile", couponHandler.Reconcile)
	})

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/coupons", couponHandler.UserCoupons)
		r.Get("/stats", couponHandler.Stats)
	})

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Post("/coupons", couponHandler.CreateCoupon)
		r.Get("/coupons/{couponID}/users", couponHandler.CouponHolders)
		r.Get("/stats", couponHandler.AdminStats)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
