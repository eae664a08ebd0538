package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
	"github.com/Cheertaboi/flash-coupon-service/internal/service"
)

// --- Request / Response DTOs ---

type ObtainRequest struct {
	UserID       string           `json:"user_id"`
	CouponID     string           `json:"coupon_id"`
	UserLocation *models.Location `json:"user_location"`
}

type UseRequest struct {
	UserID   string `json:"user_id"`
	CouponID string `json:"coupon_id"`
}

type ReconcileRequest struct {
	PreviousIDs []string `json:"previous_ids"`
	CurrentIDs  []string `json:"current_ids"`
}

type ReconcileResponse struct {
	RemovedIDs []string `json:"removed_ids"`
}

type ErrorResponse struct {
	Error          string  `json:"error"`
	Message        string  `json:"message,omitempty"`
	RequiredMeters float64 `json:"required_delta_meters,omitempty"`
}

// --- Handler struct & constructor ---

type CouponHandler struct {
	service *service.CouponService
	logger  *zap.Logger
}

func NewCouponHandler(svc *service.CouponService, logger *zap.Logger) *CouponHandler {
	return &CouponHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto status codes; anything unrecognised is a 500.
func (h *CouponHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound  *models.NotFoundError
		notActive *models.NotActiveError
		tooFar    *models.TooFarError
		obtained  *models.AlreadyObtainedError
		used      *models.AlreadyUsedError
		location  *models.InvalidLocationError
		invalid   *models.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.As(err, &notActive):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "not_active", Message: err.Error()})
	case errors.As(err, &tooFar):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "too_far", Message: err.Error(), RequiredMeters: tooFar.Required})
	case errors.As(err, &obtained):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "already_obtained", Message: err.Error()})
	case errors.As(err, &used):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "already_used", Message: err.Error()})
	case errors.As(err, &location):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_location", Message: err.Error()})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_input", Message: err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
}

func parseLocation(r *http.Request) (models.Location, bool) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		return models.Location{}, false
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		return models.Location{}, false
	}
	return models.Location{Lat: lat, Lng: lng}, true
}

// --- Handlers ---

// ListCoupons handles GET /coupons?lat=&lng=&radius=
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	loc, ok := parseLocation(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_query", Message: "lat and lng required"})
		return
	}
	var radius float64
	if raw := r.URL.Query().Get("radius"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_query", Message: "radius must be a non-negative number"})
			return
		}
		radius = f
	}

	views, err := h.service.ListCoupons(r.Context(), loc, radius)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// ObtainCoupon handles POST /coupons/obtain
func (h *CouponHandler) ObtainCoupon(w http.ResponseWriter, r *http.Request) {
	var req ObtainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_body"})
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.CouponID) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_body", Message: "user_id and coupon_id required"})
		return
	}
	if req.UserLocation == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_body", Message: "user_location required"})
		return
	}

	uc, err := h.service.ObtainCoupon(r.Context(), req.UserID, req.CouponID, *req.UserLocation)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, uc)
}

// UseCoupon handles POST /coupons/use
func (h *CouponHandler) UseCoupon(w http.ResponseWriter, r *http.Request) {
	var req UseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_body"})
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.CouponID) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_body", Message: "user_id and coupon_id required"})
		return
	}

	uc, err := h.service.UseCoupon(r.Context(), req.UserID, req.CouponID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uc)
}

// Reconcile handles POST /coupons/reconcile
func (h *CouponHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_body"})
		return
	}
	writeJSON(w, http.StatusOK, ReconcileResponse{RemovedIDs: h.service.ReconcileExpired(req.PreviousIDs, req.CurrentIDs)})
}

// UserCoupons handles GET /users/{userID}/coupons
func (h *CouponHandler) UserCoupons(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.UserCoupons(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Stats handles GET /users/{userID}/stats?lat=&lng=
func (h *CouponHandler) Stats(w http.ResponseWriter, r *http.Request) {
	loc, ok := parseLocation(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_query", Message: "lat and lng required"})
		return
	}
	stats, err := h.service.Stats(r.Context(), chi.URLParam(r, "userID"), loc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// CreateCoupon handles POST /admin/coupons
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCouponInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_body", Message: "times must be RFC3339"})
		return
	}

	c, err := h.service.CreateCoupon(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// CouponHolders handles GET /admin/coupons/{couponID}/users
func (h *CouponHandler) CouponHolders(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.CouponHolders(r.Context(), chi.URLParam(r, "couponID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AdminStats handles GET /admin/stats
func (h *CouponHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.AdminStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
