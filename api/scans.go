package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/couponTracker/coupon-ocr-service/internal/auth"
	"github.com/couponTracker/coupon-ocr-service/internal/cache"
	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

// RecentScans returns the caller's latest scan results, newest first
func (h *Handler) RecentScans(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, ok := auth.GetClaimsFromContext(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	scans, err := cache.Recent(r.Context(), claims.ClientID, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("clientId", claims.ClientID).Msg("failed to load recent scans")
		h.sendError(w, http.StatusInternalServerError, "failed to load recent scans")
		return
	}
	if scans == nil {
		scans = []models.ScanResult{}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"scans": scans,
		"count": len(scans),
	})
}
