// internal/service/inventory/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"eplatform/internal/pkg/logger"
	"eplatform/internal/service/inventory/application"
	"eplatform/internal/service/inventory/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// HTTPHandler 暴露库存服务的同步边界:
// 下单服务 checkout 路径用的 reserve，以及补货与台账查询。
type HTTPHandler struct {
	stocks *application.StockService
}

func NewHTTPHandler(stocks *application.StockService) *HTTPHandler {
	return &HTTPHandler{stocks: stocks}
}

// Register 把路由挂到服务的 mux 上。
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/inventory/reserve", h.reserve)
	mux.HandleFunc("/api/v1/inventory/restock", h.restock)
	mux.HandleFunc("/api/v1/inventory/stock", h.getStock)
}

type reserveRequest struct {
	Items []domain.ReservationItem `json:"items"`
}

type restockRequest struct {
	Sku      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

func (h *HTTPHandler) reserve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.stocks.Reserve(ctx, req.Items)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyItems) || errors.Is(err, domain.ErrInvalidItem) {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		logger.Ctx(ctx).Error().Err(err).Msg("Synchronous reserve failed.")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "reservation failed")
		return
	}

	// 库存不足是拒绝响应，不是错误: 调用方按 success 分支处理。
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

func (h *HTTPHandler) restock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := h.stocks.Restock(ctx, req.Sku, req.Quantity); err != nil {
		if errors.Is(err, domain.ErrInvalidItem) {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		logger.Ctx(ctx).Error().Err(err).Str("sku", req.Sku).Msg("Restock failed.")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "restock failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) getStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	sku := r.URL.Query().Get("sku")
	if sku == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "sku is required")
		return
	}
	stock, err := h.stocks.GetStock(ctx, sku)
	if err != nil {
		if errors.Is(err, domain.ErrStockNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown sku: "+sku)
			return
		}
		logger.Ctx(ctx).Error().Err(err).Str("sku", sku).Msg("Stock lookup failed.")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sku":       stock.Sku,
		"available": stock.Available,
		"reserved":  stock.Reserved,
		"version":   strconv.FormatInt(stock.Version, 10),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
