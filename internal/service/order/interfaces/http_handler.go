// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"eplatform/internal/pkg/logger"
	"eplatform/internal/service/order/application"
	"eplatform/internal/service/order/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// HTTPHandler 订单服务的 HTTP 边界: 下单与查单。
type HTTPHandler struct {
	orders *application.OrderService
}

func NewHTTPHandler(orders *application.OrderService) *HTTPHandler {
	return &HTTPHandler{orders: orders}
}

// Register 把路由挂到服务的 mux 上。
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/orders", h.placeOrder)
	mux.HandleFunc("/api/v1/orders/get", h.getOrder)
}

func (h *HTTPHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	order, err := h.orders.PlaceOrder(ctx, &req)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("Place order failed.")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "place order failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"orderId": order.ID,
		"state":   string(order.State),
	})
}

func (h *HTTPHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	id := r.URL.Query().Get("orderId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "orderId is required")
		return
	}
	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown order: "+id)
			return
		}
		logger.Ctx(ctx).Error().Err(err).Str("order_id", id).Msg("Order lookup failed.")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"orderId":          order.ID,
		"items":            order.Items,
		"totalAmountCents": order.TotalAmountCents,
		"currency":         order.Currency,
		"state":            string(order.State),
		"failureReason":    order.FailureReason,
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
