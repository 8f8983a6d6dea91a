package http

import (
	"cancellation-service/internal/models"
	"cancellation-service/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	cancellations service.CancellationService
	refunds       service.RefundService
	log           *zap.Logger
}

func NewHandler(cancellations service.CancellationService, refunds service.RefundService, log *zap.Logger) *Handler {
	return &Handler{cancellations: cancellations, refunds: refunds, log: log}
}

// CancelOrder godoc
// @Summary      Запросить отмену заказа
// @Tags         cancellations
// @Param        orderId path string true "Order ID"
// @Param        body body CancelOrderRequest true "Причина отмены"
// @Success      200 {object} CancelOrderResponse
// @Failure      400 {object} BaseError
// @Failure      401 {object} BaseError
// @Failure      403 {object} BaseError
// @Failure      404 {object} BaseError
// @Router       /orders/{orderId}/cancel [post]
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "orderId")
	if !ok {
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewError("validation_error", err.Error()))
		return
	}

	res, err := h.cancellations.CancelOrder(c.Request.Context(), orderID, service.CancelOrderInput{
		ReasonCategory: req.ReasonCategory,
		ReasonDetail:   req.ReasonDetail,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	out := CancelOrderResponse{Cancellation: toCancellationResponse(res.Cancellation)}
	if res.Refund != nil {
		rf := toRefundResponse(res.Refund)
		out.Refund = &rf
	}
	c.JSON(http.StatusOK, out)
}

// GetHistory godoc
// @Summary      История отмен и возвратов по заказу
// @Tags         cancellations
// @Param        orderId path string true "Order ID"
// @Success      200 {object} HistoryResponse
// @Router       /orders/{orderId}/cancel [get]
func (h *Handler) GetHistory(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "orderId")
	if !ok {
		return
	}

	hist, err := h.cancellations.GetHistory(c.Request.Context(), orderID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	out := HistoryResponse{
		Cancellations: make([]CancellationResponse, 0, len(hist.Cancellations)),
		Refunds:       make([]RefundResponse, 0, len(hist.Refunds)),
	}
	for i := range hist.Cancellations {
		out.Cancellations = append(out.Cancellations, toCancellationResponse(&hist.Cancellations[i]))
	}
	for i := range hist.Refunds {
		out.Refunds = append(out.Refunds, toRefundResponse(&hist.Refunds[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetRefund godoc
// @Summary      Детали возврата
// @Tags         refunds
// @Param        refundId path string true "Refund ID"
// @Success      200 {object} RefundResponse
// @Router       /refunds/{refundId} [get]
func (h *Handler) GetRefund(c *gin.Context) {
	refundID, ok := parseUUIDParam(c, "refundId")
	if !ok {
		return
	}

	rf, err := h.refunds.GetRefund(c.Request.Context(), refundID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundResponse(rf))
}

// RetryRefund godoc
// @Summary      Повторно провести возврат
// @Tags         refunds
// @Param        refundId path string true "Refund ID"
// @Success      200 {object} RetryRefundResponse
// @Failure      400 {object} BaseError
// @Router       /refunds/{refundId} [post]
func (h *Handler) RetryRefund(c *gin.Context) {
	refundID, ok := parseUUIDParam(c, "refundId")
	if !ok {
		return
	}

	res, err := h.refunds.RetryRefund(c.Request.Context(), refundID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, RetryRefundResponse{
		Refund:    toRefundResponse(res.Refund),
		Retryable: res.Refund.RefundStatus != models.RefundStatusCompleted && res.Retryable,
	})
}

// ApproveCancellation godoc
// @Summary      Одобрить отмену (vendor/admin)
// @Tags         cancellations
// @Param        cancellationId path string true "Cancellation ID"
// @Success      200 {object} CancelOrderResponse
// @Router       /cancellations/{cancellationId}/approve [post]
func (h *Handler) ApproveCancellation(c *gin.Context) {
	id, ok := parseUUIDParam(c, "cancellationId")
	if !ok {
		return
	}

	res, err := h.cancellations.Approve(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	out := CancelOrderResponse{Cancellation: toCancellationResponse(res.Cancellation)}
	if res.Refund != nil {
		rf := toRefundResponse(res.Refund)
		out.Refund = &rf
	}
	c.JSON(http.StatusOK, out)
}

// RejectCancellation godoc
// @Summary      Отклонить отмену (vendor/admin)
// @Tags         cancellations
// @Param        cancellationId path string true "Cancellation ID"
// @Success      200 {object} CancellationResponse
// @Router       /cancellations/{cancellationId}/reject [post]
func (h *Handler) RejectCancellation(c *gin.Context) {
	id, ok := parseUUIDParam(c, "cancellationId")
	if !ok {
		return
	}

	cn, err := h.cancellations.Reject(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCancellationResponse(cn))
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewError("validation_error", "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, NewError("unauthorized", err.Error()))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, NewError("forbidden", err.Error()))
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrCancellationNotFound),
		errors.Is(err, service.ErrRefundNotFound):
		c.JSON(http.StatusNotFound, NewError("not_found", err.Error()))
	case errors.Is(err, service.ErrAlreadyCancelled):
		c.JSON(http.StatusBadRequest, NewError("already_cancelled", err.Error()))
	case errors.Is(err, service.ErrPendingCancelExists):
		c.JSON(http.StatusBadRequest, NewError("pending_cancel_exists", err.Error()))
	case errors.Is(err, service.ErrInvalidReason):
		c.JSON(http.StatusBadRequest, NewError("invalid_reason", err.Error()))
	case errors.Is(err, service.ErrPolicyDisallows):
		c.JSON(http.StatusBadRequest, NewError("policy_disallows", err.Error()))
	case errors.Is(err, service.ErrNotPending):
		c.JSON(http.StatusBadRequest, NewError("not_pending", err.Error()))
	case errors.Is(err, service.ErrRefundAlreadyCompleted):
		c.JSON(http.StatusBadRequest, NewError("already_completed", err.Error()))
	case errors.Is(err, service.ErrRefundNotRetryable):
		c.JSON(http.StatusBadRequest, NewError("not_retryable", err.Error()))
	default:
		h.log.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewError("internal_error", "internal server error"))
	}
}
