package http

import (
	"errors"
	"net/http"

	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
	"github.com/gin-gonic/gin"
)

// PaymentHandler receives gateway callbacks. The request signature is already
// checked by middleware before the handler runs.
type PaymentHandler struct {
	Callback *usecase.PaymentCallback
}

type paymentCallbackRequest struct {
	OrderID      string `json:"orderId" binding:"required"`
	ResponseCode string `json:"responseCode" binding:"required"`
}

func (h *PaymentHandler) HandleCallback(c *gin.Context) {
	var req paymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	order, err := h.Callback.Execute(c.Request.Context(), req.OrderID, req.ResponseCode)
	if errors.Is(err, usecase.ErrPaymentDeclined) {
		// A declined payment is a valid outcome, not a transport error.
		c.JSON(http.StatusOK, GenericResponse{Success: false, Message: "payment declined"})
		return
	}
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "Payment recorded", order)
}
