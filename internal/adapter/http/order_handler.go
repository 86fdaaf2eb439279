package http

import (
	"net/http"
	"strconv"

	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
	"github.com/gin-gonic/gin"
)

// OrderHandler exposes the order lifecycle over HTTP. Authorization happens in
// middleware; handlers only bind input, call the use case and map errors.
type OrderHandler struct {
	Place  *usecase.PlaceOrder
	Status *usecase.OrderStatus
	Query  *usecase.OrderQuery
}

type createOrderRequest struct {
	CartItemIDs   []string `json:"cartItemIds" binding:"required"`
	FullName      string   `json:"fullName" binding:"required"`
	Phone         string   `json:"phone" binding:"required"`
	Address       string   `json:"address" binding:"required"`
	PaymentMethod string   `json:"paymentMethod" binding:"required"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, authed := callerID(c)
	if !authed {
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	order, err := h.Place.Execute(c.Request.Context(), usecase.PlaceOrderInput{
		UserID:         userID,
		CartItemIDs:    req.CartItemIDs,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Address:        req.Address,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "Order placed", order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, authed := callerID(c)
	if !authed {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	all := c.Query("all") == "true"

	result, err := h.Query.List(c.Request.Context(), userID, page, size, all)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "Orders fetched", result)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	userID, authed := callerID(c)
	if !authed {
		return
	}

	view, err := h.Query.GetOrder(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "Order fetched", view)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, authed := callerID(c)
	if !authed {
		return
	}

	order, err := h.Status.CustomerCancel(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "Order cancelled", order)
}

func (h *OrderHandler) ConfirmReceived(c *gin.Context) {
	userID, authed := callerID(c)
	if !authed {
		return
	}

	order, err := h.Status.ConfirmReceipt(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "Order confirmed", order)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, authed := callerID(c)
	if !authed {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	order, err := h.Status.StaffUpdate(c.Request.Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "Order status updated", order)
}

func (h *OrderHandler) TopCustomers(c *gin.Context) {
	userID, authed := callerID(c)
	if !authed {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.Query.TopCustomers(c.Request.Context(), userID, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, "Top customers fetched", rows)
}
