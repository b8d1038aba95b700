package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resto-pos/models"
	"resto-pos/realtime"
	"resto-pos/repositories"
)

type OrderController struct {
	repo *repositories.OrderRepository
	hub  *EventHub
}

func NewOrderController(repo *repositories.OrderRepository, hub *EventHub) *OrderController {
	return &OrderController{repo: repo, hub: hub}
}

// GetAllOrders lists orders, optionally filtered by status.
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	var status *models.Status
	if raw := c.Query("status"); raw != "" {
		st := models.Status(raw)
		if !st.Valid() {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Unknown status filter"})
			return
		}
		status = &st
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Orders retrieved successfully",
		Data:    ctrl.repo.List(status),
	})
}

// GetOrderByCode resolves a scanned transaction code.
func (ctrl *OrderController) GetOrderByCode(c *gin.Context) {
	code := c.Param("code")

	order, ok := ctrl.repo.GetByCode(code)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Order not found"})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order retrieved successfully",
		Data:    order,
	})
}

// UpdateOrderStatus is the authoritative write. Transition legality is
// enforced here regardless of what the client validated. A requested status
// equal to the current one is a no-op rather than an error, so a racing
// actor whose cache was one step behind can still land a legal payment flag
// carried in the same request.
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid order ID"})
		return
	}

	var req models.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request"})
		return
	}
	if req.Status == nil && req.PaymentStatus == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Nothing to update"})
		return
	}

	order, ok := ctrl.repo.GetByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Order not found"})
		return
	}

	if req.Status != nil && *req.Status != order.Status {
		if !req.Status.Valid() {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Unknown status"})
			return
		}
		if err := models.CanTransition(order.Status, *req.Status); err != nil {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Message: "Illegal status transition",
				Error:   err.Error(),
			})
			return
		}
		order.Status = *req.Status
	}

	if req.PaymentStatus != nil && models.PaymentChanges(order.PaymentStatus, *req.PaymentStatus) {
		order.PaymentStatus = models.PaymentPaid
	}

	ctrl.repo.Replace(order)
	ctrl.hub.Publish(realtime.EventOrderStatusUpdated)

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order status updated successfully",
		Data:    order,
	})
}

// CreateOrder injects a new order, standing in for a customer placing one.
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Order needs at least one item"})
		return
	}
	for _, line := range req.Items {
		if line.Quantity < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Line quantity must be positive"})
			return
		}
	}

	order := ctrl.repo.Insert(models.Order{
		CustomerName:    req.CustomerName,
		Type:            req.Type,
		Note:            req.Note,
		DeliveryAddress: req.DeliveryAddress,
		Table:           req.Table,
		Items:           req.Items,
	})
	ctrl.hub.Publish(realtime.EventNewOrder)

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Order created successfully",
		Data:    order,
	})
}
