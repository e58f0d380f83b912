package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/order"
)

// createOrderHandler godoc
// @Summary      Place an order
// @Description  subtotal defaults to total and deliveryFee to 0; fulfilled always starts false.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      order.CreateOrderRequest  true  "order"
// @Success      201   {object}  order.CreateResponse
// @Failure      400   {object}  apperr.Envelope
// @Failure      500   {object}  apperr.Envelope
// @Router       /api/orders [post]
func createOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Handle(c, apperr.Wrap(apperr.InvalidInput, "Invalid order data", err))
			return
		}
		o, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			apperr.Handle(c, err)
			return
		}
		c.JSON(http.StatusCreated, order.CreateResponse{
			Success: true,
			Message: "Order created successfully",
			OrderID: o.ID.Hex(),
			Order:   o,
		})
	}
}

// listOrdersHandler godoc
// @Summary      List orders, newest first
// @Tags         orders
// @Produce      json
// @Param        email  query     string  false  "only orders of this customer"
// @Success      200    {array}   order.Order
// @Failure      500    {object}  apperr.Envelope
// @Router       /api/orders [get]
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.List(c.Request.Context(), c.Query("email"))
		if err != nil {
			apperr.Handle(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// getOrderHandler godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "order id"
// @Success      200  {object}  order.Response
// @Failure      400  {object}  apperr.Envelope
// @Failure      404  {object}  apperr.Envelope
// @Router       /api/orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			apperr.Handle(c, err)
			return
		}
		c.JSON(http.StatusOK, order.Response{Success: true, Order: o})
	}
}

// updateOrderStatusHandler godoc
// @Summary      Mark an order fulfilled or not
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "order id"
// @Param        body  body      order.UpdateStatusRequest  true  "fulfilled flag"
// @Success      200   {object}  order.Response
// @Failure      400   {object}  apperr.Envelope
// @Failure      404   {object}  apperr.Envelope
// @Router       /api/orders/{id} [patch]
func updateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Handle(c, bindError(err, "Fulfilled status is required"))
			return
		}
		o, err := svc.SetFulfilled(c.Request.Context(), c.Param("id"), req.Fulfilled)
		if err != nil {
			apperr.Handle(c, err)
			return
		}
		c.JSON(http.StatusOK, order.Response{Success: true, Message: "Order status updated successfully", Order: o})
	}
}
