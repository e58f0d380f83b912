package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/product"
)

// createProductHandler godoc
// @Summary      Create a product
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        name         formData  string  true   "name"
// @Param        description  formData  string  true   "description"
// @Param        price        formData  number  true   "price"
// @Param        category     formData  string  true   "category"
// @Param        image        formData  file    false  "image/*, at most 5MB"
// @Success      201  {object}  product.Response
// @Failure      400  {object}  apperr.Envelope
// @Failure      500  {object}  apperr.Envelope
// @Router       /api/products [post]
func createProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in product.CreateInput
		if err := c.ShouldBind(&in); err != nil {
			apperr.Handle(c, apperr.Wrap(apperr.InvalidInput, "Invalid form data", err))
			return
		}
		p, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			apperr.Handle(c, err)
			return
		}
		c.JSON(http.StatusCreated, product.Response{Success: true, Message: "Product created successfully", Product: p})
	}
}

// listProductsHandler godoc
// @Summary      List products, newest first
// @Tags         products
// @Produce      json
// @Success      200  {array}   product.Product
// @Failure      500  {object}  apperr.Envelope
// @Router       /api/products [get]
func listProductsHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context())
		if err != nil {
			apperr.Handle(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// deleteProductHandler godoc
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "product id"
// @Success      200  {object}  MessageResponse
// @Failure      404  {object}  apperr.Envelope
// @Router       /api/products/{id} [delete]
func deleteProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			apperr.Handle(c, err)
			return
		}
		c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Product deleted successfully"})
	}
}
