package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/user"
)

// createBasicUserHandler godoc
// @Summary      Create a user from email and nickname
// @Description  Returns the existing user unchanged when the email is already registered.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      user.CreateBasicRequest  true  "email and nickname"
// @Success      201   {object}  user.Response
// @Success      200   {object}  user.Response
// @Failure      400   {object}  apperr.Envelope
// @Failure      500   {object}  apperr.Envelope
// @Router       /api/users/create-basic [post]
func createBasicUserHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.CreateBasicRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Handle(c, bindError(err, "Email and nickname are required"))
			return
		}
		u, created, err := svc.CreateBasic(c.Request.Context(), req.Email, req.Nickname)
		if err != nil {
			apperr.Handle(c, err)
			return
		}
		if created {
			c.JSON(http.StatusCreated, user.Response{Success: true, Message: "User created successfully", User: u})
			return
		}
		c.JSON(http.StatusOK, user.Response{Success: true, Message: "User already exists", User: u})
	}
}

// registerUserHandler godoc
// @Summary      Register or update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      user.RegisterRequest  true  "name, email and phone"
// @Success      201   {object}  user.Response
// @Success      200   {object}  user.Response
// @Failure      400   {object}  apperr.Envelope
// @Router       /api/users/register [post]
func registerUserHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Handle(c, bindError(err, "Name, email and phone are required"))
			return
		}
		u, created, err := svc.Register(c.Request.Context(), req.Name, req.Email, req.Phone)
		if err != nil {
			apperr.Handle(c, err)
			return
		}
		if created {
			c.JSON(http.StatusCreated, user.Response{Success: true, Message: "User registered successfully", User: u})
			return
		}
		c.JSON(http.StatusOK, user.Response{Success: true, Message: "User updated successfully", User: u})
	}
}

// getUserHandler godoc
// @Summary      Get a user by email
// @Tags         users
// @Produce      json
// @Param        email  path      string  true  "email, case-insensitive"
// @Success      200    {object}  user.Response
// @Failure      404    {object}  apperr.Envelope
// @Router       /api/users/{email} [get]
func getUserHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.GetByEmail(c.Request.Context(), c.Param("email"))
		if err != nil {
			apperr.Handle(c, err)
			return
		}
		c.JSON(http.StatusOK, user.Response{Success: true, User: u})
	}
}

// patchUserHandler godoc
// @Summary      Update profile fields of a user
// @Description  Only name, nickname, phone, addresses and preferences are applied; email is never changed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        email  path      string            true  "email"
// @Param        body   body      user.PatchRequest  true  "fields to overwrite"
// @Success      200    {object}  user.Response
// @Failure      400    {object}  apperr.Envelope
// @Failure      404    {object}  apperr.Envelope
// @Router       /api/users/{email} [patch]
func patchUserHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.PatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Handle(c, bindError(err, "Invalid JSON body"))
			return
		}
		u, err := svc.Patch(c.Request.Context(), c.Param("email"), req)
		if err != nil {
			apperr.Handle(c, err)
			return
		}
		c.JSON(http.StatusOK, user.Response{Success: true, Message: "User updated successfully", User: u})
	}
}

// listUsersHandler godoc
// @Summary      List users, newest first
// @Tags         users
// @Produce      json
// @Success      200  {array}   user.User
// @Failure      500  {object}  apperr.Envelope
// @Router       /api/users [get]
func listUsersHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.List(c.Request.Context())
		if err != nil {
			apperr.Handle(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
