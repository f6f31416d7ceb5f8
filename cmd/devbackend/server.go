package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"slotbook/models"
	"slotbook/services/apierr"
	"slotbook/services/backend"
	"slotbook/services/backend/fakebackend"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// server exposes a fakebackend.Fake over the booking API routes.
type server struct {
	fake *fakebackend.Fake
}

func newRouter(fake *fakebackend.Fake) *gin.Engine {
	// Binding rules such as tzoffset live on the shared validator.
	utils.GetValidator()
	s := &server{fake: fake}
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/signup", s.signup)
		auth.POST("/login", s.login)
		auth.POST("/logout", s.logout)
		auth.GET("/me", s.me)

		appts := api.Group("/appointments")
		appts.GET("/available", s.availableSlots)
		appts.GET("", s.appointments)
		appts.POST("", s.createAppointment)
		appts.PATCH("/:id", s.editAppointment)
		appts.DELETE("/:id", s.deleteAppointment)
	}
	return r
}

// callerContext hands the request cookies to the fake the same way the
// client sends them.
func callerContext(c *gin.Context) context.Context {
	return backend.WithCookies(c.Request.Context(), c.Request.Cookies())
}

func fail(c *gin.Context, err error) {
	var tf *apierr.TransportFailure
	if errors.As(err, &tf) {
		c.JSON(tf.Status, gin.H{"error": tf.ServerError, "message": tf.ServerMessage})
		return
	}
	utils.GetLogger().Error("devbackend: unexpected failure", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
}

func (s *server) signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.fake.Signup(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	writeAuth(c, http.StatusCreated, res)
}

func (s *server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.fake.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	writeAuth(c, http.StatusOK, res)
}

func writeAuth(c *gin.Context, status int, res *backend.AuthResult) {
	for _, ck := range res.Cookies {
		ck.Path = "/"
		ck.HttpOnly = true
		http.SetCookie(c.Writer, ck)
	}
	c.JSON(status, res.User)
}

func (s *server) logout(c *gin.Context) {
	if err := s.fake.Logout(callerContext(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *server) me(c *gin.Context) {
	user, err := s.fake.Me(callerContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *server) availableSlots(c *gin.Context) {
	offset, err := strconv.Atoi(c.DefaultQuery("weekOffset", "0"))
	if err != nil {
		badRequest(c, err)
		return
	}
	days, err := s.fake.AvailableSlots(c.Request.Context(), c.Query("sharableId"), offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

func (s *server) appointments(c *gin.Context) {
	var q struct {
		SharableID string `form:"sharableId"`
		Type       string `form:"type"`
		Page       int    `form:"page"`
		Limit      int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.fake.Appointments(callerContext(c), models.AppointmentQuery{
		SharableID: q.SharableID,
		Type:       models.AppointmentType(q.Type),
		Page:       q.Page,
		Limit:      q.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) createAppointment(c *gin.Context) {
	var req models.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	appt, err := s.fake.CreateAppointment(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

func (s *server) editAppointment(c *gin.Context) {
	var req models.EditAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.fake.EditAppointment(callerContext(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) deleteAppointment(c *gin.Context) {
	res, err := s.fake.DeleteAppointment(callerContext(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
