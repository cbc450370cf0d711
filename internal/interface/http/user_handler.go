package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/internal/application"
	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	"github.com/oksasatya/go-slot-booking/pkg/response"
)

type UserHandler struct {
	Svc    *application.ProfileService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.ProfileService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: loggerOrStd(logger)}
}

type availabilityQuery struct {
	Date string `form:"date" binding:"required,ymd"`
}

type availabilityResponse struct {
	Username string            `json:"username"`
	Date     string            `json:"date"`
	Busy     []entity.BusySlot `json:"busy"`
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	p, err := h.Svc.Profile(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile retrieved", nil)
}

func (h *UserHandler) GetAvailability(c *gin.Context) {
	var q availabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	busy, err := h.Svc.Availability(c.Request.Context(), c.Param("username"), q.Date)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, availabilityResponse{
		Username: c.Param("username"),
		Date:     q.Date,
		Busy:     busy,
	}, "availability retrieved", map[string]any{"count": len(busy)})
}
