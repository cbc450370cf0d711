package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/internal/application"
	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	"github.com/oksasatya/go-slot-booking/pkg/response"
)

type BookingHandler struct {
	Svc    *application.BookingService
	Logger *logrus.Logger
}

func NewBookingHandler(svc *application.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: loggerOrStd(logger)}
}

type bookSlotRequest struct {
	Username    string `json:"username" binding:"required,username"`
	DisplayName string `json:"displayName" binding:"max=120"`
	Email       string `json:"email" binding:"required,email"`
}

type bookSlotResponse struct {
	Confirmed bool            `json:"confirmed"`
	Slot      entity.SlotView `json:"slot"`
	Meeting   entity.Meeting  `json:"meeting"`
}

// Book answers as soon as the claim is stored; notifications continue in
// the background.
func (h *BookingHandler) Book(c *gin.Context) {
	var req bookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.Svc.Book(c.Request.Context(), application.BookInput{
		SlotID:      c.Param("slotId"),
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	claimant := res.Claimant
	response.Success(c, http.StatusCreated, bookSlotResponse{
		Confirmed: true,
		Slot:      entity.SlotView{TimeSlot: res.Slot, BookedBy: &claimant},
		Meeting:   res.Meeting,
	}, "slot booked", nil)
}
