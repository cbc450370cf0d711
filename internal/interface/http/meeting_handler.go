package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/internal/application"
	"github.com/oksasatya/go-slot-booking/pkg/response"
)

type MeetingHandler struct {
	Svc    *application.MeetingService
	Logger *logrus.Logger
}

func NewMeetingHandler(svc *application.MeetingService, logger *logrus.Logger) *MeetingHandler {
	return &MeetingHandler{Svc: svc, Logger: loggerOrStd(logger)}
}

type createMeetingRequest struct {
	Title              string   `json:"title" binding:"required,max=200"`
	Description        string   `json:"description" binding:"max=2000"`
	Date               string   `json:"date" binding:"required,ymd"`
	Slots              []string `json:"slots" binding:"required,min=1,max=96,dive,required"`
	CreatorUsername    string   `json:"creatorUsername" binding:"required,username"`
	CreatorDisplayName string   `json:"creatorDisplayName" binding:"max=120"`
	CreatorEmail       string   `json:"creatorEmail" binding:"omitempty,email"`
	MeetingID          string   `json:"meetingId" binding:"omitempty,max=64"`
	// Minutes to add to the local wall clock to get UTC; omit for legacy mode.
	UTCOffsetMinutes *int `json:"utcOffsetMinutes" binding:"omitempty,gte=-840,lte=840"`
}

type createMeetingResponse struct {
	MeetingID string `json:"meetingId"`
}

func (h *MeetingHandler) Create(c *gin.Context) {
	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	d, err := h.Svc.Create(c.Request.Context(), application.CreateMeetingInput{
		ID:          req.MeetingID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		SlotTexts:   req.Slots,
		Creator: application.Identity{
			Username:    req.CreatorUsername,
			DisplayName: req.CreatorDisplayName,
			Email:       req.CreatorEmail,
		},
		UTCOffsetMinutes: req.UTCOffsetMinutes,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, createMeetingResponse{MeetingID: d.ID}, "meeting created", nil)
}

func (h *MeetingHandler) Get(c *gin.Context) {
	d, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, d, "meeting retrieved", nil)
}
