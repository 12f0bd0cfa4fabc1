package delivery

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	emaildomain "jobtrail-backend/internal/email/domain"
	emaildto "jobtrail-backend/internal/email/dto"
	"jobtrail-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	emailUsecase usecase.EmailUsecase
}

func NewEmailHandler(emailUsecase usecase.EmailUsecase) *EmailHandler {
	return &EmailHandler{
		emailUsecase: emailUsecase,
	}
}

func (h *EmailHandler) RegisterMailbox(c *gin.Context) {
	var req emaildto.RegisterMailboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mailbox, err := h.emailUsecase.RegisterMailbox(c.GetString("userID"), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, emaildto.MailboxResponse{Mailbox: mailbox})
}

func (h *EmailHandler) GetMailbox(c *gin.Context) {
	mailbox, err := h.emailUsecase.GetMailbox(c.GetString("userID"))
	if err != nil {
		if errors.Is(err, emaildomain.ErrMailboxNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mailbox not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emaildto.MailboxResponse{Mailbox: mailbox})
}

func (h *EmailHandler) GrantForwarding(c *gin.Context) {
	var req emaildto.GrantForwardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.emailUsecase.GrantForwarding(c.Request.Context(), c.GetString("userID"), req.AccessToken, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "forwarding active"})
}

func (h *EmailHandler) TriggerFetch(c *gin.Context) {
	var req emaildto.TriggerFetchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var startDate *time.Time
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be formatted 2006-01-02"})
			return
		}
		startDate = &parsed
	}

	jobID, err := h.emailUsecase.TriggerFetch(c.GetString("userID"), startDate)
	if err != nil {
		switch {
		case errors.Is(err, emaildomain.ErrAlreadyRunning):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, emaildomain.ErrMailboxNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, emaildto.TriggerFetchResponse{JobID: jobID})
}

func (h *EmailHandler) PollJob(c *gin.Context) {
	status, err := h.emailUsecase.PollJob(c.Param("id"))
	if err != nil {
		if errors.Is(err, emaildomain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *EmailHandler) ListRecords(c *gin.Context) {
	records, err := h.emailUsecase.ListRecords(c.GetString("userID"), c.Query("q"))
	if err != nil {
		if errors.Is(err, emaildomain.ErrMailboxNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mailbox not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emaildto.EmailRecordsResponse{Emails: records, Total: len(records)})
}

func (h *EmailHandler) ExportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	filename := fmt.Sprintf("applications-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.emailUsecase.ExportCSV(c.GetString("userID"), c.Writer); err != nil {
		if errors.Is(err, emaildomain.ErrMailboxNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mailbox not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
}
