package contact

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cvmatch-backend/internal/shared/config"
	"cvmatch-backend/internal/shared/server/respond"
	"cvmatch-backend/internal/shared/telemetry"
)

const maxBodyRunes = 5000

// Handler exposes the contact form endpoint.
type Handler struct {
	mailer Mailer
}

// NewHandler constructs the contact handler from configuration.
func NewHandler(cfg config.Config) *Handler {
	return &Handler{mailer: &SMTPMailer{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.ContactFrom,
		To:   cfg.ContactTo,
	}}
}

// NewHandlerWithMailer constructs the handler with an explicit mailer,
// mainly for tests.
func NewHandlerWithMailer(mailer Mailer) *Handler {
	return &Handler{mailer: mailer}
}

// RegisterRoutes mounts the contact endpoint on the router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/contact", h.Submit)
}

// Submit validates and relays a contact form message.
func (h *Handler) Submit(c *gin.Context) {
	var msg Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Body = strings.TrimSpace(msg.Body)

	details := map[string]string{}
	if msg.Email == "" || !strings.Contains(msg.Email, "@") || strings.ContainsAny(msg.Email, "\r\n") {
		details["email"] = "a valid email is required"
	}
	if msg.Body == "" {
		details["body"] = "message body is required"
	}
	if len([]rune(msg.Body)) > maxBodyRunes {
		details["body"] = "message body is too long"
	}
	if len(details) > 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid contact message", details)
		return
	}

	if err := h.mailer.Send(c.Request.Context(), msg); err != nil {
		if errors.Is(err, ErrMailerNotConfigured) {
			respond.Error(c, http.StatusServiceUnavailable, "mailer_unavailable", "contact form is not configured", nil)
			return
		}
		telemetry.Error("contact.send.failed", map[string]any{"err": err.Error()})
		respond.Error(c, http.StatusBadGateway, "mailer_failed", "could not deliver message", nil)
		return
	}

	respond.OK(c, gin.H{"status": "ok"})
}
