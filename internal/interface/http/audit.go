package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nwtrack/networth-api/internal/domain/entity"
	repo "github.com/nwtrack/networth-api/internal/domain/repository"
)

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// audit records an event row; failures never affect the request.
func audit(c *gin.Context, repo repo.AuditRepository, logger *logrus.Logger, userID, email, action string, metadata map[string]any) {
	if repo == nil {
		return
	}
	var md json.RawMessage
	if metadata != nil {
		md, _ = json.Marshal(metadata)
	}
	entry := &entity.AuditLog{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  md,
	}
	if err := repo.Insert(c.Request.Context(), entry); err != nil && logger != nil {
		logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}
