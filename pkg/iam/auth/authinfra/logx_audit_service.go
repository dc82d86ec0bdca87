package authinfra

import (
	"context"

	"github.com/Abraxas-365/userdesk/pkg/iam/auth"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/logx"
)

// LogxAuditService implements auth.AuditService using structured logx logging.
type LogxAuditService struct{}

var _ auth.AuditService = (*LogxAuditService)(nil)

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogAuthenticated(ctx context.Context, userID kernel.UserID, path string, ip string) {
	logx.WithContext(ctx).WithFields(logx.Fields{
		"audit_event": "authenticated",
		"user_id":     userID,
		"path":        path,
		"ip":          ip,
	}).Debug("Audit: request authenticated")
}

func (s *LogxAuditService) LogRejected(ctx context.Context, reason string, path string, ip string) {
	logx.WithContext(ctx).WithFields(logx.Fields{
		"audit_event": "rejected",
		"reason":      reason,
		"path":        path,
		"ip":          ip,
	}).Warn("Audit: request rejected")
}

func (s *LogxAuditService) LogAccessDenied(ctx context.Context, userID kernel.UserID, scope string, path string) {
	logx.WithContext(ctx).WithFields(logx.Fields{
		"audit_event": "access_denied",
		"user_id":     userID,
		"scope":       scope,
		"path":        path,
	}).Warn("Audit: access denied")
}
