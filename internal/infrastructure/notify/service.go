// Package notify implements the admin notification fan-out as persisted
// inbox rows, one per admin user of the session's tenant.
package notify

import (
	"context"
	"fmt"

	"tokopos/internal/core/id"
	"tokopos/internal/domain/catalogs/branch"
	"tokopos/internal/domain/notify"
	"tokopos/internal/domain/users"
	"tokopos/internal/infrastructure/storage/postgres"
	"tokopos/pkg/logger"
)

// Service implements notify.Notifier.
//
// Fan-out is scoped to the tenant owning the session's branch; admins of
// other tenants never see the event. Delivery is best-effort: every failure
// is logged and swallowed.
type Service struct {
	txm      *postgres.TxManager
	branches branch.Repository
	users    users.Repository
}

// NewService creates a new notification service.
func NewService(txm *postgres.TxManager, branches branch.Repository, userRepo users.Repository) *Service {
	return &Service{txm: txm, branches: branches, users: userRepo}
}

// NotifyOpname writes one notification row per tenant admin.
func (s *Service) NotifyOpname(ctx context.Context, n notify.OpnameNotification) {
	b, err := s.branches.GetByID(ctx, n.BranchID)
	if err != nil {
		logger.Warn(ctx, "notification fan-out: branch lookup failed",
			"branch_id", n.BranchID, "session_id", n.SessionID, "error", err)
		return
	}

	admins, err := s.users.ListAdminsByTenant(ctx, b.TenantID)
	if err != nil {
		logger.Warn(ctx, "notification fan-out: admin lookup failed",
			"tenant_id", b.TenantID, "session_id", n.SessionID, "error", err)
		return
	}

	message := composeMessage(n, b.Name)
	delivered := 0
	for _, admin := range admins {
		if err := s.insert(ctx, admin.ID, n, message); err != nil {
			logger.Warn(ctx, "notification insert failed",
				"user_id", admin.ID, "session_id", n.SessionID, "error", err)
			continue
		}
		delivered++
	}

	logger.Info(ctx, "opname notification fanned out",
		"event", n.Event,
		"session_code", n.SessionCode,
		"tenant_id", b.TenantID,
		"delivered", delivered,
		"admins", len(admins),
	)
}

func (s *Service) insert(ctx context.Context, userID id.ID, n notify.OpnameNotification, message string) error {
	sql := `
		INSERT INTO sys_notifications (id, user_id, event, session_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`
	_, err := s.txm.GetQuerier(ctx).Exec(ctx, sql, id.New(), userID, n.Event, n.SessionID, message)
	return err
}

func composeMessage(n notify.OpnameNotification, branchName string) string {
	switch n.Event {
	case notify.EventOpnameSubmitted:
		return fmt.Sprintf("Stock opname %s at %s submitted by %s, awaiting review", n.SessionCode, branchName, n.ActorName)
	case notify.EventOpnameApproved:
		return fmt.Sprintf("Stock opname %s at %s approved by %s", n.SessionCode, branchName, n.ActorName)
	case notify.EventOpnameRejected:
		return fmt.Sprintf("Stock opname %s at %s rejected by %s: %s", n.SessionCode, branchName, n.ActorName, n.Reason)
	default:
		return fmt.Sprintf("Stock opname %s at %s: %s", n.SessionCode, branchName, n.Event)
	}
}

// Ensure interface compliance.
var _ notify.Notifier = (*Service)(nil)
