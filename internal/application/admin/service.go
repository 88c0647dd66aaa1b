package admin

import (
	"context"
	"strings"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
)

// ActionUpdateStatus is the only PATCH action the users endpoint understands.
const ActionUpdateStatus = "updateStatus"

// Service implements the admin panel's user management.
type Service struct {
	dir      DirectoryAdmin
	authUser AuthUserRemover
	sessions SessionRevoker
	pub      EventPublisher
	audit    func(action string, fields map[string]string)
	now      func() time.Time
}

func NewService(dir DirectoryAdmin, authUser AuthUserRemover, sessions SessionRevoker, pub EventPublisher) *Service {
	return &Service{
		dir:      dir,
		authUser: authUser,
		sessions: sessions,
		pub:      pub,
		audit:    func(string, map[string]string) {},
		now:      time.Now,
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// Dashboard is the data backing the admin page.
type Dashboard struct {
	AdminUser    domain.AdminUser
	Usuarios     []domain.DirectoryRecord
	Estatisticas domain.DirectoryStats
}

func (s *Service) Dashboard(ctx context.Context, actor domain.AdminUser) (Dashboard, error) {
	users, err := s.dir.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	stats, err := s.dir.Stats(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{AdminUser: actor, Usuarios: users, Estatisticas: stats}, nil
}

// UpdateStatus applies an admin action to a directory record.
// Moving a user to suspenso or inativo also revokes their sessions (best-effort).
// Only refresh sessions are revoked; an access token already issued keeps
// working until it expires.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.AdminUser, userID, action, status string) (domain.DirectoryRecord, error) {
	const auditAction = "admin.update_status"

	userID = strings.TrimSpace(userID)
	action = strings.TrimSpace(action)
	status = strings.TrimSpace(status)

	audit := func(result string, err error) {
		fields := map[string]string{
			"actor_id":  actor.ID,
			"target_id": userID,
			"status":    status,
			"result":    result,
		}
		if err != nil {
			fields["error_code"] = domain.Code(err)
		}
		s.audit(auditAction, fields)
	}

	if userID == "" {
		err := domain.ErrMissingField("userId")
		audit("error", err)
		return domain.DirectoryRecord{}, err
	}
	if action == "" {
		err := domain.ErrMissingField("action")
		audit("error", err)
		return domain.DirectoryRecord{}, err
	}
	if action != ActionUpdateStatus {
		err := domain.ErrUnknownAction(action)
		audit("error", err)
		return domain.DirectoryRecord{}, err
	}
	if !domain.IsAdminSettableStatus(status) {
		err := domain.ErrInvalidStatus(status)
		audit("error", err)
		return domain.DirectoryRecord{}, err
	}
	if actor.ID != "" && actor.ID == userID {
		err := domain.ErrCannotAffectSelf()
		audit("error", err)
		return domain.DirectoryRecord{}, err
	}

	newStatus := domain.UserStatus(status)
	rec, err := s.dir.UpdateStatus(ctx, userID, newStatus)
	if err != nil {
		audit("error", err)
		return domain.DirectoryRecord{}, err
	}

	lg := logger.WithCtx(ctx)
	if newStatus.RevokesSessions() && s.sessions != nil {
		if err := s.sessions.RevokeAll(ctx, userID); err != nil {
			lg.Warn().Err(err).Str("user_id", userID).Msg("revoke sessions after status change failed")
		}
	}

	if s.pub != nil {
		evt := domain.UserStatusChangedEvent{
			UserID:     userID,
			Status:     status,
			ChangedBy:  actor.ID,
			OccurredAt: s.now().UTC(),
		}
		if err := s.pub.PublishUserStatusChanged(ctx, evt); err != nil {
			lg.Warn().Err(err).Str("user_id", userID).Msg("publish user status changed failed")
		}
	}

	audit("success", nil)
	return rec, nil
}

// DeleteUser removes the directory record, then the authentication record.
// Failure to remove the authentication record is logged and does not fail the call.
func (s *Service) DeleteUser(ctx context.Context, actor domain.AdminUser, userID string) error {
	const auditAction = "admin.delete_user"

	userID = strings.TrimSpace(userID)

	audit := func(result string, err error) {
		fields := map[string]string{
			"actor_id":  actor.ID,
			"target_id": userID,
			"result":    result,
		}
		if err != nil {
			fields["error_code"] = domain.Code(err)
		}
		s.audit(auditAction, fields)
	}

	if userID == "" {
		err := domain.ErrMissingField("userId")
		audit("error", err)
		return err
	}
	if actor.ID != "" && actor.ID == userID {
		err := domain.ErrCannotAffectSelf()
		audit("error", err)
		return err
	}

	_, found, err := s.dir.FindByID(ctx, userID)
	if err != nil {
		audit("error", err)
		return err
	}
	if !found {
		err := domain.ErrUserNotFound()
		audit("error", err)
		return err
	}

	if err := s.dir.Delete(ctx, userID); err != nil {
		audit("error", err)
		return err
	}

	lg := logger.WithCtx(ctx)
	if s.authUser != nil {
		if err := s.authUser.Delete(ctx, userID); err != nil && !domain.Is(err, "user_not_found") {
			lg.Warn().Err(err).Str("user_id", userID).Msg("delete auth user failed")
		}
	}
	if s.sessions != nil {
		if err := s.sessions.RevokeAll(ctx, userID); err != nil {
			lg.Warn().Err(err).Str("user_id", userID).Msg("revoke sessions after delete failed")
		}
	}
	if s.pub != nil {
		evt := domain.UserDeletedEvent{UserID: userID, DeletedBy: actor.ID, OccurredAt: s.now().UTC()}
		if err := s.pub.PublishUserDeleted(ctx, evt); err != nil {
			lg.Warn().Err(err).Str("user_id", userID).Msg("publish user deleted failed")
		}
	}

	audit("success", nil)
	return nil
}
