package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-timeoff/internal/authz"
	"go-timeoff/internal/directory"
	"go-timeoff/internal/duration"
	"go-timeoff/internal/events"
	leaveerrors "go-timeoff/internal/leave/errors"
	"go-timeoff/internal/lifecycle"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/shared/cache"
	"go-timeoff/internal/txlog"
)

const listCacheKey = "leave:list"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context) ([]LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	History(ctx context.Context, id string) ([]txlog.EntryResponse, error)
	Update(ctx context.Context, actor authz.Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actor authz.Actor, id, comment string) (LeaveResponse, error)
	Reject(ctx context.Context, actor authz.Actor, id, comment string) (LeaveResponse, error)
	RequestCancel(ctx context.Context, actor authz.Actor, id, reason string) (LeaveResponse, error)
	ApproveCancel(ctx context.Context, actor authz.Actor, id, comment string) (LeaveResponse, error)
	RejectCancel(ctx context.Context, actor authz.Actor, id, comment string) (LeaveResponse, error)
	Delete(ctx context.Context, actor authz.Actor, id string) error
}

type service struct {
	db        *sql.DB
	repo      Repository
	logs      txlog.Repository
	directory directory.Repository
	outbox    kafka.OutboxRepository
	cache     *cache.ResponseCache
	evaluator *authz.Evaluator
	logger    *zap.Logger
}

// NewService wires the leave module. outbox and listCache may be nil; the
// service then skips event emission and caching.
func NewService(
	db *sql.DB,
	repo Repository,
	logs txlog.Repository,
	dir directory.Repository,
	outbox kafka.OutboxRepository,
	listCache *cache.ResponseCache,
	evaluator *authz.Evaluator,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		logs:      logs,
		directory: dir,
		outbox:    outbox,
		cache:     listCache,
		evaluator: evaluator,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("actor_id", actorID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.String("leave_format", req.LeaveFormat),
	)

	requesterID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	format, startDate, endDate, totalDays, err := computeSchedule(req.LeaveFormat, req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, requesterID, startDate, endDate, nil)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("requester_id", requesterID.String()),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	l := &Leave{
		ID:          uuid.New(),
		RequesterID: requesterID,
		LeaveType:   req.LeaveType,
		LeaveFormat: format,
		StartDate:   startDate,
		EndDate:     endDate,
		TotalDays:   totalDays,
		Reason:      req.Reason,
		Attachments: req.Attachments,
		State:       lifecycle.NewState(),
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, apperror.FromPG(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.invalidateList(ctx)

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("requester_id", requesterID.String()),
		zap.String("total_days", totalDays.String()),
	)

	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveResponse, error) {
	if s.cache == nil {
		leaves, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(leaves), nil
	}

	var resp []LeaveResponse
	err := s.cache.GetOrLoad(ctx, listCacheKey, &resp, func(ctx context.Context) (any, error) {
		leaves, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(leaves), nil
	})
	return resp, err
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) History(ctx context.Context, id string) ([]txlog.EntryResponse, error) {
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return nil, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	entries, err := s.logs.ListByRequest(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	// the log is authoritative; surface a denormalized cancel status that
	// drifted from it so it can be reconciled
	if derived := txlog.CancelStatusFromHistory(entries); derived != l.CancelStatus {
		s.logger.Warn("cancel status diverges from history",
			zap.String("leave_id", id),
			zap.String("stored", string(l.CancelStatus)),
			zap.String("derived", string(derived)),
		)
	}
	return txlog.MapToListResponse(entries), nil
}

func (s *service) Update(ctx context.Context, actor authz.Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("update leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID.String()),
	)

	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	format, startDate, endDate, totalDays, err := computeSchedule(req.LeaveFormat, req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	if !s.evaluator.CanPerform(actor, s.subject(ctx, l), lifecycle.EventEdit) {
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}
	if !lifecycle.CanEdit(l.State) {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotEditable
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, l.RequesterID, startDate, endDate, &leaveID)
	if err != nil {
		return LeaveResponse{}, err
	}
	if overlap {
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	l.LeaveType = req.LeaveType
	l.LeaveFormat = format
	l.StartDate = startDate
	l.EndDate = endDate
	l.TotalDays = totalDays
	l.Reason = req.Reason
	l.Attachments = req.Attachments

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("update leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	s.invalidateList(ctx)

	s.logger.Info("update leave success",
		zap.String("leave_id", id),
		zap.String("total_days", totalDays.String()),
	)
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, actor authz.Actor, id, comment string) (LeaveResponse, error) {
	return s.applyTransition(ctx, actor, id, lifecycle.EventApprove, comment)
}

func (s *service) Reject(ctx context.Context, actor authz.Actor, id, comment string) (LeaveResponse, error) {
	if comment == "" {
		return LeaveResponse{}, leaveerrors.ErrCommentRequired
	}
	return s.applyTransition(ctx, actor, id, lifecycle.EventReject, comment)
}

func (s *service) RequestCancel(ctx context.Context, actor authz.Actor, id, reason string) (LeaveResponse, error) {
	if reason == "" {
		return LeaveResponse{}, leaveerrors.ErrCancelReasonRequired
	}
	return s.applyTransition(ctx, actor, id, lifecycle.EventRequestCancel, reason)
}

func (s *service) ApproveCancel(ctx context.Context, actor authz.Actor, id, comment string) (LeaveResponse, error) {
	return s.applyTransition(ctx, actor, id, lifecycle.EventApproveCancel, comment)
}

func (s *service) RejectCancel(ctx context.Context, actor authz.Actor, id, comment string) (LeaveResponse, error) {
	return s.applyTransition(ctx, actor, id, lifecycle.EventRejectCancel, comment)
}

/// applyTransition is the single write path for every status-changing event:
// lock the row, authorize, run the state machine, then persist the request,
// its log entry and the outgoing event in one transaction.
func (s *service) applyTransition(
	ctx context.Context,
	actor authz.Actor,
	id string,
	ev lifecycle.Event,
	comment string,
) (LeaveResponse, error) {
	s.logger.Debug("leave transition requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID.String()),
		zap.String("event", string(ev)),
	)

	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("leave transition begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qlogs := s.logs.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	if !s.evaluator.CanPerform(actor, s.subject(ctx, l), ev) {
		s.logger.Warn("leave transition denied",
			zap.String("leave_id", id),
			zap.String("actor_id", actor.ID.String()),
			zap.String("event", string(ev)),
		)
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}

	action, err := lifecycle.Apply(&l.State, ev, actor.ID, comment, time.Now().UTC())
	if err != nil {
		s.logger.Warn("leave transition invalid",
			zap.String("leave_id", id),
			zap.String("event", string(ev)),
			zap.String("status", string(l.Status)),
			zap.String("cancel_status", string(l.CancelStatus)),
		)
		return LeaveResponse{}, mapLifecycleError(err)
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("leave transition persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, apperror.FromPG(err)
	}

	entry := txlog.NewEntry(l.ID, txlog.KindLeave, action)
	if err := qlogs.Append(ctx, &entry); err != nil {
		s.logger.Error("leave transition log append failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, apperror.FromPG(err)
	}

	if err := s.stageEvent(ctx, tx, l, action); err != nil {
		s.logger.Error("leave transition stage event failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("leave transition commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	s.invalidateList(ctx)

	s.logger.Info("leave transition success",
		zap.String("leave_id", id),
		zap.String("event", string(ev)),
		zap.String("status", string(l.EffectiveStatus())),
		zap.String("cancel_status", string(l.CancelStatus)),
	)

	return mapToResponse(*l), nil
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qlogs := s.logs.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}

	if !s.evaluator.CanPerform(actor, s.subject(ctx, l), lifecycle.EventDelete) {
		return leaveerrors.ErrForbidden
	}
	if !lifecycle.CanDelete(l.State, actor.Role == authz.RoleAdmin) {
		return leaveerrors.ErrLeaveNotDeletable
	}

	// the request and its audit trail go together
	if err := qtx.Delete(ctx, leaveID); err != nil {
		return err
	}
	if err := qlogs.DeleteByRequest(ctx, leaveID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.invalidateList(ctx)

	s.logger.Info("delete leave success", zap.String("leave_id", id))
	return nil
}

// subject assembles the authorization view of a leave, fetching the owner's
// organizational scope from the directory. Directory lookups failing must
// not block transitions; the scope policy handles missing data.
func (s *service) subject(ctx context.Context, l *Leave) authz.Subject {
	sub := authz.Subject{RequesterID: l.RequesterID}
	scope, err := s.directory.FindScope(ctx, l.RequesterID)
	if err != nil {
		s.logger.Warn("directory scope lookup failed",
			zap.String("requester_id", l.RequesterID.String()),
			zap.Error(err),
		)
		return sub
	}
	sub.TeamID = scope.TeamID
	sub.DepartmentName = scope.DepartmentName
	return sub
}

func (s *service) stageEvent(ctx context.Context, tx *sql.Tx, l *Leave, action lifecycle.Action) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.RequestTransitionedEvent{
		EventType:    string(action.Type),
		RequestKind:  string(txlog.KindLeave),
		RequestID:    l.ID.String(),
		RequesterID:  l.RequesterID.String(),
		ActorID:      action.ActorID.String(),
		Status:       string(l.EffectiveStatus()),
		CancelStatus: string(l.CancelStatus),
		OccurredAt:   action.OccurredAt,
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     string(action.Type),
		Topic:         events.RequestTransitionedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) invalidateList(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, listCacheKey)
	}
}

func mapLifecycleError(err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrCancelConflict):
		return leaveerrors.ErrCancelAlreadyPending
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return leaveerrors.ErrInvalidTransition
	default:
		return err
	}
}

// computeSchedule parses and normalizes the requested window. Half-day
// formats collapse the window to the start date; the calculator is the only
// source of the day total.
func computeSchedule(formatRaw, startRaw, endRaw string) (duration.LeaveFormat, time.Time, time.Time, decimal.Decimal, error) {
	format := duration.LeaveFormat(formatRaw)

	startDate, err := parseDate(startRaw)
	if err != nil {
		return format, time.Time{}, time.Time{}, decimal.Zero, err
	}
	endDate, err := parseDate(endRaw)
	if err != nil {
		return format, time.Time{}, time.Time{}, decimal.Zero, err
	}

	if format.IsHalfDay() {
		endDate = startDate
	}

	totalDays, err := duration.LeaveDays(format, startDate, endDate)
	if err != nil {
		return format, time.Time{}, time.Time{}, decimal.Zero, leaveerrors.ErrInvalidDateRange
	}
	return format, startDate, endDate, totalDays, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:           l.ID.String(),
		RequesterID:  l.RequesterID.String(),
		LeaveType:    l.LeaveType,
		LeaveFormat:  string(l.LeaveFormat),
		StartDate:    l.StartDate.Format("2006-01-02"),
		EndDate:      l.EndDate.Format("2006-01-02"),
		TotalDays:    l.TotalDays.String(),
		Reason:       l.Reason,
		Attachments:  l.Attachments,
		Status:       string(l.EffectiveStatus()),
		CancelStatus: string(l.CancelStatus),
		IsCancelled:  l.IsCancelled,
	}
	resp.ApprovedBy = uuidString(l.ApprovedBy)
	resp.ApprovedAt = timeString(l.ApprovedAt)
	resp.ApprovalComment = l.ApprovalComment
	resp.CancelRequestedBy = uuidString(l.CancelRequestedBy)
	resp.CancelRequestedAt = timeString(l.CancelRequestedAt)
	resp.CancelReason = l.CancelReason
	resp.CancelRespondedBy = uuidString(l.CancelRespondedBy)
	resp.CancelRespondedAt = timeString(l.CancelRespondedAt)
	resp.CancelResponseComment = l.CancelResponseComment
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}

func uuidString(v *uuid.UUID) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func timeString(v *time.Time) *string {
	if v == nil {
		return nil
	}
	s := v.Format(time.RFC3339)
	return &s
}
