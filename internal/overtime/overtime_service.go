package overtime

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
	"go-timeoff/internal/lifecycle"
	"go-timeoff/internal/messaging/kafka"
	overtimeerrors "go-timeoff/internal/overtime/errors"
	"go-timeoff/internal/shared/apperror"
	"go-timeoff/internal/shared/cache"
	"go-timeoff/internal/txlog"
)

const listCacheKey = "overtime:list"

//go:generate mockgen -source=overtime_service.go -destination=mock/overtime_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateOvertimeRequest) (OvertimeResponse, error)
	GetAll(ctx context.Context) ([]OvertimeResponse, error)
	GetByID(ctx context.Context, id string) (OvertimeResponse, error)
	History(ctx context.Context, id string) ([]txlog.EntryResponse, error)
	Update(ctx context.Context, actor authz.Actor, id string, req UpdateOvertimeRequest) (OvertimeResponse, error)
	Approve(ctx context.Context, actor authz.Actor, id, comment string) (OvertimeResponse, error)
	Reject(ctx context.Context, actor authz.Actor, id, comment string) (OvertimeResponse, error)
	RequestCancel(ctx context.Context, actor authz.Actor, id, reason string) (OvertimeResponse, error)
	ApproveCancel(ctx context.Context, actor authz.Actor, id, comment string) (OvertimeResponse, error)
	RejectCancel(ctx context.Context, actor authz.Actor, id, comment string) (OvertimeResponse, error)
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

// NewService wires the overtime module. outbox and listCache may be nil; the
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
	l := zap.L().Named("overtime.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("overtime.service")
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

func (s *service) Create(ctx context.Context, actorID string, req CreateOvertimeRequest) (OvertimeResponse, error) {
	s.logger.Debug("create overtime requested",
		zap.String("actor_id", actorID),
		zap.String("date", req.Date),
		zap.String("start_time", req.StartTime),
		zap.String("end_time", req.EndTime),
	)

	requesterID, err := uuid.Parse(actorID)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidActorID
	}

	date, totalHours, err := computeWindow(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		s.logger.Warn("create overtime validation failed", zap.Error(err))
		return OvertimeResponse{}, err
	}

	o := &Overtime{
		ID:          uuid.New(),
		RequesterID: requesterID,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TotalHours:  totalHours,
		Reason:      req.Reason,
		State:       lifecycle.NewState(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create overtime begin tx failed", zap.Error(err))
		return OvertimeResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, o); err != nil {
		s.logger.Error("create overtime persist failed", zap.Error(err))
		return OvertimeResponse{}, apperror.FromPG(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create overtime commit failed", zap.Error(err))
		return OvertimeResponse{}, err
	}
	s.invalidateList(ctx)

	s.logger.Info("create overtime success",
		zap.String("overtime_id", o.ID.String()),
		zap.String("requester_id", requesterID.String()),
		zap.String("total_hours", totalHours.String()),
	)

	return mapToResponse(*o), nil
}

func (s *service) GetAll(ctx context.Context) ([]OvertimeResponse, error) {
	if s.cache == nil {
		overtimes, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(overtimes), nil
	}

	var resp []OvertimeResponse
	err := s.cache.GetOrLoad(ctx, listCacheKey, &resp, func(ctx context.Context) (any, error) {
		overtimes, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(overtimes), nil
	})
	return resp, err
}

func (s *service) GetByID(ctx context.Context, id string) (OvertimeResponse, error) {
	overtimeID, err := uuid.Parse(id)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidOvertimeID
	}
	o, err := s.repo.FindByID(ctx, overtimeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrOvertimeNotFound
		}
		return OvertimeResponse{}, err
	}
	return mapToResponse(*o), nil
}

func (s *service) History(ctx context.Context, id string) ([]txlog.EntryResponse, error) {
	overtimeID, err := uuid.Parse(id)
	if err != nil {
		return nil, overtimeerrors.ErrInvalidOvertimeID
	}
	o, err := s.repo.FindByID(ctx, overtimeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, overtimeerrors.ErrOvertimeNotFound
		}
		return nil, err
	}
	entries, err := s.logs.ListByRequest(ctx, overtimeID)
	if err != nil {
		return nil, err
	}
	// the log is authoritative; surface a denormalized cancel status that
	// drifted from it so it can be reconciled
	if derived := txlog.CancelStatusFromHistory(entries); derived != o.CancelStatus {
		s.logger.Warn("cancel status diverges from history",
			zap.String("overtime_id", id),
			zap.String("stored", string(o.CancelStatus)),
			zap.String("derived", string(derived)),
		)
	}
	return txlog.MapToListResponse(entries), nil
}

func (s *service) Update(ctx context.Context, actor authz.Actor, id string, req UpdateOvertimeRequest) (OvertimeResponse, error) {
	s.logger.Debug("update overtime requested",
		zap.String("overtime_id", id),
		zap.String("actor_id", actor.ID.String()),
	)

	overtimeID, err := uuid.Parse(id)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidOvertimeID
	}

	date, totalHours, err := computeWindow(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return OvertimeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update overtime begin tx failed", zap.Error(err))
		return OvertimeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	o, err := qtx.FindByIDForUpdate(ctx, overtimeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrOvertimeNotFound
		}
		return OvertimeResponse{}, err
	}

	if !s.evaluator.CanPerform(actor, s.subject(ctx, o), lifecycle.EventEdit) {
		return OvertimeResponse{}, overtimeerrors.ErrForbidden
	}
	if !lifecycle.CanEdit(o.State) {
		return OvertimeResponse{}, overtimeerrors.ErrOvertimeNotEditable
	}

	o.Date = date
	o.StartTime = req.StartTime
	o.EndTime = req.EndTime
	o.TotalHours = totalHours
	o.Reason = req.Reason

	if err := qtx.Update(ctx, o); err != nil {
		s.logger.Error("update overtime persist failed", zap.String("overtime_id", id), zap.Error(err))
		return OvertimeResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update overtime commit failed", zap.String("overtime_id", id), zap.Error(err))
		return OvertimeResponse{}, err
	}
	s.invalidateList(ctx)

	s.logger.Info("update overtime success",
		zap.String("overtime_id", id),
		zap.String("total_hours", totalHours.String()),
	)
	return mapToResponse(*o), nil
}

func (s *service) Approve(ctx context.Context, actor authz.Actor, id, comment string) (OvertimeResponse, error) {
	return s.applyTransition(ctx, actor, id, lifecycle.EventApprove, comment)
}

func (s *service) Reject(ctx context.Context, actor authz.Actor, id, comment string) (OvertimeResponse, error) {
	if comment == "" {
		return OvertimeResponse{}, overtimeerrors.ErrCommentRequired
	}
	return s.applyTransition(ctx, actor, id, lifecycle.EventReject, comment)
}

func (s *service) RequestCancel(ctx context.Context, actor authz.Actor, id, reason string) (OvertimeResponse, error) {
	if reason == "" {
		return OvertimeResponse{}, overtimeerrors.ErrCancelReasonRequired
	}
	return s.applyTransition(ctx, actor, id, lifecycle.EventRequestCancel, reason)
}

func (s *service) ApproveCancel(ctx context.Context, actor authz.Actor, id, comment string) (OvertimeResponse, error) {
	return s.applyTransition(ctx, actor, id, lifecycle.EventApproveCancel, comment)
}

func (s *service) RejectCancel(ctx context.Context, actor authz.Actor, id, comment string) (OvertimeResponse, error) {
	return s.applyTransition(ctx, actor, id, lifecycle.EventRejectCancel, comment)
}

// applyTransition is the single write path for every status-changing event:
// lock the row, authorize, run the state machine, then persist the request,
// its log entry and the outgoing event in one transaction.
func (s *service) applyTransition(
	ctx context.Context,
	actor authz.Actor,
	id string,
	ev lifecycle.Event,
	comment string,
) (OvertimeResponse, error) {
	s.logger.Debug("overtime transition requested",
		zap.String("overtime_id", id),
		zap.String("actor_id", actor.ID.String()),
		zap.String("event", string(ev)),
	)

	overtimeID, err := uuid.Parse(id)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidOvertimeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("overtime transition begin tx failed", zap.Error(err))
		return OvertimeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qlogs := s.logs.WithTx(tx)

	o, err := qtx.FindByIDForUpdate(ctx, overtimeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrOvertimeNotFound
		}
		return OvertimeResponse{}, err
	}

	if !s.evaluator.CanPerform(actor, s.subject(ctx, o), ev) {
		s.logger.Warn("overtime transition denied",
			zap.String("overtime_id", id),
			zap.String("actor_id", actor.ID.String()),
			zap.String("event", string(ev)),
		)
		return OvertimeResponse{}, overtimeerrors.ErrForbidden
	}

	action, err := lifecycle.Apply(&o.State, ev, actor.ID, comment, time.Now().UTC())
	if err != nil {
		s.logger.Warn("overtime transition invalid",
			zap.String("overtime_id", id),
			zap.String("event", string(ev)),
			zap.String("status", string(o.Status)),
			zap.String("cancel_status", string(o.CancelStatus)),
		)
		return OvertimeResponse{}, mapLifecycleError(err)
	}

	if err := qtx.Update(ctx, o); err != nil {
		s.logger.Error("overtime transition persist failed",
			zap.String("overtime_id", id),
			zap.Error(err),
		)
		return OvertimeResponse{}, apperror.FromPG(err)
	}

	entry := txlog.NewEntry(o.ID, txlog.KindOvertime, action)
	if err := qlogs.Append(ctx, &entry); err != nil {
		s.logger.Error("overtime transition log append failed",
			zap.String("overtime_id", id),
			zap.Error(err),
		)
		return OvertimeResponse{}, apperror.FromPG(err)
	}

	if err := s.stageEvent(ctx, tx, o, action); err != nil {
		s.logger.Error("overtime transition stage event failed",
			zap.String("overtime_id", id),
			zap.Error(err),
		)
		return OvertimeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("overtime transition commit failed",
			zap.String("overtime_id", id),
			zap.Error(err),
		)
		return OvertimeResponse{}, err
	}
	s.invalidateList(ctx)

	s.logger.Info("overtime transition success",
		zap.String("overtime_id", id),
		zap.String("event", string(ev)),
		zap.String("status", string(o.EffectiveStatus())),
		zap.String("cancel_status", string(o.CancelStatus)),
	)

	return mapToResponse(*o), nil
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	overtimeID, err := uuid.Parse(id)
	if err != nil {
		return overtimeerrors.ErrInvalidOvertimeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qlogs := s.logs.WithTx(tx)

	o, err := qtx.FindByIDForUpdate(ctx, overtimeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return overtimeerrors.ErrOvertimeNotFound
		}
		return err
	}

	if !s.evaluator.CanPerform(actor, s.subject(ctx, o), lifecycle.EventDelete) {
		return overtimeerrors.ErrForbidden
	}
	if !lifecycle.CanDelete(o.State, actor.Role == authz.RoleAdmin) {
		return overtimeerrors.ErrOvertimeNotDeletable
	}

	// the request and its audit trail go together
	if err := qtx.Delete(ctx, overtimeID); err != nil {
		return err
	}
	if err := qlogs.DeleteByRequest(ctx, overtimeID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.invalidateList(ctx)

	s.logger.Info("delete overtime success", zap.String("overtime_id", id))
	return nil
}

func (s *service) subject(ctx context.Context, o *Overtime) authz.Subject {
	sub := authz.Subject{RequesterID: o.RequesterID}
	scope, err := s.directory.FindScope(ctx, o.RequesterID)
	if err != nil {
		s.logger.Warn("directory scope lookup failed",
			zap.String("requester_id", o.RequesterID.String()),
			zap.Error(err),
		)
		return sub
	}
	sub.TeamID = scope.TeamID
	sub.DepartmentName = scope.DepartmentName
	return sub
}

func (s *service) stageEvent(ctx context.Context, tx *sql.Tx, o *Overtime, action lifecycle.Action) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.RequestTransitionedEvent{
		EventType:    string(action.Type),
		RequestKind:  string(txlog.KindOvertime),
		RequestID:    o.ID.String(),
		RequesterID:  o.RequesterID.String(),
		ActorID:      action.ActorID.String(),
		Status:       string(o.EffectiveStatus()),
		CancelStatus: string(o.CancelStatus),
		OccurredAt:   action.OccurredAt,
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "overtime_request",
		AggregateID:   o.ID.String(),
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
		return overtimeerrors.ErrCancelAlreadyPending
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return overtimeerrors.ErrInvalidTransition
	default:
		return err
	}
}

// computeWindow parses the date and clock times and derives the hour total.
// The calculator treats end < start as a shift that crossed midnight.
func computeWindow(dateRaw, startRaw, endRaw string) (time.Time, decimal.Decimal, error) {
	date, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		return time.Time{}, decimal.Zero, overtimeerrors.ErrInvalidDateFormat
	}

	totalHours, err := duration.OvertimeHours(startRaw, endRaw)
	if err != nil {
		switch {
		case errors.Is(err, duration.ErrInvalidTime):
			return time.Time{}, decimal.Zero, overtimeerrors.ErrInvalidTimeFormat
		case errors.Is(err, duration.ErrZeroDuration):
			return time.Time{}, decimal.Zero, overtimeerrors.ErrZeroDuration
		default:
			return time.Time{}, decimal.Zero, err
		}
	}
	return date, totalHours, nil
}

func mapToResponse(o Overtime) OvertimeResponse {
	resp := OvertimeResponse{
		ID:           o.ID.String(),
		RequesterID:  o.RequesterID.String(),
		Date:         o.Date.Format("2006-01-02"),
		StartTime:    o.StartTime,
		EndTime:      o.EndTime,
		TotalHours:   o.TotalHours.String(),
		Reason:       o.Reason,
		Status:       string(o.EffectiveStatus()),
		CancelStatus: string(o.CancelStatus),
		IsCancelled:  o.IsCancelled,
	}
	resp.ApprovedBy = uuidString(o.ApprovedBy)
	resp.ApprovedAt = timeString(o.ApprovedAt)
	resp.ApprovalComment = o.ApprovalComment
	resp.CancelRequestedBy = uuidString(o.CancelRequestedBy)
	resp.CancelRequestedAt = timeString(o.CancelRequestedAt)
	resp.CancelReason = o.CancelReason
	resp.CancelRespondedBy = uuidString(o.CancelRespondedBy)
	resp.CancelRespondedAt = timeString(o.CancelRespondedAt)
	resp.CancelResponseComment = o.CancelResponseComment
	return resp
}

func mapToListResponse(overtimes []Overtime) []OvertimeResponse {
	resp := make([]OvertimeResponse, len(overtimes))
	for i, o := range overtimes {
		resp[i] = mapToResponse(o)
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
