package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/YusovID/service-requests/internal/config"
	"github.com/YusovID/service-requests/internal/domain"
	"github.com/YusovID/service-requests/internal/lifecycle"
	"github.com/YusovID/service-requests/internal/repository"
	"github.com/YusovID/service-requests/pkg/logger/sl"
	"github.com/jmoiron/sqlx"
)

const historyCreated = "created"

type RequestWorkflowService interface {
	CreateRequest(ctx context.Context, in domain.NewRequest) (*domain.ServiceRequest, error)

	Submit(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error)
	Sign(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error)
	Review(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error)
	Start(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error)
	Complete(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error)
	Reject(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error)
	RejectByCustomer(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error)
	Rate(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error)

	GetRequest(ctx context.Context, requestID int64) (*domain.ServiceRequest, error)
	ListRequests(ctx context.Context, filter domain.RequestFilter) (*domain.RequestPage, error)
	ListPendingForCreator(ctx context.Context, creatorID int64, page, pageSize int) (*domain.RequestPage, error)
	ListForExecutor(ctx context.Context, executorID int64, page, pageSize int) (*domain.RequestPage, error)
	CountPendingForSignatory(ctx context.Context, signatoryID int64) (int, error)

	// Wait blocks until every in-flight workflow notification has finished.
	Wait()
}

type RequestWorkflowServiceImpl struct {
	BaseService
	reader     sqlx.ExtContext
	cmd        repository.RequestCommandRepository
	query      repository.RequestQueryRepository
	users      repository.UserRepository
	resolver   *ModeratorGroupResolver
	notify     *notifications
	pagination config.Pagination
}

var _ RequestWorkflowService = (*RequestWorkflowServiceImpl)(nil)

// NewRequestWorkflowService wires the workflow. notifier may be nil, then the engine is never called.
func NewRequestWorkflowService(
	db Transactor,
	reader sqlx.ExtContext,
	log *slog.Logger,
	cmd repository.RequestCommandRepository,
	query repository.RequestQueryRepository,
	users repository.UserRepository,
	resolver *ModeratorGroupResolver,
	notifier WorkflowNotifier,
	notifyTimeout time.Duration,
	pagination config.Pagination,
) *RequestWorkflowServiceImpl {
	return &RequestWorkflowServiceImpl{
		BaseService: NewBaseService(db, log),
		reader:      reader,
		cmd:         cmd,
		query:       query,
		users:       users,
		resolver:    resolver,
		notify:      newNotifications(notifier, notifyTimeout, log),
		pagination: pagination,
	}
}

func (s *RequestWorkflowServiceImpl) CreateRequest(ctx context.Context, in domain.NewRequest) (*domain.ServiceRequest, error) {
	const op = "internal.service.request.CreateRequest"
	log := s.log.With(slog.String("op", op), slog.Int64("actor_id", in.CreatorID))

	switch {
	case in.CreatorID == 0:
		return nil, &apperrors.MissingFieldError{Field: "creator_id"}
	case in.SignatoryID == 0:
		return nil, &apperrors.MissingFieldError{Field: "signatory_id"}
	case strings.TrimSpace(in.Description) == "":
		return nil, &apperrors.MissingFieldError{Field: "description"}
	}

	req := &domain.ServiceRequest{
		CreatorID:     in.CreatorID,
		SignatoryID:   in.SignatoryID,
		CategoryID:    in.CategoryID,
		RegionID:      in.RegionID,
		CityID:        in.CityID,
		Description:   in.Description,
		Address:       in.Address,
		ContactNumber: in.ContactNumber,
		Status:        domain.StatusPending,
	}

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		creator, err := s.users.GetUserByID(ctx, tx, in.CreatorID)
		if err != nil {
			return apperrors.Storage(op, err)
		}

		signatory, err := s.users.GetUserByID(ctx, tx, in.SignatoryID)
		if err != nil {
			return apperrors.Storage(op, err)
		}

		// A miss is fine here, the group is resolved again at sign time.
		group, err := s.resolver.Resolve(ctx, tx, req)
		if err != nil {
			return apperrors.Storage(op, err)
		}

		if group != nil {
			req.ModeratorGroupID = &group.ID
		}

		if err := s.cmd.CreateRequest(ctx, tx, req); err != nil {
			return apperrors.Storage(op, err)
		}

		if err := s.cmd.AddCovers(ctx, tx, req.ID, in.Covers); err != nil {
			return apperrors.Storage(op, err)
		}

		if err := s.cmd.AddFiles(ctx, tx, req.ID, in.Files); err != nil {
			return apperrors.Storage(op, err)
		}

		entry := &domain.HistoryEntry{
			RequestID:           req.ID,
			UserID:              creator.ID,
			Action:              historyCreated,
			Comment:             optional(in.Comment),
			UserFullName:        optional(creator.FullName()),
			RelatedUserFullName: optional(signatory.FullName()),
		}
		if err := s.cmd.AppendHistory(ctx, tx, entry); err != nil {
			return apperrors.Storage(op, err)
		}

		req.Covers = attachCovers(req.ID, in.Covers)
		req.Files = attachFiles(req.ID, in.Files)
		req.History = []domain.HistoryEntry{*entry}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("request created", slog.Int64("request_id", req.ID), slog.Bool("group_bound", req.ModeratorGroupID != nil))

	s.notify.started(ctx, req.ID)

	return req, nil
}

func (s *RequestWorkflowServiceImpl) Submit(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return s.transition(ctx, requestID, lifecycle.ActionSubmit, in)
}

func (s *RequestWorkflowServiceImpl) Sign(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return s.transition(ctx, requestID, lifecycle.ActionSign, in)
}

func (s *RequestWorkflowServiceImpl) Review(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return s.transition(ctx, requestID, lifecycle.ActionReview, in)
}

func (s *RequestWorkflowServiceImpl) Start(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return s.transition(ctx, requestID, lifecycle.ActionStart, in)
}

func (s *RequestWorkflowServiceImpl) Complete(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return s.transition(ctx, requestID, lifecycle.ActionComplete, in)
}

func (s *RequestWorkflowServiceImpl) Reject(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return s.transition(ctx, requestID, lifecycle.ActionReject, in)
}

func (s *RequestWorkflowServiceImpl) RejectByCustomer(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return s.transition(ctx, requestID, lifecycle.ActionRejectByCustomer, in)
}

func (s *RequestWorkflowServiceImpl) Rate(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return s.transition(ctx, requestID, lifecycle.ActionRate, in)
}

// transition locks the request row, plans the action and writes status, bindings, rating and
// history in one transaction. The engine is told only after commit.
func (s *RequestWorkflowServiceImpl) transition(
	ctx context.Context,
	requestID int64,
	action lifecycle.Action,
	in lifecycle.Input,
) (*domain.ServiceRequest, error) {
	const op = "internal.service.request.Transition"
	log := s.log.With(
		slog.String("op", op),
		slog.String("action", string(action)),
		slog.Int64("request_id", requestID),
		slog.Int64("actor_id", in.ActorID),
	)

	if in.ActorID == 0 {
		return nil, &apperrors.MissingFieldError{Field: "user_id"}
	}

	var (
		req *domain.ServiceRequest
		eff *lifecycle.Effect
	)

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		var err error

		req, err = s.cmd.GetRequestByIDWithLock(ctx, tx, requestID)
		if err != nil {
			return apperrors.Storage(op, err)
		}

		actor, err := s.users.GetUserByID(ctx, tx, in.ActorID)
		if err != nil {
			return apperrors.Storage(op, err)
		}

		eff, err = lifecycle.Plan(req, action, in)
		if err != nil {
			return err
		}

		upd := domain.StateUpdate{
			RequestID: req.ID,
			From:      eff.From,
			To:        eff.To,
		}

		var related *string

		if eff.BindExecutor {
			executor, err := s.users.GetUserByID(ctx, tx, in.ExecutorID)
			if err != nil {
				return apperrors.Storage(op, err)
			}

			upd.ExecutorID = &executor.ID
			related = optional(executor.FullName())
		}

		if eff.ResolveGroup {
			group, err := s.resolver.Resolve(ctx, tx, req)
			if err != nil {
				return apperrors.Storage(op, err)
			}

			if group == nil {
				return fmt.Errorf("%w: request '%d'", apperrors.ErrResolutionFailure, req.ID)
			}

			upd.ModeratorGroupID = &group.ID
		}

		if err := s.cmd.UpdateRequestState(ctx, tx, upd); err != nil {
			return apperrors.Storage(op, err)
		}

		if eff.UpsertRating {
			rating := &domain.Rating{
				RequestID: req.ID,
				UserID:    actor.ID,
				Rating:    in.Rating,
				Comment:   optional(in.Comment),
			}
			if err := s.cmd.UpsertRating(ctx, tx, rating); err != nil {
				return apperrors.Storage(op, err)
			}

			req.Rating = rating
		}

		entry := &domain.HistoryEntry{
			RequestID:           req.ID,
			UserID:              actor.ID,
			Action:              eff.HistoryAction,
			Details:             optional(eff.Details),
			Comment:             optional(eff.Comment),
			UserFullName:        optional(actor.FullName()),
			RelatedUserFullName: related,
		}
		if err := s.cmd.AppendHistory(ctx, tx, entry); err != nil {
			return apperrors.Storage(op, err)
		}

		req.Status = eff.To
		if upd.ExecutorID != nil {
			req.ExecutorID = upd.ExecutorID
		}
		if upd.ModeratorGroupID != nil {
			req.ModeratorGroupID = upd.ModeratorGroupID
		}
		req.History = append(req.History, *entry)

		return nil
	})
	if err != nil {
		log.Warn("transition refused or failed", sl.Err(err))
		return nil, err
	}

	log.Info("request transitioned", slog.String("from", string(eff.From)), slog.String("to", string(eff.To)))

	if eff.NotifyStatus != "" {
		s.notify.changed(ctx, req.ID, eff.NotifyStatus)
	}

	// The locked row carries no associations, the caller gets the committed request in full.
	stored, err := s.query.GetRequestByID(ctx, req.ID)
	if err != nil {
		log.Warn("failed to reload request after commit", sl.Err(err))
		return req, nil
	}

	return stored, nil
}

func (s *RequestWorkflowServiceImpl) GetRequest(ctx context.Context, requestID int64) (*domain.ServiceRequest, error) {
	const op = "internal.service.request.GetRequest"

	req, err := s.query.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	return req, nil
}

func (s *RequestWorkflowServiceImpl) ListRequests(ctx context.Context, filter domain.RequestFilter) (*domain.RequestPage, error) {
	const op = "internal.service.request.ListRequests"

	filter.Page, filter.PageSize = normalizePage(s.pagination, filter.Page, filter.PageSize)

	items, total, err := s.query.ListRequests(ctx, filter)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	return &domain.RequestPage{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *RequestWorkflowServiceImpl) ListPendingForCreator(ctx context.Context, creatorID int64, page, pageSize int) (*domain.RequestPage, error) {
	if creatorID == 0 {
		return nil, &apperrors.MissingFieldError{Field: "user_id"}
	}

	return s.ListRequests(ctx, domain.RequestFilter{
		Statuses:  []domain.Status{domain.StatusPending},
		CreatorID: &creatorID,
		Page:      page,
		PageSize:  pageSize,
	})
}

func (s *RequestWorkflowServiceImpl) ListForExecutor(ctx context.Context, executorID int64, page, pageSize int) (*domain.RequestPage, error) {
	if executorID == 0 {
		return nil, &apperrors.MissingFieldError{Field: "executor_id"}
	}

	return s.ListRequests(ctx, domain.RequestFilter{
		Statuses:   []domain.Status{domain.StatusApproved, domain.StatusInProgress},
		ExecutorID: &executorID,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (s *RequestWorkflowServiceImpl) CountPendingForSignatory(ctx context.Context, signatoryID int64) (int, error) {
	const op = "internal.service.request.CountPendingForSignatory"

	if signatoryID == 0 {
		return 0, &apperrors.MissingFieldError{Field: "signatory_id"}
	}

	if _, err := s.users.GetUserByID(ctx, s.reader, signatoryID); err != nil {
		return 0, apperrors.Storage(op, err)
	}

	count, err := s.query.CountBySignatory(ctx, signatoryID, domain.StatusPending)
	if err != nil {
		return 0, apperrors.Storage(op, err)
	}

	return count, nil
}

func (s *RequestWorkflowServiceImpl) Wait() {
	s.notify.wait()
}

func normalizePage(limits config.Pagination, page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}

	switch {
	case pageSize <= 0:
		pageSize = limits.DefaultPageSize
	case limits.MaxPageSize > 0 && pageSize > limits.MaxPageSize:
		pageSize = limits.MaxPageSize
	}

	// Keeps (page-1)*pageSize inside a 32-bit OFFSET.
	if pageSize > 0 && page > math.MaxInt32/pageSize {
		page = math.MaxInt32 / pageSize
	}

	return page, pageSize
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func attachCovers(requestID int64, covers []domain.Cover) []domain.Cover {
	out := make([]domain.Cover, len(covers))
	for i, c := range covers {
		c.RequestID = requestID
		out[i] = c
	}

	return out
}

func attachFiles(requestID int64, files []domain.File) []domain.File {
	out := make([]domain.File, len(files))
	for i, f := range files {
		f.RequestID = requestID
		out[i] = f
	}

	return out
}
