package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/YusovID/service-requests/internal/config"
	"github.com/YusovID/service-requests/internal/domain"
	"github.com/YusovID/service-requests/internal/repository"
	"github.com/YusovID/service-requests/pkg/logger/sl"
	"github.com/jmoiron/sqlx"
)

// RepairService tracks facility repairs and their tasks.
type RepairService interface {
	CreateRepair(ctx context.Context, repair domain.Repair, startMedia []string) (*domain.Repair, error)
	GetRepair(ctx context.Context, id int64) (*domain.Repair, error)
	ListRepairs(ctx context.Context, filter domain.RepairFilter) (*domain.RepairPage, error)
	UpdateRepair(ctx context.Context, id int64, patch domain.RepairPatch) (*domain.Repair, error)
	CompleteRepair(ctx context.Context, id int64, completionMedia []string) (*domain.Repair, error)
	AddRepairDelayReason(ctx context.Context, id int64, in domain.NewDelayReason) (*domain.DelayReason, error)

	CreateTask(ctx context.Context, task domain.RepairTask) (*domain.RepairTask, error)
	GetTask(ctx context.Context, id int64) (*domain.RepairTask, error)
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.RepairTask, error)
	CompleteTask(ctx context.Context, id int64, description *string, media []string) (*domain.RepairTask, error)
	AddTaskDelayReason(ctx context.Context, id int64, in domain.NewDelayReason) (*domain.DelayReason, error)
}

type RepairServiceImpl struct {
	BaseService
	reader     sqlx.ExtContext
	repairs    repository.RepairRepository
	pagination config.Pagination
}

var _ RepairService = (*RepairServiceImpl)(nil)

func NewRepairService(
	db Transactor,
	reader sqlx.ExtContext,
	log *slog.Logger,
	repairs repository.RepairRepository,
	pagination config.Pagination,
) *RepairServiceImpl {
	return &RepairServiceImpl{
		BaseService: NewBaseService(db, log),
		reader:      reader,
		repairs:     repairs,
		pagination:  pagination,
	}
}

func (s *RepairServiceImpl) CreateRepair(ctx context.Context, repair domain.Repair, startMedia []string) (*domain.Repair, error) {
	const op = "internal.service.repair.CreateRepair"

	if err := validateRepair(&repair); err != nil {
		return nil, err
	}

	var created *domain.Repair

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		if err := s.repairs.CreateRepair(ctx, tx, &repair); err != nil {
			return apperrors.Storage(op, err)
		}

		if _, err := s.repairs.AddRepairMedia(ctx, tx, repair.ID, domain.MediaStart, startMedia); err != nil {
			return apperrors.Storage(op, err)
		}

		var err error
		created, err = s.repairs.GetRepairByID(ctx, tx, repair.ID)

		return apperrors.Storage(op, err)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("repair created", slog.String("op", op), slog.Int64("repair_id", created.ID))

	return created, nil
}

func validateRepair(r *domain.Repair) error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return &apperrors.MissingFieldError{Field: "name"}
	case strings.TrimSpace(r.Address) == "":
		return &apperrors.MissingFieldError{Field: "address"}
	case r.StartDate.IsZero():
		return &apperrors.MissingFieldError{Field: "start_date"}
	case r.EndDate.IsZero():
		return &apperrors.MissingFieldError{Field: "end_date"}
	case r.RepairType == "":
		return &apperrors.MissingFieldError{Field: "repair_type"}
	case !r.RepairType.IsValid():
		return fmt.Errorf("%w: unknown repair type '%s'", apperrors.ErrInvalidRequest, r.RepairType)
	case r.EndDate.Before(r.StartDate):
		return fmt.Errorf("%w: end_date is before start_date", apperrors.ErrInvalidRequest)
	}

	if r.Status == "" {
		r.Status = domain.RepairInProgress
	}

	if !r.Status.IsValid() {
		return fmt.Errorf("%w: unknown repair status '%s'", apperrors.ErrInvalidRequest, r.Status)
	}

	return nil
}

func (s *RepairServiceImpl) GetRepair(ctx context.Context, id int64) (*domain.Repair, error) {
	const op = "internal.service.repair.GetRepair"

	repair, err := s.repairs.GetRepairByID(ctx, s.reader, id)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	return repair, nil
}

func (s *RepairServiceImpl) ListRepairs(ctx context.Context, filter domain.RepairFilter) (*domain.RepairPage, error) {
	const op = "internal.service.repair.ListRepairs"

	for _, t := range filter.RepairTypes {
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: unknown repair type '%s'", apperrors.ErrInvalidRequest, t)
		}
	}

	filter.Page, filter.PageSize = normalizePage(s.pagination, filter.Page, filter.PageSize)

	items, total, err := s.repairs.ListRepairs(ctx, filter)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	return &domain.RepairPage{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *RepairServiceImpl) UpdateRepair(ctx context.Context, id int64, patch domain.RepairPatch) (*domain.Repair, error) {
	const op = "internal.service.repair.UpdateRepair"

	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown repair status '%s'", apperrors.ErrInvalidRequest, *patch.Status)
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, &apperrors.MissingFieldError{Field: "name"}
	}

	return s.changeRepair(ctx, op, id, patch)
}

// CompleteRepair marks the repair completed whatever its status and attaches completion media.
func (s *RepairServiceImpl) CompleteRepair(ctx context.Context, id int64, completionMedia []string) (*domain.Repair, error) {
	const op = "internal.service.repair.CompleteRepair"

	status := domain.RepairCompleted

	return s.changeRepair(ctx, op, id, domain.RepairPatch{Status: &status, CompletionMedia: completionMedia})
}

func (s *RepairServiceImpl) changeRepair(ctx context.Context, op string, id int64, patch domain.RepairPatch) (*domain.Repair, error) {
	log := s.log.With(slog.String("op", op), slog.Int64("repair_id", id))

	var updated *domain.Repair

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		current, err := s.repairs.GetRepairByIDWithLock(ctx, tx, id)
		if err != nil {
			return apperrors.Storage(op, err)
		}

		if err := s.repairs.UpdateRepair(ctx, tx, id, patch); err != nil {
			return apperrors.Storage(op, err)
		}

		if _, err := s.repairs.AddRepairMedia(ctx, tx, id, domain.MediaStart, patch.StartMedia); err != nil {
			return apperrors.Storage(op, err)
		}

		if _, err := s.repairs.AddRepairMedia(ctx, tx, id, domain.MediaCompletion, patch.CompletionMedia); err != nil {
			return apperrors.Storage(op, err)
		}

		if patch.Status != nil && *patch.Status != current.Status {
			log = log.With(slog.String("from", string(current.Status)), slog.String("to", string(*patch.Status)))
		}

		updated, err = s.repairs.GetRepairByID(ctx, tx, id)

		return apperrors.Storage(op, err)
	})
	if err != nil {
		log.Warn("repair change failed", sl.Err(err))
		return nil, err
	}

	log.Info("repair changed")

	return updated, nil
}

// AddRepairDelayReason is allowed only while the repair is delayed, and only once.
func (s *RepairServiceImpl) AddRepairDelayReason(ctx context.Context, id int64, in domain.NewDelayReason) (*domain.DelayReason, error) {
	const op = "internal.service.repair.AddRepairDelayReason"

	if strings.TrimSpace(in.Reason) == "" {
		return nil, &apperrors.MissingFieldError{Field: "reason"}
	}

	var reason *domain.DelayReason

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		repair, err := s.repairs.GetRepairByIDWithLock(ctx, tx, id)
		if err != nil {
			return apperrors.Storage(op, err)
		}

		if repair.Status != domain.RepairDelayed {
			return &apperrors.InvalidTransitionError{
				Entity:   "repair",
				Action:   "add_delay_reason",
				Expected: []string{string(domain.RepairDelayed)},
				Actual:   string(repair.Status),
			}
		}

		reason, err = s.repairs.AddRepairDelayReason(ctx, tx, id, in)

		return apperrors.Storage(op, err)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("repair delay reported", slog.String("op", op), slog.Int64("repair_id", id))

	return reason, nil
}

func (s *RepairServiceImpl) CreateTask(ctx context.Context, task domain.RepairTask) (*domain.RepairTask, error) {
	const op = "internal.service.repair.CreateTask"

	switch {
	case task.RepairID == 0:
		return nil, &apperrors.MissingFieldError{Field: "repair_id"}
	case strings.TrimSpace(task.Name) == "":
		return nil, &apperrors.MissingFieldError{Field: "name"}
	case task.DueDate.IsZero():
		return nil, &apperrors.MissingFieldError{Field: "due_date"}
	case task.TaskType == "":
		return nil, &apperrors.MissingFieldError{Field: "task_type"}
	case !task.TaskType.IsValid():
		return nil, fmt.Errorf("%w: unknown task type '%s'", apperrors.ErrInvalidRequest, task.TaskType)
	}

	if task.Status == "" {
		task.Status = domain.TaskPending
	}

	if !task.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown task status '%s'", apperrors.ErrInvalidRequest, task.Status)
	}

	var created *domain.RepairTask

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		if err := s.repairs.CreateTask(ctx, tx, &task); err != nil {
			return apperrors.Storage(op, err)
		}

		var err error
		created, err = s.repairs.GetTaskByID(ctx, tx, task.ID)

		return apperrors.Storage(op, err)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("task created", slog.String("op", op), slog.Int64("repair_id", task.RepairID), slog.Int64("task_id", created.ID))

	return created, nil
}

func (s *RepairServiceImpl) GetTask(ctx context.Context, id int64) (*domain.RepairTask, error) {
	const op = "internal.service.repair.GetTask"

	task, err := s.repairs.GetTaskByID(ctx, s.reader, id)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	return task, nil
}

func (s *RepairServiceImpl) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.RepairTask, error) {
	const op = "internal.service.repair.UpdateTask"

	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown task status '%s'", apperrors.ErrInvalidRequest, *patch.Status)
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, &apperrors.MissingFieldError{Field: "name"}
	}

	return s.changeTask(ctx, op, id, patch)
}

// CompleteTask marks the task completed. A nil description keeps the current one.
func (s *RepairServiceImpl) CompleteTask(ctx context.Context, id int64, description *string, media []string) (*domain.RepairTask, error) {
	const op = "internal.service.repair.CompleteTask"

	status := domain.TaskCompleted

	return s.changeTask(ctx, op, id, domain.TaskPatch{Status: &status, Description: description, Media: media})
}

func (s *RepairServiceImpl) changeTask(ctx context.Context, op string, id int64, patch domain.TaskPatch) (*domain.RepairTask, error) {
	log := s.log.With(slog.String("op", op), slog.Int64("task_id", id))

	var updated *domain.RepairTask

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		if _, err := s.repairs.GetTaskByIDWithLock(ctx, tx, id); err != nil {
			return apperrors.Storage(op, err)
		}

		if err := s.repairs.UpdateTask(ctx, tx, id, patch); err != nil {
			return apperrors.Storage(op, err)
		}

		if _, err := s.repairs.AddTaskMedia(ctx, tx, id, patch.Media); err != nil {
			return apperrors.Storage(op, err)
		}

		var err error
		updated, err = s.repairs.GetTaskByID(ctx, tx, id)

		return apperrors.Storage(op, err)
	})
	if err != nil {
		log.Warn("task change failed", sl.Err(err))
		return nil, err
	}

	log.Info("task changed", slog.String("status", string(updated.Status)))

	return updated, nil
}

// AddTaskDelayReason is allowed once per task, whatever its status.
func (s *RepairServiceImpl) AddTaskDelayReason(ctx context.Context, id int64, in domain.NewDelayReason) (*domain.DelayReason, error) {
	const op = "internal.service.repair.AddTaskDelayReason"

	if strings.TrimSpace(in.Reason) == "" {
		return nil, &apperrors.MissingFieldError{Field: "reason"}
	}

	var reason *domain.DelayReason

	err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		if _, err := s.repairs.GetTaskByIDWithLock(ctx, tx, id); err != nil {
			return apperrors.Storage(op, err)
		}

		var err error
		reason, err = s.repairs.AddTaskDelayReason(ctx, tx, id, in)

		return apperrors.Storage(op, err)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("task delay reported", slog.String("op", op), slog.Int64("task_id", id))

	return reason, nil
}
