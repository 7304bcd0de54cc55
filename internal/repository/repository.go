// Package repository defines the persistence ports used by the service layer.
// Write operations take a *sqlx.Tx so a whole transition commits or rolls back as one unit.
package repository

import (
	"context"

	"github.com/YusovID/service-requests/internal/domain"
	"github.com/jmoiron/sqlx"
)

// RequestQueryRepository is the read side for service requests.
type RequestQueryRepository interface {
	// GetRequestByID returns the request with its covers, files, history (oldest first) and rating.
	// It returns apperrors.ErrNotFound if the request does not exist.
	GetRequestByID(ctx context.Context, id int64) (*domain.ServiceRequest, error)

	// ListRequests applies the filter conjunctively and returns one page plus the total count.
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.ServiceRequest, int, error)

	// CountBySignatory counts requests of a signatory in the given status.
	CountBySignatory(ctx context.Context, signatoryID int64, status domain.Status) (int, error)
}

// RequestCommandRepository is the write side for service requests. All methods run inside a transaction.
type RequestCommandRepository interface {
	// CreateRequest inserts the request and fills ID, CreatedAt and UpdatedAt.
	CreateRequest(ctx context.Context, tx *sqlx.Tx, req *domain.ServiceRequest) error

	AddCovers(ctx context.Context, tx *sqlx.Tx, requestID int64, covers []domain.Cover) error
	AddFiles(ctx context.Context, tx *sqlx.Tx, requestID int64, files []domain.File) error

	// GetRequestByIDWithLock reads the request row "FOR UPDATE".
	// It returns apperrors.ErrNotFound if the request does not exist.
	GetRequestByIDWithLock(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.ServiceRequest, error)

	// UpdateRequestState moves the request from upd.From to upd.To.
	// It returns apperrors.ErrInvalidTransition when the stored status is no longer upd.From.
	UpdateRequestState(ctx context.Context, tx *sqlx.Tx, upd domain.StateUpdate) error

	// AppendHistory inserts a history entry and fills its ID and CreatedAt.
	AppendHistory(ctx context.Context, tx *sqlx.Tx, entry *domain.HistoryEntry) error

	// UpsertRating creates or replaces the single rating of a request.
	UpsertRating(ctx context.Context, tx *sqlx.Tx, rating *domain.Rating) error
}

// UserRepository resolves actors.
type UserRepository interface {
	// GetUserByID returns apperrors.ErrNotFound if the user does not exist.
	// The ext argument allows the lookup to join the caller's transaction.
	GetUserByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*domain.User, error)

	// UpsertUsers inserts or updates directory records by email.
	UpsertUsers(ctx context.Context, users []domain.User) ([]domain.User, error)
}

// ModeratorGroupRepository stores groups and their coverage.
type ModeratorGroupRepository interface {
	// FindMatchingGroup returns the lowest-id group whose regions, cities and categories
	// all contain the given values, or nil when none does.
	FindMatchingGroup(ctx context.Context, ext sqlx.ExtContext, categoryID, regionID, cityID int64) (*domain.ModeratorGroup, error)

	// CreateGroup returns apperrors.ErrAlreadyExists if the name is taken.
	CreateGroup(ctx context.Context, group domain.ModeratorGroup) (*domain.ModeratorGroup, error)

	ListGroups(ctx context.Context) ([]domain.ModeratorGroup, error)
}

// CatalogRepository stores the reference data requests point to.
type CatalogRepository interface {
	CreateRegion(ctx context.Context, name string) (*domain.Region, error)
	CreateCity(ctx context.Context, name string, regionID int64) (*domain.City, error)
	CreateCategory(ctx context.Context, code, name string) (*domain.Category, error)
	ListRegions(ctx context.Context) ([]domain.Region, error)
	ListCities(ctx context.Context, regionID *int64) ([]domain.City, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// RepairRepository stores facility repairs, their tasks and the media attached to both.
// Reads take an sqlx.ExtContext so a write can be read back inside its own transaction.
type RepairRepository interface {
	// CreateRepair inserts the repair and fills ID and CreatedAt.
	CreateRepair(ctx context.Context, tx *sqlx.Tx, repair *domain.Repair) error

	// GetRepairByID returns the repair with its tasks, media and delay reason.
	// It returns apperrors.ErrNotFound if the repair does not exist.
	GetRepairByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*domain.Repair, error)

	// GetRepairByIDWithLock reads the repair row "FOR UPDATE".
	GetRepairByIDWithLock(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.Repair, error)

	// ListRepairs returns one page, tasks included, plus the total count.
	ListRepairs(ctx context.Context, filter domain.RepairFilter) ([]domain.Repair, int, error)

	UpdateRepair(ctx context.Context, tx *sqlx.Tx, id int64, patch domain.RepairPatch) error
	AddRepairMedia(ctx context.Context, tx *sqlx.Tx, repairID int64, kind domain.MediaKind, urls []string) ([]domain.Media, error)

	// AddRepairDelayReason returns apperrors.ErrAlreadyExists if the repair already has a reason.
	AddRepairDelayReason(ctx context.Context, tx *sqlx.Tx, repairID int64, in domain.NewDelayReason) (*domain.DelayReason, error)

	// CreateTask returns apperrors.ErrNotFound if the repair does not exist.
	CreateTask(ctx context.Context, tx *sqlx.Tx, task *domain.RepairTask) error

	// GetTaskByID returns the task with its media and delay reason.
	GetTaskByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*domain.RepairTask, error)
	GetTaskByIDWithLock(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.RepairTask, error)

	UpdateTask(ctx context.Context, tx *sqlx.Tx, id int64, patch domain.TaskPatch) error
	AddTaskMedia(ctx context.Context, tx *sqlx.Tx, taskID int64, urls []string) ([]domain.Media, error)

	// AddTaskDelayReason returns apperrors.ErrAlreadyExists if the task already has a reason.
	AddTaskDelayReason(ctx context.Context, tx *sqlx.Tx, taskID int64, in domain.NewDelayReason) (*domain.DelayReason, error)
}
