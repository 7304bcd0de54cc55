package service

import (
	"context"
	"database/sql"

	"github.com/YusovID/service-requests/internal/domain"
	"github.com/YusovID/service-requests/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type TransactorMock struct {
	mock.Mock
}

func (m *TransactorMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*sqlx.Tx), args.Error(1)
}

type RequestCommandRepositoryMock struct {
	mock.Mock
}

var _ repository.RequestCommandRepository = (*RequestCommandRepositoryMock)(nil)

func (m *RequestCommandRepositoryMock) CreateRequest(ctx context.Context, tx *sqlx.Tx, req *domain.ServiceRequest) error {
	args := m.Called(ctx, tx, req)
	return args.Error(0)
}

func (m *RequestCommandRepositoryMock) AddCovers(ctx context.Context, tx *sqlx.Tx, requestID int64, covers []domain.Cover) error {
	args := m.Called(ctx, tx, requestID, covers)
	return args.Error(0)
}

func (m *RequestCommandRepositoryMock) AddFiles(ctx context.Context, tx *sqlx.Tx, requestID int64, files []domain.File) error {
	args := m.Called(ctx, tx, requestID, files)
	return args.Error(0)
}

func (m *RequestCommandRepositoryMock) GetRequestByIDWithLock(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.ServiceRequest, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ServiceRequest), args.Error(1)
}

func (m *RequestCommandRepositoryMock) UpdateRequestState(ctx context.Context, tx *sqlx.Tx, upd domain.StateUpdate) error {
	args := m.Called(ctx, tx, upd)
	return args.Error(0)
}

func (m *RequestCommandRepositoryMock) AppendHistory(ctx context.Context, tx *sqlx.Tx, entry *domain.HistoryEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *RequestCommandRepositoryMock) UpsertRating(ctx context.Context, tx *sqlx.Tx, rating *domain.Rating) error {
	args := m.Called(ctx, tx, rating)
	return args.Error(0)
}

type RequestQueryRepositoryMock struct {
	mock.Mock
}

var _ repository.RequestQueryRepository = (*RequestQueryRepositoryMock)(nil)

func (m *RequestQueryRepositoryMock) GetRequestByID(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ServiceRequest), args.Error(1)
}

func (m *RequestQueryRepositoryMock) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.ServiceRequest, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}

	return args.Get(0).([]domain.ServiceRequest), args.Int(1), args.Error(2)
}

func (m *RequestQueryRepositoryMock) CountBySignatory(ctx context.Context, signatoryID int64, status domain.Status) (int, error) {
	args := m.Called(ctx, signatoryID, status)
	return args.Int(0), args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepositoryMock)(nil)

func (m *UserRepositoryMock) GetUserByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*domain.User, error) {
	args := m.Called(ctx, ext, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepositoryMock) UpsertUsers(ctx context.Context, users []domain.User) ([]domain.User, error) {
	args := m.Called(ctx, users)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.User), args.Error(1)
}

type ModeratorGroupRepositoryMock struct {
	mock.Mock
}

var _ repository.ModeratorGroupRepository = (*ModeratorGroupRepositoryMock)(nil)

func (m *ModeratorGroupRepositoryMock) FindMatchingGroup(
	ctx context.Context,
	ext sqlx.ExtContext,
	categoryID, regionID, cityID int64,
) (*domain.ModeratorGroup, error) {
	args := m.Called(ctx, ext, categoryID, regionID, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ModeratorGroup), args.Error(1)
}

func (m *ModeratorGroupRepositoryMock) CreateGroup(ctx context.Context, group domain.ModeratorGroup) (*domain.ModeratorGroup, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ModeratorGroup), args.Error(1)
}

func (m *ModeratorGroupRepositoryMock) ListGroups(ctx context.Context) ([]domain.ModeratorGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.ModeratorGroup), args.Error(1)
}

type CatalogRepositoryMock struct {
	mock.Mock
}

var _ repository.CatalogRepository = (*CatalogRepositoryMock)(nil)

func (m *CatalogRepositoryMock) CreateRegion(ctx context.Context, name string) (*domain.Region, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Region), args.Error(1)
}

func (m *CatalogRepositoryMock) CreateCity(ctx context.Context, name string, regionID int64) (*domain.City, error) {
	args := m.Called(ctx, name, regionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.City), args.Error(1)
}

func (m *CatalogRepositoryMock) CreateCategory(ctx context.Context, code, name string) (*domain.Category, error) {
	args := m.Called(ctx, code, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *CatalogRepositoryMock) ListRegions(ctx context.Context) ([]domain.Region, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Region), args.Error(1)
}

func (m *CatalogRepositoryMock) ListCities(ctx context.Context, regionID *int64) ([]domain.City, error) {
	args := m.Called(ctx, regionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.City), args.Error(1)
}

func (m *CatalogRepositoryMock) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Category), args.Error(1)
}

type WorkflowNotifierMock struct {
	mock.Mock
}

var _ WorkflowNotifier = (*WorkflowNotifierMock)(nil)

func (m *WorkflowNotifierMock) StartProcess(ctx context.Context, requestID int64) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *WorkflowNotifierMock) CompleteTask(ctx context.Context, requestID int64, status string) error {
	args := m.Called(ctx, requestID, status)
	return args.Error(0)
}

type RepairRepositoryMock struct {
	mock.Mock
}

var _ repository.RepairRepository = (*RepairRepositoryMock)(nil)

func (m *RepairRepositoryMock) repair(args mock.Arguments) (*domain.Repair, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Repair), args.Error(1)
}

func (m *RepairRepositoryMock) task(args mock.Arguments) (*domain.RepairTask, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.RepairTask), args.Error(1)
}

func (m *RepairRepositoryMock) media(args mock.Arguments) ([]domain.Media, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Media), args.Error(1)
}

func (m *RepairRepositoryMock) delayReason(args mock.Arguments) (*domain.DelayReason, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DelayReason), args.Error(1)
}

func (m *RepairRepositoryMock) CreateRepair(ctx context.Context, tx *sqlx.Tx, repair *domain.Repair) error {
	args := m.Called(ctx, tx, repair)
	return args.Error(0)
}

func (m *RepairRepositoryMock) GetRepairByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*domain.Repair, error) {
	return m.repair(m.Called(ctx, ext, id))
}

func (m *RepairRepositoryMock) GetRepairByIDWithLock(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.Repair, error) {
	return m.repair(m.Called(ctx, tx, id))
}

func (m *RepairRepositoryMock) ListRepairs(ctx context.Context, filter domain.RepairFilter) ([]domain.Repair, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}

	return args.Get(0).([]domain.Repair), args.Int(1), args.Error(2)
}

func (m *RepairRepositoryMock) UpdateRepair(ctx context.Context, tx *sqlx.Tx, id int64, patch domain.RepairPatch) error {
	args := m.Called(ctx, tx, id, patch)
	return args.Error(0)
}

func (m *RepairRepositoryMock) AddRepairMedia(
	ctx context.Context,
	tx *sqlx.Tx,
	repairID int64,
	kind domain.MediaKind,
	urls []string,
) ([]domain.Media, error) {
	return m.media(m.Called(ctx, tx, repairID, kind, urls))
}

func (m *RepairRepositoryMock) AddRepairDelayReason(
	ctx context.Context,
	tx *sqlx.Tx,
	repairID int64,
	in domain.NewDelayReason,
) (*domain.DelayReason, error) {
	return m.delayReason(m.Called(ctx, tx, repairID, in))
}

func (m *RepairRepositoryMock) CreateTask(ctx context.Context, tx *sqlx.Tx, task *domain.RepairTask) error {
	args := m.Called(ctx, tx, task)
	return args.Error(0)
}

func (m *RepairRepositoryMock) GetTaskByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*domain.RepairTask, error) {
	return m.task(m.Called(ctx, ext, id))
}

func (m *RepairRepositoryMock) GetTaskByIDWithLock(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.RepairTask, error) {
	return m.task(m.Called(ctx, tx, id))
}

func (m *RepairRepositoryMock) UpdateTask(ctx context.Context, tx *sqlx.Tx, id int64, patch domain.TaskPatch) error {
	args := m.Called(ctx, tx, id, patch)
	return args.Error(0)
}

func (m *RepairRepositoryMock) AddTaskMedia(ctx context.Context, tx *sqlx.Tx, taskID int64, urls []string) ([]domain.Media, error) {
	return m.media(m.Called(ctx, tx, taskID, urls))
}

func (m *RepairRepositoryMock) AddTaskDelayReason(
	ctx context.Context,
	tx *sqlx.Tx,
	taskID int64,
	in domain.NewDelayReason,
) (*domain.DelayReason, error) {
	return m.delayReason(m.Called(ctx, tx, taskID, in))
}
