package http

import (
	"context"

	"github.com/YusovID/service-requests/internal/domain"
	"github.com/YusovID/service-requests/internal/lifecycle"
	"github.com/stretchr/testify/mock"
)

type RequestWorkflowServiceMock struct {
	mock.Mock
}

func (m *RequestWorkflowServiceMock) request(args mock.Arguments) (*domain.ServiceRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ServiceRequest), args.Error(1)
}

func (m *RequestWorkflowServiceMock) page(args mock.Arguments) (*domain.RequestPage, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.RequestPage), args.Error(1)
}

func (m *RequestWorkflowServiceMock) CreateRequest(ctx context.Context, in domain.NewRequest) (*domain.ServiceRequest, error) {
	return m.request(m.Called(ctx, in))
}

func (m *RequestWorkflowServiceMock) Submit(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return m.request(m.Called(ctx, requestID, in))
}

func (m *RequestWorkflowServiceMock) Sign(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return m.request(m.Called(ctx, requestID, in))
}

func (m *RequestWorkflowServiceMock) Review(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return m.request(m.Called(ctx, requestID, in))
}

func (m *RequestWorkflowServiceMock) Start(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return m.request(m.Called(ctx, requestID, in))
}

func (m *RequestWorkflowServiceMock) Complete(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return m.request(m.Called(ctx, requestID, in))
}

func (m *RequestWorkflowServiceMock) Reject(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return m.request(m.Called(ctx, requestID, in))
}

func (m *RequestWorkflowServiceMock) RejectByCustomer(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return m.request(m.Called(ctx, requestID, in))
}

func (m *RequestWorkflowServiceMock) Rate(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error) {
	return m.request(m.Called(ctx, requestID, in))
}

func (m *RequestWorkflowServiceMock) GetRequest(ctx context.Context, requestID int64) (*domain.ServiceRequest, error) {
	return m.request(m.Called(ctx, requestID))
}

func (m *RequestWorkflowServiceMock) ListRequests(ctx context.Context, filter domain.RequestFilter) (*domain.RequestPage, error) {
	return m.page(m.Called(ctx, filter))
}

func (m *RequestWorkflowServiceMock) ListPendingForCreator(ctx context.Context, creatorID int64, page, pageSize int) (*domain.RequestPage, error) {
	return m.page(m.Called(ctx, creatorID, page, pageSize))
}

func (m *RequestWorkflowServiceMock) ListForExecutor(ctx context.Context, executorID int64, page, pageSize int) (*domain.RequestPage, error) {
	return m.page(m.Called(ctx, executorID, page, pageSize))
}

func (m *RequestWorkflowServiceMock) CountPendingForSignatory(ctx context.Context, signatoryID int64) (int, error) {
	args := m.Called(ctx, signatoryID)
	return args.Int(0), args.Error(1)
}

func (m *RequestWorkflowServiceMock) Wait() {
	m.Called()
}

type CatalogServiceMock struct {
	mock.Mock
}

func (m *CatalogServiceMock) CreateRegion(ctx context.Context, name string) (*domain.Region, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Region), args.Error(1)
}

func (m *CatalogServiceMock) CreateCity(ctx context.Context, name string, regionID int64) (*domain.City, error) {
	args := m.Called(ctx, name, regionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.City), args.Error(1)
}

func (m *CatalogServiceMock) CreateCategory(ctx context.Context, code, name string) (*domain.Category, error) {
	args := m.Called(ctx, code, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *CatalogServiceMock) ListRegions(ctx context.Context) ([]domain.Region, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Region), args.Error(1)
}

func (m *CatalogServiceMock) ListCities(ctx context.Context, regionID *int64) ([]domain.City, error) {
	args := m.Called(ctx, regionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.City), args.Error(1)
}

func (m *CatalogServiceMock) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *CatalogServiceMock) CreateGroup(ctx context.Context, group domain.ModeratorGroup) (*domain.ModeratorGroup, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ModeratorGroup), args.Error(1)
}

func (m *CatalogServiceMock) ListGroups(ctx context.Context) ([]domain.ModeratorGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.ModeratorGroup), args.Error(1)
}

func (m *CatalogServiceMock) UpsertUsers(ctx context.Context, users []domain.User) ([]domain.User, error) {
	args := m.Called(ctx, users)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *CatalogServiceMock) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.User), args.Error(1)
}

type RepairServiceMock struct {
	mock.Mock
}

func (m *RepairServiceMock) repair(args mock.Arguments) (*domain.Repair, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Repair), args.Error(1)
}

func (m *RepairServiceMock) task(args mock.Arguments) (*domain.RepairTask, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.RepairTask), args.Error(1)
}

func (m *RepairServiceMock) delayReason(args mock.Arguments) (*domain.DelayReason, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DelayReason), args.Error(1)
}

func (m *RepairServiceMock) CreateRepair(ctx context.Context, repair domain.Repair, startMedia []string) (*domain.Repair, error) {
	return m.repair(m.Called(ctx, repair, startMedia))
}

func (m *RepairServiceMock) GetRepair(ctx context.Context, id int64) (*domain.Repair, error) {
	return m.repair(m.Called(ctx, id))
}

func (m *RepairServiceMock) ListRepairs(ctx context.Context, filter domain.RepairFilter) (*domain.RepairPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.RepairPage), args.Error(1)
}

func (m *RepairServiceMock) UpdateRepair(ctx context.Context, id int64, patch domain.RepairPatch) (*domain.Repair, error) {
	return m.repair(m.Called(ctx, id, patch))
}

func (m *RepairServiceMock) CompleteRepair(ctx context.Context, id int64, completionMedia []string) (*domain.Repair, error) {
	return m.repair(m.Called(ctx, id, completionMedia))
}

func (m *RepairServiceMock) AddRepairDelayReason(ctx context.Context, id int64, in domain.NewDelayReason) (*domain.DelayReason, error) {
	return m.delayReason(m.Called(ctx, id, in))
}

func (m *RepairServiceMock) CreateTask(ctx context.Context, task domain.RepairTask) (*domain.RepairTask, error) {
	return m.task(m.Called(ctx, task))
}

func (m *RepairServiceMock) GetTask(ctx context.Context, id int64) (*domain.RepairTask, error) {
	return m.task(m.Called(ctx, id))
}

func (m *RepairServiceMock) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.RepairTask, error) {
	return m.task(m.Called(ctx, id, patch))
}

func (m *RepairServiceMock) CompleteTask(ctx context.Context, id int64, description *string, media []string) (*domain.RepairTask, error) {
	return m.task(m.Called(ctx, id, description, media))
}

func (m *RepairServiceMock) AddTaskDelayReason(ctx context.Context, id int64, in domain.NewDelayReason) (*domain.DelayReason, error) {
	return m.delayReason(m.Called(ctx, id, in))
}
