package http

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/YusovID/service-requests/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRepairServer(repairs *RepairServiceMock) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(log, new(RequestWorkflowServiceMock), new(CatalogServiceMock), repairs).Routes()
}

func date(s string) time.Time {
	d, _ := time.Parse(dateLayout, s)
	return d
}

func int64Ptr(v int64) *int64 { return &v }

func TestServer_CreateRepair(t *testing.T) {
	created := &domain.Repair{
		ID:         5,
		Name:       "Roof",
		Address:    "Abay 10",
		StartDate:  date("2026-03-01"),
		EndDate:    date("2026-03-20"),
		RepairType: domain.RepairExternal,
		Status:     domain.RepairInProgress,
		Budget:     int64Ptr(1000),
		Tasks: []domain.RepairTask{
			{ID: 1, RepairID: 5, Status: domain.TaskCompleted, Budget: int64Ptr(250), DueDate: date("2026-03-05")},
			{ID: 2, RepairID: 5, Status: domain.TaskPending, DueDate: date("2026-03-10")},
		},
		StartMedia: []domain.Media{{ID: 1, URL: "https://cdn.example.com/before.jpg"}},
	}

	testCases := []struct {
		name               string
		requestBody        string
		setupMocks         func(*RepairServiceMock)
		expectedStatusCode int
		expectedErrorCode  string
	}{
		{
			name: "Success",
			requestBody: `{"name":"Roof","address":"Abay 10","start_date":"2026-03-01","end_date":"2026-03-20",
				"repair_type":"external","budget":1000,"start_media":["https://cdn.example.com/before.jpg"]}`,
			setupMocks: func(m *RepairServiceMock) {
				m.On("CreateRepair", mock.Anything, mock.MatchedBy(func(r domain.Repair) bool {
					return r.Name == "Roof" && r.RepairType == domain.RepairExternal &&
						r.StartDate.Equal(date("2026-03-01")) && r.EndDate.Equal(date("2026-03-20"))
				}), []string{"https://cdn.example.com/before.jpg"}).Return(created, nil).Once()
			},
			expectedStatusCode: http.StatusCreated,
		},
		{
			name:               "Malformed date",
			requestBody:        `{"name":"Roof","address":"Abay 10","start_date":"01.03.2026","end_date":"2026-03-20","repair_type":"external"}`,
			setupMocks:         func(*RepairServiceMock) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  "VALIDATION_ERROR",
		},
		{
			name:               "Unknown repair type",
			requestBody:        `{"name":"Roof","address":"Abay 10","start_date":"2026-03-01","end_date":"2026-03-20","repair_type":"hybrid"}`,
			setupMocks:         func(*RepairServiceMock) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  "VALIDATION_ERROR",
		},
		{
			name:        "Ends before it starts",
			requestBody: `{"name":"Roof","address":"Abay 10","start_date":"2026-03-20","end_date":"2026-03-01","repair_type":"internal"}`,
			setupMocks: func(m *RepairServiceMock) {
				m.On("CreateRepair", mock.Anything, mock.Anything, []string(nil)).
					Return(nil, apperrors.ErrInvalidRequest).Once()
			},
			expectedStatusCode: http.StatusBadRequest,
			expectedErrorCode:  "INVALID_REQUEST",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repairs := new(RepairServiceMock)
			tc.setupMocks(repairs)

			rr := serve(t, newRepairServer(repairs), http.MethodPost, "/repairs", tc.requestBody)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)

			body := decodeBody(t, rr)
			if tc.expectedErrorCode != "" {
				assert.Equal(t, tc.expectedErrorCode, body["error"].(map[string]any)["code"])
			} else {
				repair := body["repair"].(map[string]any)
				assert.Equal(t, "2026-03-01", repair["start_date"])
				assert.InDelta(t, 50, repair["progress"], 0.001)
				assert.InDelta(t, 25, repair["budget_progress"], 0.001)
				assert.Len(t, repair["tasks"], 2)
				assert.Len(t, repair["start_media"], 1)
				assert.Empty(t, repair["completion_media"])
				assert.Nil(t, repair["delay_reason"])
			}

			repairs.AssertExpectations(t)
		})
	}
}

func TestServer_ListRepairs(t *testing.T) {
	t.Run("query becomes filter", func(t *testing.T) {
		repairs := new(RepairServiceMock)
		floorMax := 5
		startAfter := date("2026-01-01")

		repairs.On("ListRepairs", mock.Anything, domain.RepairFilter{
			Name:        "roof",
			MOL:         "Seitkali",
			RepairTypes: []domain.RepairType{domain.RepairInternal, domain.RepairExternal},
			StartAfter:  &startAfter,
			FloorMax:    &floorMax,
			Page:        2,
		}).Return(&domain.RepairPage{Items: []domain.Repair{}, Total: 0, Page: 2, PageSize: 10}, nil).Once()

		rr := serve(t, newRepairServer(repairs), http.MethodGet,
			"/repairs?name=roof&mol=Seitkali&repair_type=internal,external&start_after=2026-01-01&floor_max=5&page=2", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"items":[],"total":0,"page":2,"page_size":10}`, rr.Body.String())
		repairs.AssertExpectations(t)
	})

	for _, target := range []string{"/repairs?floor_min=two", "/repairs?end_before=2026/01/01", "/repairs?page=0"} {
		t.Run(target, func(t *testing.T) {
			repairs := new(RepairServiceMock)

			rr := serve(t, newRepairServer(repairs), http.MethodGet, target, "")

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "INVALID_REQUEST", decodeBody(t, rr)["error"].(map[string]any)["code"])
			repairs.AssertNotCalled(t, "ListRepairs", mock.Anything, mock.Anything)
		})
	}
}

func TestServer_AddRepairDelayReason(t *testing.T) {
	in := domain.NewDelayReason{Reason: "materials late", Media: []string{"https://cdn.example.com/invoice.pdf"}}

	testCases := []struct {
		name                 string
		result               *domain.DelayReason
		err                  error
		expectedStatusCode   int
		expectedResponseBody string
	}{
		{
			name:               "Success",
			result:             &domain.DelayReason{ID: 1, Reason: in.Reason, Media: []domain.Media{{ID: 3, URL: in.Media[0]}}},
			expectedStatusCode: http.StatusCreated,
		},
		{
			name: "Repair is not delayed",
			err: &apperrors.InvalidTransitionError{
				Entity: "repair", Action: "add_delay_reason", Expected: []string{"delayed"}, Actual: "in_progress",
			},
			expectedStatusCode:   http.StatusConflict,
			expectedResponseBody: `{"error":{"code":"INVALID_TRANSITION","message":"cannot add_delay_reason repair: expected status [delayed], got 'in_progress'"}}`,
		},
		{
			name:                 "Already reported",
			err:                  &apperrors.AlreadyExistsError{Entity: "delay reason", Key: "repair 5"},
			expectedStatusCode:   http.StatusConflict,
			expectedResponseBody: `{"error":{"code":"ALREADY_EXISTS","message":"delay reason 'repair 5' already exists"}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repairs := new(RepairServiceMock)
			repairs.On("AddRepairDelayReason", mock.Anything, int64(5), in).Return(tc.result, tc.err).Once()

			rr := serve(t, newRepairServer(repairs), http.MethodPost, "/repairs/5/add-delay-reason",
				`{"reason":"materials late","media":["https://cdn.example.com/invoice.pdf"]}`)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)

			if tc.expectedResponseBody != "" {
				assert.JSONEq(t, tc.expectedResponseBody, rr.Body.String())
			} else {
				reason := decodeBody(t, rr)["delay_reason"].(map[string]any)
				assert.Equal(t, "materials late", reason["reason"])
				assert.Len(t, reason["media"], 1)
			}

			repairs.AssertExpectations(t)
		})
	}

	t.Run("Empty reason", func(t *testing.T) {
		repairs := new(RepairServiceMock)

		rr := serve(t, newRepairServer(repairs), http.MethodPost, "/repairs/5/add-delay-reason", `{"reason":""}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, rr)["error"].(map[string]any)["code"])
	})
}

func TestServer_RepairChanges(t *testing.T) {
	t.Run("patch status", func(t *testing.T) {
		repairs := new(RepairServiceMock)
		delayed := domain.RepairDelayed

		repairs.On("UpdateRepair", mock.Anything, int64(5), domain.RepairPatch{Status: &delayed}).
			Return(&domain.Repair{ID: 5, Status: domain.RepairDelayed}, nil).Once()

		rr := serve(t, newRepairServer(repairs), http.MethodPatch, "/repairs/5", `{"status":"delayed"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "delayed", decodeBody(t, rr)["repair"].(map[string]any)["status"])
		repairs.AssertExpectations(t)
	})

	t.Run("complete with media", func(t *testing.T) {
		repairs := new(RepairServiceMock)
		urls := []string{"https://cdn.example.com/after.jpg"}

		repairs.On("CompleteRepair", mock.Anything, int64(5), urls).Return(&domain.Repair{
			ID:              5,
			Status:          domain.RepairCompleted,
			CompletionMedia: []domain.Media{{ID: 2, URL: urls[0]}},
		}, nil).Once()

		rr := serve(t, newRepairServer(repairs), http.MethodPatch, "/repairs/5/complete",
			`{"completion_media":["https://cdn.example.com/after.jpg"]}`)

		require.Equal(t, http.StatusOK, rr.Code)
		repair := decodeBody(t, rr)["repair"].(map[string]any)
		assert.Equal(t, "completed", repair["status"])
		assert.Len(t, repair["completion_media"], 1)
		repairs.AssertExpectations(t)
	})

	t.Run("unknown repair", func(t *testing.T) {
		repairs := new(RepairServiceMock)
		repairs.On("GetRepair", mock.Anything, int64(99)).
			Return(nil, &apperrors.NotFoundError{Entity: "repair", ID: 99}).Once()

		rr := serve(t, newRepairServer(repairs), http.MethodGet, "/repairs/99", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"repair with id '99' not found"}}`, rr.Body.String())
	})
}

func TestServer_Tasks(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		repairs := new(RepairServiceMock)

		repairs.On("CreateTask", mock.Anything, mock.MatchedBy(func(task domain.RepairTask) bool {
			return task.RepairID == 5 && task.TaskType == domain.TaskPlumbing && task.DueDate.Equal(date("2026-03-10"))
		})).Return(&domain.RepairTask{
			ID:       8,
			RepairID: 5,
			Name:     "Replace risers",
			Status:   domain.TaskPending,
			DueDate:  date("2026-03-10"),
			TaskType: domain.TaskPlumbing,
		}, nil).Once()

		rr := serve(t, newRepairServer(repairs), http.MethodPost, "/tasks",
			`{"repair_id":5,"name":"Replace risers","due_date":"2026-03-10","task_type":"plumbing"}`)

		require.Equal(t, http.StatusCreated, rr.Code)
		task := decodeBody(t, rr)["task"].(map[string]any)
		assert.Equal(t, "2026-03-10", task["due_date"])
		assert.Equal(t, "pending", task["status"])
		repairs.AssertExpectations(t)
	})

	t.Run("complete keeps description", func(t *testing.T) {
		repairs := new(RepairServiceMock)

		repairs.On("CompleteTask", mock.Anything, int64(8), (*string)(nil), []string(nil)).
			Return(&domain.RepairTask{ID: 8, Status: domain.TaskCompleted}, nil).Once()

		rr := serve(t, newRepairServer(repairs), http.MethodPatch, "/tasks/8/complete", `{}`)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "completed", decodeBody(t, rr)["task"].(map[string]any)["status"])
		repairs.AssertExpectations(t)
	})

	t.Run("second delay reason", func(t *testing.T) {
		repairs := new(RepairServiceMock)

		repairs.On("AddTaskDelayReason", mock.Anything, int64(8), domain.NewDelayReason{Reason: "no access"}).
			Return(nil, &apperrors.AlreadyExistsError{Entity: "delay reason", Key: "task 8"}).Once()

		rr := serve(t, newRepairServer(repairs), http.MethodPost, "/tasks/8/add-delay-reason", `{"reason":"no access"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "ALREADY_EXISTS", decodeBody(t, rr)["error"].(map[string]any)["code"])
	})

	t.Run("unknown status in patch", func(t *testing.T) {
		repairs := new(RepairServiceMock)

		rr := serve(t, newRepairServer(repairs), http.MethodPatch, "/tasks/8", `{"status":"delayed"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		repairs.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything, mock.Anything)
	})
}
