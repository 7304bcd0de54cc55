package http

import (
	"time"

	"github.com/YusovID/service-requests/internal/domain"
	"github.com/YusovID/service-requests/internal/lifecycle"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type coverResponse struct {
	ID        int64   `json:"id"`
	SourceURL *string `json:"source_url"`
	Alt       *string `json:"alt"`
	Position  int     `json:"position"`
}

type fileResponse struct {
	ID    int64   `json:"id"`
	Title *string `json:"title"`
	URL   string  `json:"url"`
}

type historyResponse struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"user_id"`
	Action              string    `json:"action"`
	Details             *string   `json:"details"`
	Comment             *string   `json:"comment"`
	UserFullName        *string   `json:"user_full_name"`
	RelatedUserFullName *string   `json:"related_user_full_name"`
	CreatedAt           time.Time `json:"created_at"`
}

type ratingResponse struct {
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type requestResponse struct {
	ID               int64             `json:"id"`
	CreatorID        int64             `json:"creator_id"`
	SignatoryID      int64             `json:"signatory_id"`
	ExecutorID       *int64            `json:"executor_id"`
	ModeratorGroupID *int64            `json:"moderator_group_id"`
	CategoryID       *int64            `json:"category_id"`
	RegionID         *int64            `json:"region_id"`
	CityID           *int64            `json:"city_id"`
	Description      string            `json:"description"`
	Address          *string           `json:"address"`
	ContactNumber    *string           `json:"contact_number"`
	Status           domain.Status     `json:"status"`
	AvailableActions []string          `json:"available_actions"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Covers           []coverResponse   `json:"covers,omitempty"`
	Files            []fileResponse    `json:"files,omitempty"`
	History          []historyResponse `json:"history,omitempty"`
	Rating           *ratingResponse   `json:"rating,omitempty"`
}

type requestPageResponse struct {
	Items    []requestResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type groupResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	RegionIDs   []int64 `json:"region_ids"`
	CityIDs     []int64 `json:"city_ids"`
	CategoryIDs []int64 `json:"category_ids"`
	MemberIDs   []int64 `json:"member_ids"`
}

type userResponse struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	MiddleName  *string `json:"middle_name"`
	PhoneNumber *string `json:"phone_number"`
	Role        string  `json:"role"`
	IsActive    bool    `json:"is_active"`
	FullName    string  `json:"full_name"`
}

func toRequestResponse(req *domain.ServiceRequest) requestResponse {
	resp := requestResponse{
		ID:               req.ID,
		CreatorID:        req.CreatorID,
		SignatoryID:      req.SignatoryID,
		ExecutorID:       req.ExecutorID,
		ModeratorGroupID: req.ModeratorGroupID,
		CategoryID:       req.CategoryID,
		RegionID:         req.RegionID,
		CityID:           req.CityID,
		Description:      req.Description,
		Address:          req.Address,
		ContactNumber:    req.ContactNumber,
		Status:           req.Status,
		AvailableActions: []string{},
		CreatedAt:        req.CreatedAt,
		UpdatedAt:        req.UpdatedAt,
	}

	for _, a := range lifecycle.Available(req.Status) {
		resp.AvailableActions = append(resp.AvailableActions, string(a))
	}

	for _, c := range req.Covers {
		resp.Covers = append(resp.Covers, coverResponse{ID: c.ID, SourceURL: c.SourceURL, Alt: c.Alt, Position: c.Position})
	}

	for _, f := range req.Files {
		resp.Files = append(resp.Files, fileResponse{ID: f.ID, Title: f.Title, URL: f.URL})
	}

	for _, h := range req.History {
		resp.History = append(resp.History, historyResponse{
			ID:                  h.ID,
			UserID:              h.UserID,
			Action:              h.Action,
			Details:             h.Details,
			Comment:             h.Comment,
			UserFullName:        h.UserFullName,
			RelatedUserFullName: h.RelatedUserFullName,
			CreatedAt:           h.CreatedAt,
		})
	}

	if req.Rating != nil {
		resp.Rating = &ratingResponse{
			UserID:    req.Rating.UserID,
			Rating:    req.Rating.Rating,
			Comment:   req.Rating.Comment,
			CreatedAt: req.Rating.CreatedAt,
		}
	}

	return resp
}

func toRequestPageResponse(page *domain.RequestPage) requestPageResponse {
	items := make([]requestResponse, len(page.Items))
	for i := range page.Items {
		items[i] = toRequestResponse(&page.Items[i])
	}

	return requestPageResponse{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}

	return ids
}

func toGroupResponse(g domain.ModeratorGroup) groupResponse {
	return groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		RegionIDs:   nonNil(g.RegionIDs),
		CityIDs:     nonNil(g.CityIDs),
		CategoryIDs: nonNil(g.CategoryIDs),
		MemberIDs:   nonNil(g.MemberIDs),
	}
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		MiddleName:  u.MiddleName,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		IsActive:    u.IsActive,
		FullName:    u.FullName(),
	}
}

type mediaResponse struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type delayReasonResponse struct {
	ID        int64           `json:"id"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
	Media     []mediaResponse `json:"media"`
}

type taskResponse struct {
	ID          int64                `json:"id"`
	RepairID    int64                `json:"repair_id"`
	Name        string               `json:"name"`
	Status      domain.TaskStatus    `json:"status"`
	DueDate     string               `json:"due_date"`
	Description *string              `json:"description"`
	TaskType    domain.TaskType      `json:"task_type"`
	Budget      *int64               `json:"budget"`
	MOL         *string              `json:"mol"`
	CreatedAt   time.Time            `json:"created_at"`
	Media       []mediaResponse      `json:"media"`
	DelayReason *delayReasonResponse `json:"delay_reason"`
}

type repairResponse struct {
	ID              int64                `json:"id"`
	Name            string               `json:"name"`
	Region          *string              `json:"region"`
	Oblast          *string              `json:"oblast"`
	Description     *string              `json:"description"`
	Address         string               `json:"address"`
	MOL             *string              `json:"mol"`
	StartDate       string               `json:"start_date"`
	EndDate         string               `json:"end_date"`
	RepairType      domain.RepairType    `json:"repair_type"`
	Floor           *int                 `json:"floor"`
	Status          domain.RepairStatus  `json:"status"`
	Budget          *int64               `json:"budget"`
	BudgetType      *string              `json:"budget_type"`
	CreatedAt       time.Time            `json:"created_at"`
	Progress        float64              `json:"progress"`
	BudgetProgress  float64              `json:"budget_progress"`
	Tasks           []taskResponse       `json:"tasks"`
	StartMedia      []mediaResponse      `json:"start_media"`
	CompletionMedia []mediaResponse      `json:"completion_media"`
	DelayReason     *delayReasonResponse `json:"delay_reason"`
}

type repairPageResponse struct {
	Items    []repairResponse `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func toMediaResponse(media []domain.Media) []mediaResponse {
	out := make([]mediaResponse, len(media))
	for i, m := range media {
		out[i] = mediaResponse{ID: m.ID, URL: m.URL, UploadedAt: m.UploadedAt}
	}

	return out
}

func toDelayReasonResponse(d *domain.DelayReason) *delayReasonResponse {
	if d == nil {
		return nil
	}

	return &delayReasonResponse{
		ID:        d.ID,
		Reason:    d.Reason,
		CreatedAt: d.CreatedAt,
		Media:     toMediaResponse(d.Media),
	}
}

func toTaskResponse(t *domain.RepairTask) taskResponse {
	return taskResponse{
		ID:          t.ID,
		RepairID:    t.RepairID,
		Name:        t.Name,
		Status:      t.Status,
		DueDate:     t.DueDate.Format(dateLayout),
		Description: t.Description,
		TaskType:    t.TaskType,
		Budget:      t.Budget,
		MOL:         t.MOL,
		CreatedAt:   t.CreatedAt,
		Media:       toMediaResponse(t.Media),
		DelayReason: toDelayReasonResponse(t.DelayReason),
	}
}

func toRepairResponse(r *domain.Repair) repairResponse {
	resp := repairResponse{
		ID:              r.ID,
		Name:            r.Name,
		Region:          r.Region,
		Oblast:          r.Oblast,
		Description:     r.Description,
		Address:         r.Address,
		MOL:             r.MOL,
		StartDate:       r.StartDate.Format(dateLayout),
		EndDate:         r.EndDate.Format(dateLayout),
		RepairType:      r.RepairType,
		Floor:           r.Floor,
		Status:          r.Status,
		Budget:          r.Budget,
		BudgetType:      r.BudgetType,
		CreatedAt:       r.CreatedAt,
		Progress:        r.Progress(),
		BudgetProgress:  r.BudgetProgress(),
		Tasks:           make([]taskResponse, len(r.Tasks)),
		StartMedia:      toMediaResponse(r.StartMedia),
		CompletionMedia: toMediaResponse(r.CompletionMedia),
		DelayReason:     toDelayReasonResponse(r.DelayReason),
	}

	for i := range r.Tasks {
		resp.Tasks[i] = toTaskResponse(&r.Tasks[i])
	}

	return resp
}

func toRepairPageResponse(page *domain.RepairPage) repairPageResponse {
	items := make([]repairResponse, len(page.Items))
	for i := range page.Items {
		items[i] = toRepairResponse(&page.Items[i])
	}

	return repairPageResponse{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
}
