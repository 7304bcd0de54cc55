package http

type coverPayload struct {
	SourceURL *string `json:"source_url" validate:"omitempty,url,max=500"`
	Alt       *string `json:"alt" validate:"omitempty,max=255"`
	Position  int     `json:"position" validate:"gte=0"`
}

type filePayload struct {
	Title *string `json:"title" validate:"omitempty,max=255"`
	URL   string  `json:"url" validate:"required,url,max=500"`
}

type createRequestRequest struct {
	CreatorID     int64          `json:"creator_id"`
	SignatoryID   int64          `json:"signatory_id"`
	CategoryID    *int64         `json:"category_id" validate:"omitempty,gt=0"`
	RegionID      *int64         `json:"region_id" validate:"omitempty,gt=0"`
	CityID        *int64         `json:"city_id" validate:"omitempty,gt=0"`
	Description   string         `json:"description" validate:"max=5000"`
	Address       *string        `json:"address" validate:"omitempty,max=500"`
	ContactNumber *string        `json:"contact_number" validate:"omitempty,phone"`
	Comment       string         `json:"comment" validate:"max=2000"`
	Covers        []coverPayload `json:"covers" validate:"omitempty,dive"`
	Files         []filePayload  `json:"files" validate:"omitempty,dive"`
}

// actionRequest is the body shared by every transition. Fields an action does not use are ignored.
type actionRequest struct {
	UserID     int64  `json:"user_id"`
	Comment    string `json:"comment" validate:"max=2000"`
	ExecutorID int64  `json:"executor_id" validate:"gte=0"`
	Rating     int    `json:"rating"`
}

type createRegionRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type createCityRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	RegionID int64  `json:"region_id" validate:"required,gt=0"`
}

type createCategoryRequest struct {
	Code string `json:"code" validate:"required,code,max=50"`
	Name string `json:"name" validate:"required,max=255"`
}

type createGroupRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	RegionIDs   []int64 `json:"region_ids" validate:"omitempty,dive,gt=0"`
	CityIDs     []int64 `json:"city_ids" validate:"omitempty,dive,gt=0"`
	CategoryIDs []int64 `json:"category_ids" validate:"omitempty,dive,gt=0"`
	MemberIDs   []int64 `json:"member_ids" validate:"omitempty,dive,gt=0"`
}

type userPayload struct {
	Email       string  `json:"email" validate:"required,email,max=255"`
	FirstName   string  `json:"first_name" validate:"required,max=150"`
	LastName    string  `json:"last_name" validate:"required,max=150"`
	MiddleName  *string `json:"middle_name" validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,phone"`
	Role        string  `json:"role" validate:"omitempty,oneof=guest employee signatory moderator executor admin"`
	IsActive    *bool   `json:"is_active"`
}

type upsertUsersRequest struct {
	Users []userPayload `json:"users" validate:"required,min=1,dive"`
}

// Dates of the repair board travel as "2006-01-02".
const dateLayout = "2006-01-02"

type createRepairRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Region      *string  `json:"region" validate:"omitempty,max=255"`
	Oblast      *string  `json:"oblast" validate:"omitempty,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Address     string   `json:"address" validate:"required,max=500"`
	MOL         *string  `json:"mol" validate:"omitempty,max=255"`
	StartDate   string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	RepairType  string   `json:"repair_type" validate:"required,oneof=internal external"`
	Floor       *int     `json:"floor"`
	Status      string   `json:"status" validate:"omitempty,oneof=in_progress completed delayed"`
	Budget      *int64   `json:"budget" validate:"omitempty,gte=0"`
	BudgetType  *string  `json:"budget_type" validate:"omitempty,max=100"`
	StartMedia  []string `json:"start_media" validate:"omitempty,dive,url,max=500"`
}

type updateRepairRequest struct {
	Name            *string  `json:"name" validate:"omitempty,max=255"`
	Description     *string  `json:"description" validate:"omitempty,max=5000"`
	Status          *string  `json:"status" validate:"omitempty,oneof=in_progress completed delayed"`
	StartMedia      []string `json:"start_media" validate:"omitempty,dive,url,max=500"`
	CompletionMedia []string `json:"completion_media" validate:"omitempty,dive,url,max=500"`
}

type completeRepairRequest struct {
	CompletionMedia []string `json:"completion_media" validate:"omitempty,dive,url,max=500"`
}

type delayReasonRequest struct {
	Reason string   `json:"reason" validate:"required,max=2000"`
	Media  []string `json:"media" validate:"omitempty,dive,url,max=500"`
}

type createTaskRequest struct {
	RepairID    int64   `json:"repair_id" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required,max=255"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     string  `json:"due_date" validate:"required,datetime=2006-01-02"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	TaskType    string  `json:"task_type" validate:"required,oneof=electrical plumbing structural painting"`
	Budget      *int64  `json:"budget" validate:"omitempty,gte=0"`
	MOL         *string `json:"mol" validate:"omitempty,max=255"`
}

type updateTaskRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Status      *string  `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Media       []string `json:"media" validate:"omitempty,dive,url,max=500"`
}

type completeTaskRequest struct {
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Media       []string `json:"media" validate:"omitempty,dive,url,max=500"`
}
