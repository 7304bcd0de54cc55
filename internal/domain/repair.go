package domain

import "time"

type RepairStatus string

const (
	RepairInProgress RepairStatus = "in_progress"
	RepairCompleted  RepairStatus = "completed"
	RepairDelayed    RepairStatus = "delayed"
)

func (s RepairStatus) IsValid() bool {
	switch s {
	case RepairInProgress, RepairCompleted, RepairDelayed:
		return true
	}

	return false
}

type RepairType string

const (
	RepairInternal RepairType = "internal"
	RepairExternal RepairType = "external"
)

func (t RepairType) IsValid() bool {
	return t == RepairInternal || t == RepairExternal
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}

	return false
}

type TaskType string

const (
	TaskElectrical TaskType = "electrical"
	TaskPlumbing   TaskType = "plumbing"
	TaskStructural TaskType = "structural"
	TaskPainting   TaskType = "painting"
)

func (t TaskType) IsValid() bool {
	switch t {
	case TaskElectrical, TaskPlumbing, TaskStructural, TaskPainting:
		return true
	}

	return false
}

// MediaKind tells which stage of a repair an attachment documents.
type MediaKind string

const (
	MediaStart      MediaKind = "start"
	MediaCompletion MediaKind = "completion"
)

// Media is a stored reference to an uploaded photo, video or document.
type Media struct {
	ID         int64     `db:"id"`
	URL        string    `db:"url"`
	UploadedAt time.Time `db:"uploaded_at"`
}

// DelayReason explains a delay. A repair or a task has at most one.
type DelayReason struct {
	ID        int64     `db:"id"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
	Media     []Media   `db:"-"`
}

// Repair is a facility repair tracked through its tasks.
type Repair struct {
	ID          int64        `db:"id"`
	Name        string       `db:"name"`
	Region      *string      `db:"region"`
	Oblast      *string      `db:"oblast"`
	Description *string      `db:"description"`
	Address     string       `db:"address"`
	MOL         *string      `db:"mol"` // materially responsible person
	StartDate   time.Time    `db:"start_date"`
	EndDate     time.Time    `db:"end_date"`
	RepairType  RepairType   `db:"repair_type"`
	Floor       *int         `db:"floor"`
	Status      RepairStatus `db:"status"`
	Budget      *int64       `db:"budget"`
	BudgetType  *string      `db:"budget_type"`
	CreatedAt   time.Time    `db:"created_at"`

	Tasks           []RepairTask `db:"-"`
	StartMedia      []Media      `db:"-"`
	CompletionMedia []Media      `db:"-"`
	DelayReason     *DelayReason `db:"-"`
}

// Progress is the share of completed tasks in percent, 0 for a repair without tasks.
func (r Repair) Progress() float64 {
	if len(r.Tasks) == 0 {
		return 0
	}

	var done int
	for _, t := range r.Tasks {
		if t.Status == TaskCompleted {
			done++
		}
	}

	return float64(done) / float64(len(r.Tasks)) * 100
}

// BudgetProgress is the budget of completed tasks against the repair budget in percent.
// It is 0 when the repair has no positive budget.
func (r Repair) BudgetProgress() float64 {
	if r.Budget == nil || *r.Budget <= 0 {
		return 0
	}

	var spent int64
	for _, t := range r.Tasks {
		if t.Status == TaskCompleted && t.Budget != nil {
			spent += *t.Budget
		}
	}

	return float64(spent) / float64(*r.Budget) * 100
}

type RepairTask struct {
	ID          int64      `db:"id"`
	RepairID    int64      `db:"repair_id"`
	Name        string     `db:"name"`
	Status      TaskStatus `db:"status"`
	DueDate     time.Time  `db:"due_date"`
	Description *string    `db:"description"`
	TaskType    TaskType   `db:"task_type"`
	Budget      *int64     `db:"budget"`
	MOL         *string    `db:"mol"`
	CreatedAt   time.Time  `db:"created_at"`

	Media       []Media      `db:"-"`
	DelayReason *DelayReason `db:"-"`
}

// RepairFilter is applied conjunctively. Text fields match case-insensitive substrings,
// date and floor bounds are inclusive.
type RepairFilter struct {
	Name        string
	Region      string
	Oblast      string
	Description string
	Address     string
	MOL         string
	RepairTypes []RepairType
	StartAfter  *time.Time
	StartBefore *time.Time
	EndAfter    *time.Time
	EndBefore   *time.Time
	FloorMin    *int
	FloorMax    *int
	Page        int
	PageSize    int
}

type RepairPage struct {
	Items    []Repair
	Total    int
	Page     int
	PageSize int
}

// RepairPatch changes only the non-nil fields and appends the given media.
type RepairPatch struct {
	Name            *string
	Description     *string
	Status          *RepairStatus
	StartMedia      []string
	CompletionMedia []string
}

// TaskPatch changes only the non-nil fields and appends the given media.
type TaskPatch struct {
	Name        *string
	Description *string
	Status      *TaskStatus
	Media       []string
}

// NewDelayReason is the payload of a delay report.
type NewDelayReason struct {
	Reason string
	Media  []string
}
