package domain

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusSigned      Status = "signed"
	StatusUnderReview Status = "under_review" // declared, no transition produces it
	StatusApproved    Status = "approved"
	StatusAssigned    Status = "assigned" // declared, no transition produces it
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusRejected    Status = "rejected"
	StatusRated       Status = "rated"
)

var validStatuses = map[Status]bool{
	StatusPending:     true,
	StatusSigned:      true,
	StatusUnderReview: true,
	StatusApproved:    true,
	StatusAssigned:    true,
	StatusInProgress:  true,
	StatusCompleted:   true,
	StatusRejected:    true,
	StatusRated:       true,
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

func (s Status) String() string {
	return string(s)
}

// ParseStatuses splits a comma separated list such as "approved,in_progress".
func ParseStatuses(raw string) ([]Status, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	statuses := make([]Status, 0, len(parts))

	for _, p := range parts {
		s := Status(strings.TrimSpace(p))
		if !s.IsValid() {
			return nil, fmt.Errorf("unknown status '%s'", p)
		}

		statuses = append(statuses, s)
	}

	return statuses, nil
}

type User struct {
	ID          int64   `db:"id"`
	Email       string  `db:"email"`
	FirstName   string  `db:"first_name"`
	LastName    string  `db:"last_name"`
	MiddleName  *string `db:"middle_name"`
	PhoneNumber *string `db:"phone_number"`
	Role        string  `db:"role"`
	IsActive    bool    `db:"is_active"`
}

// FullName is the display name captured into history entries.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type Region struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type City struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	RegionID int64  `db:"region_id" json:"region_id"`
}

type Category struct {
	ID   int64  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

type ModeratorGroup struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	RegionIDs   []int64 `db:"-"`
	CityIDs     []int64 `db:"-"`
	CategoryIDs []int64 `db:"-"`
	MemberIDs   []int64 `db:"-"`
}

// Covers reports whether the group is responsible for the triple. All three must match.
func (g ModeratorGroup) Covers(categoryID, regionID, cityID int64) bool {
	return containsID(g.CategoryIDs, categoryID) &&
		containsID(g.RegionIDs, regionID) &&
		containsID(g.CityIDs, cityID)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}

	return false
}

type ServiceRequest struct {
	ID               int64     `db:"id"`
	CreatorID        int64     `db:"creator_id"`
	SignatoryID      int64     `db:"signatory_id"`
	ExecutorID       *int64    `db:"executor_id"`
	ModeratorGroupID *int64    `db:"moderator_group_id"`
	CategoryID       *int64    `db:"category_id"`
	RegionID         *int64    `db:"region_id"`
	CityID           *int64    `db:"city_id"`
	Description      string    `db:"description"`
	Address          *string   `db:"address"`
	ContactNumber    *string   `db:"contact_number"`
	Status           Status    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`

	Covers  []Cover        `db:"-"`
	Files   []File         `db:"-"`
	History []HistoryEntry `db:"-"`
	Rating  *Rating        `db:"-"`
}

// Coverage returns the resolver key. ok is false when any part was nulled.
func (r ServiceRequest) Coverage() (categoryID, regionID, cityID int64, ok bool) {
	if r.CategoryID == nil || r.RegionID == nil || r.CityID == nil {
		return 0, 0, 0, false
	}

	return *r.CategoryID, *r.RegionID, *r.CityID, true
}

type Cover struct {
	ID        int64   `db:"id"`
	RequestID int64   `db:"request_id"`
	SourceURL *string `db:"source_url"`
	Alt       *string `db:"alt"`
	Position  int     `db:"position"`
}

type File struct {
	ID        int64   `db:"id"`
	RequestID int64   `db:"request_id"`
	Title     *string `db:"title"`
	URL       string  `db:"url"`
}

type HistoryEntry struct {
	ID                  int64     `db:"id"`
	RequestID           int64     `db:"request_id"`
	UserID              int64     `db:"user_id"`
	Action              string    `db:"action"`
	Details             *string   `db:"details"`
	Comment             *string   `db:"comment"`
	UserFullName        *string   `db:"user_full_name"`
	RelatedUserFullName *string   `db:"related_user_full_name"`
	CreatedAt           time.Time `db:"created_at"`
}

type Rating struct {
	RequestID int64     `db:"request_id"`
	UserID    int64     `db:"user_id"`
	Rating    int       `db:"rating"`
	Comment   *string   `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

// RequestFilter is applied conjunctively, zero values are ignored.
type RequestFilter struct {
	GroupIDs    []int64
	Statuses    []Status
	SignatoryID *int64
	ExecutorID  *int64
	CreatorID   *int64
	MemberID    *int64
	Page        int
	PageSize    int
}

type RequestPage struct {
	Items    []ServiceRequest
	Total    int
	Page     int
	PageSize int
}

type NewRequest struct {
	CreatorID     int64
	SignatoryID   int64
	CategoryID    *int64
	RegionID      *int64
	CityID        *int64
	Description   string
	Address       *string
	ContactNumber *string
	Comment       string
	Covers        []Cover
	Files         []File
}

// StateUpdate is written only when the stored status still equals From.
// Nil ModeratorGroupID and ExecutorID leave the current bindings untouched.
type StateUpdate struct {
	RequestID        int64
	From             Status
	To               Status
	ModeratorGroupID *int64
	ExecutorID       *int64
}
