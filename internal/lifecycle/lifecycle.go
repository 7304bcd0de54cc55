// Package lifecycle holds the service request state machine as an explicit dispatch table.
// It performs no I/O: Plan validates an action against a request and describes the effect,
// the service layer persists that effect in one unit of work.
package lifecycle

import (
	"fmt"

	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/YusovID/service-requests/internal/domain"
)

type Action string

const (
	ActionSubmit           Action = "submit"
	ActionSign             Action = "sign"
	ActionReview           Action = "review"
	ActionStart            Action = "start"
	ActionComplete         Action = "complete"
	ActionReject           Action = "reject"
	ActionRejectByCustomer Action = "reject_by_customer"
	ActionRate             Action = "rate"
)

const ReworkDetails = "sent back for rework"

// Input carries the actor and the optional payload of an action.
type Input struct {
	ActorID    int64
	ExecutorID int64
	Comment    string
	Rating     int
}

// Effect describes a permitted transition.
type Effect struct {
	Action        Action
	From          domain.Status
	To            domain.Status
	HistoryAction string
	Details       string
	Comment       string
	// NotifyStatus is the label sent to the workflow engine, empty when the engine is not told.
	NotifyStatus string
	ResolveGroup bool
	BindExecutor bool
	UpsertRating bool
}

type rule struct {
	from         []domain.Status // empty: any status
	to           domain.Status
	history      string
	notify       string
	keepComment  bool
	resolveGroup bool
	bindExecutor bool
	upsertRating bool
	// guard runs before the status check, validate after it.
	guard    func(req *domain.ServiceRequest, in Input) error
	validate func(in Input) error
	details  func(in Input) string
}

var rules = map[Action]rule{
	ActionSubmit: {
		to:      domain.StatusPending,
		history: "submitted",
		notify:  "submitted",
	},
	ActionSign: {
		from:         []domain.Status{domain.StatusPending},
		to:           domain.StatusSigned,
		history:      "signed",
		notify:       "signed",
		keepComment:  true,
		resolveGroup: true,
	},
	ActionReview: {
		from:         []domain.Status{domain.StatusSigned},
		to:           domain.StatusApproved,
		history:      "reviewed",
		notify:       "approved",
		bindExecutor: true,
		validate:     requireExecutor,
	},
	ActionStart: {
		from:    []domain.Status{domain.StatusApproved},
		to:      domain.StatusInProgress,
		history: "started",
		notify:  "in_progress",
	},
	ActionComplete: {
		from:    []domain.Status{domain.StatusInProgress},
		to:      domain.StatusCompleted,
		history: "completed",
		notify:  "completed",
	},
	ActionReject: {
		from:        []domain.Status{domain.StatusPending},
		to:          domain.StatusRejected,
		history:     "rejected",
		keepComment: true,
	},
	ActionRejectByCustomer: {
		from:    []domain.Status{domain.StatusCompleted},
		to:      domain.StatusInProgress,
		history: "rejected_by_customer",
		notify:  "rejected_by_customer",
		details: func(Input) string { return ReworkDetails },
	},
	ActionRate: {
		from:         []domain.Status{domain.StatusCompleted},
		to:           domain.StatusRated,
		history:      "rated",
		notify:       "rated",
		keepComment:  true,
		upsertRating: true,
		guard:        requireCreator,
		validate:     requireScore,
		details:      func(in Input) string { return fmt.Sprintf("rating: %d", in.Rating) },
	},
}

func (a Action) IsValid() bool {
	_, ok := rules[a]
	return ok
}

// Plan checks the guard, then the status precondition, then the payload.
// A rate attempt by a stranger is refused whatever the status is, and a bad
// score only matters once the request can be rated at all.
func Plan(req *domain.ServiceRequest, action Action, in Input) (*Effect, error) {
	r, ok := rules[action]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action '%s'", apperrors.ErrInvalidRequest, action)
	}

	if in.ActorID == 0 {
		return nil, &apperrors.MissingFieldError{Field: "user_id"}
	}

	if r.guard != nil {
		if err := r.guard(req, in); err != nil {
			return nil, err
		}
	}

	if len(r.from) > 0 && !statusIn(req.Status, r.from) {
		return nil, &apperrors.InvalidTransitionError{
			Action:   string(action),
			Expected: statusStrings(r.from),
			Actual:   string(req.Status),
		}
	}

	if r.validate != nil {
		if err := r.validate(in); err != nil {
			return nil, err
		}
	}

	eff := &Effect{
		Action:        action,
		From:          req.Status,
		To:            r.to,
		HistoryAction: r.history,
		NotifyStatus:  r.notify,
		ResolveGroup:  r.resolveGroup,
		BindExecutor:  r.bindExecutor,
		UpsertRating:  r.upsertRating,
	}

	if r.keepComment {
		eff.Comment = in.Comment
	}

	if r.details != nil {
		eff.Details = r.details(in)
	}

	return eff, nil
}

// Available lists the actions whose status precondition the given status satisfies.
func Available(status domain.Status) []Action {
	order := []Action{
		ActionSubmit, ActionSign, ActionReview, ActionStart,
		ActionComplete, ActionReject, ActionRejectByCustomer, ActionRate,
	}

	var out []Action

	for _, a := range order {
		r := rules[a]
		if len(r.from) == 0 || statusIn(status, r.from) {
			out = append(out, a)
		}
	}

	return out
}

func requireExecutor(in Input) error {
	if in.ExecutorID == 0 {
		return &apperrors.MissingFieldError{Field: "executor_id"}
	}

	return nil
}

func requireCreator(req *domain.ServiceRequest, in Input) error {
	if req.CreatorID != in.ActorID {
		return fmt.Errorf("%w: only the creator can rate request '%d'", apperrors.ErrForbidden, req.ID)
	}

	return nil
}

func requireScore(in Input) error {
	if in.Rating < 1 || in.Rating > 5 {
		return apperrors.ErrInvalidRating
	}

	return nil
}

func statusIn(s domain.Status, set []domain.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}

	return false
}

func statusStrings(set []domain.Status) []string {
	out := make([]string, len(set))
	for i, s := range set {
		out[i] = string(s)
	}

	return out
}
