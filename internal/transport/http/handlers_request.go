package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/YusovID/service-requests/internal/domain"
	"github.com/YusovID/service-requests/internal/lifecycle"
)

type transitionFunc func(ctx context.Context, requestID int64, in lifecycle.Input) (*domain.ServiceRequest, error)

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CreateRequest"

	var body createRequestRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	in := domain.NewRequest{
		CreatorID:     body.CreatorID,
		SignatoryID:   body.SignatoryID,
		CategoryID:    body.CategoryID,
		RegionID:      body.RegionID,
		CityID:        body.CityID,
		Description:   body.Description,
		Address:       body.Address,
		ContactNumber: body.ContactNumber,
		Comment:       body.Comment,
	}

	for _, c := range body.Covers {
		in.Covers = append(in.Covers, domain.Cover{SourceURL: c.SourceURL, Alt: c.Alt, Position: c.Position})
	}

	for _, f := range body.Files {
		in.Files = append(in.Files, domain.File{Title: f.Title, URL: f.URL})
	}

	req, err := s.workflow.CreateRequest(r.Context(), in)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]requestResponse{"request": toRequestResponse(req)})
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetRequest"

	id, err := pathID(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	req, err := s.workflow.GetRequest(r.Context(), id)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]requestResponse{"request": toRequestResponse(req)})
}

// action adapts one lifecycle transition to a POST /requests/{id}/... handler.
func (s *Server) action(name string, fn transitionFunc) http.HandlerFunc {
	op := "internal.transport.http." + name

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.handleServiceError(w, r, op, err)
			return
		}

		var body actionRequest
		if err := s.decodeAndValidate(r, &body); err != nil {
			s.handleServiceError(w, r, op, err)
			return
		}

		req, err := fn(r.Context(), id, lifecycle.Input{
			ActorID:    body.UserID,
			ExecutorID: body.ExecutorID,
			Comment:    body.Comment,
			Rating:     body.Rating,
		})
		if err != nil {
			s.handleServiceError(w, r, op, err)
			return
		}

		s.respond(w, http.StatusOK, map[string]requestResponse{"request": toRequestResponse(req)})
	}
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.ListRequests"

	q := r.URL.Query()

	var (
		filter domain.RequestFilter
		err    error
	)

	if filter.GroupIDs, err = queryIDList(q.Get("group_ids")); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	if filter.Statuses, err = domain.ParseStatuses(q.Get("status")); err != nil {
		s.handleServiceError(w, r, op, fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err))
		return
	}

	for key, dst := range map[string]**int64{
		"signatory_id": &filter.SignatoryID,
		"executor_id":  &filter.ExecutorID,
		"creator_id":   &filter.CreatorID,
		"member_id":    &filter.MemberID,
	} {
		if *dst, err = queryOptionalID(q.Get(key), key); err != nil {
			s.handleServiceError(w, r, op, err)
			return
		}
	}

	if filter.Page, filter.PageSize, err = queryPage(r); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	page, err := s.workflow.ListRequests(r.Context(), filter)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, toRequestPageResponse(page))
}

func (s *Server) listPending(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.ListPending"

	userID, err := queryRequiredID(r, "user_id")
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	page, pageSize, err := queryPage(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	result, err := s.workflow.ListPendingForCreator(r.Context(), userID, page, pageSize)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, toRequestPageResponse(result))
}

func (s *Server) listForExecutor(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.ListForExecutor"

	executorID, err := queryRequiredID(r, "executor_id")
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	page, pageSize, err := queryPage(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	result, err := s.workflow.ListForExecutor(r.Context(), executorID, page, pageSize)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, toRequestPageResponse(result))
}

func (s *Server) countForSignatory(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CountForSignatory"

	signatoryID, err := queryRequiredID(r, "signatory_id")
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	count, err := s.workflow.CountPendingForSignatory(r.Context(), signatoryID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]int{"count": count})
}

func queryRequiredID(r *http.Request, key string) (int64, error) {
	id, err := queryOptionalID(r.URL.Query().Get(key), key)
	if err != nil {
		return 0, err
	}

	if id == nil {
		return 0, &apperrors.MissingFieldError{Field: key}
	}

	return *id, nil
}

func queryOptionalID(raw, key string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %s must be a positive integer", apperrors.ErrInvalidRequest, key)
	}

	return &id, nil
}

// queryIDList parses "1,2,3".
func queryIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))

	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: bad id '%s' in list", apperrors.ErrInvalidRequest, p)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// queryPage returns zeros for absent values, the service applies defaults and the upper bound.
func queryPage(r *http.Request) (int, int, error) {
	q := r.URL.Query()

	var page, pageSize int

	for key, dst := range map[string]*int{"page": &page, "page_size": &pageSize} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}

		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return 0, 0, fmt.Errorf("%w: %s must be a positive integer", apperrors.ErrInvalidRequest, key)
		}

		*dst = v
	}

	return page, pageSize, nil
}
