package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/YusovID/service-requests/internal/domain"
)

func (s *Server) createRepair(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CreateRepair"

	var body createRepairRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	// Both dates already passed the datetime rule.
	start, _ := time.Parse(dateLayout, body.StartDate)
	end, _ := time.Parse(dateLayout, body.EndDate)

	repair, err := s.repairs.CreateRepair(r.Context(), domain.Repair{
		Name:        body.Name,
		Region:      body.Region,
		Oblast:      body.Oblast,
		Description: body.Description,
		Address:     body.Address,
		MOL:         body.MOL,
		StartDate:   start,
		EndDate:     end,
		RepairType:  domain.RepairType(body.RepairType),
		Floor:       body.Floor,
		Status:      domain.RepairStatus(body.Status),
		Budget:      body.Budget,
		BudgetType:  body.BudgetType,
	}, body.StartMedia)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]repairResponse{"repair": toRepairResponse(repair)})
}

func (s *Server) getRepair(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetRepair"

	id, err := pathID(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	repair, err := s.repairs.GetRepair(r.Context(), id)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]repairResponse{"repair": toRepairResponse(repair)})
}

func (s *Server) listRepairs(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.ListRepairs"

	filter, err := repairFilterFromQuery(r.URL.Query())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	if filter.Page, filter.PageSize, err = queryPage(r); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	page, err := s.repairs.ListRepairs(r.Context(), filter)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, toRepairPageResponse(page))
}

func repairFilterFromQuery(q url.Values) (domain.RepairFilter, error) {
	filter := domain.RepairFilter{
		Name:        q.Get("name"),
		Region:      q.Get("region"),
		Oblast:      q.Get("oblast"),
		Description: q.Get("description"),
		Address:     q.Get("address"),
		MOL:         q.Get("mol"),
	}

	for _, t := range strings.Split(q.Get("repair_type"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			filter.RepairTypes = append(filter.RepairTypes, domain.RepairType(t))
		}
	}

	for key, dst := range map[string]**time.Time{
		"start_after":  &filter.StartAfter,
		"start_before": &filter.StartBefore,
		"end_after":    &filter.EndAfter,
		"end_before":   &filter.EndBefore,
	} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}

		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, fmt.Errorf("%w: %s must be a date like %s", apperrors.ErrInvalidRequest, key, dateLayout)
		}

		*dst = &d
	}

	for key, dst := range map[string]**int{"floor_min": &filter.FloorMin, "floor_max": &filter.FloorMax} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}

		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: %s must be an integer", apperrors.ErrInvalidRequest, key)
		}

		*dst = &v
	}

	return filter, nil
}

func (s *Server) updateRepair(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.UpdateRepair"

	id, err := pathID(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	var body updateRepairRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	patch := domain.RepairPatch{
		Name:            body.Name,
		Description:     body.Description,
		StartMedia:      body.StartMedia,
		CompletionMedia: body.CompletionMedia,
	}

	if body.Status != nil {
		status := domain.RepairStatus(*body.Status)
		patch.Status = &status
	}

	repair, err := s.repairs.UpdateRepair(r.Context(), id, patch)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]repairResponse{"repair": toRepairResponse(repair)})
}

func (s *Server) completeRepair(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CompleteRepair"

	id, err := pathID(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	var body completeRepairRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	repair, err := s.repairs.CompleteRepair(r.Context(), id, body.CompletionMedia)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]repairResponse{"repair": toRepairResponse(repair)})
}

func (s *Server) addRepairDelayReason(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.AddRepairDelayReason"

	id, err := pathID(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	var body delayReasonRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	reason, err := s.repairs.AddRepairDelayReason(r.Context(), id, domain.NewDelayReason{Reason: body.Reason, Media: body.Media})
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]*delayReasonResponse{"delay_reason": toDelayReasonResponse(reason)})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CreateTask"

	var body createTaskRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	due, _ := time.Parse(dateLayout, body.DueDate)

	task, err := s.repairs.CreateTask(r.Context(), domain.RepairTask{
		RepairID:    body.RepairID,
		Name:        body.Name,
		Status:      domain.TaskStatus(body.Status),
		DueDate:     due,
		Description: body.Description,
		TaskType:    domain.TaskType(body.TaskType),
		Budget:      body.Budget,
		MOL:         body.MOL,
	})
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]taskResponse{"task": toTaskResponse(task)})
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetTask"

	id, err := pathID(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	task, err := s.repairs.GetTask(r.Context(), id)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]taskResponse{"task": toTaskResponse(task)})
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.UpdateTask"

	id, err := pathID(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	var body updateTaskRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	patch := domain.TaskPatch{Name: body.Name, Description: body.Description, Media: body.Media}
	if body.Status != nil {
		status := domain.TaskStatus(*body.Status)
		patch.Status = &status
	}

	task, err := s.repairs.UpdateTask(r.Context(), id, patch)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]taskResponse{"task": toTaskResponse(task)})
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CompleteTask"

	id, err := pathID(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	var body completeTaskRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	task, err := s.repairs.CompleteTask(r.Context(), id, body.Description, body.Media)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]taskResponse{"task": toTaskResponse(task)})
}

func (s *Server) addTaskDelayReason(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.AddTaskDelayReason"

	id, err := pathID(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	var body delayReasonRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	reason, err := s.repairs.AddTaskDelayReason(r.Context(), id, domain.NewDelayReason{Reason: body.Reason, Media: body.Media})
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]*delayReasonResponse{"delay_reason": toDelayReasonResponse(reason)})
}
