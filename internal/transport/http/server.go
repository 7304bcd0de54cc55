// Package http exposes the request workflow, the catalog and the repair board over a JSON API routed with chi.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/YusovID/service-requests/internal/service"
	"github.com/YusovID/service-requests/internal/validation"
	"github.com/YusovID/service-requests/pkg/logger/sl"
	"github.com/YusovID/service-requests/swagger"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	log      *slog.Logger
	workflow service.RequestWorkflowService
	catalog  service.CatalogService
	repairs  service.RepairService
}

func NewServer(
	log *slog.Logger,
	workflow service.RequestWorkflowService,
	catalog service.CatalogService,
	repairs service.RepairService,
) *Server {
	return &Server{
		log:      log,
		workflow: workflow,
		catalog:  catalog,
		repairs:  repairs,
	}
}

func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Handle("/metrics", promhttp.Handler())
	mux.Mount("/swagger", http.StripPrefix("/swagger", swagger.GetHandler()))

	mux.Route("/requests", func(r chi.Router) {
		r.Post("/", s.createRequest)
		r.Get("/", s.listRequests)
		r.Get("/count_for_signatory", s.countForSignatory)
		r.Get("/pending", s.listPending)
		r.Get("/for_executor", s.listForExecutor)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getRequest)
			r.Post("/submit", s.action("Submit", s.workflow.Submit))
			r.Post("/sign", s.action("Sign", s.workflow.Sign))
			r.Post("/moderator/review", s.action("Review", s.workflow.Review))
			r.Post("/executor/start", s.action("Start", s.workflow.Start))
			r.Post("/executor/complete", s.action("Complete", s.workflow.Complete))
			r.Post("/reject", s.action("Reject", s.workflow.Reject))
			r.Post("/reject_by_customer", s.action("RejectByCustomer", s.workflow.RejectByCustomer))
			r.Post("/rate", s.action("Rate", s.workflow.Rate))
		})
	})

	mux.Route("/repairs", func(r chi.Router) {
		r.Post("/", s.createRepair)
		r.Get("/", s.listRepairs)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getRepair)
			r.Patch("/", s.updateRepair)
			r.Patch("/complete", s.completeRepair)
			r.Post("/add-delay-reason", s.addRepairDelayReason)
		})
	})

	mux.Route("/tasks", func(r chi.Router) {
		r.Post("/", s.createTask)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getTask)
			r.Patch("/", s.updateTask)
			r.Patch("/complete", s.completeTask)
			r.Post("/add-delay-reason", s.addTaskDelayReason)
		})
	})

	mux.Get("/regions", s.listRegions)
	mux.Post("/regions", s.createRegion)
	mux.Get("/cities", s.listCities)
	mux.Post("/cities", s.createCity)
	mux.Get("/categories", s.listCategories)
	mux.Post("/categories", s.createCategory)
	mux.Get("/groups", s.listGroups)
	mux.Post("/groups", s.createGroup)
	mux.Post("/users", s.upsertUsers)
	mux.Get("/users/{id}", s.getUser)

	return mux
}

func (s *Server) respond(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

func (s *Server) respondAPIError(w http.ResponseWriter, code int, apiCode, message string) {
	s.respond(w, code, errorResponse{Error: errorBody{Code: apiCode, Message: message}})
}

func (s *Server) decodeAndValidate(r *http.Request, v any) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	return validation.ValidateStruct(v)
}

func (s *Server) decode(body io.ReadCloser, v any) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id '%s' is not a positive integer", apperrors.ErrInvalidRequest, raw)
	}

	return id, nil
}

// handleServiceError maps error kinds to statuses. Typed errors keep their own message,
// anything unrecognised is a 500 with a generic body.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := s.log.With(slog.String("op", op), slog.String("request_id", getRequestID(r.Context())))

	var (
		validationErr *validation.ValidationError
		transitionErr *apperrors.InvalidTransitionError
		missingErr    *apperrors.MissingFieldError
		notFoundErr   *apperrors.NotFoundError
		existsErr     *apperrors.AlreadyExistsError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Info("validation failed", sl.Err(err))
		s.respondAPIError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		log.Info("invalid request", sl.Err(err))
		s.respondAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", apperrors.ErrInvalidRequest.Error())
	case errors.As(err, &missingErr):
		s.respondAPIError(w, http.StatusBadRequest, "MISSING_FIELD", missingErr.Error())
	case errors.Is(err, apperrors.ErrInvalidRating):
		s.respondAPIError(w, http.StatusBadRequest, "INVALID_RATING", apperrors.ErrInvalidRating.Error())
	case errors.As(err, &notFoundErr):
		s.respondAPIError(w, http.StatusNotFound, "NOT_FOUND", notFoundErr.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		s.respondAPIError(w, http.StatusNotFound, "NOT_FOUND", apperrors.ErrNotFound.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		s.respondAPIError(w, http.StatusForbidden, "FORBIDDEN", apperrors.ErrForbidden.Error())
	case errors.As(err, &transitionErr):
		s.respondAPIError(w, http.StatusConflict, "INVALID_TRANSITION", transitionErr.Error())
	case errors.Is(err, apperrors.ErrInvalidTransition):
		s.respondAPIError(w, http.StatusConflict, "INVALID_TRANSITION", apperrors.ErrInvalidTransition.Error())
	case errors.As(err, &existsErr):
		s.respondAPIError(w, http.StatusConflict, "ALREADY_EXISTS", existsErr.Error())
	case errors.Is(err, apperrors.ErrResolutionFailure):
		s.respondAPIError(w, http.StatusUnprocessableEntity, "RESOLUTION_FAILURE", apperrors.ErrResolutionFailure.Error())
	default:
		log.Error("service error occurred", sl.Err(err))
		s.respondAPIError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
