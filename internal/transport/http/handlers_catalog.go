package http

import (
	"net/http"

	"github.com/YusovID/service-requests/internal/domain"
)

func (s *Server) createRegion(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CreateRegion"

	var body createRegionRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	region, err := s.catalog.CreateRegion(r.Context(), body.Name)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]*domain.Region{"region": region})
}

func (s *Server) listRegions(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.ListRegions"

	regions, err := s.catalog.ListRegions(r.Context())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]domain.Region{"regions": regions})
}

func (s *Server) createCity(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CreateCity"

	var body createCityRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	city, err := s.catalog.CreateCity(r.Context(), body.Name, body.RegionID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]*domain.City{"city": city})
}

func (s *Server) listCities(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.ListCities"

	regionID, err := queryOptionalID(r.URL.Query().Get("region_id"), "region_id")
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	cities, err := s.catalog.ListCities(r.Context(), regionID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]domain.City{"cities": cities})
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CreateCategory"

	var body createCategoryRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	category, err := s.catalog.CreateCategory(r.Context(), body.Code, body.Name)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]*domain.Category{"category": category})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.ListCategories"

	categories, err := s.catalog.ListCategories(r.Context())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]domain.Category{"categories": categories})
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CreateGroup"

	var body createGroupRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	group, err := s.catalog.CreateGroup(r.Context(), domain.ModeratorGroup{
		Name:        body.Name,
		RegionIDs:   body.RegionIDs,
		CityIDs:     body.CityIDs,
		CategoryIDs: body.CategoryIDs,
		MemberIDs:   body.MemberIDs,
	})
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]groupResponse{"group": toGroupResponse(*group)})
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.ListGroups"

	groups, err := s.catalog.ListGroups(r.Context())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	resp := make([]groupResponse, len(groups))
	for i, g := range groups {
		resp[i] = toGroupResponse(g)
	}

	s.respond(w, http.StatusOK, map[string][]groupResponse{"groups": resp})
}

func (s *Server) upsertUsers(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.UpsertUsers"

	var body upsertUsersRequest
	if err := s.decodeAndValidate(r, &body); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	users := make([]domain.User, len(body.Users))
	for i, u := range body.Users {
		users[i] = domain.User{
			Email:       u.Email,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			MiddleName:  u.MiddleName,
			PhoneNumber: u.PhoneNumber,
			Role:        u.Role,
			IsActive:    u.IsActive == nil || *u.IsActive,
		}
	}

	saved, err := s.catalog.UpsertUsers(r.Context(), users)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	resp := make([]userResponse, len(saved))
	for i, u := range saved {
		resp[i] = toUserResponse(u)
	}

	s.respond(w, http.StatusOK, map[string][]userResponse{"users": resp})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetUser"

	id, err := pathID(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	user, err := s.catalog.GetUser(r.Context(), id)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]userResponse{"user": toUserResponse(*user)})
}
