package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/YusovID/service-requests/internal/domain"
	"github.com/YusovID/service-requests/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/patrickmn/go-cache"
)

// CatalogService manages the reference data the workflow resolves against.
type CatalogService interface {
	CreateRegion(ctx context.Context, name string) (*domain.Region, error)
	CreateCity(ctx context.Context, name string, regionID int64) (*domain.City, error)
	CreateCategory(ctx context.Context, code, name string) (*domain.Category, error)
	ListRegions(ctx context.Context) ([]domain.Region, error)
	ListCities(ctx context.Context, regionID *int64) ([]domain.City, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)

	CreateGroup(ctx context.Context, group domain.ModeratorGroup) (*domain.ModeratorGroup, error)
	ListGroups(ctx context.Context) ([]domain.ModeratorGroup, error)

	UpsertUsers(ctx context.Context, users []domain.User) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type CatalogServiceImpl struct {
	reader  sqlx.ExtContext
	log     *slog.Logger
	catalog repository.CatalogRepository
	groups  repository.ModeratorGroupRepository
	users   repository.UserRepository
	// lists holds region, city and category listings until a create in the same table.
	lists *cache.Cache
}

const (
	regionsKey    = "regions"
	categoriesKey = "categories"
	allCitiesKey  = "cities:all"
)

func citiesKey(regionID *int64) string {
	if regionID == nil {
		return allCitiesKey
	}

	return "cities:" + strconv.FormatInt(*regionID, 10)
}

var _ CatalogService = (*CatalogServiceImpl)(nil)

func NewCatalogService(
	reader sqlx.ExtContext,
	log *slog.Logger,
	catalog repository.CatalogRepository,
	groups repository.ModeratorGroupRepository,
	users repository.UserRepository,
	cacheTTL time.Duration,
) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		reader:  reader,
		log:     log,
		catalog: catalog,
		groups:  groups,
		users:   users,
		lists:   cache.New(cacheTTL, 2*cacheTTL),
	}
}

func (s *CatalogServiceImpl) CreateRegion(ctx context.Context, name string) (*domain.Region, error) {
	const op = "internal.service.catalog.CreateRegion"

	if strings.TrimSpace(name) == "" {
		return nil, &apperrors.MissingFieldError{Field: "name"}
	}

	region, err := s.catalog.CreateRegion(ctx, name)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	s.lists.Delete(regionsKey)

	s.log.Info("region created", slog.String("op", op), slog.Int64("region_id", region.ID))

	return region, nil
}

func (s *CatalogServiceImpl) CreateCity(ctx context.Context, name string, regionID int64) (*domain.City, error) {
	const op = "internal.service.catalog.CreateCity"

	switch {
	case strings.TrimSpace(name) == "":
		return nil, &apperrors.MissingFieldError{Field: "name"}
	case regionID == 0:
		return nil, &apperrors.MissingFieldError{Field: "region_id"}
	}

	city, err := s.catalog.CreateCity(ctx, name, regionID)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	s.lists.Delete(allCitiesKey)
	s.lists.Delete(citiesKey(&regionID))

	s.log.Info("city created", slog.String("op", op), slog.Int64("city_id", city.ID))

	return city, nil
}

func (s *CatalogServiceImpl) CreateCategory(ctx context.Context, code, name string) (*domain.Category, error) {
	const op = "internal.service.catalog.CreateCategory"

	switch {
	case strings.TrimSpace(code) == "":
		return nil, &apperrors.MissingFieldError{Field: "code"}
	case strings.TrimSpace(name) == "":
		return nil, &apperrors.MissingFieldError{Field: "name"}
	}

	category, err := s.catalog.CreateCategory(ctx, code, name)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	s.lists.Delete(categoriesKey)

	s.log.Info("category created", slog.String("op", op), slog.String("code", code))

	return category, nil
}

func (s *CatalogServiceImpl) ListRegions(ctx context.Context) ([]domain.Region, error) {
	if cached, found := s.lists.Get(regionsKey); found {
		return cached.([]domain.Region), nil
	}

	regions, err := s.catalog.ListRegions(ctx)
	if err != nil {
		return nil, apperrors.Storage("internal.service.catalog.ListRegions", err)
	}

	s.lists.SetDefault(regionsKey, regions)

	return regions, nil
}

func (s *CatalogServiceImpl) ListCities(ctx context.Context, regionID *int64) ([]domain.City, error) {
	key := citiesKey(regionID)
	if cached, found := s.lists.Get(key); found {
		return cached.([]domain.City), nil
	}

	cities, err := s.catalog.ListCities(ctx, regionID)
	if err != nil {
		return nil, apperrors.Storage("internal.service.catalog.ListCities", err)
	}

	s.lists.SetDefault(key, cities)

	return cities, nil
}

func (s *CatalogServiceImpl) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if cached, found := s.lists.Get(categoriesKey); found {
		return cached.([]domain.Category), nil
	}

	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, apperrors.Storage("internal.service.catalog.ListCategories", err)
	}

	s.lists.SetDefault(categoriesKey, categories)

	return categories, nil
}

func (s *CatalogServiceImpl) CreateGroup(ctx context.Context, group domain.ModeratorGroup) (*domain.ModeratorGroup, error) {
	const op = "internal.service.catalog.CreateGroup"

	if strings.TrimSpace(group.Name) == "" {
		return nil, &apperrors.MissingFieldError{Field: "name"}
	}

	created, err := s.groups.CreateGroup(ctx, group)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	return created, nil
}

func (s *CatalogServiceImpl) ListGroups(ctx context.Context) ([]domain.ModeratorGroup, error) {
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		return nil, apperrors.Storage("internal.service.catalog.ListGroups", err)
	}

	return groups, nil
}

// UpsertUsers syncs directory records by email.
func (s *CatalogServiceImpl) UpsertUsers(ctx context.Context, users []domain.User) ([]domain.User, error) {
	const op = "internal.service.catalog.UpsertUsers"

	seen := make(map[string]struct{}, len(users))
	for _, u := range users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" {
			return nil, &apperrors.MissingFieldError{Field: "email"}
		}

		if _, dup := seen[email]; dup {
			return nil, &apperrors.AlreadyExistsError{Entity: "user", Key: u.Email}
		}

		seen[email] = struct{}{}
	}

	saved, err := s.users.UpsertUsers(ctx, users)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	return saved, nil
}

func (s *CatalogServiceImpl) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, s.reader, id)
	if err != nil {
		return nil, apperrors.Storage("internal.service.catalog.GetUser", err)
	}

	return user, nil
}
