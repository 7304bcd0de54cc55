package postgres

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/YusovID/service-requests/internal/domain"
	"github.com/jmoiron/sqlx"
)

type CatalogRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewCatalogRepository(db *sqlx.DB, log *slog.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (cr *CatalogRepository) CreateRegion(ctx context.Context, name string) (*domain.Region, error) {
	const op = "internal.repository.postgres.CreateRegion"

	query, args, err := cr.sq.Insert("regions").
		Columns("name").
		Values(name).
		Suffix("RETURNING id, name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	var region domain.Region
	if err := cr.db.QueryRowxContext(ctx, query, args...).StructScan(&region); err != nil {
		return nil, fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return &region, nil
}

func (cr *CatalogRepository) CreateCity(ctx context.Context, name string, regionID int64) (*domain.City, error) {
	const op = "internal.repository.postgres.CreateCity"

	query, args, err := cr.sq.Insert("cities").
		Columns("name", "region_id").
		Values(name, regionID).
		Suffix("RETURNING id, name, region_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	var city domain.City
	if err := cr.db.QueryRowxContext(ctx, query, args...).StructScan(&city); err != nil {
		if pqCode(err) == foreignKeyViolation {
			return nil, fmt.Errorf("%s: %w", op, &apperrors.NotFoundError{Entity: "region", ID: regionID})
		}

		return nil, fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return &city, nil
}

func (cr *CatalogRepository) CreateCategory(ctx context.Context, code, name string) (*domain.Category, error) {
	const op = "internal.repository.postgres.CreateCategory"

	query, args, err := cr.sq.Insert("request_categories").
		Columns("code", "name").
		Values(code, name).
		Suffix("RETURNING id, code, name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	var category domain.Category
	if err := cr.db.QueryRowxContext(ctx, query, args...).StructScan(&category); err != nil {
		if pqCode(err) == uniqueViolation {
			return nil, &apperrors.AlreadyExistsError{Entity: "category", Key: code}
		}

		return nil, fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return &category, nil
}

func (cr *CatalogRepository) ListRegions(ctx context.Context) ([]domain.Region, error) {
	const op = "internal.repository.postgres.ListRegions"

	query, args, err := cr.sq.Select("id", "name").From("regions").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	regions := []domain.Region{}
	if err := cr.db.SelectContext(ctx, &regions, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return regions, nil
}

func (cr *CatalogRepository) ListCities(ctx context.Context, regionID *int64) ([]domain.City, error) {
	const op = "internal.repository.postgres.ListCities"

	selectBuilder := cr.sq.Select("id", "name", "region_id").From("cities").OrderBy("name")
	if regionID != nil {
		selectBuilder = selectBuilder.Where(sq.Eq{"region_id": *regionID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	cities := []domain.City{}
	if err := cr.db.SelectContext(ctx, &cities, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return cities, nil
}

func (cr *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "internal.repository.postgres.ListCategories"

	query, args, err := cr.sq.Select("id", "code", "name").From("request_categories").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	categories := []domain.Category{}
	if err := cr.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return categories, nil
}
