package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/YusovID/service-requests/internal/domain"
	"github.com/YusovID/service-requests/pkg/logger/sl"
	"github.com/jmoiron/sqlx"
)

// coverage link tables and the column each one points at.
var groupLinks = []struct {
	table  string
	column string
	ids    func(g *domain.ModeratorGroup) *[]int64
}{
	{"moderator_group_regions", "region_id", func(g *domain.ModeratorGroup) *[]int64 { return &g.RegionIDs }},
	{"moderator_group_cities", "city_id", func(g *domain.ModeratorGroup) *[]int64 { return &g.CityIDs }},
	{"moderator_group_categories", "category_id", func(g *domain.ModeratorGroup) *[]int64 { return &g.CategoryIDs }},
	{"moderator_group_members", "user_id", func(g *domain.ModeratorGroup) *[]int64 { return &g.MemberIDs }},
}

type ModeratorGroupRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewModeratorGroupRepository(db *sqlx.DB, log *slog.Logger) *ModeratorGroupRepository {
	return &ModeratorGroupRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (gr *ModeratorGroupRepository) FindMatchingGroup(
	ctx context.Context,
	ext sqlx.ExtContext,
	categoryID, regionID, cityID int64,
) (*domain.ModeratorGroup, error) {
	const op = "internal.repository.postgres.FindMatchingGroup"

	query, args, err := gr.sq.Select("g.id", "g.name").
		From("moderator_groups g").
		Where(sq.Expr("EXISTS (SELECT 1 FROM moderator_group_regions l WHERE l.group_id = g.id AND l.region_id = ?)", regionID)).
		Where(sq.Expr("EXISTS (SELECT 1 FROM moderator_group_cities l WHERE l.group_id = g.id AND l.city_id = ?)", cityID)).
		Where(sq.Expr("EXISTS (SELECT 1 FROM moderator_group_categories l WHERE l.group_id = g.id AND l.category_id = ?)", categoryID)).
		OrderBy("g.id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var group domain.ModeratorGroup
	if err := sqlx.GetContext(ctx, ext, &group, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &group, nil
}

func (gr *ModeratorGroupRepository) CreateGroup(ctx context.Context, group domain.ModeratorGroup) (*domain.ModeratorGroup, error) {
	const op = "internal.repository.postgres.CreateGroup"
	log := gr.log.With(slog.String("op", op), slog.String("group_name", group.Name))

	tx, err := gr.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Error("failed to rollback transaction", sl.Err(err))
		}
	}()

	query, args, err := gr.sq.Insert("moderator_groups").
		Columns("name").
		Values(group.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build group insert query: %w", op, err)
	}

	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&group.ID); err != nil {
		if pqCode(err) == uniqueViolation {
			return nil, &apperrors.AlreadyExistsError{Entity: "moderator group", Key: group.Name}
		}

		return nil, fmt.Errorf("%s: failed to execute group insert: %w", op, err)
	}

	for _, link := range groupLinks {
		ids := *link.ids(&group)
		if len(ids) == 0 {
			continue
		}

		insertBuilder := gr.sq.Insert(link.table).Columns("group_id", link.column)
		for _, id := range ids {
			insertBuilder = insertBuilder.Values(group.ID, id)
		}

		linkQuery, linkArgs, err := insertBuilder.Suffix("ON CONFLICT DO NOTHING").ToSql()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to build %s insert query: %w", op, link.table, err)
		}

		if _, err := tx.ExecContext(ctx, linkQuery, linkArgs...); err != nil {
			if pqCode(err) == foreignKeyViolation {
				return nil, fmt.Errorf("%s: %w: unknown %s in group coverage", op, apperrors.ErrNotFound, link.column)
			}

			return nil, fmt.Errorf("%s: failed to execute %s insert: %w", op, link.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	log.Info("moderator group created", slog.Int64("group_id", group.ID))

	return &group, nil
}

type groupLinkRow struct {
	GroupID int64 `db:"group_id"`
	RefID   int64 `db:"ref_id"`
}

func (gr *ModeratorGroupRepository) ListGroups(ctx context.Context) ([]domain.ModeratorGroup, error) {
	const op = "internal.repository.postgres.ListGroups"

	query, args, err := gr.sq.Select("id", "name").
		From("moderator_groups").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	groups := []domain.ModeratorGroup{}
	if err := gr.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select groups: %w", op, err)
	}

	byID := make(map[int64]*domain.ModeratorGroup, len(groups))
	for i := range groups {
		byID[groups[i].ID] = &groups[i]
	}

	for _, link := range groupLinks {
		linkQuery, linkArgs, err := gr.sq.Select("group_id", link.column+" AS ref_id").
			From(link.table).
			OrderBy("group_id", link.column).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to build %s query: %w", op, link.table, err)
		}

		var rows []groupLinkRow
		if err := gr.db.SelectContext(ctx, &rows, linkQuery, linkArgs...); err != nil {
			return nil, fmt.Errorf("%s: failed to select %s: %w", op, link.table, err)
		}

		for _, row := range rows {
			if g, ok := byID[row.GroupID]; ok {
				ids := link.ids(g)
				*ids = append(*ids, row.RefID)
			}
		}
	}

	return groups, nil
}
