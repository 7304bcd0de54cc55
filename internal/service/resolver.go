package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/YusovID/service-requests/internal/domain"
	"github.com/YusovID/service-requests/internal/repository"
	"github.com/jmoiron/sqlx"
)

// ModeratorGroupResolver picks the group responsible for a request.
// A group matches only when its regions, cities and categories all contain the request's values.
// Several matches are broken by the lowest group id.
type ModeratorGroupResolver struct {
	groups repository.ModeratorGroupRepository
	log    *slog.Logger
}

func NewModeratorGroupResolver(groups repository.ModeratorGroupRepository, log *slog.Logger) *ModeratorGroupResolver {
	return &ModeratorGroupResolver{
		groups: groups,
		log:    log,
	}
}

// Resolve returns nil without error when nothing matches or the request lacks a category, region or city.
func (r *ModeratorGroupResolver) Resolve(ctx context.Context, ext sqlx.ExtContext, req *domain.ServiceRequest) (*domain.ModeratorGroup, error) {
	const op = "internal.service.resolver.Resolve"

	categoryID, regionID, cityID, ok := req.Coverage()
	if !ok {
		r.log.Debug("request has incomplete coverage", slog.String("op", op), slog.Int64("request_id", req.ID))
		return nil, nil
	}

	group, err := r.groups.FindMatchingGroup(ctx, ext, categoryID, regionID, cityID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if group == nil {
		r.log.Debug("no moderator group matches",
			slog.String("op", op),
			slog.Int64("category_id", categoryID),
			slog.Int64("region_id", regionID),
			slog.Int64("city_id", cityID),
		)
	}

	return group, nil
}
