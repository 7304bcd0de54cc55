//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/YusovID/service-requests/internal/domain"
	"github.com/YusovID/service-requests/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db        *sqlx.DB
	creator   domain.User
	signatory domain.User
	moderator domain.User
	executor  domain.User
	region    *domain.Region
	city      *domain.City
	otherCity *domain.City
	category  *domain.Category
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.Connect(t, testDSN)
	testutil.Truncate(t, db)

	ctx := context.Background()

	users, err := NewUserRepository(db, logger).UpsertUsers(ctx, []domain.User{
		{Email: "creator@example.com", FirstName: "Dana", LastName: "Creator", IsActive: true},
		{Email: "signatory@example.com", FirstName: "Serik", LastName: "Signer", IsActive: true},
		{Email: "moderator@example.com", FirstName: "Mira", LastName: "Moder", Role: "moderator", IsActive: true},
		{Email: "executor@example.com", FirstName: "Erlan", LastName: "Doer", Role: "executor", IsActive: true},
	})
	require.NoError(t, err)
	require.Len(t, users, 4)

	catalog := NewCatalogRepository(db, logger)

	region, err := catalog.CreateRegion(ctx, "Almaty region")
	require.NoError(t, err)

	city, err := catalog.CreateCity(ctx, "Almaty", region.ID)
	require.NoError(t, err)

	otherCity, err := catalog.CreateCity(ctx, "Taldykorgan", region.ID)
	require.NoError(t, err)

	category, err := catalog.CreateCategory(ctx, "aho", "Facilities")
	require.NoError(t, err)

	return &fixture{
		db:        db,
		creator:   users[0],
		signatory: users[1],
		moderator: users[2],
		executor:  users[3],
		region:    region,
		city:      city,
		otherCity: otherCity,
		category:  category,
	}
}

func (f *fixture) insertRequest(t *testing.T, repo *RequestRepository, cityID int64) *domain.ServiceRequest {
	t.Helper()

	req := &domain.ServiceRequest{
		CreatorID:   f.creator.ID,
		SignatoryID: f.signatory.ID,
		CategoryID:  &f.category.ID,
		RegionID:    &f.region.ID,
		CityID:      &cityID,
		Description: "Broken heating in room 204",
		Status:      domain.StatusPending,
	}

	tx, err := f.db.Beginx()
	require.NoError(t, err)
	require.NoError(t, repo.CreateRequest(context.Background(), tx, req))
	require.NoError(t, tx.Commit())

	return req
}
