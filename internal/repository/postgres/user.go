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
	"github.com/jmoiron/sqlx"
)

var userColumns = []string{
	"id", "email", "first_name", "last_name", "middle_name", "phone_number", "role", "is_active",
}

type UserRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewUserRepository(db *sqlx.DB, log *slog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (ur *UserRepository) GetUserByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*domain.User, error) {
	const op = "internal.repository.postgres.GetUserByID"

	query, args, err := ur.sq.Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var user domain.User
	if err := sqlx.GetContext(ctx, ext, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, &apperrors.NotFoundError{Entity: "user", ID: id})
		}

		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	return &user, nil
}

func (ur *UserRepository) UpsertUsers(ctx context.Context, users []domain.User) ([]domain.User, error) {
	const op = "internal.repository.postgres.UpsertUsers"

	if len(users) == 0 {
		return []domain.User{}, nil
	}

	insertBuilder := ur.sq.Insert("users").
		Columns("email", "first_name", "last_name", "middle_name", "phone_number", "role", "is_active")

	for _, u := range users {
		role := u.Role
		if role == "" {
			role = "guest"
		}

		insertBuilder = insertBuilder.Values(u.Email, u.FirstName, u.LastName, u.MiddleName, u.PhoneNumber, role, u.IsActive)
	}

	query, args, err := insertBuilder.Suffix(`
        ON CONFLICT (email) DO UPDATE SET
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            middle_name = EXCLUDED.middle_name,
            phone_number = EXCLUDED.phone_number,
            role = EXCLUDED.role,
            is_active = EXCLUDED.is_active
        RETURNING id, email, first_name, last_name, middle_name, phone_number, role, is_active`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}

	var saved []domain.User
	if err := ur.db.SelectContext(ctx, &saved, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute upsert: %w", op, err)
	}

	ur.log.Info("users upserted", slog.String("op", op), slog.Int("count", len(saved)))

	return saved, nil
}
