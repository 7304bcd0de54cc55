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
	"github.com/lib/pq"
)

var requestColumns = []string{
	"id", "creator_id", "signatory_id", "executor_id", "moderator_group_id",
	"category_id", "region_id", "city_id", "description", "address", "contact_number",
	"status", "created_at", "updated_at",
}

type RequestRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewRequestRepository(db *sqlx.DB, log *slog.Logger) *RequestRepository {
	return &RequestRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *RequestRepository) CreateRequest(ctx context.Context, tx *sqlx.Tx, req *domain.ServiceRequest) error {
	const op = "internal.repository.postgres.CreateRequest"

	query, args, err := r.sq.Insert("service_requests").
		Columns(
			"creator_id", "signatory_id", "moderator_group_id", "category_id", "region_id", "city_id",
			"description", "address", "contact_number", "status",
		).
		Values(
			req.CreatorID, req.SignatoryID, req.ModeratorGroupID, req.CategoryID, req.RegionID, req.CityID,
			req.Description, req.Address, req.ContactNumber, req.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		if pqCode(err) == foreignKeyViolation {
			return fmt.Errorf("%s: %w: referenced user, category, region or city", op, apperrors.ErrNotFound)
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *RequestRepository) AddCovers(ctx context.Context, tx *sqlx.Tx, requestID int64, covers []domain.Cover) error {
	const op = "internal.repository.postgres.AddCovers"

	if len(covers) == 0 {
		return nil
	}

	insertBuilder := r.sq.Insert("request_covers").
		Columns("request_id", "source_url", "alt", "position")

	for _, c := range covers {
		insertBuilder = insertBuilder.Values(requestID, c.SourceURL, c.Alt, c.Position)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *RequestRepository) AddFiles(ctx context.Context, tx *sqlx.Tx, requestID int64, files []domain.File) error {
	const op = "internal.repository.postgres.AddFiles"

	if len(files) == 0 {
		return nil
	}

	insertBuilder := r.sq.Insert("request_files").
		Columns("request_id", "title", "url")

	for _, f := range files {
		insertBuilder = insertBuilder.Values(requestID, f.Title, f.URL)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *RequestRepository) GetRequestByIDWithLock(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.ServiceRequest, error) {
	const op = "internal.repository.postgres.GetRequestByIDWithLock"

	query, args, err := r.sq.Select(requestColumns...).
		From("service_requests").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var req domain.ServiceRequest
	if err := tx.GetContext(ctx, &req, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, &apperrors.NotFoundError{Entity: "request", ID: id})
		}

		return nil, fmt.Errorf("%s: failed to get request with lock: %w", op, err)
	}

	return &req, nil
}

func (r *RequestRepository) UpdateRequestState(ctx context.Context, tx *sqlx.Tx, upd domain.StateUpdate) error {
	const op = "internal.repository.postgres.UpdateRequestState"

	updateBuilder := r.sq.Update("service_requests").
		Set("status", upd.To).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": upd.RequestID, "status": upd.From})

	if upd.ModeratorGroupID != nil {
		updateBuilder = updateBuilder.Set("moderator_group_id", *upd.ModeratorGroupID)
	}

	if upd.ExecutorID != nil {
		updateBuilder = updateBuilder.Set("executor_id", *upd.ExecutorID)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to read affected rows: %w", op, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w: request '%d' is no longer '%s'", op, apperrors.ErrInvalidTransition, upd.RequestID, upd.From)
	}

	return nil
}

func (r *RequestRepository) AppendHistory(ctx context.Context, tx *sqlx.Tx, entry *domain.HistoryEntry) error {
	const op = "internal.repository.postgres.AppendHistory"

	query, args, err := r.sq.Insert("request_history").
		Columns("request_id", "user_id", "action", "details", "comment", "user_full_name", "related_user_full_name").
		Values(entry.RequestID, entry.UserID, entry.Action, entry.Details, entry.Comment, entry.UserFullName, entry.RelatedUserFullName).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *RequestRepository) UpsertRating(ctx context.Context, tx *sqlx.Tx, rating *domain.Rating) error {
	const op = "internal.repository.postgres.UpsertRating"

	query, args, err := r.sq.Insert("request_ratings").
		Columns("request_id", "user_id", "rating", "comment").
		Values(rating.RequestID, rating.UserID, rating.Rating, rating.Comment).
		Suffix(`
        ON CONFLICT (request_id) DO UPDATE SET
            user_id = EXCLUDED.user_id,
            rating = EXCLUDED.rating,
            comment = EXCLUDED.comment
        RETURNING created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}

	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&rating.CreatedAt); err != nil {
		return fmt.Errorf("%s: failed to execute upsert: %w", op, err)
	}

	return nil
}

func (r *RequestRepository) GetRequestByID(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	const op = "internal.repository.postgres.GetRequestByID"

	query, args, err := r.sq.Select(requestColumns...).
		From("service_requests").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var req domain.ServiceRequest
	if err := r.db.GetContext(ctx, &req, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, &apperrors.NotFoundError{Entity: "request", ID: id})
		}

		return nil, fmt.Errorf("%s: failed to get request: %w", op, err)
	}

	if err := r.loadAssociations(ctx, &req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &req, nil
}

func (r *RequestRepository) loadAssociations(ctx context.Context, req *domain.ServiceRequest) error {
	coversQuery, args, err := r.sq.Select("id", "request_id", "source_url", "alt", "position").
		From("request_covers").
		Where(sq.Eq{"request_id": req.ID}).
		OrderBy("position", "id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build covers query: %w", err)
	}

	req.Covers = []domain.Cover{}
	if err := r.db.SelectContext(ctx, &req.Covers, coversQuery, args...); err != nil {
		return fmt.Errorf("failed to select covers: %w", err)
	}

	filesQuery, args, err := r.sq.Select("id", "request_id", "title", "url").
		From("request_files").
		Where(sq.Eq{"request_id": req.ID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build files query: %w", err)
	}

	req.Files = []domain.File{}
	if err := r.db.SelectContext(ctx, &req.Files, filesQuery, args...); err != nil {
		return fmt.Errorf("failed to select files: %w", err)
	}

	historyQuery, args, err := r.sq.Select(
		"id", "request_id", "user_id", "action", "details", "comment",
		"user_full_name", "related_user_full_name", "created_at",
	).
		From("request_history").
		Where(sq.Eq{"request_id": req.ID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build history query: %w", err)
	}

	req.History = []domain.HistoryEntry{}
	if err := r.db.SelectContext(ctx, &req.History, historyQuery, args...); err != nil {
		return fmt.Errorf("failed to select history: %w", err)
	}

	ratingQuery, args, err := r.sq.Select("request_id", "user_id", "rating", "comment", "created_at").
		From("request_ratings").
		Where(sq.Eq{"request_id": req.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build rating query: %w", err)
	}

	var rating domain.Rating
	if err := r.db.GetContext(ctx, &rating, ratingQuery, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}

		return fmt.Errorf("failed to get rating: %w", err)
	}

	req.Rating = &rating

	return nil
}

// applyFilter uses EXISTS for membership so a request never appears twice in a page.
func applyFilter(b sq.SelectBuilder, f domain.RequestFilter) sq.SelectBuilder {
	if len(f.GroupIDs) > 0 {
		b = b.Where(sq.Expr("sr.moderator_group_id = ANY(?)", pq.Array(f.GroupIDs)))
	}

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}

		b = b.Where(sq.Expr("sr.status = ANY(?)", pq.Array(statuses)))
	}

	if f.SignatoryID != nil {
		b = b.Where(sq.Eq{"sr.signatory_id": *f.SignatoryID})
	}

	if f.ExecutorID != nil {
		b = b.Where(sq.Eq{"sr.executor_id": *f.ExecutorID})
	}

	if f.CreatorID != nil {
		b = b.Where(sq.Eq{"sr.creator_id": *f.CreatorID})
	}

	if f.MemberID != nil {
		b = b.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM moderator_group_members m WHERE m.group_id = sr.moderator_group_id AND m.user_id = ?)",
			*f.MemberID,
		))
	}

	return b
}

func (r *RequestRepository) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.ServiceRequest, int, error) {
	const op = "internal.repository.postgres.ListRequests"
	log := r.log.With(slog.String("op", op))

	countQuery, args, err := applyFilter(r.sq.Select("COUNT(*)").From("service_requests sr"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build count query: %w", op, err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count requests: %w", op, err)
	}

	columns := make([]string, len(requestColumns))
	for i, c := range requestColumns {
		columns[i] = "sr." + c
	}

	listBuilder := applyFilter(r.sq.Select(columns...).From("service_requests sr"), filter).
		OrderBy("sr.id DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}

		listBuilder = listBuilder.
			Limit(uint64(filter.PageSize)).
			Offset(uint64(page-1) * uint64(filter.PageSize))
	}

	listQuery, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build list query: %w", op, err)
	}

	requests := []domain.ServiceRequest{}
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to select requests: %w", op, err)
	}

	log.Debug("requests listed", slog.Int("total", total), slog.Int("returned", len(requests)))

	return requests, total, nil
}

func (r *RequestRepository) CountBySignatory(ctx context.Context, signatoryID int64, status domain.Status) (int, error) {
	const op = "internal.repository.postgres.CountBySignatory"

	query, args, err := r.sq.Select("COUNT(*)").
		From("service_requests").
		Where(sq.Eq{"signatory_id": signatoryID, "status": string(status)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return count, nil
}
