package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/YusovID/service-requests/internal/apperrors"
	"github.com/YusovID/service-requests/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var repairColumns = []string{
	"id", "name", "region", "oblast", "description", "address", "mol", "start_date", "end_date",
	"repair_type", "floor", "status", "budget", "budget_type", "created_at",
}

var taskColumns = []string{
	"id", "repair_id", "name", "status", "due_date", "description", "task_type", "budget", "mol", "created_at",
}

// likeEscaper keeps user input literal inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type RepairRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewRepairRepository(db *sqlx.DB, log *slog.Logger) *RepairRepository {
	return &RepairRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *RepairRepository) CreateRepair(ctx context.Context, tx *sqlx.Tx, repair *domain.Repair) error {
	const op = "internal.repository.postgres.CreateRepair"

	query, args, err := r.sq.Insert("repairs").
		Columns(
			"name", "region", "oblast", "description", "address", "mol", "start_date", "end_date",
			"repair_type", "floor", "status", "budget", "budget_type",
		).
		Values(
			repair.Name, repair.Region, repair.Oblast, repair.Description, repair.Address, repair.MOL,
			repair.StartDate, repair.EndDate, repair.RepairType, repair.Floor, repair.Status,
			repair.Budget, repair.BudgetType,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&repair.ID, &repair.CreatedAt); err != nil {
		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *RepairRepository) GetRepairByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*domain.Repair, error) {
	const op = "internal.repository.postgres.GetRepairByID"

	repair, err := r.getRepair(ctx, ext, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	repairs := []domain.Repair{*repair}
	if err := r.loadTasks(ctx, ext, repairs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	repair = &repairs[0]

	if repair.StartMedia, err = r.repairMedia(ctx, ext, id, domain.MediaStart); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if repair.CompletionMedia, err = r.repairMedia(ctx, ext, id, domain.MediaCompletion); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	repair.DelayReason, err = r.delayReason(ctx, ext, "repair_delay_reasons", "repair_delay_media", "repair_id", id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return repair, nil
}

func (r *RepairRepository) GetRepairByIDWithLock(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.Repair, error) {
	const op = "internal.repository.postgres.GetRepairByIDWithLock"

	repair, err := r.getRepair(ctx, tx, id, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return repair, nil
}

func (r *RepairRepository) getRepair(ctx context.Context, ext sqlx.ExtContext, id int64, lock bool) (*domain.Repair, error) {
	b := r.sq.Select(repairColumns...).From("repairs").Where(sq.Eq{"id": id})
	if lock {
		b = b.Suffix("FOR UPDATE")
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var repair domain.Repair
	if err := sqlx.GetContext(ctx, ext, &repair, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Entity: "repair", ID: id}
		}

		return nil, fmt.Errorf("failed to get repair: %w", err)
	}

	return &repair, nil
}

// applyRepairFilter mirrors the list filter of the repair board: substring text matches,
// a repair type set and inclusive date and floor ranges.
func applyRepairFilter(b sq.SelectBuilder, f domain.RepairFilter) sq.SelectBuilder {
	for _, m := range []struct{ column, value string }{
		{"name", f.Name},
		{"region", f.Region},
		{"oblast", f.Oblast},
		{"description", f.Description},
		{"address", f.Address},
		{"mol", f.MOL},
	} {
		if value := strings.TrimSpace(m.value); value != "" {
			b = b.Where(sq.ILike{m.column: "%" + likeEscaper.Replace(value) + "%"})
		}
	}

	if len(f.RepairTypes) > 0 {
		types := make([]string, len(f.RepairTypes))
		for i, t := range f.RepairTypes {
			types[i] = string(t)
		}

		b = b.Where(sq.Expr("repair_type = ANY(?)", pq.Array(types)))
	}

	if f.StartAfter != nil {
		b = b.Where(sq.GtOrEq{"start_date": *f.StartAfter})
	}
	if f.StartBefore != nil {
		b = b.Where(sq.LtOrEq{"start_date": *f.StartBefore})
	}
	if f.EndAfter != nil {
		b = b.Where(sq.GtOrEq{"end_date": *f.EndAfter})
	}
	if f.EndBefore != nil {
		b = b.Where(sq.LtOrEq{"end_date": *f.EndBefore})
	}
	if f.FloorMin != nil {
		b = b.Where(sq.GtOrEq{"floor": *f.FloorMin})
	}
	if f.FloorMax != nil {
		b = b.Where(sq.LtOrEq{"floor": *f.FloorMax})
	}

	return b
}

func (r *RepairRepository) ListRepairs(ctx context.Context, filter domain.RepairFilter) ([]domain.Repair, int, error) {
	const op = "internal.repository.postgres.ListRepairs"
	log := r.log.With(slog.String("op", op))

	countQuery, args, err := applyRepairFilter(r.sq.Select("COUNT(*)").From("repairs"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build count query: %w", op, err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count repairs: %w", op, err)
	}

	listBuilder := applyRepairFilter(r.sq.Select(repairColumns...).From("repairs"), filter).
		OrderBy("id DESC")

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

	repairs := []domain.Repair{}
	if err := r.db.SelectContext(ctx, &repairs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to select repairs: %w", op, err)
	}

	if err := r.loadTasks(ctx, r.db, repairs); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("repairs listed", slog.Int("total", total), slog.Int("returned", len(repairs)))

	return repairs, total, nil
}

// loadTasks fills Tasks of every repair with one query.
func (r *RepairRepository) loadTasks(ctx context.Context, ext sqlx.ExtContext, repairs []domain.Repair) error {
	if len(repairs) == 0 {
		return nil
	}

	ids := make([]int64, len(repairs))
	index := make(map[int64]int, len(repairs))

	for i := range repairs {
		ids[i] = repairs[i].ID
		index[repairs[i].ID] = i
		repairs[i].Tasks = []domain.RepairTask{}
	}

	query, args, err := r.sq.Select(taskColumns...).
		From("repair_tasks").
		Where(sq.Expr("repair_id = ANY(?)", pq.Array(ids))).
		OrderBy("id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build tasks query: %w", err)
	}

	var tasks []domain.RepairTask
	if err := sqlx.SelectContext(ctx, ext, &tasks, query, args...); err != nil {
		return fmt.Errorf("failed to select tasks: %w", err)
	}

	for _, t := range tasks {
		i := index[t.RepairID]
		repairs[i].Tasks = append(repairs[i].Tasks, t)
	}

	return nil
}

func (r *RepairRepository) repairMedia(ctx context.Context, ext sqlx.ExtContext, repairID int64, kind domain.MediaKind) ([]domain.Media, error) {
	query, args, err := r.sq.Select("id", "url", "uploaded_at").
		From("repair_media").
		Where(sq.Eq{"repair_id": repairID, "kind": string(kind)}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s media query: %w", kind, err)
	}

	media := []domain.Media{}
	if err := sqlx.SelectContext(ctx, ext, &media, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select %s media: %w", kind, err)
	}

	return media, nil
}

// delayReason returns nil when the owner has not reported a delay.
func (r *RepairRepository) delayReason(
	ctx context.Context,
	ext sqlx.ExtContext,
	table, mediaTable, ownerColumn string,
	ownerID int64,
) (*domain.DelayReason, error) {
	query, args, err := r.sq.Select("id", "reason", "created_at").
		From(table).
		Where(sq.Eq{ownerColumn: ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delay reason query: %w", err)
	}

	var reason domain.DelayReason
	if err := sqlx.GetContext(ctx, ext, &reason, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get delay reason: %w", err)
	}

	mediaQuery, args, err := r.sq.Select("id", "url", "uploaded_at").
		From(mediaTable).
		Where(sq.Eq{"delay_reason_id": reason.ID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delay media query: %w", err)
	}

	reason.Media = []domain.Media{}
	if err := sqlx.SelectContext(ctx, ext, &reason.Media, mediaQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to select delay media: %w", err)
	}

	return &reason, nil
}

func (r *RepairRepository) UpdateRepair(ctx context.Context, tx *sqlx.Tx, id int64, patch domain.RepairPatch) error {
	const op = "internal.repository.postgres.UpdateRepair"

	set := map[string]any{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}

	return r.update(ctx, tx, op, "repairs", id, set)
}

func (r *RepairRepository) UpdateTask(ctx context.Context, tx *sqlx.Tx, id int64, patch domain.TaskPatch) error {
	const op = "internal.repository.postgres.UpdateTask"

	set := map[string]any{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}

	return r.update(ctx, tx, op, "repair_tasks", id, set)
}

// update is a no-op when set is empty.
func (r *RepairRepository) update(ctx context.Context, tx *sqlx.Tx, op, table string, id int64, set map[string]any) error {
	if len(set) == 0 {
		return nil
	}

	query, args, err := r.sq.Update(table).SetMap(set).Where(sq.Eq{"id": id}).ToSql()
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
		return fmt.Errorf("%s: %w: %s row '%d'", op, apperrors.ErrNotFound, table, id)
	}

	return nil
}

func (r *RepairRepository) AddRepairMedia(
	ctx context.Context,
	tx *sqlx.Tx,
	repairID int64,
	kind domain.MediaKind,
	urls []string,
) ([]domain.Media, error) {
	const op = "internal.repository.postgres.AddRepairMedia"

	media, err := r.insertMedia(ctx, tx, "repair_media", []string{"repair_id", "kind"}, []any{repairID, string(kind)}, urls)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return media, nil
}

func (r *RepairRepository) AddTaskMedia(ctx context.Context, tx *sqlx.Tx, taskID int64, urls []string) ([]domain.Media, error) {
	const op = "internal.repository.postgres.AddTaskMedia"

	media, err := r.insertMedia(ctx, tx, "repair_task_media", []string{"task_id"}, []any{taskID}, urls)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return media, nil
}

// insertMedia writes one row per url, each prefixed with the owner values.
func (r *RepairRepository) insertMedia(
	ctx context.Context,
	tx *sqlx.Tx,
	table string,
	ownerColumns []string,
	owner []any,
	urls []string,
) ([]domain.Media, error) {
	media := []domain.Media{}
	if len(urls) == 0 {
		return media, nil
	}

	columns := append(append([]string{}, ownerColumns...), "url")
	insertBuilder := r.sq.Insert(table).Columns(columns...)

	for _, u := range urls {
		insertBuilder = insertBuilder.Values(append(append([]any{}, owner...), u)...)
	}

	query, args, err := insertBuilder.Suffix("RETURNING id, url, uploaded_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s insert: %w", table, err)
	}

	if err := tx.SelectContext(ctx, &media, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", table, err)
	}

	return media, nil
}

func (r *RepairRepository) AddRepairDelayReason(
	ctx context.Context,
	tx *sqlx.Tx,
	repairID int64,
	in domain.NewDelayReason,
) (*domain.DelayReason, error) {
	const op = "internal.repository.postgres.AddRepairDelayReason"

	reason, err := r.addDelayReason(ctx, tx, "repair_delay_reasons", "repair_delay_media", "repair_id", repairID, in)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, &apperrors.AlreadyExistsError{Entity: "delay reason", Key: fmt.Sprintf("repair %d", repairID)}
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reason, nil
}

func (r *RepairRepository) AddTaskDelayReason(
	ctx context.Context,
	tx *sqlx.Tx,
	taskID int64,
	in domain.NewDelayReason,
) (*domain.DelayReason, error) {
	const op = "internal.repository.postgres.AddTaskDelayReason"

	reason, err := r.addDelayReason(ctx, tx, "task_delay_reasons", "task_delay_media", "task_id", taskID, in)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, &apperrors.AlreadyExistsError{Entity: "delay reason", Key: fmt.Sprintf("task %d", taskID)}
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reason, nil
}

// addDelayReason relies on the unique owner column to refuse a second reason.
func (r *RepairRepository) addDelayReason(
	ctx context.Context,
	tx *sqlx.Tx,
	table, mediaTable, ownerColumn string,
	ownerID int64,
	in domain.NewDelayReason,
) (*domain.DelayReason, error) {
	query, args, err := r.sq.Insert(table).
		Columns(ownerColumn, "reason").
		Values(ownerID, in.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	reason := &domain.DelayReason{Reason: in.Reason}
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&reason.ID, &reason.CreatedAt); err != nil {
		if pqCode(err) == uniqueViolation {
			return nil, apperrors.ErrAlreadyExists
		}

		return nil, fmt.Errorf("failed to execute insert: %w", err)
	}

	reason.Media, err = r.insertMedia(ctx, tx, mediaTable, []string{"delay_reason_id"}, []any{reason.ID}, in.Media)
	if err != nil {
		return nil, err
	}

	return reason, nil
}

func (r *RepairRepository) CreateTask(ctx context.Context, tx *sqlx.Tx, task *domain.RepairTask) error {
	const op = "internal.repository.postgres.CreateTask"

	query, args, err := r.sq.Insert("repair_tasks").
		Columns("repair_id", "name", "status", "due_date", "description", "task_type", "budget", "mol").
		Values(task.RepairID, task.Name, task.Status, task.DueDate, task.Description, task.TaskType, task.Budget, task.MOL).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&task.ID, &task.CreatedAt); err != nil {
		if pqCode(err) == foreignKeyViolation {
			return fmt.Errorf("%s: %w", op, &apperrors.NotFoundError{Entity: "repair", ID: task.RepairID})
		}

		return fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return nil
}

func (r *RepairRepository) GetTaskByID(ctx context.Context, ext sqlx.ExtContext, id int64) (*domain.RepairTask, error) {
	const op = "internal.repository.postgres.GetTaskByID"

	task, err := r.getTask(ctx, ext, id, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sq.Select("id", "url", "uploaded_at").
		From("repair_task_media").
		Where(sq.Eq{"task_id": id}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build media query: %w", op, err)
	}

	task.Media = []domain.Media{}
	if err := sqlx.SelectContext(ctx, ext, &task.Media, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to select media: %w", op, err)
	}

	task.DelayReason, err = r.delayReason(ctx, ext, "task_delay_reasons", "task_delay_media", "task_id", id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return task, nil
}

func (r *RepairRepository) GetTaskByIDWithLock(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.RepairTask, error) {
	const op = "internal.repository.postgres.GetTaskByIDWithLock"

	task, err := r.getTask(ctx, tx, id, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return task, nil
}

func (r *RepairRepository) getTask(ctx context.Context, ext sqlx.ExtContext, id int64, lock bool) (*domain.RepairTask, error) {
	b := r.sq.Select(taskColumns...).From("repair_tasks").Where(sq.Eq{"id": id})
	if lock {
		b = b.Suffix("FOR UPDATE")
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var task domain.RepairTask
	if err := sqlx.GetContext(ctx, ext, &task, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Entity: "task", ID: id}
		}

		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &task, nil
}
