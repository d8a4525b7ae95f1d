package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/charity_donation_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/charity_donation_ledger/internal/models"
	"github.com/SscSPs/charity_donation_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const projectColumns = `project_id, name, description, beneficiary, fundraising_goal,
	total_donated, withdrawn_amount, is_active, created_at, last_updated_at`

var errProjectNotFound = fmt.Errorf("%w: project does not exist", apperrors.ErrNotFound)

// PgxLedgerRepository implements LedgerRepositoryFacade on PostgreSQL.
type PgxLedgerRepository struct {
	BaseRepository
	ledgerQueries
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		ledgerQueries:  ledgerQueries{db: pool},
	}
}

var (
	_ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)
	_ portsrepo.LedgerTx               = (*pgxLedgerTx)(nil)
)

// RunInTx runs fn inside one database transaction and commits only if fn succeeds.
func (r *PgxLedgerRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(context.WithoutCancel(ctx), tx)
	}()

	if err := fn(ctx, &pgxLedgerTx{ledgerQueries: ledgerQueries{db: tx}}); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// ledgerQueries implements the read side against either the pool or an open transaction.
type ledgerQueries struct {
	db querier
}

func (q ledgerQueries) GetOwner(ctx context.Context) (domain.Address, error) {
	var owner string
	err := q.db.QueryRow(ctx, `SELECT owner_address FROM ledger_meta WHERE id = 1`).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: ledger owner has not been initialized", apperrors.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query ledger owner: %w", err)
	}
	return domain.Address(owner), nil
}

func (q ledgerQueries) CountProjects(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

func (q ledgerQueries) FindProjectByID(ctx context.Context, projectID int64) (*domain.Project, error) {
	return q.findProject(ctx, `SELECT `+projectColumns+` FROM projects WHERE project_id = $1`, projectID)
}

func (q ledgerQueries) findProject(ctx context.Context, query string, projectID int64) (*domain.Project, error) {
	rows, err := q.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project %d: %w", projectID, err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Project])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project %d: %w", projectID, err)
	}
	project := mapping.ToDomainProject(row)
	return &project, nil
}

func (q ledgerQueries) ListProjects(ctx context.Context, limit int, offset int) ([]domain.Project, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY project_id LIMIT $1 OFFSET $2`,
		limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Project])
	if err != nil {
		return nil, fmt.Errorf("failed to scan projects: %w", err)
	}
	projects := make([]domain.Project, 0, len(list))
	for _, m := range list {
		projects = append(projects, mapping.ToDomainProject(m))
	}
	return projects, nil
}

// projectCounter reads one of the per-project record counters.
func (q ledgerQueries) projectCounter(ctx context.Context, column string, projectID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT `+column+` FROM projects WHERE project_id = $1`, projectID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errProjectNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s of project %d: %w", column, projectID, err)
	}
	return count, nil
}

func (q ledgerQueries) CountDonations(ctx context.Context, projectID int64) (int64, error) {
	return q.projectCounter(ctx, "donation_count", projectID)
}

func (q ledgerQueries) FindDonation(ctx context.Context, projectID int64, index int64) (*domain.Donation, error) {
	count, err := q.CountDonations(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: donation %d of project %d does not exist", apperrors.ErrNotFound, index, projectID)
	}
	list, err := q.ListDonations(ctx, projectID, index, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: donation %d of project %d does not exist", apperrors.ErrNotFound, index, projectID)
	}
	return &list[0], nil
}

func (q ledgerQueries) ListDonations(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Donation, error) {
	if _, err := q.CountDonations(ctx, projectID); err != nil {
		return nil, err
	}
	rows, err := q.db.Query(ctx, `
		SELECT project_id, donation_index, donor, amount, message, donated_at
		FROM donations
		WHERE project_id = $1 AND donation_index >= $2
		ORDER BY donation_index
		LIMIT $3`, projectID, max(fromIndex, 0), limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list donations of project %d: %w", projectID, err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Donation])
	if err != nil {
		return nil, fmt.Errorf("failed to scan donations: %w", err)
	}
	donations := make([]domain.Donation, 0, len(list))
	for _, m := range list {
		donations = append(donations, mapping.ToDomainDonation(m))
	}
	return donations, nil
}

func (q ledgerQueries) CountExpenses(ctx context.Context, projectID int64) (int64, error) {
	return q.projectCounter(ctx, "expense_count", projectID)
}

func (q ledgerQueries) FindExpense(ctx context.Context, projectID int64, index int64) (*domain.Expense, error) {
	count, err := q.CountExpenses(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: expense %d of project %d does not exist", apperrors.ErrNotFound, index, projectID)
	}
	list, err := q.ListExpenses(ctx, projectID, index, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: expense %d of project %d does not exist", apperrors.ErrNotFound, index, projectID)
	}
	return &list[0], nil
}

func (q ledgerQueries) ListExpenses(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Expense, error) {
	if _, err := q.CountExpenses(ctx, projectID); err != nil {
		return nil, err
	}
	rows, err := q.db.Query(ctx, `
		SELECT project_id, expense_index, description, amount, recipient, recorded_at
		FROM expenses
		WHERE project_id = $1 AND expense_index >= $2
		ORDER BY expense_index
		LIMIT $3`, projectID, max(fromIndex, 0), limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses of project %d: %w", projectID, err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Expense])
	if err != nil {
		return nil, fmt.Errorf("failed to scan expenses: %w", err)
	}
	expenses := make([]domain.Expense, 0, len(list))
	for _, m := range list {
		expenses = append(expenses, mapping.ToDomainExpense(m))
	}
	return expenses, nil
}

func (q ledgerQueries) ListWithdrawals(ctx context.Context, projectID int64) ([]domain.Withdrawal, error) {
	if _, err := q.projectCounter(ctx, "withdrawal_count", projectID); err != nil {
		return nil, err
	}
	rows, err := q.db.Query(ctx, `
		SELECT project_id, withdrawal_index, beneficiary, amount, withdrawn_at
		FROM withdrawals
		WHERE project_id = $1
		ORDER BY withdrawal_index`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals of project %d: %w", projectID, err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Withdrawal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan withdrawals: %w", err)
	}
	withdrawals := make([]domain.Withdrawal, 0, len(list))
	for _, m := range list {
		withdrawals = append(withdrawals, mapping.ToDomainWithdrawal(m))
	}
	return withdrawals, nil
}

func (q ledgerQueries) SumAvailableBalances(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_donated - withdrawn_amount), 0) FROM projects`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum project balances: %w", err)
	}
	return total, nil
}

func (q ledgerQueries) ListEvents(ctx context.Context, afterSequence int64, limit int) ([]domain.LedgerEvent, error) {
	rows, err := q.db.Query(ctx, `
		SELECT sequence, event_id::text AS event_id, event_type, project_id, caller, payload, emitted_at
		FROM ledger_events
		WHERE sequence > $1
		ORDER BY sequence
		LIMIT $2`, afterSequence, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger events: %w", err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LedgerEvent])
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger events: %w", err)
	}
	events := make([]domain.LedgerEvent, 0, len(list))
	for _, m := range list {
		event, err := mapping.ToDomainLedgerEvent(m)
		if err != nil {
			return nil, fmt.Errorf("ledger event %d: %w", m.Sequence, err)
		}
		events = append(events, event)
	}
	return events, nil
}

// pgxLedgerTx is the write side of a unit of work. It reads through the same transaction.
type pgxLedgerTx struct {
	ledgerQueries
}

func (t *pgxLedgerTx) EnsureOwner(ctx context.Context, owner domain.Address, now time.Time) (domain.Address, error) {
	_, err := t.db.Exec(ctx, `
		INSERT INTO ledger_meta (id, owner_address, created_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING`, owner.String(), now)
	if err != nil {
		return "", fmt.Errorf("failed to store ledger owner: %w", err)
	}
	return t.GetOwner(ctx)
}

// LockProject takes a row lock that is held until the transaction ends.
func (t *pgxLedgerTx) LockProject(ctx context.Context, projectID int64) (*domain.Project, error) {
	return t.findProject(ctx, `SELECT `+projectColumns+` FROM projects WHERE project_id = $1 FOR UPDATE`, projectID)
}

// nextCounter increments a counter and returns its value before the increment.
func (t *pgxLedgerTx) nextCounter(ctx context.Context, query string, args ...any) (int64, error) {
	var next int64
	err := t.db.QueryRow(ctx, query, args...).Scan(&next)
	return next, err
}

func (t *pgxLedgerTx) InsertProject(ctx context.Context, project *domain.Project) (int64, error) {
	id, err := t.nextCounter(ctx, `UPDATE ledger_meta SET project_count = project_count + 1 WHERE id = 1 RETURNING project_count - 1`)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: ledger owner has not been initialized", apperrors.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to allocate project id: %w", err)
	}
	project.ProjectID = id

	m := mapping.ToModelProject(*project)
	_, err = t.db.Exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ProjectID, m.Name, m.Description, m.Beneficiary, m.FundraisingGoal,
		m.TotalDonated, m.WithdrawnAmount, m.IsActive, m.CreatedAt, m.LastUpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert project %d: %w", id, err)
	}
	return id, nil
}

func (t *pgxLedgerTx) UpdateProjectState(ctx context.Context, project domain.Project) error {
	if err := project.CheckInvariants(); err != nil {
		return fmt.Errorf("update project state: %w", err)
	}
	tag, err := t.db.Exec(ctx, `
		UPDATE projects
		SET total_donated = $2, withdrawn_amount = $3, is_active = $4, last_updated_at = $5
		WHERE project_id = $1`,
		project.ProjectID, project.TotalDonated, project.WithdrawnAmount, project.IsActive, project.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update project %d: %w", project.ProjectID, err)
	}
	if tag.RowsAffected() == 0 {
		return errProjectNotFound
	}
	return nil
}

// nextRecordIndex bumps the named per-project counter and returns the index for the new record.
func (t *pgxLedgerTx) nextRecordIndex(ctx context.Context, column string, projectID int64) (int64, error) {
	index, err := t.nextCounter(ctx,
		`UPDATE projects SET `+column+` = `+column+` + 1 WHERE project_id = $1 RETURNING `+column+` - 1`,
		projectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errProjectNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s index for project %d: %w", column, projectID, err)
	}
	return index, nil
}

func (t *pgxLedgerTx) InsertDonation(ctx context.Context, donation *domain.Donation) error {
	index, err := t.nextRecordIndex(ctx, "donation_count", donation.ProjectID)
	if err != nil {
		return err
	}
	donation.Index = index
	m := mapping.ToModelDonation(*donation)
	_, err = t.db.Exec(ctx, `
		INSERT INTO donations (project_id, donation_index, donor, amount, message, donated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ProjectID, m.DonationIndex, m.Donor, m.Amount, m.Message, m.DonatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert donation: %w", err)
	}
	return nil
}

func (t *pgxLedgerTx) InsertExpense(ctx context.Context, expense *domain.Expense) error {
	index, err := t.nextRecordIndex(ctx, "expense_count", expense.ProjectID)
	if err != nil {
		return err
	}
	expense.Index = index
	m := mapping.ToModelExpense(*expense)
	_, err = t.db.Exec(ctx, `
		INSERT INTO expenses (project_id, expense_index, description, amount, recipient, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ProjectID, m.ExpenseIndex, m.Description, m.Amount, m.Recipient, m.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func (t *pgxLedgerTx) InsertWithdrawal(ctx context.Context, withdrawal *domain.Withdrawal) error {
	index, err := t.nextRecordIndex(ctx, "withdrawal_count", withdrawal.ProjectID)
	if err != nil {
		return err
	}
	withdrawal.Index = index
	m := mapping.ToModelWithdrawal(*withdrawal)
	_, err = t.db.Exec(ctx, `
		INSERT INTO withdrawals (project_id, withdrawal_index, beneficiary, amount, withdrawn_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ProjectID, m.WithdrawalIndex, m.Beneficiary, m.Amount, m.WithdrawnAt)
	if err != nil {
		return fmt.Errorf("failed to insert withdrawal: %w", err)
	}
	return nil
}

func (t *pgxLedgerTx) AppendEvent(ctx context.Context, event *domain.LedgerEvent) error {
	seq, err := t.nextCounter(ctx, `UPDATE ledger_meta SET event_count = event_count + 1 WHERE id = 1 RETURNING event_count`)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: ledger owner has not been initialized", apperrors.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to allocate event sequence: %w", err)
	}
	event.Sequence = seq

	m, err := mapping.ToModelLedgerEvent(*event)
	if err != nil {
		return err
	}
	_, err = t.db.Exec(ctx, `
		INSERT INTO ledger_events (sequence, event_id, event_type, project_id, caller, payload, emitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.Sequence, m.EventID, m.EventType, m.ProjectID, m.Caller, m.Payload, m.EmittedAt)
	if err != nil {
		return fmt.Errorf("failed to append ledger event: %w", err)
	}
	return nil
}
