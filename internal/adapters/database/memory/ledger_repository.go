// Package memory provides an in-process ledger store for development and tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/charity_donation_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// state is one committed version of the ledger. Committed projects are never
// mutated. Record lists and the event log are append-only: a unit of work may
// write past a committed slice's length, never below it.
type state struct {
	owner       domain.Address
	projects    []domain.Project
	donations   map[int64][]domain.Donation
	expenses    map[int64][]domain.Expense
	withdrawals map[int64][]domain.Withdrawal
	events      []domain.LedgerEvent
}

func newState() *state {
	return &state{
		donations:   map[int64][]domain.Donation{},
		expenses:    map[int64][]domain.Expense{},
		withdrawals: map[int64][]domain.Withdrawal{},
	}
}

// fork returns the working copy for one unit of work. Only the project rows
// and the per-project list headers are copied; record arrays and the event
// log are shared with s.
func (s *state) fork() *state {
	return &state{
		owner:       s.owner,
		projects:    slices.Clone(s.projects),
		donations:   maps.Clone(s.donations),
		expenses:    maps.Clone(s.expenses),
		withdrawals: maps.Clone(s.withdrawals),
		events:      s.events,
	}
}

// LedgerRepository is a memory-backed implementation of both the ledger and reporting repositories.
type LedgerRepository struct {
	mu sync.RWMutex // guards st; writers hold it for the whole unit of work
	st *state
}

// NewLedgerRepository creates an empty store.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{st: newState()}
}

var (
	_ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)
	_ portsrepo.ReportingRepository    = (*LedgerRepository)(nil)
	_ portsrepo.LedgerTx               = (*memTx)(nil)
)

func (r *LedgerRepository) committed() *state {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st
}

// RunInTx runs fn against a working copy of the ledger and publishes the copy only if fn succeeds.
func (r *LedgerRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := r.st.fork()
	if err := fn(ctx, &memTx{state: work}); err != nil {
		return err
	}
	r.st = work
	return nil
}

func (r *LedgerRepository) GetOwner(ctx context.Context) (domain.Address, error) {
	return r.committed().getOwner()
}

func (r *LedgerRepository) CountProjects(ctx context.Context) (int64, error) {
	return int64(len(r.committed().projects)), nil
}

func (r *LedgerRepository) FindProjectByID(ctx context.Context, projectID int64) (*domain.Project, error) {
	return r.committed().findProject(projectID)
}

func (r *LedgerRepository) ListProjects(ctx context.Context, limit int, offset int) ([]domain.Project, error) {
	return page(r.committed().projects, int64(offset), limit), nil
}

func (r *LedgerRepository) CountDonations(ctx context.Context, projectID int64) (int64, error) {
	return r.committed().countDonations(projectID)
}

func (r *LedgerRepository) FindDonation(ctx context.Context, projectID int64, index int64) (*domain.Donation, error) {
	return r.committed().findDonation(projectID, index)
}

func (r *LedgerRepository) ListDonations(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Donation, error) {
	return r.committed().listDonations(projectID, fromIndex, limit)
}

func (r *LedgerRepository) CountExpenses(ctx context.Context, projectID int64) (int64, error) {
	return r.committed().countExpenses(projectID)
}

func (r *LedgerRepository) FindExpense(ctx context.Context, projectID int64, index int64) (*domain.Expense, error) {
	return r.committed().findExpense(projectID, index)
}

func (r *LedgerRepository) ListExpenses(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Expense, error) {
	return r.committed().listExpenses(projectID, fromIndex, limit)
}

func (r *LedgerRepository) ListWithdrawals(ctx context.Context, projectID int64) ([]domain.Withdrawal, error) {
	return r.committed().listWithdrawals(projectID)
}

func (r *LedgerRepository) SumAvailableBalances(ctx context.Context) (decimal.Decimal, error) {
	return r.committed().sumAvailable(), nil
}

func (r *LedgerRepository) ListEvents(ctx context.Context, afterSequence int64, limit int) ([]domain.LedgerEvent, error) {
	return r.committed().listEvents(afterSequence, limit), nil
}

// memTx exposes a working copy to a unit of work.
type memTx struct {
	*state
}

func (t *memTx) GetOwner(ctx context.Context) (domain.Address, error) { return t.getOwner() }

func (t *memTx) CountProjects(ctx context.Context) (int64, error) {
	return int64(len(t.projects)), nil
}

func (t *memTx) FindProjectByID(ctx context.Context, projectID int64) (*domain.Project, error) {
	return t.findProject(projectID)
}

func (t *memTx) ListProjects(ctx context.Context, limit int, offset int) ([]domain.Project, error) {
	return page(t.projects, int64(offset), limit), nil
}

func (t *memTx) CountDonations(ctx context.Context, projectID int64) (int64, error) {
	return t.countDonations(projectID)
}

func (t *memTx) FindDonation(ctx context.Context, projectID int64, index int64) (*domain.Donation, error) {
	return t.findDonation(projectID, index)
}

func (t *memTx) ListDonations(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Donation, error) {
	return t.listDonations(projectID, fromIndex, limit)
}

func (t *memTx) CountExpenses(ctx context.Context, projectID int64) (int64, error) {
	return t.countExpenses(projectID)
}

func (t *memTx) FindExpense(ctx context.Context, projectID int64, index int64) (*domain.Expense, error) {
	return t.findExpense(projectID, index)
}

func (t *memTx) ListExpenses(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Expense, error) {
	return t.listExpenses(projectID, fromIndex, limit)
}

func (t *memTx) ListWithdrawals(ctx context.Context, projectID int64) ([]domain.Withdrawal, error) {
	return t.listWithdrawals(projectID)
}

func (t *memTx) SumAvailableBalances(ctx context.Context) (decimal.Decimal, error) {
	return t.sumAvailable(), nil
}

func (t *memTx) ListEvents(ctx context.Context, afterSequence int64, limit int) ([]domain.LedgerEvent, error) {
	return t.listEvents(afterSequence, limit), nil
}

func (t *memTx) EnsureOwner(ctx context.Context, owner domain.Address, now time.Time) (domain.Address, error) {
	if t.owner.IsZero() {
		t.owner = owner
	}
	return t.owner, nil
}

// LockProject is a plain lookup; the writer lock is already held for the whole unit.
func (t *memTx) LockProject(ctx context.Context, projectID int64) (*domain.Project, error) {
	return t.findProject(projectID)
}

func (t *memTx) InsertProject(ctx context.Context, project *domain.Project) (int64, error) {
	project.ProjectID = int64(len(t.projects))
	t.projects = append(t.projects, *project)
	return project.ProjectID, nil
}

func (t *memTx) UpdateProjectState(ctx context.Context, project domain.Project) error {
	if _, err := t.findProject(project.ProjectID); err != nil {
		return err
	}
	if err := project.CheckInvariants(); err != nil {
		return fmt.Errorf("update project state: %w", err)
	}
	p := &t.projects[project.ProjectID]
	p.TotalDonated = project.TotalDonated
	p.WithdrawnAmount = project.WithdrawnAmount
	p.IsActive = project.IsActive
	p.LastUpdatedAt = project.LastUpdatedAt
	return nil
}

func (t *memTx) InsertDonation(ctx context.Context, donation *domain.Donation) error {
	if _, err := t.findProject(donation.ProjectID); err != nil {
		return err
	}
	donation.Index = int64(len(t.donations[donation.ProjectID]))
	t.donations[donation.ProjectID] = append(t.donations[donation.ProjectID], *donation)
	return nil
}

func (t *memTx) InsertExpense(ctx context.Context, expense *domain.Expense) error {
	if _, err := t.findProject(expense.ProjectID); err != nil {
		return err
	}
	expense.Index = int64(len(t.expenses[expense.ProjectID]))
	t.expenses[expense.ProjectID] = append(t.expenses[expense.ProjectID], *expense)
	return nil
}

func (t *memTx) InsertWithdrawal(ctx context.Context, withdrawal *domain.Withdrawal) error {
	if _, err := t.findProject(withdrawal.ProjectID); err != nil {
		return err
	}
	withdrawal.Index = int64(len(t.withdrawals[withdrawal.ProjectID]))
	t.withdrawals[withdrawal.ProjectID] = append(t.withdrawals[withdrawal.ProjectID], *withdrawal)
	return nil
}

func (t *memTx) AppendEvent(ctx context.Context, event *domain.LedgerEvent) error {
	event.Sequence = int64(len(t.events)) + 1
	t.events = append(t.events, *event)
	return nil
}

// --- shared read helpers ---

func (s *state) getOwner() (domain.Address, error) {
	if s.owner.IsZero() {
		return "", fmt.Errorf("%w: ledger owner has not been initialized", apperrors.ErrNotFound)
	}
	return s.owner, nil
}

func (s *state) findProject(projectID int64) (*domain.Project, error) {
	if projectID < 0 || projectID >= int64(len(s.projects)) {
		return nil, fmt.Errorf("%w: project does not exist", apperrors.ErrNotFound)
	}
	p := s.projects[projectID]
	return &p, nil
}

func (s *state) countDonations(projectID int64) (int64, error) {
	if _, err := s.findProject(projectID); err != nil {
		return 0, err
	}
	return int64(len(s.donations[projectID])), nil
}

func (s *state) findDonation(projectID, index int64) (*domain.Donation, error) {
	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}
	list := s.donations[projectID]
	if index < 0 || index >= int64(len(list)) {
		return nil, fmt.Errorf("%w: donation %d of project %d does not exist", apperrors.ErrNotFound, index, projectID)
	}
	d := list[index]
	return &d, nil
}

func (s *state) listDonations(projectID, fromIndex int64, limit int) ([]domain.Donation, error) {
	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}
	return page(s.donations[projectID], fromIndex, limit), nil
}

func (s *state) countExpenses(projectID int64) (int64, error) {
	if _, err := s.findProject(projectID); err != nil {
		return 0, err
	}
	return int64(len(s.expenses[projectID])), nil
}

func (s *state) findExpense(projectID, index int64) (*domain.Expense, error) {
	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}
	list := s.expenses[projectID]
	if index < 0 || index >= int64(len(list)) {
		return nil, fmt.Errorf("%w: expense %d of project %d does not exist", apperrors.ErrNotFound, index, projectID)
	}
	e := list[index]
	return &e, nil
}

func (s *state) listExpenses(projectID, fromIndex int64, limit int) ([]domain.Expense, error) {
	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}
	return page(s.expenses[projectID], fromIndex, limit), nil
}

func (s *state) listWithdrawals(projectID int64) ([]domain.Withdrawal, error) {
	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}
	return page(s.withdrawals[projectID], 0, 0), nil
}

func (s *state) sumAvailable() decimal.Decimal {
	total := decimal.Zero
	for i := range s.projects {
		total = total.Add(s.projects[i].AvailableBalance())
	}
	return total
}

func (s *state) listEvents(afterSequence int64, limit int) []domain.LedgerEvent {
	// sequence n lives at position n-1
	from := afterSequence
	if from < 0 {
		from = 0
	}
	return page(s.events, from, limit)
}

// page copies list[from:from+limit]. A non-positive limit means no limit.
func page[T any](list []T, from int64, limit int) []T {
	if from < 0 {
		from = 0
	}
	if from >= int64(len(list)) {
		return []T{}
	}
	end := int64(len(list))
	if limit > 0 && from+int64(limit) < end {
		end = from + int64(limit)
	}
	return slices.Clone(list[from:end])
}
