package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/SscSPs/charity_donation_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/charity_donation_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/charity_donation_ledger/internal/core/ports/services"
	"github.com/SscSPs/charity_donation_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledgerService is the single writer of ledger state. Every mutation runs
// under mu and inside one repository unit of work.
type ledgerService struct {
	BaseService
	mu         sync.Mutex
	repo       portsrepo.LedgerRepositoryFacade
	transferer ports.FundsTransferer
	publisher  ports.EventPublisher
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithFundsTransferer sets the payout port called at the end of every withdrawal.
func WithFundsTransferer(t ports.FundsTransferer) LedgerServiceOption {
	return func(s *ledgerService) {
		s.transferer = t
	}
}

// WithEventPublisher sets where committed events are fanned out to.
func WithEventPublisher(p ports.EventPublisher) LedgerServiceOption {
	return func(s *ledgerService) {
		s.publisher = p
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.clock = clock
	}
}

// NewLedgerService creates a ledger service with the provided options
func NewLedgerService(repo portsrepo.LedgerRepositoryFacade, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{repo: repo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure ledgerService implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// Initialize fixes the owner on first start. A stored owner always wins.
func (s *ledgerService) Initialize(ctx context.Context, owner domain.Address) (domain.Address, error) {
	if owner.IsZero() {
		return "", fmt.Errorf("%w: owner address is required", apperrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stored domain.Address
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		stored, err = tx.EnsureOwner(ctx, owner, s.Now())
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to initialize ledger owner")
		return "", fmt.Errorf("failed to initialize ledger owner: %w", err)
	}
	if stored != owner {
		s.GetLogger(ctx).Warn("Configured owner differs from stored owner, keeping stored owner",
			slog.String("configured", owner.String()),
			slog.String("stored", stored.String()))
	}
	return stored, nil
}

// CreateProject registers a new project. Only the owner may call it.
func (s *ledgerService) CreateProject(ctx context.Context, req dto.CreateProjectRequest, caller domain.Address) (*domain.LedgerEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	var event *domain.LedgerEvent
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := authorizeOwner(ctx, tx, caller); err != nil {
			return err
		}
		beneficiary, err := domain.ParseAddress(req.Beneficiary)
		if err != nil {
			return err
		}
		project, err := domain.NewProject(req.Name, req.Description, beneficiary, req.FundraisingGoal, now)
		if err != nil {
			return err
		}
		projectID, err := tx.InsertProject(ctx, project)
		if err != nil {
			return err
		}
		event, err = appendEvent(ctx, tx, caller, projectID, domain.ProjectCreated{
			ProjectID:   projectID,
			Name:        project.Name,
			Beneficiary: project.Beneficiary,
			Goal:        project.FundraisingGoal,
		}, now)
		return err
	})
	if err != nil {
		s.LogRejection(ctx, err, "Project creation rejected", slog.String("caller", caller.String()))
		return nil, err
	}

	s.publish(ctx, event)
	s.LogInfo(ctx, "Project created", slog.Int64("project_id", event.ProjectID))
	return event, nil
}

// Donate credits req.Amount to an active project on behalf of caller.
func (s *ledgerService) Donate(ctx context.Context, projectID int64, req dto.DonateRequest, caller domain.Address) (*domain.LedgerEvent, error) {
	if caller.IsZero() {
		return nil, fmt.Errorf("%w: donor address is required", apperrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	var event *domain.LedgerEvent
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		project, err := tx.LockProject(ctx, projectID)
		if err != nil {
			return err
		}
		if err := project.Donate(req.Amount, now); err != nil {
			return err
		}
		if err := tx.UpdateProjectState(ctx, *project); err != nil {
			return err
		}
		donation := &domain.Donation{
			ProjectID: projectID,
			Donor:     caller,
			Amount:    req.Amount,
			Message:   req.Message,
			Timestamp: now,
		}
		if err := tx.InsertDonation(ctx, donation); err != nil {
			return err
		}
		event, err = appendEvent(ctx, tx, caller, projectID, domain.DonationReceived{
			ProjectID: projectID,
			Donor:     caller,
			Amount:    req.Amount,
			Message:   req.Message,
		}, now)
		return err
	})
	if err != nil {
		s.LogRejection(ctx, err, "Donation rejected",
			slog.Int64("project_id", projectID),
			slog.String("amount", req.Amount.String()))
		return nil, err
	}

	s.publish(ctx, event)
	s.LogInfo(ctx, "Donation received",
		slog.Int64("project_id", projectID),
		slog.String("amount", req.Amount.String()))
	return event, nil
}

// WithdrawFunds pays req.Amount out of the project's available balance to its beneficiary.
// The payout is requested last; if it fails nothing is recorded.
func (s *ledgerService) WithdrawFunds(ctx context.Context, projectID int64, req dto.WithdrawFundsRequest, caller domain.Address) (*domain.LedgerEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	var event *domain.LedgerEvent
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		project, err := tx.LockProject(ctx, projectID)
		if err != nil {
			return err
		}
		if err := project.Withdraw(caller, req.Amount, now); err != nil {
			return err
		}
		if err := tx.UpdateProjectState(ctx, *project); err != nil {
			return err
		}
		withdrawal := &domain.Withdrawal{
			ProjectID:   projectID,
			Beneficiary: project.Beneficiary,
			Amount:      req.Amount,
			Timestamp:   now,
		}
		if err := tx.InsertWithdrawal(ctx, withdrawal); err != nil {
			return err
		}
		event, err = appendEvent(ctx, tx, caller, projectID, domain.FundsWithdrawn{
			ProjectID:   projectID,
			Beneficiary: project.Beneficiary,
			Amount:      req.Amount,
		}, now)
		if err != nil {
			return err
		}
		if s.transferer == nil {
			return nil
		}
		if err := s.transferer.Transfer(ctx, *withdrawal); err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrTransferFailed, err)
		}
		return nil
	})
	if err != nil {
		s.LogRejection(ctx, err, "Withdrawal rejected",
			slog.Int64("project_id", projectID),
			slog.String("amount", req.Amount.String()))
		return nil, err
	}

	s.publish(ctx, event)
	s.LogInfo(ctx, "Funds withdrawn",
		slog.Int64("project_id", projectID),
		slog.String("amount", req.Amount.String()))
	return event, nil
}

// RecordExpense logs a spend reported by the beneficiary. Balances are not touched.
func (s *ledgerService) RecordExpense(ctx context.Context, projectID int64, req dto.RecordExpenseRequest, caller domain.Address) (*domain.LedgerEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	var event *domain.LedgerEvent
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		project, err := tx.LockProject(ctx, projectID)
		if err != nil {
			return err
		}
		if err := project.AuthorizeBeneficiary(caller); err != nil {
			return err
		}
		recipient, err := domain.ParseAddress(req.Recipient)
		if err != nil {
			return err
		}
		expense, err := domain.NewExpense(projectID, req.Description, req.Amount, recipient, now)
		if err != nil {
			return err
		}
		if err := tx.InsertExpense(ctx, expense); err != nil {
			return err
		}
		event, err = appendEvent(ctx, tx, caller, projectID, domain.ExpenseRecorded{
			ProjectID:   projectID,
			Description: expense.Description,
			Amount:      expense.Amount,
			Recipient:   expense.Recipient,
		}, now)
		return err
	})
	if err != nil {
		s.LogRejection(ctx, err, "Expense rejected", slog.Int64("project_id", projectID))
		return nil, err
	}

	s.publish(ctx, event)
	s.LogInfo(ctx, "Expense recorded",
		slog.Int64("project_id", projectID),
		slog.String("amount", req.Amount.String()))
	return event, nil
}

// ToggleProjectStatus flips a project between active and inactive. Only the owner may call it.
func (s *ledgerService) ToggleProjectStatus(ctx context.Context, projectID int64, caller domain.Address) (*domain.LedgerEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	var event *domain.LedgerEvent
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := authorizeOwner(ctx, tx, caller); err != nil {
			return err
		}
		project, err := tx.LockProject(ctx, projectID)
		if err != nil {
			return err
		}
		active := project.ToggleStatus(now)
		if err := tx.UpdateProjectState(ctx, *project); err != nil {
			return err
		}
		event, err = appendEvent(ctx, tx, caller, projectID, domain.ProjectStatusChanged{
			ProjectID: projectID,
			IsActive:  active,
		}, now)
		return err
	})
	if err != nil {
		s.LogRejection(ctx, err, "Status change rejected", slog.Int64("project_id", projectID))
		return nil, err
	}

	s.publish(ctx, event)
	s.LogInfo(ctx, "Project status changed", slog.Int64("project_id", projectID))
	return event, nil
}

// --- reads ---

func (s *ledgerService) GetOwner(ctx context.Context) (domain.Address, error) {
	return s.repo.GetOwner(ctx)
}

func (s *ledgerService) GetProjectCount(ctx context.Context) (int64, error) {
	return s.repo.CountProjects(ctx)
}

func (s *ledgerService) GetProject(ctx context.Context, projectID int64) (*domain.Project, error) {
	return s.repo.FindProjectByID(ctx, projectID)
}

func (s *ledgerService) ListProjects(ctx context.Context, limit int, offset int) ([]domain.Project, error) {
	projects, err := s.repo.ListProjects(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list projects")
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *ledgerService) GetAvailableBalance(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	p, err := s.repo.FindProjectByID(ctx, projectID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.AvailableBalance(), nil
}

func (s *ledgerService) GetWithdrawnAmount(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	p, err := s.repo.FindProjectByID(ctx, projectID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.WithdrawnAmount, nil
}

func (s *ledgerService) GetContractBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.SumAvailableBalances(ctx)
}

func (s *ledgerService) GetDonationCount(ctx context.Context, projectID int64) (int64, error) {
	return s.repo.CountDonations(ctx, projectID)
}

func (s *ledgerService) GetDonation(ctx context.Context, projectID int64, index int64) (*domain.Donation, error) {
	return s.repo.FindDonation(ctx, projectID, index)
}

func (s *ledgerService) ListDonations(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Donation, error) {
	return s.repo.ListDonations(ctx, projectID, fromIndex, limit)
}

func (s *ledgerService) GetExpenseCount(ctx context.Context, projectID int64) (int64, error) {
	return s.repo.CountExpenses(ctx, projectID)
}

func (s *ledgerService) GetExpense(ctx context.Context, projectID int64, index int64) (*domain.Expense, error) {
	return s.repo.FindExpense(ctx, projectID, index)
}

func (s *ledgerService) ListExpenses(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Expense, error) {
	return s.repo.ListExpenses(ctx, projectID, fromIndex, limit)
}

func (s *ledgerService) ListWithdrawals(ctx context.Context, projectID int64) ([]domain.Withdrawal, error) {
	return s.repo.ListWithdrawals(ctx, projectID)
}

func (s *ledgerService) ListEvents(ctx context.Context, afterSequence int64, limit int) ([]domain.LedgerEvent, error) {
	if afterSequence < 0 {
		return nil, fmt.Errorf("%w: afterSequence must not be negative", apperrors.ErrValidation)
	}
	return s.repo.ListEvents(ctx, afterSequence, limit)
}

// --- helpers ---

func authorizeOwner(ctx context.Context, tx portsrepo.LedgerTx, caller domain.Address) error {
	owner, err := tx.GetOwner(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if owner.IsZero() || caller != owner {
		return fmt.Errorf("%w: only contract owner can call this function", apperrors.ErrUnauthorized)
	}
	return nil
}

func appendEvent(ctx context.Context, tx portsrepo.LedgerTx, caller domain.Address, projectID int64, payload domain.EventPayload, now time.Time) (*domain.LedgerEvent, error) {
	event := &domain.LedgerEvent{
		EventID:   uuid.NewString(),
		Type:      payload.EventType(),
		ProjectID: projectID,
		Caller:    caller,
		Payload:   payload,
		EmittedAt: now,
	}
	if err := tx.AppendEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// publish fans a committed event out. The event is already in the log, so a
// failure here is only logged; consumers can catch up from ListEvents.
func (s *ledgerService) publish(ctx context.Context, event *domain.LedgerEvent) {
	if s.publisher == nil || event == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), *event); err != nil {
		s.LogError(ctx, err, "Failed to publish ledger event",
			slog.Int64("sequence", event.Sequence),
			slog.String("type", string(event.Type)))
	}
}
