package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/charity_donation_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

var (
	owner       = domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	beneficiary = domain.MustParseAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	donor       = domain.MustParseAddress("0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB")
)

type LedgerRepositoryTestSuite struct {
	suite.Suite
	repo *memory.LedgerRepository
	ctx  context.Context
	now  time.Time
}

func TestLedgerRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerRepositoryTestSuite))
}

func (suite *LedgerRepositoryTestSuite) SetupTest() {
	suite.repo = memory.NewLedgerRepository()
	suite.ctx = context.Background()
	suite.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (suite *LedgerRepositoryTestSuite) createProject(name string) int64 {
	var id int64
	err := suite.repo.RunInTx(suite.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		p, err := domain.NewProject(name, "", beneficiary, domain.EtherToWei(10), suite.now)
		if err != nil {
			return err
		}
		id, err = tx.InsertProject(ctx, p)
		return err
	})
	suite.Require().NoError(err)
	return id
}

func (suite *LedgerRepositoryTestSuite) TestEnsureOwner_FirstWins() {
	_, err := suite.repo.GetOwner(suite.ctx)
	suite.True(errors.Is(err, apperrors.ErrNotFound))

	err = suite.repo.RunInTx(suite.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		got, err := tx.EnsureOwner(ctx, owner, suite.now)
		suite.Equal(owner, got)
		return err
	})
	suite.Require().NoError(err)

	err = suite.repo.RunInTx(suite.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		got, err := tx.EnsureOwner(ctx, donor, suite.now)
		suite.Equal(owner, got)
		return err
	})
	suite.Require().NoError(err)

	got, err := suite.repo.GetOwner(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(owner, got)
}

func (suite *LedgerRepositoryTestSuite) TestInsertProject_SequentialIDsFromZero() {
	suite.Equal(int64(0), suite.createProject("first"))
	suite.Equal(int64(1), suite.createProject("second"))

	count, err := suite.repo.CountProjects(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(2), count)

	p, err := suite.repo.FindProjectByID(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal("second", p.Name)
	suite.True(p.IsActive)

	_, err = suite.repo.FindProjectByID(suite.ctx, 2)
	suite.True(errors.Is(err, apperrors.ErrNotFound))
}

func (suite *LedgerRepositoryTestSuite) TestRunInTx_RollsBackOnError() {
	id := suite.createProject("p")
	boom := errors.New("transfer failed")

	err := suite.repo.RunInTx(suite.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		p, err := tx.LockProject(ctx, id)
		suite.Require().NoError(err)
		suite.Require().NoError(p.Donate(decimal.NewFromInt(5), suite.now))
		suite.Require().NoError(tx.UpdateProjectState(ctx, *p))
		suite.Require().NoError(tx.InsertDonation(ctx, &domain.Donation{ProjectID: id, Donor: donor, Amount: decimal.NewFromInt(5)}))
		suite.Require().NoError(tx.AppendEvent(ctx, &domain.LedgerEvent{Type: domain.EventDonationReceived, ProjectID: id}))
		return boom
	})
	suite.ErrorIs(err, boom)

	p, err := suite.repo.FindProjectByID(suite.ctx, id)
	suite.Require().NoError(err)
	suite.True(p.TotalDonated.IsZero())
	count, err := suite.repo.CountDonations(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Zero(count)
	events, err := suite.repo.ListEvents(suite.ctx, 0, 10)
	suite.Require().NoError(err)
	suite.Empty(events)
}

func (suite *LedgerRepositoryTestSuite) donateInTx(id int64, amount int64, fail error) error {
	return suite.repo.RunInTx(suite.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := tx.InsertDonation(ctx, &domain.Donation{ProjectID: id, Donor: donor, Amount: decimal.NewFromInt(amount), Timestamp: suite.now}); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, &domain.LedgerEvent{Type: domain.EventDonationReceived, ProjectID: id}); err != nil {
			return err
		}
		return fail
	})
}

func (suite *LedgerRepositoryTestSuite) TestRunInTx_AppendAfterRollbackTakesSameSlot() {
	id := suite.createProject("p")
	suite.Require().NoError(suite.donateInTx(id, 1, nil))

	before, err := suite.repo.ListDonations(suite.ctx, id, 0, 0)
	suite.Require().NoError(err)

	boom := errors.New("abort")
	suite.ErrorIs(suite.donateInTx(id, 99, boom), boom)

	count, err := suite.repo.CountDonations(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)
	_, err = suite.repo.FindDonation(suite.ctx, id, 1)
	suite.True(errors.Is(err, apperrors.ErrNotFound))

	suite.Require().NoError(suite.donateInTx(id, 7, nil))

	d, err := suite.repo.FindDonation(suite.ctx, id, 1)
	suite.Require().NoError(err)
	suite.Equal("7", d.Amount.String())
	events, err := suite.repo.ListEvents(suite.ctx, 0, 0)
	suite.Require().NoError(err)
	suite.Len(events, 2)
	suite.Equal(int64(2), events[1].Sequence)

	suite.Len(before, 1)
	suite.Equal("1", before[0].Amount.String())
}

func (suite *LedgerRepositoryTestSuite) TestRunInTx_ManyWritesKeepOrder() {
	id := suite.createProject("p")
	for i := int64(1); i <= 500; i++ {
		suite.Require().NoError(suite.donateInTx(id, i, nil))
	}

	count, err := suite.repo.CountDonations(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Equal(int64(500), count)
	last, err := suite.repo.FindDonation(suite.ctx, id, 499)
	suite.Require().NoError(err)
	suite.Equal("500", last.Amount.String())
	events, err := suite.repo.ListEvents(suite.ctx, 498, 0)
	suite.Require().NoError(err)
	suite.Len(events, 2)
	suite.Equal(int64(500), events[1].Sequence)
}

func (suite *LedgerRepositoryTestSuite) TestRecordsAndEvents() {
	id := suite.createProject("p")

	err := suite.repo.RunInTx(suite.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		for i := 1; i <= 3; i++ {
			d := &domain.Donation{ProjectID: id, Donor: donor, Amount: decimal.NewFromInt(int64(i)), Timestamp: suite.now}
			if err := tx.InsertDonation(ctx, d); err != nil {
				return err
			}
			suite.Equal(int64(i-1), d.Index)
			ev := &domain.LedgerEvent{Type: domain.EventDonationReceived, ProjectID: id}
			if err := tx.AppendEvent(ctx, ev); err != nil {
				return err
			}
			suite.Equal(int64(i), ev.Sequence)
		}
		return tx.InsertExpense(ctx, &domain.Expense{ProjectID: id, Description: "rent", Amount: decimal.NewFromInt(2), Recipient: donor})
	})
	suite.Require().NoError(err)

	d, err := suite.repo.FindDonation(suite.ctx, id, 2)
	suite.Require().NoError(err)
	suite.Equal("3", d.Amount.String())

	_, err = suite.repo.FindDonation(suite.ctx, id, 3)
	suite.True(errors.Is(err, apperrors.ErrNotFound))

	page, err := suite.repo.ListDonations(suite.ctx, id, 1, 1)
	suite.Require().NoError(err)
	suite.Len(page, 1)
	suite.Equal(int64(1), page[0].Index)

	e, err := suite.repo.FindExpense(suite.ctx, id, 0)
	suite.Require().NoError(err)
	suite.Equal("rent", e.Description)

	events, err := suite.repo.ListEvents(suite.ctx, 1, 10)
	suite.Require().NoError(err)
	suite.Len(events, 2)
	suite.Equal(int64(2), events[0].Sequence)
}

func (suite *LedgerRepositoryTestSuite) TestUpdateProjectState_RejectsOverdraw() {
	id := suite.createProject("p")
	err := suite.repo.RunInTx(suite.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		p, err := tx.LockProject(ctx, id)
		if err != nil {
			return err
		}
		p.WithdrawnAmount = decimal.NewFromInt(1)
		return tx.UpdateProjectState(ctx, *p)
	})
	suite.Error(err)
}

func (suite *LedgerRepositoryTestSuite) TestReportingAggregates() {
	a := suite.createProject("a")
	b := suite.createProject("b")
	err := suite.repo.RunInTx(suite.ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		for _, tc := range []struct {
			project int64
			from    domain.Address
			amount  int64
		}{{a, donor, 5}, {b, donor, 1}, {a, owner, 10}} {
			p, err := tx.LockProject(ctx, tc.project)
			if err != nil {
				return err
			}
			if err := p.Donate(decimal.NewFromInt(tc.amount), suite.now); err != nil {
				return err
			}
			if err := tx.UpdateProjectState(ctx, *p); err != nil {
				return err
			}
			if err := tx.InsertDonation(ctx, &domain.Donation{ProjectID: tc.project, Donor: tc.from, Amount: decimal.NewFromInt(tc.amount), Timestamp: suite.now}); err != nil {
				return err
			}
		}
		return nil
	})
	suite.Require().NoError(err)

	donors, err := suite.repo.AggregateDonors(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(donors, 2)
	for _, d := range donors {
		switch d.Donor {
		case donor:
			suite.Equal("6", d.TotalAmount.String())
			suite.Equal(int64(2), d.DonationCount)
		case owner:
			suite.Equal("10", d.TotalAmount.String())
		}
	}

	act, err := suite.repo.GetProjectActivity(suite.ctx, a)
	suite.Require().NoError(err)
	suite.Equal(int64(2), act.DonationCount)
	suite.Equal(int64(2), act.UniqueDonors)

	totals, err := suite.repo.GetLedgerTotals(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(2), totals.ProjectCount)
	suite.Equal("16", totals.ContractBalance.String())

	sum, err := suite.repo.SumAvailableBalances(suite.ctx)
	suite.Require().NoError(err)
	suite.True(sum.Equal(totals.ContractBalance))
}
