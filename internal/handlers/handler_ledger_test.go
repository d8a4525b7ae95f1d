package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/charity_donation_ledger/internal/core/ports/services"
	"github.com/SscSPs/charity_donation_ledger/internal/core/services"
	"github.com/SscSPs/charity_donation_ledger/internal/dto"
	"github.com/SscSPs/charity_donation_ledger/internal/handlers"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
	"github.com/SscSPs/charity_donation_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var (
	ownerAddr       = domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	beneficiaryAddr = domain.MustParseAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	donorAddr       = domain.MustParseAddress("0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB")
)

// --- Mock ExchangeRateSvc ---
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) GetEthUsdRate(ctx context.Context, forceRefresh bool) domain.PriceQuote {
	args := m.Called(ctx, forceRefresh)
	return args.Get(0).(domain.PriceQuote)
}

var _ portssvc.ExchangeRateSvc = (*MockExchangeRateService)(nil)

// switchableTransferer fails payouts while failing is set.
type switchableTransferer struct {
	failing bool
}

func (t *switchableTransferer) Transfer(ctx context.Context, w domain.Withdrawal) error {
	if t.failing {
		return errors.New("broker unavailable")
	}
	return nil
}

// eventBody is the subset of an event response the tests inspect.
type eventBody struct {
	Sequence  int64  `json:"sequence"`
	Type      string `json:"type"`
	ProjectID int64  `json:"projectID"`
	Caller    string `json:"caller"`
}

// --- Test Suite ---
type LedgerAPITestSuite struct {
	suite.Suite
	router     *gin.Engine
	tokens     portssvc.TokenSvcFacade
	rates      *MockExchangeRateService
	transferer *switchableTransferer
	ownerToken string
	benefToken string
	donorToken string
}

func (suite *LedgerAPITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(handlers.RegisterValidators())
}

func (suite *LedgerAPITestSuite) SetupTest() {
	cfg := &config.Config{
		IsProduction:      true,
		JWTSecret:         "test-secret-key-that-is-long-enough",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "charity-ledger-test",
	}
	store := memory.NewLedgerRepository()
	suite.transferer = &switchableTransferer{}
	suite.rates = new(MockExchangeRateService)
	suite.tokens = services.NewTokenService(cfg)

	ledger := services.NewLedgerService(store, services.WithFundsTransferer(suite.transferer))
	_, err := ledger.Initialize(context.Background(), ownerAddr)
	suite.Require().NoError(err)

	container := &portssvc.ServiceContainer{
		Ledger:       ledger,
		Reporting:    services.NewReportingService(store, store),
		ExchangeRate: suite.rates,
		TokenService: suite.tokens,
	}

	suite.router = gin.New()
	suite.router.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	handlers.RegisterRoutes(suite.router, cfg, container)

	suite.ownerToken = suite.token(ownerAddr)
	suite.benefToken = suite.token(beneficiaryAddr)
	suite.donorToken = suite.token(donorAddr)
}

func (suite *LedgerAPITestSuite) token(account domain.Address) string {
	token, _, err := suite.tokens.GenerateAccessToken(context.Background(), account)
	suite.Require().NoError(err)
	return token
}

func (suite *LedgerAPITestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LedgerAPITestSuite) decode(w *httptest.ResponseRecorder, out any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (suite *LedgerAPITestSuite) createProject(goal string) int64 {
	w := suite.do(http.MethodPost, "/api/v1/projects", suite.ownerToken, map[string]string{
		"name":            "Clean water",
		"description":     "Wells for three villages",
		"beneficiary":     beneficiaryAddr.String(),
		"fundraisingGoal": goal,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var ev eventBody
	suite.decode(w, &ev)
	return ev.ProjectID
}

func (suite *LedgerAPITestSuite) donate(projectID int64, amount string) *httptest.ResponseRecorder {
	return suite.do(http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/donations", projectID), suite.donorToken,
		map[string]string{"amount": amount, "message": "good luck"})
}

// --- Test Cases ---

func (suite *LedgerAPITestSuite) TestHealthAndHomeArePublic() {
	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/health", "", nil).Code)
	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/", "", nil).Code)
}

func (suite *LedgerAPITestSuite) TestAPIRequiresBearerToken() {
	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodGet, "/api/v1/ledger", "", nil).Code)
	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodGet, "/api/v1/ledger", "not-a-jwt", nil).Code)
}

func (suite *LedgerAPITestSuite) TestCreateProject_Flow() {
	id := suite.createProject("10000000000000000000")
	suite.Equal(int64(0), id)

	w := suite.do(http.MethodGet, "/api/v1/ledger", suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var info dto.LedgerInfoResponse
	suite.decode(w, &info)
	suite.Equal(ownerAddr.String(), info.Owner)
	suite.Equal(int64(1), info.ProjectCount)
	suite.True(info.ContractBalance.IsZero())

	w = suite.do(http.MethodGet, "/api/v1/projects/0", suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var project dto.ProjectResponse
	suite.decode(w, &project)
	suite.Equal("Clean water", project.Name)
	suite.True(project.IsActive)
	suite.Equal(beneficiaryAddr.String(), project.Beneficiary)

	w = suite.do(http.MethodGet, "/api/v1/projects?limit=10", suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListProjectsResponse
	suite.decode(w, &list)
	suite.Equal(int64(1), list.Total)
	suite.Len(list.Projects, 1)
}

func (suite *LedgerAPITestSuite) TestCreateProject_Rejections() {
	body := map[string]string{"name": "x", "beneficiary": beneficiaryAddr.String(), "fundraisingGoal": "1"}
	suite.Equal(http.StatusForbidden, suite.do(http.MethodPost, "/api/v1/projects", suite.donorToken, body).Code)

	body["beneficiary"] = "0x1234"
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodPost, "/api/v1/projects", suite.ownerToken, body).Code)

	body["beneficiary"] = beneficiaryAddr.String()
	body["fundraisingGoal"] = "-5"
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodPost, "/api/v1/projects", suite.ownerToken, body).Code)

	body["fundraisingGoal"] = "1.5"
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodPost, "/api/v1/projects", suite.ownerToken, body).Code)
}

func (suite *LedgerAPITestSuite) TestDonationsAndWithdrawalScenario() {
	id := suite.createProject("10000000000000000000")
	suite.Equal(http.StatusCreated, suite.donate(id, "1000000000000000000").Code)
	suite.Equal(http.StatusCreated, suite.donate(id, "2000000000000000000").Code)

	withdraw := func(token, amount string) int {
		return suite.do(http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/withdrawals", id), token,
			map[string]string{"amount": amount}).Code
	}
	suite.Equal(http.StatusForbidden, withdraw(suite.donorToken, "1"))
	suite.Equal(http.StatusCreated, withdraw(suite.benefToken, "2000000000000000000"))
	suite.Equal(http.StatusUnprocessableEntity, withdraw(suite.benefToken, "5000000000000000000"))

	w := suite.do(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/balance", id), suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var balance dto.BalanceResponse
	suite.decode(w, &balance)
	suite.Equal("1000000000000000000", balance.AvailableBalance.String())
	suite.Equal("2000000000000000000", balance.WithdrawnAmount.String())

	w = suite.do(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/withdrawals", id), suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var withdrawals []dto.WithdrawalResponse
	suite.decode(w, &withdrawals)
	suite.Len(withdrawals, 1)
}

func (suite *LedgerAPITestSuite) TestDonate_Rejections() {
	id := suite.createProject("100")
	suite.Equal(http.StatusBadRequest, suite.donate(id, "0").Code)
	suite.Equal(http.StatusNotFound, suite.donate(42, "1").Code)
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodPost, "/api/v1/projects/abc/donations", suite.donorToken,
		map[string]string{"amount": "1"}).Code)

	suite.Equal(http.StatusOK, suite.do(http.MethodPatch, fmt.Sprintf("/api/v1/projects/%d/status", id), suite.ownerToken, nil).Code)
	suite.Equal(http.StatusConflict, suite.donate(id, "1").Code)

	suite.Equal(http.StatusForbidden, suite.do(http.MethodPatch, fmt.Sprintf("/api/v1/projects/%d/status", id), suite.donorToken, nil).Code)
}

func (suite *LedgerAPITestSuite) TestAmountsAreBoundedToUint256() {
	const maxUint256 = "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	const overUint256 = "115792089237316195423570985008687907853269984665640564039457584007913129639936"

	full := suite.createProject(maxUint256)
	suite.Equal(http.StatusCreated, suite.donate(full, maxUint256).Code)
	suite.Equal(http.StatusBadRequest, suite.donate(full, "1").Code)

	w := suite.do(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/balance", full), suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var balance dto.BalanceResponse
	suite.decode(w, &balance)
	suite.Equal(maxUint256, balance.AvailableBalance.String())

	id := suite.createProject("100")
	for _, amount := range []string{overUint256, "1e100", "1e20000000"} {
		suite.Equal(http.StatusBadRequest, suite.donate(id, amount).Code, amount)
	}

	body := map[string]string{"name": "x", "beneficiary": beneficiaryAddr.String(), "fundraisingGoal": overUint256}
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodPost, "/api/v1/projects", suite.ownerToken, body).Code)
	body["fundraisingGoal"] = "1e20000000"
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodPost, "/api/v1/projects", suite.ownerToken, body).Code)

	expense := map[string]string{"description": "fuel", "amount": overUint256, "recipient": donorAddr.String()}
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/expenses", id), suite.benefToken, expense).Code)

	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/api/v1/rates/eth-usd?wei="+overUint256, suite.donorToken, nil).Code)
	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/api/v1/rates/eth-usd?eth=1e100", suite.donorToken, nil).Code)
}

func (suite *LedgerAPITestSuite) TestListDonations_Paginates() {
	id := suite.createProject("100")
	for i := 1; i <= 3; i++ {
		suite.Require().Equal(http.StatusCreated, suite.donate(id, fmt.Sprint(i)).Code)
	}

	path := fmt.Sprintf("/api/v1/projects/%d/donations?limit=2", id)
	w := suite.do(http.MethodGet, path, suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page dto.ListDonationsResponse
	suite.decode(w, &page)
	suite.Equal(int64(3), page.Count)
	suite.Len(page.Donations, 2)
	suite.Require().NotNil(page.NextToken)

	w = suite.do(http.MethodGet, path+"&nextToken="+*page.NextToken, suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var last dto.ListDonationsResponse
	suite.decode(w, &last)
	suite.Require().Len(last.Donations, 1)
	suite.Equal(int64(2), last.Donations[0].Index)
	suite.Equal("3", last.Donations[0].Amount.String())
	suite.Nil(last.NextToken)

	// a donations token is not valid for expenses
	w = suite.do(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/expenses?nextToken=%s", id, *page.NextToken), suite.donorToken, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/donations/1", id), suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var donation dto.DonationResponse
	suite.decode(w, &donation)
	suite.Equal(donorAddr.String(), donation.Donor)
	suite.Equal("good luck", donation.Message)

	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/donations/3", id), suite.donorToken, nil).Code)
}

func (suite *LedgerAPITestSuite) TestRecordExpense() {
	id := suite.createProject("100")
	path := fmt.Sprintf("/api/v1/projects/%d/expenses", id)
	body := map[string]string{"description": "pipes", "amount": "40", "recipient": donorAddr.String()}

	suite.Equal(http.StatusForbidden, suite.do(http.MethodPost, path, suite.donorToken, body).Code)
	suite.Equal(http.StatusCreated, suite.do(http.MethodPost, path, suite.benefToken, body).Code)

	w := suite.do(http.MethodGet, path, suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListExpensesResponse
	suite.decode(w, &list)
	suite.Equal(int64(1), list.Count)
	suite.Require().Len(list.Expenses, 1)
	suite.Equal("pipes", list.Expenses[0].Description)

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, path+"/0", suite.donorToken, nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, path+"/1", suite.donorToken, nil).Code)
}

func (suite *LedgerAPITestSuite) TestFailedPayoutRecordsNothing() {
	id := suite.createProject("100")
	suite.Require().Equal(http.StatusCreated, suite.donate(id, "10").Code)
	suite.transferer.failing = true

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/withdrawals", id), suite.benefToken, map[string]string{"amount": "5"})
	suite.Equal(http.StatusBadGateway, w.Code)

	w = suite.do(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/balance", id), suite.donorToken, nil)
	var balance dto.BalanceResponse
	suite.decode(w, &balance)
	suite.Equal("10", balance.AvailableBalance.String())
	suite.True(balance.WithdrawnAmount.IsZero())
}

func (suite *LedgerAPITestSuite) TestListEvents() {
	id := suite.createProject("100")
	suite.Require().Equal(http.StatusCreated, suite.donate(id, "7").Code)

	w := suite.do(http.MethodGet, "/api/v1/ledger/events?afterSequence=1", suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var body struct {
		Events       []eventBody `json:"events"`
		LastSequence int64       `json:"lastSequence"`
	}
	suite.decode(w, &body)
	suite.Require().Len(body.Events, 1)
	suite.Equal(string(domain.EventDonationReceived), body.Events[0].Type)
	suite.Equal(donorAddr.String(), body.Events[0].Caller)
	suite.Equal(int64(2), body.LastSequence)
}

func (suite *LedgerAPITestSuite) TestReports() {
	id := suite.createProject("100")
	suite.Require().Equal(http.StatusCreated, suite.donate(id, "25").Code)

	w := suite.do(http.MethodGet, "/api/v1/reports/donors?rankBy=count", suite.ownerToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var ranking dto.DonorRankingResponse
	suite.decode(w, &ranking)
	suite.Require().Len(ranking.Donors, 1)
	suite.Equal(1, ranking.Donors[0].Rank)

	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/api/v1/reports/donors?rankBy=recency", suite.ownerToken, nil).Code)
	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/api/v1/reports/summary", suite.ownerToken, nil).Code)

	w = suite.do(http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/stats", id), suite.ownerToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var stats domain.ProjectStats
	suite.decode(w, &stats)
	suite.Equal("25", stats.ProgressPercent.String())
}

func (suite *LedgerAPITestSuite) TestEthUsdRate_ConvertsWei() {
	quote := domain.PriceQuote{
		Pair:      "ETH/USD",
		Price:     decimal.NewFromInt(2000),
		Source:    "cryptocompare",
		FetchedAt: time.Now().UTC(),
	}
	suite.rates.On("GetEthUsdRate", mock.Anything, true).Return(quote).Once()

	w := suite.do(http.MethodGet, "/api/v1/rates/eth-usd?refresh=true&wei=1500000000000000000", suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.ExchangeRateResponse
	suite.decode(w, &resp)
	suite.Equal("2000", resp.Price.String())
	suite.Require().NotNil(resp.USD)
	suite.Equal("3000", resp.USD.String())
	suite.rates.AssertExpectations(suite.T())

	suite.rates.On("GetEthUsdRate", mock.Anything, false).Return(quote).Once()
	w = suite.do(http.MethodGet, "/api/v1/rates/eth-usd?eth=0.25", suite.donorToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &resp)
	suite.Equal("250000000000000000", resp.Wei.String())
	suite.Equal("500", resp.USD.String())

	suite.Equal(http.StatusBadRequest, suite.do(http.MethodGet, "/api/v1/rates/eth-usd?wei=abc", suite.donorToken, nil).Code)
}

// --- Run Test Suite ---
func TestLedgerAPI(t *testing.T) {
	suite.Run(t, new(LedgerAPITestSuite))
}
