package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/charity_donation_ledger/internal/core/ports/services"
	"github.com/SscSPs/charity_donation_ledger/internal/dto"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
	"github.com/SscSPs/charity_donation_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvc
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvc) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvc) {
	h := newExchangeRateHandler(exchangeRateService)

	rates := rg.Group("/rates")
	{
		rates.GET("/eth-usd", h.getEthUsdRate)
	}
}

// getEthUsdRate godoc
// @Summary Get the ETH/USD rate
// @Description Returns the cached or freshly fetched ETH/USD rate. Optionally converts a wei amount to USD.
// @Tags exchange rates
// @Produce  json
// @Param   refresh query bool false "Bypass the cache"
// @Param   wei query string false "Amount in wei to convert"
// @Param   eth query string false "Amount in whole ETH to convert, used when wei is absent"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /rates/eth-usd [get]
func (h *exchangeRateHandler) getEthUsdRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.GetRateParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for GetEthUsdRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	var wei *decimal.Decimal
	switch {
	case params.Wei != "":
		amount, err := domain.ParseAmount(params.Wei)
		if err != nil {
			respondWithError(c, logger, err, "convert amount")
			return
		}
		wei = &amount
	case params.Eth != "":
		amount, err := utils.ParseEtherToWei(params.Eth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid eth amount: " + err.Error()})
			return
		}
		wei = &amount
	}

	quote := h.exchangeRateService.GetEthUsdRate(c.Request.Context(), params.Refresh)
	resp := dto.ToExchangeRateResponse(&quote)
	if wei != nil {
		usd := quote.ToUSD(*wei)
		resp.Wei = wei
		resp.USD = &usd
	}

	if resp.Simulated {
		logger.Warn("Serving simulated exchange rate", slog.String("price", resp.Price.String()))
	}
	c.JSON(http.StatusOK, resp)
}
