package api

import (
	"errors"
	"net/http"

	reqdto "merch-api/internal/handler/dto/request"
	resdto "merch-api/internal/handler/dto/response"
	"merch-api/internal/handler/middleware"
	"merch-api/internal/pkg/errs"
	"merch-api/internal/usecase/commands"
	"merch-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errIdempotencyKeyRequired = errors.New("Idempotency-Key header is required")

type MerchHandler struct {
	catalogQueries    queries.CatalogQueries
	quoteQueries      queries.QuoteQueries
	redemptionQueries queries.RedemptionQueries
	redeemCommands    commands.RedeemCommands
}

func NewMerchHandler(
	catalogQueries queries.CatalogQueries,
	quoteQueries queries.QuoteQueries,
	redemptionQueries queries.RedemptionQueries,
	redeemCommands commands.RedeemCommands,
) *MerchHandler {
	return &MerchHandler{
		catalogQueries:    catalogQueries,
		quoteQueries:      quoteQueries,
		redemptionQueries: redemptionQueries,
		redeemCommands:    redeemCommands,
	}
}

// @Summary List catalog
// @Description List redeemable products currently in stock
// @Tags merch
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.ProductResponse
// @Failure 401 {object} map[string]string
// @Router /merch/products [get]
func (h *MerchHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogQueries.ListCatalog(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.ProductResponse, len(products))
	for i, p := range products {
		response[i] = resdto.FromProductView(p)
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Quote a redemption
// @Description Price a product against a requested credit spend. No side effects.
// @Tags merch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.QuoteRequest true "Quote request"
// @Success 200 {object} resdto.QuoteResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /merch/quote [post]
func (h *MerchHandler) Quote(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	quote, err := h.quoteQueries.GetQuote(c.Request.Context(), userID, req.ProductID, req.CreditsToUse)
	if err != nil {
		switch {
		case errs.Is(err, queries.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
		case errs.Is(err, queries.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		case errs.Is(err, queries.ErrPendingCredits):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Pending credits must be resolved before redeeming",
			})
		case errs.Is(err, queries.ErrInsufficientCredits):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Insufficient credits",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromQuote(quote))
}

// @Summary Redeem credits
// @Description Execute a redemption with idempotency key
// @Tags merch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.RedeemRequest true "Redeem request"
// @Success 201 {object} resdto.RedeemResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /merch/redeem [post]
func (h *MerchHandler) Redeem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	idempotencyKey, err := h.getIdempotencyKey(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	var req reqdto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.redeemCommands.Redeem(c.Request.Context(), req, userID, idempotencyKey)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
		case errs.Is(err, commands.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found or out of stock",
			})
		case errs.Is(err, commands.ErrPendingCredits):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Pending credits must be resolved before redeeming",
			})
		case errs.Is(err, commands.ErrInsufficientCredits):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Insufficient credits",
			})
		case errs.Is(err, commands.ErrInvalidRedemption):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid redemption request",
			})
		case errs.Is(err, commands.ErrDuplicateRedemption):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Duplicate redemption request with different parameters",
			})
		case errs.Is(err, commands.ErrIdempotencyInProgress):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Redemption request is currently being processed",
			})
		case errs.Is(err, commands.ErrPaymentUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Payment provider unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, &resdto.RedeemResponse{
		Success:          true,
		RedemptionID:     result.Redemption.ID,
		PaymentReference: result.Redemption.PaymentReference,
		Status:           result.Redemption.Status,
		TotalAmount:      result.Redemption.TotalAmount.StringFixed(2),
		Replayed:         result.IsReplayed,
	})
}

// @Summary Redemption history
// @Description List the authenticated user's redemptions, newest first
// @Tags merch
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.RedemptionResponse
// @Failure 401 {object} map[string]string
// @Router /merch/redemptions [get]
func (h *MerchHandler) ListRedemptions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	views, err := h.redemptionQueries.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.RedemptionResponse, 0, len(views))
	for _, v := range views {
		resp, convErr := resdto.FromRedemptionView(v)
		if convErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			return
		}
		response = append(response, resp)
	}
	c.JSON(http.StatusOK, response)
}

func (h *MerchHandler) getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	keyStr := c.GetHeader("Idempotency-Key")
	if keyStr == "" {
		return uuid.Nil, errIdempotencyKeyRequired
	}

	key, err := uuid.Parse(keyStr)
	if err != nil {
		return uuid.Nil, errors.New("invalid idempotency key format")
	}

	return key, nil
}
