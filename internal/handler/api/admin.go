package api

import (
	"net/http"
	"time"

	reqdto "merch-api/internal/handler/dto/request"
	resdto "merch-api/internal/handler/dto/response"
	"merch-api/internal/pkg/errs"
	"merch-api/internal/usecase/commands"
	"merch-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminQueries  queries.AdminQueries
	adminCommands commands.CatalogAdminCommands
}

func NewAdminHandler(adminQueries queries.AdminQueries, adminCommands commands.CatalogAdminCommands) *AdminHandler {
	return &AdminHandler{
		adminQueries:  adminQueries,
		adminCommands: adminCommands,
	}
}

// @Summary List products
// @Description List all stored products, including out-of-stock ones
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.ProductResponse
// @Router /admin/products [get]
func (h *AdminHandler) ListProducts(c *gin.Context) {
	products, err := h.adminQueries.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, resdto.FromProductView(p))
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Create product
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ProductRequest true "Product"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/products [post]
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req reqdto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	id, err := h.adminCommands.CreateProduct(c.Request.Context(), req)
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrInvalidProduct):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid product",
			})
		case errs.Is(err, commands.ErrDuplicateProduct):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Product already exists",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary Update product
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body reqdto.ProductRequest true "Product"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/products/{id} [put]
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	var req reqdto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.adminCommands.UpdateProduct(c.Request.Context(), c.Param("id"), req); err != nil {
		switch {
		case errs.Is(err, commands.ErrInvalidProduct):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid product",
			})
		case errs.Is(err, commands.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Delete product
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	if err := h.adminCommands.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errs.Is(err, commands.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Platform metrics
// @Description Aggregated engagement counters plus a 30-day redemption chart
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param since query string false "RFC3339 lower bound for counters"
// @Success 200 {object} resdto.MetricsResponse
// @Failure 400 {object} map[string]string
// @Router /admin/metrics [get]
func (h *AdminHandler) GetMetrics(c *gin.Context) {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid since parameter",
			})
			return
		}
		since = &parsed
	}

	metrics, err := h.adminQueries.GetMetrics(c.Request.Context(), since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromMetricsView(metrics))
}

// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.DashboardResponse
// @Router /admin/dashboard [get]
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.adminQueries.GetDashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	resp, err := resdto.FromDashboardView(dashboard)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List lanes
// @Description List learning lanes, optionally filtered by state
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param state query string false "Lane state filter"
// @Success 200 {array} resdto.LaneResponse
// @Router /admin/lanes [get]
func (h *AdminHandler) ListLanes(c *gin.Context) {
	var state *string
	if raw := c.Query("state"); raw != "" {
		state = &raw
	}

	lanes, err := h.adminQueries.ListLanes(c.Request.Context(), state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.LaneResponse, 0, len(lanes))
	for _, l := range lanes {
		resp, convErr := resdto.FromLaneView(l)
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

// @Summary Update lane state
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lane ID"
// @Param request body reqdto.LaneStateRequest true "New state"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/lanes/{id}/state [put]
func (h *AdminHandler) UpdateLaneState(c *gin.Context) {
	laneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid lane ID format",
		})
		return
	}

	var req reqdto.LaneStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.adminCommands.UpdateLaneState(c.Request.Context(), laneID, req.State); err != nil {
		switch {
		case errs.Is(err, commands.ErrInvalidLaneState):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid lane state",
			})
		case errs.Is(err, commands.ErrLaneNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Lane not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.UserResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminQueries.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.UserResponse, 0, len(users))
	for _, u := range users {
		resp, convErr := resdto.FromUserProfileView(u)
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
