// internal/interfaces/http/handlers/repair.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/domain/repair"
	"github.com/blackbox-gh/storefront-backend/internal/domain/user"
	"github.com/blackbox-gh/storefront-backend/internal/interfaces/http/middleware"
)

// RepairHandler handles repair intake and ledger endpoints
type RepairHandler struct {
	repairService *repair.Service
	userService   *user.Service
	config        *config.Config
}

// NewRepairHandler creates a new repair handler
func NewRepairHandler(db *gorm.DB, repairService *repair.Service, cfg *config.Config) *RepairHandler {
	return &RepairHandler{
		repairService: repairService,
		userService:   user.NewService(db, cfg),
		config:        cfg,
	}
}

// GetIntake handles GET /repairs/intake
func (h *RepairHandler) GetIntake(c *gin.Context) {
	session, err := h.repairService.Session(c.Request.Context(), h.ownerKey(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load intake session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Intake session retrieved successfully",
		"data":    session,
	})
}

// UpdateIntakeForm handles PATCH /repairs/intake
func (h *RepairHandler) UpdateIntakeForm(c *gin.Context) {
	var req repair.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	session, err := h.repairService.UpdateForm(c.Request.Context(), h.ownerKey(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update intake form"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Intake form updated successfully",
		"data":    session,
	})
}

// AdvanceIntake handles POST /repairs/intake/advance
func (h *RepairHandler) AdvanceIntake(c *gin.Context) {
	session, err := h.repairService.Advance(c.Request.Context(), h.ownerKey(c))
	if err != nil {
		switch {
		case errors.Is(err, repair.ErrValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, repair.ErrNotSubmittable):
			c.JSON(http.StatusConflict, gin.H{"error": "Already at the final step"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to advance intake"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Moved to the next step",
		"data":    session,
	})
}

// RetreatIntake handles POST /repairs/intake/back
func (h *RepairHandler) RetreatIntake(c *gin.Context) {
	session, err := h.repairService.Retreat(c.Request.Context(), h.ownerKey(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to step back"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Moved to the previous step",
		"data":    session,
	})
}

// Diagnose handles POST /repairs/intake/diagnose
func (h *RepairHandler) Diagnose(c *gin.Context) {
	var req repair.DiagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	session, err := h.repairService.RequestDiagnosis(c.Request.Context(), h.ownerKey(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, repair.ErrDiagnosisBusy):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, repair.ErrValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request diagnosis"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Diagnosis complete",
		"data":    session,
	})
}

// SubmitRepair handles POST /repairs
func (h *RepairHandler) SubmitRepair(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    repair.ErrAuthRequired.Error(),
			"redirect": "login",
		})
		return
	}

	account, err := h.userService.Profile(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	result, err := h.repairService.Submit(c.Request.Context(), h.ownerKey(c), userID, account.Name)
	if err != nil {
		switch {
		case errors.Is(err, repair.ErrAuthRequired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "redirect": "login"})
		case errors.Is(err, repair.ErrNotSubmittable), errors.Is(err, repair.ErrValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit repair request"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Repair request submitted successfully",
		"data":    result,
	})
}

// ListRepairs handles GET /repairs
func (h *RepairHandler) ListRepairs(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	history, err := h.repairService.History(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load repair history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Repair requests retrieved successfully",
		"data": gin.H{
			"repairs": history,
			"count":   len(history),
		},
	})
}

// UpdateRepairStatus handles PUT /admin/repairs/:id/status
func (h *RepairHandler) UpdateRepairStatus(c *gin.Context) {
	var req struct {
		Status        repair.RequestStatus `json:"status" binding:"required"`
		EstimatedCost string               `json:"estimated_cost"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if !req.Status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown repair status"})
		return
	}

	r, err := h.repairService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.EstimatedCost)
	if err != nil {
		switch {
		case errors.Is(err, repair.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, repair.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update repair status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Repair status updated successfully",
		"data":    r,
	})
}

func (h *RepairHandler) ownerKey(c *gin.Context) string {
	userID, _ := middleware.GetUserIDFromContext(c)
	return repair.OwnerKey(userID, getOrCreateSessionID(c))
}
