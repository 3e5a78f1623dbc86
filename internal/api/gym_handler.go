package api

import (
	"fmt"
	"net/http"

	"befit/fitness-app/internal/domain"
	"befit/fitness-app/internal/generator"
	"befit/fitness-app/internal/service"

	"github.com/gin-gonic/gin"
)

// GymHandler serves routine generation, the active routine and its progress.
type GymHandler struct {
	routineService service.RoutineService
}

// NewGymHandler creates a new GymHandler.
func NewGymHandler(routineService service.RoutineService) *GymHandler {
	return &GymHandler{routineService: routineService}
}

// UpdateProgressRequest marks one exercise of the active routine. Pointers
// keep index 0 and false distinguishable from missing fields.
type UpdateProgressRequest struct {
	Day           string `json:"day" binding:"required"`
	ExerciseIndex *int   `json:"exerciseIndex" binding:"required"`
	Completed     *bool  `json:"completed" binding:"required"`
}

// Generate builds a routine from the profile and makes it the active one.
func (h *GymHandler) Generate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var profile generator.Profile
	// Bind and validate the profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	routine, err := h.routineService.Generate(c.Request.Context(), userID, profile)
	if err != nil {
		respondError(c, err, "Failed to generate routine")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Routine generated successfully", "routine": routine})
}

// CreateRoutine stores an explicit plan as the active routine.
func (h *GymHandler) CreateRoutine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var plan domain.RoutinePlan
	// Plan validation runs in the service
	if err := c.ShouldBindJSON(&plan); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	routine, err := h.routineService.Create(c.Request.Context(), userID, plan)
	if err != nil {
		respondError(c, err, "Failed to create routine")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"routine": routine})
}

// Current returns the active routine of the user.
func (h *GymHandler) Current(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	routine, err := h.routineService.Current(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to get routine")
		return
	}
	c.JSON(http.StatusOK, gin.H{"routine": routine})
}

// UpdateProgress marks one exercise and returns the new completion percentage.
func (h *GymHandler) UpdateProgress(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req UpdateProgressRequest
	// Bind and validate the request body
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	// Required binding guarantees both pointers are set
	res, err := h.routineService.UpdateProgress(c.Request.Context(), userID, req.Day, *req.ExerciseIndex, *req.Completed)
	if err != nil {
		respondError(c, err, "Failed to update progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":              "Progress updated",
		"progress":             res.Progress,
		"completionPercentage": res.CompletionPercentage,
	})
}

// History returns all routines of the user, newest first.
func (h *GymHandler) History(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	routines, err := h.routineService.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to get routine history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"routines": routines})
}
