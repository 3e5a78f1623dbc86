package api

import (
	"fmt"
	"net/http"
	"strconv"

	"befit/fitness-app/internal/domain"
	"befit/fitness-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler serves the workout session endpoints.
type SessionHandler struct {
	sessionService     service.SessionService
	defaultRestSeconds int
}

// NewSessionHandler creates a new SessionHandler. An out of range default
// falls back to domain.DefaultRestSeconds.
func NewSessionHandler(sessionService service.SessionService, defaultRestSeconds int) *SessionHandler {
	if !domain.ValidRestSeconds(defaultRestSeconds) {
		defaultRestSeconds = domain.DefaultRestSeconds
	}
	return &SessionHandler{sessionService: sessionService, defaultRestSeconds: defaultRestSeconds}
}

// StartSessionRequest opens a session. RestTime falls back to the server default.
type StartSessionRequest struct {
	RoutineID string `json:"routineId" binding:"required"`
	DayName   string `json:"dayName" binding:"required"`
	RestTime  *int   `json:"restTime"`
}

// CompleteSessionRequest carries the client's per-exercise records. The
// duration is computed on the server.
type CompleteSessionRequest struct {
	ExerciseData       []domain.ExerciseSessionData `json:"exerciseData"`
	ExercisesCompleted int                          `json:"exercisesCompleted"`
}

// Start opens a session on one day of a routine.
func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req StartSessionRequest
	// Bind and validate the request body
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	// Convert the routine ID from string to ObjectID
	routineID, err := primitive.ObjectIDFromHex(req.RoutineID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid routine ID format")
		return
	}
	// Missing restTime uses the server default
	rest := h.defaultRestSeconds
	if req.RestTime != nil {
		rest = *req.RestTime
	}

	session, err := h.sessionService.Start(c.Request.Context(), userID, routineID, req.DayName, rest)
	if err != nil {
		respondError(c, err, "Failed to start session")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// Complete records the exercise data and closes an open session.
func (h *SessionHandler) Complete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	// Get the session ID from the path
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		// Unparseable IDs cannot name an existing session.
		abortWithError(c, http.StatusNotFound, "session not found")
		return
	}
	var req CompleteSessionRequest
	// Bind and validate the request body
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.sessionService.Complete(c.Request.Context(), userID, sessionID, req.ExerciseData, req.ExercisesCompleted)
	if err != nil {
		respondError(c, err, "Failed to complete session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// List returns completed sessions. Limit is clamped by the service.
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	sessions, err := h.sessionService.List(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, "Failed to list sessions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// Stats returns aggregate figures over completed sessions.
func (h *SessionHandler) Stats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	stats, err := h.sessionService.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to get session stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// Report returns a temporary download URL for the archived session report.
func (h *SessionHandler) Report(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "session not found")
		return
	}
	url, err := h.sessionService.ReportURL(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondError(c, err, "Failed to get session report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
