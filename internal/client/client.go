// Package client talks to the befit backend over HTTP. It implements the
// session gateway and the progress syncer used by the workout engine.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/domain"
	"befit/fitness-app/internal/generator"
	"befit/fitness-app/internal/workout"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time checks.
var (
	_ workout.SessionGateway = (*Client)(nil)
	_ workout.ProgressSyncer = (*Client)(nil)
)

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// User is the account returned by the backend.
type User struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type errorBody struct {
	Error string `json:"error"`
}

// do sends in as JSON and decodes the response into out. Status codes map onto
// the apperrors kinds: 400, 401, 409 and 422 are validation errors, 404 is not
// found, anything else and transport failures are transient.
func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return apperrors.Validation(op, fmt.Sprintf("encode request: %v", err))
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.Transient(op, fmt.Errorf("create request: %w", err))
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Transient(op, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Transient(op, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict, http.StatusUnprocessableEntity:
			return apperrors.Validation(op, msg)
		case http.StatusNotFound:
			return apperrors.NotFound(op, msg)
		default:
			return apperrors.Transient(op, fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, msg))
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Transient(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var user User
	in := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, "auth.register", http.MethodPost, "/auth/register", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out.User, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, "auth.me", http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type routineEnvelope struct {
	Routine *domain.Routine `json:"routine"`
}

func (c *Client) CurrentRoutine(ctx context.Context) (*domain.Routine, error) {
	var out routineEnvelope
	if err := c.do(ctx, "routine.current", http.MethodGet, "/gym/current", nil, &out); err != nil {
		return nil, err
	}
	return out.Routine, nil
}

func (c *Client) Generate(ctx context.Context, profile generator.Profile) (*domain.Routine, error) {
	var out routineEnvelope
	if err := c.do(ctx, "routine.generate", http.MethodPost, "/gym/generate", profile, &out); err != nil {
		return nil, err
	}
	return out.Routine, nil
}

func (c *Client) History(ctx context.Context) ([]domain.Routine, error) {
	var out struct {
		Routines []domain.Routine `json:"routines"`
	}
	if err := c.do(ctx, "routine.history", http.MethodGet, "/gym/history", nil, &out); err != nil {
		return nil, err
	}
	return out.Routines, nil
}

// SyncProgress writes one progress cell and returns the week-wide completion
// percentage computed by the server.
func (c *Client) SyncProgress(ctx context.Context, day string, exerciseIndex int, completed bool) (int, error) {
	in := map[string]interface{}{"day": day, "exerciseIndex": exerciseIndex, "completed": completed}
	var out struct {
		CompletionPercentage int `json:"completionPercentage"`
	}
	if err := c.do(ctx, "routine.progress", http.MethodPut, "/gym/progress", in, &out); err != nil {
		return 0, err
	}
	return out.CompletionPercentage, nil
}

type sessionEnvelope struct {
	Session *domain.WorkoutSession `json:"session"`
}

func (c *Client) StartSession(ctx context.Context, routineID primitive.ObjectID, dayName string, restSeconds int) (*domain.WorkoutSession, error) {
	in := map[string]interface{}{"routineId": routineID.Hex(), "dayName": dayName, "restTime": restSeconds}
	var out sessionEnvelope
	if err := c.do(ctx, "session.start", http.MethodPost, "/gym/sessions", in, &out); err != nil {
		return nil, err
	}
	if out.Session == nil {
		return nil, apperrors.Transient("session.start", errors.New("empty response"))
	}
	return out.Session, nil
}

func (c *Client) CompleteSession(ctx context.Context, sessionID primitive.ObjectID, exerciseData []domain.ExerciseSessionData, exercisesCompleted int) (*domain.WorkoutSession, error) {
	in := map[string]interface{}{"exerciseData": exerciseData, "exercisesCompleted": exercisesCompleted}
	var out sessionEnvelope
	path := "/gym/sessions/" + sessionID.Hex() + "/complete"
	if err := c.do(ctx, "session.complete", http.MethodPut, path, in, &out); err != nil {
		return nil, err
	}
	if out.Session == nil {
		return nil, apperrors.Transient("session.complete", errors.New("empty response"))
	}
	return out.Session, nil
}

// Sessions lists completed sessions, newest first. limit <= 0 uses the server default.
func (c *Client) Sessions(ctx context.Context, limit int) ([]domain.WorkoutSession, error) {
	path := "/gym/sessions"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out struct {
		Sessions []domain.WorkoutSession `json:"sessions"`
	}
	if err := c.do(ctx, "session.list", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

func (c *Client) Stats(ctx context.Context) (*domain.SessionStats, error) {
	var out struct {
		Stats domain.SessionStats `json:"stats"`
	}
	if err := c.do(ctx, "session.stats", http.MethodGet, "/gym/sessions/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out.Stats, nil
}

func (c *Client) ReportURL(ctx context.Context, sessionID primitive.ObjectID) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	path := "/gym/sessions/" + sessionID.Hex() + "/report"
	if err := c.do(ctx, "session.report", http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
