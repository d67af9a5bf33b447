package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fatihgnc/taskman-api/internal/api"
	"github.com/fatihgnc/taskman-api/internal/api/middleware"
	"github.com/fatihgnc/taskman-api/internal/mocks"
	"github.com/fatihgnc/taskman-api/internal/service"
	"github.com/fatihgnc/taskman-api/internal/service/auth"
	"github.com/fatihgnc/taskman-api/internal/store"
)

// testAPI wires real handlers, services, and auth middleware over in-memory
// stores, mirroring the production route table.
type testAPI struct {
	router http.Handler
	users  *mocks.MockUserStore
	tasks  *mocks.MockTaskStore
	mail   *mocks.MockMailDispatcher
}

// fakeTokens issues opaque per-call tokens and validates them by lookup, so
// tests exercise the session-set semantics without real signing.
type fakeTokens struct {
	mu     sync.Mutex
	next   int
	issued map[string]uuid.UUID
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	users := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore()
	mail := &mocks.MockMailDispatcher{}

	ft := &fakeTokens{issued: make(map[string]uuid.UUID)}
	jwtService := &mocks.MockJWTService{
		GenerateTokenFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
			ft.mu.Lock()
			defer ft.mu.Unlock()
			ft.next++
			token := fmt.Sprintf("session-token-%d", ft.next)
			ft.issued[token] = userID
			return token, nil
		},
		ValidateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			ft.mu.Lock()
			defer ft.mu.Unlock()
			userID, ok := ft.issued[tokenString]
			if !ok {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID}, nil
		},
	}

	// Matches the simulated hashing in the mock user store.
	verifier := &mocks.MockPasswordVerifier{
		CompareFn: func(hashedPassword, password string) error {
			if hashedPassword == "hashed:"+password {
				return nil
			}
			return fmt.Errorf("password mismatch")
		},
	}

	userService := service.NewUserService(nil, users, tasks, jwtService, verifier, mail, nil)
	userService.SetRunTx(func(ctx context.Context, db *sql.DB, fn store.TxFn) error {
		return fn(ctx, nil)
	})
	taskService := service.NewTaskService(tasks, nil)

	userHandler := api.NewUserHandler(userService)
	taskHandler := api.NewTaskHandler(taskService)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, users)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)

	r.Post("/users", userHandler.SignUp)
	r.Post("/users/login", userHandler.Login)
	r.Get("/users/{id}/avatar", userHandler.GetAvatar)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/users/logout", userHandler.Logout)
		r.Post("/users/logoutAll", userHandler.LogoutAll)
		r.Get("/users/me", userHandler.GetMe)
		r.Patch("/users/me", userHandler.UpdateMe)
		r.Delete("/users/me", userHandler.DeleteMe)
		r.Post("/users/me/avatar", userHandler.UploadAvatar)
		r.Delete("/users/me/avatar", userHandler.DeleteAvatar)

		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks", taskHandler.List)
		r.Get("/tasks/{id}", taskHandler.Get)
		r.Patch("/tasks/{id}", taskHandler.Update)
		r.Delete("/tasks/{id}", taskHandler.Delete)
	})

	return &testAPI{router: r, users: users, tasks: tasks, mail: mail}
}

// do performs a JSON request against the test router.
func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// doRaw performs a request with an arbitrary body and content type.
func (a *testAPI) doRaw(
	t *testing.T,
	method, path, token, contentType string,
	body io.Reader,
) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user through the API and returns the response body.
func (a *testAPI) signup(t *testing.T, name, email, password string) api.AuthResponse {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/users", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "signup failed: %s", rec.Body.String())

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// createTask creates a task through the API for the given session.
func (a *testAPI) createTask(t *testing.T, token, description string) api.TaskResponse {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/tasks", token, map[string]interface{}{
		"description": description,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "task creation failed: %s", rec.Body.String())

	var resp api.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// multipartAvatar builds a multipart body with the image under the avatar
// form field.
func multipartAvatar(t *testing.T, filename string, data []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
