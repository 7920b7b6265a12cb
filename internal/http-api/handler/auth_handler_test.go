package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"servespot/internal/http-api/dto"
	"servespot/internal/http-api/models"
	"servespot/internal/http-api/service"
	"servespot/internal/shared"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(username, password, email string, role shared.Role) (*models.User, error) {
	args := m.Called(username, password, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(username, password string) (string, string, *models.User, error) {
	args := m.Called(username, password)
	if args.Get(2) == nil {
		return args.String(0), args.String(1), nil, args.Error(3)
	}
	return args.String(0), args.String(1), args.Get(2).(*models.User), args.Error(3)
}

func (m *MockAuthService) RefreshAccessToken(refreshToken string) (string, string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) RevokeToken(refreshToken string) error {
	args := m.Called(refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRegister_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/register", handler.Register)

	user := &models.User{
		ID:       "user-123",
		Username: "helper_jane",
		Email:    "jane@example.com",
		Role:     shared.RoleVolunteer,
	}

	mockAuthService.On("Register", "helper_jane", "password123", "jane@example.com", shared.RoleVolunteer).
		Return(user, nil)

	reqBody := dto.RegisterRequest{
		Username: "helper_jane",
		Password: "password123",
		Email:    "jane@example.com",
		Role:     "volunteer",
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "user-123", response["user_id"])
	assert.Equal(t, "helper_jane", response["username"])
	assert.Equal(t, "jane@example.com", response["email"])
	assert.Equal(t, "volunteer", response["role"])

	mockAuthService.AssertExpectations(t)
}

func TestRegister_UsernameInUse(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/register", handler.Register)

	mockAuthService.On("Register", "helper_jane", "password123", "jane@example.com", shared.RoleVolunteer).
		Return(nil, service.ErrNameInUse)

	reqBody := dto.RegisterRequest{
		Username: "helper_jane",
		Password: "password123",
		Email:    "jane@example.com",
		Role:     "volunteer",
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Account creation failed", response["error"])

	mockAuthService.AssertExpectations(t)
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/register", handler.Register)

	// admin cannot be self-assigned at signup; binding rejects it
	reqBody := map[string]string{
		"username": "wannabe_admin",
		"password": "password123",
		"email":    "admin@example.com",
		"role":     "admin",
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAuthService.AssertNotCalled(t, "Register")
}

func TestRegister_InvalidJSON(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/register", handler.Register)

	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/login", handler.Login)

	user := &models.User{
		ID:       "68f3b8be-5bd8-4c6c-9919-a4614b2731b3",
		Username: "greenearth",
		Email:    "contact@greenearth.org",
		Role:     shared.RoleOrganization,
	}

	mockAuthService.On("Login", "greenearth", "plant3s").
		Return("access-token", "refresh-token", user, nil)

	reqBody := dto.LoginRequest{
		Username: "greenearth",
		Password: "plant3s",
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.AuthResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "access-token", response.AccessToken)
	assert.Equal(t, "refresh-token", response.RefreshToken)
	assert.Equal(t, "68f3b8be-5bd8-4c6c-9919-a4614b2731b3", response.UserID)
	assert.Equal(t, "greenearth", response.Username)
	assert.Equal(t, "organization", response.Role)

	mockAuthService.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/login", handler.Login)

	mockAuthService.On("Login", "helper_jane", "wrongpassword").
		Return("", "", nil, service.ErrInvalidCredentials)

	reqBody := dto.LoginRequest{
		Username: "helper_jane",
		Password: "wrongpassword",
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuthService.AssertExpectations(t)
}

func TestRefreshToken_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/refresh", handler.RefreshToken)

	mockAuthService.On("RefreshAccessToken", "old-refresh-token").
		Return("new-access-token", "new-refresh-token", nil)

	reqBody := dto.RefreshTokenRequest{
		RefreshToken: "old-refresh-token",
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", "/refresh", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.RefreshResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "new-access-token", response.AccessToken)
	assert.Equal(t, "new-refresh-token", response.RefreshToken)
	assert.Equal(t, "Bearer", response.TokenType)

	mockAuthService.AssertExpectations(t)
}

func TestRefreshToken_InvalidToken(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/refresh", handler.RefreshToken)

	mockAuthService.On("RefreshAccessToken", "invalid-token").
		Return("", "", errors.New("invalid refresh token"))

	reqBody := dto.RefreshTokenRequest{
		RefreshToken: "invalid-token",
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", "/refresh", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuthService.AssertExpectations(t)
}

func TestRevokeToken_WithError(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/logout", handler.RevokeToken)

	mockAuthService.On("RevokeToken", "invalid-token").Return(errors.New("some error"))

	reqBody := dto.RevokeTokenRequest{
		RefreshToken: "invalid-token",
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequest("POST", "/logout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Should still return success to avoid token fishing
	assert.Equal(t, http.StatusOK, w.Code)
	mockAuthService.AssertExpectations(t)
}
