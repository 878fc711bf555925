package users

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	custom_error "sams/pkg/errors"
	"sams/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) PersistUser(orgID int, req models.CreateUserRequest, hashedPassword []byte) error {
	args := m.Called(orgID, req, hashedPassword)
	return args.Error(0)
}

func (m *MockUserRepository) GetUser(id, orgID int) (*models.User, error) {
	args := m.Called(id, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUsers(orgID int) ([]models.User, error) {
	args := m.Called(orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func setupRouter(repo UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Set("orgID", 1)
		c.Set("role", "admin")
		c.Set("username", "boss")
	})

	handler := NewHandler(repo)
	handler.RegisterRoutes(router.Group(""))

	return router
}

func TestRegisterUser(t *testing.T) {
	repo := new(MockUserRepository)
	router := setupRouter(repo)

	repo.On("PersistUser", 1, mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(models.CreateUserRequest{
		Username: "jdoe",
		Fullname: "John Doe",
		Password: "secret1",
		Role:     "user",
	})
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestRegisterUserRejectsUnknownRole(t *testing.T) {
	repo := new(MockUserRepository)
	router := setupRouter(repo)

	body, _ := json.Marshal(models.CreateUserRequest{
		Username: "jdoe",
		Fullname: "John Doe",
		Password: "secret1",
		Role:     "superuser",
	})
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "PersistUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetUserNotFound(t *testing.T) {
	repo := new(MockUserRepository)
	router := setupRouter(repo)

	repo.On("GetUser", 99, 1).Return(nil, custom_error.ErrUserNotFound)

	req := httptest.NewRequest(http.MethodGet, "/users/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserList(t *testing.T) {
	repo := new(MockUserRepository)
	router := setupRouter(repo)

	repo.On("GetUsers", 1).Return([]models.User{
		{ID: 1, OrganizationID: 1, Username: "boss", Fullname: "The Boss", Role: "admin"},
		{ID: 2, OrganizationID: 1, Username: "clerk", Fullname: "A Clerk", Role: "user"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var users []models.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestGetUserListFailure(t *testing.T) {
	repo := new(MockUserRepository)
	router := setupRouter(repo)

	repo.On("GetUsers", 1).Return(nil, errors.New("db down"))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
