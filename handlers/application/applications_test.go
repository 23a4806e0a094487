package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campusgate/admissions-api/database"
	"github.com/campusgate/admissions-api/model"
	"github.com/campusgate/admissions-api/services"
	authutil "github.com/campusgate/admissions-api/utils/auth"
	"github.com/campusgate/admissions-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	jwtManager *authutil.JWTManager
	course     *model.Course
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	course, err := services.NewProvisionService(db).ProvisionCourse(services.ProvisionCourseInput{
		Title:       "B.Tech Computer Science",
		Description: "Four year undergraduate program",
		Duration:    4,
		Fee:         85000,
		Requirement: "12th with PCM",
		Contact:     "cs@college.edu",
		SubjectCode: "CS101",

		ContentAdminEmail:         "cs.content@college.edu",
		ContentAdminPassword:      "secret1",
		VerificationAdminEmail:    "cs.verify@college.edu",
		VerificationAdminPassword: "secret2",
	})
	require.NoError(t, err)

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{Secret: "test-secret", Issuer: "test"})
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)
	handler := NewApplicationHandler(db, nil)

	app := fiber.New()
	app.Post("/api/applications", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleStudent), handler.SubmitApplication)
	app.Get("/api/applications", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin, model.RoleVerificationAdmin, model.RoleVerificationOfficer), handler.ListApplications)
	app.Get("/api/application/:id", authMiddleware.Required(), handler.GetApplication)
	app.Put("/api/application/:id/status", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin, model.RoleVerificationAdmin, model.RoleVerificationOfficer), handler.UpdateStatus)
	app.Delete("/api/application/:id", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin), handler.DeleteApplication)

	return &testEnv{app: app, db: db, jwtManager: jwtManager, course: course}
}

func (e *testEnv) createUser(t *testing.T, email, role string) (*model.User, string) {
	t.Helper()

	user := model.User{Email: email, PasswordHash: "irrelevant", Name: email, Role: role}
	require.NoError(t, e.db.Create(&user).Error)

	token, err := e.jwtManager.GenerateToken(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	return &user, token
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) (*http.Response, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed apiResponse
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func (e *testEnv) submit(t *testing.T, token string) model.ApplicationForm {
	t.Helper()

	resp, body := e.doJSON(t, "POST", "/api/applications", token, fiber.Map{
		"courseId": e.course.ID,
		"data":     fiber.Map{"fullName": "Jo Candidate", "tenth": fiber.Map{"percentage": 88.4}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var app model.ApplicationForm
	require.NoError(t, json.Unmarshal(body.Data, &app))
	return app
}

func TestSubmitApplication(t *testing.T) {
	env := setupTestEnv(t)
	_, studentToken := env.createUser(t, "jo@college.edu", model.RoleStudent)

	app := env.submit(t, studentToken)
	assert.Equal(t, model.ApplicationStatusSubmitted, app.Status)
	assert.Equal(t, env.course.ID, app.CourseID)

	// Missing pieces are rejected with presence checks only
	resp, _ := env.doJSON(t, "POST", "/api/applications", studentToken, fiber.Map{"courseId": env.course.ID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.doJSON(t, "POST", "/api/applications", studentToken, fiber.Map{
		"courseId": 9999,
		"data":     fiber.Map{"fullName": "Jo"},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitApplicationRequiresStudentRole(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	resp, _ := env.doJSON(t, "POST", "/api/applications", adminToken, fiber.Map{
		"courseId": env.course.ID,
		"data":     fiber.Map{"fullName": "Jo"},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestListApplicationsFiltered(t *testing.T) {
	env := setupTestEnv(t)
	_, studentToken := env.createUser(t, "jo@college.edu", model.RoleStudent)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	env.submit(t, studentToken)
	env.submit(t, studentToken)

	resp, body := env.doJSON(t, "GET", "/api/applications", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var apps []model.ApplicationForm
	require.NoError(t, json.Unmarshal(body.Data, &apps))
	assert.Len(t, apps, 2)

	resp, body = env.doJSON(t, "GET", fmt.Sprintf("/api/applications?courseId=%d&status=verified", env.course.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &apps))
	assert.Empty(t, apps)

	// Students cannot list everyone's applications
	resp, _ = env.doJSON(t, "GET", "/api/applications", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetApplicationOwnership(t *testing.T) {
	env := setupTestEnv(t)
	_, joToken := env.createUser(t, "jo@college.edu", model.RoleStudent)
	_, samToken := env.createUser(t, "sam@college.edu", model.RoleStudent)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	app := env.submit(t, joToken)

	resp, _ := env.doJSON(t, "GET", fmt.Sprintf("/api/application/%d", app.ID), joToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.doJSON(t, "GET", fmt.Sprintf("/api/application/%d", app.ID), samToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.doJSON(t, "GET", fmt.Sprintf("/api/application/%d", app.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateStatus(t *testing.T) {
	env := setupTestEnv(t)
	_, studentToken := env.createUser(t, "jo@college.edu", model.RoleStudent)
	_, officerToken := env.createUser(t, "officer@college.edu", model.RoleVerificationOfficer)

	app := env.submit(t, studentToken)

	resp, _ := env.doJSON(t, "PUT", fmt.Sprintf("/api/application/%d/status", app.ID), officerToken, fiber.Map{
		"status": "approved",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.doJSON(t, "PUT", fmt.Sprintf("/api/application/%d/status", app.ID), officerToken, fiber.Map{
		"status": model.ApplicationStatusVerified,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stored model.ApplicationForm
	require.NoError(t, env.db.First(&stored, app.ID).Error)
	assert.Equal(t, model.ApplicationStatusVerified, stored.Status)
}

func TestDeleteApplication(t *testing.T) {
	env := setupTestEnv(t)
	_, studentToken := env.createUser(t, "jo@college.edu", model.RoleStudent)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	app := env.submit(t, studentToken)

	resp, _ := env.doJSON(t, "DELETE", fmt.Sprintf("/api/application/%d", app.ID), studentToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.doJSON(t, "DELETE", fmt.Sprintf("/api/application/%d", app.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.doJSON(t, "GET", fmt.Sprintf("/api/application/%d", app.ID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
