package course

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/campusgate/admissions-api/database"
	"github.com/campusgate/admissions-api/model"
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
	Error   *struct {
		Code   string   `json:"code"`
		Fields []string `json:"fields"`
	} `json:"error"`
}

type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	jwtManager *authutil.JWTManager
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{Secret: "test-secret", Issuer: "test"})
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)
	handler := NewCourseHandler(db, nil)

	app := fiber.New()
	courses := app.Group("/api/courses")
	courses.Post("/newCourse", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin), handler.ProvisionCourse)
	courses.Post("/verify-code", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleContentAdmin), handler.VerifyCode)
	courses.Get("/", authMiddleware.Required(), handler.ListCourses)
	courses.Get("/:courseId", handler.GetCourse)
	courses.Put("/:courseId", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin), handler.UpdateCourse)
	courses.Delete("/:courseId", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin), handler.DeleteCourse)
	courses.Post("/:courseId/add-description", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleContentAdmin), handler.AddDescription)

	return &testEnv{app: app, db: db, jwtManager: jwtManager}
}

// createUser inserts an account directly and returns a bearer token for it.
func (e *testEnv) createUser(t *testing.T, email, role string) (*model.User, string) {
	t.Helper()

	hash, err := authutil.HashPassword("secret1")
	require.NoError(t, err)

	user := model.User{Email: email, PasswordHash: hash, Name: email, Role: role, Verified: true}
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

func provisionPayload(code string) fiber.Map {
	return fiber.Map{
		"title":       "B.Tech Computer Science",
		"description": "Four year undergraduate program",
		"duration":    4,
		"fee":         85000,
		"requirement": "12th with PCM",
		"contact":     "cs@college.edu",
		"subjectCode": code,

		"contentAdminEmail":         code + ".content@college.edu",
		"contentAdminPassword":      "secret1",
		"verificationAdminEmail":    code + ".verify@college.edu",
		"verificationAdminPassword": "secret2",
	}
}

func TestProvisionEndpointListsMissingFields(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	resp, body := env.doJSON(t, "POST", "/api/courses/newCourse", adminToken, fiber.Map{
		"title":             "B.Tech",
		"contentAdminEmail": "not-an-email",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Fields, "description")
	assert.Contains(t, body.Error.Fields, "duration")
	assert.Contains(t, body.Error.Fields, "subjectCode")
	assert.Contains(t, body.Error.Fields, "invalid contentAdminEmail format")

	var count int64
	require.NoError(t, env.db.Model(&model.Course{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProvisionCoursePersistsWithoutNotifying(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	resp, _ := env.doJSON(t, "POST", "/api/courses/newCourse", adminToken, provisionPayload("CS101"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Everything provisioning does is in the store; no mail attempt is made
	// for either admin address, configured SMTP or not.
	assert.NotContains(t, strings.ToLower(logs.String()), "email")

	var admins int64
	require.NoError(t, env.db.Model(&model.User{}).
		Where("role IN ?", []string{model.RoleContentAdmin, model.RoleVerificationAdmin}).
		Count(&admins).Error)
	assert.EqualValues(t, 2, admins)
}

func TestProvisionEndpointRequiresAdmin(t *testing.T) {
	env := setupTestEnv(t)
	_, studentToken := env.createUser(t, "student@college.edu", model.RoleStudent)

	resp, _ := env.doJSON(t, "POST", "/api/courses/newCourse", studentToken, provisionPayload("CS101"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestListCoursesRoleScoping(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	resp, _ := env.doJSON(t, "POST", "/api/courses/newCourse", adminToken, provisionPayload("CS101"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = env.doJSON(t, "POST", "/api/courses/newCourse", adminToken, provisionPayload("ME101"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	listCourses := func(token string) []model.Course {
		resp, body := env.doJSON(t, "GET", "/api/courses/", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var courses []model.Course
		require.NoError(t, json.Unmarshal(body.Data, &courses))
		return courses
	}

	// Admin and students see the whole catalog
	assert.Len(t, listCourses(adminToken), 2)
	_, studentToken := env.createUser(t, "student@college.edu", model.RoleStudent)
	assert.Len(t, listCourses(studentToken), 2)

	// The CS content admin only sees the CS course
	var csAdmin model.User
	require.NoError(t, env.db.Where("email = ?", "CS101.content@college.edu").First(&csAdmin).Error)
	csToken, err := env.jwtManager.GenerateToken(csAdmin.ID, csAdmin.Email, csAdmin.Role)
	require.NoError(t, err)

	scoped := listCourses(csToken)
	require.Len(t, scoped, 1)
	assert.Equal(t, "CS101", scoped[0].SubjectCode)
}

func TestListCoursesEmptyForUnassignedContentAdmin(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.createUser(t, "lonely@college.edu", model.RoleContentAdmin)

	resp, body := env.doJSON(t, "GET", "/api/courses/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var courses []model.Course
	require.NoError(t, json.Unmarshal(body.Data, &courses))
	assert.Empty(t, courses)
}

func TestListCoursesRejectsUnknownRole(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.createUser(t, "ghost@college.edu", "ghost")

	resp, _ := env.doJSON(t, "GET", "/api/courses/", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetCourseIsPublic(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	resp, body := env.doJSON(t, "POST", "/api/courses/newCourse", adminToken, provisionPayload("CS101"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Course
	require.NoError(t, json.Unmarshal(body.Data, &created))

	resp, body = env.doJSON(t, "GET", fmt.Sprintf("/api/courses/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched model.Course
	require.NoError(t, json.Unmarshal(body.Data, &fetched))
	assert.Equal(t, "CS101", fetched.SubjectCode)

	resp, _ = env.doJSON(t, "GET", "/api/courses/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDanglingAdminReferenceDegrades(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	resp, body := env.doJSON(t, "POST", "/api/courses/newCourse", adminToken, provisionPayload("CS101"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Course
	require.NoError(t, json.Unmarshal(body.Data, &created))

	// Deleting the content admin leaves the course's reference dangling
	var contentAdmin model.User
	require.NoError(t, env.db.Where("email = ?", "CS101.content@college.edu").First(&contentAdmin).Error)
	require.NoError(t, env.db.Delete(&contentAdmin).Error)

	resp, _ = env.doJSON(t, "GET", fmt.Sprintf("/api/courses/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.doJSON(t, "GET", "/api/courses/", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var courses []model.Course
	require.NoError(t, json.Unmarshal(body.Data, &courses))
	assert.Len(t, courses, 1)
}

func TestAddDescriptionOwnershipAndSchemaSync(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	resp, body := env.doJSON(t, "POST", "/api/courses/newCourse", adminToken, provisionPayload("CS101"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Course
	require.NoError(t, json.Unmarshal(body.Data, &created))

	description := fiber.Map{
		"programDescription": "In-depth CS program",
		"vision":             "Excellence",
		"mission":            "Teach well",
		"yearsOfDepartment":  25,
		"programType":        "UG",
		"syllabus": []fiber.Map{
			{"semester": "1", "subjects": []string{"Maths", "Physics"}},
		},
	}

	// A content admin of a different course is rejected
	_, otherToken := env.createUser(t, "other@college.edu", model.RoleContentAdmin)
	resp, _ = env.doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/add-description", created.ID), otherToken, description)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var contentAdmin model.User
	require.NoError(t, env.db.Where("email = ?", "CS101.content@college.edu").First(&contentAdmin).Error)
	ownerToken, err := env.jwtManager.GenerateToken(contentAdmin.ID, contentAdmin.Email, contentAdmin.Role)
	require.NoError(t, err)

	resp, _ = env.doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/add-description", created.ID), ownerToken, description)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var course model.Course
	require.NoError(t, env.db.First(&course, created.ID).Error)
	assert.Equal(t, "In-depth CS program", course.ProgramDescription)
	assert.Equal(t, model.ProgramTypeUG, course.ProgramType)

	// The form schema's program type follows the course
	var schema model.FormSchema
	require.NoError(t, env.db.Where("course_id = ?", created.ID).First(&schema).Error)
	assert.Equal(t, model.ProgramTypeUG, schema.ProgramType)
}

func TestVerifyCode(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	resp, body := env.doJSON(t, "POST", "/api/courses/newCourse", adminToken, provisionPayload("CS101"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Course
	require.NoError(t, json.Unmarshal(body.Data, &created))

	var contentAdmin model.User
	require.NoError(t, env.db.Where("email = ?", "CS101.content@college.edu").First(&contentAdmin).Error)
	ownerToken, err := env.jwtManager.GenerateToken(contentAdmin.ID, contentAdmin.Email, contentAdmin.Role)
	require.NoError(t, err)

	// Lookup is case-insensitive
	resp, body = env.doJSON(t, "POST", "/api/courses/verify-code", ownerToken, fiber.Map{"subjectCode": "cs101"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var data map[string]uint
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, created.ID, data["courseId"])

	// Someone else's content admin is refused
	_, otherToken := env.createUser(t, "other@college.edu", model.RoleContentAdmin)
	resp, _ = env.doJSON(t, "POST", "/api/courses/verify-code", otherToken, fiber.Map{"subjectCode": "CS101"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.doJSON(t, "POST", "/api/courses/verify-code", ownerToken, fiber.Map{"subjectCode": "NOPE"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateAndDeleteCourse(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.createUser(t, "admin@college.edu", model.RoleAdmin)

	resp, body := env.doJSON(t, "POST", "/api/courses/newCourse", adminToken, provisionPayload("CS101"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Course
	require.NoError(t, json.Unmarshal(body.Data, &created))

	resp, body = env.doJSON(t, "PUT", fmt.Sprintf("/api/courses/%d", created.ID), adminToken, fiber.Map{
		"title": "Updated",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Fields, "fee")

	resp, _ = env.doJSON(t, "PUT", fmt.Sprintf("/api/courses/%d", created.ID), adminToken, fiber.Map{
		"title":       "Updated Title",
		"description": "Updated description",
		"duration":    3,
		"fee":         90000,
		"requirement": "12th",
		"contact":     "new@college.edu",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var course model.Course
	require.NoError(t, env.db.First(&course, created.ID).Error)
	assert.Equal(t, "Updated Title", course.Title)
	assert.Equal(t, 3, course.Duration)

	resp, _ = env.doJSON(t, "DELETE", fmt.Sprintf("/api/courses/%d", created.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.doJSON(t, "GET", fmt.Sprintf("/api/courses/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
