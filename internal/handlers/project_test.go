package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/cogniboard/cogniboard-api/internal/constants"
	"github.com/cogniboard/cogniboard-api/internal/database"
	"github.com/cogniboard/cogniboard-api/internal/dto"
	"github.com/cogniboard/cogniboard-api/internal/middleware"
	"github.com/cogniboard/cogniboard-api/internal/models"
	"github.com/cogniboard/cogniboard-api/internal/repository"
	"github.com/cogniboard/cogniboard-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type projectTestEnv struct {
	db             *gorm.DB
	handler        *ProjectHandler
	projectService *services.ProjectService
}

func setupProjectTestEnv(t *testing.T) projectTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Comment{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	projectService := services.NewProjectService(projectRepo, userRepo)
	handler := NewProjectHandler(projectService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return projectTestEnv{
		db:             db,
		handler:        handler,
		projectService: projectService,
	}
}

// createTestUser inserts a user directly, bypassing registration.
func createTestUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// authAs injects the authenticated user ID the way RequireAuth would.
func authAs(userID uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// projectTestContext builds a gin context carrying the caller identity and,
// when non-nil, the project and membership that RequireProjectMember would
// have loaded.
func projectTestContext(t *testing.T, method, url string, payload any, userID uint64, project *models.Project, member *models.ProjectMember) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	c.Request = req

	c.Set(constants.ContextKeyUserID, userID)
	if project != nil {
		c.Set("project", *project)
	}
	if member != nil {
		c.Set("project_member", *member)
	}

	return c, w
}

func TestProjectHandler_CreateProject(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "Ada", "ada@x.com")

	c, w := projectTestContext(t, http.MethodPost, "/api/projects", map[string]string{
		"name":        "Apollo",
		"description": "Moonshot",
	}, user.ID, nil, nil)

	env.handler.CreateProject(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Apollo", response.Name)

	// The creator becomes the sole owner
	var member models.ProjectMember
	err := env.db.Where("project_id = ? AND user_id = ?", response.ID, user.ID).First(&member).Error
	require.NoError(t, err)
	require.Equal(t, models.RoleOwner, member.Role)

	var memberCount int64
	require.NoError(t, env.db.Model(&models.ProjectMember{}).Where("project_id = ?", response.ID).Count(&memberCount).Error)
	require.Equal(t, int64(1), memberCount)
}

func TestProjectHandler_ListProjects_ScopedToMembership(t *testing.T) {
	env := setupProjectTestEnv(t)
	ada := createTestUser(t, env.db, "Ada", "ada@x.com")
	bob := createTestUser(t, env.db, "Bob", "bob@x.com")

	mine, err := env.projectService.CreateProject(services.CreateProjectInput{Name: "Mine", CreatorID: ada.ID})
	require.NoError(t, err)
	_, err = env.projectService.CreateProject(services.CreateProjectInput{Name: "Theirs", CreatorID: bob.ID})
	require.NoError(t, err)

	c, w := projectTestContext(t, http.MethodGet, "/api/projects", nil, ada.ID, nil, nil)
	env.handler.ListProjects(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ProjectListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Projects, 1)
	require.Equal(t, mine.ID, response.Projects[0].ID)
}

func TestRequireProjectMember_NonMemberGetsNotFound(t *testing.T) {
	env := setupProjectTestEnv(t)
	ada := createTestUser(t, env.db, "Ada", "ada@x.com")
	bob := createTestUser(t, env.db, "Bob", "bob@x.com")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{Name: "Secret", CreatorID: ada.ID})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/projects/:id", authAs(bob.ID), middleware.RequireProjectMember(), env.handler.GetProject)

	// A non-member and a nonexistent project are indistinguishable
	for _, id := range []uint64{project.ID, 99999} {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/projects/%d", id), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestRequireProjectOwner_MemberCannotUpdate(t *testing.T) {
	env := setupProjectTestEnv(t)
	ada := createTestUser(t, env.db, "Ada", "ada@x.com")
	bob := createTestUser(t, env.db, "Bob", "bob@x.com")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{Name: "Apollo", CreatorID: ada.ID})
	require.NoError(t, err)
	_, err = env.projectService.AddMember(services.AddMemberInput{ProjectID: project.ID, UserID: bob.ID, Role: models.RoleMember})
	require.NoError(t, err)

	r := gin.New()
	r.PATCH("/api/projects/:id", authAs(bob.ID), middleware.RequireProjectMember(), middleware.RequireProjectOwner(), env.handler.UpdateProject)

	body, err := json.Marshal(map[string]string{"name": "Hijacked"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/projects/%d", project.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)

	var stored models.Project
	require.NoError(t, env.db.First(&stored, project.ID).Error)
	require.Equal(t, "Apollo", stored.Name)
}

func TestProjectHandler_UpdateProject_SparsePatch(t *testing.T) {
	env := setupProjectTestEnv(t)
	ada := createTestUser(t, env.db, "Ada", "ada@x.com")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:        "Apollo",
		Description: "Moonshot",
		CreatorID:   ada.ID,
	})
	require.NoError(t, err)

	c, w := projectTestContext(t, http.MethodPatch, "/api/projects/1", map[string]string{
		"description": "Updated",
	}, ada.ID, project, nil)

	env.handler.UpdateProject(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Apollo", response.Name, "absent fields stay untouched")
	require.Equal(t, "Updated", response.Description)
}

func TestProjectHandler_AddMember_Duplicate(t *testing.T) {
	env := setupProjectTestEnv(t)
	ada := createTestUser(t, env.db, "Ada", "ada@x.com")
	bob := createTestUser(t, env.db, "Bob", "bob@x.com")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{Name: "Apollo", CreatorID: ada.ID})
	require.NoError(t, err)

	payload := map[string]any{"user_id": bob.ID, "role": "member"}

	c, w := projectTestContext(t, http.MethodPost, "/api/projects/1/members", payload, ada.ID, project, nil)
	env.handler.AddMember(c)
	require.Equal(t, http.StatusCreated, w.Code)

	c, w = projectTestContext(t, http.MethodPost, "/api/projects/1/members", payload, ada.ID, project, nil)
	env.handler.AddMember(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestProjectHandler_AddMember_UnknownUser(t *testing.T) {
	env := setupProjectTestEnv(t)
	ada := createTestUser(t, env.db, "Ada", "ada@x.com")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{Name: "Apollo", CreatorID: ada.ID})
	require.NoError(t, err)

	c, w := projectTestContext(t, http.MethodPost, "/api/projects/1/members", map[string]any{
		"user_id": 4242,
		"role":    "member",
	}, ada.ID, project, nil)
	env.handler.AddMember(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectHandler_LastOwnerGuard(t *testing.T) {
	env := setupProjectTestEnv(t)
	ada := createTestUser(t, env.db, "Ada", "ada@x.com")
	bob := createTestUser(t, env.db, "Bob", "bob@x.com")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{Name: "Apollo", CreatorID: ada.ID})
	require.NoError(t, err)
	_, err = env.projectService.AddMember(services.AddMemberInput{ProjectID: project.ID, UserID: bob.ID, Role: models.RoleMember})
	require.NoError(t, err)

	removeURL := fmt.Sprintf("/api/projects/%d/members/%d", project.ID, ada.ID)

	// Removing the sole owner fails and leaves the membership unchanged
	c, w := projectTestContext(t, http.MethodDelete, removeURL, nil, ada.ID, project, nil)
	c.Params = gin.Params{{Key: "user_id", Value: strconv.FormatUint(ada.ID, 10)}}
	env.handler.RemoveMember(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var memberCount int64
	require.NoError(t, env.db.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&memberCount).Error)
	require.Equal(t, int64(2), memberCount)

	// Demoting the sole owner fails the same way
	c, w = projectTestContext(t, http.MethodPatch, removeURL, map[string]string{"role": "member"}, ada.ID, project, nil)
	c.Params = gin.Params{{Key: "user_id", Value: strconv.FormatUint(ada.ID, 10)}}
	env.handler.UpdateMemberRole(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Promote the second member, then the original owner can leave
	c, w = projectTestContext(t, http.MethodPatch, removeURL, map[string]string{"role": "owner"}, ada.ID, project, nil)
	c.Params = gin.Params{{Key: "user_id", Value: strconv.FormatUint(bob.ID, 10)}}
	env.handler.UpdateMemberRole(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = projectTestContext(t, http.MethodDelete, removeURL, nil, ada.ID, project, nil)
	c.Params = gin.Params{{Key: "user_id", Value: strconv.FormatUint(ada.ID, 10)}}
	env.handler.RemoveMember(c)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, env.db.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&memberCount).Error)
	require.Equal(t, int64(1), memberCount)
}

func TestProjectHandler_GetProject_IncludesMembersAndRole(t *testing.T) {
	env := setupProjectTestEnv(t)
	ada := createTestUser(t, env.db, "Ada", "ada@x.com")
	bob := createTestUser(t, env.db, "Bob", "bob@x.com")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{Name: "Apollo", CreatorID: ada.ID})
	require.NoError(t, err)
	member, err := env.projectService.AddMember(services.AddMemberInput{ProjectID: project.ID, UserID: bob.ID, Role: models.RoleMember})
	require.NoError(t, err)

	c, w := projectTestContext(t, http.MethodGet, "/api/projects/1", nil, bob.ID, project, member)
	env.handler.GetProject(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ProjectDetailDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Members, 2)
	require.Equal(t, models.RoleMember, response.YourRole)
}

func TestProjectHandler_DeleteProject_Cascades(t *testing.T) {
	env := setupProjectTestEnv(t)
	ada := createTestUser(t, env.db, "Ada", "ada@x.com")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{Name: "Apollo", CreatorID: ada.ID})
	require.NoError(t, err)

	task := models.Task{
		ProjectID: project.ID,
		Title:     "Launch",
		Priority:  models.TaskPriorityHigh,
		Status:    models.TaskStatusTodo,
	}
	require.NoError(t, env.db.Create(&task).Error)
	comment := models.Comment{TaskID: task.ID, AuthorID: &ada.ID, Body: "soon"}
	require.NoError(t, env.db.Create(&comment).Error)

	c, w := projectTestContext(t, http.MethodDelete, "/api/projects/1", nil, ada.ID, project, nil)
	env.handler.DeleteProject(c)

	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
	require.NoError(t, env.db.Model(&models.Comment{}).Where("task_id = ?", task.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
	require.NoError(t, env.db.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
}
