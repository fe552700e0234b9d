package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/todus/internal/models"
)

// fakeService is an in-memory task service served by gin
type fakeService struct {
	mu         sync.Mutex
	tasks      map[int64]gin.H
	token      string
	lastUpdate map[string]any
	failIDs    map[int64]int
}

func newFakeService(token string) *fakeService {
	return &fakeService{
		token: token,
		tasks: map[int64]gin.H{
			1: {"id": 1, "name": "Write report", "status": "PENDENT", "dateCreated": "2025-03-01T09:00:00",
				"dueDate": "2025-03-10T18:00:00", "priority": gin.H{"id": 2, "name": "Medium", "level": 2}},
			2: {"id": 2, "name": "Old groceries", "status": "COMPLETED", "completedAt": "2025-02-20T10:00:00Z",
				"trashed": true, "dateTrashed": "2025-02-25T10:00:00Z", "category": gin.H{"id": 7, "name": "Home"}},
		},
		failIDs: map[int64]int{},
	}
}

func (f *fakeService) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if f.token != "" && c.GetHeader("Authorization") != "Bearer "+f.token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token", "code": "UNAUTHORIZED"})
			return
		}
		c.Next()
	})

	api := r.Group("/api")
	api.GET("/tasks/list", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := []gin.H{}
		for _, id := range []int64{1, 2, 3} {
			if t, ok := f.tasks[id]; ok {
				out = append(out, t)
			}
		}
		c.JSON(http.StatusOK, out)
	})
	api.GET("/tasks/trash", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := []gin.H{}
		if t, ok := f.tasks[2]; ok {
			if c.Query("categoryId") == "" || c.Query("categoryId") == "7" {
				out = append(out, t)
			}
		}
		c.JSON(http.StatusOK, out)
	})
	api.PUT("/tasks/:id", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		if code, ok := f.failIDs[id]; ok {
			c.JSON(code, gin.H{"error": "boom", "code": "INTERNAL"})
			return
		}
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastUpdate = body
		t, ok := f.tasks[id]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tarea no encontrada", "code": "NOT_FOUND"})
			return
		}
		if p, ok := body["priorityId"]; ok {
			t["priority"] = gin.H{"id": p, "name": "High", "level": 3}
		}
		c.JSON(http.StatusOK, t)
	})
	api.PUT("/tasks/trash/:id", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		t := f.tasks[id]
		t["trashed"] = true
		t["dateTrashed"] = "2025-03-05T08:00:00Z"
		c.JSON(http.StatusOK, t)
	})
	api.PUT("/tasks/restore/:id", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		if t, ok := f.tasks[id]; ok {
			t["trashed"] = false
			delete(t, "dateTrashed")
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tarea recuperada"})
	})
	api.POST("/tasks/create", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.tasks[3] = gin.H{"id": 3, "name": body["name"], "status": "PENDENT"}
		c.JSON(http.StatusCreated, gin.H{"message": "Tarea creada"})
	})
	api.DELETE("/tasks/:id", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.tasks[id]; !ok {
			c.String(http.StatusNotFound, "no such task")
			return
		}
		delete(f.tasks, id)
		c.Status(http.StatusNoContent)
	})
	api.GET("/categories/all", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 7, "name": "Home", "orderTasks": "NAME_ASC", "autoDeleteComplete": true, "deleteCompleteDays": 3}})
	})
	api.POST("/categories/create", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		body["id"] = 8
		c.JSON(http.StatusCreated, body)
	})
	api.PUT("/categories/update/:id", func(c *gin.Context) {
		if c.Param("id") != "7" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Categoria no encontrada", "code": "NOT_FOUND"})
			return
		}
		c.Status(http.StatusNoContent)
	})
	api.GET("/priorities/all", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 1, "name": "Low", "level": 1, "colorHex": "#00FF00"}})
	})
	return r
}

func newTestClient(t *testing.T, svc *fakeService, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(svc.router())
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/", token, WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClientRejectsBadURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "ftp://example.com", "://bad"} {
		if _, err := NewClient(raw, "tok"); err == nil {
			t.Errorf("NewClient(%q) expected error", raw)
		}
	}
}

func TestListTasksDecodesBackendFormat(t *testing.T) {
	t.Parallel()
	svc := newFakeService("secret")
	client := newTestClient(t, svc, "secret")

	tasks, err := client.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}

	first := tasks[0]
	if first.Status != models.StatusPending {
		t.Errorf("Expected PENDENT to decode as PENDING, got %q", first.Status)
	}
	if first.DueDate == nil || first.DueDate.Day() != 10 || first.DueDate.Hour() != 18 {
		t.Errorf("Unexpected due date: %v", first.DueDate)
	}
	if first.PriorityID == nil || *first.PriorityID != 2 {
		t.Errorf("Expected priority id 2 from embedded object, got %v", first.PriorityID)
	}

	second := tasks[1]
	if !second.Trashed || second.DateTrashed == nil {
		t.Errorf("Expected trashed task with dateTrashed, got %+v", second)
	}
	if second.CategoryID == nil || *second.CategoryID != 7 {
		t.Errorf("Expected category id 7, got %v", second.CategoryID)
	}
	if second.CompletedAt == nil || !second.CompletedAt.Equal(time.Date(2025, 2, 20, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected completedAt: %v", second.CompletedAt)
	}
}

func TestUnauthorizedReturnsAPIError(t *testing.T) {
	t.Parallel()
	svc := newFakeService("secret")
	client := newTestClient(t, svc, "wrong")

	_, err := client.ListTasks(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "UNAUTHORIZED" {
		t.Errorf("Unexpected API error: %+v", apiErr)
	}
}

func TestUpdateTaskSendsPartialBody(t *testing.T) {
	t.Parallel()
	svc := newFakeService("")
	client := newTestClient(t, svc, "")

	task, err := client.UpdateTask(context.Background(), 1, TaskFields{PriorityID: Ptr(int64(3))})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if task == nil || task.PriorityID == nil || *task.PriorityID != 3 {
		t.Fatalf("Expected updated priority 3, got %+v", task)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.lastUpdate) != 1 {
		t.Errorf("Expected only priorityId in body, got %v", svc.lastUpdate)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	t.Parallel()
	svc := newFakeService("")
	client := newTestClient(t, svc, "")

	_, err := client.UpdateTask(context.Background(), 99, TaskFields{Name: Ptr("x")})
	if !IsNotFound(err) {
		t.Fatalf("Expected not found error, got %v", err)
	}
}

func TestServerErrorCarriesCode(t *testing.T) {
	t.Parallel()
	svc := newFakeService("")
	svc.failIDs[1] = http.StatusInternalServerError
	client := newTestClient(t, svc, "")

	_, err := client.UpdateTask(context.Background(), 1, TaskFields{Name: Ptr("x")})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "INTERNAL" || apiErr.Message != "boom" {
		t.Fatalf("Expected INTERNAL api error, got %v", err)
	}
	if IsNotFound(err) {
		t.Error("500 must not be treated as not found")
	}
}

func TestSetTrashedAndRestore(t *testing.T) {
	t.Parallel()
	svc := newFakeService("")
	client := newTestClient(t, svc, "")

	task, err := client.SetTrashed(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("SetTrashed failed: %v", err)
	}
	if task == nil || !task.Trashed || task.DateTrashed == nil {
		t.Errorf("Expected trashed task, got %+v", task)
	}

	// The restore endpoint answers with a message body only
	restored, err := client.SetTrashed(context.Background(), 2, false)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored == nil || restored.ID != 2 || restored.Name != "Old groceries" || restored.Trashed {
		t.Errorf("Expected task 2 read back after restore, got %+v", restored)
	}
}

func TestMessageOnlyWriteResponses(t *testing.T) {
	t.Parallel()
	svc := newFakeService("")
	client := newTestClient(t, svc, "")
	ctx := context.Background()

	created, err := client.CreateTask(ctx, TaskFields{Name: Ptr("Call the bank")})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if created == nil || created.ID != 3 || created.Name != "Call the bank" {
		t.Errorf("Expected created task 3 read back, got %+v", created)
	}

	// a task the list no longer carries still comes back with its id
	svc.mu.Lock()
	delete(svc.tasks, 2)
	svc.mu.Unlock()
	restored, err := client.SetTrashed(ctx, 2, false)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored == nil || restored.ID != 2 {
		t.Errorf("Expected a task with id 2, got %+v", restored)
	}
}

func TestDeleteAndListTrashed(t *testing.T) {
	t.Parallel()
	svc := newFakeService("")
	client := newTestClient(t, svc, "")

	other := int64(8)
	trashed, err := client.ListTrashed(context.Background(), &other)
	if err != nil {
		t.Fatalf("ListTrashed failed: %v", err)
	}
	if len(trashed) != 0 {
		t.Errorf("Expected no trashed tasks in category 8, got %d", len(trashed))
	}

	trashed, err = client.ListTrashed(context.Background(), nil)
	if err != nil || len(trashed) != 1 {
		t.Fatalf("Expected 1 trashed task, got %d (%v)", len(trashed), err)
	}

	if err := client.DeleteTask(context.Background(), 2); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	err = client.DeleteTask(context.Background(), 2)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "no such task" {
		t.Errorf("Expected plain-text 404 message, got %v", err)
	}
}

func TestListCategoriesAndPriorities(t *testing.T) {
	t.Parallel()
	svc := newFakeService("")
	client := newTestClient(t, svc, "")

	categories, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(categories) != 1 || categories[0].OrderTasks != models.OrderNameAsc {
		t.Fatalf("Unexpected categories: %+v", categories)
	}
	if days, ok := categories[0].AutoDeleteAfter(); !ok || days != 3 {
		t.Errorf("Expected auto delete after 3 days, got %d %v", days, ok)
	}

	priorities, err := client.ListPriorities(context.Background())
	if err != nil {
		t.Fatalf("ListPriorities failed: %v", err)
	}
	if len(priorities) != 1 || priorities[0].Color != "#00FF00" {
		t.Errorf("Unexpected priorities: %+v", priorities)
	}
}

func TestCreateTaskRequiresName(t *testing.T) {
	t.Parallel()
	svc := newFakeService("")
	client := newTestClient(t, svc, "")

	if _, err := client.CreateTask(context.Background(), TaskFields{}); err == nil {
		t.Error("Expected error for missing name")
	}
}

func TestSaveCategory(t *testing.T) {
	svc := newFakeService("")
	client := newTestClient(t, svc, "")
	ctx := context.Background()

	created := &models.Category{Name: "Garden", OrderTasks: models.OrderDueDate}
	if err := client.SaveCategory(ctx, created); err != nil {
		t.Fatalf("SaveCategory(create) error = %v", err)
	}
	if created.ID != 8 {
		t.Errorf("created ID = %d, want 8", created.ID)
	}

	if err := client.SaveCategory(ctx, &models.Category{ID: 7, Name: "Home"}); err != nil {
		t.Errorf("SaveCategory(update) error = %v", err)
	}
	if err := client.SaveCategory(ctx, &models.Category{ID: 9, Name: "Gone"}); !IsNotFound(err) {
		t.Errorf("SaveCategory(missing) error = %v, want not found", err)
	}
	if err := client.SaveCategory(ctx, &models.Category{Name: "Bad", AutoDeleteComplete: true}); err == nil {
		t.Error("SaveCategory should validate before sending")
	}
}
