package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/flowcheck/apiclient"
	"github.com/kbukum/flowcheck/store"
	"github.com/kbukum/flowcheck/util"
	"github.com/kbukum/flowcheck/validation"
)

// Operation names for failure injection.
const (
	OpCreate = "create"
	OpRead   = "read"
	OpUpdate = "update"
	OpDelete = "delete"
	OpList   = "list"
)

// API is an in-process fake task API backed by a store.
type API struct {
	store *store.Store
	srv   *httptest.Server

	mu           sync.Mutex
	forced       map[string]int
	latency      time.Duration
	allowIllegal bool
	corruptEcho  bool
}

// New starts a fake task API over the given store. The server is shut
// down when the test finishes.
func New(t *testing.T, s *store.Store) *API {
	t.Helper()

	gin.SetMode(gin.TestMode)
	api := &API{store: s, forced: make(map[string]int)}

	router := gin.New()
	router.POST("/tasks", api.createTask)
	router.GET("/tasks", api.listTasks)
	router.GET("/tasks/:id", api.readTask)
	router.PATCH("/tasks/:id", api.updateTask)
	router.DELETE("/tasks/:id", api.deleteTask)

	api.srv = httptest.NewServer(router)
	t.Cleanup(api.srv.Close)
	return api
}

// URL returns the base URL of the fake API.
func (a *API) URL() string {
	return a.srv.URL
}

// Close shuts the fake server down immediately, simulating an unreachable
// API. The cleanup registered by New tolerates a second close.
func (a *API) Close() {
	a.srv.Close()
}

// Client returns an API client pointed at the fake.
func (a *API) Client(t *testing.T) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(apiclient.Config{BaseURL: a.srv.URL})
	if err != nil {
		t.Fatalf("failed to build client for fake API: %v", err)
	}
	return c
}

// ForceStatus makes the given operation respond with the given status
// code instead of performing its work.
func (a *API) ForceStatus(op string, code int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.forced[op] = code
}

// ClearForced removes all forced status codes.
func (a *API) ClearForced() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.forced = make(map[string]int)
}

// SetLatency adds a fixed delay to every operation.
func (a *API) SetLatency(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.latency = d
}

// AllowIllegalTransitions disables transition rule enforcement, making
// the fake accept any status change.
func (a *API) AllowIllegalTransitions(allow bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.allowIllegal = allow
}

// CorruptEcho makes every task response carry a mangled title.
func (a *API) CorruptEcho(corrupt bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.corruptEcho = corrupt
}

// inject applies latency and forced status codes. Returns true when the
// request was already answered.
func (a *API) inject(c *gin.Context, op string) bool {
	a.mu.Lock()
	latency := a.latency
	code, forced := a.forced[op]
	a.mu.Unlock()

	if latency > 0 {
		time.Sleep(latency)
	}
	if forced {
		c.JSON(code, gin.H{"error": "injected failure"})
		return true
	}
	return false
}

func (a *API) createTask(c *gin.Context) {
	if a.inject(c, OpCreate) {
		return
	}

	var payload apiclient.TaskPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validation.Validate(payload); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	projectID, err := uuid.Parse(payload.ProjectID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid project_id"})
		return
	}
	var project store.Project
	if err := a.store.DB().First(&project, "id = ?", projectID).Error; err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown project"})
		return
	}

	task := store.Task{
		ProjectID: projectID,
		Title:     payload.Title,
		Status:    payload.Status,
		Priority:  payload.Priority,
		Labels:    marshalJSON(normalizeLabels(payload.Labels)),
		Checklist: marshalJSON(normalizeChecklist(payload.Checklist)),
	}
	if payload.SprintID != "" {
		sprintID, err := uuid.Parse(payload.SprintID)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid sprint_id"})
			return
		}
		task.SprintID = util.Ptr(sprintID)
	}
	if payload.Status == store.TaskStatusDone {
		task.CompletedAt = util.Ptr(time.Now())
	}

	if err := a.store.DB().Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := a.writeAudit(task.ID, store.AuditActionCreated, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, a.toDTO(task))
}

func (a *API) readTask(c *gin.Context) {
	if a.inject(c, OpRead) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var task store.Task
	if err := a.store.DB().First(&task, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, a.toDTO(task))
}

func (a *API) listTasks(c *gin.Context) {
	if a.inject(c, OpList) {
		return
	}

	query := a.store.DB().Order("id")
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var tasks []store.Task
	if err := query.Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dtos := make([]apiclient.TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		dtos = append(dtos, a.toDTO(task))
	}
	c.JSON(http.StatusOK, dtos)
}

func (a *API) updateTask(c *gin.Context) {
	if a.inject(c, OpUpdate) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var task store.Task
	if err := a.store.DB().First(&task, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	var update apiclient.TaskUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validation.Validate(update); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	action := store.AuditActionUpdated
	if update.Status != nil && *update.Status != task.Status {
		a.mu.Lock()
		allowIllegal := a.allowIllegal
		a.mu.Unlock()

		if !allowIllegal && !store.CanTransition(task.Status, *update.Status) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "illegal transition from " + task.Status + " to " + *update.Status,
			})
			return
		}
		task.Status = *update.Status
		if task.Status == store.TaskStatusDone {
			task.CompletedAt = util.Ptr(time.Now())
		}
		action = store.AuditActionStatusChanged
	}
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.Labels != nil {
		task.Labels = marshalJSON(normalizeLabels(*update.Labels))
	}

	if err := a.store.DB().Save(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := a.writeAudit(task.ID, action, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, a.toDTO(task))
}

func (a *API) deleteTask(c *gin.Context) {
	if a.inject(c, OpDelete) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var task store.Task
	if err := a.store.DB().First(&task, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if err := a.store.DB().Delete(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := a.writeAudit(task.ID, store.AuditActionDeleted, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// writeAudit appends an audit entry for a mutation.
func (a *API) writeAudit(taskID uuid.UUID, action string, task store.Task) error {
	entry := store.AuditLog{
		TaskID:  taskID,
		Action:  action,
		Payload: marshalJSON(map[string]any{"title": task.Title, "status": task.Status}),
	}
	return a.store.DB().Create(&entry).Error
}

func (a *API) toDTO(task store.Task) apiclient.TaskDTO {
	a.mu.Lock()
	corrupt := a.corruptEcho
	a.mu.Unlock()

	dto := apiclient.TaskDTO{
		ID:          task.ID.String(),
		ProjectID:   task.ProjectID.String(),
		Title:       task.Title,
		Status:      task.Status,
		Priority:    task.Priority,
		Labels:      unmarshalLabels(task.Labels),
		Checklist:   unmarshalChecklist(task.Checklist),
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.SprintID != nil {
		dto.SprintID = task.SprintID.String()
	}
	if corrupt {
		dto.Title = dto.Title + " [corrupted]"
	}
	return dto
}

func normalizeLabels(labels []string) []string {
	if labels == nil {
		return []string{}
	}
	return labels
}

func normalizeChecklist(items []apiclient.ChecklistItem) []apiclient.ChecklistItem {
	if items == nil {
		return []apiclient.ChecklistItem{}
	}
	return items
}

func marshalJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalLabels(raw string) []string {
	var labels []string
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		return []string{}
	}
	return labels
}

func unmarshalChecklist(raw string) []apiclient.ChecklistItem {
	var items []apiclient.ChecklistItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}
