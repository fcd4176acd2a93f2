package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel contains common fields for tracker records.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate generates a UUID if not already set.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Project is a top-level container for sprints and tasks.
type Project struct {
	BaseModel
	Name   string `gorm:"size:255;not null" json:"name"`
	Status string `gorm:"size:32;not null" json:"status"`
}

// Sprint is a time-boxed iteration within a project.
type Sprint struct {
	BaseModel
	ProjectID uuid.UUID  `gorm:"type:uuid;index;not null" json:"project_id"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Status    string     `gorm:"size:32;not null" json:"status"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

// Task is a unit of work. Labels and Checklist are stored as JSON text.
type Task struct {
	BaseModel
	ProjectID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"project_id"`
	SprintID    *uuid.UUID `gorm:"type:uuid;index" json:"sprint_id,omitempty"`
	Title       string     `gorm:"size:500;not null" json:"title"`
	Status      string     `gorm:"size:32;not null" json:"status"`
	Priority    int        `json:"priority"`
	Labels      string     `gorm:"type:text" json:"labels"`
	Checklist   string     `gorm:"type:text" json:"checklist"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AuditLog records one action taken against a task. Audit entries are
// append-only and are never soft-deleted.
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID    uuid.UUID `gorm:"type:uuid;index;not null" json:"task_id"`
	Action    string    `gorm:"size:32;not null" json:"action"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate generates a UUID if not already set.
func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Models returns every tracker model for migration.
func Models() []interface{} {
	return []interface{}{&Project{}, &Sprint{}, &Task{}, &AuditLog{}}
}

// Project statuses.
const (
	ProjectStatusActive    = "active"
	ProjectStatusArchived  = "archived"
	ProjectStatusCompleted = "completed"
)

// Sprint statuses.
const (
	SprintStatusPlanned = "planned"
	SprintStatusActive  = "active"
	SprintStatusClosed  = "closed"
)

// Task statuses.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusDone       = "done"
	TaskStatusCanceled   = "canceled"
)

// Audit actions.
const (
	AuditActionCreated       = "created"
	AuditActionUpdated       = "updated"
	AuditActionStatusChanged = "status_changed"
	AuditActionDeleted       = "deleted"
)

// TaskStatuses lists every recognized task status.
var TaskStatuses = []string{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusReview,
	TaskStatusDone,
	TaskStatusCanceled,
}

// AuditActions lists every recognized audit action.
var AuditActions = []string{
	AuditActionCreated,
	AuditActionUpdated,
	AuditActionStatusChanged,
	AuditActionDeleted,
}

// taskTransitions maps each task status to the statuses it may move to.
// Terminal statuses have no outgoing transitions.
var taskTransitions = map[string][]string{
	TaskStatusTodo:       {TaskStatusInProgress, TaskStatusCanceled},
	TaskStatusInProgress: {TaskStatusReview, TaskStatusDone, TaskStatusCanceled},
	TaskStatusReview:     {TaskStatusInProgress, TaskStatusDone, TaskStatusCanceled},
	TaskStatusDone:       {},
	TaskStatusCanceled:   {},
}

// ValidTaskStatus reports whether s is a recognized task status.
func ValidTaskStatus(s string) bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ValidAuditAction reports whether a is a recognized audit action.
func ValidAuditAction(a string) bool {
	for _, action := range AuditActions {
		if a == action {
			return true
		}
	}
	return false
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
