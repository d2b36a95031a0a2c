package models

import "time"

// TaskStatus состояние задачи.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// ActiveStatuses статусы незавершённых задач.
var ActiveStatuses = []TaskStatus{StatusPending, StatusInProgress}

// IsValid сообщает, входит ли статус в допустимый набор.
// Граф переходов не задан: любой допустимый статус достижим из любого.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Priority приоритет задачи.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid сообщает, входит ли приоритет в допустимый набор.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Task представляет задачу, назначенную пользователю.
// AssignedTo и CreatedBy хранят ID пользователей, DueDate не валидируется.
type Task struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	AssignedTo  string     `json:"assigned_to" bson:"assigned_to"`
	DueDate     string     `json:"due_date" bson:"due_date"`
	Status      TaskStatus `json:"status" bson:"status"`
	Priority    Priority   `json:"priority" bson:"priority"`
	CreatedBy   string     `json:"created_by" bson:"created_by"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// TaskDraft данные для создания задачи. Пустые Status и Priority
// заменяются значениями по умолчанию в NewTask.
type TaskDraft struct {
	Title       string
	Description string
	AssignedTo  string
	DueDate     string
	Status      TaskStatus
	Priority    Priority
}

// NewTask собирает задачу из черновика, применяя значения по умолчанию.
func NewTask(id string, draft TaskDraft, createdBy string, now time.Time) Task {
	status := draft.Status
	if status == "" {
		status = StatusPending
	}
	priority := draft.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	return Task{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		AssignedTo:  draft.AssignedTo,
		DueDate:     draft.DueDate,
		Status:      status,
		Priority:    priority,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}
}

// AssigneeInfo данные исполнителя, подставляемые при чтении.
type AssigneeInfo struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// UnknownAssignee используется, когда исполнитель не найден.
const UnknownAssignee = "Unknown"

// TaskView задача, обогащённая текущими данными исполнителя.
type TaskView struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssignedTo  AssigneeInfo `json:"assigned_to"`
	DueDate     string       `json:"due_date"`
	Status      TaskStatus   `json:"status"`
	Priority    Priority     `json:"priority"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

// NewTaskView соединяет задачу с исполнителем. assignee может быть nil.
func NewTaskView(t Task, assignee *User) TaskView {
	info := AssigneeInfo{
		ID:       t.AssignedTo,
		Fullname: UnknownAssignee,
		Email:    UnknownAssignee,
	}
	if assignee != nil {
		info.Fullname = assignee.Fullname
		info.Email = assignee.Email
	}
	return TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		AssignedTo:  info,
		DueDate:     t.DueDate,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Stats агрегированные счётчики для панели администратора.
type Stats struct {
	TotalUsers     int64 `json:"total_users"`
	CompletedTasks int64 `json:"completed_tasks"`
	ActiveTasks    int64 `json:"active_tasks"`
}
