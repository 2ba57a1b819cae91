package domain

import (
	"sort"
	"strings"
)

// Status is the closed set of task states.
type Status string

const (
	StatusWorking   Status = "working"
	StatusWaiting   Status = "waiting"
	StatusFrozen    Status = "frozen"
	StatusCompleted Status = "completed"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusWorking, StatusWaiting, StatusFrozen, StatusCompleted}

// Valid reports whether s belongs to the closed status set.
func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Priority is the closed set of task priorities.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task represents a unit of work positioned inside a board.
type Task struct {
	ID          string    `json:"id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status" validate:"required,oneof=working waiting frozen completed"`
	Priority    Priority  `json:"priority" validate:"required,oneof=high medium low"`
	Tags        []string  `json:"tags"`
	DueDate     Timestamp `json:"dueDate,omitempty"`
	BoardID     string    `json:"boardId" validate:"required"`
	Order       int       `json:"order" validate:"gte=0"`
	Archived    bool      `json:"archived"`
	ArchivedAt  Timestamp `json:"archivedAt,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
	CompletedAt Timestamp `json:"completedAt,omitempty"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// SetStatus changes the status and keeps CompletedAt consistent with it.
func (t *Task) SetStatus(status Status, now Timestamp) {
	if t == nil || t.Status == status {
		return
	}
	t.Status = status
	if status == StatusCompleted {
		t.CompletedAt = now
	} else {
		t.CompletedAt = ""
	}
}

// ApplyDefaults fills absent optional fields with their defaults.
func (t *Task) ApplyDefaults() {
	if t == nil {
		return
	}
	if t.Status == "" {
		t.Status = StatusWorking
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	t.Tags = NormalizeTags(t.Tags)
}

// NormalizeTags trims, de-duplicates and sorts labels. The result is never nil.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func (t Task) RecordKind() Kind {
	return KindTask
}

func (t Task) RecordID() string {
	return t.ID
}

// Clone returns a deep copy.
func (t Task) Clone() Task {
	t.Tags = append([]string(nil), t.Tags...)
	return t
}
