package models

// SubTask is a checklist item belonging to a task
type SubTask struct {
	ID     int64  `gorm:"primarykey" json:"id"`
	TaskID int64  `gorm:"not null;index" json:"taskId"`
	Name   string `gorm:"not null" json:"name"`
	Status Status `gorm:"default:PENDING" json:"status"`
}

// IsCompleted reports whether the subtask is done
func (s *SubTask) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// Toggle flips the subtask between pending and completed
func (s *SubTask) Toggle() {
	if s.IsCompleted() {
		s.Status = StatusPending
		return
	}
	s.Status = StatusCompleted
}
