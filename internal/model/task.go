package model

import "time"

// Status is the lifecycle state of a task.
type Status string

const (
	StatusStart    Status = "start"
	StatusProgress Status = "progress"
	StatusFinish   Status = "finish"
	StatusDNF      Status = "dnf"
)

// Terminal reports whether no further lifecycle transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusFinish || s == StatusDNF
}

// Task represents a single tracked unit of work.
type Task struct {
	ID    uint `gorm:"primaryKey"`
	Title string

	// Category is the bucket the task is currently displayed under.
	// ScoringCategory follows Category while the task is non-terminal and is
	// frozen once it reaches finish or dnf.
	Category        Bucket `gorm:"index"`
	ScoringCategory Bucket

	Status Status `gorm:"index;default:start"`

	LapsTotal int `gorm:"default:1"`
	LapsDone  int `gorm:"default:0"`

	Deadline   *time.Time
	FinishedAt *time.Time

	PointsBase    int `gorm:"default:0"`
	PointsBonus   int `gorm:"default:0"`
	PointsPenalty int `gorm:"default:0"`
	PointsTotal   int `gorm:"default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
