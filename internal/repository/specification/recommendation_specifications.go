package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveThreads filters out soft-deleted threads.
type ActiveThreads struct{}

func (s ActiveThreads) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// ByThreadId filters messages belonging to one thread.
type ByThreadId struct {
	ThreadId uuid.UUID
}

func (s ByThreadId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_id = ?", s.ThreadId)
}

// ProjectNameLike does a case-insensitive keyword match on project names.
type ProjectNameLike struct {
	Keyword string
}

func (s ProjectNameLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_name ILIKE ?", "%"+s.Keyword+"%")
}
