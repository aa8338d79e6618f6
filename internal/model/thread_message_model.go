package model

import (
	"time"

	"github.com/google/uuid"
)

type ThreadMessage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ThreadId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (ThreadMessage) TableName() string {
	return "thread_messages"
}
