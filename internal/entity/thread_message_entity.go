package entity

import (
	"time"

	"github.com/google/uuid"
)

type ThreadMessage struct {
	Id        uuid.UUID
	ThreadId  uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}
