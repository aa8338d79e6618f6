package memory

import (
	"time"

	"ai-marketplace-be/pkg/recommend"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// PipelineState is the transient per-thread state of the last pipeline run.
// The tool round and debugging endpoints read it; it is never persisted.
type PipelineState struct {
	ThreadId     uuid.UUID
	Requirements recommend.RequirementSet
	CandidateIds []uuid.UUID
	UpdatedAt    time.Time
}

type PipelineStateRepository struct {
	cache *cache.Cache
}

func NewPipelineStateRepository() *PipelineStateRepository {
	// Entries expire after an hour of thread inactivity, purged every 10 min.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &PipelineStateRepository{
		cache: c,
	}
}

func (r *PipelineStateRepository) Save(state *PipelineState) {
	state.UpdatedAt = time.Now()
	r.cache.Set(state.ThreadId.String(), state, cache.DefaultExpiration)
}

func (r *PipelineStateRepository) Get(threadId uuid.UUID) (*PipelineState, bool) {
	if x, found := r.cache.Get(threadId.String()); found {
		return x.(*PipelineState), true
	}
	return nil, false
}

func (r *PipelineStateRepository) Delete(threadId uuid.UUID) {
	r.cache.Delete(threadId.String())
}
