package service

import (
	"context"
	"fmt"
	"time"

	"ai-marketplace-be/internal/constant"
	"ai-marketplace-be/internal/dto"
	"ai-marketplace-be/internal/entity"
	"ai-marketplace-be/internal/pkg/apperror"
	"ai-marketplace-be/internal/repository/memory"
	"ai-marketplace-be/internal/repository/specification"
	"ai-marketplace-be/internal/repository/unitofwork"
	"ai-marketplace-be/pkg/events"
	pktNats "ai-marketplace-be/pkg/nats"
	"ai-marketplace-be/pkg/recommend"
	"ai-marketplace-be/pkg/recommend/generate"
	"ai-marketplace-be/pkg/recommend/history"
	"ai-marketplace-be/pkg/recommend/requirement"
	"ai-marketplace-be/pkg/recommend/search"

	"github.com/google/uuid"
)

type IRecommendationService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateRecommendationRequest) (*dto.CreateRecommendationResponse, error)
	GetUserThreads(ctx context.Context, userId uuid.UUID, page *dto.PaginationRequest) (*dto.PaginatedResponse[dto.GetThreadsResponse], error)
	SearchThreads(ctx context.Context, userId uuid.UUID, keyword string) ([]dto.GetThreadsResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.GetThreadDetailResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateThreadRequest) (*dto.GetThreadsResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Clear(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type recommendationService struct {
	uowFactory     unitofwork.RepositoryFactory
	extractor      *requirement.Extractor
	matcher        *search.Matcher
	generator      *generate.Generator
	summarizer     *history.Summarizer
	stateRepo      *memory.PipelineStateRepository
	eventPublisher *pktNats.Publisher
}

func NewRecommendationService(
	uowFactory unitofwork.RepositoryFactory,
	extractor *requirement.Extractor,
	matcher *search.Matcher,
	generator *generate.Generator,
	summarizer *history.Summarizer,
	stateRepo *memory.PipelineStateRepository,
	eventPublisher *pktNats.Publisher,
) IRecommendationService {
	return &recommendationService{
		uowFactory:     uowFactory,
		extractor:      extractor,
		matcher:        matcher,
		generator:      generator,
		summarizer:     summarizer,
		stateRepo:      stateRepo,
		eventPublisher: eventPublisher,
	}
}

func (c *recommendationService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateRecommendationRequest) (*dto.CreateRecommendationResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	thread, isNew, err := c.resolveThread(ctx, uow, userId, req)
	if err != nil {
		return nil, err
	}

	stored, err := uow.ThreadMessageRepository().FindAll(ctx,
		specification.ByThreadId{ThreadId: thread.Id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	// The pipeline: extract requirements, match candidates, generate the
	// grounded answer. Extraction and generation never fail the request.
	requirements := c.extractor.Extract(ctx, req.Message, thread.Summary)
	candidates := c.matcher.Match(ctx, requirements, req.Message)
	answer := c.generator.Generate(ctx, req.Message, requirements, candidates, thread.Summary, req.ImageURL)

	now := time.Now()
	userMsg := &entity.ThreadMessage{
		Id:        uuid.New(),
		ThreadId:  thread.Id,
		Role:      constant.MessageRoleUser,
		Content:   req.Message,
		CreatedAt: now,
	}
	assistantMsg := &entity.ThreadMessage{
		Id:        uuid.New(),
		ThreadId:  thread.Id,
		Role:      constant.MessageRoleAssistant,
		Content:   answer,
		CreatedAt: now.Add(time.Millisecond), // keep ordering stable
	}

	allMessages := append(append([]*entity.ThreadMessage{}, stored...), userMsg, assistantMsg)

	turns := make([]history.Turn, 0, len(allMessages))
	for _, m := range allMessages {
		turns = append(turns, history.Turn{Role: m.Role, Content: m.Content})
	}
	newSummary, kept, collapsed := c.summarizer.Collapse(ctx, thread.Summary, turns)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// A fresh thread is persisted here so it rolls back with its messages.
	if isNew {
		if err := uow.RecommendationThreadRepository().Create(ctx, thread); err != nil {
			return nil, err
		}
	}

	if err := uow.ThreadMessageRepository().CreateBatch(ctx, []*entity.ThreadMessage{userMsg, assistantMsg}); err != nil {
		return nil, err
	}

	keptMessages := allMessages
	if collapsed {
		dropped := len(allMessages) - len(kept)
		droppedIds := make([]uuid.UUID, 0, dropped)
		for _, m := range allMessages[:dropped] {
			droppedIds = append(droppedIds, m.Id)
		}
		if err := uow.ThreadMessageRepository().DeleteByIds(ctx, droppedIds); err != nil {
			return nil, err
		}
		keptMessages = allMessages[dropped:]
		thread.Summary = newSummary
	}

	thread.UpdatedAt = &now
	if err := uow.RecommendationThreadRepository().Update(ctx, thread); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.saveState(thread.Id, requirements, candidates)
	c.publishRecommendationCreated(ctx, thread.Id, userId, len(candidates))

	res := &dto.CreateRecommendationResponse{
		RecommendationId:    thread.Id,
		Response:            answer,
		ConversationHistory: toMessageDTOs(keptMessages),
		RecommendedProducts: candidates,
	}
	if len(candidates) > 0 {
		stats := recommend.BuildStats(candidates)
		res.Summary = &stats
	}
	return res, nil
}

// resolveThread returns the existing thread for a follow-up turn or builds a
// fresh, not-yet-persisted one. Follow-ups must target an active thread the
// caller owns, with a matching variant.
func (c *recommendationService) resolveThread(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, req *dto.CreateRecommendationRequest) (*entity.RecommendationThread, bool, error) {
	if req.RecommendationId != nil {
		thread, err := uow.RecommendationThreadRepository().FindOne(ctx,
			specification.ByID{ID: *req.RecommendationId},
			specification.OwnedBy{UserId: userId},
			specification.ActiveThreads{},
		)
		if err != nil {
			return nil, false, err
		}
		if thread == nil {
			return nil, false, apperror.NewNotFound("recommendation thread")
		}
		if thread.Variant != req.Type {
			return nil, false, apperror.NewValidation("thread variant is %s, got %s", thread.Variant, req.Type)
		}
		return thread, false, nil
	}

	return &entity.RecommendationThread{
		Id:           uuid.New(),
		UserId:       userId,
		Variant:      req.Type,
		ProjectName:  req.ProjectName,
		SeedImageURL: req.ImageURL,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}, true, nil
}

func (c *recommendationService) GetUserThreads(ctx context.Context, userId uuid.UUID, page *dto.PaginationRequest) (*dto.PaginatedResponse[dto.GetThreadsResponse], error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	pageNum, pageSize := normalizePage(page)

	total, err := uow.RecommendationThreadRepository().Count(ctx,
		specification.OwnedBy{UserId: userId},
		specification.ActiveThreads{},
	)
	if err != nil {
		return nil, err
	}

	threads, err := uow.RecommendationThreadRepository().FindAll(ctx,
		specification.OwnedBy{UserId: userId},
		specification.ActiveThreads{},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (pageNum - 1) * pageSize},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.GetThreadsResponse, 0, len(threads))
	for _, t := range threads {
		items = append(items, toThreadDTO(t))
	}

	return &dto.PaginatedResponse[dto.GetThreadsResponse]{
		Items:    items,
		Page:     pageNum,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

func (c *recommendationService) SearchThreads(ctx context.Context, userId uuid.UUID, keyword string) ([]dto.GetThreadsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	threads, err := uow.RecommendationThreadRepository().FindAll(ctx,
		specification.OwnedBy{UserId: userId},
		specification.ActiveThreads{},
		specification.ProjectNameLike{Keyword: keyword},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.GetThreadsResponse, 0, len(threads))
	for _, t := range threads {
		res = append(res, toThreadDTO(t))
	}
	return res, nil
}

func (c *recommendationService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.GetThreadDetailResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	thread, err := c.findOwnedThread(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ThreadMessageRepository().FindAll(ctx,
		specification.ByThreadId{ThreadId: thread.Id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	return &dto.GetThreadDetailResponse{
		Id:                  thread.Id,
		Variant:             thread.Variant,
		ProjectName:         thread.ProjectName,
		SeedImageURL:        thread.SeedImageURL,
		Summary:             thread.Summary,
		ConversationHistory: toMessageDTOs(messages),
		CreatedAt:           thread.CreatedAt,
	}, nil
}

func (c *recommendationService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateThreadRequest) (*dto.GetThreadsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	thread, err := c.findOwnedThread(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	thread.ProjectName = req.ProjectName
	thread.UpdatedAt = &now

	if err := uow.RecommendationThreadRepository().Update(ctx, thread); err != nil {
		return nil, err
	}

	res := toThreadDTO(thread)
	return &res, nil
}

func (c *recommendationService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	thread, err := c.findOwnedThread(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.RecommendationThreadRepository().Deactivate(ctx, thread.Id); err != nil {
		return err
	}

	c.stateRepo.Delete(thread.Id)
	return nil
}

func (c *recommendationService) Clear(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	thread, err := c.findOwnedThread(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ThreadMessageRepository().DeleteByThreadId(ctx, thread.Id); err != nil {
		return err
	}

	now := time.Now()
	thread.Summary = ""
	thread.UpdatedAt = &now
	if err := uow.RecommendationThreadRepository().Update(ctx, thread); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	c.stateRepo.Delete(thread.Id)
	return nil
}

func (c *recommendationService) findOwnedThread(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.RecommendationThread, error) {
	thread, err := uow.RecommendationThreadRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserId: userId},
		specification.ActiveThreads{},
	)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, apperror.NewNotFound("recommendation thread")
	}
	return thread, nil
}

func (c *recommendationService) saveState(threadId uuid.UUID, requirements recommend.RequirementSet, candidates []recommend.Candidate) {
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, cand := range candidates {
		ids = append(ids, cand.ID)
	}
	c.stateRepo.Save(&memory.PipelineState{
		ThreadId:     threadId,
		Requirements: requirements,
		CandidateIds: ids,
	})
}

func (c *recommendationService) publishRecommendationCreated(ctx context.Context, threadId, userId uuid.UUID, productCount int) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.NewRecommendationCreated(threadId, userId, productCount)
	// We log error but don't fail the request as notification is auxiliary
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		fmt.Printf("[WARN] Failed to publish RECOMMENDATION_CREATED event: %v\n", err)
	}
}

func toThreadDTO(t *entity.RecommendationThread) dto.GetThreadsResponse {
	return dto.GetThreadsResponse{
		Id:          t.Id,
		Variant:     t.Variant,
		ProjectName: t.ProjectName,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toMessageDTOs(messages []*entity.ThreadMessage) []dto.ConversationMessageDTO {
	res := make([]dto.ConversationMessageDTO, 0, len(messages))
	for _, m := range messages {
		res = append(res, dto.ConversationMessageDTO{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return res
}
