package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-marketplace-be/internal/entity"
	"ai-marketplace-be/internal/repository/specification"
	"ai-marketplace-be/internal/repository/unitofwork"
	"ai-marketplace-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ProductRepository())
	assert.NotNil(t, uow.RecommendationThreadRepository())
	assert.NotNil(t, uow.ThreadMessageRepository())
	assert.NotNil(t, uow.NotificationRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check Product Repository", func(t *testing.T) {
		count, err := uow.ProductRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Product count: %d", count)
	})

	t.Run("Check Thread Repository", func(t *testing.T) {
		count, err := uow.RecommendationThreadRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Thread count: %d", count)
	})

	t.Run("Check Transactional Thread With Messages", func(t *testing.T) {
		ctx := context.Background()
		userId := uuid.New()

		thread := &entity.RecommendationThread{
			Id:          uuid.New(),
			UserId:      userId,
			Variant:     "interior_design",
			ProjectName: "Integration Reno " + uuid.New().String(),
			IsActive:    true,
			CreatedAt:   time.Now(),
		}

		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		err = uow.RecommendationThreadRepository().Create(ctx, thread)
		assert.NoError(t, err)

		messages := []*entity.ThreadMessage{
			{
				Id:        uuid.New(),
				ThreadId:  thread.Id,
				Role:      "user",
				Content:   "I need waterproof kitchen flooring.",
				CreatedAt: time.Now(),
			},
			{
				Id:        uuid.New(),
				ThreadId:  thread.Id,
				Role:      "assistant",
				Content:   "Here are some vinyl options.",
				CreatedAt: time.Now().Add(time.Millisecond),
			},
		}
		err = uow.ThreadMessageRepository().CreateBatch(ctx, messages)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		// Read back through the specifications used by the service layer
		found, err := uow.RecommendationThreadRepository().FindOne(ctx,
			specification.ByID{ID: thread.Id},
			specification.OwnedBy{UserId: userId},
			specification.ActiveThreads{},
		)
		assert.NoError(t, err)
		assert.NotNil(t, found)

		stored, err := uow.ThreadMessageRepository().FindAll(ctx,
			specification.ByThreadId{ThreadId: thread.Id},
			specification.OrderBy{Field: "created_at"},
		)
		assert.NoError(t, err)
		assert.Len(t, stored, 2)
		assert.Equal(t, "user", stored[0].Role)

		// Soft delete hides the thread from active lookups
		err = uow.RecommendationThreadRepository().Deactivate(ctx, thread.Id)
		assert.NoError(t, err)

		gone, err := uow.RecommendationThreadRepository().FindOne(ctx,
			specification.ByID{ID: thread.Id},
			specification.ActiveThreads{},
		)
		assert.NoError(t, err)
		assert.Nil(t, gone)

		t.Log("Successfully created Thread with Messages in Transaction")
	})
}
