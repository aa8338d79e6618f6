package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"ai-marketplace-be/internal/dto"
	"ai-marketplace-be/internal/repository/specification"
	"ai-marketplace-be/internal/repository/unitofwork"
	"ai-marketplace-be/pkg/recommend/search"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IIndexerService interface {
	Consume(ctx context.Context) error
}

type indexerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IIndexerService {
	return &indexerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (is *indexerService) Consume(ctx context.Context) error {
	messages, err := is.pubSub.Subscribe(ctx, is.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (is *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexProductMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Reindexing keywords for ProductId: %s", payload.ProductId)

	uow := is.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: payload.ProductId})
	if err != nil {
		log.Printf("[ERROR] Failed to get product %s: %v", payload.ProductId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if product == nil {
		log.Printf("[ERROR] Product not found: %s", payload.ProductId)
		msg.Ack() // Product deleted? Ack.
		return
	}

	product.Keywords = buildKeywords(product.Name, product.Brand, product.Category, product.Series, product.Description)

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.ProductRepository().Update(ctx, product); err != nil {
		log.Printf("[ERROR] Failed to save keywords for product %s: %v", payload.ProductId, err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Product indexed: %d keywords for ProductId: %s", len(product.Keywords), payload.ProductId)
	msg.Ack()
}

// buildKeywords extracts deduplicated search terms from the product's
// descriptive fields, preserving first-seen order.
func buildKeywords(fields ...string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, w := range search.MeaningfulWords(strings.Join(fields, " ")) {
		if seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}
