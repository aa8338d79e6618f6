package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-marketplace-be/internal/constant"
	"ai-marketplace-be/internal/dto"
	"ai-marketplace-be/internal/entity"
	"ai-marketplace-be/internal/mapper"
	"ai-marketplace-be/internal/pkg/apperror"
	"ai-marketplace-be/internal/repository/specification"
	"ai-marketplace-be/internal/repository/unitofwork"
	"ai-marketplace-be/pkg/events"
	pktNats "ai-marketplace-be/pkg/nats"
	"ai-marketplace-be/pkg/recommend"

	"github.com/google/uuid"
)

type IProductService interface {
	Create(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	Update(ctx context.Context, req *dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page *dto.PaginationRequest) (*dto.PaginatedResponse[dto.ProductResponse], error)
	SearchProducts(ctx context.Context, req *dto.SearchProductsRequest) ([]dto.ProductResponse, error)

	// Search satisfies recommend.Catalog for the matching pipeline.
	Search(ctx context.Context, query recommend.CatalogQuery) ([]recommend.Candidate, error)
}

type productService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	mapper           *mapper.ProductMapper
}

func NewProductService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) IProductService {
	return &productService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		mapper:           mapper.NewProductMapper(),
	}
}

func (c *productService) Create(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	product := entity.Product{
		Id:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Brand:       req.Brand,
		Category:    req.Category,
		Series:      req.Series,
		Images:      req.Images,
		Variations:  req.Variations,
		CreatedAt:   time.Now(),
	}

	err := uow.ProductRepository().Create(ctx, &product)
	if err != nil {
		return nil, err
	}

	if err := c.requestIndexing(ctx, product.Id); err != nil {
		return nil, err
	}
	c.publishProductUpdated(ctx, product.Id, product.Category)

	res := c.toResponse(&product)
	return &res, nil
}

func (c *productService) Show(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFound("product")
	}

	res := c.toResponse(product)
	return &res, nil
}

func (c *productService) Update(ctx context.Context, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFound("product")
	}

	now := time.Now()
	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Brand = req.Brand
	product.Category = req.Category
	product.Series = req.Series
	product.Images = req.Images
	product.Variations = req.Variations
	product.UpdatedAt = &now

	err = uow.ProductRepository().Update(ctx, product)
	if err != nil {
		return nil, err
	}

	if err := c.requestIndexing(ctx, product.Id); err != nil {
		return nil, err
	}
	c.publishProductUpdated(ctx, product.Id, product.Category)

	res := c.toResponse(product)
	return &res, nil
}

func (c *productService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NewNotFound("product")
	}

	return uow.ProductRepository().Delete(ctx, id)
}

func (c *productService) List(ctx context.Context, page *dto.PaginationRequest) (*dto.PaginatedResponse[dto.ProductResponse], error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	pageNum, pageSize := normalizePage(page)

	total, err := uow.ProductRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	products, err := uow.ProductRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (pageNum - 1) * pageSize},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, c.toResponse(p))
	}

	return &dto.PaginatedResponse[dto.ProductResponse]{
		Items:    items,
		Page:     pageNum,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

func (c *productService) SearchProducts(ctx context.Context, req *dto.SearchProductsRequest) ([]dto.ProductResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	limit := req.Limit
	if limit <= 0 || limit > constant.MaxPageSize {
		limit = constant.DefaultPageSize
	}

	specs := []specification.Specification{}
	if req.Keyword != "" {
		specs = append(specs, specification.KeywordLike{Keyword: req.Keyword})
	}
	if req.Category != "" {
		specs = append(specs, specification.ByCategory{Category: req.Category})
	}
	if req.Brand != "" {
		specs = append(specs, specification.ByBrand{Brand: req.Brand})
	}
	if req.MinPrice > 0 || req.MaxPrice > 0 {
		specs = append(specs, specification.PriceRange{Min: req.MinPrice, Max: req.MaxPrice})
	}
	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)

	products, err := uow.ProductRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, c.toResponse(p))
	}
	return res, nil
}

func (c *productService) Search(ctx context.Context, query recommend.CatalogQuery) ([]recommend.Candidate, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	limit := query.Limit
	if limit <= 0 {
		limit = constant.DefaultPageSize
	}

	specs := []specification.Specification{}
	if query.Keyword != "" {
		specs = append(specs, specification.KeywordLike{Keyword: query.Keyword})
	}
	if query.Category != "" {
		specs = append(specs, specification.ByCategory{Category: query.Category})
	}
	if query.Brand != "" {
		specs = append(specs, specification.ByBrand{Brand: query.Brand})
	}
	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)

	products, err := uow.ProductRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	candidates := make([]recommend.Candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, c.mapper.ToCandidate(p))
	}
	return candidates, nil
}

// requestIndexing queues a keyword recompute for the background indexer.
func (c *productService) requestIndexing(ctx context.Context, productId uuid.UUID) error {
	payload := dto.PublishIndexProductMessage{
		ProductId: productId,
	}
	msgJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, msgJson)
}

func (c *productService) publishProductUpdated(ctx context.Context, productId uuid.UUID, category string) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.NewProductUpdated(productId, category)
	// We log error but don't fail the request as notification is auxiliary
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		fmt.Printf("[WARN] Failed to publish PRODUCT_UPDATED event: %v\n", err)
	}
}

func (c *productService) toResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		Id:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Brand:       p.Brand,
		Category:    p.Category,
		Series:      p.Series,
		Images:      p.Images,
		Variations:  p.Variations,
		CreatedAt:   p.CreatedAt,
	}
}

func normalizePage(page *dto.PaginationRequest) (int, int) {
	pageNum, pageSize := 1, constant.DefaultPageSize
	if page != nil {
		if page.Page > 0 {
			pageNum = page.Page
		}
		if page.PageSize > 0 && page.PageSize <= constant.MaxPageSize {
			pageSize = page.PageSize
		}
	}
	return pageNum, pageSize
}
