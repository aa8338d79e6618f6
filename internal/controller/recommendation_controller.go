package controller

import (
	"ai-marketplace-be/internal/dto"
	"ai-marketplace-be/internal/pkg/serverutils"
	"ai-marketplace-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRecommendationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetUserThreads(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type recommendationController struct {
	recommendationService service.IRecommendationService
}

func NewRecommendationController(recommendationService service.IRecommendationService) IRecommendationController {
	return &recommendationController{
		recommendationService: recommendationService,
	}
}

func (c *recommendationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/recommendations")
	h.Use(serverutils.JwtMiddleware)
	// Static routes before :id so "user" and "search" don't parse as ids.
	h.Post("create", c.Create)
	h.Get("user", c.GetUserThreads)
	h.Get("search", c.Search)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Post(":id/clear", c.Clear)
}

func (c *recommendationController) Create(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateRecommendationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.recommendationService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create recommendation", res))
}

func (c *recommendationController) GetUserThreads(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var page dto.PaginationRequest
	if err := ctx.QueryParser(&page); err != nil {
		return err
	}

	res, err := c.recommendationService.GetUserThreads(ctx.Context(), userId, &page)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get recommendations", res))
}

func (c *recommendationController) Search(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	keyword := ctx.Query("keyword", "")

	res, err := c.recommendationService.SearchThreads(ctx.Context(), userId, keyword)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search recommendations", res))
}

func (c *recommendationController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.recommendationService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show recommendation", res))
}

func (c *recommendationController) Update(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.UpdateThreadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.recommendationService.Update(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update recommendation", res))
}

func (c *recommendationController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	err := c.recommendationService.Delete(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete recommendation", nil))
}

func (c *recommendationController) Clear(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	err := c.recommendationService.Clear(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear recommendation history", nil))
}
