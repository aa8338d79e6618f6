package controller

import (
	"ai-marketplace-be/internal/dto"
	"ai-marketplace-be/internal/pkg/serverutils"
	"ai-marketplace-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IProductController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type productController struct {
	productService service.IProductService
}

func NewProductController(productService service.IProductService) IProductController {
	return &productController{
		productService: productService,
	}
}

func (c *productController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/products")
	// Search and list are public storefront reads.
	h.Get("search", c.Search)
	h.Get("", c.List)
	h.Get(":id", c.Show)

	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *productController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.productService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create product", res))
}

func (c *productController) List(ctx *fiber.Ctx) error {
	var page dto.PaginationRequest
	if err := ctx.QueryParser(&page); err != nil {
		return err
	}

	res, err := c.productService.List(ctx.Context(), &page)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get products", res))
}

func (c *productController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchProductsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	res, err := c.productService.SearchProducts(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search products", res))
}

func (c *productController) Show(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.productService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show product", res))
}

func (c *productController) Update(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.UpdateProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.productService.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update product", res))
}

func (c *productController) Delete(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	err := c.productService.Delete(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete product", nil))
}
