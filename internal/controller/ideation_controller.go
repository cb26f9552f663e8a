package controller

import (
	"ai-ideation-be/internal/dto"
	"ai-ideation-be/internal/pkg/serverutils"
	"ai-ideation-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IIdeationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
	UpdateIdea(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type ideationController struct {
	ideationService service.IIdeationService
}

func NewIdeationController(ideationService service.IIdeationService) IIdeationController {
	return &ideationController{
		ideationService: ideationService,
	}
}

func (c *ideationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ideation/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Get(":id/status", c.Status)
	h.Post(":id/retry", c.Retry)
	h.Patch("idea/:ideaId", c.UpdateIdea)
	h.Delete(":id", c.Delete)
}

func currentUserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func pathId(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, serverutils.NewRequestError(400, "Invalid "+name)
	}
	return id, nil
}

func (c *ideationController) Create(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ideationService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success create ideation session", res))
}

func (c *ideationController) List(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.ideationService.List(ctx.Context(), userId, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list ideation sessions", res))
}

func (c *ideationController) Show(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := pathId(ctx, "id")
	if err != nil {
		return err
	}

	finalOnly := ctx.QueryBool("final_only", false)

	res, err := c.ideationService.GetDetail(ctx.Context(), userId, id, finalOnly)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show ideation session", res))
}

func (c *ideationController) Status(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := pathId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.ideationService.GetStatus(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get ideation status", res))
}

func (c *ideationController) Retry(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := pathId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.ideationService.Retry(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success retry ideation session", res))
}

func (c *ideationController) UpdateIdea(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	ideaId, err := pathId(ctx, "ideaId")
	if err != nil {
		return err
	}

	var req dto.UpdateIdeaRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ideationService.UpdateIdea(ctx.Context(), userId, ideaId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update idea", res))
}

func (c *ideationController) Delete(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := pathId(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.ideationService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete ideation session", nil))
}
