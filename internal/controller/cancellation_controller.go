package controller

import (
	"unsubly-be/internal/dto"
	"unsubly-be/internal/pkg/serverutils"
	"unsubly-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICancellationController interface {
	RegisterRoutes(r fiber.Router)
	Initiate(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
	ConfirmManual(ctx *fiber.Ctx) error
	Abort(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ShowOrchestration(ctx *fiber.Ctx) error
	Analytics(ctx *fiber.Ctx) error
	ProviderCapabilities(ctx *fiber.Ctx) error
}

type cancellationController struct {
	cancellationService service.ICancellationService
}

func NewCancellationController(cancellationService service.ICancellationService) ICancellationController {
	return &cancellationController{
		cancellationService: cancellationService,
	}
}

func (c *cancellationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cancellations")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Initiate)
	h.Get("analytics", c.Analytics)
	h.Get("providers/:name/capabilities", c.ProviderCapabilities)
	h.Get("orchestrations/:orchestrationId", c.ShowOrchestration)
	h.Get(":id", c.Show)
	h.Post(":id/retry", c.Retry)
	h.Post(":id/confirm", c.ConfirmManual)
	h.Delete(":id", c.Abort)
}

func (c *cancellationController) Initiate(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.InitiateCancellationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The result is a value, never an error: failures travel inside it.
	res := c.cancellationService.InitiateCancellation(ctx.Context(), userId, &req)

	status := fiber.StatusAccepted
	if !res.Success {
		status = fiber.StatusUnprocessableEntity
	}
	return ctx.Status(status).JSON(res)
}

func (c *cancellationController) Retry(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.RetryCancellationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.cancellationService.RetryCancellation(ctx.Context(), userId, id, &req)

	status := fiber.StatusAccepted
	if !res.Success {
		status = fiber.StatusUnprocessableEntity
	}
	return ctx.Status(status).JSON(res)
}

func (c *cancellationController) ConfirmManual(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.ConfirmManualRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.cancellationService.ConfirmManual(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success confirm manual cancellation", res))
}

func (c *cancellationController) Abort(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.cancellationService.CancelCancellationRequest(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success abort cancellation request", res))
}

func (c *cancellationController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.cancellationService.GetCancellationStatus(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show cancellation request", res))
}

func (c *cancellationController) ShowOrchestration(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	orchestrationId := ctx.Params("orchestrationId")

	res, err := c.cancellationService.GetOrchestrationStatus(ctx.Context(), userId, orchestrationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show orchestration status", res))
}

func (c *cancellationController) Analytics(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	timeframe := ctx.Query("timeframe", "month")

	res := c.cancellationService.GetUnifiedAnalytics(ctx.Context(), userId, timeframe)
	return ctx.JSON(serverutils.SuccessResponse("Success get cancellation analytics", res))
}

func (c *cancellationController) ProviderCapabilities(ctx *fiber.Ctx) error {
	name := ctx.Params("name")

	res, err := c.cancellationService.GetProviderCapabilities(ctx.Context(), name)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get provider capabilities", res))
}
