package controller

import (
	"ai-ops-copilot-be/internal/dto"
	"ai-ops-copilot-be/internal/pkg/serverutils"
	"ai-ops-copilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITicketController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	PendingReview(ctx *fiber.Ctx) error
	Decide(ctx *fiber.Ctx) error
}

type ticketController struct {
	ticketService service.ITicketService
	reviewService service.IReviewService
}

func NewTicketController(ticketService service.ITicketService, reviewService service.IReviewService) ITicketController {
	return &ticketController{
		ticketService: ticketService,
		reviewService: reviewService,
	}
}

func (c *ticketController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ticket/v1")
	h.Post("", c.Submit)
	h.Get("", c.List)
	h.Get(":id", c.Status)
	h.Get(":id/review", c.PendingReview)
	h.Post(":id/decision", c.Decide)
}

func (c *ticketController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ticketService.Submit(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Ticket accepted", res))
}

func (c *ticketController) List(ctx *fiber.Ctx) error {
	var query dto.ListTicketsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.ticketService.List(ctx.Context(), &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list tickets", res))
}

func (c *ticketController) Status(ctx *fiber.Ctx) error {
	res, err := c.ticketService.Status(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show ticket", res))
}

func (c *ticketController) PendingReview(ctx *fiber.Ctx) error {
	res, err := c.reviewService.PendingReview(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show pending review", res))
}

func (c *ticketController) Decide(ctx *fiber.Ctx) error {
	var req dto.HumanDecisionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reviewService.Decide(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Decision applied", res))
}
