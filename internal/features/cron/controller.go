package cron_feature

import (
	"github.com/gofiber/fiber/v2"
)

type CronController struct {
	Service CronService
}

func NewCronController(service CronService) *CronController {
	return &CronController{
		Service: service,
	}
}

// ListEntries godoc
// @Summary List scheduled syncs
// @Description Sync types with a configured schedule and their next run
// @Tags cron
// @Produce json
// @Success 200 {array} Entry
// @Router /api/cron [get]
func (c *CronController) ListEntries(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"data": c.Service.ListEntries()})
}
