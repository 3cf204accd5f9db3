package sync

import (
	"errors"
	"strconv"

	"supplier-portal/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Service SyncService
}

func NewSyncController(service SyncService) *SyncController {
	return &SyncController{
		Service: service,
	}
}

func logFilter(c *fiber.Ctx) LogFilter {
	return LogFilter{
		Type:   Type(c.Query("type")),
		Status: Status(c.Query("status")),
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
}

// RunSync godoc
// @Summary Trigger a sync run
// @Description Runs in the background unless wait=true.
// @Tags sync
// @Produce json
// @Param type path string true "vendors, dealers, buyers, purchase_orders, items or all"
// @Param wait query bool false "Block until the run finishes"
// @Success 200 {object} Result
// @Success 202 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/sync/{type}/run [post]
func (ctrl *SyncController) RunSync(c *fiber.Ctx) error {
	syncType := Type(c.Params("type"))
	if syncType != TypeAll && !syncType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown sync type",
		})
	}

	if !c.QueryBool("wait") {
		err := ctrl.Service.Start(syncType, "manual")
		if errors.Is(err, ErrAlreadyRunning) {
			return api.Error(c, fiber.StatusConflict, err)
		}
		if err != nil {
			return api.Error(c, fiber.StatusInternalServerError, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": "Sync job triggered successfully",
		})
	}

	if syncType == TypeAll {
		results, err := ctrl.Service.RunAll(c.UserContext(), "manual")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
				"data":  results,
			})
		}
		return c.JSON(fiber.Map{"data": results})
	}

	result, err := ctrl.Service.Run(c.UserContext(), syncType, "manual")
	if errors.Is(err, ErrAlreadyRunning) {
		return api.Error(c, fiber.StatusConflict, err)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"data":  result,
		})
	}
	return c.JSON(fiber.Map{"data": result})
}

// ListSyncLogs godoc
// @Summary List sync runs
// @Tags sync
// @Produce json
// @Param type query string false "Sync type"
// @Param status query string false "running, success or failed"
// @Success 200 {object} map[string]interface{}
// @Router /api/sync/logs [get]
func (ctrl *SyncController) ListSyncLogs(c *fiber.Ctx) error {
	logs, total, err := ctrl.Service.ListLogs(c.UserContext(), logFilter(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data":  logs,
		"total": total,
	})
}

// GetSyncLog godoc
// @Summary Get one sync run
// @Tags sync
// @Produce json
// @Param id path int true "Log ID"
// @Success 200 {object} SyncLog
// @Failure 404 {object} map[string]interface{}
// @Router /api/sync/logs/{id} [get]
func (ctrl *SyncController) GetSyncLog(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	log, err := ctrl.Service.GetLog(c.UserContext(), uint(id))
	if errors.Is(err, ErrLogNotFound) {
		return api.Error(c, fiber.StatusNotFound, err)
	}
	if err != nil {
		return api.Error(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(log)
}

// ExportSyncLogs godoc
// @Summary Export sync runs as XLSX
// @Tags sync
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /api/sync/logs/export [get]
func (ctrl *SyncController) ExportSyncLogs(c *fiber.Ctx) error {
	data, filename, err := ctrl.Service.ExportLogs(c.UserContext(), logFilter(c))
	if err != nil {
		return api.Error(c, fiber.StatusInternalServerError, err)
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}
