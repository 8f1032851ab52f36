package handler

import (
	"time"

	"pos-inventory/internal/service"
	"pos-inventory/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

type ReportHandler struct {
	service service.ReportService
	loc     *time.Location
}

func NewReportHandler(s service.ReportService, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{service: s, loc: loc}
}

// dateRange reads ?from=YYYY-MM-DD&to=YYYY-MM-DD as whole local days,
// defaulting to the last 30 days. The end date is inclusive.
func (h *ReportHandler) dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now().In(h.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
	from, to := today.AddDate(0, 0, -29), today

	if v := c.Query("from"); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.Validation("invalid 'from' date, use YYYY-MM-DD")
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.Validation("invalid 'to' date, use YYYY-MM-DD")
		}
		to = parsed
	}
	return from, to.AddDate(0, 0, 1), nil
}

// GET /api/v1/reports/sales?from=&to=
func (h *ReportHandler) SalesReport(c *fiber.Ctx) error {
	from, to, err := h.dateRange(c)
	if err != nil {
		return respondError(c, err)
	}

	report, err := h.service.SalesReport(c.UserContext(), actorFrom(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// GET /api/v1/reports/profit?from=&to=
func (h *ReportHandler) ProfitReport(c *fiber.Ctx) error {
	from, to, err := h.dateRange(c)
	if err != nil {
		return respondError(c, err)
	}

	report, err := h.service.ProfitReport(c.UserContext(), actorFrom(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
