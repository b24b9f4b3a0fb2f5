package fiber

import (
	"context"
	"errors"
	"net/http"

	"telemetry-analytics-service/internal/metrics/adapters/render"
	"telemetry-analytics-service/internal/metrics/core/domain"
	"telemetry-analytics-service/internal/metrics/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type GetReportUseCase interface {
	Execute(ctx context.Context, in usecase.GetReportInput) (*domain.Report, error)
}

type ReportHandler struct {
	uc   GetReportUseCase
	text *render.Text
	html *render.HTML
}

func NewReportHandler(uc GetReportUseCase) *ReportHandler {
	return &ReportHandler{
		uc:   uc,
		text: render.NewText(false),
		html: render.NewHTML(),
	}
}

// GetReport godoc
// @Summary Telemetry analytics report
// @Description Computes every metric section over the optional date window
// @Tags Report
// @Produce json
// @Param since query string false "First day included (YYYY-MM-DD)"
// @Param until query string false "Last day included (YYYY-MM-DD)"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /report [get]
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	report, err := h.execute(c)
	if err != nil {
		return writeReportError(c, err)
	}
	return c.Status(http.StatusOK).JSON(report)
}

// GetReportText godoc
// @Summary Telemetry analytics report as terminal text
// @Tags Report
// @Produce plain
// @Param since query string false "First day included (YYYY-MM-DD)"
// @Param until query string false "Last day included (YYYY-MM-DD)"
// @Success 200 {string} string
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /report/text [get]
func (h *ReportHandler) GetReportText(c *fiber.Ctx) error {
	report, err := h.execute(c)
	if err != nil {
		return writeReportError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(http.StatusOK).SendString(h.text.Render(report) + "\n")
}

// GetReportHTML godoc
// @Summary Telemetry analytics report as a self-contained HTML page
// @Tags Report
// @Produce html
// @Param since query string false "First day included (YYYY-MM-DD)"
// @Param until query string false "Last day included (YYYY-MM-DD)"
// @Success 200 {string} string
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /report/html [get]
func (h *ReportHandler) GetReportHTML(c *fiber.Ctx) error {
	report, err := h.execute(c)
	if err != nil {
		return writeReportError(c, err)
	}
	page, err := h.html.Render(report)
	if err != nil {
		return writeReportError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(http.StatusOK).Send(page)
}

func (h *ReportHandler) execute(c *fiber.Ctx) (*domain.Report, error) {
	in := usecase.GetReportInput{
		Since: c.Query("since", ""),
		Until: c.Query("until", ""),
	}
	return h.uc.Execute(c.UserContext(), in)
}

func writeReportError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidWindow):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_window",
			Message: err.Error(),
		})
	case errors.Is(err, usecase.ErrNoData):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Error:   "no_data",
			Message: "No data.",
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}
