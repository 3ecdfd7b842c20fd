package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/i474232898/solar-farm-simulator/internal/exporter"
	"github.com/i474232898/solar-farm-simulator/internal/solar"
	"github.com/i474232898/solar-farm-simulator/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *solar.Service, metrics *exporter.Metrics) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	v1 := app.Group("/api/v1")

	v1.Get("/sites", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sites": service.Sites(),
		})
	})

	v1.Get("/sites/:id", func(c *fiber.Ctx) error {
		status, err := service.Site(c.Params("id"))
		if err != nil {
			return siteError(err, "failed to fetch site")
		}
		return c.JSON(status)
	})

	v1.Get("/sites/:id/snapshot", func(c *fiber.Ctx) error {
		snapshot, err := service.GetLatest(c.Params("id"))
		if err != nil {
			return siteError(err, "failed to fetch snapshot")
		}
		return c.JSON(snapshot)
	})

	v1.Get("/sites/:id/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshots, err := service.GetRange(req.SiteID, req.From, req.To)
		if err != nil {
			return siteError(err, "failed to fetch snapshot history")
		}

		return c.JSON(fiber.Map{
			"site":      req.SiteID,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})
}

func siteError(err error, fallback string) error {
	switch {
	case errors.Is(err, solar.ErrUnknownSite):
		return fiber.NewError(fiber.StatusNotFound, "unknown site")
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no snapshot for requested site")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

// historyQuery holds parameters for the history endpoint.
type historyQuery struct {
	SiteID string    `validate:"required"`
	From   time.Time `validate:"required"`
	To     time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.SiteID = c.Params("id")

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
