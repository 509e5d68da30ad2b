package http

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"baymap/internal/api"
	"baymap/internal/bay"
	"baymap/internal/geom"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": deps.Version,
		})
	}
}

// ReadyHandler runs every readiness check.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string, len(deps.Checks))
		allOK := true
		for name, check := range deps.Checks {
			if err := check(ctx); err != nil {
				checks[name] = "error: " + err.Error()
				allOK = false
			} else {
				checks[name] = "ok"
			}
		}

		status, code := "ready", 200
		if !allOK {
			status, code = "not ready", 503
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}

// ListZonesHandler returns every zone.
func ListZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zones, err := deps.Store.ListZones(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		if zones == nil {
			zones = []bay.Zone{}
		}
		return c.JSON(zones)
	}
}

// ListBaysHandler returns the bays of ?zone=, or all bays without it.
func ListBaysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var zoneID *string
		if z := strings.TrimSpace(c.Query("zone")); z != "" {
			zoneID = &z
		}
		bays, err := deps.Store.ListBaysForZone(c.UserContext(), zoneID)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(api.FromBays(bays))
	}
}

// CreateBayHandler stores a new bay and returns its id.
func CreateBayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req api.CreateBayRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body: "+err.Error())
		}
		if strings.TrimSpace(req.SiteID) == "" {
			return errBadRequest(c, "site_id is required")
		}
		code, ring, msg := validateBay(req.Code, req.Geometry)
		if msg != "" {
			return errBadRequest(c, msg)
		}
		id, err := deps.Store.CreateBay(c.UserContext(), req.SiteID, code, req.ZoneID, ring)
		if err != nil {
			return errInternal(c, err.Error())
		}
		slog.InfoContext(c.UserContext(), "bay_created", "id", id, "code", code)
		return c.Status(fiber.StatusCreated).JSON(api.Created{ID: id})
	}
}

// UpdateBayHandler replaces the code, zone and geometry of a bay.
func UpdateBayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var req api.UpdateBayRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body: "+err.Error())
		}
		code, ring, msg := validateBay(req.Code, req.Geometry)
		if msg != "" {
			return errBadRequest(c, msg)
		}
		err := deps.Store.UpdateBay(c.UserContext(), id, code, req.ZoneID, ring)
		if errors.Is(err, bay.ErrNotFound) {
			return errNotFound(c, "bay "+id+" not found")
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		slog.InfoContext(c.UserContext(), "bay_updated", "id", id, "code", code)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteBayHandler removes a bay.
func DeleteBayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		err := deps.Store.DeleteBay(c.UserContext(), id)
		if errors.Is(err, bay.ErrNotFound) {
			return errNotFound(c, "bay "+id+" not found")
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		slog.InfoContext(c.UserContext(), "bay_deleted", "id", id)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func validateBay(code string, g geom.Geometry) (string, geom.Ring, string) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", nil, "code is required"
	}
	ring, err := g.Outer()
	if err != nil {
		return "", nil, err.Error()
	}
	return code, ring, ""
}
