package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gofiber/fiber/v2"

	"github.com/fixmycity/backend/internal/domain"
	"github.com/fixmycity/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	complaintSvc *service.ComplaintService
	prioritySvc  *service.PriorityService
	analyticsSvc *service.AnalyticsService
	dashboardSvc *service.DashboardService
	geocoder     *service.Geocoder
	repo         service.ComplaintRepository
}

// NewHandler creates a new handler
func NewHandler(
	complaintSvc *service.ComplaintService,
	prioritySvc *service.PriorityService,
	analyticsSvc *service.AnalyticsService,
	dashboardSvc *service.DashboardService,
	geocoder *service.Geocoder,
	repo service.ComplaintRepository,
) *Handler {
	return &Handler{
		complaintSvc: complaintSvc,
		prioritySvc:  prioritySvc,
		analyticsSvc: analyticsSvc,
		dashboardSvc: dashboardSvc,
		geocoder:     geocoder,
		repo:         repo,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status, database := "ok", "up"
	if err := h.repo.Health(c.Context()); err != nil {
		log.WithError(err).Warn("health check: database unavailable")
		status, database = "degraded", "down"
	}

	return c.JSON(fiber.Map{
		"status":   status,
		"database": database,
		"service":  "fixmycity-backend",
		"version":  "1.0.0",
	})
}

// ListComplaints returns complaints filtered by query parameters
func (h *Handler) ListComplaints(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return err
	}

	complaints, err := h.complaintSvc.List(c.Context(), f)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    complaints,
		"count":   len(complaints),
	})
}

// CreateComplaint files a new complaint
func (h *Handler) CreateComplaint(c *fiber.Ctx) error {
	var req domain.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(err)
	}

	complaint, err := h.complaintSvc.Create(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    complaint,
	})
}

// GetComplaint returns a single complaint
func (h *Handler) GetComplaint(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}

	complaint, err := h.complaintSvc.Get(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    complaint,
	})
}

// ResolveComplaint marks a complaint resolved
func (h *Handler) ResolveComplaint(c *fiber.Ctx) error {
	return h.setStatus(c, domain.StatusResolved)
}

// UnresolveComplaint reopens a complaint
func (h *Handler) UnresolveComplaint(c *fiber.Ctx) error {
	return h.setStatus(c, domain.StatusUnresolved)
}

func (h *Handler) setStatus(c *fiber.Ctx, status domain.Status) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}

	var req domain.StatusChangeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return bodyError(err)
		}
	}

	complaint, err := h.complaintSvc.SetStatus(c.Context(), id, status, req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    complaint,
	})
}

// GetComplaintActions returns the resolve/unresolve history of a complaint
func (h *Handler) GetComplaintActions(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}

	actions, err := h.complaintSvc.Actions(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    actions,
		"count":   len(actions),
	})
}

// GetPriorityZones returns the top ranked priority zones
func (h *Handler) GetPriorityZones(c *fiber.Ctx) error {
	q, err := parseZoneQuery(c)
	if err != nil {
		return err
	}

	zones, err := h.prioritySvc.RankZones(c.Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    zones,
		"count":   len(zones),
	})
}

// GetPriorityZonesGeoJSON returns the ranked zones as a FeatureCollection
func (h *Handler) GetPriorityZonesGeoJSON(c *fiber.Ctx) error {
	q, err := parseZoneQuery(c)
	if err != nil {
		return err
	}

	fc, err := h.prioritySvc.ZonesGeoJSON(c.Context(), q)
	if err != nil {
		return err
	}

	body, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("http: failed to encode geojson: %w", err)
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(body)
}

// GetHotspots returns the cluster label of every complaint
func (h *Handler) GetHotspots(c *fiber.Ctx) error {
	q, err := parseZoneQuery(c)
	if err != nil {
		return err
	}

	hotspots, err := h.prioritySvc.Hotspots(c.Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    hotspots,
	})
}

// GetScores returns per-complaint priority scores
func (h *Handler) GetScores(c *fiber.Ctx) error {
	q, err := parseZoneQuery(c)
	if err != nil {
		return err
	}

	scores, err := h.prioritySvc.Scores(c.Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    scores,
		"count":   len(scores),
	})
}

// GetAnalytics returns complaint statistics
func (h *Handler) GetAnalytics(c *fiber.Ctx) error {
	analytics, err := h.analyticsSvc.GetAnalytics(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    analytics,
	})
}

// GetDashboard returns analytics together with the top zones
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardSvc.GetDashboardData(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch dashboard data")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// Geocode resolves an area name to coordinates
func (h *Handler) Geocode(c *fiber.Ctx) error {
	var req domain.GeocodeRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(err)
	}

	result, err := h.geocoder.Geocode(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// ErrorHandler renders errors as {"error": true, "message": ...} with a
// status derived from the domain error kind
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code, message = fe.Code, fe.Message
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrMalformedRecord):
		code, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidConfiguration):
		code, message = fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		code, message = fiber.StatusNotFound, err.Error()
	default:
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

// bodyError keeps domain validation messages from JSON decoding
func bodyError(err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
}

func complaintID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid complaint id")
	}
	return id, nil
}

func parseFilter(c *fiber.Ctx) (domain.ComplaintFilter, error) {
	f := domain.ComplaintFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Status:   domain.Status(strings.ToLower(c.Query("status"))),
	}

	if s := c.Query("severity"); s != "" {
		sev, err := domain.ParseSeverity(s)
		if err != nil {
			return domain.ComplaintFilter{}, err
		}
		f.Severity = sev
	}

	var err error
	if f.From, err = parseDate(c.Query("date_from"), false); err != nil {
		return domain.ComplaintFilter{}, err
	}
	if f.To, err = parseDate(c.Query("date_to"), true); err != nil {
		return domain.ComplaintFilter{}, err
	}
	return f, nil
}

// parseDate accepts RFC 3339 or a bare date; a bare end date covers the whole day
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("http: bad date %q, want YYYY-MM-DD or RFC3339: %w", s, domain.ErrInvalidInput)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func parseZoneQuery(c *fiber.Ctx) (service.ZoneQuery, error) {
	var q service.ZoneQuery

	if s := c.Query("top"); s != "" {
		top, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("http: top must be an integer: %w", domain.ErrInvalidInput)
		}
		q.Top = &top
	}
	if s := c.Query("min_points"); s != "" {
		minPoints, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("http: min_points must be an integer: %w", domain.ErrInvalidInput)
		}
		q.MinPoints = &minPoints
	}
	if s := c.Query("epsilon"); s != "" {
		eps, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, fmt.Errorf("http: epsilon must be a number: %w", domain.ErrInvalidInput)
		}
		q.Epsilon = &eps
	}
	if s := c.Query("include_resolved"); s != "" {
		include, err := strconv.ParseBool(s)
		if err != nil {
			return q, fmt.Errorf("http: include_resolved must be a boolean: %w", domain.ErrInvalidInput)
		}
		q.IncludeResolved = include
	}

	return q, nil
}
