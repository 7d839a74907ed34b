// Package web provides HTTP handlers and REST API endpoints for approval task management.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence"
	"github.com/bigbit/approvalflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// Session headers. An upstream gateway authenticates the user and forwards
// their identity; the API trusts these headers.
const (
	HeaderUserID         = "X-User-Id"
	HeaderUserName       = "X-User-Name"
	HeaderUserDepartment = "X-User-Department"
)

type APIHandlers struct {
	taskService   *services.Task
	matrixService *services.Matrix
	validator     *validator.Validate
}

func NewAPIHandlers(
	taskService *services.Task,
	matrixService *services.Matrix,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		taskService:   taskService,
		matrixService: matrixService,
		validator:     validator,
	}
}

// sessionFrom builds the acting session from the gateway identity headers.
func sessionFrom(c fiber.Ctx) (models.Session, bool) {
	userID := c.Get(HeaderUserID)
	if userID == "" {
		return models.Session{}, false
	}

	return models.Session{User: models.UserRef{
		ID:         userID,
		Name:       c.Get(HeaderUserName),
		Department: c.Get(HeaderUserDepartment),
	}}, true
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.taskService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Approvalflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Approvalflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetTasks(c fiber.Ctx) error {
	session, ok := sessionFrom(c)
	if !ok {
		return unauthorized(c, "Missing user identity")
	}

	req, err := h.parseListTasksRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.taskService.ListTasks(c.Context(), session, *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"tasks": result.Tasks,
		"total": result.Total,
		"pagination": fiber.Map{
			"page":      result.Page,
			"page_size": result.PageSize,
		},
	})
}

func (h *APIHandlers) parseListTasksRequest(c fiber.Ctx) (*services.ListTasksRequest, error) {
	req := &services.ListTasksRequest{
		Queue:    persistence.TaskQueue(c.Query("queue", string(persistence.QueueTodo))),
		Keyword:  c.Query("keyword"),
		Priority: models.Priority(c.Query("priority")),
	}

	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return nil, err
		}

		req.Page = page
	}

	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		pageSize, err := strconv.Atoi(pageSizeStr)
		if err != nil {
			return nil, err
		}

		req.PageSize = pageSize
	}

	return req, nil
}

func (h *APIHandlers) GetTaskStats(c fiber.Ctx) error {
	session, ok := sessionFrom(c)
	if !ok {
		return unauthorized(c, "Missing user identity")
	}

	stats, err := h.taskService.Stats(c.Context(), session)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stats)
}

func (h *APIHandlers) GetTask(c fiber.Ctx) error {
	session, ok := sessionFrom(c)
	if !ok {
		return unauthorized(c, "Missing user identity")
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Task ID is required")
	}

	view, err := h.taskService.LoadBundle(c.Context(), session, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) SubmitAction(c fiber.Ctx) error {
	session, ok := sessionFrom(c)
	if !ok {
		return unauthorized(c, "Missing user identity")
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Task ID is required")
	}

	var req SubmitActionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.taskService.Submit(c.Context(), session, id, req.Params())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetDefinitions(c fiber.Ctx) error {
	defs, err := h.matrixService.ListDefinitions(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"definitions": defs})
}

func (h *APIHandlers) GetMatrix(c fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return badRequest(c, "Definition key is required")
	}

	def, err := h.matrixService.LoadMatrix(c.Context(), key)
	if err != nil {
		if persistence.IsDefinitionNotFound(err) {
			return notFound(c, "Definition not found")
		}

		return handleServiceError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) SaveMatrix(c fiber.Ctx) error {
	session, ok := sessionFrom(c)
	if !ok {
		return unauthorized(c, "Missing user identity")
	}

	key := c.Params("key")
	if key == "" {
		return badRequest(c, "Definition key is required")
	}

	var req SaveMatrixRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	def := req.Definition(key)
	if err := h.matrixService.SaveMatrix(c.Context(), session, def); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(def)
}

// RegisterRoutes mounts the API under the given router.
func (h *APIHandlers) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.HealthCheck)

	app.Get("/tasks", h.GetTasks)
	app.Get("/tasks/stats", h.GetTaskStats)
	app.Get("/tasks/:id", h.GetTask)
	app.Post("/tasks/:id/actions", h.SubmitAction)

	app.Get("/definitions", h.GetDefinitions)
	app.Get("/definitions/:key/matrix", h.GetMatrix)
	app.Put("/definitions/:key/matrix", h.SaveMatrix)
}
