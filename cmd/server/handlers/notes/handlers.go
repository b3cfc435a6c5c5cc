package notes

import (
	"context"
	"errors"

	"inkwell/cmd/server/handlers/handlerutil"
	"inkwell/cmd/server/handlers/httperr"
	"inkwell/internal/logger"
	"inkwell/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for notes service
type Service interface {
	Create(ctx context.Context, userID bson.ObjectID, req notes.CreateNoteRequest) (*notes.NoteResponse, error)
	List(ctx context.Context, userID bson.ObjectID, req notes.ListNotesRequest) (*notes.ListNotesResponse, error)
	Update(ctx context.Context, userID, noteID bson.ObjectID, req notes.UpdateNoteRequest) (*notes.NoteResponse, error)
	Delete(ctx context.Context, userID, noteID bson.ObjectID) error
	Reorder(ctx context.Context, userID bson.ObjectID, req notes.ReorderRequest) error
	GetPublic(ctx context.Context, publicID string) (*notes.Note, error)
}

// Handlers contains the notes HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new notes handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// Create handles note creation
// @Summary Create a new note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body notes.CreateNoteRequest true "Create note request"
// @Success 201 {object} notes.NoteResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.CreateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	resp, err := h.service.Create(c.Context(), userID, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Create", userID, nil, notes.ErrNoteNotFound)
	}

	return c.Status(201).JSON(resp)
}

// List handles notes listing
// @Summary List notes in the current view order
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param sort query string false "Sort field: updated_at|manual"
// @Param fresh query bool false "Discard local rearrangement and re-fetch canonically"
// @Success 200 {object} notes.ListNotesResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.ListNotesRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "List"); err != nil {
		return err
	}

	resp, err := h.service.List(c.Context(), userID, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "List", userID, nil, notes.ErrNoteNotFound)
	}

	return c.JSON(resp)
}

// Update handles note updates
// @Summary Update a note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body notes.UpdateNoteRequest true "Update note request"
// @Success 200 {object} notes.NoteResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Router /notes/{id} [patch]
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractNoteID(c, userID, "Update", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.UpdateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Update"); err != nil {
		return err
	}

	resp, err := h.service.Update(c.Context(), userID, noteID, req)
	if err != nil {
		if errors.Is(err, notes.ErrVersionConflict) {
			logger.L().Info("stale note update rejected", "handler", "Update", "userID", userID.Hex(), "noteID", noteID.Hex())
			return httperr.Fail(httperr.Conflict(notes.ErrVersionConflict.Error()))
		}
		return handlerutil.HandleServiceError(err, "Update", userID, &noteID, notes.ErrNoteNotFound)
	}

	return c.JSON(resp)
}

// Delete handles note deletion
// @Summary Delete a note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 204
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractNoteID(c, userID, "Delete", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Context(), userID, noteID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Delete", userID, &noteID, notes.ErrNoteNotFound)
	}

	return c.SendStatus(204)
}

// Reorder rearranges the user's notes
// @Summary Reorder notes, either by full id list or a single from/to move
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body notes.ReorderRequest true "Reorder request"
// @Success 204
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes/reorder [put]
func (h *Handlers) Reorder(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.ReorderRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Reorder"); err != nil {
		return err
	}

	if err := h.service.Reorder(c.Context(), userID, req); err != nil {
		if errors.Is(err, notes.ErrBadReorder) || errors.Is(err, notes.ErrBadIndex) {
			logger.L().Info("reorder rejected", "handler", "Reorder", "userID", userID.Hex(), "error", err)
			return httperr.InvalidInput(err)
		}
		return handlerutil.HandleServiceError(err, "Reorder", userID, nil, notes.ErrNoteNotFound)
	}

	return c.SendStatus(204)
}

// GetPublic serves a shared note to anonymous readers
// @Summary Fetch a publicly shared note by its public id
// @Tags notes
// @Accept json
// @Produce json
// @Param public_id path string true "Public note ID"
// @Success 200 {object} notes.NoteResponse
// @Failure 404 {object} httperr.E
// @Router /public/notes/{public_id} [get]
func (h *Handlers) GetPublic(c *fiber.Ctx) error {
	publicID := c.Params("public_id")
	if publicID == "" {
		return httperr.Fail(httperr.ErrNotFound)
	}

	note, err := h.service.GetPublic(c.Context(), publicID)
	if err != nil {
		logger.L().Error("public note lookup failed", "handler", "GetPublic", "publicID", publicID, "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}
	if note == nil {
		// Absent and private notes are indistinguishable on purpose.
		return httperr.Fail(httperr.ErrNotFound)
	}

	return c.JSON(notes.NoteResponse{Note: note})
}
