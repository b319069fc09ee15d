package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/contactkeeper/contacts_backend/internal/apperrors"
	portssvc "github.com/contactkeeper/contacts_backend/internal/core/ports/services"
	"github.com/contactkeeper/contacts_backend/internal/dto"
	"github.com/contactkeeper/contacts_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ContactHandler handles contact CRUD for the authenticated user.
type ContactHandler struct {
	contactService portssvc.ContactSvcFacade
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactService portssvc.ContactSvcFacade) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// registerContactRoutes sets up the routes for contacts.
func registerContactRoutes(rg *gin.RouterGroup, contactService portssvc.ContactSvcFacade) {
	h := NewContactHandler(contactService)

	contacts := rg.Group("/contacts")
	{
		contacts.GET("", h.ListContacts)
		contacts.POST("", h.CreateContact)
		contacts.GET("/birthdays", h.UpcomingBirthdays)
		contacts.GET("/:contactID", h.GetContact)
		contacts.PUT("/:contactID", h.UpdateContact)
		contacts.DELETE("/:contactID", h.DeleteContact)
	}
}

// ListContacts godoc
// @Summary List contacts
// @Tags contacts
// @Produce json
// @Param limit query int false "Maximum number of contacts to return" default(10)
// @Param offset query int false "Number of contacts to skip" default(0)
// @Success 200 {array} dto.ContactResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /contacts [get]
func (h *ContactHandler) ListContacts(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Could not validate credentials"})
		return
	}

	var params dto.ListContactsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	contacts, err := h.contactService.ListContacts(c.Request.Context(), user.UserID, params.Limit, params.Offset)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list contacts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list contacts"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListContactResponse(contacts))
}

// CreateContact godoc
// @Summary Create contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param contact body dto.CreateContactRequest true "Contact data"
// @Success 201 {object} dto.ContactResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /contacts [post]
func (h *ContactHandler) CreateContact(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Could not validate credentials"})
		return
	}

	var req dto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	contact, err := h.contactService.CreateContact(c.Request.Context(), user.UserID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid birthday, expected YYYY-MM-DD"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to create contact", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create contact"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToContactResponse(contact))
}

// GetContact godoc
// @Summary Get contact
// @Tags contacts
// @Produce json
// @Param contactID path string true "The ID of the contact"
// @Success 200 {object} dto.ContactResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /contacts/{contactID} [get]
func (h *ContactHandler) GetContact(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Could not validate credentials"})
		return
	}

	contact, err := h.contactService.GetContact(c.Request.Context(), user.UserID, c.Param("contactID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Contact not found"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to get contact", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get contact"})
		return
	}

	c.JSON(http.StatusOK, dto.ToContactResponse(contact))
}

// UpdateContact godoc
// @Summary Update contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param contactID path string true "The ID of the contact"
// @Param contact body dto.UpdateContactRequest true "Contact data"
// @Success 200 {object} dto.ContactResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /contacts/{contactID} [put]
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Could not validate credentials"})
		return
	}

	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	contact, err := h.contactService.UpdateContact(c.Request.Context(), user.UserID, c.Param("contactID"), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid birthday, expected YYYY-MM-DD"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Contact not found"})
		default:
			logger := middleware.GetLoggerFromCtx(c.Request.Context())
			logger.Error("Failed to update contact", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update contact"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToContactResponse(contact))
}

// DeleteContact godoc
// @Summary Delete contact
// @Tags contacts
// @Param contactID path string true "The ID of the contact"
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /contacts/{contactID} [delete]
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Could not validate credentials"})
		return
	}

	err := h.contactService.DeleteContact(c.Request.Context(), user.UserID, c.Param("contactID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Contact not found"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to delete contact", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete contact"})
		return
	}

	c.Status(http.StatusNoContent)
}

// UpcomingBirthdays godoc
// @Summary Contacts with birthdays in the next 7 days
// @Tags contacts
// @Produce json
// @Success 200 {array} dto.ContactResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /contacts/birthdays [get]
func (h *ContactHandler) UpcomingBirthdays(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Could not validate credentials"})
		return
	}

	contacts, err := h.contactService.UpcomingBirthdays(c.Request.Context(), user.UserID)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list upcoming birthdays", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list upcoming birthdays"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListContactResponse(contacts))
}
