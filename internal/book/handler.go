package book

import (
	"errors"
	"net/http"

	"github.com/binhbb2204/BookHub/internal/auth"
	"github.com/binhbb2204/BookHub/internal/events"
	"github.com/binhbb2204/BookHub/internal/library"
	"github.com/binhbb2204/BookHub/pkg/logger"
	"github.com/binhbb2204/BookHub/pkg/models"
	"github.com/binhbb2204/BookHub/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Publisher receives book activity for live subscribers.
type Publisher interface {
	Publish(bookID string, eventType events.EventType, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, events.EventType, interface{}) {}

type Handler struct {
	service   *library.Service
	publisher Publisher
	log       *logger.Logger
}

// NewHandler builds the book handlers. publisher may be nil.
func NewHandler(service *library.Service, publisher Publisher) *Handler {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &Handler{
		service:   service,
		publisher: publisher,
		log:       logger.GetLogger().WithContext("component", "book_handler"),
	}
}

func (h *Handler) AddBook(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.AddBookRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondErrorDetail(c, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	book, err := h.service.AddBook(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, "add_book_failed", err)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, "Added Successfully", book)
}

func (h *Handler) ListBooks(c *gin.Context) {
	var req models.SearchBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.RespondErrorDetail(c, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	books, err := h.service.ListBooks(c.Request.Context(), req.Query)
	if err != nil {
		h.respondError(c, "list_books_failed", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "", books)
}

func (h *Handler) GetBook(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	detail, err := h.service.GetBookDetail(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondError(c, "get_book_failed", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "", detail)
}

func (h *Handler) DeleteBook(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookID := c.Param("id")
	if err := h.service.DeleteBook(c.Request.Context(), bookID, userID); err != nil {
		h.respondError(c, "delete_book_failed", err)
		return
	}
	h.publisher.Publish(bookID, events.EventBookDeleted, nil)
	utils.RespondSuccess(c, http.StatusOK, "Deleted Successfully", nil)
}

func (h *Handler) Statistics(c *gin.Context) {
	bookID := c.Param("id")
	if !library.ValidateID(bookID) {
		utils.RespondError(c, http.StatusBadRequest, "Invalid Book ID")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "", h.service.ComputeStatistics(c.Request.Context(), bookID))
}

func (h *Handler) ToggleFavourite(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	state, err := h.service.ToggleFavourite(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondError(c, "toggle_favourite_failed", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, state.Message(), gin.H{"inFavourite": state == library.Added})
}

func (h *Handler) ListFavourites(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	books, err := h.service.ListFavourites(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, "list_favourites_failed", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "", books)
}

func (h *Handler) AddRating(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorDetail(c, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}
	if !library.ValidateID(req.Book) {
		utils.RespondError(c, http.StatusBadRequest, "Invalid Book ID")
		return
	}
	value, err := library.ParseRating(string(req.Rating))
	if err != nil {
		h.respondError(c, "add_rating_failed", err)
		return
	}

	ctx := c.Request.Context()
	result, err := h.service.SubmitRating(ctx, userID, req.Book, value)
	if err != nil {
		h.respondError(c, "add_rating_failed", err)
		return
	}

	h.publisher.Publish(req.Book, events.EventRatingUpdated, h.service.ComputeStatistics(ctx, req.Book))
	utils.RespondSuccess(c, http.StatusCreated, result.Message(), nil)
}

// respondError maps library errors to status codes. Anything unrecognised
// is logged and reported as a generic 500.
func (h *Handler) respondError(c *gin.Context, event string, err error) {
	var libErr *library.Error
	if errors.As(err, &libErr) {
		switch libErr.Code {
		case library.CodeInvalidIdentifier, library.CodeInvalidRatingValue, library.CodeValidation:
			utils.RespondError(c, http.StatusBadRequest, libErr.Message)
			return
		case library.CodeNotFound:
			utils.RespondError(c, http.StatusNotFound, libErr.Message)
			return
		case library.CodeForbidden:
			utils.RespondError(c, http.StatusForbidden, libErr.Message)
			return
		}
	}

	h.log.Error(event, "error", err, "path", c.FullPath())
	utils.RespondError(c, http.StatusInternalServerError, "Something went wrong")
}
