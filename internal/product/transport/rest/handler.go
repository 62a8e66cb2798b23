// Package rest provides HTTP handlers for catalog operations.
package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	perrors "github.com/abgdnv/cloudshop/internal/product/errors"
	"github.com/abgdnv/cloudshop/internal/product/model"
	"github.com/abgdnv/cloudshop/internal/product/service"
	"github.com/abgdnv/cloudshop/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Response messages of the catalog API.
const (
	MsgNotFound            = "Not found"
	MsgMethodNotAllowed    = "Method not allowed"
	MsgProductNotFound     = "Product not found"
	MsgMissingBody         = "Missing request body"
	MsgInvalidBody         = "Invalid request body"
	MsgMissingFields       = "Missing required fields"
	MsgInvalidPriceOrCount = "Price and count must be non-negative values"
	MsgInternal            = "Internal server error"
)

// createProductRequest is the POST /products body. Pointers tell a missing field from a zero one.
type createProductRequest struct {
	Title       *string  `json:"title"       validate:"required,notblank"`
	Description *string  `json:"description" validate:"required,notblank"`
	Price       *float64 `json:"price"       validate:"required,gt=0"`
	Count       *int64   `json:"count"       validate:"required,gte=0"`
}

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: model.NewValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the catalog routes. Middlewares in guardWrites run only for POST /products.
func (h *Handler) RegisterRoutes(r chi.Router, guardWrites ...func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.With(guardWrites...).Post("/", h.Create)
		r.Get("/{id}", h.FindByID)
	})
	r.Get("/healthz", h.HealthCheck)
}

func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondMessage(w, mLogger, http.StatusInternalServerError, MsgInternal)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondMessage(w, mLogger, http.StatusNotFound, MsgProductNotFound)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondMessage(w, mLogger, http.StatusInternalServerError, MsgInternal)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error reading request body", "error", err)
		web.RespondMessage(w, mLogger, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if len(body) == 0 {
		web.RespondMessage(w, mLogger, http.StatusBadRequest, MsgMissingBody)
		return
	}
	var req createProductRequest
	if err := json.Unmarshal(body, &req); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondMessage(w, mLogger, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if msg, ok := h.validateCreate(req); !ok {
		mLogger.WarnContext(r.Context(), "Validation failed", "reason", msg)
		web.RespondMessage(w, mLogger, http.StatusBadRequest, msg)
		return
	}

	created, err := h.service.Create(r.Context(), service.ProductCreateDto{
		Title:       *req.Title,
		Description: *req.Description,
		Price:       *req.Price,
		Count:       *req.Count,
	})
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondMessage(w, mLogger, http.StatusInternalServerError, MsgInternal)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "title", created.Title)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// validateCreate reports missing fields before range violations.
func (h *Handler) validateCreate(req createProductRequest) (string, bool) {
	err := h.validate.Struct(req)
	if err == nil {
		return "", true
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return MsgInvalidBody, false
	}
	for _, fieldErr := range validationErrors {
		if fieldErr.Tag() == "required" || fieldErr.Tag() == "notblank" {
			return MsgMissingFields, false
		}
		// a zero price counts as absent, a negative one as out of range
		if fieldErr.Field() == "price" && req.Price != nil && *req.Price == 0 {
			return MsgMissingFields, false
		}
	}
	return MsgInvalidPriceOrCount, false
}

func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", middleware.GetReqID(r.Context()))
}
