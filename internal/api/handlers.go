package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/emerssive/Chrome-Extension/internal/auth"
	"github.com/emerssive/Chrome-Extension/internal/database"
	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/emerssive/Chrome-Extension/internal/registry"
	"github.com/emerssive/Chrome-Extension/internal/scraper"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type RegistryService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	CreateRegistry(ctx context.Context, userID int64, name string, description *string) (*models.Registry, error)
	ListRegistries(ctx context.Context, userID int64) ([]models.Registry, error)
	AddProduct(ctx context.Context, userID, registryID int64, c models.Candidate, storeURL string) (*models.SavedProduct, error)
	ListProducts(ctx context.Context, f database.ProductFilter) (*database.ProductPage, error)
	DeleteProduct(ctx context.Context, userID, productID int64) error
}

type Scraper interface {
	Scrape(ctx context.Context, storeURL string) (*models.ScrapeResult, error)
}

// ScrapeStore holds each user's scraped candidates per store until they are
// saved or cleared.
type ScrapeStore interface {
	Append(userID int64, storeURL string, products []models.Candidate) (int, error)
	Get(userID int64, storeURL string) []models.Candidate
	Clear(userID int64, storeURL string) (bool, error)
}

type OutboxStats interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type Handlers struct {
	registry RegistryService
	scraper  Scraper
	store    ScrapeStore
	outbox   OutboxStats
	logger   *slog.Logger
}

func NewHandlers(registry RegistryService, scraper Scraper, store ScrapeStore, outbox OutboxStats, logger *slog.Logger) *Handlers {
	return &Handlers{
		registry: registry,
		scraper:  scraper,
		store:    store,
		outbox:   outbox,
		logger:   logger.With("component", "api"),
	}
}

const (
	pendingWarnThreshold    = 1000
	deadLetterFailThreshold = 100
)

// Health reports the outbox backlog alongside liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{"status": "ok"}
	status := http.StatusOK

	if h.outbox != nil {
		counts, err := h.outbox.CountByStatus(r.Context())
		if err != nil {
			h.logger.Error("failed to read outbox stats", "error", err)
			h.respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "error", "message": "database unavailable"})
			return
		}

		pending := counts[database.OutboxStatusPending] + counts[database.OutboxStatusFailed]
		deadLetter := counts[database.OutboxStatusDeadLetter]
		health["outbox"] = map[string]int64{"pending": pending, "dead_letter": deadLetter}

		if pending > pendingWarnThreshold {
			health["status"] = "warning"
			health["message"] = "High number of pending outbox events"
		}
		if deadLetter > deadLetterFailThreshold {
			health["status"] = "error"
			health["message"] = "High number of dead letter events"
			status = http.StatusServiceUnavailable
		}
	}

	h.respondJSON(w, status, health)
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.registry.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]any{"message": "User registered", "user": user})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.registry.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

type CreateRegistryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *Handlers) CreateRegistry(w http.ResponseWriter, r *http.Request) {
	var req CreateRegistryRequest
	if !h.decode(w, r, &req) {
		return
	}

	reg, err := h.registry.CreateRegistry(r.Context(), userID(r), req.Name, req.Description)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]any{"registry": reg})
}

func (h *Handlers) ListRegistries(w http.ResponseWriter, r *http.Request) {
	registries, err := h.registry.ListRegistries(r.Context(), userID(r))
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"registries": registries})
}

// CreateProductRequest is one scraped candidate plus the page it came from.
type CreateProductRequest struct {
	Name        string           `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"imageUrl"`
	Rating      *float64         `json:"rating"`
	ReviewCount *int             `json:"reviewCount"`
	ProductURL  *string          `json:"productUrl"`
	StoreURL    string           `json:"storeUrl"`
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	registryID, ok := h.pathID(w, r, "registryID")
	if !ok {
		return
	}

	var req CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.Price == nil {
		h.handleError(w, &registry.ValidationError{Fields: []string{"price is required"}})
		return
	}

	candidate := models.Candidate{
		Name:        req.Name,
		Price:       *req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Rating:      req.Rating,
		ReviewCount: req.ReviewCount,
		ProductURL:  req.ProductURL,
	}

	product, err := h.registry.AddProduct(r.Context(), userID(r), registryID, candidate, req.StoreURL)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]any{"id": product.ID, "product": product})
}

type ListProductsResponse struct {
	Items []models.SavedProduct `json:"items"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseProductFilter(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.UserID = userID(r)

	result, err := h.registry.ListProducts(r.Context(), filter)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, ListProductsResponse{
		Items: result.Items,
		Total: result.Total,
		Page:  page,
		Limit: filter.Limit,
	})
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.registry.DeleteProduct(r.Context(), userID(r), productID); err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

type ScrapeRequest struct {
	URL string `json:"url"`
}

type ScrapeResponse struct {
	*models.ScrapeResult
	// Stored is the number of candidates now held for the store URL.
	Stored int `json:"stored"`
}

func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	result, err := h.scraper.Scrape(r.Context(), req.URL)
	if err != nil {
		h.handleError(w, err)
		return
	}

	stored, err := h.store.Append(userID(r), result.StoreURL, result.Products)
	if err != nil {
		h.logger.Error("failed to store scraped products", "url", result.StoreURL, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to store scraped products")
		return
	}

	h.respondJSON(w, http.StatusOK, ScrapeResponse{ScrapeResult: result, Stored: stored})
}

func (h *Handlers) GetScrapes(w http.ResponseWriter, r *http.Request) {
	storeURL := r.URL.Query().Get("storeUrl")
	if storeURL == "" {
		h.respondError(w, http.StatusBadRequest, "storeUrl is required")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"storeUrl": storeURL,
		"products": h.store.Get(userID(r), storeURL),
	})
}

func (h *Handlers) ClearScrapes(w http.ResponseWriter, r *http.Request) {
	storeURL := r.URL.Query().Get("storeUrl")
	if storeURL == "" {
		h.respondError(w, http.StatusBadRequest, "storeUrl is required")
		return
	}

	cleared, err := h.store.Clear(userID(r), storeURL)
	if err != nil {
		h.logger.Error("failed to clear scraped products", "url", storeURL, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to clear scraped products")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"success": true, "cleared": cleared})
}

func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	var verr *registry.ValidationError
	switch {
	case errors.As(err, &verr):
		h.respondJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "details": verr.Fields})
	case errors.Is(err, registry.ErrUserExists):
		h.respondError(w, http.StatusConflict, "User already exists")
	case errors.Is(err, registry.ErrInvalidCredentials):
		h.respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, registry.ErrAccessDenied):
		h.respondError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, registry.ErrProductNotFound):
		h.respondError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, scraper.ErrInvalidURL):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scraper.ErrScrapeTimeout):
		h.respondError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, scraper.ErrFetchFailed):
		h.respondError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handlers) unauthorized(w http.ResponseWriter, err error) {
	h.respondError(w, http.StatusUnauthorized, err.Error())
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func userID(r *http.Request) int64 {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}
