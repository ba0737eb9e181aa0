package http

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pricedesk/internal/delivery/http/dto"
	"pricedesk/internal/domain"
	"pricedesk/internal/service"
	"pricedesk/internal/usecase"
	"pricedesk/pkg/log"
)

const (
	msgAddPrompt    = "add an item below"
	msgAdded        = "item added, add another item below"
	msgNoItemInLink = "the link does not name an item"
	msgAllRemoved   = "all items have been removed"
	msgSomeRemoved  = "some items have been removed"
	msgNoneSelected = "You need to select items"
	msgBadSelection = "the selection is not valid, reload the page and try again"
	defaultTimeout  = 15 * time.Second
	templateHome    = "home"
	templateList    = "list"
	templateAddItem = "addItem"
	contentTypeHTML = "text/html; charset=utf-8"
)

// ListingService is what the web pages need from the listing use case
type ListingService interface {
	BackendKind() string
	Page(ctx context.Context, page int) (*usecase.PriceListPage, error)
	RemoveByIndices(ctx context.Context, indices []int) (domain.RemoveResult, error)
	RemoveAll(ctx context.Context) (domain.RemoveResult, error)
	Add(ctx context.Context, candidate domain.ListingCandidate) (*domain.Listing, error)
}

// ItemResolver maps an item name to a schema defindex
type ItemResolver interface {
	Resolve(query string) (int, error)
}

type WebHandler struct {
	templates       *template.Template
	listings        ListingService
	resolver        ItemResolver
	marketplaceHost string
	backendTimeout  time.Duration
}

func NewWebHandler(
	templates *template.Template,
	listings ListingService,
	resolver ItemResolver,
	marketplaceHost string,
	backendTimeout time.Duration,
) *WebHandler {
	if backendTimeout <= 0 {
		backendTimeout = defaultTimeout
	}
	return &WebHandler{
		templates:       templates,
		listings:        listings,
		resolver:        resolver,
		marketplaceHost: marketplaceHost,
		backendTimeout:  backendTimeout,
	}
}

// GET / - Redirect to home
func (h *WebHandler) HandleIndex(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/home")
}

// GET /home
func (h *WebHandler) HandleHome(c echo.Context) error {
	return h.render(c, http.StatusOK, templateHome, nil)
}

// GET /pricelist?page=N
func (h *WebHandler) HandlePriceList(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	ctx, cancel := h.backendContext(c)
	defer cancel()

	return h.renderList(ctx, c, page, "", nil)
}

// POST /pricelist - Remove selected listings or all of them
func (h *WebHandler) HandlePriceListPost(c echo.Context) error {
	ctx, cancel := h.backendContext(c)
	defer cancel()

	var form dto.RemoveForm
	if err := c.Bind(&form); err != nil {
		return h.renderList(ctx, c, 1, "", domain.NewValidationError(msgBadSelection))
	}

	params, err := c.FormParams()
	if err != nil {
		return h.renderList(ctx, c, 1, "", domain.NewValidationError(msgBadSelection))
	}
	_, deleteAll := params["delete"]
	names := append(form.Names, params["name[]"]...)

	switch {
	case deleteAll:
		if _, err := h.listings.RemoveAll(ctx); err != nil {
			log.Error("Failed to remove all listings", zap.Error(err))
			return h.renderList(ctx, c, 1, "", err)
		}
		log.Info("Removed all listings")
		return h.renderList(ctx, c, 1, msgAllRemoved, nil)

	case len(names) > 0:
		indices, err := parseIndices(names)
		if err != nil {
			return h.renderList(ctx, c, 1, "", err)
		}

		result, err := h.listings.RemoveByIndices(ctx, indices)
		if err != nil {
			log.Error("Failed to remove listings", zap.Ints("indices", indices), zap.Error(err))
			return h.renderList(ctx, c, 1, "", err)
		}
		log.Info("Removed listings", zap.Int("removed", result.Removed))
		return h.renderList(ctx, c, 1, msgSomeRemoved, nil)

	default:
		return h.renderList(ctx, c, 1, msgNoneSelected, nil)
	}
}

// GET /addItem
func (h *WebHandler) HandleAddItemForm(c echo.Context) error {
	return h.render(c, http.StatusOK, templateAddItem, dto.AddItemViewModel{Result: msgAddPrompt})
}

// POST /additem - Add the item named by a classifieds link
func (h *WebHandler) HandleAddItem(c echo.Context) error {
	var form dto.AddItemForm
	if err := c.Bind(&form); err != nil {
		return h.addItemError(c, form.URL, domain.ErrInvalidURL)
	}

	query, err := service.ParseClassifiedsURL(form.URL, h.marketplaceHost)
	if err != nil {
		return h.addItemError(c, form.URL, err)
	}
	if query.Item == "" {
		return h.render(c, http.StatusBadRequest, templateAddItem, dto.AddItemViewModel{
			Result: msgNoItemInLink, IsError: true, URL: form.URL,
		})
	}

	defindex, err := h.resolver.Resolve(query.Item)
	if err != nil {
		return h.addItemError(c, form.URL, err)
	}

	ctx, cancel := h.backendContext(c)
	defer cancel()

	listing, err := h.listings.Add(ctx, query.Candidate(defindex))
	if err != nil {
		log.Error("Failed to add listing", zap.String("item", query.Item), zap.Int("defindex", defindex), zap.Error(err))
		return h.addItemError(c, form.URL, err)
	}

	log.Info("Added listing", zap.String("name", listing.Name), zap.Int("defindex", defindex))
	return h.render(c, http.StatusOK, templateAddItem, dto.AddItemViewModel{Result: msgAdded})
}

func (h *WebHandler) addItemError(c echo.Context, url string, err error) error {
	return h.render(c, statusFor(err), templateAddItem, dto.AddItemViewModel{
		Result:  domain.UserMessage(err),
		IsError: true,
		URL:     url,
	})
}

// renderList fetches the page and renders it. A failed action or fetch is shown on the page.
func (h *WebHandler) renderList(ctx context.Context, c echo.Context, page int, result string, actionErr error) error {
	status := http.StatusOK
	vm := dto.NewPriceListViewModel(nil, h.listings.BackendKind())

	p, err := h.listings.Page(ctx, page)
	if err == nil {
		vm = dto.NewPriceListViewModel(p, h.listings.BackendKind())
	} else {
		log.Error("Failed to fetch pricelist", zap.Int("page", page), zap.Error(err))
	}

	switch {
	case actionErr != nil:
		status = statusFor(actionErr)
		vm.Result, vm.IsError = domain.UserMessage(actionErr), true
	case err != nil:
		status = statusFor(err)
		vm.Result, vm.IsError = domain.UserMessage(err), true
	default:
		vm.Result = result
	}

	return h.render(c, status, templateList, vm)
}

func (h *WebHandler) render(c echo.Context, status int, name string, data interface{}) error {
	c.Response().Header().Set(echo.HeaderContentType, contentTypeHTML)
	c.Response().WriteHeader(status)
	return h.templates.ExecuteTemplate(c.Response().Writer, name, data)
}

// backendContext detaches backend calls from the client connection and bounds them
func (h *WebHandler) backendContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request().Context()), h.backendTimeout)
}

func parseIndices(values []string) ([]int, error) {
	indices := make([]int, 0, len(values))
	for _, v := range values {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, domain.NewValidationError(msgBadSelection)
		}
		indices = append(indices, i)
	}
	return indices, nil
}

func statusFor(err error) int {
	var (
		ambiguous  *domain.AmbiguousMatchError
		rateLimit  *domain.RateLimitedError
		server     *domain.ServerError
		validation *domain.ValidationError
		partial    *domain.PartialFailureError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidURL), errors.As(err, &validation), errors.As(err, &ambiguous):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests
	case errors.As(err, &partial):
		return http.StatusMultiStatus
	case errors.As(err, &server), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RegisterWebRoutes registers all web routes (HTML pages)
func RegisterWebRoutes(e *echo.Echo, handler *WebHandler) {
	e.GET("/", handler.HandleIndex)
	e.GET("/home", handler.HandleHome)
	e.GET("/pricelist", handler.HandlePriceList)
	e.POST("/pricelist", handler.HandlePriceListPost)
	e.GET("/addItem", handler.HandleAddItemForm)
	e.POST("/additem", handler.HandleAddItem)
}
