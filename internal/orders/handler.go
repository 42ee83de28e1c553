package orders

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/talinda-pos/talinda-pos/internal/catalog"
	"github.com/talinda-pos/talinda-pos/internal/platform/httpx"
	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// ProductCatalog resolves products for price and tax capture at order time.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id int64) (*catalog.PricedProduct, error)
}

// Handler exposes order lifecycle endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	catalog   ProductCatalog
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, catalog ProductCatalog) *Handler {
	return &Handler{logger: logger, service: service, catalog: catalog, validator: validator.New()}
}

type createOrderBody struct {
	CustomerName   *string         `json:"customer_name,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
	DiscountAmount float64         `json:"discount_amount" validate:"gte=0"`
	Lines          []orderLineBody `json:"lines" validate:"required,min=1,dive"`
}

type orderLineBody struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Notes     *string `json:"notes,omitempty"`
}

type cancelOrderBody struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var body createOrderBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	lines, err := h.priceLines(r.Context(), body.Lines)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	order, err := h.service.Create(r.Context(), CreateOrderRequest{
		CustomerName:   body.CustomerName,
		Notes:          body.Notes,
		DiscountAmount: body.DiscountAmount,
		Lines:          lines,
	}, currentUserID(r))
	if err != nil {
		h.logger.Error("create order failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) addItems(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var body struct {
		Lines []orderLineBody `json:"lines" validate:"required,min=1,dive"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	lines, err := h.priceLines(r.Context(), body.Lines)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	order, err := h.service.AddItems(r.Context(), id, lines)
	if err != nil {
		h.logger.Error("add order items failed", slog.Any("error", err), slog.Int64("order_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	done, err := h.service.Complete(r.Context(), id, currentUserID(r))
	if err != nil {
		h.logger.Error("complete order failed", slog.Any("error", err), slog.Int64("order_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"completed": done})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var body cancelOrderBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "a cancellation reason is required")
		return
	}
	done, err := h.service.Cancel(r.Context(), id, currentUserID(r), body.Reason)
	if err != nil {
		h.logger.Error("cancel order failed", slog.Any("error", err), slog.Int64("order_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"cancelled": done})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var body UpdateOrderRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	order, err := h.service.UpdateDetails(r.Context(), id, body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) items(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	lines, err := h.service.Items(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lines)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListOrdersRequest{Limit: 50}
	if status := r.URL.Query().Get("status"); status != "" {
		s := OrderStatus(status)
		req.Status = &s
	}
	if from := parseDate(r.URL.Query().Get("date_from")); from != nil {
		req.DateFrom = from
	}
	if to := parseDate(r.URL.Query().Get("date_to")); to != nil {
		req.DateTo = to
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		req.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		req.Offset = offset
	}

	result, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list orders failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": result, "total": total})
}

func (h *Handler) priceLines(ctx context.Context, body []orderLineBody) ([]LineInput, error) {
	lines := make([]LineInput, 0, len(body))
	for _, l := range body {
		product, err := h.catalog.GetProduct(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, LineInput{
			ProductID: product.ID,
			Quantity:  l.Quantity,
			UnitPrice: product.Price,
			TaxRate:   product.TaxRate,
			Notes:     l.Notes,
		})
	}
	return lines, nil
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return 0, false
	}
	return id, true
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func currentUserID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return 0
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
