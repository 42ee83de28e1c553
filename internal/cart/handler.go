package cart

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/talinda-pos/talinda-pos/internal/platform/httpx"
	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// Handler exposes cart endpoints. The cart is addressed implicitly by the
// authenticated cashier; there are no cart ids on the wire.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

type addItemBody struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type quantityBody struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0"`
}

type itemDiscountBody struct {
	ProductID     int64   `json:"product_id" validate:"required,gt=0"`
	DiscountPct   float64 `json:"discount_pct" validate:"gte=0,lte=100"`
	DiscountFixed float64 `json:"discount_fixed" validate:"gte=0"`
}

type discountBody struct {
	DiscountPct   float64 `json:"discount_pct" validate:"gte=0,lte=100"`
	DiscountFixed float64 `json:"discount_fixed" validate:"gte=0"`
}

type loadOrderBody struct {
	OrderID int64 `json:"order_id" validate:"required,gt=0"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), currentUserID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var body addItemBody
	if !h.decode(w, r, &body) {
		return
	}
	view, err := h.service.AddItem(r.Context(), currentUserID(r), body.ProductID, body.Quantity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var body quantityBody
	if !h.decode(w, r, &body) {
		return
	}
	view, err := h.service.SetQuantity(r.Context(), currentUserID(r), body.ProductID, body.Quantity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) setItemDiscount(w http.ResponseWriter, r *http.Request) {
	var body itemDiscountBody
	if !h.decode(w, r, &body) {
		return
	}
	view, err := h.service.SetItemDiscount(r.Context(), currentUserID(r), body.ProductID, body.DiscountPct, body.DiscountFixed)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) setDiscount(w http.ResponseWriter, r *http.Request) {
	var body discountBody
	if !h.decode(w, r, &body) {
		return
	}
	view, err := h.service.SetDiscount(r.Context(), currentUserID(r), body.DiscountPct, body.DiscountFixed)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) loadOrder(w http.ResponseWriter, r *http.Request) {
	var body loadOrderBody
	if !h.decode(w, r, &body) {
		return
	}
	view, err := h.service.LoadOrder(r.Context(), currentUserID(r), body.OrderID)
	if err != nil {
		h.logger.Warn("load order into cart failed", slog.Any("error", err), slog.Int64("order_id", body.OrderID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Checkout(r.Context(), currentUserID(r))
	if err != nil {
		h.logger.Warn("checkout failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), currentUserID(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, body any) bool {
	if err := httpx.DecodeJSON(r, body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
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
