package handler

import (
    "encoding/json"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/hotelbrasileiro/hotel-reservation/internal/gateway"
    "github.com/hotelbrasileiro/hotel-reservation/internal/model"
    "github.com/hotelbrasileiro/hotel-reservation/internal/payflow"
    "github.com/hotelbrasileiro/hotel-reservation/internal/repository"
)

// CheckoutHandler exposes the payment flow over HTTP: checkout creation,
// reservation-plus-checkout, status queries and the PagBank webhook.  Every
// response uses the uniform {success: bool, ...} envelope; provider business
// detail is passed through verbatim, everything else gets a generic message
// with the detail in the server log.
type CheckoutHandler struct {
    Flow      *payflow.PayFlow
    JWTSecret string // verifies optional Bearer tokens on criar-e-pagar
}

// NewCheckoutHandler constructs a CheckoutHandler around the orchestrator.
func NewCheckoutHandler(flow *payflow.PayFlow, jwtSecret string) *CheckoutHandler {
    if flow == nil {
        panic("nil payflow passed to NewCheckoutHandler")
    }
    return &CheckoutHandler{Flow: flow, JWTSecret: jwtSecret}
}

// ----- DTOs -----

type checkoutReq struct {
    ReferenceID  string             `json:"referenceId"`
    Customer     gateway.Customer   `json:"customer"`
    Items        []gateway.Item     `json:"items"`
    RedirectURLs *checkoutRedirects `json:"redirectUrls"`
}

type checkoutRedirects struct {
    Web string `json:"web"`
}

type reservationReq struct {
    RoomID     uint64           `json:"quarto_id"`
    Guests     uint32           `json:"hospedes"`
    CheckIn    string           `json:"inicio"`
    CheckOut   string           `json:"fim"`
    TotalPrice int64            `json:"preco_total"`
    Customer   gateway.Customer `json:"customer"`
    Items      []gateway.Item   `json:"items"`
}

// notificationReq is PagBank's webhook shape reduced to the fields the flow
// needs; the charge status lives in the first entry of the charges list.
type notificationReq struct {
    ReferenceID string `json:"reference_id"`
    Charges     []struct {
        Status string `json:"status"`
    } `json:"charges"`
}

// CreateCheckout handles POST /checkout/create-checkout.  It opens a hosted
// checkout session without creating a reservation and returns the pay-URL
// together with the raw provider payload.
func (h *CheckoutHandler) CreateCheckout(c echo.Context) error {
    var req checkoutReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Missing required fields"})
    }

    flowReq := payflow.CheckoutRequest{
        ReferenceID: req.ReferenceID,
        Customer:    req.Customer,
        Items:       req.Items,
    }
    if req.RedirectURLs != nil {
        flowReq.RedirectURL = req.RedirectURLs.Web
    }

    result, err := h.Flow.CreateCheckout(c.Request().Context(), flowReq)
    if err != nil {
        return h.checkoutError(c, err)
    }

    // checkoutUrl may be null when the provider returned no PAY link
    var checkoutURL any
    if result.CheckoutURL != "" {
        checkoutURL = result.CheckoutURL
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":     true,
        "checkoutUrl": checkoutURL,
        "data":        json.RawMessage(result.Raw),
    })
}

// CreateReservationAndPay handles POST /checkout/reservas/criar-e-pagar.  It
// creates the reservation row first and then the checkout, so a provider
// failure still leaves a PENDING_PAYMENT record behind.
func (h *CheckoutHandler) CreateReservationAndPay(c echo.Context) error {
    var req reservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Missing required fields"})
    }
    checkIn, errIn := parseStayDate(req.CheckIn)
    checkOut, errOut := parseStayDate(req.CheckOut)
    if errIn != nil || errOut != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Missing required fields"})
    }

    result, err := h.Flow.CreateReservationAndCheckout(c.Request().Context(), payflow.BookingRequest{
        UserID:     h.bearerUserID(c),
        RoomID:     req.RoomID,
        Guests:     req.Guests,
        CheckIn:    checkIn,
        CheckOut:   checkOut,
        TotalPrice: req.TotalPrice,
        Customer:   req.Customer,
        Items:      req.Items,
    })
    if err != nil {
        var vErr *payflow.ValidationError
        if errors.As(err, &vErr) {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Missing required fields"})
        }
        // reservation- or provider-side failure; the row, if written, is retained
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to create PagBank checkout"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "success":     true,
        "checkoutUrl": result.CheckoutURL,
    })
}

// GetStatus handles GET /checkout/status/:referenceId.  The answer comes
// from the reservation store; the provider is never consulted.
func (h *CheckoutHandler) GetStatus(c echo.Context) error {
    referenceID := c.Param("referenceId")
    if referenceID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Reference ID is required"})
    }

    status, err := h.Flow.Status(c.Request().Context(), referenceID)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Internal server error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "status": status})
}

// HandleNotification handles POST /checkout/notifications, the PagBank
// webhook.  The provider retries aggressively on anything but a 200, so the
// endpoint acknowledges every structurally valid payload and only logs
// internal failures; 400 is reserved for payloads with no reference id at
// all.
func (h *CheckoutHandler) HandleNotification(c echo.Context) error {
    var req notificationReq
    if err := c.Bind(&req); err != nil || req.ReferenceID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid notification payload"})
    }

    status := model.StatusUnknown
    if len(req.Charges) > 0 && req.Charges[0].Status != "" {
        status = req.Charges[0].Status
    }

    err := h.Flow.ApplyNotification(c.Request().Context(), payflow.Notification{
        ReferenceID: req.ReferenceID,
        Status:      status,
    })
    if err != nil {
        // acknowledged anyway: a non-200 would only trigger a retry storm
        c.Logger().Errorf("notification for %s not applied: %v", req.ReferenceID, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// checkoutError maps orchestrator/gateway failures onto the HTTP envelope
// for the checkout-only endpoint, preserving provider detail verbatim.
func (h *CheckoutHandler) checkoutError(c echo.Context, err error) error {
    var vErr *payflow.ValidationError
    if errors.As(err, &vErr) {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Missing required fields"})
    }
    if errors.Is(err, gateway.ErrTokenMissing) {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "PagBank API token missing"})
    }
    var reqErr *gateway.RequestError
    if errors.As(err, &reqErr) {
        // provider rejection: pass the status and payload through
        return c.JSON(reqErr.StatusCode, echo.Map{"success": false, "data": json.RawMessage(reqErr.Payload)})
    }
    var protoErr *gateway.ProtocolError
    if errors.As(err, &protoErr) {
        return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "message": "Invalid response from PagBank (HTML instead of JSON)"})
    }
    c.Logger().Errorf("create checkout failed: %v", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Internal server error"})
}

// bearerUserID resolves an optional Authorization header to a user id so a
// logged-in guest's reservation lands in their /v1/me/reservas list.  The
// booking flow predates guest accounts and must keep working without a
// session, so a missing or invalid token means an anonymous reservation,
// never a 401.
func (h *CheckoutHandler) bearerUserID(c echo.Context) *uint64 {
    auth := c.Request().Header.Get("Authorization")
    if h.JWTSecret == "" || !strings.HasPrefix(auth, "Bearer ") {
        return nil
    }
    tok, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(h.JWTSecret), nil
    })
    if err != nil || !tok.Valid {
        return nil
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil
    }
    sub, ok := claims["sub"].(float64)
    if !ok || sub <= 0 {
        return nil
    }
    id := uint64(sub)
    return &id
}

// parseStayDate accepts the date-only format the booking frontend sends and
// falls back to RFC 3339 timestamps.
func parseStayDate(s string) (time.Time, error) {
    if s == "" {
        return time.Time{}, errors.New("empty date")
    }
    if t, err := time.Parse("2006-01-02", s); err == nil {
        return t, nil
    }
    return time.Parse(time.RFC3339, s)
}
