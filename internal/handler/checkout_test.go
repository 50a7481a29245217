package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/hotelbrasileiro/hotel-reservation/internal/gateway"
    "github.com/hotelbrasileiro/hotel-reservation/internal/model"
    "github.com/hotelbrasileiro/hotel-reservation/internal/payflow"
    "github.com/hotelbrasileiro/hotel-reservation/internal/repository"
    "github.com/hotelbrasileiro/hotel-reservation/internal/utils"
)

// memStore keeps reservations in a map keyed by reference id so handler
// tests can run the real orchestrator without MySQL.
type memStore struct {
    byRef  map[string]*model.Reservation
    nextID uint64
}

func newMemStore() *memStore {
    return &memStore{byRef: map[string]*model.Reservation{}}
}

func (s *memStore) Create(_ context.Context, res *model.Reservation) error {
    s.nextID++
    res.ID = s.nextID
    res.CreatedAt = time.Now().UTC()
    cp := *res
    s.byRef[res.ReferenceID] = &cp
    return nil
}

func (s *memStore) GetByReference(_ context.Context, ref string) (*model.Reservation, error) {
    res, ok := s.byRef[ref]
    if !ok {
        return nil, repository.ErrReservationNotFound
    }
    cp := *res
    return &cp, nil
}

func (s *memStore) StatusByReference(_ context.Context, ref string) (string, error) {
    res, ok := s.byRef[ref]
    if !ok {
        return "", repository.ErrReservationNotFound
    }
    return res.Status, nil
}

func (s *memStore) UpdateStatusByReference(_ context.Context, ref, status string) (string, error) {
    res, ok := s.byRef[ref]
    if !ok {
        return "", repository.ErrReservationNotFound
    }
    previous := res.Status
    res.Status = status
    return previous, nil
}

// stubGateway answers CreateCheckout with a canned session or error.
type stubGateway struct {
    sess *gateway.CheckoutSession
    err  error
}

func (g *stubGateway) CreateCheckout(_ context.Context, _ gateway.CheckoutIntent) (*gateway.CheckoutSession, error) {
    if g.err != nil {
        return nil, g.err
    }
    return g.sess, nil
}

const testJWTSecret = "handler-test-secret"

func newTestHandler(store *memStore, gw *stubGateway) *CheckoutHandler {
    flow := payflow.New(store, gw, nil, "https://hotel.example/obrigado", "hotelbrasileiro://reservas/reservaFinish")
    return NewCheckoutHandler(flow, testJWTSecret)
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if err := h(c); err != nil {
        t.Fatalf("handler returned error: %v", err)
    }
    return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    var out map[string]any
    if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
        t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
    }
    return out
}

func TestCreateReservationAndPay(t *testing.T) {
    store := newMemStore()
    gw := &stubGateway{sess: &gateway.CheckoutSession{
        PayURL: "https://pay.example/abc",
        Raw:    json.RawMessage(`{"links":[{"rel":"PAY","href":"https://pay.example/abc"}]}`),
    }}
    h := newTestHandler(store, gw)

    body := `{
        "quarto_id": 3,
        "hospedes": 2,
        "inicio": "2026-10-01",
        "fim": "2026-10-05",
        "preco_total": 98000,
        "customer": {"name": "Ana Souza", "email": "ana@example.com", "tax_id": "12345678909"},
        "items": [{"name": "Suite Master", "quantity": 1, "amount": 98000}]
    }`
    rec := doJSON(t, h.CreateReservationAndPay, http.MethodPost, "/checkout/reservas/criar-e-pagar", body)

    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
    }
    resp := decodeBody(t, rec)
    if resp["success"] != true {
        t.Errorf("success = %v, want true", resp["success"])
    }
    if resp["checkoutUrl"] != "https://pay.example/abc" {
        t.Errorf("checkoutUrl = %v", resp["checkoutUrl"])
    }
    if len(store.byRef) != 1 {
        t.Fatalf("want 1 reservation persisted, got %d", len(store.byRef))
    }
    for ref, res := range store.byRef {
        if !strings.HasPrefix(ref, "reserva_") {
            t.Errorf("reference id %q lacks reserva_ prefix", ref)
        }
        if res.Status != model.StatusPendingPayment {
            t.Errorf("status = %q, want %q", res.Status, model.StatusPendingPayment)
        }
    }
}

func TestCreateReservationAndPayLinksAuthenticatedUser(t *testing.T) {
    store := newMemStore()
    gw := &stubGateway{sess: &gateway.CheckoutSession{PayURL: "https://pay.example/abc"}}
    h := newTestHandler(store, gw)

    at, err := utils.NewAccessToken(testJWTSecret, 42, 15)
    if err != nil {
        t.Fatalf("NewAccessToken: %v", err)
    }

    body := `{
        "quarto_id": 3,
        "hospedes": 2,
        "inicio": "2026-10-01",
        "fim": "2026-10-05",
        "preco_total": 98000,
        "customer": {"name": "Ana Souza", "email": "ana@example.com", "tax_id": "12345678909"},
        "items": [{"name": "Suite Master", "quantity": 1, "amount": 98000}]
    }`
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/checkout/reservas/criar-e-pagar", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    req.Header.Set("Authorization", "Bearer "+at.Token)
    rec := httptest.NewRecorder()
    if err := h.CreateReservationAndPay(e.NewContext(req, rec)); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
    }

    if len(store.byRef) != 1 {
        t.Fatalf("want 1 reservation, got %d", len(store.byRef))
    }
    for _, res := range store.byRef {
        if res.UserID == nil {
            t.Fatal("reservation not linked to the authenticated user")
        }
        if *res.UserID != 42 {
            t.Errorf("UserID = %d, want 42", *res.UserID)
        }
    }
}

func TestCreateReservationAndPayInvalidTokenStaysAnonymous(t *testing.T) {
    store := newMemStore()
    gw := &stubGateway{sess: &gateway.CheckoutSession{PayURL: "https://pay.example/abc"}}
    h := newTestHandler(store, gw)

    body := `{
        "quarto_id": 1,
        "hospedes": 1,
        "inicio": "2026-12-01",
        "fim": "2026-12-03",
        "preco_total": 50000,
        "customer": {"name": "Hugo", "email": "hugo@example.com", "tax_id": "12312312312"},
        "items": [{"name": "Standard", "amount": 50000}]
    }`
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/checkout/reservas/criar-e-pagar", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    req.Header.Set("Authorization", "Bearer not-a-jwt")
    rec := httptest.NewRecorder()
    if err := h.CreateReservationAndPay(e.NewContext(req, rec)); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    // a broken session must not block the booking, it just stays anonymous
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
    }
    for _, res := range store.byRef {
        if res.UserID != nil {
            t.Errorf("UserID = %d, want anonymous", *res.UserID)
        }
    }
}

func TestCreateReservationAndPayValidation(t *testing.T) {
    store := newMemStore()
    h := newTestHandler(store, &stubGateway{sess: &gateway.CheckoutSession{PayURL: "https://pay.example/x"}})

    // guests missing
    body := `{
        "quarto_id": 3,
        "inicio": "2026-10-01",
        "fim": "2026-10-05",
        "preco_total": 98000,
        "customer": {"name": "Ana", "email": "ana@example.com", "tax_id": "12345678909"},
        "items": [{"name": "Suite", "amount": 98000}]
    }`
    rec := doJSON(t, h.CreateReservationAndPay, http.MethodPost, "/checkout/reservas/criar-e-pagar", body)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("status = %d, want 400", rec.Code)
    }
    if msg := decodeBody(t, rec)["message"]; msg != "Missing required fields" {
        t.Errorf("message = %v", msg)
    }
    if len(store.byRef) != 0 {
        t.Errorf("validation failure must not persist a reservation")
    }
}

func TestCreateReservationAndPayGatewayFailure(t *testing.T) {
    store := newMemStore()
    h := newTestHandler(store, &stubGateway{err: &gateway.ProtocolError{Reason: "non-JSON response"}})

    body := `{
        "quarto_id": 1,
        "hospedes": 1,
        "inicio": "2026-11-01",
        "fim": "2026-11-02",
        "preco_total": 25000,
        "customer": {"name": "Bruno", "email": "bruno@example.com", "tax_id": "98765432100"},
        "items": [{"name": "Standard", "amount": 25000}]
    }`
    rec := doJSON(t, h.CreateReservationAndPay, http.MethodPost, "/checkout/reservas/criar-e-pagar", body)
    if rec.Code != http.StatusInternalServerError {
        t.Fatalf("status = %d, want 500", rec.Code)
    }
    if msg := decodeBody(t, rec)["message"]; msg != "Failed to create PagBank checkout" {
        t.Errorf("message = %v", msg)
    }
    // the row must survive the provider failure
    if len(store.byRef) != 1 {
        t.Fatalf("want reservation retained after gateway failure, got %d rows", len(store.byRef))
    }
    for _, res := range store.byRef {
        if res.Status != model.StatusPendingPayment {
            t.Errorf("retained status = %q, want %q", res.Status, model.StatusPendingPayment)
        }
    }
}

func TestCreateCheckout(t *testing.T) {
    h := newTestHandler(newMemStore(), &stubGateway{sess: &gateway.CheckoutSession{
        PayURL: "https://pay.example/s1",
        Raw:    json.RawMessage(`{"links":[{"rel":"PAY","href":"https://pay.example/s1"}]}`),
    }})

    body := `{
        "referenceId": "reserva_externa_1",
        "customer": {"name": "Caio", "email": "caio@example.com", "tax_id": "11122233344"},
        "items": [{"name": "Chale", "amount": 40000}]
    }`
    rec := doJSON(t, h.CreateCheckout, http.MethodPost, "/checkout/create-checkout", body)
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
    }
    resp := decodeBody(t, rec)
    if resp["checkoutUrl"] != "https://pay.example/s1" {
        t.Errorf("checkoutUrl = %v", resp["checkoutUrl"])
    }
    data, _ := resp["data"].(map[string]any)
    if data == nil {
        t.Fatalf("data missing from response: %v", resp)
    }
}

func TestCreateCheckoutNoPayLink(t *testing.T) {
    h := newTestHandler(newMemStore(), &stubGateway{sess: &gateway.CheckoutSession{
        PayURL: "",
        Raw:    json.RawMessage(`{"links":[]}`),
    }})

    body := `{
        "customer": {"name": "Dina", "email": "dina@example.com", "tax_id": "55566677788"},
        "items": [{"name": "Luxo", "amount": 70000}]
    }`
    rec := doJSON(t, h.CreateCheckout, http.MethodPost, "/checkout/create-checkout", body)
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200", rec.Code)
    }
    // checkoutUrl must be JSON null, not the empty string
    resp := decodeBody(t, rec)
    if v, present := resp["checkoutUrl"]; !present || v != nil {
        t.Errorf("checkoutUrl = %v, want null", v)
    }
}

func TestCreateCheckoutProviderRejection(t *testing.T) {
    payload := `{"error_messages":[{"code":"40002","description":"invalid_parameter"}]}`
    h := newTestHandler(newMemStore(), &stubGateway{err: &gateway.RequestError{
        StatusCode: http.StatusUnprocessableEntity,
        Payload:    json.RawMessage(payload),
    }})

    body := `{
        "customer": {"name": "Edu", "email": "edu@example.com", "tax_id": "00011122233"},
        "items": [{"name": "Suite", "amount": 10000}]
    }`
    rec := doJSON(t, h.CreateCheckout, http.MethodPost, "/checkout/create-checkout", body)
    if rec.Code != http.StatusUnprocessableEntity {
        t.Fatalf("status = %d, want 422", rec.Code)
    }
    resp := decodeBody(t, rec)
    raw, _ := json.Marshal(resp["data"])
    if !strings.Contains(string(raw), "40002") {
        t.Errorf("provider payload not passed through verbatim: %s", raw)
    }
}

func TestCreateCheckoutProtocolError(t *testing.T) {
    h := newTestHandler(newMemStore(), &stubGateway{err: &gateway.ProtocolError{Reason: "non-JSON response"}})

    body := `{
        "customer": {"name": "Fabi", "email": "fabi@example.com", "tax_id": "99988877766"},
        "items": [{"name": "Standard", "amount": 20000}]
    }`
    rec := doJSON(t, h.CreateCheckout, http.MethodPost, "/checkout/create-checkout", body)
    if rec.Code != http.StatusBadGateway {
        t.Fatalf("status = %d, want 502", rec.Code)
    }
    if msg := decodeBody(t, rec)["message"]; msg != "Invalid response from PagBank (HTML instead of JSON)" {
        t.Errorf("message = %v", msg)
    }
}

func TestCreateCheckoutTokenMissing(t *testing.T) {
    h := newTestHandler(newMemStore(), &stubGateway{err: gateway.ErrTokenMissing})

    body := `{
        "customer": {"name": "Gil", "email": "gil@example.com", "tax_id": "44455566677"},
        "items": [{"name": "Chale", "amount": 30000}]
    }`
    rec := doJSON(t, h.CreateCheckout, http.MethodPost, "/checkout/create-checkout", body)
    if rec.Code != http.StatusInternalServerError {
        t.Fatalf("status = %d, want 500", rec.Code)
    }
    if msg := decodeBody(t, rec)["message"]; msg != "PagBank API token missing" {
        t.Errorf("message = %v", msg)
    }
}

func TestGetStatus(t *testing.T) {
    store := newMemStore()
    store.byRef["reserva_1_abc"] = &model.Reservation{
        ID: 1, ReferenceID: "reserva_1_abc", Status: model.StatusPaid,
    }
    h := newTestHandler(store, &stubGateway{})

    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/checkout/status/reserva_1_abc", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/checkout/status/:referenceId")
    c.SetParamNames("referenceId")
    c.SetParamValues("reserva_1_abc")

    if err := h.GetStatus(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200", rec.Code)
    }
    if s := decodeBody(t, rec)["status"]; s != model.StatusPaid {
        t.Errorf("status = %v, want %v", s, model.StatusPaid)
    }
}

func TestGetStatusNotFound(t *testing.T) {
    h := newTestHandler(newMemStore(), &stubGateway{})

    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/checkout/status/reserva_missing", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/checkout/status/:referenceId")
    c.SetParamNames("referenceId")
    c.SetParamValues("reserva_missing")

    if err := h.GetStatus(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusNotFound {
        t.Fatalf("status = %d, want 404", rec.Code)
    }
    if msg := decodeBody(t, rec)["message"]; msg != "Reservation not found" {
        t.Errorf("message = %v", msg)
    }
}

func TestHandleNotification(t *testing.T) {
    store := newMemStore()
    store.byRef["reserva_2_def"] = &model.Reservation{
        ID: 2, ReferenceID: "reserva_2_def", Status: model.StatusPendingPayment,
    }
    h := newTestHandler(store, &stubGateway{})

    body := `{"reference_id": "reserva_2_def", "charges": [{"status": "PAID"}]}`
    rec := doJSON(t, h.HandleNotification, http.MethodPost, "/checkout/notifications", body)
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200", rec.Code)
    }
    if got := store.byRef["reserva_2_def"].Status; got != model.StatusPaid {
        t.Errorf("stored status = %q, want %q", got, model.StatusPaid)
    }
}

func TestHandleNotificationNoCharges(t *testing.T) {
    store := newMemStore()
    store.byRef["reserva_3_ghi"] = &model.Reservation{
        ID: 3, ReferenceID: "reserva_3_ghi", Status: model.StatusPendingPayment,
    }
    h := newTestHandler(store, &stubGateway{})

    // no charges array: status falls back to UNKNOWN
    body := `{"reference_id": "reserva_3_ghi"}`
    rec := doJSON(t, h.HandleNotification, http.MethodPost, "/checkout/notifications", body)
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200", rec.Code)
    }
    if got := store.byRef["reserva_3_ghi"].Status; got != model.StatusUnknown {
        t.Errorf("stored status = %q, want %q", got, model.StatusUnknown)
    }
}

func TestHandleNotificationMissingReference(t *testing.T) {
    h := newTestHandler(newMemStore(), &stubGateway{})

    body := `{"charges": [{"status": "PAID"}]}`
    rec := doJSON(t, h.HandleNotification, http.MethodPost, "/checkout/notifications", body)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("status = %d, want 400", rec.Code)
    }
}

func TestHandleNotificationUnknownReferenceStill200(t *testing.T) {
    store := newMemStore()
    h := newTestHandler(store, &stubGateway{})

    body := `{"reference_id": "reserva_never_seen", "charges": [{"status": "PAID"}]}`
    rec := doJSON(t, h.HandleNotification, http.MethodPost, "/checkout/notifications", body)
    // internal lookup failure is logged, provider still gets a 200
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200", rec.Code)
    }
    if len(store.byRef) != 0 {
        t.Errorf("unknown reference must not create a reservation")
    }
}
