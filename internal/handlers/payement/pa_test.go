package pa

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cosmetics_back_end/internal/cache"
	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"
	"cosmetics_back_end/internal/services"
	"cosmetics_back_end/internal/shipping"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePayments struct {
	mu       sync.Mutex
	intents  map[string]*services.Intent
	event    *services.PaymentEvent
	failNext bool
}

func newFakePayments() *fakePayments {
	return &fakePayments{intents: map[string]*services.Intent{}}
}

func (f *fakePayments) CreateIntent(_ context.Context, amount int64, metadata map[string]string) (*services.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return nil, errors.New("stripe indisponible")
	}
	id := "pi_" + metadata["order_id"]
	in := &services.Intent{ID: id, ClientSecret: id + "_secret", Status: "requires_payment_method", Amount: amount, Metadata: metadata}
	f.intents[id] = in
	return in, nil
}

func (f *fakePayments) GetIntent(_ context.Context, id string) (*services.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.intents[id]
	if !ok {
		return nil, errors.New("introuvable")
	}
	cp := *in
	return &cp, nil
}

func (f *fakePayments) ParseWebhook(payload []byte, signature string) (*services.PaymentEvent, error) {
	if signature != "ok" {
		return nil, services.ErrInvalidSignature
	}
	return f.event, nil
}

func (f *fakePayments) succeed(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intents[id].Status = services.IntentSucceeded
}

type recordingMailer struct {
	mu            sync.Mutex
	confirmations []string
	transfers     []string
}

func (m *recordingMailer) SendOrderConfirmation(_ context.Context, o models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations = append(m.confirmations, o.ID.String())
	return nil
}

func (m *recordingMailer) SendTransferInstructions(_ context.Context, o models.Order, _ services.TransferDetails, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = append(m.transfers, o.ID.String())
	return nil
}

type fixture struct {
	store    *repository.Store
	carts    *cache.MemoryCartStore
	payments *fakePayments
	mailer   *recordingMailer
	handler  *Handler
	router   *gin.Engine
	serum    models.Product
	userID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    repository.NewMemoryStore(),
		carts:    cache.NewMemoryCartStore(),
		payments: newFakePayments(),
		mailer:   &recordingMailer{},
		userID:   gocql.TimeUUID().String(),
	}
	f.serum = models.Product{Name: "Sérum", Price: 15, Stock: 5, Weight: 175, IsActive: true}
	require.NoError(t, f.store.Products.Create(context.Background(), &f.serum))

	f.handler = NewHandler(shipping.DefaultRateTable(), *f.store, f.carts, cache.NewMemoryProductCache(), f.payments, f.mailer,
		BankAccount{Name: "Cosmetics SRL", IBAN: "BE68539007547034", BIC: "GKCCBEBB"}, "eur")

	r := gin.New()
	r.GET("/api/shipping/calculate", f.handler.CalculateShipping)
	r.POST("/api/shipping/calculate", f.handler.CalculateShipping)
	r.POST("/api/webhooks/stripe", f.handler.StripeWebhook)
	authed := r.Group("/api", func(c *gin.Context) {
		if id := c.GetHeader("X-User"); id != "" {
			c.Set("user_id", id)
			c.Set("email", "client@example.com")
		}
		c.Next()
	})
	authed.POST("/checkout/shipping-options", f.handler.ShippingOptions)
	authed.POST("/checkout", f.handler.Checkout)
	authed.GET("/checkout/confirm", f.handler.ConfirmPayment)
	f.router = r
	return f
}

func (f *fixture) fillCart(t *testing.T, qty int) {
	t.Helper()
	cart := models.Cart{UserID: f.userID, Items: []models.CartItem{{
		ProductID: f.serum.ID.String(), Name: "Sérum", Price: 1, Quantity: qty, Weight: 1,
	}}}
	require.NoError(t, f.carts.Save(context.Background(), cart))
}

func (f *fixture) request(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (f *fixture) asUser() map[string]string {
	return map[string]string{"X-User": f.userID}
}

func TestCalculateShipping_POST(t *testing.T) {
	f := newFixture(t)

	w, body := f.request(t, http.MethodPost, "/api/shipping/calculate", `{"country":"FR","weight":500,"value":30}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	def := body["defaultMethod"].(map[string]interface{})
	assert.Equal(t, "relay", def["method"].(map[string]interface{})["id"])
	assert.Equal(t, 3.99, def["price"])
	assert.Empty(t, body["errors"])

	methods := body["availableMethods"].([]interface{})
	prices := []float64{}
	for _, m := range methods {
		prices = append(prices, m.(map[string]interface{})["price"].(float64))
	}
	assert.IsNonDecreasing(t, prices)
}

func TestCalculateShipping_GET(t *testing.T) {
	f := newFixture(t)

	w, body := f.request(t, http.MethodGet, "/api/shipping/calculate?country=fr&weight=500&value=1000&postalCode=75001", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	def := body["defaultMethod"].(map[string]interface{})
	assert.Equal(t, "standard", def["method"].(map[string]interface{})["id"])
	assert.Equal(t, 0.0, def["price"])

	w, body = f.request(t, http.MethodGet, "/api/shipping/calculate?country=FR&weight=abc&value=1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, shipping.ErrMissingParams, body["error"])
}

func TestCalculateShipping_Errors(t *testing.T) {
	f := newFixture(t)

	cases := []string{
		`{"weight":500,"value":30}`,
		`{"country":"FR","weight":0,"value":30}`,
		`{"country":"FR","weight":-1,"value":30}`,
		`{"country":"FR","weight":500,"value":-1}`,
		`{"country":"FR","weight":500}`,
		`{"country":"FR","value":30}`,
		`{"country":"FR","weight":500,"value":null}`,
	}
	for _, body := range cases {
		w, out := f.request(t, http.MethodPost, "/api/shipping/calculate", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, shipping.ErrMissingParams, out["error"], body)
	}

	for _, query := range []string{"?country=FR&weight=500", "?country=FR&value=30", "?country=FR&weight=500&value="} {
		w, out := f.request(t, http.MethodGet, "/api/shipping/calculate"+query, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
		assert.Equal(t, shipping.ErrMissingParams, out["error"], query)
	}

	// valeur 0 explicite : demande valide
	w, _ := f.request(t, http.MethodPost, "/api/shipping/calculate", `{"country":"FR","weight":500,"value":0}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, out := f.request(t, http.MethodPost, "/api/shipping/calculate", `{"country":"US","weight":6000,"value":10}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, shipping.ErrNoMethod, out["error"])
	assert.Empty(t, out["availableMethods"])
	assert.Nil(t, out["defaultMethod"])
	assert.Equal(t, []interface{}{shipping.ErrNoMethod}, out["errors"])

	w, out = f.request(t, http.MethodPost, "/api/shipping/calculate", `{"country":`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errShippingInternal, out["error"])
}

func TestShippingOptions_UsesCartWeightAndPackaging(t *testing.T) {
	f := newFixture(t)

	w, _ := f.request(t, http.MethodPost, "/api/checkout/shipping-options", `{"country":"FR"}`, f.asUser())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 2 × 175 g + 150 g d'emballage = 500 g, sous-total 30 €
	require.NoError(t, f.carts.Save(context.Background(), models.Cart{UserID: f.userID, Items: []models.CartItem{{
		ProductID: f.serum.ID.String(), Price: 15, Quantity: 2, Weight: 175,
	}}}))

	w, body := f.request(t, http.MethodPost, "/api/checkout/shipping-options", `{"country":"FR","postal_code":"75001"}`, f.asUser())
	require.Equal(t, http.StatusOK, w.Code)
	for _, m := range body["availableMethods"].([]interface{}) {
		calc := m.(map[string]interface{})
		if calc["method"].(map[string]interface{})["id"] == "standard" {
			assert.Equal(t, 6.95, calc["price"])
		}
	}
}

func checkoutBody(method, payment string) string {
	b, _ := json.Marshal(gin.H{
		"shipping_address":   gin.H{"name": "Alice", "street": "1 rue X", "city": "Paris", "postal_code": "75001", "country": "FR"},
		"shipping_method_id": method,
		"payment_method":     payment,
	})
	return string(b)
}

func TestCheckout_CardThenConfirm(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, 2)
	ctx := context.Background()

	w, body := f.request(t, http.MethodPost, "/api/checkout", checkoutBody("standard", "card"), f.asUser())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 36.95, body["amount"])
	assert.NotEmpty(t, body["client_secret"])

	orderID, err := gocql.ParseUUID(body["order_id"].(string))
	require.NoError(t, err)
	order, err := f.store.Orders.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 15.0, order.Items[0].Price, "prix rechargé depuis la base")
	assert.Equal(t, 6.95, order.ShippingPrice)
	assert.Equal(t, order.Reference(), order.PaymentReference)
	require.NotEmpty(t, order.PaymentIntentID)

	// paiement pas encore abouti
	w, body = f.request(t, http.MethodGet, "/api/checkout/confirm?payment_intent="+order.PaymentIntentID, "", f.asUser())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderPending, body["status"])

	f.payments.succeed(order.PaymentIntentID)
	for i := 0; i < 2; i++ {
		w, body = f.request(t, http.MethodGet, "/api/checkout/confirm?payment_intent="+order.PaymentIntentID, "", f.asUser())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.OrderPaid, body["status"])
	}

	p, _ := f.store.Products.Get(ctx, f.serum.ID)
	assert.Equal(t, 3, p.Stock, "stock décrémenté une seule fois")
	cart, _ := f.carts.Get(ctx, f.userID)
	assert.Empty(t, cart.Items)
	assert.Len(t, f.mailer.confirmations, 1)

	w, _ = f.request(t, http.MethodGet, "/api/checkout/confirm?payment_intent="+order.PaymentIntentID, "", map[string]string{"X-User": "intrus"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckout_BankTransfer(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, 1)

	w, body := f.request(t, http.MethodPost, "/api/checkout", checkoutBody("relay", "bank_transfer"), f.asUser())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.OrderAwaitingTransfer, body["status"])
	assert.True(t, strings.HasPrefix(body["qr_code"].(string), "data:image/png;base64,"))

	transfer := body["transfer"].(map[string]interface{})
	assert.Equal(t, "BE68539007547034", transfer["iban"])
	assert.Equal(t, 18.99, transfer["amount"])
	assert.True(t, strings.HasPrefix(transfer["reference"].(string), "CMD-"))
	assert.Len(t, f.mailer.transfers, 1)
}

func TestCheckout_Rejections(t *testing.T) {
	f := newFixture(t)

	w, _ := f.request(t, http.MethodPost, "/api/checkout", checkoutBody("standard", "card"), f.asUser())
	assert.Equal(t, http.StatusBadRequest, w.Code, "panier vide")

	f.fillCart(t, 6)
	w, body := f.request(t, http.MethodPost, "/api/checkout", checkoutBody("standard", "card"), f.asUser())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Stock insuffisant", body["error"])

	f.fillCart(t, 1)
	w, _ = f.request(t, http.MethodPost, "/api/checkout", checkoutBody("teleportation", "card"), f.asUser())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.request(t, http.MethodPost, "/api/checkout", checkoutBody("standard", "cash"), f.asUser())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.payments.failNext = true
	w, _ = f.request(t, http.MethodPost, "/api/checkout", checkoutBody("standard", "card"), f.asUser())
	assert.Equal(t, http.StatusBadGateway, w.Code)

	orders, _ := f.store.Orders.ListByUser(context.Background(), f.userID)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderPaymentFailed, orders[0].Status)
}

func placeCardOrder(t *testing.T, f *fixture) *models.Order {
	t.Helper()
	f.fillCart(t, 1)
	w, body := f.request(t, http.MethodPost, "/api/checkout", checkoutBody("standard", "card"), f.asUser())
	require.Equal(t, http.StatusCreated, w.Code)
	id, _ := gocql.ParseUUID(body["order_id"].(string))
	order, err := f.store.Orders.Get(context.Background(), id)
	require.NoError(t, err)
	return order
}

func TestStripeWebhook(t *testing.T) {
	f := newFixture(t)
	order := placeCardOrder(t, f)
	intent, _ := f.payments.GetIntent(context.Background(), order.PaymentIntentID)

	w, _ := f.request(t, http.MethodPost, "/api/webhooks/stripe", `{}`, map[string]string{"Stripe-Signature": "faux"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	intent.Status = services.IntentSucceeded
	f.payments.event = &services.PaymentEvent{Type: services.EventPaymentSucceeded, Intent: *intent}
	for i := 0; i < 3; i++ {
		w, _ = f.request(t, http.MethodPost, "/api/webhooks/stripe", `{}`, map[string]string{"Stripe-Signature": "ok"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	got, _ := f.store.Orders.Get(context.Background(), order.ID)
	assert.Equal(t, models.OrderPaid, got.Status)
	p, _ := f.store.Products.Get(context.Background(), f.serum.ID)
	assert.Equal(t, 4, p.Stock)
	assert.Len(t, f.mailer.confirmations, 1)
}

func TestStripeWebhook_PaymentFailed(t *testing.T) {
	f := newFixture(t)
	order := placeCardOrder(t, f)
	intent, _ := f.payments.GetIntent(context.Background(), order.PaymentIntentID)

	f.payments.event = &services.PaymentEvent{Type: services.EventPaymentFailed, Intent: *intent}
	w, _ := f.request(t, http.MethodPost, "/api/webhooks/stripe", `{}`, map[string]string{"Stripe-Signature": "ok"})
	require.Equal(t, http.StatusOK, w.Code)

	got, _ := f.store.Orders.Get(context.Background(), order.ID)
	assert.Equal(t, models.OrderPaymentFailed, got.Status)
}

func TestFinalizeOrder_RejectsAmountMismatch(t *testing.T) {
	f := newFixture(t)
	order := placeCardOrder(t, f)

	ok, err := f.handler.FinalizeOrder(context.Background(), order, &services.Intent{ID: "pi_x", Amount: 1})
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestFinalizeOrder_ConcurrentCallsApplyOnce(t *testing.T) {
	f := newFixture(t)
	order := placeCardOrder(t, f)
	intent := &services.Intent{ID: order.PaymentIntentID, Amount: services.ToCents(order.Total)}

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := *order
			ok, err := f.handler.FinalizeOrder(context.Background(), &o, intent)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	p, _ := f.store.Products.Get(context.Background(), f.serum.ID)
	assert.Equal(t, 4, p.Stock)
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 36.95, roundCents(30+6.95))
	assert.Equal(t, 0.3, roundCents(0.1+0.2))
}
