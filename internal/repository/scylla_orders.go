package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"cosmetics_back_end/internal/models"

	"github.com/gocql/gocql"
)

const orderColumns = `order_id, user_id, email, items, shipping_address, shipping_method_id, shipping_method_name,
	shipping_price, subtotal, total, currency, payment_method, payment_intent_id, payment_reference, status, created_at, updated_at`

// Les lignes et l'adresse sont stockées en JSON (colonnes text).
type ScyllaOrders struct {
	session *gocql.Session
}

func NewScyllaOrders(session *gocql.Session) *ScyllaOrders {
	return &ScyllaOrders{session: session}
}

type orderRow struct {
	order    models.Order
	items    string
	shipping string
}

func (row *orderRow) dest() []interface{} {
	o := &row.order
	return []interface{}{&o.ID, &o.UserID, &o.Email, &row.items, &row.shipping, &o.ShippingMethodID, &o.ShippingMethodName,
		&o.ShippingPrice, &o.Subtotal, &o.Total, &o.Currency, &o.PaymentMethod, &o.PaymentIntentID, &o.PaymentReference,
		&o.Status, &o.CreatedAt, &o.UpdatedAt}
}

func (row *orderRow) decode() (models.Order, error) {
	o := row.order
	o.Items = []models.OrderItem{}
	if row.items != "" {
		if err := json.Unmarshal([]byte(row.items), &o.Items); err != nil {
			return o, fmt.Errorf("décodage lignes commande %s: %w", o.ID, err)
		}
	}
	if row.shipping != "" {
		if err := json.Unmarshal([]byte(row.shipping), &o.ShippingAddress); err != nil {
			return o, fmt.Errorf("décodage adresse commande %s: %w", o.ID, err)
		}
	}
	return o, nil
}

func (r *ScyllaOrders) Create(ctx context.Context, o *models.Order) error {
	if o.ID == (gocql.UUID{}) {
		o.ID = gocql.TimeUUID()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encodage lignes: %w", err)
	}
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encodage adresse: %w", err)
	}

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.Email, string(items), string(shipping), o.ShippingMethodID, o.ShippingMethodName,
		o.ShippingPrice, o.Subtotal, o.Total, o.Currency, o.PaymentMethod, o.PaymentIntentID, o.PaymentReference,
		o.Status, o.CreatedAt, o.UpdatedAt)
	batch.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id) VALUES (?, ?, ?)`, o.UserID, o.CreatedAt, o.ID)
	if o.PaymentIntentID != "" {
		batch.Query(`INSERT INTO orders_by_payment_intent (payment_intent_id, order_id) VALUES (?, ?)`, o.PaymentIntentID, o.ID)
	}

	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("création commande: %w", err)
	}
	return nil
}

func (r *ScyllaOrders) Get(ctx context.Context, id gocql.UUID) (*models.Order, error) {
	var row orderRow
	if err := r.session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, id).
		WithContext(ctx).Scan(row.dest()...); err != nil {
		return nil, mapNotFound(err)
	}
	o, err := row.decode()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ScyllaOrders) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var id gocql.UUID
	if err := r.session.Query(`SELECT order_id FROM orders_by_payment_intent WHERE payment_intent_id = ?`, paymentIntentID).
		WithContext(ctx).Scan(&id); err != nil {
		return nil, mapNotFound(err)
	}
	return r.Get(ctx, id)
}

func (r *ScyllaOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	iter := r.session.Query(`SELECT order_id FROM orders_by_user WHERE user_id = ?`, userID).WithContext(ctx).Iter()

	var (
		ids []gocql.UUID
		id  gocql.UUID
	)
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture orders_by_user: %w", err)
	}
	if len(ids) == 0 {
		return []models.Order{}, nil
	}

	return r.list(r.session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id IN ?`, ids).WithContext(ctx), "")
}

func (r *ScyllaOrders) List(ctx context.Context, status string) ([]models.Order, error) {
	return r.list(r.session.Query(`SELECT `+orderColumns+` FROM orders`).WithContext(ctx), status)
}

func (r *ScyllaOrders) list(q *gocql.Query, status string) ([]models.Order, error) {
	iter := q.Iter()
	orders := []models.Order{}

	var row orderRow
	for iter.Scan(row.dest()...) {
		o, err := row.decode()
		if err != nil {
			iter.Close()
			return nil, err
		}
		if status == "" || o.Status == status {
			orders = append(orders, o)
		}
		row = orderRow{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture commandes: %w", err)
	}

	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (r *ScyllaOrders) SetPaymentIntent(ctx context.Context, id gocql.UUID, paymentIntentID string) error {
	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`UPDATE orders SET payment_intent_id = ?, updated_at = ? WHERE order_id = ?`, paymentIntentID, time.Now().UTC(), id)
	batch.Query(`INSERT INTO orders_by_payment_intent (payment_intent_id, order_id) VALUES (?, ?)`, paymentIntentID, id)
	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("enregistrement paiement: %w", err)
	}
	return nil
}

func (r *ScyllaOrders) UpdateStatus(ctx context.Context, id gocql.UUID, status string) error {
	applied, err := r.session.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ? IF EXISTS`,
		status, time.Now().UTC(), id).WithContext(ctx).ScanCAS()
	if err != nil {
		return fmt.Errorf("mise à jour statut: %w", err)
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

func (r *ScyllaOrders) TransitionStatus(ctx context.Context, id gocql.UUID, from, to string) (bool, error) {
	var current string
	applied, err := r.session.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ? IF status = ?`,
		to, time.Now().UTC(), id, from).WithContext(ctx).ScanCAS(&current)
	if err != nil {
		return false, fmt.Errorf("transition statut: %w", err)
	}
	return applied, nil
}
