package repository

import (
	"context"
	"fmt"
	"time"

	"cosmetics_back_end/internal/models"

	"github.com/gocql/gocql"
)

const productColumns = `product_id, name, slug, brand, description, price, stock, low_stock_threshold, sku, weight,
	category_id, image_urls, tags, is_active, created_at, updated_at`

// stockCASRetries borne le nombre de tentatives LWT sur le stock.
const stockCASRetries = 5

type ScyllaProducts struct {
	session *gocql.Session
}

func NewScyllaProducts(session *gocql.Session) *ScyllaProducts {
	return &ScyllaProducts{session: session}
}

func productDest(p *models.Product) []interface{} {
	return []interface{}{&p.ID, &p.Name, &p.Slug, &p.Brand, &p.Description, &p.Price, &p.Stock, &p.LowStockThreshold,
		&p.SKU, &p.Weight, &p.CategoryID, &p.ImageURLs, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt}
}

func (r *ScyllaProducts) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var (
		products []models.Product
		err      error
	)

	if filter.CategoryID != nil {
		products, err = r.listByCategory(ctx, *filter.CategoryID)
	} else {
		products, err = r.scan(r.session.Query(`SELECT `+productColumns+` FROM products`).WithContext(ctx))
	}
	if err != nil {
		return nil, err
	}

	if !filter.ActiveOnly {
		return products, nil
	}
	active := products[:0]
	for _, p := range products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

func (r *ScyllaProducts) listByCategory(ctx context.Context, categoryID gocql.UUID) ([]models.Product, error) {
	iter := r.session.Query(`SELECT product_id FROM products_by_category WHERE category_id = ?`, categoryID).
		WithContext(ctx).Iter()

	var (
		ids []gocql.UUID
		id  gocql.UUID
	)
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture products_by_category: %w", err)
	}
	return r.GetMany(ctx, ids)
}

func (r *ScyllaProducts) scan(q *gocql.Query) ([]models.Product, error) {
	iter := q.Iter()
	products := []models.Product{}

	var p models.Product
	for iter.Scan(productDest(&p)...) {
		products = append(products, p)
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture produits: %w", err)
	}
	return products, nil
}

func (r *ScyllaProducts) Get(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	var p models.Product
	q := r.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).WithContext(ctx)
	if err := q.Scan(productDest(&p)...); err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (r *ScyllaProducts) GetMany(ctx context.Context, ids []gocql.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	q := r.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id IN ?`, ids).WithContext(ctx)
	return r.scan(q)
}

func (r *ScyllaProducts) Create(ctx context.Context, p *models.Product) error {
	if p.ID == (gocql.UUID{}) {
		p.ID = gocql.TimeUUID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Slug, p.Brand, p.Description, p.Price, p.Stock, p.LowStockThreshold, p.SKU, p.Weight,
		p.CategoryID, p.ImageURLs, p.Tags, p.IsActive, p.CreatedAt, p.UpdatedAt)
	batch.Query(`INSERT INTO products_by_category (category_id, product_id) VALUES (?, ?)`, p.CategoryID, p.ID)

	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("création produit: %w", err)
	}
	return nil
}

func (r *ScyllaProducts) Update(ctx context.Context, p *models.Product) error {
	current, err := r.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	// stock exclu : seule AdjustStock l'écrit (LWT)
	batch.Query(`UPDATE products SET name = ?, slug = ?, brand = ?, description = ?, price = ?,
		low_stock_threshold = ?, sku = ?, weight = ?, category_id = ?, image_urls = ?, tags = ?, is_active = ?, updated_at = ?
		WHERE product_id = ?`,
		p.Name, p.Slug, p.Brand, p.Description, p.Price, p.LowStockThreshold, p.SKU, p.Weight,
		p.CategoryID, p.ImageURLs, p.Tags, p.IsActive, p.UpdatedAt, p.ID)
	if current.CategoryID != p.CategoryID {
		batch.Query(`DELETE FROM products_by_category WHERE category_id = ? AND product_id = ?`, current.CategoryID, p.ID)
		batch.Query(`INSERT INTO products_by_category (category_id, product_id) VALUES (?, ?)`, p.CategoryID, p.ID)
	}

	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("mise à jour produit: %w", err)
	}
	p.Stock = current.Stock
	return nil
}

func (r *ScyllaProducts) Delete(ctx context.Context, id gocql.UUID) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM products WHERE product_id = ?`, id)
	batch.Query(`DELETE FROM products_by_category WHERE category_id = ? AND product_id = ?`, current.CategoryID, id)

	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("suppression produit: %w", err)
	}
	return nil
}

// AdjustStock applique delta via une transaction légère (IF stock = ?) pour
// ne jamais écraser une décrémentation concurrente.
func (r *ScyllaProducts) AdjustStock(ctx context.Context, id gocql.UUID, delta int) (int, error) {
	var stock int
	if err := r.session.Query(`SELECT stock FROM products WHERE product_id = ?`, id).
		WithContext(ctx).Scan(&stock); err != nil {
		return 0, mapNotFound(err)
	}

	for attempt := 0; attempt < stockCASRetries; attempt++ {
		next := stock + delta
		if next < 0 {
			return stock, ErrInsufficientStock
		}

		var current int
		applied, err := r.session.Query(`UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ? IF stock = ?`,
			next, time.Now().UTC(), id, stock).WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return 0, fmt.Errorf("mise à jour stock: %w", err)
		}
		if applied {
			return next, nil
		}
		stock = current
	}
	return stock, ErrConflict
}
