package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cosmetics_back_end/internal/models"

	"github.com/gocql/gocql"
)

type ScyllaCategories struct {
	session *gocql.Session
}

func NewScyllaCategories(session *gocql.Session) *ScyllaCategories {
	return &ScyllaCategories{session: session}
}

func (r *ScyllaCategories) List(ctx context.Context) ([]models.Category, error) {
	iter := r.session.Query(`SELECT category_id, name, slug, description, image_url, created_at FROM categories`).
		WithContext(ctx).Iter()

	categories := []models.Category{}
	var c models.Category
	for iter.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.CreatedAt) {
		categories = append(categories, c)
		c = models.Category{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture catégories: %w", err)
	}

	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *ScyllaCategories) Get(ctx context.Context, id gocql.UUID) (*models.Category, error) {
	var c models.Category
	err := r.session.Query(`SELECT category_id, name, slug, description, image_url, created_at FROM categories WHERE category_id = ?`, id).
		WithContext(ctx).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &c, nil
}

func (r *ScyllaCategories) Create(ctx context.Context, c *models.Category) error {
	if c.ID == (gocql.UUID{}) {
		c.ID = gocql.TimeUUID()
	}
	c.CreatedAt = time.Now().UTC()

	if err := r.session.Query(`INSERT INTO categories (category_id, name, slug, description, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.CreatedAt).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("création catégorie: %w", err)
	}
	return nil
}
