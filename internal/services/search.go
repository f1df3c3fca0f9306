package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"cosmetics_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ErrSearchUnavailable indique qu'il faut se rabattre sur la base.
var ErrSearchUnavailable = errors.New("client Elasticsearch non initialisé")

type ProductSearch interface {
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

type ElasticSearch struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticSearch(client *elasticsearch.Client, index string) *ElasticSearch {
	if index == "" {
		index = "products"
	}
	return &ElasticSearch{client: client, index: index}
}

// Document indexé : uniquement les champs cherchables
type productDocument struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"category_id"`
	Price       float64  `json:"price"`
	IsActive    bool     `json:"is_active"`
}

func (s *ElasticSearch) Index(ctx context.Context, p models.Product) error {
	if s == nil || s.client == nil {
		return ErrSearchUnavailable
	}

	data, err := json.Marshal(productDocument{
		ID:          p.ID.String(),
		Name:        p.Name,
		Brand:       p.Brand,
		Description: p.Description,
		Tags:        p.Tags,
		CategoryID:  p.CategoryID.String(),
		Price:       p.Price,
		IsActive:    p.IsActive,
	})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: p.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("erreur envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elastic a refusé %s: %s", p.Name, res.String())
	}
	log.Printf("✅ Produit indexé dans Elasticsearch: %s", p.Name)
	return nil
}

func (s *ElasticSearch) Delete(ctx context.Context, id string) error {
	if s == nil || s.client == nil {
		return ErrSearchUnavailable
	}

	req := esapi.DeleteRequest{Index: s.index, DocumentID: id, Refresh: "true"}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("erreur suppression Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("elastic a refusé la suppression de %s: %s", id, res.String())
	}
	return nil
}

// Search retourne les identifiants des produits actifs correspondant à query.
func (s *ElasticSearch) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if s == nil || s.client == nil {
		return nil, ErrSearchUnavailable
	}

	body, err := searchBody(query, limit)
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("❌ Elasticsearch erreur: %s", res.String())
		return nil, ErrSearchUnavailable
	}
	return parseHits(res.Body)
}

func searchBody(query string, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = 20
	}
	q := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"name^3", "brand^2", "description", "tags"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"is_active": true},
				},
			},
		},
	}
	return json.Marshal(q)
}

func parseHits(r io.Reader) ([]string, error) {
	var out struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %w", err)
	}

	ids := make([]string, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
