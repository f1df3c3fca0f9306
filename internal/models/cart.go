package models

type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Weight    float64 `json:"weight"` // grammes, unitaire
	ImageURL  string  `json:"image_url,omitempty"`
}

// Subtotal = Σ prix × quantité.
func (c Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Weight = Σ poids × quantité, en grammes, hors emballage.
func (c Cart) Weight() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Weight * float64(item.Quantity)
	}
	return total
}

// Count retourne le nombre total d'articles.
func (c Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c Cart) Find(productID string) (int, bool) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

// Add ajoute quantity au produit (ou crée la ligne).
func (c *Cart) Add(item CartItem) {
	if i, ok := c.Find(item.ProductID); ok {
		c.Items[i].Quantity += item.Quantity
		c.Items[i].Name = item.Name
		c.Items[i].Price = item.Price
		c.Items[i].Weight = item.Weight
		c.Items[i].ImageURL = item.ImageURL
		return
	}
	c.Items = append(c.Items, item)
}

// SetQuantity fixe la quantité d'une ligne ; 0 supprime la ligne.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	i, ok := c.Find(productID)
	if !ok {
		return false
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = quantity
	return true
}

func (c *Cart) Remove(productID string) bool {
	return c.SetQuantity(productID, 0)
}
