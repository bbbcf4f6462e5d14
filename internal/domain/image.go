package domain

import "time"

// ProductImage is an image file attached to a product.
type ProductImage struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	UploadedBy   string    `json:"uploaded_by"`
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

// ImageKey is the storage key for an image of a product.
func ImageKey(productID, imageID string) string {
	return "products/" + productID + "/" + imageID
}
