package product

import "github.com/MikeMC777/storefront/internal/docstore"

// Collection is the document collection products live in.
const Collection = "products"

type Product struct {
	docstore.Meta `bson:",inline"`

	Name        string  `bson:"name"        json:"name"`
	Description string  `bson:"description" json:"description"`
	Price       float64 `bson:"price"       json:"price"`
	Category    string  `bson:"category"    json:"category"`
	// ImageURL is empty when the product was created without an image.
	ImageURL string `bson:"imageUrl" json:"imageUrl"`
}
