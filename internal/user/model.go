package user

import "github.com/MikeMC777/storefront/internal/docstore"

// Collection is the document collection users live in.
const Collection = "users"

type Address struct {
	Name      string `bson:"name"      json:"name"`
	Address   string `bson:"address"   json:"address"`
	IsDefault bool   `bson:"isDefault" json:"isDefault"`
}

type Preferences struct {
	FavoriteItems        []string `bson:"favoriteItems"        json:"favoriteItems"`
	DeliveryInstructions string   `bson:"deliveryInstructions" json:"deliveryInstructions"`
}

// User is identified by its normalised email.
type User struct {
	docstore.Meta `bson:",inline"`

	Email       string      `bson:"email"       json:"email"`
	Name        string      `bson:"name"        json:"name"`
	Nickname    string      `bson:"nickname"    json:"nickname"`
	Phone       string      `bson:"phone"       json:"phone"`
	Addresses   []Address   `bson:"addresses"   json:"addresses"`
	Preferences Preferences `bson:"preferences" json:"preferences"`
}
