// Package model contains domain models passed between layers.
//
// Each type maps one-to-one onto a table row; JSON names match the column names.
package model

// Resource names, used as table names and as metric/log labels.
const (
	ResourceProduct = "product"
	ResourceUser    = "user"
)

// Product is a row of the product table.
type Product struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Photo            string  `json:"photo"`
	Price            float64 `json:"price"`
	Sale             string  `json:"sale"`
	AvailableProduct int64   `json:"availableProduct"`
}

// User is a row of the user table.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Password    string `json:"password"`
	CardNumber  int64  `json:"cardNumber"`
	CardCRV     int64  `json:"cardCRV"`
	CardAddress string `json:"cardAddress"`
	CardName    string `json:"cardName"`
}
