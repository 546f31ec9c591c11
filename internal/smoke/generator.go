package smoke

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/shopapi/internal/domain/model"
)

// Constants for random value generation.
const (
	maxPriceCents   = 100000
	maxStock        = 500
	cardNumberBase  = 4000000000000000
	cardNumberRange = 999999999999
	maxCRV          = 1000
)

func randomInt(limit int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(limit))
	if err != nil {
		return 0
	}
	return n.Int64()
}

// generateProducts creates n products with distinct titles.
func generateProducts(n int) []model.Product {
	products := make([]model.Product, n)
	for i := range products {
		sale := "no"
		if randomInt(2) == 1 {
			sale = "yes"
		}
		products[i] = model.Product{
			Title:            "smoke-" + strconv.Itoa(i),
			Description:      "smoke test product " + uuid.NewString()[:8],
			Photo:            "https://example.com/" + strconv.Itoa(i) + ".png",
			Price:            float64(randomInt(maxPriceCents)) / 100,
			Sale:             sale,
			AvailableProduct: randomInt(maxStock),
		}
	}
	return products
}

// generateUsers creates n users whose email and card number are unique per run.
func generateUsers(n int) []model.User {
	run := uuid.NewString()
	base := cardNumberBase + randomInt(cardNumberRange-int64(n))
	users := make([]model.User, n)
	for i := range users {
		users[i] = model.User{
			Email:       "smoke-" + strconv.Itoa(i) + "-" + run + "@example.com",
			FirstName:   "Smoke",
			LastName:    "User" + strconv.Itoa(i),
			Password:    uuid.NewString()[:12],
			CardNumber:  base + int64(i),
			CardCRV:     randomInt(maxCRV),
			CardAddress: strconv.Itoa(i) + " Test Street",
			CardName:    "SMOKE USER " + strconv.Itoa(i),
		}
	}
	return users
}

// mutateProduct returns the value a product is updated to.
func mutateProduct(p model.Product) model.Product {
	p.Title += "-updated"
	p.Price += 1
	p.AvailableProduct++
	return p
}

// mutateUser returns the value a user is updated to.
func mutateUser(u model.User) model.User {
	u.FirstName = "Updated"
	u.CardCRV = (u.CardCRV + 1) % maxCRV
	return u
}
