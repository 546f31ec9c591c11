package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/okian/shopapi/internal/domain/model"
	"github.com/okian/shopapi/pkg/logger"
)

const (
	opCreateProduct = "api.create_product"
	opListProducts  = "api.list_products"
	opGetProduct    = "api.get_product"
	opUpdateProduct = "api.update_product"
	opDeleteProduct = "api.delete_product"
)

// ProductDependencies is the product store as seen by the HTTP layer.
type ProductDependencies interface {
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	UpdateProduct(ctx context.Context, id int64, p model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) (model.Product, error)
}

// ProductsHandler serves the product routes.
type ProductsHandler struct {
	deps   ProductDependencies
	logger logger.Logger
}

// NewProductsHandler creates a new products handler.
func NewProductsHandler(deps ProductDependencies, log logger.Logger) *ProductsHandler {
	return &ProductsHandler{deps: deps, logger: log}
}

// HandleCreate handles POST /product.
func (h *ProductsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProduct(opCreateProduct, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	created, err := h.deps.CreateProduct(r.Context(), p)
	if err != nil {
		respondError(w, r, h.logger, Wrap(opCreateProduct, err))
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// HandleList handles GET /products.
func (h *ProductsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.deps.ListProducts(r.Context())
	if err != nil {
		respondError(w, r, h.logger, Wrap(opListProducts, err))
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// HandleGet handles GET /product/{id}.
func (h *ProductsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(opGetProduct, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	p, err := h.deps.GetProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, Wrap(opGetProduct, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdate handles PUT /product/{id}.
func (h *ProductsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(opUpdateProduct, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	p, err := decodeProduct(opUpdateProduct, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	updated, err := h.deps.UpdateProduct(r.Context(), id, p)
	if err != nil {
		respondError(w, r, h.logger, Wrap(opUpdateProduct, err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /product/{id}.
func (h *ProductsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(opDeleteProduct, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	deleted, err := h.deps.DeleteProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, Wrap(opDeleteProduct, err))
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

func decodeProduct(op string, r *http.Request) (model.Product, error) {
	f, err := decodeFields(op, r)
	if err != nil {
		return model.Product{}, err
	}
	fr := fieldReader{f: f}
	p := model.Product{
		Title:            fr.text("title"),
		Description:      fr.text("description"),
		Photo:            fr.text("photo"),
		Price:            fr.number("price"),
		Sale:             fr.text("sale"),
		AvailableProduct: fr.integer("availableProduct"),
	}
	if fr.err != nil {
		return model.Product{}, WrapKind(op, ErrBadRequest, fr.err)
	}
	return p, nil
}

// pathID parses the {id} route variable.
func pathID(op string, r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid id %q", raw))
	}
	return id, nil
}
