package api

import (
	"context"
	"net/http"

	"github.com/okian/shopapi/internal/domain/model"
	"github.com/okian/shopapi/pkg/logger"
)

const (
	opCreateUser = "api.create_user"
	opListUsers  = "api.list_users"
	opGetUser    = "api.get_user"
	opUpdateUser = "api.update_user"
	opDeleteUser = "api.delete_user"
)

// UserDependencies is the user store as seen by the HTTP layer.
type UserDependencies interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	UpdateUser(ctx context.Context, id int64, u model.User) (model.User, error)
	DeleteUser(ctx context.Context, id int64) (model.User, error)
}

// UsersHandler serves the user routes.
type UsersHandler struct {
	deps   UserDependencies
	logger logger.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps UserDependencies, log logger.Logger) *UsersHandler {
	return &UsersHandler{deps: deps, logger: log}
}

// HandleCreate handles POST /user.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, err := decodeUser(opCreateUser, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	created, err := h.deps.CreateUser(r.Context(), u)
	if err != nil {
		respondError(w, r, h.logger, Wrap(opCreateUser, err))
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// HandleList handles GET /users.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.deps.ListUsers(r.Context())
	if err != nil {
		respondError(w, r, h.logger, Wrap(opListUsers, err))
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGet handles GET /user/{id}.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(opGetUser, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	u, err := h.deps.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, Wrap(opGetUser, err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleUpdate handles PUT /user/{id}.
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(opUpdateUser, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	u, err := decodeUser(opUpdateUser, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	updated, err := h.deps.UpdateUser(r.Context(), id, u)
	if err != nil {
		respondError(w, r, h.logger, Wrap(opUpdateUser, err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /user/{id}.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(opDeleteUser, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	deleted, err := h.deps.DeleteUser(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, Wrap(opDeleteUser, err))
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

func decodeUser(op string, r *http.Request) (model.User, error) {
	f, err := decodeFields(op, r)
	if err != nil {
		return model.User{}, err
	}
	fr := fieldReader{f: f}
	u := model.User{
		Email:       fr.text("email"),
		FirstName:   fr.text("firstName"),
		LastName:    fr.text("lastName"),
		Password:    fr.text("password"),
		CardNumber:  fr.integer("cardNumber"),
		CardCRV:     fr.integer("cardCRV"),
		CardAddress: fr.text("cardAddress"),
		CardName:    fr.text("cardName"),
	}
	if fr.err != nil {
		return model.User{}, WrapKind(op, ErrBadRequest, fr.err)
	}
	return u, nil
}
