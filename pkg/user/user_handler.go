package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/rest"
)

type UserDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SignUpDTO struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type SignInDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{userService: userService}
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Signing up new user")

	var dto SignUpDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, &rest.ValidationError{Field: "body", Message: "invalid request body format"})
		return
	}

	created, token, err := h.userService.SignUp(r.Context(), dto.Email, dto.DisplayName, dto.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(SessionDTO{Token: token, User: userToDTO(created)}); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto SignInDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, &rest.ValidationError{Field: "body", Message: "invalid request body format"})
		return
	}

	found, token, err := h.userService.SignIn(r.Context(), dto.Email, dto.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(SessionDTO{Token: token, User: userToDTO(found)}); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// SignOut is stateless: tokens expire on their own and the client discards
// its copy. The endpoint exists so the client flow has a definite end.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	current, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(userToDTO(current)); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func userToDTO(u User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
