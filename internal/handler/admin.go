package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/interviewprep/internal/challenge"
	appI18n "github.com/pavelanni/interviewprep/internal/i18n"
	"github.com/pavelanni/interviewprep/internal/model"
	"github.com/pavelanni/interviewprep/internal/store"
)

type createUserRequest struct {
	Username    string         `json:"username" validate:"required,alphanum,min=3,max=50"`
	DisplayName string         `json:"display_name" validate:"max=100"`
	Password    string         `json:"password" validate:"required,min=8,max=200"`
	Role        model.UserRole `json:"role" validate:"omitempty,oneof=student admin"`
}

type importResponse struct {
	Message    string            `json:"message"`
	Challenges []model.Challenge `json:"challenges"`
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers()
	if err != nil {
		h.internalError(w, r, "failed to list users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = model.UserRoleStudent
	}

	existing, err := h.store.GetUserByUsername(req.Username)
	if err != nil {
		h.internalError(w, r, "failed to check username", err)
		return
	}
	if existing != nil {
		fail(w, r, http.StatusConflict, "UserExists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalError(w, r, "failed to hash password", err)
		return
	}
	id, err := h.store.CreateUser(model.User{
		Username:     req.Username,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	})
	if err != nil {
		h.internalError(w, r, "failed to create user", err)
		return
	}
	u, err := h.store.GetUserByID(id)
	if err != nil {
		h.internalError(w, r, "failed to load user", err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) handleToggleUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	u, err := h.store.ToggleUserActive(id)
	if err != nil {
		h.internalError(w, r, "failed to toggle user", err)
		return
	}
	if u == nil {
		fail(w, r, http.StatusNotFound, "UserNotFound")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleListChallenges returns every challenge including reference answers.
func (h *Handler) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.store.ListChallenges()
	if err != nil {
		h.internalError(w, r, "failed to list challenges", err)
		return
	}
	writeJSON(w, http.StatusOK, challenges)
}

func (h *Handler) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req model.ChallengeImport
	if !h.decode(w, r, &req) {
		return
	}
	c := store.FromImport(req)
	if err := h.store.InsertChallenge(&c); err != nil {
		h.internalError(w, r, "failed to create challenge", err)
		return
	}
	slog.Info("created challenge", "id", c.ID, "title", c.Title, "date", c.Date)
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleImportChallenges(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, appI18n.Td(r.Context(), "InvalidFile", map[string]any{"Error": err.Error()}))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, appI18n.Td(r.Context(), "InvalidFile", map[string]any{"Error": err.Error()}))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.internalError(w, r, "failed to read upload", err)
		return
	}

	hash := challenge.FileHash(data)
	imported, err := h.store.IsFileImported(hash)
	if err != nil {
		h.internalError(w, r, "failed to check import status", err)
		return
	}
	if imported {
		fail(w, r, http.StatusConflict, "FileAlreadyImported")
		return
	}

	items, err := challenge.ParseFile(data)
	if errors.Is(err, challenge.ErrInvalidFile) {
		writeError(w, http.StatusBadRequest, appI18n.Td(r.Context(), "InvalidFile", map[string]any{"Error": err.Error()}))
		return
	}
	if err != nil {
		h.internalError(w, r, "failed to parse upload", err)
		return
	}

	challenges, err := h.store.ImportChallenges(hash, header.Filename, items)
	if err != nil {
		h.internalError(w, r, "failed to import challenges", err)
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{
		Message:    appI18n.Tp(r.Context(), "ChallengesImported", len(challenges)),
		Challenges: challenges,
	})
}
