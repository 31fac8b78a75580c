package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"

	"github.com/vaughan-dsouza/notes/internal/models"
	"github.com/vaughan-dsouza/notes/internal/store"
	"github.com/vaughan-dsouza/notes/internal/utils"
)

const maxTitleLen = 255

type NoteHandler struct {
	store  store.Store
	logger *slog.Logger
}

func NewNoteHandler(s store.Store, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{store: s, logger: logger}
}

// optional distinguishes an absent JSON field from an explicit null.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type createNoteReq struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}

type updateNoteReq struct {
	Title   optional[string]   `json:"title"`
	Content optional[string]   `json:"content"`
	Tags    optional[[]string] `json:"tags"`
}

// ---------------------- CREATE ----------------------

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var body createNoteReq
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if body.Title == nil {
		writeError(w, r, h.logger, validationError("title is required"))
		return
	}
	if err := validateTitle(*body.Title); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	note := &models.Note{
		Title:   *body.Title,
		Content: body.Content,
		Tags:    pq.StringArray(body.Tags),
		OwnerID: user.ID,
	}

	err := h.store.WithTx(r.Context(), func(ctx context.Context, q store.Queries) error {
		return q.CreateNote(ctx, note)
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusOK, note)
}

// ---------------------- LIST ----------------------

func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var notes []models.Note
	err := h.store.WithTx(r.Context(), func(ctx context.Context, q store.Queries) error {
		var err error
		notes, err = q.ListNotes(ctx, user.ID)
		return err
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}

	utils.JSON(w, http.StatusOK, notes)
}

// ---------------------- GET ONE ----------------------

func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var note *models.Note
	err = h.store.WithTx(r.Context(), func(ctx context.Context, q store.Queries) error {
		var err error
		note, err = q.GetNote(ctx, id, user.ID)
		return err
	})
	if err != nil {
		writeError(w, r, h.logger, noteNotFound(err))
		return
	}

	utils.JSON(w, http.StatusOK, note)
}

// ---------------------- UPDATE ----------------------

// UpdateNote applies only the fields present in the body.
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var body updateNoteReq
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if body.Title.Set {
		if body.Title.Value == nil {
			writeError(w, r, h.logger, validationError("title must not be null"))
			return
		}
		if err := validateTitle(*body.Title.Value); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var note *models.Note
	err = h.store.WithTx(r.Context(), func(ctx context.Context, q store.Queries) error {
		var err error
		note, err = q.GetNote(ctx, id, user.ID)
		if err != nil {
			return err
		}

		if body.Title.Set {
			note.Title = *body.Title.Value
		}
		if body.Content.Set {
			note.Content = body.Content.Value
		}
		if body.Tags.Set {
			note.Tags = nil
			if body.Tags.Value != nil {
				note.Tags = pq.StringArray(*body.Tags.Value)
			}
		}

		return q.UpdateNote(ctx, note)
	})
	if err != nil {
		writeError(w, r, h.logger, noteNotFound(err))
		return
	}

	utils.JSON(w, http.StatusOK, note)
}

// ---------------------- DELETE ----------------------

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	err = h.store.WithTx(r.Context(), func(ctx context.Context, q store.Queries) error {
		return q.DeleteNote(ctx, id, user.ID)
	})
	if err != nil {
		writeError(w, r, h.logger, noteNotFound(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------- HELPERS ----------------------

func (h *NoteHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := utils.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, h.logger, unauthenticated("Could not validate credentials"))
	}
	return user, ok
}

func noteID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, validationError("invalid note id")
	}
	return id, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return validationError("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return validationError("title must be at most 255 characters")
	}
	return nil
}
