package rest

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

const toastCookie = "toast"

type Toast struct {
	ID      string `json:"id"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// setToast stores a toast for the next page view.
func setToast(w http.ResponseWriter, level, message string) {
	raw, err := json.Marshal(Toast{ID: uuid.NewString(), Level: level, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     toastCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popToast returns the pending toast, if any, and clears it so it is shown once.
func popToast(w http.ResponseWriter, r *http.Request) *Toast {
	c, err := r.Cookie(toastCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     toastCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var t Toast
	if err = json.Unmarshal(raw, &t); err != nil || t.Message == "" {
		return nil
	}
	return &t
}

// pageEffects collects what a successful form submission asks of the page.
// Close and Refresh are both delivered as a redirect back to the list.
type pageEffects struct {
	toasts  []string
	close   bool
	refresh bool
}

func (e *pageEffects) Toast(message string) { e.toasts = append(e.toasts, message) }
func (e *pageEffects) Close()               { e.close = true }
func (e *pageEffects) Refresh()             { e.refresh = true }

func (e *pageEffects) apply(w http.ResponseWriter, r *http.Request) bool {
	if !e.close && !e.refresh {
		return false
	}
	for _, msg := range e.toasts {
		setToast(w, "success", msg)
	}
	http.Redirect(w, r, eventsPath, http.StatusSeeOther)
	return true
}
