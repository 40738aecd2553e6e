package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

type ctxClaimsType string

const ctxClaimsStr ctxClaimsType = "claims"

const sessionCookie = "session"

var ErrUnauthorised = errors.New("unauthorized")

func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth.PasswordHash == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := bearerToken(r)
		if !ok {
			if c, err := r.Cookie(sessionCookie); err == nil {
				token, ok = c.Value, true
			}
		}
		var claims *models.Claims
		var err error
		if ok {
			claims, err = parseToken(token, s.auth.Secret)
		}
		if !ok || err != nil || claims.Role != models.RoleAdmin {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				s.writeResponse(w, http.StatusUnauthorized, ErrUnauthorised)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), ctxClaimsStr, claims))
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	headerParts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return "", false
	}
	return headerParts[1], true
}

func (s *Server) getClaims(ctx context.Context) *models.Claims {
	claims, ok := ctx.Value(ctxClaimsStr).(*models.Claims)
	if !ok {
		return nil
	}
	return claims
}

func (s *Server) issueToken(now time.Time) (string, error) {
	claims := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   models.RoleAdmin,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.auth.TTL)),
		},
		Role: models.RoleAdmin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.auth.Secret)
	if err != nil {
		return "", fmt.Errorf("err signing token: %w", err)
	}
	return token, nil
}

func parseToken(accessToken string, key []byte) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("err parsing token: %w", err)
	}
	claims, ok := token.Claims.(*models.Claims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

type loginPage struct {
	Version string
	Error   string
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "login", loginPage{Version: s.version, Error: msg}); err != nil {
		s.log.Warnf("err during rendering login page: %v", err)
	}
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	if s.auth.PasswordHash == "" {
		http.Redirect(w, r, eventsPath, http.StatusSeeOther)
		return
	}
	s.renderLogin(w, http.StatusOK, "")
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if s.auth.PasswordHash == "" {
		http.Redirect(w, r, eventsPath, http.StatusSeeOther)
		return
	}
	password := r.PostFormValue("password")
	if err := bcrypt.CompareHashAndPassword([]byte(s.auth.PasswordHash), []byte(password)); err != nil {
		s.log.Infof("failed login attempt from %s", r.RemoteAddr)
		s.renderLogin(w, http.StatusUnauthorized, models.ErrInvalidCredentials.Error())
		return
	}
	token, err := s.issueToken(time.Now())
	if err != nil {
		s.log.Warnf("err during issuing token: %v", err)
		s.renderLogin(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.auth.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, eventsPath, http.StatusSeeOther)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
