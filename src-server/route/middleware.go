package route

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"teamcal/src-server/model"
	"teamcal/src-server/utils"
	"time"
)

type SessionCtxKeyType string

const (
	SessionCtxKey           SessionCtxKeyType = "session"
	SessionSecretCookieName string            = "session-secret"
)

// sessionSecret reads the secret from the cookie, falling back to a bearer token.
func sessionSecret(r *http.Request) string {
	if sessionCookie, err := r.Cookie(SessionSecretCookieName); err == nil {
		if secret := strings.TrimSpace(sessionCookie.Value); secret != "" {
			return secret
		}
	}
	if auth, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(auth)
	}
	return ""
}

func AuthMiddleware(as *utils.AppState, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := sessionSecret(r)
		if secret == "" {
			respondError(w, http.StatusUnauthorized, "Session secret not found")
			return
		}

		startTimer := time.Now()
		sessionModel, err := model.FindSession(r.Context(), as.BunDB, secret, model.SESSION_MODEL_PURPOSE_SESSION)
		switch {
		case err != nil:
			respondError(w, http.StatusInternalServerError, "Can't check if session exists in DB")
			slog.Error("can't check if session exists in DB", "error", err)
			return
		case sessionModel == nil:
			respondError(w, http.StatusUnauthorized, "Session secret not found")
			return
		}
		as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)

		if sessionModel.Expired(as.Config.GetSessionTTL(), time.Now()) {
			if err := model.DeleteSession(r.Context(), as.BunDB, secret); err != nil {
				respondError(w, http.StatusInternalServerError, "Can't delete session model in DB")
				slog.Error("can't delete session model in DB", "error", err)
				return
			}
			respondError(w, http.StatusUnauthorized, "Session expired")
			return
		}

		ctx := context.WithValue(r.Context(), SessionCtxKey, sessionModel)
		next(w, r.WithContext(ctx))
	}
}

func sessionFromContext(ctx context.Context) (*model.Session, bool) {
	sessionModel, ok := ctx.Value(SessionCtxKey).(*model.Session)
	return sessionModel, ok && sessionModel != nil
}
