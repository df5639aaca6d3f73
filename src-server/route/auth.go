package route

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"teamcal/src-server/model"
	"teamcal/src-server/utils"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TempKeyTTL is how long a key from the login slash command stays usable.
const TempKeyTTL = 5 * time.Minute

var (
	errInvalidTempKey = errors.New("invalid temp key")
	errTempKeyExpired = errors.New("temp key expired")
)

type AuthReqBody struct {
	TempKey string `json:"tempKey"`
}

type AuthRespBody struct {
	SessionSecret string `json:"sessionSecret"`
}

func Auth(muxer *http.ServeMux, as *utils.AppState) {
	// logout
	muxer.HandleFunc("DELETE /auth", func(w http.ResponseWriter, r *http.Request) {
		if secret := sessionSecret(r); secret != "" {
			if err := model.DeleteSession(r.Context(), as.BunDB, secret); err != nil {
				slog.Warn("can't delete session on logout", "error", err)
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:     SessionSecretCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		w.WriteHeader(http.StatusOK)
	})

	// login, exchanging the one-time key for a session
	muxer.HandleFunc("POST /auth", func(w http.ResponseWriter, r *http.Request) {
		var reqBody AuthReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil || reqBody.TempKey == "" {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		newSessionSecret := uuid.NewString()
		startTimer := time.Now()
		err := as.BunDB.RunInTx(r.Context(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			tempKeySessionModel, err := model.FindSession(ctx, tx, reqBody.TempKey, model.SESSION_MODEL_PURPOSE_TEMP)
			switch {
			case err != nil:
				return err
			case tempKeySessionModel == nil:
				return errInvalidTempKey
			}

			// one-time use
			if err := model.DeleteSession(ctx, tx, reqBody.TempKey); err != nil {
				return err
			}
			if tempKeySessionModel.Expired(TempKeyTTL, time.Now()) {
				return errTempKeyExpired
			}

			_, err = tx.NewInsert().
				Model(&model.Session{
					Secret:           newSessionSecret,
					Purpose:          model.SESSION_MODEL_PURPOSE_SESSION,
					UserID:           tempKeySessionModel.UserID,
					ChannelID:        tempKeySessionModel.ChannelID,
					CreatedAtUnixUTC: time.Now().UTC().Unix(),
				}).
				Exec(ctx)
			return err
		})
		switch {
		case errors.Is(err, errInvalidTempKey):
			respondError(w, http.StatusUnauthorized, "Invalid temp key")
			return
		case errors.Is(err, errTempKeyExpired):
			// the used key still has to go
			if err := model.DeleteSession(r.Context(), as.BunDB, reqBody.TempKey); err != nil {
				slog.Warn("can't delete expired temp key", "error", err)
			}
			respondError(w, http.StatusUnauthorized, "Temp key expired")
			return
		case err != nil:
			respondError(w, http.StatusInternalServerError, "Can't create session")
			slog.Error("can't create session", "error", err)
			return
		}
		as.MetricChans.Observe(as.MetricChans.DatabaseWrite, startTimer)

		if as.Config.GetDev() {
			respondJSON(w, http.StatusOK, AuthRespBody{SessionSecret: newSessionSecret})
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     SessionSecretCookieName,
			Value:    newSessionSecret,
			Path:     "/",
			MaxAge:   int(as.Config.GetSessionTTL().Seconds()),
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		})
		w.WriteHeader(http.StatusOK)
	})
}
