package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/openlearn/lms-api/api/web"
	"github.com/openlearn/lms-api/api/weberr"
	"github.com/openlearn/lms-api/core/claims"
	"github.com/openlearn/lms-api/core/user"
	"github.com/openlearn/lms-api/validate"
	"golang.org/x/crypto/bcrypt"
)

const uniqueViolation = "23505"

type authResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	User    user.User `json:"user"`
}

func HandleSignup(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var us user.UserSignup
		if err := web.Decode(w, r, &us); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(us); err != nil {
			return weberr.Validation(err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(us.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		u := user.User{
			ID:           validate.GenerateID(),
			Name:         us.Name,
			Email:        us.Email,
			Role:         claims.RoleUser,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, u); err != nil {
			var pqerr *pq.Error
			if errors.As(err, &pqerr) && pqerr.Code == uniqueViolation {
				return weberr.NewError(err, "email already registered", http.StatusConflict)
			}
			return err
		}

		if err := login(ctx, session, u.ID, u.Role); err != nil {
			return err
		}

		resp := authResponse{true, "User registered successfully", u}
		return web.Respond(ctx, w, resp, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var ul user.UserLogin
		if err := web.Decode(w, r, &ul); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(ul); err != nil {
			return weberr.Validation(err)
		}

		u, err := user.FetchByEmail(ctx, db, ul.Email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return weberr.NotAuthorized(err)
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(ul.Password)); err != nil {
			return weberr.NotAuthorized(errors.New("wrong password"))
		}

		if err := login(ctx, session, u.ID, u.Role); err != nil {
			return err
		}

		resp := authResponse{true, "User logged in successfully", u}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
