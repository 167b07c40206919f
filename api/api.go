package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/openlearn/lms-api/api/background"
	"github.com/openlearn/lms-api/api/middleware"
	"github.com/openlearn/lms-api/api/web"
	"github.com/openlearn/lms-api/config"
	"github.com/openlearn/lms-api/core/auth"
	"github.com/openlearn/lms-api/core/course"
	"github.com/openlearn/lms-api/core/payment"
	"github.com/openlearn/lms-api/core/user"
	"github.com/openlearn/lms-api/media"
	"github.com/openlearn/lms-api/rate"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	DB               *sqlx.DB
	Session          *scs.SessionManager
	Background       *background.Background
	Media            *media.Client
	Razorpay         *razorpay.Client
	RazorpayCfg      config.Razorpay
	Upload           config.Upload
	Limiter          *rate.Limiter
	Providers        map[string]auth.Provider
	LoginRedirectURL string
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.Limiter != nil {
		a.mw = append(a.mw, middleware.RateLimit(cfg.Limiter))
	}

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Session, cfg.Providers, cfg.LoginRedirectURL))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)

	// The lecture routes mirror the dashboard client: lectures ride on the
	// course collection, identified by courseId+lectureId query params.
	a.Handle(http.MethodPost, "/courses/duration", course.HandleProbeDuration(), admin)
	a.Handle(http.MethodGet, "/courses/{id}", course.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPut, "/courses/{id}", course.HandleUpdate(cfg.DB, cfg.Media, cfg.Upload), admin)
	a.Handle(http.MethodDelete, "/courses/{id}", course.HandleDelete(cfg.DB, cfg.Media, cfg.Background), admin)
	a.Handle(http.MethodPost, "/courses/{id}", course.HandleAddLecture(cfg.DB, cfg.Media, cfg.Upload, cfg.Log), admin)
	a.Handle(http.MethodGet, "/courses", course.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/courses", course.HandleCreate(cfg.DB, cfg.Media, cfg.Upload), admin)
	a.Handle(http.MethodPut, "/courses", course.HandleUpdateLecture(cfg.DB, cfg.Media, cfg.Upload, cfg.Log), admin)
	a.Handle(http.MethodDelete, "/courses", course.HandleDeleteLecture(cfg.DB, cfg.Media, cfg.Background), admin)

	a.Handle(http.MethodGet, "/payments/razorpay-key", payment.HandleKey(cfg.RazorpayCfg), authen)
	a.Handle(http.MethodPost, "/payments/subscribe", payment.HandleSubscribe(cfg.DB, cfg.Razorpay), authen)
	a.Handle(http.MethodPost, "/payments/verify", payment.HandleVerify(cfg.DB, cfg.RazorpayCfg), authen)
	a.Handle(http.MethodPost, "/payments/unsubscribe", payment.HandleCancel(), authen)
	a.Handle(http.MethodGet, "/payments", payment.HandleList(cfg.Razorpay), admin)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
