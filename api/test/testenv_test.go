package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/openlearn/lms-api/api"
	"github.com/openlearn/lms-api/api/background"
	"github.com/openlearn/lms-api/config"
	"github.com/openlearn/lms-api/core/claims"
	"github.com/openlearn/lms-api/core/user"
	"github.com/openlearn/lms-api/database"
	"github.com/openlearn/lms-api/media"
	"github.com/openlearn/lms-api/validate"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminEmail = "admin@test.com"
	AdminPass  = "admin-pass-123"
	UserEmail  = "user@test.com"
	UserPass   = "user-pass-123"

	RazorpayKey    = "rzp_test_key"
	RazorpaySecret = "rzp_test_secret"
)

type TestEnv struct {
	URL        string
	DB         *sqlx.DB
	UserID     string
	AdminID    string
	Razorpay   *mockRazorpay
	Cloudinary *mockCloudinary

	client *http.Client
}

// NewTestEnv creates a dedicated database named after the suite, migrates
// it, seeds an admin and a regular user, and serves the full API with the
// media host and payment gateway mocked out.
func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	admindb, err := database.Open(dbConfig("postgres"))
	if err != nil {
		return nil, fmt.Errorf("opening admin db: %w", err)
	}
	defer admindb.Close()

	if _, err := admindb.Exec("CREATE DATABASE " + name); err != nil {
		return nil, fmt.Errorf("creating database %s: %w", name, err)
	}

	db, err := database.Open(dbConfig(name))
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", name, err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating db %s: %w", name, err)
	}

	env := &TestEnv{DB: db}

	if env.AdminID, err = seedUser(db, "Admin", AdminEmail, AdminPass, claims.RoleAdmin); err != nil {
		return nil, err
	}
	if env.UserID, err = seedUser(db, "User", UserEmail, UserPass, claims.RoleUser); err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	env.Cloudinary = newMockCloudinary()
	cldSrv := httptest.NewServer(env.Cloudinary.handle())
	t.Cleanup(cldSrv.Close)

	cld, err := cloudinary.NewFromParams("testcloud", "key", "secret")
	if err != nil {
		return nil, fmt.Errorf("building cloudinary client: %w", err)
	}
	cld.Config.API.UploadPrefix = cldSrv.URL

	env.Razorpay = newMockRazorpay()
	rzSrv := httptest.NewServer(env.Razorpay.handle())
	t.Cleanup(rzSrv.Close)

	rz := razorpay.NewClient(RazorpayKey, RazorpaySecret)
	rz.Order.Request.BaseURL = rzSrv.URL

	session := scs.New()
	session.Lifetime = time.Hour

	bg := background.New(log)

	mux := api.APIMux(api.APIConfig{
		Log:         log,
		DB:          db,
		Session:     session,
		Background:  bg,
		Media:       media.New(cld, "Learning-Management-System"),
		Razorpay:    rz,
		RazorpayCfg: config.Razorpay{KeyID: RazorpayKey, KeySecret: RazorpaySecret},
		Upload:      config.Upload{Dir: t.TempDir(), MaxBytes: 32 << 20},
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	env.URL = srv.URL

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	env.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return env, nil
}

func dbConfig(name string) config.DB {
	return config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       dbHost,
		Name:       name,
		DisableTLS: true,
	}
}

func seedUser(db *sqlx.DB, name, email, pass, role string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           validate.GenerateID(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Create(context.Background(), db, u); err != nil {
		return "", fmt.Errorf("seeding user %s: %w", email, err)
	}

	return u.ID, nil
}

func (env *TestEnv) Client() *http.Client { return env.client }

func (env *TestEnv) Login(email, pass string) error {
	body, err := json.Marshal(map[string]string{"email": email, "password": pass})
	if err != nil {
		return err
	}

	w, err := env.client.Post(env.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("login as %s: status code %s", email, w.Status)
	}
	return nil
}

func (env *TestEnv) Logout() error {
	w, err := env.client.Post(env.URL+"/auth/logout", "application/json", nil)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout: status code %s", w.Status)
	}
	return nil
}

type mockCloudinary struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
}

func newMockCloudinary() *mockCloudinary {
	return &mockCloudinary{}
}

// Destroyed returns the public ids destroyed so far. Destroys scheduled on
// the background runner land here eventually, not synchronously.
func (m *mockCloudinary) Destroyed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.destroyed))
	copy(out, m.destroyed)
	return out
}

func (m *mockCloudinary) handle() http.Handler {
	upload := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.uploads++
		publicID := fmt.Sprintf("Learning-Management-System/asset-%d", m.uploads)
		m.mu.Unlock()

		resp := map[string]string{
			"public_id":  publicID,
			"secure_url": "https://res.cloudinary.test/" + publicID,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	destroy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		m.mu.Lock()
		m.destroyed = append(m.destroyed, r.FormValue("public_id"))
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	})

	r := mux.NewRouter()
	r.Handle("/v1_1/{cloud}/{rtype}/upload", upload).Methods("POST")
	r.Handle("/v1_1/{cloud}/{rtype}/destroy", destroy).Methods("POST")
	return r
}

type mockRazorpay struct {
	mu     sync.Mutex
	serial int
	orders []map[string]interface{}
}

func newMockRazorpay() *mockRazorpay {
	return &mockRazorpay{}
}

func (m *mockRazorpay) Orders() []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]interface{}, len(m.orders))
	copy(out, m.orders)
	return out
}

func (m *mockRazorpay) handle() http.Handler {
	create := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		m.mu.Lock()
		m.serial++
		ord := map[string]interface{}{
			"id":       fmt.Sprintf("order_test%d", m.serial),
			"entity":   "order",
			"amount":   body["amount"],
			"currency": body["currency"],
			"receipt":  body["receipt"],
			"status":   "created",
		}
		m.orders = append(m.orders, ord)
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ord)
	})

	list := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		resp := map[string]interface{}{
			"entity": "collection",
			"count":  len(m.orders),
			"items":  m.orders,
		}
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	r := mux.NewRouter()
	r.Handle("/orders", create).Methods("POST")
	r.Handle("/orders", list).Methods("GET")
	return r
}
