package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/openlearn/lms-api/api/web"
	"github.com/openlearn/lms-api/api/weberr"
	"github.com/openlearn/lms-api/config"
	"github.com/openlearn/lms-api/core/claims"
	"github.com/openlearn/lms-api/core/user"
	"github.com/openlearn/lms-api/database"
	"github.com/openlearn/lms-api/random"
	"github.com/openlearn/lms-api/validate"
	razorpay "github.com/razorpay/razorpay-go"
)

func currentUser(ctx context.Context, db *sqlx.DB) (user.User, error) {
	clm, err := claims.Get(ctx)
	if err != nil {
		return user.User{}, weberr.NotAuthorized(errors.New("user not authenticated"))
	}

	u, err := user.Fetch(ctx, db, clm.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, weberr.NotAuthorized(errors.New("unauthorized, please login"))
		}
		return user.User{}, err
	}

	return u, nil
}

// HandleKey surfaces the gateway key id the frontend needs to open the
// checkout widget. The secret never leaves the server.
func HandleKey(cfg config.Razorpay) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		resp := struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Key     string `json:"key"`
		}{true, "Razorpay API Key", cfg.KeyID}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleSubscribe(db *sqlx.DB, rz *razorpay.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		u, err := currentUser(ctx, db)
		if err != nil {
			return err
		}

		if claims.IsAdmin(ctx) {
			return weberr.Forbidden(errors.New("admin cannot purchase a subscription"))
		}

		var on OrderNew
		if err := web.Decode(w, r, &on); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(on); err != nil {
			return weberr.Validation(err)
		}

		data := map[string]interface{}{
			"amount":   on.CoursePrice * 100,
			"currency": "INR",
			"receipt":  "receipt_" + random.String(16),
		}

		ord, err := rz.Order.Create(data, nil)
		if err != nil {
			return weberr.Upstream(fmt.Errorf("creating gateway order: %w", err))
		}

		orderID, _ := ord["id"].(string)
		status, _ := ord["status"].(string)
		if orderID == "" {
			return weberr.Upstream(errors.New("gateway order response carries no id"))
		}

		sub := user.Subscription{ID: orderID, Status: status, CourseID: on.CourseID}
		if err := user.UpdateSubscription(ctx, db, u.ID, sub); err != nil {
			return err
		}

		resp := struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			OrderID string `json:"order_id"`
		}{true, "Order created successfully", orderID}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleVerify(db *sqlx.DB, cfg config.Razorpay) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		u, err := currentUser(ctx, db)
		if err != nil {
			return err
		}

		var v Verification
		if err := web.Decode(w, r, &v); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(v); err != nil {
			return weberr.Validation(err)
		}

		if !VerifySignature(v.OrderID, v.PaymentID, cfg.KeySecret, v.Signature) {
			err := errors.New("payment signature mismatch")
			return weberr.NewError(err, "payment not verified, please try again", http.StatusBadRequest)
		}

		// Audit record and subscription flip commit together.
		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			p := Payment{
				PaymentID: v.PaymentID,
				OrderID:   v.OrderID,
				Signature: v.Signature,
				CreatedAt: time.Now().UTC(),
			}

			if err := Create(ctx, tx, p); err != nil {
				return err
			}

			return user.SetSubscriptionStatus(ctx, tx, u.ID, StatusActive)
		})
		if err != nil {
			return fmt.Errorf("recording verified payment[%s]: %w", v.PaymentID, err)
		}

		resp := struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}{true, "Payment verified successfully"}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

// HandleCancel is a deliberate stub: the order-based payment setup has no
// cancellation to perform.
func HandleCancel() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		err := errors.New("subscription cancellation requested")
		return weberr.NewError(err,
			"subscription cancellation is not applicable in the current payment setup",
			http.StatusBadRequest)
	}
}

func HandleList(rz *razorpay.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		count := 10
		if c := r.URL.Query().Get("count"); c != "" {
			n, err := strconv.Atoi(c)
			if err != nil || n < 1 {
				return weberr.BadRequest(errors.New("count must be a positive integer"))
			}
			count = n
		}

		orders, err := rz.Order.All(map[string]interface{}{"count": count}, nil)
		if err != nil {
			return weberr.Upstream(fmt.Errorf("listing gateway orders: %w", err))
		}

		resp := struct {
			Success     bool                   `json:"success"`
			Message     string                 `json:"message"`
			AllPayments map[string]interface{} `json:"allPayments"`
		}{true, "All payments", orders}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}
