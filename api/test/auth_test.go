package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
)

func TestAuth(t *testing.T) {
	env, err := NewTestEnv(t, "auth_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	signup := func(body map[string]string) *http.Response {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		w, err := env.Client().Post(env.URL+"/auth/signup", "application/json", bytes.NewReader(b))
		if err != nil {
			t.Fatal(err)
		}
		return w
	}

	w := signup(map[string]string{
		"name":     "New User",
		"email":    "new@test.com",
		"password": "long-enough-pass",
	})
	w.Body.Close()
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %s", w.Status)
	}

	// Signup logs the user straight in.
	w, err = env.Client().Get(env.URL + "/users/current")
	if err != nil {
		t.Fatal(err)
	}
	w.Body.Close()
	if w.StatusCode != http.StatusOK {
		t.Fatalf("current user after signup: expected 200, got %s", w.Status)
	}

	w = signup(map[string]string{
		"name":     "Dup User",
		"email":    "new@test.com",
		"password": "long-enough-pass",
	})
	w.Body.Close()
	if w.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %s", w.Status)
	}

	w = signup(map[string]string{
		"name":     "Short Pass",
		"email":    "short@test.com",
		"password": "short",
	})
	w.Body.Close()
	if w.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("short password signup: expected 422, got %s", w.Status)
	}

	if err := env.Logout(); err != nil {
		t.Fatal(err)
	}

	w, err = env.Client().Get(env.URL + "/users/current")
	if err != nil {
		t.Fatal(err)
	}
	w.Body.Close()
	if w.StatusCode != http.StatusUnauthorized {
		t.Fatalf("current user after logout: expected 401, got %s", w.Status)
	}

	if err := env.Login(UserEmail, UserPass); err != nil {
		t.Fatal(err)
	}

	u := (&paymentTest{env}).currentUser(t)
	if u.Email != UserEmail {
		t.Fatalf("logged in as %s, current user says %s", UserEmail, u.Email)
	}
}
