//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	registerClient(t, "auth-roundtrip@resto.test")

	resp := doPost(t, "/auth/login", loginRequest{
		Email:    "auth-roundtrip@resto.test",
		Password: "client-password",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	session := decodeJSON[sessionResponse](t, resp)
	if session.Token == "" {
		t.Fatal("expected a session token")
	}
	if session.User.UserType != "Client" {
		t.Fatalf("expected Client role, got %q", session.User.UserType)
	}
}

func TestMe(t *testing.T) {
	token := registerClient(t, "me@resto.test")

	resp := doRequest(t, http.MethodGet, "/me", token, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	user := decodeJSON[userResponse](t, resp)
	if user.Email != "me@resto.test" {
		t.Fatalf("expected own account, got %q", user.Email)
	}

	anon := doGet(t, "/me")
	defer anon.Body.Close()
	if anon.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", anon.StatusCode)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	registerClient(t, "dupe@resto.test")

	resp := doPost(t, "/auth/register", registerRequest{
		FirstName:       "Other",
		LastName:        "Person",
		Email:           "dupe@resto.test",
		PhoneNumber:     "+3611111111",
		DeliveryAddress: "Budapest",
		Password:        "another-pass",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	resp := doPost(t, "/auth/register", registerRequest{Email: "incomplete@resto.test"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	registerClient(t, "wrongpass@resto.test")

	resp := doPost(t, "/auth/login", loginRequest{
		Email:    "wrongpass@resto.test",
		Password: "not-the-password",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	resp := doPost(t, "/auth/login", loginRequest{
		Email:    "nobody@resto.test",
		Password: "whatever",
	})
	defer resp.Body.Close()

	// Unknown account and wrong password must be indistinguishable.
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminLogin(t *testing.T) {
	token := loginAdmin(t)
	if token == "" {
		t.Fatal("expected a session token for the seeded employee")
	}
}
