package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/web"
)

func registerForm(username, accountType string) url.Values {
	return url.Values{
		"username":       {username},
		"email":          {username + "@example.com"},
		"first_name":     {"Alice"},
		"last_name":      {"Smith"},
		"password":       {"secret123"},
		"password_check": {"secret123"},
		"account_type":   {accountType},
	}
}

func TestRegisterActivateLogin(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/register/", registerForm("alice", "player"))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login/?activation_sent=alice%40example.com", rr.Header().Get("Location"))

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "p.notice", "alice@example.com")

	msg, ok := ts.app.MockMailer.Last()
	require.True(t, ok, "Expected a verification mail")
	hash := auth.VerificationHash("alice")
	assert.Contains(t, msg.Body, "/register/activate/"+hash+"/")

	// Not activated yet
	rr = ts.post("/login/", url.Values{"username": {"alice"}, "password": {"secret123"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login/?activated=fail", rr.Header().Get("Location"))
	assert.False(t, ts.cookies.hasSession())

	rr = ts.get("/register/activate/" + hash + "/")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login/?activation=success", rr.Header().Get("Location"))

	rr = ts.post("/login/", url.Values{"username": {"alice"}, "password": {"secret123"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.True(t, ts.cookies.hasSession())

	rr = ts.followRedirect(rr)
	doc = parseHTML(rr.Body)
	assertContainsText(t, doc, "nav a.account-name", "Alice Smith")
	assertContainsText(t, doc, "nav span.account-type", "Player")
	assertNotContainsElement(t, doc, "nav a[href='/addgame/']")
}

func TestActivateTwiceAndUnknownHash(t *testing.T) {
	ts := newWebTestServer(t)
	ts.post("/register/", registerForm("bob", "developer"))
	hash := auth.VerificationHash("bob")

	rr := ts.get("/register/activate/" + hash + "/")
	assert.Equal(t, "/login/?activation=success", rr.Header().Get("Location"))

	rr = ts.get("/register/activate/" + hash + "/")
	assert.Equal(t, "/login/?activation=duplicate", rr.Header().Get("Location"))

	rr = ts.get("/register/activate/not-a-hash/")
	assert.Equal(t, "/login/?activation=fail", rr.Header().Get("Location"))
	rr = ts.followRedirect(rr)
	assertContainsElement(t, parseHTML(rr.Body), "p.error")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/register/", registerForm("alice", "player"))
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.post("/register/", registerForm("alice", "developer"))
	assert.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "span.field-error[data-field='username']", "already exists")
	// The submitted values are kept
	assert.Equal(t, "alice@example.com", doc.Find("#email").AttrOr("value", ""))
}

func TestRegisterValidationErrorsShown(t *testing.T) {
	ts := newWebTestServer(t)

	form := registerForm("alice", "wizard")
	form.Set("email", "not-an-email")
	form.Set("password_check", "different")
	rr := ts.post("/register/", form)
	assert.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#register_form")
	assertContainsText(t, doc, "span.field-error[data-field='password_check']", "must match")
	assertContainsElement(t, doc, "span.field-error[data-field='email']")
	assertContainsElement(t, doc, "span.field-error[data-field='account_type']")
	assert.Empty(t, ts.app.MockMailer.Messages())
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAs("alice", model.RolePlayer)
	ts.logout()

	rr := ts.post("/login/", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, ts.cookies.hasSession())

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "p.error", "Invalid username or password.")
	assert.Equal(t, "alice", doc.Find("#username").AttrOr("value", ""))

	rr = ts.post("/login/", url.Values{"username": {""}, "password": {""}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), "p.error", "required")
}

func TestLoginRedirectsToNext(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAs("alice", model.RolePlayer)
	ts.logout()

	rr := ts.get("/account/")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login/?next=%2Faccount%2F", rr.Header().Get("Location"))

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assert.Equal(t, "/account/", doc.Find("#login_form input[name='next']").AttrOr("value", ""))

	rr = ts.post("/login/", url.Values{"username": {"alice"}, "password": {"alice-pass"}, "next": {"/account/"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/account/", rr.Header().Get("Location"))
}

func TestLoginIgnoresOffsiteNext(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAs("alice", model.RolePlayer)
	ts.logout()

	for _, next := range []string{"//evil.example.com/", "https://evil.example.com/", `/\evil.example.com`} {
		rr := ts.post("/login/", url.Values{"username": {"alice"}, "password": {"alice-pass"}, "next": {next}})
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"), "next=%q", next)
	}
}

func TestLoggedInUserSkipsLoginAndRegister(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAs("alice", model.RolePlayer)

	for _, path := range []string{"/login/", "/register/"} {
		rr := ts.get(path)
		assert.Equal(t, http.StatusSeeOther, rr.Code, path)
		assert.Equal(t, "/", rr.Header().Get("Location"), path)
	}
}

func TestLogout(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAs("alice", model.RolePlayer)
	token := ts.cookies.cookies["session"].Value

	rr := ts.post("/logout/", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login/", rr.Header().Get("Location"))
	assert.False(t, ts.cookies.hasSession())

	// The old token is no longer accepted
	_, err := ts.app.AuthService.ValidateSession(t.Context(), token)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)

	rr = ts.get("/account/")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
}

func TestLoginRateLimited(t *testing.T) {
	ts := newWebTestServerWithConfig(t, func(cfg *web.RouterConfig) {
		cfg.LoginRate = 0.001
		cfg.LoginBurst = 2
	})

	form := url.Values{"username": {"nobody"}, "password": {"guess"}}
	assert.Equal(t, http.StatusOK, ts.post("/login/", form).Code)
	assert.Equal(t, http.StatusOK, ts.post("/login/", form).Code)

	rr := ts.post("/login/", form)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assertContainsElement(t, parseHTML(rr.Body), "#error[data-status='429']")

	// The login page itself is not limited
	assert.Equal(t, http.StatusOK, ts.get("/login/").Code)
}
