package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamestore/internal/factory"
	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/services/purchase"
	"github.com/mcoot/gamestore/internal/testutil"
	"github.com/mcoot/gamestore/internal/web"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar

	accounts map[string]*model.Account
}

// newWebTestServer creates a new test server with all dependencies wired.
// Login rate limiting is off so tests can log in repeatedly.
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()
	return newWebTestServerWithConfig(t, func(*web.RouterConfig) {})
}

func newWebTestServerWithConfig(t *testing.T, configure func(*web.RouterConfig)) *webTestServer {
	t.Helper()

	app := factory.NewTestApp()
	cfg := web.RouterConfig{
		Logger:             testutil.NopLogger(),
		AuthService:        app.AuthService,
		CatalogService:     app.CatalogService,
		PurchaseController: app.PurchaseController,
		ProgressService:    app.ProgressService,
		Metrics:            app.Metrics,
		StaticDir:          "", // No static files in tests
	}
	configure(&cfg)

	return &webTestServer{
		t:        t,
		handler:  web.NewRouter(cfg),
		app:      app,
		cookies:  newCookieJar(),
		accounts: make(map[string]*model.Account),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return ts.request(http.MethodPost, path, form)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies["session"]
	return ok
}

// Helper functions for common test operations

// loginAs creates an activated account directly via the services, or logs in
// again if it already exists, and sets up the session cookie for subsequent requests
func (ts *webTestServer) loginAs(username string, role model.Role) *model.Account {
	ts.t.Helper()
	ctx := context.Background()
	password := username + "-pass"

	if account, ok := ts.accounts[username]; ok {
		session, err := ts.app.AuthService.Login(ctx, username, password)
		require.NoError(ts.t, err, "Expected login to succeed")
		ts.setSession(session.Token)
		return account
	}

	account, token, err := ts.app.CreateActiveAccount(ctx, username, password, role)
	require.NoError(ts.t, err, "Expected account creation to succeed")
	ts.accounts[username] = account
	ts.setSession(token)
	return account
}

func (ts *webTestServer) setSession(token string) {
	ts.cookies.cookies["session"] = &http.Cookie{
		Name:  "session",
		Value: token,
	}
}

// logout drops the session cookie without calling the server
func (ts *webTestServer) logout() {
	delete(ts.cookies.cookies, "session")
}

// addGame lists a game as the given developer
func (ts *webTestServer) addGame(developer *model.Account, name, price string) *model.Game {
	ts.t.Helper()
	game, err := ts.app.CatalogService.AddGame(context.Background(), developer, catalog.GameInput{
		Name:        name,
		Category:    "Puzzle",
		Description: "A game called " + name,
		URL:         "https://games.example.com/" + strings.ToLower(name) + "/",
		Price:       price,
	})
	require.NoError(ts.t, err, "Expected game creation to succeed")
	return game
}

// buy runs the whole purchase of a game for the logged-in player: the buy form,
// then the payment service's success callback. Returns the callback response.
func (ts *webTestServer) buy(game *model.Game) *httptest.ResponseRecorder {
	ts.t.Helper()
	rr := ts.post("/buygame/"+strconv.FormatUint(uint64(game.ID), 10)+"/", nil)
	require.Equal(ts.t, http.StatusOK, rr.Code, "Expected the checkout page")

	pid := parseHTML(rr.Body).Find("#payment_form input[name='pid']").AttrOr("value", "")
	require.NotEmpty(ts.t, pid, "Expected a pid on the payment form")

	rr = ts.get(successCallback(pid, "ref-"+pid))
	require.Equal(ts.t, http.StatusOK, rr.Code, "Expected the payment to be accepted")
	return rr
}

// successCallback builds the redirect the payment service sends after a successful payment
func successCallback(pid, ref string) string {
	q := url.Values{
		"pid":      {pid},
		"ref":      {ref},
		"result":   {purchase.ResultSuccess},
		"checksum": {purchase.ResultChecksum(pid, ref, purchase.ResultSuccess, purchase.DefaultConfig().Secret)},
	}
	return "/payment/success/?" + q.Encode()
}

// followRedirect follows a redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}

func catalogInput(name, category string) catalog.GameInput {
	return catalog.GameInput{
		Name:        name,
		Category:    category,
		Description: "A game called " + name,
		URL:         "https://games.example.com/" + strings.ToLower(name) + "/",
		Price:       "3.00",
	}
}

func catalogListAll() catalog.ListQuery {
	return catalog.ListQuery{}
}
