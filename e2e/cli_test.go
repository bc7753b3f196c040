package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamestore/internal/api"
	"github.com/mcoot/gamestore/internal/api/response"
	"github.com/mcoot/gamestore/internal/factory"
	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/testutil"
	"github.com/mcoot/gamestore/internal/web"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(t.TempDir(), "gamestorectl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/gamestorectl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.Output()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs the full application on a real listener
type testServer struct {
	app      *factory.App
	url      string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		CatalogService:     app.CatalogService,
		PurchaseController: app.PurchaseController,
		ProgressService:    app.ProgressService,
		Metrics:            app.Metrics,
	})
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		CatalogService:     app.CatalogService,
		PurchaseController: app.PurchaseController,
		ProgressService:    app.ProgressService,
		Metrics:            app.Metrics,
	})

	root := mux.NewRouter()
	root.PathPrefix("/rest/").Handler(apiRouter)
	root.Handle("/healthz", apiRouter)
	root.Handle("/metrics", app.Metrics.Handler())
	root.PathPrefix("/").Handler(webRouter)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := api.NewServer(root, api.DefaultServerConfig(), logger)
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/healthz")

	return &testServer{
		app: app,
		url: serverURL,
		shutdown: func() {
			_ = server.Shutdown(context.Background())
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// createAccount registers and activates an account through the auth service
func (ts *testServer) createAccount(t *testing.T, username, password string, role model.Role) *model.Account {
	t.Helper()

	ctx := context.Background()
	account, err := ts.app.AuthService.Register(ctx, auth.RegisterInput{
		Username:        username,
		Password:        password,
		PasswordConfirm: password,
		Email:           username + "@example.com",
		Role:            role,
	})
	require.NoError(t, err)
	require.NoError(t, ts.app.AuthService.Activate(ctx, auth.VerificationHash(username)))
	return account
}

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.url)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp response.Health
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_PurchaseFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	developer := ts.createAccount(t, "dev", "devpass", model.RoleDeveloper)
	ts.createAccount(t, "alice", "alicepass", model.RolePlayer)

	game, err := ts.app.CatalogService.AddGame(context.Background(), developer, catalog.GameInput{
		Name:        "Chess",
		Category:    "Board",
		Description: "The classic",
		URL:         "https://games.example.com/chess/",
		Price:       "5.00",
	})
	require.NoError(t, err)

	player := newCLIRunner(t, ts.url)
	dev := &cliRunner{
		binaryPath: player.binaryPath,
		serverURL:  player.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token-dev"),
	}

	// The catalog is public
	output, err := player.run("games", "--category", "Board")
	require.NoError(t, err, "output: %s", output)
	var games []response.Record[response.GameFields]
	require.NoError(t, json.Unmarshal([]byte(output), &games))
	require.Len(t, games, 1)
	assert.Equal(t, "dev", games[0].Fields.Developer)

	// Alice buys Chess
	output, err = player.run("login", "--user", "alice", "--pass", "alicepass")
	require.NoError(t, err, "output: %s", output)

	output, err = player.run("buy", strconv.FormatUint(uint64(game.ID), 10))
	require.NoError(t, err, "output: %s", output)
	var checkout struct {
		PID    string `json:"pid"`
		Amount string `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &checkout))
	assert.Equal(t, "5.00", checkout.Amount)
	t.Logf("Created order %s", checkout.PID)

	output, err = player.run("pay", "--pid", checkout.PID)
	require.NoError(t, err, "output: %s", output)
	var paid struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &paid))
	assert.Equal(t, "Thank you!", paid.Message)

	// Players cannot read the sales endpoint
	_, err = player.run("sales")
	assert.Error(t, err)

	// The developer sees the paid order
	output, err = dev.run("login", "--user", "dev", "--pass", "devpass")
	require.NoError(t, err, "output: %s", output)

	output, err = dev.run("sales", "--game", "Chess")
	require.NoError(t, err, "output: %s", output)
	var sales []response.Record[response.SaleFields]
	require.NoError(t, json.Unmarshal([]byte(output), &sales))
	require.Len(t, sales, 1)
	assert.Equal(t, "alice", sales[0].Fields.Buyer)
	assert.Equal(t, model.OrderStatusPaid, sales[0].Fields.Status)
}
