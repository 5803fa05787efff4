package cli

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themizzi/shopflow/internal/config"
	"github.com/themizzi/shopflow/internal/repository"
)

// failingCloseListener reports an error from every Close
type failingCloseListener struct {
	net.Listener
}

func (l failingCloseListener) Close() error {
	l.Listener.Close()
	return errors.New("listener close failed")
}

func named(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, name)
	})
}

// stubDeps routes every path to a handler that answers with its own name
func stubDeps(port string) ServerDependencies {
	return ServerDependencies{
		ServerConfig:        config.ServerConfig{Port: port},
		HomeHandler:         named("home"),
		ProductHandler:      named("product"),
		LoginHandler:        named("login"),
		LogoutHandler:       named("logout"),
		AccountHandler:      named("account"),
		CartHandler:         named("cart"),
		CheckoutHandler:     named("checkout"),
		TownsHandler:        named("towns"),
		OrderHandler:        named("order"),
		ConfirmationHandler: named("confirmation"),
		FailureHandler:      named("failure"),
		StaticHandler:       named("static"),
	}
}

func start(t *testing.T, deps ServerDependencies) (*http.Server, string) {
	t.Helper()
	listener, server, err := StartServer(deps)
	require.NoError(t, err)
	t.Cleanup(func() {
		server.Close()
		listener.Close()
	})
	return server, fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestStartServer_Routes(t *testing.T) {
	// GIVEN
	_, baseURL := start(t, stubDeps("0"))

	// THEN
	routes := []struct {
		path    string
		handler string
	}{
		{"/", "home"},
		{"/unknown", "home"},
		{"/product/1", "product"},
		{"/client/auth", "login"},
		{"/client/logout", "logout"},
		{"/client/details", "account"},
		{"/cart/add", "cart"},
		{"/cart", "checkout"},
		{"/api/towns?county=CJ", "towns"},
		{"/order", "order"},
		{"/success", "confirmation"},
		{"/order/failed?reason=EmptyCart", "failure"},
		{"/static/style.css", "static"},
	}
	for _, tc := range routes {
		t.Run(tc.path, func(t *testing.T) {
			status, body := get(t, baseURL+tc.path)
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, tc.handler, body)
		})
	}
}

func TestStartServer_ListenErrors(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	tests := []struct {
		name string
		port string
	}{
		{name: "port out of range", port: "99999"},
		{name: "port in use", port: fmt.Sprint(taken.Addr().(*net.TCPAddr).Port)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := StartServer(stubDeps(tt.port))
			assert.ErrorContains(t, err, "failed to create listener")
		})
	}
}

func TestWaitForShutdown_Signals(t *testing.T) {
	for _, sig := range []os.Signal{syscall.SIGTERM, syscall.SIGINT} {
		t.Run(sig.String(), func(t *testing.T) {
			// GIVEN
			server, baseURL := start(t, stubDeps("0"))
			shutdown := make(chan os.Signal, 1)
			done := make(chan error, 1)
			go func() { done <- WaitForShutdown(server, shutdown) }()

			// WHEN
			shutdown <- sig

			// THEN
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("WaitForShutdown did not return")
			}
			_, err := http.Get(baseURL + "/")
			assert.Error(t, err, "server still answering after shutdown")
		})
	}
}

func TestWaitForShutdown_DrainsActiveRequests(t *testing.T) {
	// GIVEN
	deps := stubDeps("0")
	deps.TownsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		io.WriteString(w, "slow towns")
	})
	server, baseURL := start(t, deps)

	response := make(chan string, 1)
	go func() {
		resp, err := http.Get(baseURL + "/api/towns?county=AB")
		if err != nil {
			response <- err.Error()
			return
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		response <- string(body)
	}()
	time.Sleep(50 * time.Millisecond)

	// WHEN
	shutdown := make(chan os.Signal, 1)
	shutdown <- syscall.SIGTERM
	require.NoError(t, WaitForShutdown(server, shutdown))

	// THEN
	select {
	case body := <-response:
		assert.Equal(t, "slow towns", body)
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was dropped")
	}
}

func TestWaitForShutdownWithTimeout_ForcesClose(t *testing.T) {
	// GIVEN - a request that outlives the grace period, on a listener
	// whose Close fails
	block := make(chan struct{})
	defer close(block)
	deps := stubDeps("0")
	deps.HomeHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})

	inner, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	listener := failingCloseListener{Listener: inner}
	server := &http.Server{Handler: Routes(deps)}
	go server.Serve(listener)

	go http.Get(fmt.Sprintf("http://%s/", inner.Addr()))
	time.Sleep(100 * time.Millisecond)

	// WHEN
	shutdown := make(chan os.Signal, 1)
	shutdown <- syscall.SIGTERM
	err = WaitForShutdownWithTimeout(server, shutdown, time.Nanosecond)

	// THEN - http.Server.Close does not surface listener errors
	assert.NoError(t, err)
}

func TestRunServe(t *testing.T) {
	t.Run("stops on SIGTERM", func(t *testing.T) {
		done := make(chan error, 1)
		go func() { done <- RunServe(stubDeps("0")) }()
		time.Sleep(100 * time.Millisecond)

		p, err := os.FindProcess(os.Getpid())
		require.NoError(t, err)
		require.NoError(t, p.Signal(syscall.SIGTERM))

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("RunServe did not stop")
		}
	})

	t.Run("startup failure", func(t *testing.T) {
		assert.Error(t, RunServe(stubDeps("99999")))
	})
}

func TestNewStorefront_ServesFixtureShop(t *testing.T) {
	// GIVEN
	deps, err := NewStorefront(config.ServerConfig{
		Port:              "0",
		NotificationDelay: time.Second,
		CartControlDelay:  300 * time.Millisecond,
		AccountEmail:      "shopper@example.com",
		AccountPassword:   "JUnit5",
	}, repository.NewMemoryOrderRepository())
	require.NoError(t, err)
	_, baseURL := start(t, deps)

	// THEN
	status, body := get(t, baseURL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "pushinstruments_button_deny")
	assert.Contains(t, body, "account_header")

	status, _ = get(t, baseURL+"/static/style.css")
	assert.Equal(t, http.StatusOK, status)

	status, body = get(t, baseURL+"/api/towns?county=AB")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Alba Iulia")

	status, _ = get(t, baseURL+"/cart")
	assert.Equal(t, http.StatusSeeOther, status, "checkout requires a session")

	status, _ = get(t, baseURL+"/product/42")
	assert.Equal(t, http.StatusNotFound, status)
}
