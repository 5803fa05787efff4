package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/themizzi/shopflow/internal/config"
	"github.com/themizzi/shopflow/internal/handlers"
	"github.com/themizzi/shopflow/internal/models"
	"github.com/themizzi/shopflow/internal/services"
)

// ServerDependencies holds all dependencies needed for the storefront
type ServerDependencies struct {
	ServerConfig config.ServerConfig
	Sessions     *services.SessionStore
	Orders       services.OrderService

	HomeHandler         http.Handler
	ProductHandler      http.Handler
	LoginHandler        http.Handler
	LogoutHandler       http.Handler
	AccountHandler      http.Handler
	CartHandler         http.Handler
	CheckoutHandler     http.Handler
	TownsHandler        http.Handler
	OrderHandler        http.Handler
	ConfirmationHandler http.Handler
	FailureHandler      http.Handler
	StaticHandler       http.Handler
}

// NewStorefront builds every storefront handler around repo
func NewStorefront(cfg config.ServerConfig, repo services.OrderRepository) (ServerDependencies, error) {
	deps := ServerDependencies{
		ServerConfig: cfg,
		Sessions:     services.NewSessionStore(services.Account{Email: cfg.AccountEmail, Password: cfg.AccountPassword}),
		Orders:       services.NewOrderService(repo),
	}
	catalog := models.DefaultCatalog()
	layout := handlers.NewLayout(deps.Sessions, cfg.NotificationDelay)

	var err error
	if deps.HomeHandler, err = handlers.NewHomeHandler(handlers.Templates, layout, catalog); err != nil {
		return deps, fmt.Errorf("failed to create home handler: %w", err)
	}
	if deps.ProductHandler, err = handlers.NewProductHandler(handlers.Templates, layout, catalog, cfg.CartControlDelay); err != nil {
		return deps, fmt.Errorf("failed to create product handler: %w", err)
	}
	if deps.LoginHandler, err = handlers.NewLoginHandler(handlers.Templates, layout, deps.Sessions); err != nil {
		return deps, fmt.Errorf("failed to create login handler: %w", err)
	}
	if deps.AccountHandler, err = handlers.NewAccountHandler(handlers.Templates, layout, deps.Orders); err != nil {
		return deps, fmt.Errorf("failed to create account handler: %w", err)
	}
	if deps.CheckoutHandler, err = handlers.NewCheckoutHandler(handlers.Templates, layout, catalog); err != nil {
		return deps, fmt.Errorf("failed to create checkout handler: %w", err)
	}
	if deps.ConfirmationHandler, err = handlers.NewConfirmationHandler(handlers.Templates, layout, deps.Orders); err != nil {
		return deps, fmt.Errorf("failed to create confirmation handler: %w", err)
	}
	if deps.FailureHandler, err = handlers.NewFailureHandler(handlers.Templates, layout); err != nil {
		return deps, fmt.Errorf("failed to create failure handler: %w", err)
	}

	deps.LogoutHandler = handlers.NewLogoutHandler(deps.Sessions)
	deps.CartHandler = handlers.NewCartHandler(layout, deps.Sessions, catalog)
	deps.TownsHandler = handlers.NewTownsHandler(cfg.TownsDelay)
	deps.OrderHandler = handlers.NewOrderHandler(layout, deps.Sessions, catalog, deps.Orders)
	deps.StaticHandler = handlers.Static()

	return deps, nil
}

// Routes mounts the storefront handlers on a mux
func Routes(deps ServerDependencies) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", deps.HomeHandler)
	mux.Handle("/product/", deps.ProductHandler)
	mux.Handle("/client/auth", deps.LoginHandler)
	mux.Handle("/client/logout", deps.LogoutHandler)
	mux.Handle("/client/details", deps.AccountHandler)
	mux.Handle("/cart/add", deps.CartHandler)
	mux.Handle("/cart", deps.CheckoutHandler)
	mux.Handle("/api/towns", deps.TownsHandler)
	mux.Handle("/order", deps.OrderHandler)
	mux.Handle("/success", deps.ConfirmationHandler)
	mux.Handle("/order/failed", deps.FailureHandler)
	if deps.StaticHandler != nil {
		mux.Handle("/static/", http.StripPrefix("/static/", deps.StaticHandler))
	}
	return logRequests(mux)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"elapsed": time.Since(start),
		}).Debug("Request served")
	})
}

// RunServe starts the storefront and blocks until a shutdown signal
func RunServe(deps ServerDependencies) error {
	listener, server, err := StartServer(deps)
	if err != nil {
		return err
	}
	defer listener.Close()

	return WaitForShutdown(server, nil)
}

// StartServer creates and starts the HTTP server, returning the listener and server
func StartServer(deps ServerDependencies) (net.Listener, *http.Server, error) {
	addr := fmt.Sprintf(":%s", deps.ServerConfig.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create listener: %w", err)
	}

	server := &http.Server{
		Handler:           Routes(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", listener.Addr().String()).Info("Storefront listening")
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("Server error")
		}
	}()

	return listener, server, nil
}

// WaitForShutdown waits for a shutdown signal and gracefully shuts down the server.
// A nil shutdown channel is replaced by one registered for SIGINT and SIGTERM.
func WaitForShutdown(server *http.Server, shutdown chan os.Signal) error {
	return WaitForShutdownWithTimeout(server, shutdown, 30*time.Second)
}

// WaitForShutdownWithTimeout is WaitForShutdown with a custom grace period
func WaitForShutdownWithTimeout(server *http.Server, shutdown chan os.Signal, shutdownTimeout time.Duration) error {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(shutdown)
	}

	sig := <-shutdown
	logrus.WithField("signal", sig.String()).Info("Shutting down storefront")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		// http.Server.Close does not report listener close errors, so this only
		// fails if closing an active connection does.
		if err := server.Close(); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	logrus.Info("Storefront stopped")
	return nil
}
