package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/boardingpass/internal/client/recovery"
)

var (
	ErrStateMismatch = errors.New("oauth state mismatch")
	ErrDeclined      = errors.New("authorization declined")
)

const callbackPage = "Received. You can close this tab and return to the terminal.\n"

// handleRedirect feeds redirect parameters into the session. A Discord code
// is only accepted together with the state this process issued.
func (a *App) handleRedirect(ctx context.Context, query url.Values) error {
	if reason := query.Get("error"); reason != "" {
		return fmt.Errorf("%w: %s", ErrDeclined, reason)
	}
	if query.Get(recovery.ParamCode) != "" && query.Get("state") != a.state {
		return ErrStateMismatch
	}
	return a.service.Mount(ctx, query)
}

func (a *App) callbackRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		// the browser may drop the connection before the follow-up calls end
		ctx := context.WithoutCancel(r.Context())

		err := a.handleRedirect(ctx, r.URL.Query())
		switch {
		case errors.Is(err, ErrStateMismatch):
			a.logger.Warn(ctx, "redirect rejected", "error", err)
			http.Error(w, "State mismatch. Start the Discord login again from the terminal.", http.StatusBadRequest)
			return
		case errors.Is(err, ErrDeclined):
			printlnFn(warnf("%v", err))
			http.Error(w, "Authorization declined. You can close this tab.", http.StatusBadRequest)
			return
		case err != nil:
			a.logger.Error(ctx, "redirect failed", "error", err)
			http.Error(w, "Something went wrong. Check the terminal.", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(callbackPage))
		printlnFn(infof("redirect received"))
		a.report(ctx, nil)
	})

	return r
}

// startCallbackServer binds CallbackAddr and serves redirects until ctx is
// done or the returned stop func is called.
func (a *App) startCallbackServer(ctx context.Context) (func(), error) {
	ln, err := net.Listen("tcp", a.config.CallbackAddr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           a.callbackRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "redirect listener stopped", "error", err)
		}
	}()

	a.logger.Info(ctx, "redirect listener started", "addr", ln.Addr().String())

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
