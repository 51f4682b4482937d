package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/xraph/housecup"
	"github.com/xraph/housecup/command"
	"github.com/xraph/housecup/observability"
	"github.com/xraph/housecup/points"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the liveness check, the standings, metrics and the point commands over HTTP",
		Long: "serve keeps one ledger open and applies awards and resets posted to it,\n" +
			"so it is the only writer of the data file while it runs. Do not run the\n" +
			"award, activity or reset commands against the same file at the same time.\n\n" +
			"Routes:\n" +
			"  GET  /           liveness\n" +
			"  GET  /standings  member ranking and house standings\n" +
			"  GET  /metrics    Prometheus metrics\n" +
			"  POST /award      {\"member_id\", \"display_name\", \"roles\", \"amount\"}\n" +
			"  POST /activity   {\"member_id\", \"display_name\", \"roles\", \"activity\"}\n" +
			"  POST /reset      reset every total",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))

			a, err := openApp(ctx, os.Stderr, housecup.WithPlugin(metrics))
			if err != nil {
				return err
			}
			defer a.close()

			return serve(ctx, a, reg)
		},
	}
}

func serve(ctx context.Context, a *app, reg *prometheus.Registry) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(a.cfg.Port),
		Handler:           newRouter(a, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// maxBodyBytes bounds a command request body.
const maxBodyBytes = 1 << 16

type standingsResponse struct {
	Members []points.MemberTotal `json:"members"`
	Houses  []points.HouseTotal  `json:"houses"`
}

// commandRequest is the body of POST /award and POST /activity. Amount may
// be a JSON number or a string holding one.
type commandRequest struct {
	MemberID    string          `json:"member_id"`
	DisplayName string          `json:"display_name"`
	Roles       []string        `json:"roles"`
	Amount      json.Number     `json:"amount"`
	Activity    points.Activity `json:"activity"`
}

func (r commandRequest) member() command.Member {
	name := r.DisplayName
	if name == "" {
		name = r.MemberID
	}
	return command.Member{ID: r.MemberID, DisplayName: name, Roles: r.Roles}
}

type replyResponse struct {
	Reply string `json:"reply"`
}

func newRouter(a *app, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok")) //nolint:errcheck
	})

	r.Get("/standings", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, standingsResponse{
			Members: a.ledger.TopMembers(a.cfg.Top),
			Houses:  a.ledger.HouseStandings(),
		})
	})

	r.Post("/award", func(w http.ResponseWriter, req *http.Request) {
		body, ok := decodeCommand(w, req)
		if !ok {
			return
		}
		reply, err := a.handler.Points(req.Context(), body.Amount.String(), body.member())
		writeReply(w, reply, err)
	})

	r.Post("/activity", func(w http.ResponseWriter, req *http.Request) {
		body, ok := decodeCommand(w, req)
		if !ok {
			return
		}
		reply, err := a.handler.Activity(req.Context(), body.Activity, body.member())
		writeReply(w, reply, err)
	})

	r.Post("/reset", func(w http.ResponseWriter, req *http.Request) {
		reply, err := a.handler.Reset(req.Context())
		writeReply(w, reply, err)
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}

func decodeCommand(w http.ResponseWriter, req *http.Request) (commandRequest, bool) {
	var body commandRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, replyResponse{Reply: "The request body must be a JSON command."})
		return body, false
	}
	return body, true
}

func writeReply(w http.ResponseWriter, reply string, err error) {
	writeJSON(w, statusFor(err), replyResponse{Reply: reply})
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, housecup.ErrInvalidInput),
		errors.Is(err, housecup.ErrInvalidAmount),
		errors.Is(err, housecup.ErrUnknownActivity):
		return http.StatusBadRequest
	case errors.Is(err, command.ErrNotInHouse):
		return http.StatusUnprocessableEntity
	case housecup.IsPersistence(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
