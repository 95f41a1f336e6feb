package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/salus-health/benefits-cli/internal/cob"
	"github.com/salus-health/benefits-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for bill analysis and chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initCOB(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/api/analyze", handleAnalyze(env))
		r.Post("/api/chat", handleChat(env))
		r.Get("/api/history", handleHistory(env))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// analyzeRequest is the POST /api/analyze body.
type analyzeRequest struct {
	PolicyID string           `json:"policy_id"`
	Region   string           `json:"region"`
	Bill     model.BillRecord `json:"bill"`
	Save     bool             `json:"save"`
}

func handleAnalyze(env *cobEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := env.Pipeline.RunAnalysis(r.Context(), req.PolicyID, req.Region, req.Bill)
		if err != nil {
			zap.L().Error("analyze request failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "analysis failed")
			return
		}

		if req.Save {
			a := &model.Analysis{
				PolicyID: req.PolicyID,
				Region:   req.Region,
				Bill:     req.Bill,
				Result:   *result,
			}
			if err := env.Store.SaveAnalysis(r.Context(), a); err != nil {
				zap.L().Warn("failed to save analysis", zap.Error(err))
			}
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	PolicyID string            `json:"policy_id"`
	Region   string            `json:"region"`
	Bill     *model.BillRecord `json:"bill,omitempty"`
	History  []model.ChatTurn  `json:"history,omitempty"`
	Message  string            `json:"message"`
}

func handleChat(env *cobEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Message == "" {
			writeJSONError(w, http.StatusBadRequest, "message is required")
			return
		}

		result := env.Pipeline.RunChat(r.Context(), cob.ChatRequest{
			PolicyID:    req.PolicyID,
			Region:      req.Region,
			Bill:        req.Bill,
			History:     req.History,
			UserMessage: req.Message,
		})

		writeJSON(w, http.StatusOK, result)
	}
}

func handleHistory(env *cobEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		policyID := r.URL.Query().Get("policy_id")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		analyses, err := env.Store.ListAnalyses(r.Context(), policyID, limit)
		if err != nil {
			zap.L().Error("history request failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "history lookup failed")
			return
		}
		if analyses == nil {
			analyses = []model.Analysis{}
		}

		writeJSON(w, http.StatusOK, analyses)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
