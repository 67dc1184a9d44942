package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"backoffice/internal/config"
	"backoffice/internal/domain"
	"backoffice/internal/httpapi"
	"backoffice/internal/logger"
	"backoffice/internal/ratelimit"
	"backoffice/internal/service"
)

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "backoffice",
		Short:         "Back-office ledger, invoicing, HR and expense service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the postgres schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				if cfg.DatabaseURL == "" {
					return errors.New("DATABASE_URL is required")
				}
				_, closeRepo, err := openRepository(cmd.Context(), cfg, true)
				if err != nil {
					return err
				}
				defer closeLogged("repository", closeRepo)
				fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
				return nil
			},
		},
		newExpensesCmd(cfg),
		newInvoicesCmd(cfg),
		newTokenCmd(cfg),
	)
	return root
}

func newExpensesCmd(cfg config.Config) *cobra.Command {
	expenses := &cobra.Command{Use: "expenses", Short: "Expense roll-up jobs"}

	transfer := &cobra.Command{
		Use:   "transfer-monthly",
		Short: "Roll a month's expenses into its yearly total",
		Example: `  # previous calendar month
  backoffice expenses transfer-monthly

  # explicit month
  backoffice expenses transfer-monthly --year 2024 --month 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")
			if (year == 0) != (month == 0) {
				return errors.New("--year and --month must be given together")
			}
			return withService(cmd.Context(), cfg, func(ctx context.Context, svc *service.Service) error {
				result, err := svc.TransferMonthlyToYearly(ctx, domain.MonthlyTransferRequest{Year: year, Month: month})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	transfer.Flags().Int("year", 0, "year of the month to roll up")
	transfer.Flags().Int("month", 0, "month to roll up (1-12)")

	expenses.AddCommand(transfer)
	return expenses
}

func newInvoicesCmd(cfg config.Config) *cobra.Command {
	invoices := &cobra.Command{Use: "invoices", Short: "Invoice maintenance jobs"}
	invoices.AddCommand(&cobra.Command{
		Use:   "refresh-status",
		Short: "Persist Overdue status on invoices whose due date has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), cfg, func(ctx context.Context, svc *service.Service) error {
				result, err := svc.RefreshInvoiceStatuses(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	})
	return invoices
}

func newTokenCmd(cfg config.Config) *cobra.Command {
	token := &cobra.Command{Use: "token", Short: "API token utilities"}

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign a bearer token for an API client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSecurityConfig(cfg); err != nil {
				return err
			}
			if cfg.AuthSecret == "" {
				return errors.New("AUTH_SECRET is required to issue tokens")
			}
			subject, _ := cmd.Flags().GetString("subject")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute)
			issued, err := auth.IssueToken(subject, ttl)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), issued)
		},
	}
	issue.Flags().String("subject", "", "client or user the token is issued to")
	issue.Flags().Duration("ttl", 0, "token lifetime (default ACCESS_TOKEN_TTL_MINUTES)")
	_ = issue.MarkFlagRequired("subject")

	token.AddCommand(issue)
	return token
}

func withService(ctx context.Context, cfg config.Config, run func(context.Context, *service.Service) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	repo, closeRepo, err := openRepository(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closeLogged("repository", closeRepo)
	return run(ctx, service.New(repo))
}

// closeLogged runs closeFn and logs a failure instead of dropping it.
func closeLogged(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		l := logger.WithComponent("cmd")
		l.Warn().Err(err).Str("resource", name).Msg("close failed")
	}
}

func printJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func runServe(ctx context.Context, cfg config.Config) error {
	log := logger.WithComponent("server")
	if err := validateSecurityConfig(cfg); err != nil {
		return fmt.Errorf("invalid security configuration: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	closers := make([]func() error, 0, 2)
	defer func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Warn().Err(err).Msg("close error")
			}
		}
	}()

	repo, closeRepo, err := openRepository(ctx, cfg, true)
	if err != nil {
		return err
	}
	closers = append(closers, closeRepo)

	svc := service.New(repo)
	added, err := svc.SeedDepartments(ctx, cfg.DefaultDepartments)
	if err != nil {
		return fmt.Errorf("seed departments: %w", err)
	}
	if added > 0 {
		log.Info().Int("added", added).Msg("departments seeded")
	}

	limiter, err := ratelimit.New(ctx, ratelimit.Options{
		Rate:          cfg.RateLimit,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	closers = append(closers, limiter.Close)
	log.Info().Str("backend", limiter.Backend()).Str("rate", cfg.RateLimit).Msg("rate limiter ready")

	var auth *httpapi.AuthManager
	if cfg.AuthSecret != "" {
		auth = httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute)
		log.Info().Msg("bearer token auth enabled")
	} else {
		log.Warn().Msg("AUTH_SECRET not set, API is open")
	}
	api := httpapi.New(svc, auth, limiter, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Address()).Msg("backoffice listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
	return nil
}
