// TalentScout - terminal intake and submission tooling
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashureev/talentscout/internal/app"
	"github.com/ashureev/talentscout/internal/config"
	"github.com/ashureev/talentscout/internal/console"
	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/intake"
	"github.com/ashureev/talentscout/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "intake",
		Short:         "TalentScout hiring assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// A missing env file is fine; the environment may already be set.
			_ = godotenv.Load(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading configuration")

	root.AddCommand(newRunCmd())
	root.AddCommand(newCandidatesCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run an interactive intake session in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := app.NewLoggerTo(cmd.ErrOrStderr(), cfg)

			repo, err := app.OpenRepository(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := repo.Close(); closeErr != nil {
					logger.Error("Failed to close repository", "error", closeErr)
				}
			}()

			questions, err := app.Questions(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			controller := intake.NewController(app.NewProvider(cfg, logger), repo,
				intake.WithLogger(logger),
				intake.WithMaxGenerateAttempts(cfg.Provider.MaxAttempts),
			)
			runner := console.NewRunner(controller, console.NewSurveyDriver(cmd.OutOrStdout()), logger)

			rec, err := runner.Run(ctx, intake.NewSession(uuid.NewString(), questions))
			if errors.Is(err, console.ErrAborted) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "intake cancelled, nothing was submitted")
				return nil
			}
			if err != nil {
				return err
			}
			name, _ := rec.Get(domain.KeyName)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved application for %s (%s)\n", name, repo.Name())
			return nil
		},
	}
}

func newCandidatesCmd() *cobra.Command {
	candidates := &cobra.Command{Use: "candidates", Short: "Inspect stored submissions"}

	candidates.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored submissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := loadCandidates(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no candidates")
				return nil
			}
			for _, rec := range records {
				printCandidate(cmd.OutOrStdout(), rec)
			}
			return nil
		},
	})

	var outPath string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored submissions as a JSON array",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := loadCandidates(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if outPath == "" {
				return store.WriteJSON(cmd.OutOrStdout(), records)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			if err := store.WriteJSON(f, records); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", outPath, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d candidates to %s\n", len(records), outPath)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")

	candidates.AddCommand(exportCmd)
	return candidates
}

// loadCandidates reads every stored record. Only the storage settings are
// validated so no provider credentials are needed.
func loadCandidates(ctx context.Context, logOut io.Writer) ([]domain.CandidateRecord, error) {
	cfg := config.Read()
	if err := cfg.ValidateStorage(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := app.NewLoggerTo(logOut, cfg)

	repo, err := app.OpenRepository(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Error("Failed to close repository", "error", closeErr)
		}
	}()
	return repo.List(ctx)
}

func printCandidate(w io.Writer, rec domain.CandidateRecord) {
	name, _ := rec.Get(domain.KeyName)
	email, _ := rec.Get(domain.KeyEmail)
	role, _ := rec.Get(domain.KeyRole)
	_, _ = fmt.Fprintf(w, "%s\t%s <%s>\t%s\tquestions=%d\n",
		rec.Timestamp.Format(domain.TimestampLayout), name, email, role, len(rec.TechnicalQuestions))
}
