package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/opentdb"
	"trivia-quiz-service/internal/logger"
)

// NewImportCmd loads questions into the bank from a JSON file or the Open Trivia DB.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		file   string
		amount int
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions into the bank",
		Long: "Import questions from a JSON array (--file) or fetch them from the Open Trivia DB.\n" +
			"Records that duplicate an existing question are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Mode)
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.Postgres.URL == "" {
				return fmt.Errorf("import needs postgres: the in-memory catalog does not outlive this command")
			}

			var records []domain.Question
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &records); err != nil {
					return fmt.Errorf("parse %s: %w", file, err)
				}
			} else {
				client := opentdb.NewClient(cfg.OpenTDB.BaseURL, config.TTLDuration(cfg.OpenTDB.Timeout, 10*time.Second))
				n := amount
				if n <= 0 {
					n = config.IntOr(cfg.OpenTDB.Amount, 50)
				}
				if records, err = client.Fetch(ctx, n); err != nil {
					return err
				}
				log.Info("fetched questions from open trivia db", "count", len(records))
			}

			service, closeStores, err := buildService(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeStores()

			report, err := service.ImportQuestions(ctx, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "received=%d imported=%d duplicates=%d rejected=%d\n",
				report.Received, report.Imported, report.Duplicates, report.Rejected)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON file with an array of questions")
	cmd.Flags().IntVar(&amount, "amount", 0, "number of questions to fetch from the Open Trivia DB (max 50 per request)")
	return cmd
}
