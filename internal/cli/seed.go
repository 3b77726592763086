package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"learning-progress-service/internal/config"
	"learning-progress-service/internal/content"
	"learning-progress-service/internal/infra/postgres"
	"learning-progress-service/internal/logger"
)

// NewSeedCmd upserts quiz content and roadmaps from a YAML/JSON file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load quiz definitions and roadmaps into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			if file == "" {
				file = cfg.Quiz.File
			}
			if file == "" {
				return fmt.Errorf("no quiz file: pass --file or set quiz.file")
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}

			quizzes, err := content.LoadFile(file)
			if err != nil {
				return err
			}
			roadmaps, err := content.LoadRoadmapsFile(file)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}

			db := postgres.OpenDB(cfg.Postgres.URL)
			defer db.Close()
			writer := postgres.NewQuizWriter(db)

			for _, id := range sortedKeys(quizzes) {
				if err := writer.Upsert(cmd.Context(), quizzes[id]); err != nil {
					return err
				}
				log.Info("quiz seeded", zap.String("quiz", id), zap.Int("questions", len(quizzes[id].Questions)))
			}

			roadmapStore := postgres.NewRoadmapStore(db)
			for _, name := range sortedKeys(roadmaps) {
				if err := roadmapStore.SaveRoadmap(cmd.Context(), roadmaps[name]); err != nil {
					return err
				}
				log.Info("roadmap seeded", zap.String("roadmap", name), zap.Int("modules", len(roadmaps[name].Modules)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "quiz content file (defaults to quiz.file)")
	return cmd
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
