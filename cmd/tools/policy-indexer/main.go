// cmd/tools/policy-indexer/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hr-assistant/internal/common/config"
	"hr-assistant/internal/common/database"
	"hr-assistant/internal/common/logger"
	"hr-assistant/internal/ingest"
	"hr-assistant/internal/models"
	sp "hr-assistant/internal/workers/data-access/search-policies"
)

var (
	configPath   string
	indexName    string
	sourceDir    string
	chunkSize    int
	chunkOverlap int
	batchSize    int
	dryRun       bool

	rootCmd = &cobra.Command{
		Use:   "policy-indexer",
		Short: "Loads HR policy documents into the policy search index",
	}

	indexCmd = &cobra.Command{
		Use:   "index",
		Short: "Split policy files into chunks and bulk-index them",
		Long: `Walks --dir for .pdf, .txt and .md files, splits them into overlapping
chunks and indexes {content, source, page, chunk} documents. The index is
created with a text mapping if it does not exist. Re-running replaces chunks
with the same source, page and chunk number.`,
		RunE: runIndex,
	}

	ensureCmd = &cobra.Command{
		Use:   "ensure",
		Short: "Create the policy index if it is missing",
		RunE:  runEnsure,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default: configs/config.yaml lookup)")
	rootCmd.PersistentFlags().StringVar(&indexName, "index", "", "Index name (default: database.elasticsearch.policy_index)")

	indexCmd.Flags().StringVar(&sourceDir, "dir", "./policy_pdfs", "Directory holding policy documents")
	indexCmd.Flags().IntVar(&chunkSize, "chunk-size", ingest.DefaultChunkSize, "Maximum characters per chunk")
	indexCmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", ingest.DefaultChunkOverlap, "Characters shared by consecutive chunks")
	indexCmd.Flags().IntVar(&batchSize, "batch-size", 500, "Documents per bulk request")
	indexCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report what would be indexed")

	rootCmd.AddCommand(indexCmd, ensureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func openIndex(cfg *config.Config) (*sp.PolicyIndex, error) {
	name := indexName
	if name == "" {
		name = cfg.Database.Elasticsearch.PolicyIndex
	}
	if name == "" {
		name = sp.DefaultIndex
	}
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return nil, err
	}
	return sp.NewPolicyIndex(es.Client, name), nil
}

func runEnsure(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level, "console")
	defer log.Sync()

	index, err := openIndex(cfg)
	if err != nil {
		return err
	}
	created, err := index.EnsureIndex(cmd.Context())
	if err != nil {
		return err
	}
	log.Info("policy index ready", zap.String("index", index.Name()), zap.Bool("created", created))
	return nil
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level, "console")
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := ingest.Discover(sourceDir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", sourceDir, err)
	}
	if len(files) == 0 {
		log.Warn("no policy documents found", zap.String("dir", sourceDir))
		return nil
	}

	loader := ingest.NewLoader(chunkSize, chunkOverlap)
	var docs []models.PolicyDocument
	for _, path := range files {
		chunks, err := loader.LoadFile(ctx, path)
		if err != nil {
			log.Warn("skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		log.Info("loaded file", zap.String("file", path), zap.Int("chunks", len(chunks)))
		docs = append(docs, chunks...)
	}

	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%d files, %d chunks (dry run)\n", len(files), len(docs))
		return nil
	}

	index, err := openIndex(cfg)
	if err != nil {
		return err
	}
	if created, err := index.EnsureIndex(ctx); err != nil {
		return err
	} else if created {
		log.Info("created policy index", zap.String("index", index.Name()))
	}

	start := time.Now()
	total := 0
	for from := 0; from < len(docs); from += batchSize {
		to := from + batchSize
		if to > len(docs) {
			to = len(docs)
		}
		n, err := index.IndexDocuments(ctx, docs[from:to])
		if err != nil {
			return fmt.Errorf("bulk index chunks %d-%d: %w", from, to, err)
		}
		total += n
	}

	log.Info("policy documents indexed",
		zap.String("index", index.Name()),
		zap.Int("files", len(files)),
		zap.Int("chunks", total),
		zap.Duration("took", time.Since(start)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks from %d files into %s\n", total, len(files), index.Name())
	return nil
}
