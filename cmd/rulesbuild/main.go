// Command rulesbuild is the offline Rules Index build operation from
// spec §6: it chunks a Comprehensive Rules source document, embeds every
// chunk, and writes the resulting vector+keyword index to disk so a live
// process can load it with rules.LoadEngine instead of re-embedding the
// whole document at startup.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/stacksage/stacksage/pkg/logging"
	"github.com/stacksage/stacksage/pkg/stackconfig"
	"github.com/stacksage/stacksage/rules"
)

func main() {
	sourcePath := flag.String("source", "", "path to the Comprehensive Rules text file to index")
	outPath := flag.String("out", "", "path to write the built index (defaults to RULES_INDEX_PATH)")
	flag.Parse()

	if *sourcePath == "" {
		log.Fatal("rulesbuild: -source is required")
	}

	cfg := stackconfig.FromEnv()
	if *outPath == "" {
		*outPath = cfg.RulesIndexPath
	}

	text, err := os.ReadFile(*sourcePath)
	if err != nil {
		log.Fatalf("rulesbuild: read source: %v", err)
	}

	var embedder rules.Embedder
	switch cfg.EmbeddingMode {
	case stackconfig.EmbeddingModeHosted:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			log.Fatal("rulesbuild: EMBEDDING_MODE=hosted requires OPENAI_API_KEY")
		}
		embedder = rules.NewOpenAIEmbedder(apiKey, os.Getenv("OPENAI_BASE_URL"), "text-embedding-3-small", 1536)
	default:
		embedder = rules.NewLocalEmbedder(256)
	}

	engine := rules.NewEngine(embedder)
	ctx := context.Background()
	if err := engine.IndexText(ctx, string(text)); err != nil {
		log.Fatalf("rulesbuild: index source: %v", err)
	}

	if err := engine.Save(*outPath); err != nil {
		log.Fatalf("rulesbuild: save index: %v", err)
	}

	logging.WithComponent("rulesbuild").Info("index built",
		"source", *sourcePath, "out", *outPath, "embedding_mode", cfg.EmbeddingMode)
}
