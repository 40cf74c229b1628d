// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	shelf "github.com/poiesic/shelf"
	"github.com/poiesic/shelf/ai"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "shelf",
		Usage: "Hybrid file indexing and retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to the database directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
			&cli.BoolFlag{
				Name:  "local-embedding",
				Usage: "Use the offline hash-based embedder",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index files or directories",
				ArgsUsage: "PATH [PATH...]",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "recursive",
						Aliases: []string{"r"},
						Usage:   "Recurse into subdirectories",
						Value:   true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search indexed files",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
					&cli.BoolFlag{
						Name:  "cached",
						Usage: "Serve from the query cache when possible",
					},
					&cli.StringSliceFlag{
						Name:  "ext",
						Usage: "Only return files with these extensions",
					},
					&cli.StringFlag{
						Name:  "project",
						Usage: "Only return files in this project",
					},
				},
			},
			{
				Name:      "recent",
				Usage:     "Show files active in a time window",
				ArgsUsage: "[PHRASE]",
				Action:    recentCommand,
			},
			{
				Name:      "related",
				Usage:     "Show files related to a file",
				ArgsUsage: "FILE_ID",
				Action:    relatedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Maximum graph distance",
						Value: 2,
					},
				},
			},
			{
				Name:  "folders",
				Usage: "Manage smart folders",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List smart folders",
						Action: foldersListCommand,
					},
					{
						Name:      "run",
						Usage:     "Show the files a smart folder matches",
						ArgsUsage: "NAME",
						Action:    foldersRunCommand,
					},
					{
						Name:   "create",
						Usage:  "Create a smart folder from a JSON filter spec",
						Action: foldersCreateCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "name",
								Usage:    "Folder name",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "description",
								Usage: "Folder description",
							},
							&cli.StringFlag{
								Name:     "filters",
								Usage:    `Filter spec, e.g. '{"extensions": [".pdf"], "project": "acme"}'`,
								Required: true,
							},
						},
					},
					{
						Name:      "delete",
						Usage:     "Delete a smart folder",
						ArgsUsage: "NAME",
						Action:    foldersDeleteCommand,
					},
				},
			},
			{
				Name:   "suggest",
				Usage:  "Show organization suggestions",
				Action: suggestCommand,
			},
			{
				Name:   "rebuild-vectors",
				Usage:  "Re-embed every live file with the configured backend",
				Action: rebuildVectorsCommand,
			},
			{
				Name:   "rebuild-graph",
				Usage:  "Recompute the relationship graph",
				Action: rebuildGraphCommand,
			},
			{
				Name:   "activity",
				Usage:  "Show event counts over recent days",
				Action: activityCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "days",
						Usage: "How many trailing days to summarize",
						Value: 7,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openDatabase builds a Database from the global flags.
func openDatabase(c *cli.Context) (*shelf.Database, error) {
	opts := []shelf.DatabaseOption{
		shelf.WithAIConfig(ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)),
		shelf.WithProgressWriter(os.Stderr),
	}
	if c.Bool("local-embedding") {
		opts = append(opts, shelf.WithLocalEmbedding())
	}
	return shelf.NewDatabase(c.String("db"), opts...)
}

func indexCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one path is required")
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	totalIndexed, totalSkipped := 0, 0
	for _, path := range c.Args().Slice() {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			indexed, skipped, err := db.IndexFolder(ctx, path, c.Bool("recursive"))
			if err != nil {
				return fmt.Errorf("indexing %s: %w", path, err)
			}
			totalIndexed += indexed
			totalSkipped += skipped
			continue
		}
		if _, err := db.IndexFile(ctx, path); err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
		totalIndexed++
	}

	fmt.Printf("Indexed %d files (%d skipped)\n", totalIndexed, totalSkipped)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("a query is required")
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	limit := c.Int("limit")

	var results []*core.SearchResult
	filters := &search.SearchFilters{
		Extensions: c.StringSlice("ext"),
		Project:    c.String("project"),
	}
	switch {
	case !filters.IsEmpty():
		results, err = db.SearchFiltered(ctx, query, limit, filters)
	case c.Bool("cached"):
		results, err = db.CachedSearch(ctx, query, limit)
	default:
		results, err = db.Search(ctx, query, limit)
	}
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results")
		return nil
	}
	for _, result := range results {
		fmt.Printf("%6.3f  %s  [%s]\n",
			result.Score, result.Record.Path, strings.Join(result.Modalities, ","))
	}
	return nil
}

func recentCommand(c *cli.Context) error {
	phrase := strings.Join(c.Args().Slice(), " ")
	if phrase == "" {
		phrase = "today"
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	window, records, err := db.TemporalQuery(context.Background(), phrase)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s to %s\n", window.Phrase,
		window.Start.Format("2006-01-02 15:04"), window.End.Format("2006-01-02 15:04"))
	if len(records) == 0 {
		fmt.Println("No activity")
		return nil
	}
	for _, record := range records {
		fmt.Printf("  %s\n", record.Path)
	}
	return nil
}

func relatedCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file ID is required")
	}
	var fileID uint64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &fileID); err != nil {
		return fmt.Errorf("invalid file ID %q", c.Args().First())
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	related, err := db.Related(context.Background(), core.ID(fileID), c.Int("depth"))
	if err != nil {
		return err
	}
	if len(related) == 0 {
		fmt.Println("No related files")
		return nil
	}
	for _, record := range related {
		fmt.Printf("%d  %s\n", record.Id, record.Path)
	}
	return nil
}

func foldersListCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	specs, err := db.SmartFolders(context.Background())
	if err != nil {
		return err
	}
	for _, spec := range specs {
		fmt.Printf("%-16s %4d uses  %s\n", spec.Name, spec.UseCount, spec.Description)
	}
	return nil
}

func foldersRunCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one folder name is required")
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.ExecuteSmartFolder(context.Background(),
		core.IDFromContent(c.Args().First()))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No matching files")
		return nil
	}
	for _, record := range records {
		fmt.Printf("  %s\n", record.Path)
	}
	return nil
}

func foldersCreateCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	spec, err := db.CreateSmartFolder(context.Background(),
		c.String("name"), c.String("description"), []byte(c.String("filters")))
	if err != nil {
		return err
	}
	fmt.Printf("Created smart folder %q\n", spec.Name)
	return nil
}

func foldersDeleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one folder name is required")
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	name := c.Args().First()
	if err := db.DeleteSmartFolder(context.Background(), core.IDFromContent(name)); err != nil {
		return err
	}
	fmt.Printf("Deleted smart folder %q\n", name)
	return nil
}

func suggestCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	suggestions, err := db.Suggestions(context.Background())
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Println("Nothing to suggest yet")
		return nil
	}
	for _, s := range suggestions {
		fmt.Printf("[%s] %s (%s)\n", s.Type, s.Title, s.Detail)
	}
	return nil
}

func rebuildVectorsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Backend: %s\n", db.Backend())
	return db.RebuildVectors(context.Background())
}

func rebuildGraphCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.RebuildGraph(context.Background())
}

func activityCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := db.ActivitySummary(context.Background(), c.Int("days"))
	if err != nil {
		return err
	}

	fmt.Printf("Activity from %s to %s (%d events)\n",
		summary.Start.Format("2006-01-02"), summary.End.Format("2006-01-02"), summary.Total)
	for kind, count := range summary.Counts {
		fmt.Printf("  %-12s %d\n", kind, count)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}
