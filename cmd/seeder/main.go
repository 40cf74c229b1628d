package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/shelf"
)

// seedFiles is a small sample tree: project documents, a duplicate pair,
// screenshots, and downloads, enough to exercise every query surface.
var seedFiles = map[string]string{
	"docs/quarterly report.md": "Quarterly report for the acme account. " +
		"Revenue grew eight percent over the previous quarter. " +
		"The board requested a deeper breakdown of infrastructure spend.",
	"docs/meeting notes.txt": "Notes from the planning meeting. " +
		"Action items were assigned and the deadline moved to Friday. " +
		"Next meeting is scheduled for the same time next week.",
	"docs/invoice march.txt": "Invoice for services rendered in March. " +
		"Payment is due within thirty days of receipt.",
	"docs/invoice march copy.txt": "Invoice for services rendered in March. " +
		"Payment is due within thirty days of receipt.",
	"projects/acme/proposal.md": "Proposal for the acme platform migration. " +
		"The plan covers storage, networking, and a phased rollout.",
	"projects/acme/budget.csv": "item,cost\nservers,12000\nlicenses,3400\ntravel,1800\n",
	"projects/orbit/design.md": "Design sketch for the orbit scheduling service. " +
		"Queues drain in bounded batches so latency stays predictable.",
	"pics/Screenshot 2025-06-10 at 14.22.01.png": string([]byte{0x89, 'P', 'N', 'G', 0, 1, 2}),
	"pics/holiday.jpg":                           string([]byte{0xff, 0xd8, 0xff, 0, 3}),
	"downloads/manual.txt": "Instruction manual downloaded from the vendor site. " +
		"Chapter three covers troubleshooting and resets.",
}

var (
	rootDir = flag.String("root", "./seed_tree", "directory to generate the sample tree in")
	dbPath  = flag.String("db", "./shelf_db", "database directory to index into")
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
	flag.Parse()
}

func writeTree(root string) error {
	for rel, content := range seedFiles {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := writeTree(*rootDir); err != nil {
		panic(err)
	}
	slog.Info("sample tree written", "root", *rootDir, "files", len(seedFiles))

	db, err := shelf.NewDatabase(*dbPath, shelf.WithLocalEmbedding())
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ctx := context.Background()
	indexed, skipped, err := db.IndexFolder(ctx, *rootDir, true)
	if err != nil {
		panic(err)
	}
	slog.Info("sample tree indexed", "indexed", indexed, "skipped", skipped)

	// Tag the acme project files so graph queries have edges to walk
	records, err := db.Files().List(ctx)
	if err != nil {
		panic(err)
	}
	for _, record := range records {
		if filepath.Base(filepath.Dir(record.Path)) == "acme" {
			record.Project = "acme"
			record.Tags = []string{"acme", "migration"}
			if _, err := db.Files().Update(ctx, record); err != nil {
				panic(err)
			}
		}
	}

	if err := db.RebuildGraph(ctx); err != nil {
		panic(err)
	}
	slog.Info("graph rebuilt")
}
