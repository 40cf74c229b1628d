package folders

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/shelf/core"
)

// Defaults returns the smart folders shipped out of the box. Date-based
// defaults resolve their window relative to now at creation time; they
// are refreshed on every InstallDefaults call.
func Defaults(now time.Time) []*core.SmartFolderSpec {
	weekAgo := now.AddDate(0, 0, -7)
	return []*core.SmartFolderSpec{
		{
			Name:        "Recent",
			Description: "Files modified in the last week",
			Icon:        "clock",
			Filters:     core.Filters{DateFrom: weekAgo},
		},
		{
			Name:        "Large Files",
			Description: "Files over 100 MB",
			Icon:        "scale",
			Filters:     core.Filters{MinSize: 100 * 1024 * 1024},
		},
		{
			Name:        "PDFs",
			Description: "All PDF documents",
			Icon:        "doc",
			Filters:     core.Filters{Extensions: []string{".pdf"}},
		},
		{
			Name:        "Screenshots",
			Description: "Screen captures",
			Icon:        "camera",
			Filters:     core.Filters{Screenshots: true},
		},
		{
			Name:        "Duplicates",
			Description: "Files duplicating existing content",
			Icon:        "copy",
			Filters:     core.Filters{Duplicates: true},
		},
		{
			Name:        "Downloads",
			Description: "Everything under the downloads folder",
			Icon:        "download",
			Filters:     core.Filters{FolderPrefix: downloadsDir()},
		},
	}
}

func downloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/Downloads"
	}
	return filepath.Join(home, "Downloads")
}

// InstallDefaults persists the default folders, preserving use counters
// on folders that already exist.
func (c *Compiler) InstallDefaults(ctx context.Context) error {
	for _, spec := range Defaults(time.Now().UTC()) {
		existing, err := c.store.Get(ctx, core.IDFromContent(spec.Name))
		if err == nil {
			spec.UseCount = existing.UseCount
			spec.InsertedAt = existing.InsertedAt
		}
		if err := c.store.Put(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}
