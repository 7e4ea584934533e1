// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/OCAP2/osu-parsers/internal/model"
)

// CatalogExport is the root JSON structure
type CatalogExport struct {
	ExportedAt time.Time        `json:"exportedAt"`
	Beatmaps   []model.Beatmap  `json:"beatmaps"`
	Scores     []model.Score    `json:"scores"`
	IndexRuns  []model.IndexRun `json:"indexRuns"`
}

// exportJSON writes the catalog to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	timestamp := export.ExportedAt.Format("20060102_150405")
	filename := fmt.Sprintf("catalog_%s.json", timestamp)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() CatalogExport {
	runs := make([]model.IndexRun, len(b.runs))
	copy(runs, b.runs)
	return CatalogExport{
		ExportedAt: b.now(),
		Beatmaps:   b.beatmapList(),
		Scores:     b.scoreList(),
		IndexRuns:  runs,
	}
}

func writeJSON(path string, data CatalogExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data CatalogExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}
