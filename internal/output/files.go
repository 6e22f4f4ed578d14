package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/pkg/images"
	"github.com/jmylchreest/scrapemd/pkg/splitter"
)

// DefaultMarkdownFile is the output file used when none is given.
const DefaultMarkdownFile = "output.md"

// splitName splits name into its base and extension, keeping the directory
// on the base.
func splitName(name string) (base, ext string) {
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// PartName returns the file name of part i of a multi-part document.
func PartName(outputFile string, i int) string {
	base, ext := splitName(outputFile)
	return fmt.Sprintf("%s_part%d%s", base, i, ext)
}

// BatchName returns the manifest name of image batch i.
func BatchName(outputFile string, i int) string {
	base, _ := splitName(outputFile)
	return fmt.Sprintf("%s_images_batch%d.json", base, i)
}

// WriteChunks writes a split document. A single chunk goes to outputFile;
// several go to numbered part files, each starting with its part header.
// It returns the written file names in order.
func WriteChunks(outputFile string, chunks []splitter.Chunk) ([]string, error) {
	files := make([]string, 0, len(chunks))
	for _, c := range chunks {
		name := outputFile
		if c.Total > 1 {
			name = PartName(outputFile, c.Index)
		}
		if err := os.WriteFile(name, []byte(c.String()), 0o644); err != nil {
			return files, fmt.Errorf("failed to write %s: %w", name, err)
		}
		logger.Debug("wrote markdown", "file", name, "part", c.Index, "total", c.Total)
		files = append(files, name)
	}
	return files, nil
}

// WriteBatches writes one indented JSON manifest per image batch and
// returns the written file names in order.
func WriteBatches(outputFile string, batches [][]images.Image) ([]string, error) {
	files := make([]string, 0, len(batches))
	for i, b := range batches {
		name := BatchName(outputFile, i+1)
		if err := writeManifest(name, b); err != nil {
			return files, err
		}
		logger.Debug("wrote image batch", "file", name, "images", len(b))
		files = append(files, name)
	}
	return files, nil
}

func writeManifest(name string, batch []images.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}

	jw := NewJSONWriter(f, true, "  ")
	if err := jw.Write(batch); err != nil {
		f.Close()
		return err
	}
	if err := jw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return f.Close()
}
