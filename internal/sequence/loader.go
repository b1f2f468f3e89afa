package sequence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"mmrag/internal/domain"
)

// captionRecord is one entry of a per-document captions file, as written
// by the caption stage: a JSON array of {image, caption}.
type captionRecord struct {
	Image   string `json:"image"`
	Caption string `json:"caption"`
}

var pageNoRe = regexp.MustCompile(`page_(\d+)_`)

// LoadDir reads the persisted output of the conversion stage. The layout
// per document is:
//
//	<dir>/<name>.md             markdown with image markers
//	<dir>/<name>_captions.json  caption records keyed by image file name
//	<dir>/<name>/images/*.png   extracted image assets
//
// A missing captions file or images directory is tolerated; an unreadable
// markdown file fails the whole load.
func LoadDir(dir string) ([]domain.Document, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scan parsed dir: %w", err)
	}
	sort.Strings(entries)

	var docs []domain.Document
	for _, mdPath := range entries {
		name := trimExt(filepath.Base(mdPath))
		md, err := os.ReadFile(mdPath)
		if err != nil {
			return nil, fmt.Errorf("read markdown for %s: %w", name, err)
		}

		doc := domain.Document{
			ID:       name,
			Markdown: string(md),
			Captions: loadCaptions(filepath.Join(dir, name+"_captions.json")),
			Images:   loadImages(filepath.Join(dir, name, "images")),
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no parsed documents found in %s", dir)
	}
	return docs, nil
}

func loadCaptions(path string) map[string]string {
	captions := map[string]string{}
	data, err := os.ReadFile(path)
	if err != nil {
		return captions
	}
	var records []captionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return captions
	}
	for _, r := range records {
		captions[r.Image] = r.Caption
	}
	return captions
}

func loadImages(dir string) []domain.ImageAsset {
	paths, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil
	}
	// File-name order keeps the positional marker mapping deterministic.
	sort.Strings(paths)
	assets := make([]domain.ImageAsset, 0, len(paths))
	for _, p := range paths {
		assets = append(assets, domain.ImageAsset{
			FileName:   filepath.Base(p),
			PageNumber: pageNumber(filepath.Base(p)),
			Path:       p,
		})
	}
	return assets
}

func pageNumber(fileName string) int {
	m := pageNoRe.FindStringSubmatch(fileName)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
