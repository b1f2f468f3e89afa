package sequence

import (
	"regexp"
	"strings"

	"mmrag/internal/domain"
)

// markerRe matches the image markers the conversion stage leaves in the
// markdown: a standard markdown image reference or a bare comment marker.
var markerRe = regexp.MustCompile(`!\[[^\]]*]\([^)]*\)|<!--\s*image\s*-->`)

// Build walks the document's markdown left to right and interleaves text
// segments with image segments. The i-th marker maps positionally to the
// i-th image asset; markers beyond the available assets are skipped.
// Captions come from the document's caption registry keyed by image file
// name; a missing caption is an empty string. A document without markers
// becomes a single text segment.
func Build(doc domain.Document) domain.DocumentSequence {
	matches := markerRe.FindAllStringIndex(doc.Markdown, -1)
	if len(matches) == 0 {
		return domain.DocumentSequence{
			DocumentID: doc.ID,
			Segments:   []domain.Segment{{Kind: domain.SegmentText, Content: doc.Markdown}},
		}
	}

	var segments []domain.Segment
	pos := 0
	for i, m := range matches {
		before := strings.TrimSpace(doc.Markdown[pos:m[0]])
		if before != "" {
			segments = append(segments, domain.Segment{Kind: domain.SegmentText, Content: before})
		}
		if i < len(doc.Images) {
			asset := doc.Images[i]
			segments = append(segments, domain.Segment{
				Kind:      domain.SegmentImage,
				Content:   asset.Path,
				ImageName: asset.FileName,
				Caption:   doc.Captions[asset.FileName],
			})
		}
		pos = m[1]
	}
	after := strings.TrimSpace(doc.Markdown[pos:])
	if after != "" {
		segments = append(segments, domain.Segment{Kind: domain.SegmentText, Content: after})
	}

	return domain.DocumentSequence{DocumentID: doc.ID, Segments: segments}
}
