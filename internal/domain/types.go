package domain

// SegmentKind distinguishes text from image segments in a document sequence.
type SegmentKind string

const (
	SegmentText  SegmentKind = "text"
	SegmentImage SegmentKind = "image"
)

// Segment is one contiguous unit of a document in reading order.
// Text segments carry markdown text; image segments carry the asset name
// and an optional caption produced by the caption service.
type Segment struct {
	Kind      SegmentKind
	Content   string
	ImageName string
	Caption   string
}

// ImageAsset is one extracted image belonging to a source document,
// ordered by discovery order of the conversion stage.
type ImageAsset struct {
	FileName   string
	PageNumber int
	Path       string
}

// Document is the output of the external conversion stage for one source
// file: markdown text plus the ordered list of extracted image assets.
type Document struct {
	ID       string
	Markdown string
	Images   []ImageAsset
	Captions map[string]string
}

// DocumentSequence is the interleaved multimodal representation of one
// document. Segments are immutable once built and keep reading order.
type DocumentSequence struct {
	DocumentID string
	Segments   []Segment
}

// ImageCount returns the number of image segments in the sequence.
func (s DocumentSequence) ImageCount() int {
	n := 0
	for _, seg := range s.Segments {
		if seg.Kind == SegmentImage {
			n++
		}
	}
	return n
}

// Chunk is a bounded-length slice of a document's combined text.
type Chunk struct {
	Index int
	Text  string
}

// EmbeddingVector is one embedding produced for a chunk, together with the
// model that produced it.
type EmbeddingVector struct {
	Values     []float64
	Model      string
	ChunkIndex int
}

// DocumentEmbedding is the per-document embedding result: the mean of all
// chunk vectors plus the chunk vectors themselves.
type DocumentEmbedding struct {
	DocumentID   string
	Vector       EmbeddingVector
	CombinedText string
	SegmentCount int
	ImageCount   int
	Chunks       []EmbeddingVector
}

// ImageMeta is the image metadata stored alongside a point.
type ImageMeta struct {
	Name    string `json:"image_name"`
	Caption string `json:"caption"`
	Preview string `json:"image_path"`
}

// PointPayload is the payload schema attached to every stored vector.
type PointPayload struct {
	DocumentID   string      `json:"pdf_name"`
	Text         string      `json:"text"`
	SegmentCount int         `json:"content_count"`
	ImageCount   int         `json:"image_count"`
	Images       []ImageMeta `json:"images"`
}

// IndexPoint is one stored vector with its payload. IDs are freshly
// generated UUIDs; re-ingestion adds new points rather than replacing.
type IndexPoint struct {
	ID      string
	Vector  []float64
	Payload PointPayload
}

// ScoredPoint is a search hit: a stored point and its cosine similarity.
type ScoredPoint struct {
	Point IndexPoint
	Score float64
}

// RetrievedDocument is the retrieval-side view of a search hit handed to
// the generation stage.
type RetrievedDocument struct {
	DocumentID string
	Text       string
	Score      float64
}
