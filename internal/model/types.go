package model

const AppName = "gifgrab"

const Tagline = "Find the GIF. Grab the link."

var Version = "dev"

const DefaultPhrase = "cat"

const DefaultLimit = 10

// Variant names a rendition of a result. VariantFile and VariantPage are
// links to tenor.com, the others are direct media URLs.
type Variant string

const (
	VariantFile      Variant = "file"
	VariantPage      Variant = "page"
	VariantGIF       Variant = "gif"
	VariantTinyGIF   Variant = "tinygif"
	VariantMediumGIF Variant = "mediumgif"
	VariantNanoGIF   Variant = "nanogif"
)

// IsMedia reports whether v is served from the media_formats block.
func (v Variant) IsMedia() bool {
	switch v {
	case VariantGIF, VariantTinyGIF, VariantMediumGIF, VariantNanoGIF:
		return true
	}
	return false
}

type Action string

const (
	ActionList Action = "list"
	ActionCopy Action = "copy"
	ActionSave Action = "save"
)

type Query struct {
	Terms         []string
	Limit         int
	Type          Variant
	Resolution    Variant
	Action        Action
	Quiet         bool
	Random        bool
	ContentFilter string
	Locale        string
}

// LinkVariant is the variant whose URL the action hands to the user.
func (q Query) LinkVariant() Variant {
	if q.Action == ActionSave {
		return q.Resolution
	}
	return q.Type
}

type Media struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

type Result struct {
	ID    string             `json:"id"`
	Title string             `json:"title"`
	Tags  []string           `json:"tags,omitempty"`
	URLs  map[Variant]string `json:"urls"`
	Media map[Variant]Media  `json:"media,omitempty"`
}

func (r Result) Link(v Variant) string {
	if r.URLs == nil {
		return ""
	}
	return r.URLs[v]
}
