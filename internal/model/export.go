package model

// FocalPoint marks the visually important region of an image as fractions
// of its width (Left) and height (Top), both in [0,1].
type FocalPoint struct {
	Left float64 `json:"Left"`
	Top  float64 `json:"Top"`
}

// ExportNode is one entry of export-report.json.
//
// Folders have a nil UmbracoFilePath. File entries have UmbracoFilePath set
// to the absolute source path, or nil when the source could not be found.
// Width, Height and Audio are only filled when media inspection is enabled.
type ExportNode struct {
	ID              int           `json:"Id"`
	Name            string        `json:"Name"`
	PathSegment     string        `json:"PathSegment"`
	GUID            string        `json:"Guid"`
	ExportPath      string        `json:"ExportPath"`
	UmbracoFilePath *string       `json:"UmbracoFilePath"`
	FocalPoint      *FocalPoint   `json:"FocalPoint"`
	Width           int           `json:"Width,omitempty"`
	Height          int           `json:"Height,omitempty"`
	Audio           *AudioTags    `json:"Audio,omitempty"`
	Children        []*ExportNode `json:"Children"`
}

// AudioTags holds the ID3 text frames read from an exported audio file.
type AudioTags struct {
	Title  string `json:"Title,omitempty"`
	Artist string `json:"Artist,omitempty"`
	Album  string `json:"Album,omitempty"`
}

// NameFix is one entry of export-fixednames.json.
//
// A NameFix exists when the display name had to be sanitized (FixedName is
// set) or when the node's source file could not be resolved (ErrorMessage
// is set), or both.
type NameFix struct {
	UmbracoName  string `json:"UmbracoName"`
	FixedName    string `json:"FixedName,omitempty"`
	ErrorMessage string `json:"ErrorMessage,omitempty"`
}

// AddError appends msg to the record's error message.
func (f *NameFix) AddError(msg string) {
	if f.ErrorMessage == "" {
		f.ErrorMessage = msg
		return
	}
	f.ErrorMessage += "; " + msg
}

// Stats counts what an export run did.
type Stats struct {
	Folders        int   `json:"Folders"`
	FilesCopied    int   `json:"FilesCopied"`
	FilesExisting  int   `json:"FilesExisting"`
	MissingSources int   `json:"MissingSources"`
	Collisions     int   `json:"Collisions"`
	BytesCopied    int64 `json:"BytesCopied"`
}

// Report is the complete outcome of a successful export run.
type Report struct {
	Root       *ExportNode
	FixedNames []*NameFix
	Stats      Stats
}
