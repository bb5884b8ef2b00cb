package atp

import "encoding/base64"

/*
Part is a discriminated union over Text, File and Data parts. We keep it
simple by embedding all optional fields in a single struct, which avoids
heavy custom JSON marshalling logic while remaining wire compatible.

NOTE: exactly ONE of Text, File, or Data should be populated according to
the Kind field. This is not enforced at the struct level, but applications
should ensure this constraint is respected when creating Parts.
*/
type Part struct {
	Kind PartKind `json:"kind"`

	// Exactly one of the following should be populated depending on Kind.
	Text string         `json:"text,omitempty"`
	File *FilePart      `json:"file,omitempty"`
	Data map[string]any `json:"data,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// PartKind is the discriminator for a Part union.
type PartKind string

const (
	PartKindText PartKind = "text"
	PartKindFile PartKind = "file"
	PartKindData PartKind = "data"
)

// IsText reports whether the part carries text content.
func (part Part) IsText() bool {
	return part.Kind == PartKindText
}

type FilePart struct {
	Name     *string `json:"name,omitempty"`
	MimeType *string `json:"mimeType,omitempty"`
	Data     string  `json:"bytes,omitempty"`
	URI      string  `json:"uri,omitempty"`
}

func NewTextPart(text string) Part {
	return Part{
		Kind: PartKindText,
		Text: text,
	}
}

func NewFilePart(name string, mimeType string, data []byte) Part {
	return Part{
		Kind: PartKindFile,
		File: &FilePart{
			Name:     &name,
			MimeType: &mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		},
	}
}

func NewDataPart(data map[string]any) Part {
	return Part{
		Kind: PartKindData,
		Data: data,
	}
}
