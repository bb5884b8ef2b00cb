package atp

/*
Artifact is the output of a task.
*/
type Artifact struct {
	ArtifactID  string         `json:"artifactId,omitempty"`
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Parts       []Part         `json:"parts"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Index       int            `json:"index,omitempty"`
}

func NewTextArtifact(name string, texts ...string) Artifact {
	parts := make([]Part, 0, len(texts))

	for _, text := range texts {
		parts = append(parts, NewTextPart(text))
	}

	return Artifact{
		Name:  &name,
		Parts: parts,
	}
}

func NewFileArtifact(name string, mimeType string, data string) Artifact {
	return Artifact{
		Name: &name,
		Parts: []Part{
			{
				Kind: PartKindFile,
				File: &FilePart{
					MimeType: &mimeType,
					Data:     data,
				},
			},
		},
	}
}
