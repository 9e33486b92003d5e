package model

// DefaultProjectIcon is shown for projects without an emoji.
const DefaultProjectIcon = "📁"

// Project is a named grouping of tasks. Tasks reference projects weakly;
// a project does not own its tasks.
type Project struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// Icon returns the project emoji or the generic folder glyph.
func (p Project) Icon() string {
	if p.Emoji == "" {
		return DefaultProjectIcon
	}
	return p.Emoji
}

// ProjectInput is the body of project create and update requests.
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}
