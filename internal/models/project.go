package models

// Project represents a project within an organization.
type Project struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	OrganizationID int64   `json:"organization_id"`
	OwnerID        int64   `json:"owner_id"`
	IsActive       bool    `json:"is_active"`
	Color          string  `json:"color"`
}

// ProjectCreate is the payload for POST /api/v1/projects.
type ProjectCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Color       string  `json:"color"`
}

// ProjectUpdate is the partial payload for PATCH /api/v1/projects/{id}.
type ProjectUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// CloneProjects copies a project collection.
func CloneProjects(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p
		out[i].Description = clonePtr(p.Description)
	}
	return out
}
