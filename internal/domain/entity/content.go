package entity

import "time"

// Record is implemented by every content entity managed through the dashboard.
type Record interface {
	RecordID() string
}

// Blog is a published article.
type Blog struct {
	ID        string    `json:"_id,omitempty"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func (b Blog) RecordID() string { return b.ID }

// Client is a customer shown in the portfolio.
type Client struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name"`
	Company     string `json:"company,omitempty"`
	Website     string `json:"website,omitempty"`
	Testimonial string `json:"testimonial,omitempty"`
	Logo        string `json:"logo,omitempty"`
}

func (c Client) RecordID() string { return c.ID }

// TeamMember is a person on the agency's team page.
type TeamMember struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Bio      string `json:"bio,omitempty"`
	Image    string `json:"image,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

func (m TeamMember) RecordID() string { return m.ID }

// WorkItem is a project in the portfolio.
type WorkItem struct {
	ID           string   `json:"_id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category,omitempty"`
	Link         string   `json:"link,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Image        string   `json:"image,omitempty"`
}

func (w WorkItem) RecordID() string { return w.ID }

// JourneyKind partitions journey entries.
type JourneyKind string

const (
	JourneyExperience JourneyKind = "experience"
	JourneySkill      JourneyKind = "skill"
	JourneyEducation  JourneyKind = "education"
)

// IsValid reports whether k is one of the known journey kinds.
func (k JourneyKind) IsValid() bool {
	switch k {
	case JourneyExperience, JourneySkill, JourneyEducation:
		return true
	default:
		return false
	}
}

// JourneyEntry is an experience, skill or education item on the about page.
type JourneyEntry struct {
	ID           string      `json:"_id,omitempty"`
	Kind         JourneyKind `json:"type"`
	Title        string      `json:"title"`
	Organization string      `json:"organization,omitempty"`
	Period       string      `json:"period,omitempty"`
	Description  string      `json:"description,omitempty"`
	Level        int         `json:"level,omitempty"`
}

func (j JourneyEntry) RecordID() string { return j.ID }
