package handler

import "agency/internal/domain/entity"

// Form is a submitted create or update form of a record type.
type Form[T entity.Record] interface {
	ToRecord() T
}

// BlogForm is the blog editor form. A cover image is uploaded alongside it.
type BlogForm struct {
	Title    string `json:"title" form:"title" validate:"required"`
	Author   string `json:"author" form:"author" validate:"required"`
	Content  string `json:"content" form:"content" validate:"required"`
	Category string `json:"category" form:"category"`
}

func (f BlogForm) ToRecord() entity.Blog {
	return entity.Blog{Title: f.Title, Author: f.Author, Content: f.Content, Category: f.Category}
}

// ClientForm is the client editor form.
type ClientForm struct {
	Name        string `json:"name" form:"name" validate:"required"`
	Company     string `json:"company" form:"company"`
	Website     string `json:"website" form:"website" validate:"omitempty,url"`
	Testimonial string `json:"testimonial" form:"testimonial"`
}

func (f ClientForm) ToRecord() entity.Client {
	return entity.Client{Name: f.Name, Company: f.Company, Website: f.Website, Testimonial: f.Testimonial}
}

// TeamForm is the team member editor form.
type TeamForm struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Position string `json:"position" form:"position" validate:"required"`
	Bio      string `json:"bio" form:"bio"`
	LinkedIn string `json:"linkedin" form:"linkedin" validate:"omitempty,url"`
	GitHub   string `json:"github" form:"github" validate:"omitempty,url"`
}

func (f TeamForm) ToRecord() entity.TeamMember {
	return entity.TeamMember{Name: f.Name, Position: f.Position, Bio: f.Bio, LinkedIn: f.LinkedIn, GitHub: f.GitHub}
}

// WorkForm is the portfolio project editor form.
type WorkForm struct {
	Title        string   `json:"title" form:"title" validate:"required"`
	Description  string   `json:"description" form:"description" validate:"required"`
	Category     string   `json:"category" form:"category"`
	Link         string   `json:"link" form:"link" validate:"omitempty,url"`
	Technologies []string `json:"technologies" form:"technologies"`
}

func (f WorkForm) ToRecord() entity.WorkItem {
	return entity.WorkItem{
		Title:        f.Title,
		Description:  f.Description,
		Category:     f.Category,
		Link:         f.Link,
		Technologies: f.Technologies,
	}
}

// JourneyForm is the journey entry editor form.
type JourneyForm struct {
	Kind         string `json:"type" form:"type" validate:"required,oneof=experience skill education"`
	Title        string `json:"title" form:"title" validate:"required"`
	Organization string `json:"organization" form:"organization"`
	Period       string `json:"period" form:"period"`
	Description  string `json:"description" form:"description"`
	Level        int    `json:"level" form:"level" validate:"min=0,max=100"`
}

func (f JourneyForm) ToRecord() entity.JourneyEntry {
	return entity.JourneyEntry{
		Kind:         entity.JourneyKind(f.Kind),
		Title:        f.Title,
		Organization: f.Organization,
		Period:       f.Period,
		Description:  f.Description,
		Level:        f.Level,
	}
}
