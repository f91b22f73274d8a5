package services

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Project types
const (
	ProjectTypeWeb      = "web"
	ProjectTypeBranding = "branding"
)

//go:embed content.yaml
var contentYAML []byte

// Gallery describes numbered project images: /<dir>/<prefix>-01.png ...
type Gallery struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Count  int    `yaml:"count"`
}

type Project struct {
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title"`
	Type          string   `yaml:"type"`
	Cover         string   `yaml:"cover"`
	ImagePosition string   `yaml:"image_position"`
	ExternalLink  string   `yaml:"external_link"`
	Description   string   `yaml:"description"`
	Gallery       *Gallery `yaml:"gallery"`
}

// HasDetailPage reports whether /portfolio/:id renders the project
func (p Project) HasDetailPage() bool {
	return p.Gallery != nil && p.Gallery.Count > 0
}

// Images lists gallery image paths in order
func (p Project) Images() []string {
	if p.Gallery == nil {
		return nil
	}
	images := make([]string, 0, p.Gallery.Count)
	for i := 1; i <= p.Gallery.Count; i++ {
		images = append(images, fmt.Sprintf("/%s/%s-%02d.png", p.Gallery.Dir, p.Gallery.Prefix, i))
	}
	return images
}

type Testimonial struct {
	Name string `yaml:"name"`
	Role string `yaml:"role"`
	Text string `yaml:"text"`
}

// Stat is a counter on the home page; Key is its translation key
type Stat struct {
	Value  int    `yaml:"value"`
	Suffix string `yaml:"suffix"`
	Key    string `yaml:"key"`
}

// SiteContent is the static content of the marketing pages
type SiteContent struct {
	Projects     []Project     `yaml:"projects"`
	Testimonials []Testimonial `yaml:"testimonials"`
	Stats        []Stat        `yaml:"stats"`
}

var (
	contentOnce sync.Once
	content     *SiteContent
	contentErr  error
)

// Content returns the embedded site content, parsed once
func Content() (*SiteContent, error) {
	contentOnce.Do(func() {
		content, contentErr = parseContent(contentYAML)
	})
	return content, contentErr
}

func parseContent(data []byte) (*SiteContent, error) {
	var c SiteContent
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse site content: %w", err)
	}

	seen := make(map[string]bool, len(c.Projects))
	for _, p := range c.Projects {
		if p.ID == "" || p.Title == "" {
			return nil, fmt.Errorf("project without id or title")
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate project id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Type != ProjectTypeWeb && p.Type != ProjectTypeBranding {
			return nil, fmt.Errorf("project %q has unknown type %q", p.ID, p.Type)
		}
	}
	return &c, nil
}

// FindProject looks a project up by id
func (c *SiteContent) FindProject(id string) (Project, bool) {
	for _, p := range c.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// ProjectsByType filters projects; an empty type returns all of them
func (c *SiteContent) ProjectsByType(projectType string) []Project {
	if projectType == "" {
		return c.Projects
	}
	var out []Project
	for _, p := range c.Projects {
		if p.Type == projectType {
			out = append(out, p)
		}
	}
	return out
}

// AssetURL resolves a site image path through the storage provider. Images
// live under "portfolio/" in R2; locally they are served from /static.
func AssetURL(path string) string {
	if Storage != nil {
		if u := Storage.PublicURL("portfolio" + path); u != "" {
			return u
		}
	}
	return "/static" + path
}
