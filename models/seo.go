package models

// SEO holds the head metadata of one rendered page
type SEO struct {
	Title       string
	Description string
	Keywords    string
	Canonical   string
	OGTitle     string // falls back to Title
	OGDesc      string // falls back to Description
	OGImage     string
	OGType      string
	TwitterCard string
	NoIndex     bool
	Locale      string
	AltLocales  []string // hreflang alternates
	// StructuredData is emitted as application/ld+json when set
	StructuredData map[string]any
}

var ogLocales = map[string]string{
	"pt": "pt_BR",
	"en": "en_US",
	"es": "es_ES",
}

// DefaultSEO returns the site defaults: Portuguese, website card, large image.
func DefaultSEO(title, description string) *SEO {
	return &SEO{
		Title:       title,
		Description: description,
		OGType:      "website",
		TwitterCard: "summary_large_image",
		Locale:      "pt",
		AltLocales:  []string{"en", "es"},
	}
}

func (s *SEO) WithCanonical(url string) *SEO {
	s.Canonical = url
	return s
}

func (s *SEO) WithOGImage(imageURL string) *SEO {
	s.OGImage = imageURL
	return s
}

func (s *SEO) WithLocale(locale string, altLocales ...string) *SEO {
	s.Locale = locale
	s.AltLocales = altLocales
	return s
}

func (s *SEO) WithNoIndex() *SEO {
	s.NoIndex = true
	return s
}

func (s *SEO) WithStructuredData(data map[string]any) *SEO {
	s.StructuredData = data
	return s
}

func (s *SEO) GetOGTitle() string {
	if s.OGTitle != "" {
		return s.OGTitle
	}
	return s.Title
}

func (s *SEO) GetOGDesc() string {
	if s.OGDesc != "" {
		return s.OGDesc
	}
	return s.Description
}

// OGLocale returns the Open Graph locale tag, e.g. "pt_BR"
func (s *SEO) OGLocale() string {
	if tag, ok := ogLocales[s.Locale]; ok {
		return tag
	}
	return ogLocales["pt"]
}

// OrganizationSchema describes the agency for search engines.
func OrganizationSchema(name, siteURL, logoURL, email string) map[string]any {
	return map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
		"url":      siteURL,
		"logo":     logoURL,
		"email":    email,
		"contactPoint": map[string]any{
			"@type":             "ContactPoint",
			"contactType":       "sales",
			"email":             email,
			"availableLanguage": []string{"Portuguese", "English", "Spanish"},
		},
	}
}

// CreativeWorkSchema describes one portfolio project.
func CreativeWorkSchema(title, description, pageURL, imageURL, creator string) map[string]any {
	return map[string]any{
		"@context":    "https://schema.org",
		"@type":       "CreativeWork",
		"name":        title,
		"description": description,
		"url":         pageURL,
		"image":       imageURL,
		"creator":     map[string]any{"@type": "Organization", "name": creator},
	}
}
