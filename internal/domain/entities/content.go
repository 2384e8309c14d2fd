package entities

// Section names as they appear in the content document.
const (
	SectionCompany            = "company"
	SectionProducts           = "products"
	SectionClientele          = "clientele"
	SectionTimeline           = "timeline"
	SectionProcessSteps       = "processSteps"
	SectionBenefitsPage       = "benefitsPage"
	SectionCertificationsPage = "certificationsPage"
	SectionEvents             = "events"
)

// SiteContent is the root content document
type SiteContent struct {
	Company            Company            `json:"company"`
	Products           []Product          `json:"products" validate:"dive"`
	Clientele          []Testimonial      `json:"clientele" validate:"dive"`
	Timeline           []TimelineEntry    `json:"timeline" validate:"dive"`
	ProcessSteps       []ProcessStep      `json:"processSteps" validate:"dive"`
	BenefitsPage       BenefitsPage       `json:"benefitsPage"`
	CertificationsPage CertificationsPage `json:"certificationsPage"`
	Events             []Event            `json:"events" validate:"dive"`
}

// Company describes the organization
type Company struct {
	Name           string      `json:"name"`
	Tagline        string      `json:"tagline"`
	Description    string      `json:"description"`
	Mission        string      `json:"mission"`
	Vision         string      `json:"vision"`
	Founded        string      `json:"founded,omitempty"`
	Objectives     []string    `json:"objectives"`
	Certifications []string    `json:"certifications"`
	Contact        ContactInfo `json:"contact"`
}

// ContactInfo holds the public company contact details
type ContactInfo struct {
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Product is a fertilizer product descriptor
type Product struct {
	ID          int      `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	NPK         string   `json:"npk"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
	Image       string   `json:"image,omitempty"`
}

// Testimonial is a client quote
type Testimonial struct {
	ID       int    `json:"id"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role,omitempty"`
	Location string `json:"location,omitempty"`
	Quote    string `json:"quote" validate:"required"`
	Rating   int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Image    string `json:"image,omitempty"`
}

// TimelineEntry is a company history milestone
type TimelineEntry struct {
	Year        string `json:"year" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// ProcessStep is one step of the production process
type ProcessStep struct {
	Step        int    `json:"step"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// BenefitsPage is the copy of the benefits page
type BenefitsPage struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Intro    string        `json:"intro"`
	Benefits []BenefitItem `json:"benefits" validate:"dive"`
}

// BenefitItem is one benefit card
type BenefitItem struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// CertificationsPage is the copy of the certifications page
type CertificationsPage struct {
	Title          string              `json:"title"`
	Subtitle       string              `json:"subtitle"`
	Intro          string              `json:"intro"`
	Certifications []CertificationItem `json:"certifications" validate:"dive"`
}

// CertificationItem is one certificate shown on the certifications page
type CertificationItem struct {
	Name        string `json:"name" validate:"required"`
	Issuer      string `json:"issuer,omitempty"`
	Year        string `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
	Document    string `json:"document,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Normalize replaces nil slices with empty ones so every section
// serializes as an object or array, never null.
func (s *SiteContent) Normalize() {
	s.Company.normalize()
	if s.Products == nil {
		s.Products = []Product{}
	}
	for i := range s.Products {
		if s.Products[i].Benefits == nil {
			s.Products[i].Benefits = []string{}
		}
	}
	if s.Clientele == nil {
		s.Clientele = []Testimonial{}
	}
	if s.Timeline == nil {
		s.Timeline = []TimelineEntry{}
	}
	if s.ProcessSteps == nil {
		s.ProcessSteps = []ProcessStep{}
	}
	if s.BenefitsPage.Benefits == nil {
		s.BenefitsPage.Benefits = []BenefitItem{}
	}
	if s.CertificationsPage.Certifications == nil {
		s.CertificationsPage.Certifications = []CertificationItem{}
	}
	if s.Events == nil {
		s.Events = []Event{}
	}
}

func (c *Company) normalize() {
	if c.Objectives == nil {
		c.Objectives = []string{}
	}
	if c.Certifications == nil {
		c.Certifications = []string{}
	}
}

// EmptySiteContent returns a normalized document with no content.
func EmptySiteContent() SiteContent {
	var s SiteContent
	s.Normalize()
	return s
}
