package services

import (
	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/ports"
)

// ContentService serves the read-only content sections
type ContentService struct {
	content ports.ContentRepository
}

// NewContentService creates a new content service
func NewContentService(content ports.ContentRepository) *ContentService {
	return &ContentService{content: content}
}

func (s *ContentService) Company() entities.Company {
	return s.content.Company()
}

func (s *ContentService) Products() []entities.Product {
	return s.content.Products()
}

func (s *ContentService) Clientele() []entities.Testimonial {
	return s.content.Clientele()
}

func (s *ContentService) Timeline() []entities.TimelineEntry {
	return s.content.Timeline()
}

func (s *ContentService) ProcessSteps() []entities.ProcessStep {
	return s.content.ProcessSteps()
}

func (s *ContentService) BenefitsPage() entities.BenefitsPage {
	return s.content.BenefitsPage()
}

func (s *ContentService) CertificationsPage() entities.CertificationsPage {
	return s.content.CertificationsPage()
}

// Ready reports whether the content document was loaded
func (s *ContentService) Ready() bool {
	return s.content.Loaded()
}
