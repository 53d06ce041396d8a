package service

import (
	"github.com/fixmycity/backend/internal/domain"
)

// ComplaintRepository is re-exported from domain for convenience
type ComplaintRepository = domain.ComplaintRepository
