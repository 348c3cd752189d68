package infrastructure

import "adpulse/internal/domain"

// UnscoredQuality is the default QualityScorer: it rates nothing, so every
// inventory row reports its quality fields as not computed. A real scoring
// collaborator can be injected in its place without touching the
// aggregator.
type UnscoredQuality struct{}

func NewUnscoredQuality() *UnscoredQuality {
	return &UnscoredQuality{}
}

func (UnscoredQuality) Score(exchange, appID string, totals domain.Totals) *domain.InventoryQuality {
	return nil
}
