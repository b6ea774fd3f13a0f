package score

import (
	"strings"

	"github.com/JPrier/JobSearch/internal/config"
	"github.com/JPrier/JobSearch/internal/models"
)

// Scorer computes the composite relevance score for a posting. It is applied
// only to postings that already passed every filter.
type Scorer struct {
	keywordBonuses map[string]float64
	remoteBonus    float64
	benefitsBonus  float64
}

func New(cfg *config.Config) *Scorer {
	return &Scorer{
		keywordBonuses: cfg.KeywordBonuses,
		remoteBonus:    cfg.RemoteBonus,
		benefitsBonus:  cfg.BenefitsBonus,
	}
}

// Score is salary + benefits bonus + keyword bonuses + remote bonus. There
// is no normalization; bonus values are configured to dominate salary on
// purpose.
func (s *Scorer) Score(p models.Posting) float64 {
	total := salaryComponent(p)

	description := strings.ToLower(p.Description)

	if strings.Contains(description, "benefits") {
		total += s.benefitsBonus
	}

	for keyword, bonus := range s.keywordBonuses {
		if strings.Contains(description, strings.ToLower(keyword)) {
			total += bonus
		}
	}

	if p.Remote == models.RemoteYes {
		total += s.remoteBonus
	}

	return total
}

func salaryComponent(p models.Posting) float64 {
	switch {
	case p.SalaryMin != nil && p.SalaryMax != nil:
		return (*p.SalaryMin + *p.SalaryMax) / 2
	case p.SalaryMin != nil:
		return *p.SalaryMin
	case p.SalaryMax != nil:
		return *p.SalaryMax
	}
	return 0
}
