package analytics

import (
    "context"
    "fmt"

    "HoopLine/internal/domain/models"
    domsvc "HoopLine/internal/domain/service"
    "HoopLine/pkg/config"
)

const advisePath = "/override/advise"

type adviseRequest struct {
    Record *models.MatchupRecord `json:"record"`
}

type adviseResponse struct {
    Abstain    bool     `json:"abstain"`
    Side       int      `json:"side"`
    Confidence float64  `json:"confidence"`
    Reasons    []string `json:"reasons"`
}

// HTTPOverrideAdvisor asks a remote reasoning service for the override bundle.
type HTTPOverrideAdvisor struct {
    base *HTTPServiceBase
}

func NewHTTPOverrideAdvisor(cfg *config.Config) *HTTPOverrideAdvisor {
    return &HTTPOverrideAdvisor{base: NewHTTPServiceBase(cfg)}
}

func (a *HTTPOverrideAdvisor) Advise(ctx context.Context, rec *models.MatchupRecord) (*models.OverrideSignal, error) {
    var resp adviseResponse
    if err := a.base.PostJSONWithRetry(ctx, advisePath, adviseRequest{Record: rec}, &resp); err != nil {
        return nil, err
    }
    if resp.Abstain {
        return nil, nil
    }
    return &models.OverrideSignal{
        Side:       resp.Side,
        Confidence: resp.Confidence,
        Reasons:    resp.Reasons,
    }, nil
}

// Health fails while the breaker is open.
func (a *HTTPOverrideAdvisor) Health(context.Context) error {
    if st := a.base.State(); st == "open" {
        return fmt.Errorf("advisor breaker %s", st)
    }
    return nil
}

var _ domsvc.OverrideAdvisor = (*HTTPOverrideAdvisor)(nil)
