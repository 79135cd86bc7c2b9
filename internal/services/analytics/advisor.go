package analytics

import (
    domsvc "HoopLine/internal/domain/service"
    "HoopLine/pkg/config"
)

// NewOverrideAdvisor picks the advisor configured by advisor.mode. Mode "none"
// yields nil, meaning records are scored with whatever bundle they carry.
func NewOverrideAdvisor(cfg *config.Config) domsvc.OverrideAdvisor {
    switch cfg.Advisor.Mode {
    case "http":
        return NewHTTPOverrideAdvisor(cfg)
    case "tags":
        return NewTagAdvisor()
    default:
        return nil
    }
}
