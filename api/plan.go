// plan.go - JSON Report-Typen fuer Injektions-Plaene
//
// Das sind die Typen die "loraplan plan --json" serialisiert. Sie sind
// bewusst vom Resolver entkoppelt, damit das Report-Format stabil
// bleibt wenn sich interne Typen aendern.
package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/7blacky7/loraplan/resolver"
)

// PlanResponse ist der vollstaendige Report eines Plan-Laufs.
type PlanResponse struct {
	ID        uuid.UUID    `json:"id"`
	Model     string       `json:"model,omitempty"`
	Config    string       `json:"config,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Targets   []TargetPlan `json:"targets"`
}

// TargetPlan ist der Plan eines Top-Level Targets (unet, text_encoder).
type TargetPlan struct {
	Name             string                `json:"name"`
	Parameterization string                `json:"parameterization,omitempty"`
	Assignments      []resolver.Assignment `json:"assignments"`
	Warnings         []string              `json:"warnings,omitempty"`
	Error            string                `json:"error,omitempty"`
}

// NewPlanResponse baut den Report aus Resolver-Ergebnissen.
func NewPlanResponse(model, configPath string, results []*resolver.Result) PlanResponse {
	resp := PlanResponse{
		ID:        uuid.New(),
		Model:     model,
		Config:    configPath,
		CreatedAt: time.Now().UTC(),
	}
	for _, res := range results {
		tp := TargetPlan{
			Name:             res.Target,
			Parameterization: res.Parameterization,
			Assignments:      res.Assignments,
			Warnings:         res.Warnings(),
		}
		if res.Err != nil {
			tp.Error = res.Err.Error()
		}
		resp.Targets = append(resp.Targets, tp)
	}
	return resp
}
