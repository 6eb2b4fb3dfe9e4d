package chi

import (
	"github.com/kailas-cloud/storefind/internal/domain/product"
	"github.com/kailas-cloud/storefind/internal/domain/query"
	"github.com/kailas-cloud/storefind/internal/domain/search"
	"github.com/kailas-cloud/storefind/internal/trace"
	healthuc "github.com/kailas-cloud/storefind/internal/usecase/health"
)

// searchRequest is the POST /search body.
type searchRequest struct {
	Query               string   `json:"query"`
	Limit               int      `json:"limit,omitempty"`
	Debug               bool     `json:"debug,omitempty"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
}

// searchResponse is the POST /search wire shape.
type searchResponse struct {
	Results        []productWire        `json:"results"`
	FiltersApplied query.FiltersApplied `json:"filters_applied"`
	Debug          *trace.Snapshot      `json:"debug"`
}

type productWire struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	Price           float64 `json:"price"`
	StockLevel      int     `json:"stock_level"`
	InStock         bool    `json:"in_stock"`
	StatusLabel     string  `json:"status_label"`
	SimilarityScore float64 `json:"similarity_score"`
}

func responseToWire(resp search.Response) searchResponse {
	results := resp.Results()
	wire := searchResponse{
		Results:        make([]productWire, 0, len(results)),
		FiltersApplied: resp.FiltersApplied(),
		Debug:          resp.Debug(),
	}
	for i := range results {
		wire.Results = append(wire.Results, productToWire(&results[i]))
	}
	return wire
}

func productToWire(p *product.Result) productWire {
	return productWire{
		ID:              p.ID(),
		Name:            p.Name(),
		Description:     p.Description(),
		Price:           p.Price(),
		StockLevel:      p.StockLevel(),
		InStock:         p.InStock(),
		StatusLabel:     p.StatusLabel(),
		SimilarityScore: p.SimilarityScore(),
	}
}

type healthWire struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func healthToWire(report healthuc.Report) healthWire {
	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}
	return healthWire{Status: string(report.Status), Checks: checks}
}
