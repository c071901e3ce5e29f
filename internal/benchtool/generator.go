package benchtool

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	repository "github.com/okian/peerbench/internal/adapters/repository"
	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/model"
)

var orgNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("peerbench/synthetic-org"))

// Synthetic profile dimensions.
var (
	sizeClasses  = []string{model.SizeSmall, model.SizeMedium, model.SizeMedium, model.SizeLarge}
	geographies  = []string{"US-CA", "US-NY", "US-TX", "US-OR", "US-IL"}
	programTypes = []string{"tutoring", "literacy", "mentoring", "job_training", "food_access", "clinic"}
)

// Synthetic value ranges. Scores are on a 0-100 scale before range scaling.
const (
	minBudget      = 250_000
	budgetSpread   = 4_000_000
	strengthSpread = 25.0
	noiseSpread    = 15.0
	previousDrift  = 6.0
)

// measuredAt anchors generated measurements so output is reproducible.
var measuredAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Generator produces reproducible synthetic organizations for one sector.
type Generator struct {
	catalog *catalog.Catalog
	sector  string
	rng     *rand.Rand
	seed    uint64
	next    int
}

// NewGenerator returns a generator seeded with seed. An empty sector picks the
// first sector the catalog accepts.
func NewGenerator(c *catalog.Catalog, sector string, seed uint64) *Generator {
	if sector == "" {
		sector = "education"
		if sectors := c.Sectors(); len(sectors) > 0 {
			sector = sectors[0]
		}
	}
	return &Generator{
		catalog: c,
		sector:  sector,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // synthetic data
		seed:    seed,
	}
}

// Pool generates n candidates.
func (g *Generator) Pool(n int) repository.PoolDocument {
	doc := repository.PoolDocument{Candidates: make([]model.Candidate, 0, n)}
	for i := 0; i < n; i++ {
		doc.Candidates = append(doc.Candidates, g.Candidate(fmt.Sprintf("%d/%d", g.seed, g.next)))
		g.next++
	}
	return doc
}

// Candidate generates one organization whose id derives from name.
func (g *Generator) Candidate(name string) model.Candidate {
	budget := math.Round(minBudget + g.rng.Float64()*budgetSpread)
	beneficiaries := 100 + g.rng.IntN(5000)
	profile := model.OrganizationProfile{
		OrganizationID:   uuid.NewSHA1(orgNamespace, []byte(name)).String(),
		Sector:           g.sector,
		SizeClass:        sizeClasses[g.rng.IntN(len(sizeClasses))],
		Geography:        geographies[g.rng.IntN(len(geographies))],
		ProgramTypes:     g.programs(),
		AnnualBudget:     &budget,
		BeneficiaryCount: &beneficiaries,
	}

	// one strength per organization keeps its metrics correlated
	strength := (g.rng.Float64()*2 - 1) * strengthSpread
	scores := make(map[string]float64, len(g.catalog.Keys()))
	previous := make(map[string]float64, len(g.catalog.Keys()))
	for _, m := range g.catalog.Metrics() {
		mid := (m.ValidRange.Min + m.ValidRange.Max) / 2
		scale := (m.ValidRange.Max - m.ValidRange.Min) / 100
		v := mid + (strength+(g.rng.Float64()*2-1)*noiseSpread)*scale
		scores[m.Key] = round1(clamp(v, m.ValidRange.Min, m.ValidRange.Max))
		prev := v - (g.rng.Float64()*2-1)*previousDrift*scale
		previous[m.Key] = round1(clamp(prev, m.ValidRange.Min, m.ValidRange.Max))
	}

	return model.Candidate{
		Profile: profile,
		Metrics: model.OrganizationMetrics{
			Scores:          scores,
			PreviousScores:  previous,
			LastMeasurement: measuredAt.AddDate(0, 0, -g.rng.IntN(365)),
			DataQuality:     round1(60 + g.rng.Float64()*40),
		},
	}
}

// Request builds a benchmark request for a fresh organization against a
// generated pool of poolSize candidates.
func (g *Generator) Request(requestID string, poolSize int) benchmark.Request {
	subject := g.Candidate("subject/" + requestID)
	return benchmark.Request{
		RequestID:      requestID,
		OrganizationID: subject.Profile.OrganizationID,
		Profile:        subject.Profile,
		Metrics:        subject.Metrics,
		Candidates:     g.Pool(poolSize).Candidates,
	}
}

func (g *Generator) programs() []string {
	n := 1 + g.rng.IntN(2)
	out := make([]string, 0, n)
	for _, i := range g.rng.Perm(len(programTypes))[:n] {
		out = append(out, programTypes[i])
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
