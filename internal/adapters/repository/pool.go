package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/peerbench/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// PoolSource supplies the candidate peer pool.
type PoolSource interface {
	Candidates(ctx context.Context) ([]model.Candidate, error)
}

// PoolDocument is the on-disk layout of a static peer pool.
type PoolDocument struct {
	Candidates []model.Candidate `json:"candidates" yaml:"candidates"`
}

// StaticPool serves a fixed candidate list.
type StaticPool struct {
	candidates []model.Candidate
}

var _ PoolSource = (*StaticPool)(nil)

// NewStaticPool wraps an in-memory candidate list.
func NewStaticPool(candidates []model.Candidate) *StaticPool {
	return &StaticPool{candidates: append([]model.Candidate(nil), candidates...)}
}

// LoadStaticPool reads a pool file. Files ending in .json are decoded as
// JSON, everything else as YAML.
func LoadStaticPool(path string) (*StaticPool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadPool, err)
	}
	defer f.Close()

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	doc, err := DecodePool(f, format)
	if err != nil {
		return nil, err
	}
	return NewStaticPool(doc.Candidates), nil
}

// DecodePool decodes a pool document in the given format ("json" or "yaml").
func DecodePool(r io.Reader, format string) (PoolDocument, error) {
	var doc PoolDocument
	var err error
	switch format {
	case "json":
		err = json.NewDecoder(r).Decode(&doc)
	default:
		err = yaml.NewDecoder(r).Decode(&doc)
	}
	if err != nil && err != io.EOF {
		return PoolDocument{}, fmt.Errorf("%w: %w", ErrLoadPool, err)
	}
	for i, c := range doc.Candidates {
		if strings.TrimSpace(c.Profile.OrganizationID) == "" {
			return PoolDocument{}, fmt.Errorf("%w: candidate %d has no organization_id", ErrLoadPool, i)
		}
	}
	return doc, nil
}

// Candidates implements PoolSource.
func (p *StaticPool) Candidates(context.Context) ([]model.Candidate, error) {
	return append([]model.Candidate(nil), p.candidates...), nil
}
