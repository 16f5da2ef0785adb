package index

import (
	"context"
	"io"

	"github.com/matzehuels/pommapper/pkg/catalog"
	"github.com/matzehuels/pommapper/pkg/errors"
	"github.com/matzehuels/pommapper/pkg/pom"
	"github.com/matzehuels/pommapper/pkg/repository"
)

// Source lists and opens artifact versions. [*repository.Set] implements it.
type Source interface {
	Versions(ctx context.Context, a *catalog.Artifact) ([]repository.Version, error)
	OpenPOM(ctx context.Context, a *catalog.Artifact, v repository.Version) (io.ReadCloser, error)
}

// Extractor reads the configured fields of one artifact version.
type Extractor interface {
	Extract(ctx context.Context, a *catalog.Artifact, v repository.Version) (map[string]string, error)
}

// ExtractorFunc adapts a function to [Extractor].
type ExtractorFunc func(ctx context.Context, a *catalog.Artifact, v repository.Version) (map[string]string, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, a *catalog.Artifact, v repository.Version) (map[string]string, error) {
	return f(ctx, a, v)
}

// POMExtractor evaluates an artifact's field rules against its POM.
type POMExtractor struct {
	source Source
	rules  map[string]pom.Rules
}

// NewPOMExtractor compiles the rules of every catalog artifact.
func NewPOMExtractor(source Source, cat *catalog.Catalog) (*POMExtractor, error) {
	x := &POMExtractor{source: source, rules: make(map[string]pom.Rules, cat.Len())}
	for _, a := range cat.All() {
		rules, err := pom.Compile(a.Fields)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "artifact %q", a.ID)
		}
		x.rules[a.ID] = rules
	}
	return x, nil
}

// Extract opens the version's POM and evaluates the artifact's rules.
func (x *POMExtractor) Extract(ctx context.Context, a *catalog.Artifact, v repository.Version) (map[string]string, error) {
	rules, ok := x.rules[a.ID]
	if !ok {
		var err error
		if rules, err = pom.Compile(a.Fields); err != nil {
			return nil, err
		}
	}

	rc, err := x.source.OpenPOM(ctx, a, v)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExtractionFailed, err, "open %s", v.POM)
	}
	defer rc.Close()

	doc, err := pom.Parse(rc)
	if err != nil {
		return nil, err
	}
	return doc.Fields(rules)
}
