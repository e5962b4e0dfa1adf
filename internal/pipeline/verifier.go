// Package pipeline orchestrates one verification run: compile the
// score under the active rules, drive the solver to a complete
// violation set, and extract the result.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cantuslabs/cantus/internal/cache"
	"github.com/cantuslabs/cantus/internal/compile"
	"github.com/cantuslabs/cantus/internal/extract"
	"github.com/cantuslabs/cantus/internal/model"
	"github.com/cantuslabs/cantus/internal/rules"
	"github.com/cantuslabs/cantus/internal/solver"
)

// Verifier runs verifications. It carries no per-run state, so one
// Verifier may serve independent scores concurrently.
type Verifier struct {
	compiler  *compile.Compiler
	adapter   *solver.Adapter
	extractor *extract.Extractor
	ruleSet   []rules.Rule
	cfg       *model.Config
	results   cache.Cache // nil when memoization is disabled
	rulesFP   string
}

// NewVerifier builds a verifier from configuration.
func NewVerifier(cfg *model.Config) (*Verifier, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	ruleSet, err := rules.Build(cfg.Rules)
	if err != nil {
		return nil, err
	}
	engine, err := solver.ForConfig(cfg.Solver)
	if err != nil {
		return nil, err
	}

	var results cache.Cache
	if cfg.Cache.Enabled {
		results = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}

	return &Verifier{
		compiler:  compile.NewCompiler(cfg.Concurrency.CompileWorkers),
		adapter:   solver.NewAdapter(engine, cfg.Solver.Timeout),
		extractor: extract.NewExtractor(cfg.Rules),
		ruleSet:   ruleSet,
		cfg:       cfg,
		results:   results,
		rulesFP:   rulesFingerprint(cfg.Rules),
	}, nil
}

// Rules returns the ids of the active rules, in application order.
func (v *Verifier) Rules() []string {
	out := make([]string, len(v.ruleSet))
	for i, r := range v.ruleSet {
		out[i] = r.ID()
	}
	return out
}

// Verify checks one score and returns its immutable result.
func (v *Verifier) Verify(ctx context.Context, score *model.Score) (model.VerificationResult, model.SolverMeta, error) {
	meta := model.SolverMeta{
		Engine:  v.adapter.EngineName(),
		Timeout: v.adapter.Timeout(),
	}

	if v.results != nil {
		key := cache.Key(score.Fingerprint(), v.rulesFP, meta.Engine)
		if data, ok := v.results.Get(key); ok {
			var cached model.VerificationResult
			if err := json.Unmarshal(data, &cached); err == nil {
				meta.CoreMode = "cached"
				return cached, meta, nil
			}
		}
	}

	sys, err := v.compiler.Compile(ctx, score, v.ruleSet)
	if err != nil {
		return model.VerificationResult{}, meta, err
	}

	ans, err := v.adapter.Violations(ctx, sys)
	if err != nil {
		return model.VerificationResult{}, meta, err
	}
	meta.CoreMode = ans.CoreMode
	meta.Calls = ans.Calls

	result := v.extractor.Extract(sys, ans)

	// Unknown results are never memoized: a longer timeout may do
	// better next time.
	if v.results != nil && result.Status != model.StatusUnknown {
		if data, err := json.Marshal(result); err == nil {
			key := cache.Key(score.Fingerprint(), v.rulesFP, meta.Engine)
			_ = v.results.Set(key, data, 0)
		}
	}
	return result, meta, nil
}

// Report verifies a score and wraps the result in a full report.
func (v *Verifier) Report(ctx context.Context, score *model.Score, sourceFile string) (*model.Report, error) {
	result, meta, err := v.Verify(ctx, score)
	if err != nil {
		return nil, err
	}

	rep := &model.Report{
		Subject:      subject(score, sourceFile),
		SourceFile:   sourceFile,
		VerifiedAt:   time.Now().UTC(),
		Measures:     score.NumMeasures(),
		Voices:       len(score.VoiceIDs()),
		RulesApplied: v.Rules(),
		Solver:       meta,
		Result:       result,
	}
	if score.NumMeasures() > 0 {
		first := score.Measure(0)
		rep.KeySignature = first.Key.String()
		rep.TimeSignature = first.Time.String()
	}
	return rep, nil
}

func subject(score *model.Score, sourceFile string) string {
	if t := score.Title(); t != "" {
		return t
	}
	if sourceFile != "" {
		return sourceFile
	}
	return "untitled score"
}

func rulesFingerprint(cfg model.RuleConfig) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Sprintf("%+v", cfg)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
