package solver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cantuslabs/cantus/internal/compile"
	"github.com/cantuslabs/cantus/internal/model"
)

// NoCore strips core extraction from an engine, forcing the adapter
// onto the incremental-relaxation path. This mirrors driving an
// external engine that only reports the overall UNSAT bit.
type NoCore struct {
	Inner Engine
}

func (n *NoCore) Name() string { return n.Inner.Name() + "-relax" }

func (n *NoCore) SupportsCore() bool { return false }

func (n *NoCore) Solve(ctx context.Context, sys *compile.System, assume []int, timeout time.Duration) (Result, error) {
	res, err := n.Inner.Solve(ctx, sys, assume, timeout)
	res.Core = nil
	return res, err
}

// ForConfig builds the configured engine.
func ForConfig(cfg model.SolverConfig) (Engine, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", "gini":
		return NewGiniEngine(), nil
	case "gini-relax":
		return &NoCore{Inner: NewGiniEngine()}, nil
	default:
		return nil, fmt.Errorf("unknown solver engine: %s (supported: gini, gini-relax)", cfg.Engine)
	}
}
