package analysis

import (
	"github.com/dd0wney/cluso-tradenet/pkg/algorithms"
)

// Stage names one step of an analysis. Stage names are used as log fields
// and as the label of the stage duration metric.
type Stage string

const (
	StageBuild       Stage = "build"
	StageDegree      Stage = "degree"
	StageBetweenness Stage = "betweenness"
	StageEigenvector Stage = "eigenvector"
	StageCommunities Stage = "communities"
)

// AllStages are the analytic components run by Analyze.
var AllStages = []Stage{StageDegree, StageBetweenness, StageEigenvector, StageCommunities}

// Options configures one analysis run.
type Options struct {
	TopN          int                     `json:"top_n" yaml:"top_n" validate:"min=0,max=500"`
	MaxIterations int                     `json:"max_iterations" yaml:"max_iterations" validate:"min=1,max=100000"`
	Tolerance     float64                 `json:"tolerance" yaml:"tolerance" validate:"gt=0"`
	Shift         bool                    `json:"shift" yaml:"shift"`
	WeightPolicy  algorithms.WeightPolicy `json:"weight_policy" yaml:"weight_policy" validate:"oneof=distance inverse"`
	MaxPasses     int                     `json:"max_passes" yaml:"max_passes" validate:"min=1,max=10000"`
	Workers       int                     `json:"workers" yaml:"workers" validate:"min=0,max=1024"`
}

// DefaultOptions returns default analysis configuration
func DefaultOptions() Options {
	eig := algorithms.DefaultEigenvectorOptions()
	return Options{
		TopN:          20,
		MaxIterations: eig.MaxIterations,
		Tolerance:     eig.Tolerance,
		Shift:         eig.Shift,
		WeightPolicy:  algorithms.WeightAsDistance,
		MaxPasses:     algorithms.DefaultCommunityOptions().MaxPasses,
	}
}

func (o Options) betweenness() algorithms.BetweennessOptions {
	return algorithms.BetweennessOptions{
		WeightPolicy: o.WeightPolicy,
		Workers:      o.Workers,
		TopN:         o.TopN,
	}
}

func (o Options) eigenvector() algorithms.EigenvectorOptions {
	return algorithms.EigenvectorOptions{
		MaxIterations: o.MaxIterations,
		Tolerance:     o.Tolerance,
		Shift:         o.Shift,
		TopN:          o.TopN,
	}
}

func (o Options) communities() algorithms.CommunityOptions {
	opts := algorithms.DefaultCommunityOptions()
	if o.MaxPasses > 0 {
		opts.MaxPasses = o.MaxPasses
	}
	return opts
}
