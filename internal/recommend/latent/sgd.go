// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package latent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Rating is one explicit (user, item, rating) observation.
type Rating struct {
	UserID int
	ItemID int
	Value  float64
}

// EpochStats reports training progress after each epoch.
type EpochStats struct {
	Epoch int
	RMSE  float64
}

// TrainConfig contains configuration for SGD training.
type TrainConfig struct {
	// Factors is the latent dimensionality K.
	// Typical range: 50-150.
	Factors int

	// Epochs is the number of passes over the ratings.
	Epochs int

	// LearningRate is the SGD step size for all parameters.
	LearningRate float64

	// Regularization is the L2 penalty for all parameters.
	Regularization float64

	// InitMean and InitStdDev parameterize the normal distribution factor
	// vectors are drawn from. Biases start at zero.
	InitMean   float64
	InitStdDev float64

	// Seed makes training deterministic.
	Seed int64

	// MinRating and MaxRating are stored in the model to clamp predictions.
	MinRating float64
	MaxRating float64

	// OnEpoch, if set, is called after every epoch.
	OnEpoch func(EpochStats)
}

// DefaultTrainConfig returns defaults suited to MovieLens-style 1-5 star data.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Factors:        100,
		Epochs:         20,
		LearningRate:   0.005,
		Regularization: 0.02,
		InitMean:       0,
		InitStdDev:     0.1,
		Seed:           42,
		MinRating:      1,
		MaxRating:      5,
	}
}

// Validate checks the configuration.
func (c *TrainConfig) Validate() error {
	if c.Factors <= 0 {
		return fmt.Errorf("factors must be positive, got %d", c.Factors)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %v", c.LearningRate)
	}
	if c.Regularization < 0 {
		return fmt.Errorf("regularization must be non-negative, got %v", c.Regularization)
	}
	if c.InitStdDev < 0 {
		return fmt.Errorf("init_std_dev must be non-negative, got %v", c.InitStdDev)
	}
	if c.MinRating > c.MaxRating {
		return fmt.Errorf("min_rating %v exceeds max_rating %v", c.MinRating, c.MaxRating)
	}
	return nil
}

// ErrNoRatings is returned when Train is called without observations.
var ErrNoRatings = errors.New("no ratings to train on")

type observation struct {
	u, i  int
	value float64
}

// Train fits a biased matrix factorization model with stochastic gradient
// descent. For every observed rating r with error e = r - r̂:
//
//	b_u += lr * (e - reg * b_u)
//	b_i += lr * (e - reg * b_i)
//	p_u += lr * (e * q_i - reg * p_u)
//	q_i += lr * (e * p_u - reg * q_i)
//
// Ratings are shuffled every epoch with a generator seeded from cfg.Seed.
// Context cancellation is checked between epochs.
//
//nolint:gocritic // cfg passed by value so defaults can be applied locally
func Train(ctx context.Context, ratings []Rating, cfg TrainConfig) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return nil, ErrNoRatings
	}

	userIndex := make(map[int]int)
	itemIndex := make(map[int]int)
	var userIDs, itemIDs []int
	obs := make([]observation, len(ratings))
	var sum float64

	for n, r := range ratings {
		if !finite(r.Value) {
			return nil, fmt.Errorf("rating %d has non-finite value", n)
		}
		u, ok := userIndex[r.UserID]
		if !ok {
			u = len(userIDs)
			userIndex[r.UserID] = u
			userIDs = append(userIDs, r.UserID)
		}
		i, ok := itemIndex[r.ItemID]
		if !ok {
			i = len(itemIDs)
			itemIndex[r.ItemID] = i
			itemIDs = append(itemIDs, r.ItemID)
		}
		obs[n] = observation{u: u, i: i, value: r.Value}
		sum += r.Value
	}

	global := sum / float64(len(ratings))
	k := cfg.Factors

	//nolint:gosec // G404: math/rand is acceptable for ML initialization (not security)
	rng := rand.New(rand.NewSource(cfg.Seed))

	userBias := make([]float64, len(userIDs))
	itemBias := make([]float64, len(itemIDs))
	p := initFactors(rng, len(userIDs), k, cfg.InitMean, cfg.InitStdDev)
	q := initFactors(rng, len(itemIDs), k, cfg.InitMean, cfg.InitStdDev)

	lr := cfg.LearningRate
	reg := cfg.Regularization
	decay := 1 - lr*reg
	scratch := make([]float64, k)

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rng.Shuffle(len(obs), func(a, b int) { obs[a], obs[b] = obs[b], obs[a] })

		var sqErr float64
		for _, o := range obs {
			pu, qi := p[o.u], q[o.i]
			e := o.value - (global + userBias[o.u] + itemBias[o.i] + floats.Dot(pu, qi))
			sqErr += e * e

			userBias[o.u] += lr * (e - reg*userBias[o.u])
			itemBias[o.i] += lr * (e - reg*itemBias[o.i])

			copy(scratch, pu)
			floats.Scale(decay, pu)
			floats.AddScaled(pu, lr*e, qi)
			floats.Scale(decay, qi)
			floats.AddScaled(qi, lr*e, scratch)
		}

		rmse := math.Sqrt(sqErr / float64(len(obs)))
		if math.IsNaN(rmse) || math.IsInf(rmse, 0) {
			return nil, fmt.Errorf("training diverged at epoch %d; lower the learning rate", epoch)
		}
		if cfg.OnEpoch != nil {
			cfg.OnEpoch(EpochStats{Epoch: epoch, RMSE: rmse})
		}
	}

	a := Artifact{
		K:          k,
		GlobalBias: global,
		MinRating:  cfg.MinRating,
		MaxRating:  cfg.MaxRating,
		Users:      make([]Factors, len(userIDs)),
		Items:      make([]Factors, len(itemIDs)),
	}
	for u, id := range userIDs {
		a.Users[u] = Factors{ID: id, Bias: userBias[u], Vector: p[u]}
	}
	for i, id := range itemIDs {
		a.Items[i] = Factors{ID: id, Bias: itemBias[i], Vector: q[i]}
	}
	return New(a)
}

func initFactors(rng *rand.Rand, rows, k int, mean, stddev float64) [][]float64 {
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, k)
		for f := range out[r] {
			out[r][f] = mean + rng.NormFloat64()*stddev
		}
	}
	return out
}

// RMSE returns the root mean squared error of the model over ratings,
// skipping ratings whose user or item is unavailable. The second return
// value is the number of ratings evaluated.
func (m *Model) RMSE(ratings []Rating) (float64, int) {
	var sqErr float64
	var n int
	for _, r := range ratings {
		pred, err := m.Predict(r.UserID, r.ItemID)
		if err != nil {
			continue
		}
		d := r.Value - pred
		sqErr += d * d
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return math.Sqrt(sqErr / float64(n)), n
}
