package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// GaussianMixture fits a full-covariance mixture with expectation
// maximization and labels each row by posterior argmax, unifying the
// fit-then-predict surface with the direct-label algorithms. Initialization
// uses seeded k-means so a fixed Seed reproduces the labels.
type GaussianMixture struct {
	Components int
	MaxIter    int
	Tol        float64
	Reg        float64
	Seed       int64
}

const log2Pi = 1.8378770664093453

// Fit runs EM and returns the most probable component per row.
func (g *GaussianMixture) Fit(m *mat.Dense) ([]int, error) {
	rows, cols := m.Dims()
	if g.Components <= 0 || g.Components > rows {
		return nil, fmt.Errorf("cluster: gmm: invalid component count %d for %d rows", g.Components, rows)
	}
	maxIter := g.MaxIter
	if maxIter == 0 {
		maxIter = 100
	}
	tol := g.Tol
	if tol == 0 {
		tol = 1e-3
	}
	reg := g.Reg
	if reg == 0 {
		reg = 1e-6
	}

	km := &KMeans{K: g.Components, Seed: g.Seed}
	hard, err := km.Fit(m)
	if err != nil {
		return nil, err
	}

	// Hard assignments seed the responsibilities.
	resp := mat.NewDense(rows, g.Components, nil)
	for i, c := range hard {
		resp.Set(i, c, 1)
	}

	weights := make([]float64, g.Components)
	means := make([][]float64, g.Components)
	covs := make([]*mat.SymDense, g.Components)

	prevLL := math.Inf(-1)
	for iter := 0; iter <= maxIter; iter++ {
		// M-step.
		for c := 0; c < g.Components; c++ {
			nc := 0.0
			mean := make([]float64, cols)
			for i := 0; i < rows; i++ {
				r := resp.At(i, c)
				nc += r
				for j := 0; j < cols; j++ {
					mean[j] += r * m.At(i, j)
				}
			}
			if nc < 1e-10 {
				nc = 1e-10
			}
			for j := 0; j < cols; j++ {
				mean[j] /= nc
			}

			cov := mat.NewSymDense(cols, nil)
			dev := make([]float64, cols)
			for i := 0; i < rows; i++ {
				r := resp.At(i, c)
				if r == 0 {
					continue
				}
				for j := 0; j < cols; j++ {
					dev[j] = m.At(i, j) - mean[j]
				}
				for j := 0; j < cols; j++ {
					for k := j; k < cols; k++ {
						cov.SetSym(j, k, cov.At(j, k)+r*dev[j]*dev[k])
					}
				}
			}
			for j := 0; j < cols; j++ {
				for k := j; k < cols; k++ {
					cov.SetSym(j, k, cov.At(j, k)/nc)
				}
				cov.SetSym(j, j, cov.At(j, j)+reg)
			}

			weights[c] = nc / float64(rows)
			means[c] = mean
			covs[c] = cov
		}
		if iter == maxIter {
			break
		}

		// E-step with log-sum-exp normalization.
		chols := make([]*mat.Cholesky, g.Components)
		for c := 0; c < g.Components; c++ {
			var ch mat.Cholesky
			if ok := ch.Factorize(covs[c]); !ok {
				return nil, fmt.Errorf("cluster: gmm: covariance of component %d is not positive definite", c)
			}
			chols[c] = &ch
		}

		ll := 0.0
		logProb := make([]float64, g.Components)
		for i := 0; i < rows; i++ {
			maxLog := math.Inf(-1)
			for c := 0; c < g.Components; c++ {
				lp := math.Log(weights[c]) + logGaussian(m, i, means[c], chols[c])
				logProb[c] = lp
				if lp > maxLog {
					maxLog = lp
				}
			}
			sum := 0.0
			for c := 0; c < g.Components; c++ {
				sum += math.Exp(logProb[c] - maxLog)
			}
			norm := maxLog + math.Log(sum)
			ll += norm
			for c := 0; c < g.Components; c++ {
				resp.Set(i, c, math.Exp(logProb[c]-norm))
			}
		}
		ll /= float64(rows)
		if math.Abs(ll-prevLL) < tol {
			break
		}
		prevLL = ll
	}

	// Posterior argmax is the predict step.
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		best, bestResp := 0, -1.0
		for c := 0; c < g.Components; c++ {
			if r := resp.At(i, c); r > bestResp {
				best, bestResp = c, r
			}
		}
		labels[i] = best
	}
	return labels, nil
}

// logGaussian evaluates the multivariate normal log density for row i using
// a precomputed Cholesky factor of the covariance.
func logGaussian(m *mat.Dense, i int, mean []float64, ch *mat.Cholesky) float64 {
	cols := len(mean)
	dev := mat.NewVecDense(cols, nil)
	for j := 0; j < cols; j++ {
		dev.SetVec(j, m.At(i, j)-mean[j])
	}
	var solved mat.VecDense
	if err := ch.SolveVecTo(&solved, dev); err != nil {
		return math.Inf(-1)
	}
	quad := mat.Dot(dev, &solved)
	return -0.5 * (float64(cols)*log2Pi + ch.LogDet() + quad)
}
