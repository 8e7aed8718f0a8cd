package regime

import (
	"math"
	"math/rand"

	"github.com/jmontanero23-design/signalengine/internal/series"
)

// MinHMMBars is the minimum observation count for a meaningful HMM fit,
// roughly one trading year of daily bars.
const MinHMMBars = 252

const (
	hmmConvergenceTol = 1e-6
	minGaussianStd    = 1e-6
)

// HMMParams is an immutable Gaussian-emission HMM parameter set. Training
// is a pure function: Fit returns a new parameter set and never mutates the
// receiver, so concurrent model instances are safe as long as each is
// fitted independently.
type HMMParams struct {
	NumStates  int         `json:"num_states"`
	Initial    []float64   `json:"initial"`
	Transition [][]float64 `json:"transition"` // rows sum to 1
	Means      []float64   `json:"means"`
	Stds       []float64   `json:"stds"`
}

// NewHMMParams builds a randomized starting point for EM. Means are spread
// across the observed range with jitter so that states separate; the seed
// makes the initialization, and hence the whole fit, reproducible.
func NewHMMParams(numStates int, obs []float64, seed int64) HMMParams {
	rng := rand.New(rand.NewSource(seed))

	mean := series.Mean(obs)
	std := series.Std(obs)
	if !series.IsDefined(mean) {
		mean = 0
	}
	if !series.IsDefined(std) || std < minGaussianStd {
		std = minGaussianStd
	}

	p := HMMParams{
		NumStates:  numStates,
		Initial:    make([]float64, numStates),
		Transition: make([][]float64, numStates),
		Means:      make([]float64, numStates),
		Stds:       make([]float64, numStates),
	}
	for i := 0; i < numStates; i++ {
		p.Initial[i] = 1 / float64(numStates)
		// Sticky self-transitions: regimes persist.
		p.Transition[i] = make([]float64, numStates)
		for j := 0; j < numStates; j++ {
			if i == j {
				p.Transition[i][j] = 0.9
			} else {
				p.Transition[i][j] = 0.1 / float64(numStates-1)
			}
		}
		spread := float64(i) - float64(numStates-1)/2
		p.Means[i] = mean + spread*std + rng.NormFloat64()*std*0.1
		p.Stds[i] = std * (0.5 + rng.Float64())
	}
	return p
}

// Fit runs Baum-Welch expectation-maximization for up to maxIter rounds and
// returns the re-estimated parameters with the final log-likelihood. If EM
// never converges the best parameters found so far are returned rather than
// an error.
func (p HMMParams) Fit(obs []float64, maxIter int) (HMMParams, float64) {
	cur := p.clone()
	prevLL := math.Inf(-1)

	for iter := 0; iter < maxIter; iter++ {
		alpha, scales, ok := cur.forward(obs)
		if !ok {
			break
		}
		beta := cur.backward(obs, scales)
		gamma := cur.gamma(alpha, beta)
		xi := cur.xi(obs, alpha, beta)

		next := cur.maximize(obs, gamma, xi)

		ll := logLikelihood(scales)
		if ll-prevLL < hmmConvergenceTol && iter > 0 {
			cur = next
			prevLL = ll
			break
		}
		cur = next
		prevLL = ll
	}
	return cur, prevLL
}

// Viterbi decodes the most likely state path in log space.
func (p HMMParams) Viterbi(obs []float64) []int {
	T := len(obs)
	if T == 0 {
		return nil
	}
	k := p.NumStates

	delta := make([][]float64, T)
	psi := make([][]int, T)
	for t := range delta {
		delta[t] = make([]float64, k)
		psi[t] = make([]int, k)
	}
	for i := 0; i < k; i++ {
		delta[0][i] = safeLog(p.Initial[i]) + safeLog(p.emission(i, obs[0]))
	}
	for t := 1; t < T; t++ {
		for j := 0; j < k; j++ {
			best := math.Inf(-1)
			arg := 0
			for i := 0; i < k; i++ {
				v := delta[t-1][i] + safeLog(p.Transition[i][j])
				if v > best {
					best = v
					arg = i
				}
			}
			delta[t][j] = best + safeLog(p.emission(j, obs[t]))
			psi[t][j] = arg
		}
	}

	path := make([]int, T)
	best := math.Inf(-1)
	for i := 0; i < k; i++ {
		if delta[T-1][i] > best {
			best = delta[T-1][i]
			path[T-1] = i
		}
	}
	for t := T - 2; t >= 0; t-- {
		path[t] = psi[t+1][path[t+1]]
	}
	return path
}

// StateOccupancy returns the smoothed per-state probabilities at the last
// observation, the confidence basis for the current regime.
func (p HMMParams) StateOccupancy(obs []float64) []float64 {
	alpha, scales, ok := p.forward(obs)
	if !ok {
		return nil
	}
	beta := p.backward(obs, scales)
	gamma := p.gamma(alpha, beta)
	return gamma[len(obs)-1]
}

// HMMResult is the outcome of one regime fit and decode.
type HMMResult struct {
	Params        HMMParams `json:"params"`
	States        []int     `json:"states"`
	CurrentState  int       `json:"current_state"`
	Confidence    float64   `json:"confidence"` // 0-100
	LogLikelihood float64   `json:"log_likelihood"`
}

// FitHMMRegime trains a k-state HMM on the observation series, decodes the
// state path, and reports the last bar's state with its occupancy
// probability as confidence. Returns ok=false below MinHMMBars.
func FitHMMRegime(obs []float64, numStates, maxIter int, seed int64) (HMMResult, bool) {
	if len(obs) < MinHMMBars || numStates < 2 {
		return HMMResult{}, false
	}

	init := NewHMMParams(numStates, obs, seed)
	fitted, ll := init.Fit(obs, maxIter)
	path := fitted.Viterbi(obs)
	if len(path) == 0 {
		return HMMResult{}, false
	}

	current := path[len(path)-1]
	confidence := 0.0
	if occ := fitted.StateOccupancy(obs); occ != nil {
		confidence = occ[current] * 100
	}

	return HMMResult{
		Params:        fitted,
		States:        path,
		CurrentState:  current,
		Confidence:    confidence,
		LogLikelihood: ll,
	}, true
}

// --- EM internals ---

// forward runs the scaled forward pass. scales[t] is the normalizer of
// alpha at t; log-likelihood is the sum of their logs.
func (p HMMParams) forward(obs []float64) (alpha [][]float64, scales []float64, ok bool) {
	T := len(obs)
	k := p.NumStates
	alpha = make([][]float64, T)
	scales = make([]float64, T)

	alpha[0] = make([]float64, k)
	var c float64
	for i := 0; i < k; i++ {
		alpha[0][i] = p.Initial[i] * p.emission(i, obs[0])
		c += alpha[0][i]
	}
	if c <= 0 {
		return nil, nil, false
	}
	scales[0] = c
	for i := 0; i < k; i++ {
		alpha[0][i] /= c
	}

	for t := 1; t < T; t++ {
		alpha[t] = make([]float64, k)
		c = 0
		for j := 0; j < k; j++ {
			var sum float64
			for i := 0; i < k; i++ {
				sum += alpha[t-1][i] * p.Transition[i][j]
			}
			alpha[t][j] = sum * p.emission(j, obs[t])
			c += alpha[t][j]
		}
		if c <= 0 {
			return nil, nil, false
		}
		scales[t] = c
		for j := 0; j < k; j++ {
			alpha[t][j] /= c
		}
	}
	return alpha, scales, true
}

func (p HMMParams) backward(obs []float64, scales []float64) [][]float64 {
	T := len(obs)
	k := p.NumStates
	beta := make([][]float64, T)

	beta[T-1] = make([]float64, k)
	for i := 0; i < k; i++ {
		beta[T-1][i] = 1
	}
	for t := T - 2; t >= 0; t-- {
		beta[t] = make([]float64, k)
		for i := 0; i < k; i++ {
			var sum float64
			for j := 0; j < k; j++ {
				sum += p.Transition[i][j] * p.emission(j, obs[t+1]) * beta[t+1][j]
			}
			beta[t][i] = sum / scales[t+1]
		}
	}
	return beta
}

func (p HMMParams) gamma(alpha, beta [][]float64) [][]float64 {
	T := len(alpha)
	k := p.NumStates
	gamma := make([][]float64, T)
	for t := 0; t < T; t++ {
		gamma[t] = make([]float64, k)
		var sum float64
		for i := 0; i < k; i++ {
			gamma[t][i] = alpha[t][i] * beta[t][i]
			sum += gamma[t][i]
		}
		if sum > 0 {
			for i := 0; i < k; i++ {
				gamma[t][i] /= sum
			}
		}
	}
	return gamma
}

func (p HMMParams) xi(obs []float64, alpha, beta [][]float64) [][][]float64 {
	T := len(obs)
	k := p.NumStates
	xi := make([][][]float64, T-1)
	for t := 0; t < T-1; t++ {
		xi[t] = make([][]float64, k)
		var sum float64
		for i := 0; i < k; i++ {
			xi[t][i] = make([]float64, k)
			for j := 0; j < k; j++ {
				v := alpha[t][i] * p.Transition[i][j] * p.emission(j, obs[t+1]) * beta[t+1][j]
				xi[t][i][j] = v
				sum += v
			}
		}
		if sum > 0 {
			for i := 0; i < k; i++ {
				for j := 0; j < k; j++ {
					xi[t][i][j] /= sum
				}
			}
		}
	}
	return xi
}

// maximize is the M-step: re-estimate initial distribution, transition
// rows, and per-state Gaussian parameters from the expected counts.
func (p HMMParams) maximize(obs []float64, gamma [][]float64, xi [][][]float64) HMMParams {
	T := len(obs)
	k := p.NumStates
	next := p.clone()

	copy(next.Initial, gamma[0])

	for i := 0; i < k; i++ {
		var occupancy float64
		for t := 0; t < T-1; t++ {
			occupancy += gamma[t][i]
		}
		for j := 0; j < k; j++ {
			var expected float64
			for t := 0; t < T-1; t++ {
				expected += xi[t][i][j]
			}
			if occupancy > 0 {
				next.Transition[i][j] = expected / occupancy
			}
		}
		normalizeRow(next.Transition[i])

		var total, weightedSum float64
		for t := 0; t < T; t++ {
			total += gamma[t][i]
			weightedSum += gamma[t][i] * obs[t]
		}
		if total > 0 {
			next.Means[i] = weightedSum / total
			var varSum float64
			for t := 0; t < T; t++ {
				d := obs[t] - next.Means[i]
				varSum += gamma[t][i] * d * d
			}
			next.Stds[i] = math.Sqrt(varSum / total)
		}
		if next.Stds[i] < minGaussianStd {
			next.Stds[i] = minGaussianStd
		}
	}
	return next
}

func (p HMMParams) emission(state int, x float64) float64 {
	std := p.Stds[state]
	if std < minGaussianStd {
		std = minGaussianStd
	}
	d := (x - p.Means[state]) / std
	return math.Exp(-0.5*d*d) / (std * math.Sqrt(2*math.Pi))
}

func (p HMMParams) clone() HMMParams {
	out := HMMParams{
		NumStates:  p.NumStates,
		Initial:    append([]float64(nil), p.Initial...),
		Transition: make([][]float64, len(p.Transition)),
		Means:      append([]float64(nil), p.Means...),
		Stds:       append([]float64(nil), p.Stds...),
	}
	for i, row := range p.Transition {
		out.Transition[i] = append([]float64(nil), row...)
	}
	return out
}

func normalizeRow(row []float64) {
	var sum float64
	for _, v := range row {
		sum += v
	}
	if sum <= 0 {
		for i := range row {
			row[i] = 1 / float64(len(row))
		}
		return
	}
	for i := range row {
		row[i] /= sum
	}
}

func logLikelihood(scales []float64) float64 {
	var ll float64
	for _, c := range scales {
		ll += math.Log(c)
	}
	return ll
}

func safeLog(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return math.Log(v)
}
