package impactor

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/mat"
)

// covarianceJitter is the diagonal regularization added once when a matrix
// fails its positive semi-definiteness check.
const covarianceJitter = 1e-10

// RequiredElementLabels are the orbital-element labels a covariance matrix
// must carry for Monte Carlo sampling, in sampling order: semi-major axis,
// eccentricity, inclination, RAAN, argument of periapsis, mean anomaly.
var RequiredElementLabels = []string{"a", "e", "i", "om", "w", "ma"}

// CovarianceMatrix is the orbital-element uncertainty from an external
// orbit-determination source: a square numeric matrix (possibly flattened
// row-major) over a labeled subset of elements, plus its epoch.
type CovarianceMatrix struct {
	Labels  []string  `json:"labels"`
	Data    []float64 `json:"matrix"` // row-major, len(Labels)^2 entries
	EpochJD float64   `json:"epoch_jd"`
}

// Epoch returns the covariance epoch as a time.
func (c CovarianceMatrix) Epoch() time.Time {
	return julian.JDToTime(c.EpochJD)
}

// reshape validates the flat data against the label count and returns the
// matrix dimension.
func (c CovarianceMatrix) reshape() (int, error) {
	if len(c.Data) == 0 {
		return 0, CovarianceError{"matrix data missing"}
	}
	n := int(math.Sqrt(float64(len(c.Data))))
	if n*n != len(c.Data) {
		return 0, CovarianceError{fmt.Sprintf("%d entries do not form a square matrix", len(c.Data))}
	}
	if n != len(c.Labels) {
		return 0, CovarianceError{fmt.Sprintf("%dx%d matrix carries %d labels", n, n, len(c.Labels))}
	}
	return n, nil
}

// Submatrix extracts the square submatrix over the requested labels, in the
// requested order. The result is symmetrized (covariance sources occasionally
// publish asymmetric rounding noise).
func (c CovarianceMatrix) Submatrix(labels []string) (*mat.SymDense, error) {
	n, err := c.reshape()
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, n)
	for i, label := range c.Labels {
		index[label] = i
	}
	rows := make([]int, len(labels))
	for i, label := range labels {
		at, ok := index[label]
		if !ok {
			return nil, CovarianceError{fmt.Sprintf("missing required element label %q", label)}
		}
		rows[i] = at
	}
	sub := mat.NewSymDense(len(labels), nil)
	for i := range rows {
		for j := i; j < len(rows); j++ {
			a := c.Data[rows[i]*n+rows[j]]
			b := c.Data[rows[j]*n+rows[i]]
			sub.SetSym(i, j, 0.5*(a+b))
		}
	}
	return sub, nil
}

// ensurePositiveSemiDefinite confirms the matrix admits a Cholesky
// factorization. On failure it adds diagonal jitter once and retries;
// persistent failure is fatal. The (possibly jittered) matrix is returned.
func ensurePositiveSemiDefinite(sym *mat.SymDense) (*mat.SymDense, error) {
	var chol mat.Cholesky
	if chol.Factorize(sym) {
		return sym, nil
	}
	n, _ := sym.Dims()
	for i := 0; i < n; i++ {
		sym.SetSym(i, i, sym.At(i, i)+covarianceJitter)
	}
	if chol.Factorize(sym) {
		return sym, nil
	}
	return nil, CovarianceError{"matrix is not positive semi-definite after jitter retry"}
}
