package mixedmodel

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// The REML criterion is profiled over the fixed effects and the residual
// variance, leaving only the per-grouping variance ratios theta_g =
// sigma_g^2 / sigma^2 to optimize. With V = I + Z D Z' and D the diagonal of
// ratios, the Woodbury identity reduces every quantity to q x q operations
// on the random-effect crossproducts, where q is the total number of
// grouping levels:
//
//	W         = I + D^{1/2} Z'Z D^{1/2}
//	X'V^-1 X  = X'X - (D^{1/2} Z'X)' W^-1 (D^{1/2} Z'X)
//	-2 l_R    = log|W| + log|X'V^-1 X| + (n-p) log(r'V^-1 r) + const
type suffStats struct {
	n int
	q int
	// groupOf maps a Z column to its variance component.
	groupOf []int

	// X = [1, camera]; its crossproducts collapse to three scalars.
	sumC, sumC2 float64
	xty         [2]float64
	yty         float64

	ztz *mat.SymDense
	ztx *mat.Dense
	zty *mat.VecDense
}

const fixedEffects = 2

func buildStats(d Data, withRecording bool) *suffStats {
	n := len(d.Response)

	recIndex := make(map[string]int)
	partIndex := make(map[string]int)
	if withRecording {
		for _, id := range d.Recording {
			if _, ok := recIndex[id]; !ok {
				recIndex[id] = len(recIndex)
			}
		}
	}
	for _, id := range d.Participant {
		if _, ok := partIndex[id]; !ok {
			partIndex[id] = len(partIndex)
		}
	}

	qRec := len(recIndex)
	q := qRec + len(partIndex)
	s := &suffStats{
		n:       n,
		q:       q,
		groupOf: make([]int, q),
		ztz:     mat.NewSymDense(q, nil),
		ztx:     mat.NewDense(q, fixedEffects, nil),
		zty:     mat.NewVecDense(q, nil),
	}
	if withRecording {
		for j := qRec; j < q; j++ {
			s.groupOf[j] = 1
		}
	}

	for i := 0; i < n; i++ {
		y := d.Response[i]
		c := d.Camera[i]

		s.sumC += c
		s.sumC2 += c * c
		s.xty[0] += y
		s.xty[1] += c * y
		s.yty += y * y

		cols := make([]int, 0, 2)
		if withRecording {
			cols = append(cols, recIndex[d.Recording[i]])
		}
		cols = append(cols, qRec+partIndex[d.Participant[i]])

		for _, a := range cols {
			s.ztz.SetSym(a, a, s.ztz.At(a, a)+1)
			s.ztx.Set(a, 0, s.ztx.At(a, 0)+1)
			s.ztx.Set(a, 1, s.ztx.At(a, 1)+c)
			s.zty.SetVec(a, s.zty.AtVec(a)+y)
		}
		if len(cols) == 2 {
			a, b := cols[0], cols[1]
			s.ztz.SetSym(a, b, s.ztz.At(a, b)+1)
		}
	}
	return s
}

// evaluation holds the profiled quantities at one theta.
type evaluation struct {
	deviance float64
	beta     [2]float64
	covUnit  [3]float64 // (X'V^-1 X)^-1 packed as [00, 01, 11]
	rss      float64
}

func (s *suffStats) evaluate(theta []float64) evaluation {
	bad := evaluation{deviance: math.Inf(1)}

	dhalf := make([]float64, s.q)
	for j := 0; j < s.q; j++ {
		t := theta[s.groupOf[j]]
		if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return bad
		}
		dhalf[j] = math.Sqrt(t)
	}

	w := mat.NewSymDense(s.q, nil)
	for i := 0; i < s.q; i++ {
		for j := i; j < s.q; j++ {
			v := dhalf[i] * dhalf[j] * s.ztz.At(i, j)
			if i == j {
				v++
			}
			w.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(w); !ok {
		return bad
	}
	logDetW := chol.LogDet()

	// a = D^{1/2} Z'X, b = D^{1/2} Z'y
	a := mat.NewDense(s.q, fixedEffects, nil)
	b := mat.NewVecDense(s.q, nil)
	for j := 0; j < s.q; j++ {
		a.Set(j, 0, dhalf[j]*s.ztx.At(j, 0))
		a.Set(j, 1, dhalf[j]*s.ztx.At(j, 1))
		b.SetVec(j, dhalf[j]*s.zty.AtVec(j))
	}

	sa := mat.NewDense(s.q, fixedEffects, nil)
	if err := chol.SolveTo(sa, a); err != nil {
		return bad
	}
	sb := mat.NewVecDense(s.q, nil)
	if err := chol.SolveVecTo(sb, b); err != nil {
		return bad
	}

	// X'V^-1 X, X'V^-1 y, y'V^-1 y via the Woodbury correction terms.
	xvx00 := float64(s.n) - dotCols(a, sa, 0, 0)
	xvx01 := s.sumC - dotCols(a, sa, 0, 1)
	xvx11 := s.sumC2 - dotCols(a, sa, 1, 1)
	xvy0 := s.xty[0] - dotColVec(a, sb, 0)
	xvy1 := s.xty[1] - dotColVec(a, sb, 1)
	yvy := s.yty - mat.Dot(b, sb)

	det := xvx00*xvx11 - xvx01*xvx01
	if det <= 0 || math.IsNaN(det) {
		return bad
	}
	beta0 := (xvx11*xvy0 - xvx01*xvy1) / det
	beta1 := (xvx00*xvy1 - xvx01*xvy0) / det

	rss := yvy - beta0*xvy0 - beta1*xvy1
	if rss <= 0 || math.IsNaN(rss) {
		return bad
	}

	dev := logDetW + math.Log(det) + float64(s.n-fixedEffects)*math.Log(rss)
	if math.IsNaN(dev) {
		return bad
	}
	return evaluation{
		deviance: dev,
		beta:     [2]float64{beta0, beta1},
		covUnit:  [3]float64{xvx11 / det, -xvx01 / det, xvx00 / det},
		rss:      rss,
	}
}

func dotCols(a, b *mat.Dense, i, j int) float64 {
	rows, _ := a.Dims()
	var sum float64
	for r := 0; r < rows; r++ {
		sum += a.At(r, i) * b.At(r, j)
	}
	return sum
}

func dotColVec(a *mat.Dense, v *mat.VecDense, i int) float64 {
	rows, _ := a.Dims()
	var sum float64
	for r := 0; r < rows; r++ {
		sum += a.At(r, i) * v.AtVec(r)
	}
	return sum
}

// remlFit is a converged REML solution.
type remlFit struct {
	n, p          int
	withRecording bool
	components    int
	theta         []float64
	beta          [2]float64
	covUnit       [3]float64
	rss           float64
}

func (f *remlFit) singular(tol float64) bool {
	for _, t := range f.theta {
		if t < tol {
			return true
		}
	}
	return false
}

func (f *remlFit) thetaRecording() float64 {
	if f.withRecording {
		return f.theta[0]
	}
	return 0
}

func (f *remlFit) thetaParticipant() float64 {
	return f.theta[f.components-1]
}

func (f *remlFit) sigma2() float64 {
	return f.rss / float64(f.n-f.p)
}

func (f *remlFit) interceptSE() float64 {
	return math.Sqrt(f.sigma2() * f.covUnit[0])
}

func (f *remlFit) cameraSE() float64 {
	return math.Sqrt(f.sigma2() * f.covUnit[2])
}

// fitREML minimizes the profiled REML criterion over the nonnegative
// variance ratios. The ratios are optimized on a square-root scale so the
// zero boundary is reachable without constraints.
func fitREML(d Data, withRecording bool) (*remlFit, bool) {
	stats := buildStats(d, withRecording)
	components := 1
	if withRecording {
		components = 2
	}

	objective := func(x []float64) float64 {
		theta := make([]float64, components)
		for k, s := range x {
			theta[k] = s * s
		}
		return stats.evaluate(theta).deviance
	}

	problem := optimize.Problem{Func: objective}
	x0 := make([]float64, components)
	for k := range x0 {
		x0[k] = 1
	}

	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return nil, false
	}

	theta := make([]float64, components)
	for k, s := range result.X {
		theta[k] = s * s
	}
	eval := stats.evaluate(theta)
	if math.IsInf(eval.deviance, 1) {
		return nil, false
	}

	return &remlFit{
		n:             stats.n,
		p:             fixedEffects,
		withRecording: withRecording,
		components:    components,
		theta:         theta,
		beta:          eval.beta,
		covUnit:       eval.covUnit,
		rss:           eval.rss,
	}, true
}
