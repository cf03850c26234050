package stats

import (
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"

	"github.com/bft-labs/seqbatch/internal/domain"
)

// Fields read and derived by StyleEncoder.
const (
	ExpField         = "exp"
	PoseField        = "pose"
	LandmarkField    = "idexp_lm3d"
	StyleField       = "style"
	RefLandmarkField = "ref_mean_lm3d"
)

// minStyleFrames is the shortest exp/pose sequence a style encoding can be
// derived from: the frame differences need two values for a sample std.
const minStyleFrames = 3

// StyleEncoder fills in the fixed vectors a sample can derive from its own
// sequences. RefLandmarkField is the per-channel mean of LandmarkField.
// StyleField concatenates the per-channel std of exp, the std of exp frame
// differences and the std of pose frame differences, each standardized with
// the training statistics. Vectors a sample already carries are kept.
type StyleEncoder struct {
	style *styleConstants
}

type styleConstants struct {
	expStdMean, expStdStd     []float64
	expDiffMean, expDiffStd   []float64
	poseDiffMean, poseDiffStd []float64
}

// NewStyleEncoder returns an encoder. With nil statistics only
// RefLandmarkField is derived.
func NewStyleEncoder(st domain.Stats) (*StyleEncoder, error) {
	if st == nil {
		return &StyleEncoder{}, nil
	}
	keys := []string{
		ExpField + StdMeanSuffix, ExpField + StdStdSuffix,
		ExpField + DiffStdMeanSuffix, ExpField + DiffStdStdSuffix,
		PoseField + DiffStdMeanSuffix, PoseField + DiffStdStdSuffix,
	}
	vals := make([][]float64, len(keys))
	for i, k := range keys {
		v, ok := st.Get(k)
		if !ok {
			return nil, fmt.Errorf("%w: no statistics for %q", domain.ErrMissingField, k)
		}
		vals[i] = v
	}
	exp := len(vals[0])
	if len(vals[1]) != exp || len(vals[2]) != exp || len(vals[3]) != exp || len(vals[4]) != len(vals[5]) {
		return nil, fmt.Errorf("%w: style statistics differ in length", domain.ErrShapeMismatch)
	}
	return &StyleEncoder{style: &styleConstants{
		expStdMean: vals[0], expStdStd: vals[1],
		expDiffMean: vals[2], expDiffStd: vals[3],
		poseDiffMean: vals[4], poseDiffStd: vals[5],
	}}, nil
}

// Width is the length of the derived style vector, or 0 without statistics.
func (e *StyleEncoder) Width() int {
	if e.style == nil {
		return 0
	}
	return len(e.style.expStdMean) + len(e.style.expDiffMean) + len(e.style.poseDiffMean)
}

// Apply returns s with the missing derivable vectors added. A sample too
// short or of the wrong width for a style encoding is returned without one.
// s itself is never modified.
func (e *StyleEncoder) Apply(s *domain.Sample) (*domain.Sample, error) {
	var ref, style []float32
	if _, ok := s.Vectors[RefLandmarkField]; !ok {
		if lm, ok := s.Sequences[LandmarkField]; ok && lm.Rows > 0 {
			ref = columnMeans(lm)
		}
	}
	if _, ok := s.Vectors[StyleField]; !ok && e.style != nil {
		style = e.encode(s)
	}
	if ref == nil && style == nil {
		return s, nil
	}

	out := *s
	out.Vectors = make(map[string][]float32, len(s.Vectors)+2)
	for k, v := range s.Vectors {
		out.Vectors[k] = v
	}
	if ref != nil {
		out.Vectors[RefLandmarkField] = ref
	}
	if style != nil {
		out.Vectors[StyleField] = style
	}
	return &out, nil
}

func (e *StyleEncoder) encode(s *domain.Sample) []float32 {
	c := e.style
	exp, ok := s.Sequences[ExpField]
	if !ok || exp.Rows < minStyleFrames || exp.Cols != len(c.expStdMean) {
		return nil
	}
	pose, ok := s.Sequences[PoseField]
	if !ok || pose.Rows < minStyleFrames || pose.Cols != len(c.poseDiffMean) {
		return nil
	}

	out := make([]float32, 0, e.Width())
	for ch := 0; ch < exp.Cols; ch++ {
		sd, _ := mstats.StandardDeviationSample(column(exp, ch))
		out = append(out, standardize(sd, c.expStdMean[ch], c.expStdStd[ch]))
	}
	for ch := 0; ch < exp.Cols; ch++ {
		sd, _ := mstats.StandardDeviationSample(diff(column(exp, ch)))
		out = append(out, standardize(sd, c.expDiffMean[ch], c.expDiffStd[ch]))
	}
	for ch := 0; ch < pose.Cols; ch++ {
		sd, _ := mstats.StandardDeviationSample(diff(column(pose, ch)))
		out = append(out, standardize(sd, c.poseDiffMean[ch], c.poseDiffStd[ch]))
	}
	return out
}

// standardize returns (x-mean)/std, treating a zero or NaN std as 1.
func standardize(x, mean, std float64) float32 {
	if std == 0 || math.IsNaN(std) {
		std = 1
	}
	return float32((x - mean) / std)
}

func columnMeans(m domain.Matrix) []float32 {
	out := make([]float32, m.Cols)
	for ch := range out {
		mean, _ := mstats.Mean(column(m, ch))
		out[ch] = float32(mean)
	}
	return out
}
