package extractor

import "math"

// Greedy CTC decoding for single-sequence recognition output.

func argmax(v []float32) (int, float32) {
	if len(v) == 0 {
		return -1, 0
	}
	idx := 0
	best := v[0]
	for i := 1; i < len(v); i++ {
		if v[i] > best {
			best = v[i]
			idx = i
		}
	}
	return idx, best
}

// probOfIndex returns the softmax probability of v[idx]. Outputs that
// already sum to one within [0,1] are taken as probabilities directly.
func probOfIndex(v []float32, idx int) float64 {
	if len(v) == 0 || idx < 0 || idx >= len(v) {
		return 0
	}
	var sum float64
	minV, maxV := v[0], v[0]
	for _, x := range v {
		sum += float64(x)
		if x < minV {
			minV = x
		}
		if x > maxV {
			maxV = x
		}
	}
	if sum > 0.99 && sum < 1.01 && minV >= 0 && maxV <= 1 {
		return float64(v[idx])
	}
	var denom float64
	for _, x := range v {
		denom += math.Exp(float64(x - maxV))
	}
	if denom == 0 {
		return 0
	}
	return math.Exp(float64(v[idx]-maxV)) / denom
}

// decodeGreedy picks the best class per timestep from a single-sequence
// logit block. classesFirst selects the [C,T] layout over the default [T,C].
func decodeGreedy(logits []float32, steps, classes int, classesFirst bool) ([]int, []float64) {
	if steps <= 0 || classes <= 0 || len(logits) < steps*classes {
		return nil, nil
	}
	indices := make([]int, steps)
	probs := make([]float64, steps)
	var scratch []float32
	if classesFirst {
		scratch = make([]float32, classes)
	}
	for t := range steps {
		var cls []float32
		if classesFirst {
			for k := range classes {
				scratch[k] = logits[k*steps+t]
			}
			cls = scratch
		} else {
			cls = logits[t*classes : (t+1)*classes]
		}
		idx, _ := argmax(cls)
		indices[t] = idx
		probs[t] = probOfIndex(cls, idx)
	}
	return indices, probs
}

// collapseRepeats applies the CTC collapse rule: drop blanks, merge runs of
// the same class, and keep the per-character probabilities of survivors.
func collapseRepeats(indices []int, probs []float64, blank int) ([]int, []float64) {
	outIdx := make([]int, 0, len(indices))
	outProb := make([]float64, 0, len(indices))
	prev := -1
	for i, idx := range indices {
		if idx == blank {
			prev = idx
			continue
		}
		if idx == prev {
			continue
		}
		outIdx = append(outIdx, idx)
		if i < len(probs) {
			outProb = append(outProb, probs[i])
		} else {
			outProb = append(outProb, 0)
		}
		prev = idx
	}
	return outIdx, outProb
}

// meanProb averages per-character probabilities; 0 for an empty sequence.
func meanProb(probs []float64) float64 {
	if len(probs) == 0 {
		return 0
	}
	var s float64
	for _, p := range probs {
		s += p
	}
	return s / float64(len(probs))
}
