// Package matching scores how well a candidate's skills cover a job's requirements.
package matching

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
)

// SimilarityThreshold is the minimum normalized similarity for two skills to count as the same
const SimilarityThreshold = 0.8

// Similarity returns 1 - distance/maxLen over normalized skill names
func Similarity(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// Score returns 0..100: the share of required skills covered by the candidate,
// where each required skill contributes its best similarity above the threshold.
// A job without required skills scores 100.
func Score(candidateSkills, requiredSkills []string) int {
	required := dedupe(requiredSkills)
	if len(required) == 0 {
		return 100
	}
	have := dedupe(candidateSkills)
	if len(have) == 0 {
		return 0
	}

	var total float64
	for _, req := range required {
		best := 0.0
		for _, s := range have {
			sim := Similarity(req, s)
			if sim > best {
				best = sim
			}
			if best == 1 {
				break
			}
		}
		if best >= SimilarityThreshold {
			total += best
		}
	}

	score := int(math.Round(total / float64(len(required)) * 100))
	if score > 100 {
		score = 100
	}
	return score
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

func dedupe(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		n := normalize(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
