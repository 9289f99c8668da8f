// Package ranking blends per-candidate signals into the final relevance score.
//
// Formula:
//
//	final = (ws*semantic + wg*geo + wt*trust + wp*pop/(pop+half)) / (ws+wg+wt+wp)
//
// Every input is clamped to [0,1] before weighting (popularity after the
// saturation pop/(pop+half)), weights are non-negative, and the sum
// normalizes the result, so final stays in [0,1] and never decreases when any
// single signal grows. Coefficients come from the ranking section of the
// service configuration; DefaultWeights documents the shipped calibration.
package ranking
