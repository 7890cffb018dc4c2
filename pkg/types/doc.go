// Package types defines the meal and workout entities, the totals
// calculator, the key-value persistence contract, and the standard errors
// for the NutriFit tracker.
package types
