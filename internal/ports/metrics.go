package ports

// SearchMetrics receives one observation per search iteration.
// Implementations must be cheap; Iteration is on the hot path.
type SearchMetrics interface {
	// Iteration records a scored candidate. accepted reports whether it
	// replaced the current key; best is the current best score afterwards.
	Iteration(accepted bool, best float64)
}
