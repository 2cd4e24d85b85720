package rnb

import "errors"

var (
	// ErrInvalidConfig is returned by Config.Validate and New.
	ErrInvalidConfig = errors.New("rnb: invalid config")

	// ErrNoLabeled is returned by Fit when the dataset has no Labeled nodes.
	ErrNoLabeled = errors.New("rnb: no labeled nodes")

	// ErrEmptyClass is returned by Fit when one class has no Labeled members;
	// its prior would be log(0) and its feature conditionals 0/0.
	ErrEmptyClass = errors.New("rnb: class has no labeled members")

	// ErrNotFitted is returned by inference before a successful Fit.
	ErrNotFitted = errors.New("rnb: model not fitted")

	// ErrMissingRelational is returned when a relational inference mode is
	// requested but no neighbor conditionals were learned.
	ErrMissingRelational = errors.New("rnb: neighbor conditionals not learned")

	// ErrNoUnlabeled is returned by inference when there is nothing to infer.
	ErrNoUnlabeled = errors.New("rnb: no unlabeled nodes")

	// ErrNoCache is returned by a relational-update-only call when no full
	// inference has run since the last Fit or InvalidateCache.
	ErrNoCache = errors.New("rnb: no cached base logits")

	// ErrCacheMembership is returned by a relational-update-only call whose
	// Unlabeled node set differs from the one the cache was computed for.
	ErrCacheMembership = errors.New("rnb: unlabeled nodes changed since cached inference")
)
