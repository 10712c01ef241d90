package domain

import "errors"

// Failure kinds of a pipeline run. Callers classify wrapped errors with
// errors.Is; only ErrNoNovelTopics is a clean, zero-exit outcome.
var (
	// ErrSearchFailed marks a single search query that returned an error.
	// It degrades the candidate pool but never aborts the run.
	ErrSearchFailed = errors.New("search failed")

	// ErrNoNovelTopics means every candidate was filtered out by the
	// history window. Nothing is posted and history stays unchanged.
	ErrNoNovelTopics = errors.New("no novel topics")

	// ErrGenerationFailed covers model-call errors, unparseable output,
	// and output that violates the selection contract.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrPublishFailed means the posting endpoint rejected the share or
	// the request never completed. History is left untouched.
	ErrPublishFailed = errors.New("publish failed")

	// ErrHistoryUnavailable means the history store exists but cannot be
	// read. The run aborts rather than lose deduplication context.
	ErrHistoryUnavailable = errors.New("history unavailable")
)
