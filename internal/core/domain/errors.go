package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataIntegrity indicates a feature record could not be ingested.
	ErrDataIntegrity = errors.New("domain: malformed feature record")
	// ErrArithmetic indicates a similarity score is undefined for a track.
	ErrArithmetic = errors.New("domain: similarity undefined")
	// ErrInsufficientData indicates there are no tracks to seed recommendations from.
	ErrInsufficientData = errors.New("domain: no tracks to seed recommendations")
	// ErrUpstreamFetch indicates a catalog call failed.
	ErrUpstreamFetch = errors.New("domain: upstream fetch failed")
	// ErrInvalidArgument indicates a caller supplied an unusable argument.
	ErrInvalidArgument = errors.New("domain: invalid argument")
)

// DataIntegrityError names the track and feature that made a record unusable.
type DataIntegrityError struct {
	TrackID   string
	Feature   string
	NonFinite bool
}

func (e *DataIntegrityError) Error() string {
	if e.NonFinite {
		return fmt.Sprintf("track %q: feature %q is not a finite number", e.TrackID, e.Feature)
	}
	return fmt.Sprintf("track %q: missing audio feature %q", e.TrackID, e.Feature)
}

func (e *DataIntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}

// ArithmeticError reports a track whose similarity divides by zero.
type ArithmeticError struct {
	TrackID string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("track %q: similarity undefined, feature total is zero", e.TrackID)
}

func (e *ArithmeticError) Is(target error) bool {
	return target == ErrArithmetic
}

// Stage names the step of a recommendation build that talks to the catalog.
type Stage string

const (
	StagePlaylist        Stage = "playlist"
	StageTrackIDs        Stage = "ids"
	StageFeatures        Stage = "features"
	StageRecommendations Stage = "recommendations"
	StageCreate          Stage = "create"
	StagePopulate        Stage = "populate"
	StagePlaylists       Stage = "playlists"
)

// UpstreamFetchError tags a collaborator failure with the stage it happened in,
// so callers can decide whether a retry makes sense.
type UpstreamFetchError struct {
	Stage Stage
	Err   error
}

// NewUpstreamFetchError wraps err unless it already carries a stage.
func NewUpstreamFetchError(stage Stage, err error) error {
	var existing *UpstreamFetchError
	if errors.As(err, &existing) {
		return err
	}
	return &UpstreamFetchError{Stage: stage, Err: err}
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("upstream fetch failed at stage %s: %v", e.Stage, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

func (e *UpstreamFetchError) Is(target error) bool {
	return target == ErrUpstreamFetch
}
