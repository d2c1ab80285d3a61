package domain

import "errors"

// Catalog errors
var (
	ErrGameNotFound         = errors.New("game not found")
	ErrEmptyGameName        = errors.New("game name is required")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrGenreNotFound        = errors.New("genre not found")
	ErrPlatformNotFound     = errors.New("platform not found")
	ErrRunnerNotFound       = errors.New("runner not found")
	ErrLibraryNotFound      = errors.New("library not found")
	ErrGameAlreadyInLibrary = errors.New("game is already in library")
)

// Installer errors
var (
	ErrInstallerNotFound       = errors.New("installer not found")
	ErrInvalidRating           = errors.New("invalid installer rating")
	ErrInvalidInstallerContent = errors.New("invalid installer content")
	ErrNotInstallerOwner       = errors.New("only the author or staff can modify this installer")
	ErrEmptyVersion            = errors.New("installer version is required")
	ErrVersionTooLong          = errors.New("installer version must be at most 32 characters")
	ErrEmptyIssueDescription   = errors.New("issue description is required")
)

// Submission and featured content errors
var (
	ErrSubmissionNotFound        = errors.New("submission not found")
	ErrSubmissionAlreadyAccepted = errors.New("submission was already accepted")
	ErrUnknownFeaturedKind       = errors.New("unknown featured content kind")
	ErrFeaturedTargetNotFound    = errors.New("featured content target not found")
)
