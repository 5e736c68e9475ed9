package overtimeerrors

import (
	"net/http"

	"go-timeoff/internal/shared/apperror"
)

var (
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidOvertimeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid overtime id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidTimeFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid time format, expected HH:MM",
		http.StatusBadRequest,
	)
	ErrZeroDuration = apperror.New(
		apperror.CodeInvalidInput,
		"overtime must cover at least one minute",
		http.StatusBadRequest,
	)
	ErrOvertimeNotFound = apperror.New(
		apperror.CodeNotFound,
		"overtime not found",
		http.StatusNotFound,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"transition not allowed from current overtime status",
		http.StatusBadRequest,
	)
	ErrCancelAlreadyPending = apperror.New(
		apperror.CodeConflict,
		"a cancel request is already pending for this overtime",
		http.StatusConflict,
	)
	ErrOvertimeNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"only pending overtime can be edited",
		http.StatusBadRequest,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"you are not allowed to perform this action on this overtime",
		http.StatusForbidden,
	)
	ErrCommentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"comment is required when rejecting",
		http.StatusBadRequest,
	)
	ErrCancelReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason is required when requesting cancellation",
		http.StatusBadRequest,
	)
	ErrOvertimeNotDeletable = apperror.New(
		apperror.CodeInvalidState,
		"overtime cannot be deleted in its current state",
		http.StatusBadRequest,
	)
)
