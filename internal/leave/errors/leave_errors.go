package leaveerrors

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
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave format",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already exists in overlapping period",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"transition not allowed from current leave status",
		http.StatusBadRequest,
	)
	ErrCancelAlreadyPending = apperror.New(
		apperror.CodeConflict,
		"a cancel request is already pending for this leave",
		http.StatusConflict,
	)
	ErrLeaveNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"only pending leaves can be edited",
		http.StatusBadRequest,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"you are not allowed to perform this action on this leave",
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
	ErrLeaveNotDeletable = apperror.New(
		apperror.CodeInvalidState,
		"leave cannot be deleted in its current state",
		http.StatusBadRequest,
	)
)
