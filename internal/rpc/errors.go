package rpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"runright.io/internal/cms"
	"runright.io/internal/query"
)

// toStatus maps store and query sentinels onto the fixed status surface.
// Errors that already carry a status pass through untouched so handlers can
// attach their own user-facing details.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, query.ErrInvalidCompanyID):
		return status.Error(codes.InvalidArgument, "Invalid company_id specified")
	case errors.Is(err, cms.ErrNotFound):
		return status.Error(codes.NotFound, "Could not find the requested record")
	case errors.Is(err, cms.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "A record already exists with this identity")
	case errors.Is(err, cms.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, "Invalid request")
	}
	return status.Error(codes.Unknown, "An internal error occurred")
}
