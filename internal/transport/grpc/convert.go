package grpc

import (
	"encoding/json"
	stderrors "errors"

	"github.com/Raisondetr3/taskflow-service/internal/errors"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct round-trips v through its JSON form so the gRPC payloads match the
// HTTP bodies field for field.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.ErrInternalError.ToGRPCStatus()
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.ErrInternalError.ToGRPCStatus()
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, errors.ErrInternalError.ToGRPCStatus()
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, out any) error {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return errors.ErrInvalidBody.ToGRPCStatus()
	}
	if err := json.Unmarshal(b, out); err != nil {
		return errors.NewServiceError(errors.ErrInvalidBody.Code, errors.ErrInvalidBody.Message+": "+err.Error()).ToGRPCStatus()
	}
	return nil
}

func toStatus(err error) error {
	var svcErr *errors.ServiceError
	if stderrors.As(err, &svcErr) {
		return svcErr.ToGRPCStatus()
	}
	return errors.ErrInternalError.ToGRPCStatus()
}
