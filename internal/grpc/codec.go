package grpcserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"flowerShopCRM/internal/lifecycle"
	"flowerShopCRM/internal/service"
	"flowerShopCRM/repository"
)

// Every method takes and returns a google.protobuf.Struct; the shape of each
// message is documented on the method.
type structMethod func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unary(service, method string, h structMethod) grpc.MethodDesc {
	full := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return h(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return h(srv, ctx, req.(*structpb.Struct))
			})
		},
	}
}

// decode fills v from the request's JSON form.
func decode(in *structpb.Struct, v any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

// encode converts any JSON-marshalable value into a Struct.
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// rawString returns a field as the user typed it, whether sent as string or number.
func rawString(in *structpb.Struct, key string) string {
	v, ok := in.GetFields()[key]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	}
	return ""
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := codes.Internal
	switch {
	case errors.Is(err, service.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, service.ErrAlreadyExists):
		code = codes.AlreadyExists
	case errors.Is(err, repository.ErrConflict):
		code = codes.Aborted
	case errors.Is(err, lifecycle.ErrTerminal),
		errors.Is(err, service.ErrSessionClosed),
		errors.Is(err, service.ErrNothingCounted):
		code = codes.FailedPrecondition
	case errors.Is(err, lifecycle.ErrUnknownStatus),
		errors.Is(err, lifecycle.ErrInvalidDelivery),
		errors.Is(err, lifecycle.ErrMissingSender),
		errors.Is(err, lifecycle.ErrMissingProduct),
		errors.Is(err, service.ErrInvalidInput):
		code = codes.InvalidArgument
	}
	return status.Errorf(code, "%s: %v", op, err)
}

// Page tokens wrap the number of the last order on the page.
func encodeCursor(number int64) string {
	if number == 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(number, 10)))
}

func decodeCursor(token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("base64: %w", err)
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid cursor")
	}
	return n, nil
}
