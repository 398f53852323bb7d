package grpcserver

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"flowerShopCRM/internal/auth"
	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

const staffServiceName = "flowercrm.v1.StaffService"

// StaffServiceServer is the server API for flowercrm.v1.StaffService.
type StaffServiceServer interface {
	GetProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetRole(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListStaff(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func staffMethod(f func(StaffServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) structMethod {
	return func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
		return f(srv.(StaffServiceServer), ctx, in)
	}
}

var StaffServiceDesc = grpc.ServiceDesc{
	ServiceName: staffServiceName,
	HandlerType: (*StaffServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(staffServiceName, "GetProfile", staffMethod(StaffServiceServer.GetProfile)),
		unary(staffServiceName, "UpdateProfile", staffMethod(StaffServiceServer.UpdateProfile)),
		unary(staffServiceName, "SetRole", staffMethod(StaffServiceServer.SetRole)),
		unary(staffServiceName, "ListStaff", staffMethod(StaffServiceServer.ListStaff)),
	},
	Metadata: "flowercrm/v1/staff.proto",
}

// StaffServer implements StaffServiceServer.
type StaffServer struct {
	Staff *repository.StaffRepository
}

var _ StaffServiceServer = (*StaffServer)(nil)

// resolveCurrentStaff retrieves the authenticated staff member from the database.
func (s *StaffServer) resolveCurrentStaff(ctx context.Context, p *auth.Principal) (*models.Staff, error) {
	st, err := s.Staff.GetByUsername(ctx, p.Name)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get staff: %v", err)
	}
	if st == nil {
		return nil, status.Error(codes.NotFound, "staff not found")
	}
	return st, nil
}

// GetProfile returns the caller's own record. Response: {staff}.
func (s *StaffServer) GetProfile(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	p, err := auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.resolveCurrentStaff(ctx, p)
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"staff": st})
}

// UpdateProfile edits the caller's contact details. Request: {full_name, phone, email}.
func (s *StaffServer) UpdateProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	p, err := auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}
	var req struct {
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return nil, status.Error(codes.InvalidArgument, "email is invalid")
	}
	err = s.Staff.UpdateProfile(ctx, p.Name, strings.TrimSpace(req.FullName), strings.TrimSpace(req.Phone), strings.TrimSpace(req.Email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, status.Error(codes.NotFound, "staff not found")
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "update profile: %v", err)
	}
	st, err := s.resolveCurrentStaff(ctx, p)
	if err != nil {
		return nil, err
	}
	return encode(map[string]any{"staff": st})
}

// SetRole changes another member's role. Managers only. Request: {username, role}.
func (s *StaffServer) SetRole(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireManager(ctx, s.Staff); err != nil {
		return nil, err
	}
	var req struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != models.RoleFlorist && role != models.RoleManager {
		return nil, status.Errorf(codes.InvalidArgument, "unknown role %q", req.Role)
	}
	st, err := s.Staff.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get staff: %v", err)
	}
	if st == nil {
		return nil, status.Error(codes.NotFound, "staff not found")
	}
	if err := s.Staff.UpdateRoleByUsername(ctx, req.Username, role); err != nil {
		return nil, status.Errorf(codes.Internal, "update role: %v", err)
	}
	st.Role = role
	return encode(map[string]any{"staff": st})
}

// ListStaff returns every member. Managers only. Request: {limit, offset}.
func (s *StaffServer) ListStaff(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireManager(ctx, s.Staff); err != nil {
		return nil, err
	}
	var req struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	list, err := s.Staff.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list staff: %v", err)
	}
	if list == nil {
		list = []models.Staff{}
	}
	return encode(map[string]any{"staff": list})
}
