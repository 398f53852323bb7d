package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"flowerShopCRM/internal/auth"
	"flowerShopCRM/internal/service"
	"flowerShopCRM/models"
)

const customerServiceName = "flowercrm.v1.CustomerService"

// CustomerServiceServer is the server API for flowercrm.v1.CustomerService.
type CustomerServiceServer interface {
	GetCustomer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCustomers(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func customerMethod(f func(CustomerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) structMethod {
	return func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
		return f(srv.(CustomerServiceServer), ctx, in)
	}
}

var CustomerServiceDesc = grpc.ServiceDesc{
	ServiceName: customerServiceName,
	HandlerType: (*CustomerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(customerServiceName, "GetCustomer", customerMethod(CustomerServiceServer.GetCustomer)),
		unary(customerServiceName, "ListCustomers", customerMethod(CustomerServiceServer.ListCustomers)),
	},
	Metadata: "flowercrm/v1/customer.proto",
}

// CustomerServer implements CustomerServiceServer.
type CustomerServer struct {
	Customers *service.CustomerService
	Orders    *OrderServer
}

var _ CustomerServiceServer = (*CustomerServer)(nil)

// GetCustomer returns a customer with their orders, newest first.
// Request: {id} or {phone}. Response: {customer, orders}.
func (s *CustomerServer) GetCustomer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req struct {
		ID    int64  `json:"id"`
		Phone string `json:"phone"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	d, err := s.Customers.Get(ctx, req.ID, req.Phone)
	if err != nil {
		return nil, toStatus(err, "get customer")
	}
	orders := make([]orderMsg, 0, len(d.Orders))
	for i := range d.Orders {
		orders = append(orders, s.Orders.toMsg(&d.Orders[i]))
	}
	return encode(map[string]any{"customer": d.Customer, "orders": orders})
}

// ListCustomers returns customers, most recent buyers first. Request: {limit, offset}.
func (s *CustomerServer) ListCustomers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	list, err := s.Customers.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, toStatus(err, "list customers")
	}
	if list == nil {
		list = []models.Customer{}
	}
	return encode(map[string]any{"customers": list})
}
