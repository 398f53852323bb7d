package grpcserver

import (
	"context"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"flowerShopCRM/internal/auth"
	"flowerShopCRM/internal/service"
	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

const productServiceName = "flowercrm.v1.ProductService"

// ProductServiceServer is the server API for flowercrm.v1.ProductService.
type ProductServiceServer interface {
	CreateProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProducts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func productMethod(f func(ProductServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) structMethod {
	return func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
		return f(srv.(ProductServiceServer), ctx, in)
	}
}

var ProductServiceDesc = grpc.ServiceDesc{
	ServiceName: productServiceName,
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(productServiceName, "CreateProduct", productMethod(ProductServiceServer.CreateProduct)),
		unary(productServiceName, "GetProduct", productMethod(ProductServiceServer.GetProduct)),
		unary(productServiceName, "ListProducts", productMethod(ProductServiceServer.ListProducts)),
		unary(productServiceName, "UpdateProduct", productMethod(ProductServiceServer.UpdateProduct)),
		unary(productServiceName, "DeleteProduct", productMethod(ProductServiceServer.DeleteProduct)),
	},
	Metadata: "flowercrm/v1/product.proto",
}

// ProductServer implements ProductServiceServer. Anyone on staff can read the
// catalog; only managers change it.
type ProductServer struct {
	Products *service.ProductService
	Staff    *repository.StaffRepository
}

var _ ProductServiceServer = (*ProductServer)(nil)

type productReq struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Unit     string          `json:"unit"`
	Stock    int             `json:"stock"`
}

func (r productReq) product() models.Product {
	return models.Product{
		ID:       r.ID,
		Name:     r.Name,
		Category: r.Category,
		Price:    r.Price,
		Image:    r.Image,
		Unit:     r.Unit,
		Stock:    r.Stock,
	}
}

func productResponse(p *models.Product) (*structpb.Struct, error) {
	return encode(map[string]any{"product": p})
}

// CreateProduct adds a catalog entry. Managers only. Request: productReq; id is optional.
func (s *ProductServer) CreateProduct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireManager(ctx, s.Staff); err != nil {
		return nil, err
	}
	var req productReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	p, err := s.Products.Create(ctx, req.product())
	if err != nil {
		return nil, toStatus(err, "create product")
	}
	return productResponse(p)
}

// GetProduct returns one product. Request: {id}.
func (s *ProductServer) GetProduct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	p, err := s.Products.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err, "get product")
	}
	return productResponse(p)
}

// ListProducts returns the catalog. Response: {products}.
func (s *ProductServer) ListProducts(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	list, err := s.Products.List(ctx)
	if err != nil {
		return nil, toStatus(err, "list products")
	}
	if list == nil {
		list = []models.Product{}
	}
	return encode(map[string]any{"products": list})
}

// UpdateProduct replaces a product's fields. Managers only. Request: productReq.
func (s *ProductServer) UpdateProduct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireManager(ctx, s.Staff); err != nil {
		return nil, err
	}
	var req productReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	p, err := s.Products.Update(ctx, req.product())
	if err != nil {
		return nil, toStatus(err, "update product")
	}
	return productResponse(p)
}

// DeleteProduct removes a product. Managers only. Request: {id}.
func (s *ProductServer) DeleteProduct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireManager(ctx, s.Staff); err != nil {
		return nil, err
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := s.Products.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(err, "delete product")
	}
	return encode(map[string]any{"id": req.ID})
}
