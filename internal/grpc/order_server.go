package grpcserver

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"flowerShopCRM/internal/auth"
	"flowerShopCRM/internal/display"
	"flowerShopCRM/internal/lifecycle"
	"flowerShopCRM/internal/service"
	"flowerShopCRM/models"
)

const orderServiceName = "flowercrm.v1.OrderService"

// OrderServiceServer is the server API for flowercrm.v1.OrderService.
type OrderServiceServer interface {
	CreateOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListOrders(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdvanceOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetOrderStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangeDeliveryType(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListStatuses(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func orderMethod(f func(OrderServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) structMethod {
	return func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
		return f(srv.(OrderServiceServer), ctx, in)
	}
}

var OrderServiceDesc = grpc.ServiceDesc{
	ServiceName: orderServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(orderServiceName, "CreateOrder", orderMethod(OrderServiceServer.CreateOrder)),
		unary(orderServiceName, "GetOrder", orderMethod(OrderServiceServer.GetOrder)),
		unary(orderServiceName, "ListOrders", orderMethod(OrderServiceServer.ListOrders)),
		unary(orderServiceName, "AdvanceOrder", orderMethod(OrderServiceServer.AdvanceOrder)),
		unary(orderServiceName, "SetOrderStatus", orderMethod(OrderServiceServer.SetOrderStatus)),
		unary(orderServiceName, "ChangeDeliveryType", orderMethod(OrderServiceServer.ChangeDeliveryType)),
		unary(orderServiceName, "ListStatuses", orderMethod(OrderServiceServer.ListStatuses)),
	},
	Metadata: "flowercrm/v1/order.proto",
}

// OrderServer implements OrderServiceServer on top of the order service.
type OrderServer struct {
	Orders *service.OrderService
}

var _ OrderServiceServer = (*OrderServer)(nil)

type lineItemMsg struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type recipientMsg struct {
	DeliveryAddress string `json:"delivery_address"`
	RecipientName   string `json:"recipient_name"`
	RecipientPhone  string `json:"recipient_phone"`
}

func (r recipientMsg) recipient() lifecycle.Recipient {
	return lifecycle.Recipient{Address: r.DeliveryAddress, Name: r.RecipientName, Phone: r.RecipientPhone}
}

type createOrderReq struct {
	recipientMsg
	MainProduct     lineItemMsg    `json:"main_product"`
	AdditionalItems []lineItemMsg  `json:"additional_items"`
	DeliveryType    string         `json:"delivery_type"`
	DeliveryDate    string         `json:"delivery_date"`
	DeliveryTime    string         `json:"delivery_time"`
	Sender          models.Contact `json:"sender"`
	Comment         string         `json:"comment"`
}

type orderIDReq struct {
	ID string `json:"id"`
}

type getOrderReq struct {
	ID     string `json:"id"`
	Number int64  `json:"number"`
}

type setStatusReq struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type changeDeliveryReq struct {
	recipientMsg
	ID           string `json:"id"`
	DeliveryType string `json:"delivery_type"`
}

type listOrdersReq struct {
	Statuses     []string `json:"statuses"`
	DeliveryDate string   `json:"delivery_date"`
	Search       string   `json:"search"`
	CreatedFrom  string   `json:"created_from"`
	CreatedTo    string   `json:"created_to"`
	PageSize     int      `json:"page_size"`
	PageToken    string   `json:"page_token"`
}

// orderMsg is the wire form of an order: the stored fields plus what the
// board needs to render it.
type orderMsg struct {
	models.Order
	Total       string `json:"total"`
	StatusLabel string `json:"status_label"`
	StyleTag    string `json:"style_tag"`
	Action      string `json:"action,omitempty"`
}

func (s *OrderServer) toMsg(o *models.Order) orderMsg {
	p := s.Orders.Engine().Labels().Order(o.Status)
	return orderMsg{
		Order:       *o,
		Total:       display.Money(o.Total()),
		StatusLabel: p.Label,
		StyleTag:    p.StyleTag,
		Action:      p.Action,
	}
}

func (s *OrderServer) orderResponse(o *models.Order) (*structpb.Struct, error) {
	return encode(map[string]any{"order": s.toMsg(o)})
}

// CreateOrder places a new order. Request: createOrderReq. Response: {order}.
func (s *OrderServer) CreateOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req createOrderReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	input := service.CreateOrderInput{
		MainProduct:  service.LineItem{ProductID: req.MainProduct.ProductID, Quantity: req.MainProduct.Quantity},
		DeliveryType: models.DeliveryType(req.DeliveryType),
		Recipient:    req.recipient(),
		DeliveryDate: req.DeliveryDate,
		DeliveryTime: req.DeliveryTime,
		Sender:       req.Sender,
		Comment:      req.Comment,
	}
	for _, li := range req.AdditionalItems {
		input.AdditionalItems = append(input.AdditionalItems, service.LineItem{ProductID: li.ProductID, Quantity: li.Quantity})
	}
	o, err := s.Orders.Create(ctx, input)
	if err != nil {
		return nil, toStatus(err, "create order")
	}
	return s.orderResponse(o)
}

// GetOrder returns one order with its history. Request: {id} or {number}.
func (s *OrderServer) GetOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req getOrderReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	var (
		o   *models.Order
		err error
	)
	switch {
	case req.ID != "":
		o, err = s.Orders.Get(ctx, req.ID)
	case req.Number > 0:
		o, err = s.Orders.GetByNumber(ctx, req.Number)
	default:
		return nil, status.Error(codes.InvalidArgument, "id or number is required")
	}
	if err != nil {
		return nil, toStatus(err, "get order")
	}
	return s.orderResponse(o)
}

// parseInstant accepts RFC 3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
func parseInstant(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		if t, err = time.Parse(time.DateOnly, v); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// ListOrders returns a page of orders. Response: {orders, next_page_token}.
func (s *OrderServer) ListOrders(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req listOrdersReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	before, err := decodeCursor(req.PageToken)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid page_token: %v", err)
	}
	f := service.OrderFilter{
		DeliveryDate: req.DeliveryDate,
		Search:       req.Search,
		PageSize:     req.PageSize,
		BeforeNumber: before,
	}
	for _, st := range req.Statuses {
		f.Statuses = append(f.Statuses, models.OrderStatus(st))
	}
	if f.CreatedFrom, err = parseInstant(req.CreatedFrom); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid created_from: %v", err)
	}
	if f.CreatedTo, err = parseInstant(req.CreatedTo); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid created_to: %v", err)
	}
	orders, next, err := s.Orders.List(ctx, f)
	if err != nil {
		return nil, toStatus(err, "list orders")
	}
	msgs := make([]orderMsg, 0, len(orders))
	for i := range orders {
		msgs = append(msgs, s.toMsg(&orders[i]))
	}
	return encode(map[string]any{"orders": msgs, "next_page_token": encodeCursor(next)})
}

// AdvanceOrder applies the quick action. Request: {id}.
func (s *OrderServer) AdvanceOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req orderIDReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	o, err := s.Orders.Advance(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err, "advance order")
	}
	return s.orderResponse(o)
}

// SetOrderStatus is the manual override. Request: {id, status}.
func (s *OrderServer) SetOrderStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req setStatusReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	o, err := s.Orders.SetStatus(ctx, req.ID, models.OrderStatus(req.Status))
	if err != nil {
		return nil, toStatus(err, "set status")
	}
	return s.orderResponse(o)
}

// ChangeDeliveryType switches pickup/delivery.
// Request: {id, delivery_type, delivery_address, recipient_name, recipient_phone}.
func (s *OrderServer) ChangeDeliveryType(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req changeDeliveryReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	o, err := s.Orders.ChangeDeliveryType(ctx, req.ID, models.DeliveryType(req.DeliveryType), req.recipient())
	if err != nil {
		return nil, toStatus(err, "change delivery type")
	}
	return s.orderResponse(o)
}

type statusMsg struct {
	Status   string `json:"status"`
	Label    string `json:"label"`
	StyleTag string `json:"style_tag"`
	Action   string `json:"action,omitempty"`
	Next     string `json:"next,omitempty"`
}

// ListStatuses returns the status table in lifecycle order. Response: {statuses}.
func (s *OrderServer) ListStatuses(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var out []statusMsg
	for _, r := range s.Orders.Engine().Table() {
		out = append(out, statusMsg{Status: string(r.Status), Label: r.Label, StyleTag: r.StyleTag, Action: r.Action, Next: string(r.Next)})
	}
	return encode(map[string]any{"statuses": out})
}
