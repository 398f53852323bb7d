package grpcserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"flowerShopCRM/internal/auth"
	"flowerShopCRM/internal/display"
	"flowerShopCRM/internal/reconcile"
	"flowerShopCRM/internal/service"
	"flowerShopCRM/models"
	"flowerShopCRM/repository"
)

const auditServiceName = "flowercrm.v1.InventoryAuditService"

// InventoryAuditServiceServer is the server API for flowercrm.v1.InventoryAuditService.
type InventoryAuditServiceServer interface {
	StartAudit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAudit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateCount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveAudit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportAudit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAudits(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func auditMethod(f func(InventoryAuditServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) structMethod {
	return func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
		return f(srv.(InventoryAuditServiceServer), ctx, in)
	}
}

var InventoryAuditServiceDesc = grpc.ServiceDesc{
	ServiceName: auditServiceName,
	HandlerType: (*InventoryAuditServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(auditServiceName, "StartAudit", auditMethod(InventoryAuditServiceServer.StartAudit)),
		unary(auditServiceName, "GetAudit", auditMethod(InventoryAuditServiceServer.GetAudit)),
		unary(auditServiceName, "UpdateCount", auditMethod(InventoryAuditServiceServer.UpdateCount)),
		unary(auditServiceName, "SaveAudit", auditMethod(InventoryAuditServiceServer.SaveAudit)),
		unary(auditServiceName, "ExportAudit", auditMethod(InventoryAuditServiceServer.ExportAudit)),
		unary(auditServiceName, "ListAudits", auditMethod(InventoryAuditServiceServer.ListAudits)),
	},
	Metadata: "flowercrm/v1/audit.proto",
}

// AuditServer implements InventoryAuditServiceServer.
type AuditServer struct {
	Audits *service.AuditService
	Staff  *repository.StaffRepository
	Labels *display.Catalog
}

var _ InventoryAuditServiceServer = (*AuditServer)(nil)

type auditItemMsg struct {
	models.AuditItem
	Label          string `json:"label"`
	StyleTag       string `json:"style_tag"`
	DifferenceText string `json:"difference_text"`
}

type statsMsg struct {
	Total         int  `json:"total"`
	Checked       int  `json:"checked"`
	Pending       int  `json:"pending"`
	Matches       int  `json:"matches"`
	Discrepancies int  `json:"discrepancies"`
	Complete      bool `json:"complete"`
}

func newStatsMsg(st reconcile.Stats) statsMsg {
	return statsMsg{
		Total:         st.Total,
		Checked:       st.Checked,
		Pending:       st.Pending(),
		Matches:       st.Matches,
		Discrepancies: st.Discrepancies,
		Complete:      st.Pending() == 0,
	}
}

func toStatsMsg(items []models.AuditItem) statsMsg {
	m := newStatsMsg(reconcile.SessionStats(items))
	m.Complete = reconcile.IsComplete(items)
	return m
}

func (s *AuditServer) labels() *display.Catalog {
	if s.Labels == nil {
		return display.Default()
	}
	return s.Labels
}

func (s *AuditServer) sessionResponse(sess *models.AuditSession) (*structpb.Struct, error) {
	items := make([]auditItemMsg, 0, len(sess.Items))
	for _, it := range sess.Items {
		p := s.labels().Audit(it.Status)
		items = append(items, auditItemMsg{AuditItem: it, Label: p.Label, StyleTag: p.StyleTag, DifferenceText: display.Difference(it.Difference)})
	}
	return encode(map[string]any{
		"session": map[string]any{
			"id":           sess.ID,
			"started_by":   sess.StartedBy,
			"started_at":   sess.StartedAt,
			"completed_at": sess.CompletedAt,
			"items":        items,
		},
		"stats": toStatsMsg(sess.Items),
	})
}

type sessionIDReq struct {
	ID string `json:"id"`
}

// StartAudit opens a session over the whole catalog.
func (s *AuditServer) StartAudit(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	p, err := auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.Audits.Start(ctx, p.Name)
	if err != nil {
		return nil, toStatus(err, "start audit")
	}
	return s.sessionResponse(sess)
}

// GetAudit returns a session with stats. Request: {id}.
func (s *AuditServer) GetAudit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req sessionIDReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	sess, err := s.Audits.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err, "get audit")
	}
	return s.sessionResponse(sess)
}

// UpdateCount records one count. Request: {session_id, product_id, actual}
// where actual is whatever was typed; it is sanitized, never rejected.
func (s *AuditServer) UpdateCount(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req struct {
		SessionID string `json:"session_id"`
		ProductID string `json:"product_id"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.SessionID == "" || req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id and product_id are required")
	}
	sess, err := s.Audits.Count(ctx, req.SessionID, req.ProductID, rawString(in, "actual"))
	if err != nil {
		return nil, toStatus(err, "update count")
	}
	return s.sessionResponse(sess)
}

// SaveAudit commits counted lines. Managers only. Response: {applied, skipped, stats}.
func (s *AuditServer) SaveAudit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireManager(ctx, s.Staff); err != nil {
		return nil, err
	}
	var req sessionIDReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	res, err := s.Audits.Save(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err, "save audit")
	}
	return encode(map[string]any{
		"applied": res.Applied,
		"skipped": res.Skipped,
		"stats":   newStatsMsg(res.Stats),
	})
}

// ExportAudit returns the XLSX report. Response: {filename, content} with base64 content.
func (s *AuditServer) ExportAudit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req sessionIDReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.Audits.Export(ctx, req.ID, &buf); err != nil {
		return nil, toStatus(err, "export audit")
	}
	return encode(map[string]any{
		"filename": fmt.Sprintf("audit-%s.xlsx", req.ID),
		"content":  base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}

// ListAudits returns recent session headers. Request: {limit}. Response: {sessions}.
func (s *AuditServer) ListAudits(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	var req struct {
		Limit int `json:"limit"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	list, err := s.Audits.List(ctx, req.Limit)
	if err != nil {
		return nil, toStatus(err, "list audits")
	}
	out := make([]map[string]any, 0, len(list))
	for _, sess := range list {
		out = append(out, map[string]any{
			"id":           sess.ID,
			"started_by":   sess.StartedBy,
			"started_at":   sess.StartedAt,
			"completed_at": sess.CompletedAt,
		})
	}
	return encode(map[string]any{"sessions": out})
}
