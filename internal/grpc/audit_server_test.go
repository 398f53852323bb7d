package grpcserver

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"flowerShopCRM/internal/events"
	"flowerShopCRM/internal/service"
	"flowerShopCRM/repository"
)

func newAuditServer(t *testing.T, name string) (*AuditServer, *events.Recorder) {
	t.Helper()
	deps, rec := newDeps(t, name)
	opts := service.Options{Events: deps.Events, Log: deps.Log, Now: deps.Now}
	return &AuditServer{
		Audits: service.NewAuditService(deps.DB, nil, opts),
		Staff:  repository.NewStaffRepository(deps.DB),
	}, rec
}

func statsField(resp *structpb.Struct, key string) float64 {
	return resp.GetFields()["stats"].GetStructValue().GetFields()[key].GetNumberValue()
}

func TestAuditServer_CountAndSave(t *testing.T) {
	s, rec := newAuditServer(t, "grpc_audit_flow")
	florist := principalCtx("fred", "florist")
	manager := principalCtx("mia", "manager")

	resp, err := s.StartAudit(florist, &structpb.Struct{})
	require.NoError(t, err)
	session := resp.GetFields()["session"].GetStructValue().GetFields()
	id := session["id"].GetStringValue()
	assert.Equal(t, "fred", session["started_by"].GetStringValue())
	assert.Equal(t, float64(2), statsField(resp, "total"))
	assert.Equal(t, float64(2), statsField(resp, "pending"))

	_, err = s.SaveAudit(manager, mustStruct(t, map[string]any{"id": id}))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err), "nothing counted yet")

	// Numbers and strings are both accepted; garbage is sanitized to zero.
	resp, err = s.UpdateCount(florist, mustStruct(t, map[string]any{"session_id": id, "product_id": "rose", "actual": 20}))
	require.NoError(t, err)
	items := resp.GetFields()["session"].GetStructValue().GetFields()["items"].GetListValue().GetValues()
	rose := items[0].GetStructValue().GetFields()
	assert.Equal(t, "surplus", rose["status"].GetStringValue())
	assert.Equal(t, "+8", rose["difference_text"].GetStringValue())

	resp, err = s.UpdateCount(florist, mustStruct(t, map[string]any{"session_id": id, "product_id": "tulip", "actual": "lots"}))
	require.NoError(t, err)
	assert.Equal(t, float64(1), statsField(resp, "checked"))
	assert.False(t, resp.GetFields()["stats"].GetStructValue().GetFields()["complete"].GetBoolValue())

	_, err = s.SaveAudit(florist, mustStruct(t, map[string]any{"id": id}))
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	resp, err = s.SaveAudit(manager, mustStruct(t, map[string]any{"id": id}))
	require.NoError(t, err)
	assert.Equal(t, float64(1), resp.GetFields()["applied"].GetNumberValue())
	assert.Len(t, rec.Events(), 1)

	_, err = s.UpdateCount(florist, mustStruct(t, map[string]any{"session_id": id, "product_id": "tulip", "actual": "3"}))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestAuditServer_ExportAndErrors(t *testing.T) {
	s, _ := newAuditServer(t, "grpc_audit_export")
	ctx := principalCtx("fred", "florist")

	resp, err := s.StartAudit(ctx, &structpb.Struct{})
	require.NoError(t, err)
	id := resp.GetFields()["session"].GetStructValue().GetFields()["id"].GetStringValue()

	out, err := s.ExportAudit(ctx, mustStruct(t, map[string]any{"id": id}))
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(out.GetFields()["content"].GetStringValue())
	require.NoError(t, err)
	assert.Equal(t, "PK", string(raw[:2]))
	assert.Contains(t, out.GetFields()["filename"].GetStringValue(), id)

	_, err = s.GetAudit(ctx, mustStruct(t, map[string]any{"id": "missing"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = s.UpdateCount(ctx, mustStruct(t, map[string]any{"session_id": id}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAuditServer_SaveReportsCompleteSession(t *testing.T) {
	s, _ := newAuditServer(t, "grpc_audit_complete")
	florist := principalCtx("fred", "florist")
	manager := principalCtx("mia", "manager")

	resp, err := s.StartAudit(florist, &structpb.Struct{})
	require.NoError(t, err)
	id := resp.GetFields()["session"].GetStructValue().GetFields()["id"].GetStringValue()
	for _, product := range []string{"rose", "tulip"} {
		_, err := s.UpdateCount(florist, mustStruct(t, map[string]any{"session_id": id, "product_id": product, "actual": 12}))
		require.NoError(t, err)
	}

	resp, err = s.SaveAudit(manager, mustStruct(t, map[string]any{"id": id}))
	require.NoError(t, err)
	stats := resp.GetFields()["stats"].GetStructValue().GetFields()
	assert.True(t, stats["complete"].GetBoolValue())
	assert.Equal(t, float64(0), stats["pending"].GetNumberValue())
	assert.Equal(t, float64(1), stats["matches"].GetNumberValue())

	resp, err = s.ListAudits(florist, &structpb.Struct{})
	require.NoError(t, err)
	sessions := resp.GetFields()["sessions"].GetListValue().GetValues()
	require.Len(t, sessions, 1)
	listed := sessions[0].GetStructValue().GetFields()
	assert.Equal(t, id, listed["id"].GetStringValue())
	assert.NotEmpty(t, listed["completed_at"].GetStringValue())
}
