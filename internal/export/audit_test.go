package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"flowerShopCRM/internal/display"
	"flowerShopCRM/internal/reconcile"
	"flowerShopCRM/models"
)

func TestAuditXLSX(t *testing.T) {
	items := []models.AuditItem{
		reconcile.NewItem(models.Product{ID: "rose", Name: "Rose", Unit: "pcs", Stock: 12}),
		reconcile.NewItem(models.Product{ID: "vase", Name: "Vase", Stock: 45}),
	}
	items, _ = reconcile.UpdateCount(items, "rose", 20)
	s := &models.AuditSession{ID: "s", Items: items}

	var buf bytes.Buffer
	require.NoError(t, AuditXLSX(&buf, s, display.Default()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue(Sheet, ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Product", cell("A1"))
	assert.Equal(t, "Rose", cell("A2"))
	assert.Equal(t, "20", cell("D2"))
	assert.Equal(t, "+8", cell("E2"))
	assert.Equal(t, "Surplus", cell("F2"))
	assert.Equal(t, "", cell("D3"))
	assert.Equal(t, "Not counted", cell("F3"))
	assert.Equal(t, "Checked", cell("A6"))
	assert.Equal(t, "1", cell("B6"))
}

func TestAuditXLSX_NilSession(t *testing.T) {
	assert.Error(t, AuditXLSX(&bytes.Buffer{}, nil, nil))
}
