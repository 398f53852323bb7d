package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowerShopCRM/models"
)

func TestClassify_Scenarios(t *testing.T) {
	cases := []struct {
		name       string
		sys, act   int
		wantDiff   int
		wantStatus models.AuditStatus
	}{
		{"match", 85, 85, 0, models.AuditStatusMatch},
		{"surplus", 12, 20, 8, models.AuditStatusSurplus},
		{"deficit", 8, 3, -5, models.AuditStatusDeficit},
		{"uncounted", 45, 0, -45, models.AuditStatusPending},
		{"negative system", -3, 2, 5, models.AuditStatusSurplus},
		{"zero system counted", 0, 4, 4, models.AuditStatusSurplus},
		{"zero both", 0, 0, 0, models.AuditStatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Classify(tc.sys, tc.act)
			assert.Equal(t, tc.wantStatus, r.Status)
			assert.Equal(t, tc.wantDiff, r.Difference)
		})
	}
}

func TestClassify_Exhaustive(t *testing.T) {
	for sys := -20; sys <= 20; sys++ {
		for act := -5; act <= 40; act++ {
			r := Classify(sys, act)
			require.Equal(t, act-sys, r.Difference)
			var want models.AuditStatus
			switch {
			case act == 0:
				want = models.AuditStatusPending
			case act == sys:
				want = models.AuditStatusMatch
			case act > sys:
				want = models.AuditStatusSurplus
			default:
				want = models.AuditStatusDeficit
			}
			require.Equal(t, want, r.Status, "sys=%d act=%d", sys, act)
		}
	}
}

func sampleItems() []models.AuditItem {
	return []models.AuditItem{
		NewItem(models.Product{ID: "rose", Name: "Rose", Stock: 85}),
		NewItem(models.Product{ID: "tulip", Name: "Tulip", Stock: 12}),
		NewItem(models.Product{ID: "ribbon", Name: "Ribbon", Stock: 8}),
		NewItem(models.Product{ID: "vase", Name: "Vase", Stock: 45}),
	}
}

func TestUpdateCount_TouchesOnlyTarget(t *testing.T) {
	items := sampleItems()
	got, ok := UpdateCount(items, "tulip", 20)
	require.True(t, ok)

	assert.Equal(t, 20, got[1].ActualQuantity)
	assert.Equal(t, 8, got[1].Difference)
	assert.Equal(t, models.AuditStatusSurplus, got[1].Status)
	for _, i := range []int{0, 2, 3} {
		assert.Equal(t, items[i], got[i])
	}
	// the input slice is not modified
	assert.Equal(t, 0, items[1].ActualQuantity)
	assert.Equal(t, models.AuditStatusPending, items[1].Status)
}

func TestUpdateCount_Idempotent(t *testing.T) {
	once, _ := UpdateCount(sampleItems(), "ribbon", 3)
	twice, _ := UpdateCount(once, "ribbon", 3)
	assert.Equal(t, once, twice)
	assert.Equal(t, -5, twice[2].Difference)
	assert.Equal(t, models.AuditStatusDeficit, twice[2].Status)
}

func TestUpdateCount_BackToZeroIsPending(t *testing.T) {
	items, _ := UpdateCount(sampleItems(), "rose", 85)
	require.Equal(t, models.AuditStatusMatch, items[0].Status)
	items, _ = UpdateCount(items, "rose", 0)
	assert.Equal(t, models.AuditStatusPending, items[0].Status)
}

func TestUpdateCount_UnknownID(t *testing.T) {
	items := sampleItems()
	got, ok := UpdateCount(items, "orchid", 5)
	assert.False(t, ok)
	assert.Equal(t, items, got)
}

func TestSessionStats(t *testing.T) {
	items := sampleItems()
	assert.Equal(t, Stats{Total: 4}, SessionStats(items))
	assert.False(t, IsComplete(items))

	items, _ = UpdateCount(items, "rose", 85)
	items, _ = UpdateCount(items, "tulip", 20)
	items, _ = UpdateCount(items, "ribbon", 3)
	st := SessionStats(items)
	assert.Equal(t, Stats{Total: 4, Checked: 3, Matches: 1, Discrepancies: 2}, st)
	assert.Equal(t, 1, st.Pending())
	assert.False(t, IsComplete(items))

	items, _ = UpdateCount(items, "vase", 45)
	assert.True(t, IsComplete(items))
}

func TestSessionStats_CheckedPlusPendingIsTotal(t *testing.T) {
	items := sampleItems()
	counts := []int{0, 7, 12, 0}
	for i, q := range counts {
		items, _ = UpdateCount(items, items[i].ID, q)
	}
	st := SessionStats(items)
	pending := 0
	for _, it := range items {
		if it.Status == models.AuditStatusPending {
			pending++
		}
	}
	assert.Equal(t, st.Total, st.Checked+pending)
}

func TestCommittable_ExcludesPending(t *testing.T) {
	items := sampleItems()
	assert.Empty(t, Committable(items))
	items, _ = UpdateCount(items, "ribbon", 3)
	got := Committable(items)
	require.Len(t, got, 1)
	assert.Equal(t, "ribbon", got[0].ID)
}

func TestSanitizeCount(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"  12 ": 12,
		"-4":    0,
		"abc":   0,
		"NaN":   0,
		"+Inf":                 0,
		"-Inf":                 0,
		"7.9":                  7,
		"0":                    0,
		"1e20":                 MaxCount,
		"-1e20":                0,
		"99999999999999999999": MaxCount,
		"2147483648":           MaxCount,
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeCount(in), "input %q", in)
	}
	assert.Equal(t, 0, ClampCount(-1))
	assert.Equal(t, 3, ClampCount(3))
	assert.Equal(t, MaxCount, ClampCount(MaxCount+1))
}
