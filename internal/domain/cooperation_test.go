package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// allStatuses 枚举全集，用于穷举转换表
var allStatuses = []Status{
	StatusPendingApplication, StatusInfluencerApplied, StatusInfluencerDislike,
	StatusInvited, StatusInfluencerAccepted, StatusInfluencerRejected,
	StatusBrandAccepted, StatusBrandRejected,
	StatusDraftUploaded, StatusVideoApproved, StatusVideoUploaded, StatusSettled,
}

func TestStatus_IsValid(t *testing.T) {
	for _, status := range allStatuses {
		assert.True(t, status.IsValid(), "status %q should be valid", status)
	}
	assert.False(t, Status("").IsValid())
	assert.False(t, Status("unknown").IsValid())
}

func TestCanTransition_Exhaustive(t *testing.T) {
	// 合法边的全集；(draft_uploaded, draft_uploaded) 是唯一的同态例外
	legal := map[Status][]Status{
		StatusPendingApplication: {StatusInfluencerApplied, StatusInfluencerDislike},
		StatusInvited:            {StatusInfluencerAccepted, StatusInfluencerRejected},
		StatusBrandAccepted:      {StatusDraftUploaded},
		StatusInfluencerAccepted: {StatusDraftUploaded},
		StatusDraftUploaded:      {StatusVideoApproved, StatusDraftUploaded},
		StatusVideoApproved:      {StatusVideoUploaded},
		StatusVideoUploaded:      {StatusSettled},
	}

	isLegal := func(from, to Status) bool {
		for _, next := range legal[from] {
			if next == to {
				return true
			}
		}
		return false
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			assert.Equal(t, isLegal(from, to), CanTransition(from, to),
				"CanTransition(%q, %q)", from, to)
		}
	}
}

func TestCanTransition_TerminalStates(t *testing.T) {
	terminals := []Status{
		StatusInfluencerDislike, StatusInfluencerRejected,
		StatusBrandRejected, StatusSettled,
	}
	for _, terminal := range terminals {
		for _, to := range allStatuses {
			assert.False(t, CanTransition(terminal, to),
				"terminal status %q should have no outgoing transitions", terminal)
		}
	}
}

func TestCategorize(t *testing.T) {
	t.Run("五个分类互不相交且覆盖预期状态", func(t *testing.T) {
		var input []Cooperation
		for i, status := range allStatuses {
			input = append(input, Cooperation{ID: uint64(i + 1), Status: status})
		}

		out := Categorize(input)

		total := len(out.Application) + len(out.Confirmation) +
			len(out.Draft) + len(out.Video) + len(out.Settlement)
		// 四个 terminal/品牌侧状态不落入任何分类:
		// influencer_applied, influencer_dislike, influencer_rejected, brand_rejected
		assert.Equal(t, len(input)-4, total)

		seen := map[uint64]int{}
		for _, bucket := range [][]Cooperation{
			out.Application, out.Confirmation, out.Draft, out.Video, out.Settlement,
		} {
			for _, coop := range bucket {
				seen[coop.ID]++
			}
		}
		for id, count := range seen {
			assert.Equal(t, 1, count, "record %d appears in multiple buckets", id)
		}
	})

	t.Run("分类内保持输入顺序", func(t *testing.T) {
		input := []Cooperation{
			{ID: 30, Status: StatusDraftUploaded},
			{ID: 20, Status: StatusBrandAccepted},
			{ID: 10, Status: StatusInfluencerAccepted},
		}

		out := Categorize(input)
		assert.Equal(t, []uint64{30, 20, 10}, []uint64{
			out.Draft[0].ID, out.Draft[1].ID, out.Draft[2].ID,
		})
	})

	t.Run("空输入返回空分类", func(t *testing.T) {
		out := Categorize(nil)
		assert.Empty(t, out.Application)
		assert.Empty(t, out.Confirmation)
		assert.Empty(t, out.Draft)
		assert.Empty(t, out.Video)
		assert.Empty(t, out.Settlement)
	})
}
