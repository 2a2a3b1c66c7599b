package domain

import "time"

// Status 合作状态（封闭枚举）
type Status string

const (
	StatusPendingApplication Status = "pending_application" // 待申请
	StatusInfluencerApplied  Status = "influencer_applied"  // 红人已申请
	StatusInfluencerDislike  Status = "influencer_dislike"  // 红人不感兴趣
	StatusInvited            Status = "invited"             // 品牌方已邀请
	StatusInfluencerAccepted Status = "influencer_accepted" // 红人已接受
	StatusInfluencerRejected Status = "influencer_rejected" // 红人已拒绝
	StatusBrandAccepted      Status = "brand_accepted"      // 品牌方已通过申请
	StatusBrandRejected      Status = "brand_rejected"      // 品牌方已拒绝申请
	StatusDraftUploaded      Status = "draft_uploaded"      // 草稿已回传
	StatusVideoApproved      Status = "video_approved"      // 草稿已审核通过
	StatusVideoUploaded      Status = "video_uploaded"      // 发布视频已回传
	StatusSettled            Status = "settled"             // 已结算
)

// statusTransitions 红人侧合法的状态转换表。
// 未出现在表中的状态（terminal 状态以及品牌方专属状态）没有出边。
var statusTransitions = map[Status][]Status{
	StatusPendingApplication: {StatusInfluencerApplied, StatusInfluencerDislike},
	StatusInvited:            {StatusInfluencerAccepted, StatusInfluencerRejected},
	StatusBrandAccepted:      {StatusDraftUploaded},
	StatusInfluencerAccepted: {StatusDraftUploaded},
	StatusDraftUploaded:      {StatusVideoApproved},
	StatusVideoApproved:      {StatusVideoUploaded},
	StatusVideoUploaded:      {StatusSettled},
}

// IsValid 判断状态是否为枚举成员
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingApplication, StatusInfluencerApplied, StatusInfluencerDislike,
		StatusInvited, StatusInfluencerAccepted, StatusInfluencerRejected,
		StatusBrandAccepted, StatusBrandRejected,
		StatusDraftUploaded, StatusVideoApproved, StatusVideoUploaded, StatusSettled:
		return true
	}
	return false
}

// CanTransition 判断 from -> to 是否合法。
// 唯一的同态例外：draft_uploaded -> draft_uploaded（用于更新草稿链接），
// 其它同态转换一律非法。
func CanTransition(from, to Status) bool {
	if from == StatusDraftUploaded && to == StatusDraftUploaded {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cooperation 表示一条品牌-红人合作记录。
// 只读的描述性字段（品牌、产品、费用等）由品牌侧工具写入，核心流程只改
// status 与链接/反馈字段。
type Cooperation struct {
	ID             uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	SupabaseUserID string     `json:"supabaseUserId" gorm:"type:varchar(36);index;not null"` // 归属红人（外部身份ID）
	BrandName      string     `json:"brandName" gorm:"type:varchar(255)"`
	ProductName    string     `json:"productName" gorm:"type:varchar(255)"`
	SellingPoints  string     `json:"sellingPoints" gorm:"type:text"`
	Fee            float64    `json:"fee"`
	Commission     float64    `json:"commission"`
	Status         Status     `json:"status" gorm:"type:varchar(32);index;not null"`
	DraftLink      *string    `json:"draftLink,omitempty" gorm:"type:varchar(1024)"`
	VideoLink      *string    `json:"videoLink,omitempty" gorm:"type:varchar(1024)"`
	SparkCode      *string    `json:"sparkCode,omitempty" gorm:"type:varchar(255)"`
	BrandFeedback  *string    `json:"brandFeedback,omitempty" gorm:"type:text"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// TableName 与历史库表名保持一致
func (Cooperation) TableName() string {
	return "t_red_cooperation"
}

// CategorizedCooperations 仪表盘五个工作区分类。
// 被拒绝/不感兴趣等 terminal 状态不落入任何分类（刻意行为）。
type CategorizedCooperations struct {
	Application  []Cooperation `json:"application"`  // 申请合作: pending_application
	Confirmation []Cooperation `json:"confirmation"` // 确认合作: invited
	Draft        []Cooperation `json:"draft"`        // 回传草稿: brand_accepted / influencer_accepted / draft_uploaded
	Video        []Cooperation `json:"video"`        // 回传发布视频: video_approved
	Settlement   []Cooperation `json:"settlement"`   // 品牌方结算: video_uploaded / settled
}

// Categorize 按状态将合作记录投影到五个分类。
// 分类互不相交，单条记录至多出现在一个分类中，分类内保持输入顺序。
func Categorize(cooperations []Cooperation) CategorizedCooperations {
	out := CategorizedCooperations{
		Application:  []Cooperation{},
		Confirmation: []Cooperation{},
		Draft:        []Cooperation{},
		Video:        []Cooperation{},
		Settlement:   []Cooperation{},
	}

	for _, coop := range cooperations {
		switch coop.Status {
		case StatusPendingApplication:
			out.Application = append(out.Application, coop)
		case StatusInvited:
			out.Confirmation = append(out.Confirmation, coop)
		case StatusBrandAccepted, StatusInfluencerAccepted, StatusDraftUploaded:
			out.Draft = append(out.Draft, coop)
		case StatusVideoApproved:
			out.Video = append(out.Video, coop)
		case StatusVideoUploaded, StatusSettled:
			out.Settlement = append(out.Settlement, coop)
		}
	}

	return out
}
