package models

import (
	"context"
	"errors"
	"time"

	"github.com/mnuddindev/winoreat/pkg/utils"
	"gorm.io/gorm"
)

type BugType string

const (
	RestaurantNotFound   BugType = "RESTAURANT_NOT_FOUND"
	WrongRestaurantImage BugType = "WRONG_RESTAURANT_IMAGE"
	AdvertisementDoubt   BugType = "ADVERTISEMENT_DOUBT"
	NotRestaurantPlace   BugType = "NOT_RESTAURANT_PLACE"
	ServiceNotWorked     BugType = "SERVICE_NOT_WORKED"
)

var bugTypeLabels = map[BugType]string{
	RestaurantNotFound:   "식당을 찾을 수 없어요.",
	WrongRestaurantImage: "식당 이미지들이 이상해요.",
	AdvertisementDoubt:   "광고가 의심돼요.",
	NotRestaurantPlace:   "이 장소는 식당이 아니에요.",
	ServiceNotWorked:     "서비스가 정상 동작하지 않아요.",
}

func (t BugType) Valid() bool {
	_, ok := bugTypeLabels[t]
	return ok
}

func (t BugType) Label() string {
	return bugTypeLabels[t]
}

type StatusType string

const (
	Reported StatusType = "REPORTED"
	Done     StatusType = "DONE"
)

func (s StatusType) Valid() bool {
	return s == Reported || s == Done
}

func (s StatusType) Label() string {
	switch s {
	case Reported:
		return "제보 완료"
	case Done:
		return "조치 완료"
	}
	return ""
}

type Bug struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"modified"`

	Email       *string    `gorm:"size:254" json:"email,omitempty"`
	BugType     BugType    `gorm:"size:127;not null;index" json:"bug_type"`
	StatusType  StatusType `gorm:"size:127;not null;index" json:"status_type"`
	Title       string     `gorm:"size:63;not null" json:"title"`
	Description string     `gorm:"size:1023;not null" json:"description"`

	Answers []Answer `gorm:"foreignKey:BugID;constraint:OnDelete:CASCADE" json:"answers"`
}

type Answer struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"modified"`
	BugID     uint      `gorm:"not null;index" json:"bug_id"`
	Answer    string    `gorm:"size:1023;not null" json:"answer"`
}

// NewBugInput carries the reporter-supplied fields of a bug report.
type NewBugInput struct {
	BugType     BugType `json:"bug_type" validate:"required"`
	Title       string  `json:"title" validate:"required,max=63"`
	Description string  `json:"description" validate:"required,max=1023"`
	Email       *string `json:"email" validate:"omitempty,email,max=254"`
}

// BugFilter narrows ListBugs. Empty fields mean no filter.
type BugFilter struct {
	BugType    BugType
	StatusType StatusType
}

// Notifier tells a reporter that their bug got an answer.
type Notifier interface {
	SendBugAnswer(ctx context.Context, email, title, answer string) error
}

// NewBug stores a report in the REPORTED state.
func NewBug(ctx context.Context, gormDB *gorm.DB, in NewBugInput) (*Bug, error) {
	if !in.BugType.Valid() {
		return nil, utils.NewError(utils.KindBadRequest, "Select a valid choice for bug_type", string(in.BugType))
	}
	if in.Email != nil && *in.Email == "" {
		in.Email = nil
	}

	b := &Bug{
		Email:       in.Email,
		BugType:     in.BugType,
		StatusType:  Reported,
		Title:       in.Title,
		Description: in.Description,
	}
	if err := gormDB.WithContext(ctx).Create(b).Error; err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to create bug")
	}
	return b, nil
}

// ListBugs returns one page of reports, newest first, and the total count.
// page starts at 1.
func ListBugs(ctx context.Context, gormDB *gorm.DB, filter BugFilter, page, size int) ([]Bug, int64, error) {
	if filter.BugType != "" && !filter.BugType.Valid() {
		return nil, 0, utils.NewError(utils.KindBadRequest, "Select a valid choice for bug_type", string(filter.BugType))
	}
	if filter.StatusType != "" && !filter.StatusType.Valid() {
		return nil, 0, utils.NewError(utils.KindBadRequest, "Select a valid choice for status_type", string(filter.StatusType))
	}
	if page < 1 {
		return nil, 0, utils.NewError(utils.KindNotFound, "Invalid page")
	}

	q := gormDB.WithContext(ctx).Model(&Bug{})
	if filter.BugType != "" {
		q = q.Where("bug_type = ?", filter.BugType)
	}
	if filter.StatusType != "" {
		q = q.Where("status_type = ?", filter.StatusType)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.KindInternal, "Failed to count bugs")
	}
	if page > 1 && int64((page-1)*size) >= total {
		return nil, 0, utils.NewError(utils.KindNotFound, "Invalid page")
	}

	var bugs []Bug
	if err := q.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&bugs).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.KindInternal, "Failed to list bugs")
	}
	return bugs, total, nil
}

// GetBug retrieves a report with its answers, oldest answer first.
func GetBug(ctx context.Context, gormDB *gorm.DB, id uint) (*Bug, error) {
	var b Bug
	err := gormDB.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC").Order("id ASC") }).
		First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.KindNotFound, "Bug not found")
		}
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to get bug")
	}
	return &b, nil
}

// AnswerBug attaches an answer to a report. When the report left an email and
// notifier is not nil the answer is mailed too; a mail failure is returned but
// the answer stays stored. The status is left untouched, see MarkDone.
func AnswerBug(ctx context.Context, gormDB *gorm.DB, id uint, text string, notifier Notifier) (*Answer, error) {
	if text == "" {
		return nil, utils.NewError(utils.KindBadRequest, "Answer is required")
	}
	if len([]rune(text)) > 1023 {
		return nil, utils.NewError(utils.KindBadRequest, "Answer must be at most 1023 characters long")
	}

	b, err := GetBug(ctx, gormDB, id)
	if err != nil {
		return nil, err
	}

	a := &Answer{BugID: b.ID, Answer: text}
	if err := gormDB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to create answer")
	}

	if notifier != nil && b.Email != nil && *b.Email != "" {
		if err := notifier.SendBugAnswer(ctx, *b.Email, b.Title, text); err != nil {
			return a, err
		}
	}
	return a, nil
}

// MarkDone moves a report to DONE. Marking a finished report again is a no-op.
func MarkDone(ctx context.Context, gormDB *gorm.DB, id uint) (*Bug, error) {
	b, err := GetBug(ctx, gormDB, id)
	if err != nil {
		return nil, err
	}
	if b.StatusType == Done {
		return b, nil
	}

	if err := gormDB.WithContext(ctx).Model(b).Update("status_type", Done).Error; err != nil {
		return nil, utils.WrapError(err, utils.KindInternal, "Failed to update bug status")
	}
	b.StatusType = Done
	return b, nil
}
