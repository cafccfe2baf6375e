package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// MaxPinnedVideos is the cap TikTok itself uses for pinned clips.
const MaxPinnedVideos = 3

// StringList is a []string stored as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("unsupported column type %T for StringList", value)
}

// CustomLink is a label + URL pair shown below the profile header.
type CustomLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// CustomLinkList is a []CustomLink stored as a JSON text column.
type CustomLinkList []CustomLink

func (l CustomLinkList) Value() (driver.Value, error) {
	if l == nil {
		l = CustomLinkList{}
	}
	return json.Marshal(l)
}

func (l *CustomLinkList) Scan(value interface{}) error {
	if value == nil {
		*l = CustomLinkList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("unsupported column type %T for CustomLinkList", value)
}

// ProfileVideo is the raw upstream video object kept for display metadata
// (thumbnail, view count). Not authoritative; the videoLinks list is.
type ProfileVideo struct {
	ID               string `json:"id"`
	CreateTime       int64  `json:"create_time"`
	CoverImageURL    string `json:"cover_image_url"`
	ShareURL         string `json:"share_url"`
	VideoDescription string `json:"video_description"`
	Duration         int    `json:"duration"`
	Title            string `json:"title"`
	ViewCount        int64  `json:"view_count"`
	LikeCount        int64  `json:"like_count"`
}

// ProfileVideoList is a []ProfileVideo stored as a JSON text column.
type ProfileVideoList []ProfileVideo

func (l ProfileVideoList) Value() (driver.Value, error) {
	if l == nil {
		l = ProfileVideoList{}
	}
	return json.Marshal(l)
}

func (l *ProfileVideoList) Scan(value interface{}) error {
	if value == nil {
		*l = ProfileVideoList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("unsupported column type %T for ProfileVideoList", value)
}

// Profile is the single canonical profile record shown on the public page.
// There is at most one row; it is created on the first admin save and updated
// in place afterwards.
type Profile struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	UniqueID       string           `gorm:"type:varchar(100)" json:"uniqueId" validate:"max=100"`
	Username       string           `gorm:"type:varchar(150)" json:"username" validate:"max=150"`
	Bio            string           `gorm:"type:text" json:"bio" validate:"max=1000"`
	BioLink        string           `gorm:"type:varchar(255)" json:"bioLink" validate:"max=255"`
	AvatarURL      string           `gorm:"type:varchar(500)" json:"avatarUrl" validate:"max=500"`
	AvatarURL100   string           `gorm:"type:varchar(500)" json:"avatarUrl100" validate:"max=500"`
	Verified       bool             `gorm:"default:false" json:"verified"`
	FollowerCount  string           `gorm:"type:varchar(20)" json:"followerCount" validate:"max=20"`
	FollowingCount string           `gorm:"type:varchar(20)" json:"followingCount" validate:"max=20"`
	HeartCount     string           `gorm:"type:varchar(20)" json:"heartCount" validate:"max=20"`
	VideoLinks     StringList       `gorm:"type:longtext" json:"videoLinks"`
	PinnedVideos   StringList       `gorm:"type:longtext" json:"pinnedVideos"`
	CustomLinks    CustomLinkList   `gorm:"type:longtext" json:"customLinks"`
	FollowLink     string           `gorm:"type:varchar(255)" json:"followLink" validate:"max=255"`
	MessageLink    string           `gorm:"type:varchar(255)" json:"messageLink" validate:"max=255"`
	AddFriendLink  string           `gorm:"type:varchar(255)" json:"addFriendLink" validate:"max=255"`
	ShareLink      string           `gorm:"type:varchar(255)" json:"shareLink" validate:"max=255"`
	Videos         ProfileVideoList `gorm:"type:longtext" json:"videos"`
	ViewCount      int64            `gorm:"default:0" json:"viewCount"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProfileUpdate is the flat payload produced by the TikTok aggregation. Empty
// fields mean "nothing fetched" and never overwrite existing profile values.
type ProfileUpdate struct {
	UniqueID       string           `json:"uniqueId,omitempty"`
	Username       string           `json:"username"`
	Bio            string           `json:"bio"`
	AvatarURL      string           `json:"avatarUrl,omitempty"`
	AvatarURL100   string           `json:"avatarUrl100,omitempty"`
	Verified       bool             `json:"verified"`
	FollowerCount  string           `json:"followerCount"`
	FollowingCount string           `json:"followingCount"`
	HeartCount     string           `json:"heartCount"`
	ProfileLink    string           `json:"profileLink,omitempty"`
	VideoLinks     []string         `json:"videoLinks"`
	Videos         ProfileVideoList `json:"videos,omitempty"`
}

func (p *Profile) Validate() error {
	v := validator.New()
	return v.Struct(p)
}

// DefaultProfile returns the zero-value payload the public API serves before
// the first admin save creates a row.
func DefaultProfile() *Profile {
	return &Profile{
		FollowerCount:  "0",
		FollowingCount: "0",
		HeartCount:     "0",
		VideoLinks:     StringList{},
		PinnedVideos:   StringList{},
		CustomLinks:    CustomLinkList{},
		Videos:         ProfileVideoList{},
	}
}

// FirstProfile loads the canonical row. Returns gorm.ErrRecordNotFound before
// the first save.
func FirstProfile(db *gorm.DB) (*Profile, error) {
	var profile Profile
	err := db.First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ApplyUpdate merges an aggregation payload into the profile. A field is
// replaced only when the payload carries a non-empty value; prior values are
// retained otherwise.
func (p *Profile) ApplyUpdate(u *ProfileUpdate) {
	if u == nil {
		return
	}
	if u.UniqueID != "" {
		p.UniqueID = u.UniqueID
	}
	if u.Username != "" {
		p.Username = u.Username
	}
	if u.Bio != "" {
		p.Bio = u.Bio
	}
	if u.AvatarURL != "" {
		p.AvatarURL = u.AvatarURL
	}
	if u.AvatarURL100 != "" {
		p.AvatarURL100 = u.AvatarURL100
	}
	if u.FollowerCount != "" {
		p.FollowerCount = u.FollowerCount
	}
	if u.FollowingCount != "" {
		p.FollowingCount = u.FollowingCount
	}
	if u.HeartCount != "" {
		p.HeartCount = u.HeartCount
	}
	if u.ProfileLink != "" && p.ShareLink == "" {
		p.ShareLink = u.ProfileLink
	}
	if len(u.VideoLinks) > 0 {
		p.VideoLinks = append(StringList{}, u.VideoLinks...)
	}
	if len(u.Videos) > 0 {
		p.Videos = append(ProfileVideoList{}, u.Videos...)
	}
	// Verified comes straight from user-info; the payload only exists when
	// that call succeeded.
	p.Verified = u.Verified

	p.Normalize()
}

// AddVideoLink appends a video share URL to the list. Blank links are ignored.
func (p *Profile) AddVideoLink(link string) {
	if link == "" {
		return
	}
	p.VideoLinks = append(p.VideoLinks, link)
}

// RemoveVideoLink removes a video share URL. A pin pointing at the removed
// link is dropped with it.
func (p *Profile) RemoveVideoLink(link string) {
	links := p.VideoLinks[:0]
	for _, l := range p.VideoLinks {
		if l != link {
			links = append(links, l)
		}
	}
	p.VideoLinks = links

	pins := p.PinnedVideos[:0]
	for _, pin := range p.PinnedVideos {
		if pin != link {
			pins = append(pins, pin)
		}
	}
	p.PinnedVideos = pins
}

// TogglePin pins or unpins a video link. Pinning a link that is not in the
// video list, or pinning beyond the cap, is a no-op. Reports whether the pin
// set changed.
func (p *Profile) TogglePin(link string) bool {
	for i, pin := range p.PinnedVideos {
		if pin == link {
			p.PinnedVideos = append(p.PinnedVideos[:i], p.PinnedVideos[i+1:]...)
			return true
		}
	}
	if len(p.PinnedVideos) >= MaxPinnedVideos {
		return false
	}
	for _, l := range p.VideoLinks {
		if l == link {
			p.PinnedVideos = append(p.PinnedVideos, link)
			return true
		}
	}
	return false
}

// Normalize restores the pin invariants: pins must reference an existing
// video link, and there are never more than MaxPinnedVideos of them.
// Violations are dropped silently.
func (p *Profile) Normalize() {
	known := make(map[string]struct{}, len(p.VideoLinks))
	for _, l := range p.VideoLinks {
		known[l] = struct{}{}
	}

	pins := p.PinnedVideos[:0]
	for _, pin := range p.PinnedVideos {
		if _, ok := known[pin]; ok {
			pins = append(pins, pin)
		}
	}
	if len(pins) > MaxPinnedVideos {
		pins = pins[:MaxPinnedVideos]
	}
	p.PinnedVideos = pins

	if p.VideoLinks == nil {
		p.VideoLinks = StringList{}
	}
	if p.CustomLinks == nil {
		p.CustomLinks = CustomLinkList{}
	}
	if p.Videos == nil {
		p.Videos = ProfileVideoList{}
	}
}

// IsPinned reports whether a video link is currently pinned.
func (p *Profile) IsPinned(link string) bool {
	for _, pin := range p.PinnedVideos {
		if pin == link {
			return true
		}
	}
	return false
}
