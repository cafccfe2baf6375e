package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyUpdate_NonEmptyFieldsOnly(t *testing.T) {
	p := &Profile{
		Username:      "Old Name",
		Bio:           "old bio",
		FollowerCount: "10",
		ShareLink:     "https://www.tiktok.com/@old",
	}

	p.ApplyUpdate(&ProfileUpdate{
		Username:      "",
		Bio:           "",
		FollowerCount: "20K",
		Verified:      true,
	})

	assert.Equal(t, "Old Name", p.Username, "empty payload field must not overwrite")
	assert.Equal(t, "old bio", p.Bio)
	assert.Equal(t, "20K", p.FollowerCount, "non-empty payload field must replace")
	assert.True(t, p.Verified, "verified is always taken from the payload")
}

func TestApplyUpdate_ProfileLinkFillsEmptyShareLink(t *testing.T) {
	p := &Profile{}
	p.ApplyUpdate(&ProfileUpdate{ProfileLink: "https://www.tiktok.com/@quynhanh"})
	assert.Equal(t, "https://www.tiktok.com/@quynhanh", p.ShareLink)

	// An existing share link is never replaced by the deep link.
	p.ApplyUpdate(&ProfileUpdate{ProfileLink: "https://www.tiktok.com/@other"})
	assert.Equal(t, "https://www.tiktok.com/@quynhanh", p.ShareLink)
}

func TestApplyUpdate_ReplacesVideoLists(t *testing.T) {
	p := &Profile{
		VideoLinks:   StringList{"a", "b"},
		PinnedVideos: StringList{"a"},
	}

	p.ApplyUpdate(&ProfileUpdate{VideoLinks: []string{"b", "c"}})

	assert.Equal(t, StringList{"b", "c"}, p.VideoLinks)
	// The pin on "a" no longer references a known link and is dropped.
	assert.Empty(t, p.PinnedVideos)
}

func TestApplyUpdate_NilPayloadIsNoop(t *testing.T) {
	p := &Profile{Username: "keep"}
	p.ApplyUpdate(nil)
	assert.Equal(t, "keep", p.Username)
}

func TestTogglePin(t *testing.T) {
	p := &Profile{VideoLinks: StringList{"v1", "v2", "v3", "v4"}}

	require.True(t, p.TogglePin("v1"))
	require.True(t, p.TogglePin("v2"))
	require.True(t, p.TogglePin("v3"))
	assert.Len(t, p.PinnedVideos, 3)

	// Fourth pin exceeds the cap and is refused.
	assert.False(t, p.TogglePin("v4"))
	assert.Len(t, p.PinnedVideos, 3)

	// Unpin always works, freeing a slot.
	assert.True(t, p.TogglePin("v2"))
	assert.True(t, p.TogglePin("v4"))
	assert.Equal(t, StringList{"v1", "v3", "v4"}, p.PinnedVideos)
}

func TestTogglePin_UnknownLink(t *testing.T) {
	p := &Profile{VideoLinks: StringList{"v1"}}
	assert.False(t, p.TogglePin("not-in-list"))
	assert.Empty(t, p.PinnedVideos)
}

func TestRemoveVideoLink_DropsPin(t *testing.T) {
	p := &Profile{
		VideoLinks:   StringList{"v1", "v2"},
		PinnedVideos: StringList{"v2"},
	}

	p.RemoveVideoLink("v2")

	assert.Equal(t, StringList{"v1"}, p.VideoLinks)
	assert.Empty(t, p.PinnedVideos)
}

func TestNormalize(t *testing.T) {
	p := &Profile{
		VideoLinks:   StringList{"v1", "v2", "v3", "v4"},
		PinnedVideos: StringList{"ghost", "v1", "v2", "v3", "v4"},
	}

	p.Normalize()

	// Ghost pin dropped, then truncated to the cap.
	assert.Equal(t, StringList{"v1", "v2", "v3"}, p.PinnedVideos)
}

func TestNormalize_NilListsBecomeEmpty(t *testing.T) {
	p := &Profile{}
	p.Normalize()

	assert.NotNil(t, p.VideoLinks)
	assert.NotNil(t, p.CustomLinks)
	assert.NotNil(t, p.Videos)
}

func TestStringListRoundTrip(t *testing.T) {
	l := StringList{"a", "b"}
	v, err := l.Value()
	require.NoError(t, err)

	var out StringList
	require.NoError(t, out.Scan(v))
	assert.Equal(t, l, out)

	var fromNil StringList
	require.NoError(t, fromNil.Scan(nil))
	assert.Equal(t, StringList{}, fromNil)
}

func TestProfileJSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(DefaultProfile())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	// The admin panel and public page read these camelCase keys.
	for _, key := range []string{"uniqueId", "videoLinks", "pinnedVideos", "followerCount", "viewCount"} {
		assert.Contains(t, m, key)
	}
}

func TestValidate_FieldLimits(t *testing.T) {
	p := DefaultProfile()
	require.NoError(t, p.Validate())

	p.FollowerCount = "this string is way beyond twenty characters"
	assert.Error(t, p.Validate())
}
