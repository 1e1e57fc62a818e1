package reddit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/redditscraper/internal/model"
)

func TestNormalizePost_AppliesDefaults(t *testing.T) {
	p, ok := NormalizePost(PostData{
		ID:         "abc",
		Title:      "Hello",
		Permalink:  "/r/test/comments/abc/hello/",
		CreatedUTC: 1700000000,
	}, DefaultEndpoints())

	require.True(t, ok)
	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, model.DeletedAuthor, p.Author)
	assert.Equal(t, model.DefaultFlair, p.Flair)
	assert.Equal(t, model.DefaultDomain, p.Domain)
	assert.Equal(t, "https://www.reddit.com/r/test/comments/abc/hello/", p.URL)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", p.CreatedUTC.String())
	assert.Empty(t, p.Thumbnail)
}

func TestNormalizePost_SkipsStickiedAndAdult(t *testing.T) {
	_, ok := NormalizePost(PostData{ID: "s", Stickied: true}, DefaultEndpoints())
	assert.False(t, ok)

	_, ok = NormalizePost(PostData{ID: "n", Over18: true}, DefaultEndpoints())
	assert.False(t, ok)
}

func TestNormalizePost_RichFields(t *testing.T) {
	p, ok := NormalizePost(PostData{
		ID:                  "r",
		Thumbnail:           "https://b.thumbs.redditmedia.com/x.jpg",
		TotalAwardsReceived: 3,
		LinkFlairText:       "News",
		Domain:              "i.redd.it",
		URL:                 "https://i.redd.it/x.jpg",
	}, DefaultEndpoints())

	require.True(t, ok)
	assert.Equal(t, "https://b.thumbs.redditmedia.com/x.jpg", p.Thumbnail)
	assert.Equal(t, 3, p.Awards)
	assert.Equal(t, "News", p.Flair)
	assert.Equal(t, "i.redd.it", p.Domain)
	assert.Equal(t, "https://i.redd.it/x.jpg", p.URL)

	p, _ = NormalizePost(PostData{ID: "s", Thumbnail: "self"}, DefaultEndpoints())
	assert.Empty(t, p.Thumbnail)
}

func TestCommentListing_DecodesEmptyStringReplies(t *testing.T) {
	raw := `[
	  {"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"p1","title":"post"}}]}},
	  {"kind":"Listing","data":{"children":[
	    {"kind":"t1","data":{"id":"c1","body":"top","replies":""}},
	    {"kind":"t1","data":{"id":"c2","body":"parent","replies":{"kind":"Listing","data":{"children":[
	      {"kind":"t1","data":{"id":"c3","body":"child","replies":null}}
	    ]}}}},
	    {"kind":"more","data":{"id":"m1","count":4,"children":["x","y"]}}
	  ]}}
	]`

	var listings []CommentListing
	require.NoError(t, json.Unmarshal([]byte(raw), &listings))

	forest := CommentForest(listings)
	require.Len(t, forest, 3)
	assert.Empty(t, forest[0].Data.Replies)
	require.Len(t, forest[1].Data.Replies, 1)
	assert.Equal(t, "c3", forest[1].Data.Replies[0].Data.ID)
	assert.Equal(t, KindMore, forest[2].Kind)
}

func TestCommentForest_ShortResponse(t *testing.T) {
	assert.Nil(t, CommentForest(nil))
	assert.Nil(t, CommentForest(make([]CommentListing, 1)))
}

func TestNormalizeComment(t *testing.T) {
	c := NormalizeComment(CommentData{
		ID:          "c1",
		Body:        "text",
		Score:       7,
		CreatedUTC:  1700000000,
		ParentID:    "t3_p1",
		IsSubmitter: true,
	}, 1)

	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, model.DeletedAuthor, c.Author)
	assert.Equal(t, "text", c.Text)
	assert.Equal(t, 7, c.Score)
	assert.Equal(t, 1, c.Depth)
	assert.Equal(t, "t3_p1", c.ParentID)
	assert.True(t, c.IsSubmitter)
}

func TestIsRemovedBody(t *testing.T) {
	assert.True(t, IsRemovedBody(""))
	assert.True(t, IsRemovedBody("[deleted]"))
	assert.True(t, IsRemovedBody("[removed]"))
	assert.False(t, IsRemovedBody("[deleted] but not really"))
}
