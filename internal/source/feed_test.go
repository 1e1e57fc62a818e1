package source

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/redditscraper/internal/security"
)

const atomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>TestSub</title>
<entry>
  <author><name>/u/alice</name><uri>https://www.example.test/user/alice</uri></author>
  <id>t3_f1</id>
  <link href="https://www.example.test/r/TestSub/comments/f1/hello_world/"/>
  <updated>2024-05-02T08:30:00+00:00</updated>
  <title><![CDATA[Hello <b>world</b> title]]></title>
</entry>
<entry>
  <id>t3_f2</id>
  <link href="https://www.example.test/r/TestSub/comments/f2/no_author/"/>
  <title>Tom &amp; Jerry</title>
</entry>
<entry>
  <id>t3_f3</id>
  <link href="https://www.example.test/r/TestSub/comments/f3/untitled/"/>
  <title></title>
</entry>
<entry>
  <author><name>/u/dave</name></author>
  <link href="https://example.org/outside"/>
  <updated>not a date</updated>
  <title>External link</title>
</entry>
</feed>`

var scrapeTime = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestPatternFeedExtractor(t *testing.T) {
	e := NewPatternFeedExtractor(security.NewMarkupStripper())
	posts, err := e.ExtractFeed([]byte(atomFeed), 10, scrapeTime)
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "f1", posts[0].ID)
	assert.Equal(t, "Hello world title", posts[0].Title)
	assert.Equal(t, "alice", posts[0].Author)
	assert.Equal(t, "2024-05-02T08:30:00.000Z", posts[0].CreatedUTC.String())
	assert.Equal(t, "/r/TestSub/comments/f1/hello_world/", posts[0].Permalink)
	assert.Equal(t, "https://www.example.test/r/TestSub/comments/f1/hello_world/", posts[0].URL)
	assert.Equal(t, "N/A", posts[0].Flair)
	assert.Equal(t, "reddit.com", posts[0].Domain)
	assert.Zero(t, posts[0].Score)

	assert.Equal(t, "Tom & Jerry", posts[1].Title)
	assert.Equal(t, "[deleted]", posts[1].Author)
	assert.True(t, posts[1].CreatedUTC.Equal(scrapeTime))

	assert.Equal(t, "", posts[2].ID)
	assert.Equal(t, "", posts[2].Permalink)
	assert.Equal(t, "dave", posts[2].Author)
	assert.True(t, posts[2].CreatedUTC.Equal(scrapeTime))
}

func TestPatternFeedExtractor_StopsAtLimit(t *testing.T) {
	e := NewPatternFeedExtractor(security.NewMarkupStripper())
	posts, err := e.ExtractFeed([]byte(atomFeed), 1, scrapeTime)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "f1", posts[0].ID)
}

func TestGofeedExtractor(t *testing.T) {
	e := NewGofeedExtractor(security.NewMarkupStripper())
	posts, err := e.ExtractFeed([]byte(atomFeed), 10, scrapeTime)
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "f1", posts[0].ID)
	assert.Equal(t, "Hello world title", posts[0].Title)
	assert.Equal(t, "alice", posts[0].Author)
	assert.Equal(t, "2024-05-02T08:30:00.000Z", posts[0].CreatedUTC.String())
	assert.Equal(t, "Tom & Jerry", posts[1].Title)
	assert.Equal(t, "[deleted]", posts[1].Author)
}

func TestGofeedExtractor_InvalidDocument(t *testing.T) {
	e := NewGofeedExtractor(security.NewMarkupStripper())
	_, err := e.ExtractFeed([]byte("definitely not a feed"), 10, scrapeTime)
	assert.Error(t, err)
}

func TestFeedSource_ListPosts(t *testing.T) {
	f := newFakeFetcher()
	f.respond(testEndpoints.FeedURL("TestSub"), http.StatusOK, atomFeed)

	src := NewFeedSource(f, testEndpoints, NewPatternFeedExtractor(security.NewMarkupStripper()), discardLogger())
	src.now = func() time.Time { return scrapeTime }

	posts := src.ListPosts(context.Background(), "TestSub", 2)
	require.Len(t, posts, 2)
	assert.Equal(t, NameFeed, src.Name())
	assert.Equal(t, []string{"https://www.example.test/r/TestSub/.rss"}, f.requests)
	assert.Equal(t, "application/rss+xml,text/xml", f.headers[0].Get("Accept"))
}

func TestFeedSource_NonOKYieldsEmpty(t *testing.T) {
	f := newFakeFetcher()
	f.respond(testEndpoints.FeedURL("TestSub"), http.StatusForbidden, atomFeed)

	src := NewFeedSource(f, testEndpoints, NewPatternFeedExtractor(security.NewMarkupStripper()), discardLogger())
	assert.Empty(t, src.ListPosts(context.Background(), "TestSub", 5))
}
