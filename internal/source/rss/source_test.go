package rss

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/noveee/SinisterBot/internal/domain"
)

const feedWithGUIDs = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Acme Feed</title>
    <link>https://acme.example</link>
    <item>
      <guid>guid-1</guid>
      <title>Launch</title>
      <link>https://acme.example/1</link>
      <description>Big launch &lt;b&gt;day&lt;/b&gt;</description>
      <pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No Guid Item</title>
      <link>https://acme.example/2</link>
      <description>Second item</description>
      <pubDate>Tue, 02 Jan 2024 00:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

const feedWithBadDate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Odd Dates</title>
    <link>https://odd.example</link>
    <item>
      <guid>odd-1</guid>
      <title>When Was This</title>
      <link>https://odd.example/1</link>
      <pubDate>not a date at all</pubDate>
    </item>
  </channel>
</rss>`

const feedWithEnclosure = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Podcast</title>
    <link>https://pod.example</link>
    <item>
      <guid>ep-1</guid>
      <title>Episode One</title>
      <link>https://pod.example/ep1</link>
      <enclosure url="https://pod.example/ep1.mp3" length="123" type="audio/mpeg"/>
      <pubDate>Wed, 03 Jan 2024 00:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

type FetcherTestSuite struct {
	suite.Suite
	fetcher *Fetcher
}

func (s *FetcherTestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.fetcher = New(Config{Timeout: 5 * time.Second}, logger)
}

func TestFetcherTestSuite(t *testing.T) {
	suite.Run(t, new(FetcherTestSuite))
}

func (s *FetcherTestSuite) serve(body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	s.T().Cleanup(srv.Close)
	return srv
}

func (s *FetcherTestSuite) TestFetch_GUIDFallbackChain() {
	srv := s.serve(feedWithGUIDs)
	src := domain.Source{ID: 1, Name: "Acme Feed", FeedURL: srv.URL}

	entries, err := s.fetcher.Fetch(context.Background(), src)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	// An explicit guid wins regardless of the item's link or summary.
	s.Equal("guid-1", entries[0].GUID)
	// Without one, the link is the key.
	s.Equal("https://acme.example/2", entries[1].GUID)
}

func (s *FetcherTestSuite) TestFetch_GUIDStableAcrossFetches() {
	srv := s.serve(feedWithGUIDs)
	src := domain.Source{ID: 1, Name: "Acme Feed", FeedURL: srv.URL}

	first, err := s.fetcher.Fetch(context.Background(), src)
	s.Require().NoError(err)
	second, err := s.fetcher.Fetch(context.Background(), src)
	s.Require().NoError(err)

	s.Require().Len(second, len(first))
	for i := range first {
		s.Equal(first[i].GUID, second[i].GUID)
	}
}

func (s *FetcherTestSuite) TestFetch_NormalizesFields() {
	srv := s.serve(feedWithGUIDs)
	src := domain.Source{ID: 7, Name: "Acme Feed", FeedURL: srv.URL}

	entries, err := s.fetcher.Fetch(context.Background(), src)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	e := entries[0]
	s.Equal(int64(7), e.SourceID)
	s.Equal("Launch", e.Title)
	s.Equal("https://acme.example/1", e.Link)
	s.Contains(e.Summary, "Big launch")
	s.Require().NotNil(e.PublishedAt)
	s.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), e.PublishedAt.UTC())
	s.Nil(e.AudioURL)
}

func (s *FetcherTestSuite) TestFetch_MalformedDateYieldsNilPublished() {
	srv := s.serve(feedWithBadDate)
	src := domain.Source{ID: 1, Name: "Odd Dates", FeedURL: srv.URL}

	// A broken date on one item never aborts the source's batch.
	entries, err := s.fetcher.Fetch(context.Background(), src)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Nil(entries[0].PublishedAt)
	s.Equal("odd-1", entries[0].GUID)
}

func (s *FetcherTestSuite) TestFetch_EnclosureOnlyForAudioSources() {
	srv := s.serve(feedWithEnclosure)

	withAudio := domain.Source{ID: 2, Name: "Podcast", FeedURL: srv.URL, IncludeAudio: true}
	entries, err := s.fetcher.Fetch(context.Background(), withAudio)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Require().NotNil(entries[0].AudioURL)
	s.Equal("https://pod.example/ep1.mp3", *entries[0].AudioURL)

	withoutAudio := domain.Source{ID: 3, Name: "Podcast", FeedURL: srv.URL}
	entries, err = s.fetcher.Fetch(context.Background(), withoutAudio)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Nil(entries[0].AudioURL)
}

func (s *FetcherTestSuite) TestFetch_ServerErrorFailsWholeSource() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	s.T().Cleanup(srv.Close)

	src := domain.Source{ID: 1, Name: "Broken", FeedURL: srv.URL}
	entries, err := s.fetcher.Fetch(context.Background(), src)
	s.Error(err)
	s.Nil(entries)
}

func (s *FetcherTestSuite) TestFetch_UnparsableDocumentFailsWholeSource() {
	srv := s.serve("this is not xml")

	src := domain.Source{ID: 1, Name: "Garbage", FeedURL: srv.URL}
	_, err := s.fetcher.Fetch(context.Background(), src)
	s.Error(err)
}
