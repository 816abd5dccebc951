package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bluesky-social/indigo/xrpc"
	"github.com/gin-gonic/gin"

	"go-reviewtrain/processor"
	"go-reviewtrain/types"
)

const (
	feedMethod = "app.bsky.feed.getFeed"
	// Popular "what's hot" style feed; the posts are just sample traffic
	// for the endpoint.
	liveFeedURI = "at://did:plc:z72i7hdynmk6r22z27h6tvur/app.bsky.feed.generator/whats-hot"
)

// LiveFeedTest pulls a page of recent Bluesky posts and scores all of
// them against the deployed endpoint.
func LiveFeedTest(c *gin.Context, p *processor.Pipeline) {
	endpointName := c.Query("endpoint")
	if endpointName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint query parameter is required"})
		return
	}

	// If mock == "t", score canned posts instead of fetching from Bluesky.
	if c.Query("mock") == "t" {
		feed := types.FeedResponse{
			Feed: []types.FeedEntry{
				{Post: types.Post{
					URI:    "mock://1",
					Author: types.Author{DisplayName: "Mock Tester", Handle: "mock.test"},
					Record: types.Record{Text: "I don't like this product!"},
				}},
				{Post: types.Post{
					URI:    "mock://2",
					Author: types.Author{DisplayName: "Mock Tester", Handle: "mock.test"},
					Record: types.Record{Text: "Absolutely love it, perfect fit."},
				}},
			},
		}
		c.JSON(http.StatusOK, gin.H{"results": p.ScoreFeed(c.Request.Context(), endpointName, feed)})
		return
	}

	client := &xrpc.Client{
		Client:    &http.Client{Timeout: 10 * time.Second},
		Host:      "https://public.api.bsky.app",
		UserAgent: nil,
	}

	cursor := c.Query("cursor")
	if cursor != "" {
		cursor = strings.ReplaceAll(cursor, " ", "+")
	}

	params := map[string]interface{}{
		"feed":   liveFeedURI,
		"limit":  10,
		"cursor": cursor,
	}

	var out types.FeedResponse
	if err := client.Do(context.Background(), xrpc.Query, "json", feedMethod, params, nil, &out); err != nil {
		log.Printf("Error fetching feed via xrpc: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(out.Feed) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No feed items returned"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cursor":  out.Cursor,
		"results": p.ScoreFeed(c.Request.Context(), endpointName, out),
	})
}
