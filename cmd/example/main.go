package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	gtaw "github.com/jamesprial/go-twitter-api-wrapper"
	"github.com/jamesprial/go-twitter-api-wrapper/pkg/types"
)

// Demonstrates app-only authentication and the three delivery styles against
// live endpoints. Requires TWITTER_API_KEY and TWITTER_API_SECRET.
func main() {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")

	if apiKey == "" || apiSecret == "" {
		log.Fatal("TWITTER_API_KEY and TWITTER_API_SECRET environment variables are required")
	}

	// Route structured logs to stdout; adjust the level as needed.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client, err := gtaw.NewClient(&gtaw.Config{
		APIKey:    apiKey,
		APISecret: apiSecret,
		UserAgent: "gtaw-example/1.0",
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	// Obtain an app-only bearer token and install it.
	appToken, err := client.RequestOAuth2(ctx)
	if err != nil {
		log.Fatalf("Failed to obtain bearer token: %v", err)
	}
	client.SetCredential(types.NewOAuth2Credential(appToken.AccessToken))
	fmt.Println("Obtained app-only bearer token")

	// Blocking style.
	tweet, err := client.GetTweet(ctx, "20")
	if err != nil {
		log.Fatalf("Failed to fetch tweet: %v", err)
	}
	fmt.Printf("Blocking: @%s: %s\n", tweet.User.ScreenName, tweet.Text)

	// Callback style.
	done := make(chan struct{})
	client.GetTweetAsync(ctx, "20", func(tweet *types.Tweet, err error) {
		defer close(done)
		if err != nil {
			log.Printf("Async fetch failed: %v", err)
			return
		}
		fmt.Printf("Callback: @%s: %s\n", tweet.User.ScreenName, tweet.Text)
	})
	<-done

	// Future style over the generic surface.
	future := client.DoFuture(ctx, &gtaw.RequestSpec{
		Method: http.MethodGet,
		Path:   "statuses/show.json",
		Query:  url.Values{"id": {"20"}},
		Auth:   types.AuthOAuth2,
	})
	resp, err := future.Wait(ctx)
	if err != nil {
		log.Fatalf("Future fetch failed: %v", err)
	}
	fmt.Printf("Future: status %d, %d bytes\n", resp.StatusCode, len(resp.Body))
}
