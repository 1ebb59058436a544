// Command authorize walks the three-legged OAuth1 PIN flow on the terminal
// and prints the resulting access token pair. The tokens are not persisted;
// capture them and reuse them via SetCredential in your application.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	gtaw "github.com/jamesprial/go-twitter-api-wrapper"
	"github.com/jamesprial/go-twitter-api-wrapper/pkg/types"
)

func main() {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")

	if apiKey == "" || apiSecret == "" {
		log.Fatal("TWITTER_API_KEY and TWITTER_API_SECRET environment variables are required")
	}

	var logger *slog.Logger
	if os.Getenv("DEBUG") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	client, err := gtaw.NewClient(&gtaw.Config{
		APIKey:    apiKey,
		APISecret: apiSecret,
		UserAgent: "gtaw-authorize/1.0",
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	// Leg one: obtain a request token. Empty callback selects the PIN flow.
	requestToken, err := client.RequestOAuth(ctx, "")
	if err != nil {
		log.Fatalf("Failed to obtain request token: %v", err)
	}

	fmt.Println("Open this URL in your browser and authorize the application:")
	fmt.Println()
	fmt.Println("  " + client.AuthorizeURL(requestToken))
	fmt.Println()
	fmt.Print("Enter the PIN shown after authorizing: ")

	reader := bufio.NewReader(os.Stdin)
	pin, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("Failed to read PIN: %v", err)
	}
	pin = strings.TrimSpace(pin)

	// Leg three: exchange the PIN for an access token. The request-token
	// secret was cached by RequestOAuth, so it is omitted here.
	accessToken, err := client.VerifyOAuth(ctx, pin, requestToken.Token)
	if err != nil {
		log.Fatalf("Failed to exchange PIN for access token: %v", err)
	}

	fmt.Println()
	fmt.Println("Authorized as @" + accessToken.ScreenName)
	fmt.Println("  oauth_token:        " + accessToken.Token)
	fmt.Println("  oauth_token_secret: " + accessToken.TokenSecret)

	// Smoke-test the credential before handing it to the user.
	client.SetCredential(types.NewOAuth1Credential(accessToken.Token, accessToken.TokenSecret))
	user, err := client.VerifyCredentials(ctx)
	if err != nil {
		log.Fatalf("Token verification failed: %v", err)
	}
	fmt.Printf("Verified credentials for %s (%d followers)\n", user.ScreenName, user.FollowersCount)
}
