// Package gtaw provides a Go wrapper for the Twitter REST API with dual-mode
// request execution and two authentication modes: three-legged OAuth 1.0a for
// user-context requests and app-only OAuth2 bearer tokens.
//
// Every API call, including the credential-acquisition handshakes themselves,
// flows through a single execution engine that signs or attaches credentials,
// sends the request, and classifies failures into the structured error types
// in pkg/errors. The engine delivers outcomes in three interchangeable
// styles: blocking return, error-first callback, and future.
//
// Acquiring user credentials with the PIN (out-of-band) flow:
//
//	client, err := gtaw.NewClient(&gtaw.Config{
//		APIKey:    "your-api-key",
//		APISecret: "your-api-secret",
//		UserAgent: "myapp/1.0",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rt, err := client.RequestOAuth(ctx, "") // empty callback = PIN flow
//	fmt.Println("open:", client.AuthorizeURL(rt))
//	// ... user grants access and reads the PIN off the page ...
//	at, err := client.VerifyOAuth(ctx, pin, rt.Token) // secret cached from RequestOAuth
//	client.SetCredential(types.NewOAuth1Credential(at.Token, at.TokenSecret))
//
// App-only access instead:
//
//	app, err := client.RequestOAuth2(ctx)
//	client.SetCredential(types.NewOAuth2Credential(app.AccessToken))
//
// Once a credential is set, endpoint helpers and the generic Do/DoAsync/
// DoFuture surface are available:
//
//	tweet, err := client.GetTweet(ctx, "20")
//
//	client.GetTweetAsync(ctx, "20", func(tweet *types.Tweet, err error) { ... })
//
//	f := client.DoFuture(ctx, &gtaw.RequestSpec{
//		Method: http.MethodGet,
//		Path:   "statuses/show.json",
//		Query:  url.Values{"id": {"20"}},
//		Auth:   types.AuthOAuth2,
//	})
//	resp, err := f.Wait(ctx)
package gtaw
