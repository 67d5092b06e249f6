// Package rest adds typed JSON helpers on top of httpclient.
//
//	client, err := rest.New(httpclient.Config{
//	    BaseURL: "https://api.openai.com/v1",
//	    Auth:    httpclient.BearerAuth(apiKey),
//	})
//	resp, err := rest.Post[chatResponse](ctx, client, "/chat/completions", body)
package rest
