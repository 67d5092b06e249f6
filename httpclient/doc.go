// Package httpclient is the HTTP client behind the remote speech-to-text and
// chat completion backends.
//
// It resolves paths against a base URL, applies default headers and auth,
// encodes JSON and multipart bodies, and turns non-2xx responses into a
// classified *Error. Retry is opt-in and only repeats retryable failures.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Name:    "whisper",
//	    BaseURL: "https://api.openai.com/v1",
//	    Timeout: 5 * time.Minute,
//	    Auth:    httpclient.BearerAuth(apiKey),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/audio/transcriptions",
//	    Body:   &httpclient.MultipartBody{...},
//	})
//
// The rest subpackage adds typed JSON helpers on top.
package httpclient
