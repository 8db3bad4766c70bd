// Package http provides a small HTTP client built around a fluent request
// builder and a normalized response.
//
// A Request accumulates a method, URL, headers, query fragments and payload.
// Send hands it to a Transport and reports the outcome to a callback:
//
//	http.Get("https://api.example.com/users").
//	    Accept("application/json").
//	    Query(map[string]any{"limit": 10}).
//	    Send(func(err error, res *http.Response) {
//	        if err != nil {
//	            // transport-level failure: *CrossDomainError, *ParseError, ...
//	            return
//	        }
//	        if res.Error != nil {
//	            // 4xx or 5xx: res.Error is a *StatusError
//	        }
//	        fmt.Println(res.Status, res.Data)
//	    })
//
// Payloads are encoded as JSON when Content-Type is application/json and as
// a query string otherwise:
//
//	res, err := http.Post("https://api.example.com/users").
//	    Type("application/json").
//	    DataMap(map[string]any{"name": "John"}).
//	    Do()
//
// Response bodies are decoded by their Content-Type: JSON into Go values,
// application/x-www-form-urlencoded into a map[string]string, anything else
// left as text. A response without Content-Type is treated as JSON.
//
// Transport-level failures and HTTP error statuses are reported differently:
// the former through the callback's error argument, the latter through
// Response.Error with a nil callback error.
//
// Thread Safety:
//
// Client is safe for concurrent use. A Request must be configured from one
// goroutine; its callback runs on the transport's goroutine.
package http
