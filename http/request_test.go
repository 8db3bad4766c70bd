package http_test

import (
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jaxhttp "github.com/wesleyorama2/jax/http"
	"github.com/wesleyorama2/jax/http/jaxtest"
)

func newStubClient(reply jaxtest.Reply) (*jaxhttp.Client, *jaxtest.Recorder) {
	rec := jaxtest.NewRecorder(reply)
	return jaxhttp.NewClient(jaxhttp.WithTransport(rec.Acquire)), rec
}

func okJSON(body string) jaxtest.Reply {
	return jaxtest.Reply{
		Status: 200,
		Header: jaxtest.HeaderBlock("Content-Type", "application/json"),
		Body:   body,
	}
}

func TestRequest_Headers(t *testing.T) {
	req := jaxhttp.Get("data.json").
		Header("a", "b").
		Headers(map[string]string{"c": "d"})

	assert.Equal(t, []jaxhttp.HeaderField{
		{Key: "a", Value: "b"},
		{Key: "c", Value: "d"},
	}, req.HeaderSet())
}

func TestRequest_HeaderLastWriteWinsKeepsPosition(t *testing.T) {
	req := jaxhttp.Get("data.json").
		Header("X-One", "1").
		Header("X-Two", "2").
		Header("X-One", "3")

	assert.Equal(t, []jaxhttp.HeaderField{
		{Key: "X-One", Value: "3"},
		{Key: "X-Two", Value: "2"},
	}, req.HeaderSet())
}

func TestRequest_HeaderKeysAreCaseSensitive(t *testing.T) {
	req := jaxhttp.Get("data.json").
		Header("x-token", "lower").
		Header("X-Token", "upper")

	assert.Equal(t, "lower", req.HeaderValue("x-token"))
	assert.Equal(t, "upper", req.HeaderValue("X-Token"))
	assert.Len(t, req.HeaderSet(), 2)
}

func TestRequest_EmptyHeaderKeyIgnored(t *testing.T) {
	req := jaxhttp.Get("data.json").Header("", "x").Headers(nil)
	assert.Empty(t, req.HeaderSet())
}

func TestRequest_HeaderSetters(t *testing.T) {
	tests := []struct {
		name  string
		build func(*jaxhttp.Request) *jaxhttp.Request
		key   string
		want  string
	}{
		{
			name:  "Type",
			build: func(r *jaxhttp.Request) *jaxhttp.Request { return r.Type("application/json") },
			key:   "Content-Type",
			want:  "application/json",
		},
		{
			name:  "Type ignores empty",
			build: func(r *jaxhttp.Request) *jaxhttp.Request { return r.Type("") },
			key:   "Content-Type",
			want:  "",
		},
		{
			name:  "Accept",
			build: func(r *jaxhttp.Request) *jaxhttp.Request { return r.Accept("text/html") },
			key:   "Accept",
			want:  "text/html",
		},
		{
			name:  "Auth",
			build: func(r *jaxhttp.Request) *jaxhttp.Request { return r.Auth("user", "pass") },
			key:   "Authorization",
			want:  "Basic dXNlcjpwYXNz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.build(jaxhttp.Get("data.json"))
			assert.Equal(t, tt.want, req.HeaderValue(tt.key))
		})
	}
}

func TestRequest_NoCache(t *testing.T) {
	req := jaxhttp.Get("data.json").NoCache()

	assert.Equal(t, "no-cache", req.HeaderValue("Cache-Control"))
	assert.Equal(t, "-1", req.HeaderValue("Expires"))
	assert.Equal(t, "XMLHttpRequest", req.HeaderValue("X-Requested-With"))
}

func TestRequest_CORSIsFlagOnly(t *testing.T) {
	req := jaxhttp.Get("data.json").CORS()

	assert.True(t, req.CORSEnabled())
	assert.Empty(t, req.HeaderSet())
}

func TestRequest_Query(t *testing.T) {
	type page struct {
		Page int `url:"page"`
	}

	req := jaxhttp.Get("data.json").
		Query("x=1").
		Query(map[string]any{"y": 2}).
		Query(page{Page: 3}).
		Query(nil).
		Query("").
		Query(map[string]string{})

	assert.Equal(t, []string{"x=1", "y=2", "page=3"}, req.Queries())
}

func TestRequest_QuerySkipsZeroScalars(t *testing.T) {
	client, rec := newStubClient(okJSON(""))

	_, err := client.Get("http://x/y").
		Query(0).
		Query(false).
		Query(0.0).
		Query(7).
		Query(true).
		Do()
	require.NoError(t, err)

	assert.Equal(t, "http://x/y?7&true", rec.Last().URL())
}

func TestRequest_Data(t *testing.T) {
	req := jaxhttp.Post("data.json").
		Data("a", "b").
		DataMap(map[string]any{"c": "d"})

	assert.Equal(t, map[string]any{"a": "b", "c": "d"}, req.Payload())
}

func TestRequest_DataMapCopiesInput(t *testing.T) {
	fields := map[string]any{"foo": "bar"}
	req := jaxhttp.Post("data.json").DataMap(fields)
	fields["foo"] = "changed"

	assert.Equal(t, map[string]any{"foo": "bar"}, req.Payload())
}

func TestRequest_FinalURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		queries []any
		want    string
	}{
		{"no queries", "http://api/users", nil, "http://api/users"},
		{"fresh query", "http://api/users", []any{"x=1", map[string]any{"y": 2}}, "http://api/users?x=1&y=2"},
		{"existing query", "http://api/users?a=0", []any{"x=1"}, "http://api/users?a=0&x=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, rec := newStubClient(okJSON(""))
			req := client.Get(tt.url)
			for _, q := range tt.queries {
				req.Query(q)
			}

			_, err := req.Do()
			require.NoError(t, err)

			assert.Equal(t, tt.want, req.URL())
			assert.Equal(t, tt.want, rec.Last().URL())
		})
	}
}

func TestRequest_SendTwiceDoesNotStackQuery(t *testing.T) {
	client, rec := newStubClient(okJSON(""))
	req := client.Get("http://api/users").Query("x=1")

	_, err := req.Do()
	require.NoError(t, err)
	_, err = req.Do()
	require.NoError(t, err)

	stubs := rec.Stubs()
	require.Len(t, stubs, 2)
	assert.Equal(t, "http://api/users?x=1", stubs[0].URL())
	assert.Equal(t, "http://api/users?x=1", stubs[1].URL())
}

func TestRequest_HeadersAppliedInOrder(t *testing.T) {
	client, rec := newStubClient(okJSON(""))

	_, err := client.Get("http://api").
		Header("B", "2").
		Header("A", "1").
		Type("text/plain").
		Do()
	require.NoError(t, err)

	assert.Equal(t, []jaxhttp.HeaderField{
		{Key: "B", Value: "2"},
		{Key: "A", Value: "1"},
		{Key: "Content-Type", Value: "text/plain"},
	}, rec.Last().Headers())
}

func TestRequest_PayloadEncoding(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		payload     map[string]any
		want        []byte
	}{
		{
			name:        "json",
			contentType: "application/json",
			payload:     map[string]any{"foo": "bar"},
			want:        []byte(`{"foo":"bar"}`),
		},
		{
			name:    "urlencoded by default",
			payload: map[string]any{"foo": "bar baz", "n": 1},
			want:    []byte("foo=bar%20baz&n=1"),
		},
		{
			name:        "json with parameters is not json",
			contentType: "application/json; charset=utf-8",
			payload:     map[string]any{"a": "b"},
			want:        []byte("a=b"),
		},
		{
			name:        "empty payload sends no body",
			contentType: "application/json",
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, rec := newStubClient(okJSON(""))

			_, err := client.Post("http://api").
				Type(tt.contentType).
				DataMap(tt.payload).
				Do()
			require.NoError(t, err)

			assert.Equal(t, tt.want, rec.Last().Body())
		})
	}
}

func TestRequest_CORSRequestsCredentials(t *testing.T) {
	client, rec := newStubClient(okJSON(""))

	_, err := client.Get("http://api").Do()
	require.NoError(t, err)
	assert.False(t, rec.Last().WithCredentials())

	_, err = client.Get("http://api").CORS().Do()
	require.NoError(t, err)
	assert.True(t, rec.Last().WithCredentials())
}

func TestRequest_CallbackNeverSynchronous(t *testing.T) {
	client, rec := newStubClient(okJSON(`{}`))
	release := rec.Hold()

	var called atomic.Bool
	done := make(chan struct{})
	req := client.Get("http://api")
	req.Send(func(err error, resp *jaxhttp.Response) {
		called.Store(true)
		close(done)
	})

	assert.False(t, called.Load())
	assert.Equal(t, jaxhttp.Sent, req.State())

	release()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not invoked")
	}
	assert.Equal(t, jaxhttp.Completed, req.State())
}

func TestRequest_CallbackInvokedOnce(t *testing.T) {
	reply := okJSON(`{}`)
	reply.RepeatDone = true
	client, rec := newStubClient(reply)

	var calls atomic.Int32
	client.Get("http://api").Send(func(err error, resp *jaxhttp.Response) {
		calls.Add(1)
	})

	rec.Last().Wait()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRequest_TransportUnavailable(t *testing.T) {
	client := jaxhttp.NewClient(jaxhttp.WithTransport(func() jaxhttp.Transport { return nil }))
	assert.Nil(t, client.Transport())

	req := client.Get("http://api")
	resp, err := req.Do()

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, jaxhttp.ErrTransportUnavailable)
	assert.Equal(t, jaxhttp.Failed, req.State())
}

func TestRequest_OpenAndSendFailures(t *testing.T) {
	openErr := errors.New("bad method")
	sendErr := errors.New("closed")

	for name, reply := range map[string]jaxtest.Reply{
		"open": {OpenErr: openErr},
		"send": {SendErr: sendErr},
	} {
		t.Run(name, func(t *testing.T) {
			client, _ := newStubClient(reply)

			resp, err := client.Get("http://api").Do()
			assert.Nil(t, resp)
			require.Error(t, err)
			if name == "open" {
				assert.ErrorIs(t, err, openErr)
			} else {
				assert.ErrorIs(t, err, sendErr)
			}
		})
	}
}

func TestRequest_PayloadEncodeFailure(t *testing.T) {
	client, rec := newStubClient(okJSON(""))

	_, err := client.Post("http://api").
		Type("application/json").
		Data("ch", make(chan int)).
		Do()

	require.Error(t, err)
	var unsupported *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
	assert.False(t, rec.Last().Sent())
}
