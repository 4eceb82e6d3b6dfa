package client

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func httpResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewResponse_JSONBody(t *testing.T) {
	resp, err := newResponse(httpResponse(http.StatusOK, `{"id":"p1","title":"Hello"}`))
	if err != nil {
		t.Fatalf("newResponse failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if resp.NoContent {
		t.Error("NoContent = true for a body-carrying response")
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Error("headers not carried over")
	}

	var post struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	if err := resp.Decode(&post); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if post.ID != "p1" || post.Title != "Hello" {
		t.Errorf("decoded = %+v", post)
	}
}

func TestNewResponse_NoContentStatus(t *testing.T) {
	resp, err := newResponse(httpResponse(http.StatusNoContent, ""))
	if err != nil {
		t.Fatalf("newResponse failed: %v", err)
	}
	if !resp.NoContent {
		t.Error("204 must resolve to NoContent")
	}
	if resp.Body != nil {
		t.Errorf("Body = %s, want nil", resp.Body)
	}
}

func TestNewResponse_EmptyBody(t *testing.T) {
	resp, err := newResponse(httpResponse(http.StatusOK, ""))
	if err != nil {
		t.Fatalf("newResponse failed: %v", err)
	}
	if !resp.NoContent {
		t.Error("empty body must resolve to NoContent regardless of status")
	}
}

func TestResponse_DecodeNoContent(t *testing.T) {
	resp := &Response{StatusCode: http.StatusNoContent, NoContent: true}

	var v map[string]interface{}
	if err := resp.Decode(&v); !errors.Is(err, ErrNoContent) {
		t.Errorf("Decode = %v, want ErrNoContent", err)
	}
}

func TestResponse_DecodeInvalidJSON(t *testing.T) {
	resp, err := newResponse(httpResponse(http.StatusOK, `{"id":`))
	if err != nil {
		t.Fatalf("newResponse failed: %v", err)
	}

	var v map[string]interface{}
	if err := resp.Decode(&v); err == nil {
		t.Error("expected decode error for truncated JSON")
	}
}
