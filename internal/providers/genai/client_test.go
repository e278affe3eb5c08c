package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scenesmith/internal/domain"
)

func TestGenerateImageNoCredential(t *testing.T) {
	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("err = %v, want ErrNoCredential", err)
	}
}

func TestGenerateImageSyntheticFallback(t *testing.T) {
	client, err := NewClient(Options{AllowSynthetic: true})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	req := ImageRequest{Prompt: "a red barn", Seed: 42}

	first, err := client.GenerateImage(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if first.MIME != "image/png" || len(first.Data) == 0 {
		t.Fatalf("asset = %+v", first)
	}

	second, err := client.GenerateImage(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatalf("synthetic image should be deterministic for the same prompt and seed")
	}

	other, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "a red barn", Seed: 43})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if bytes.Equal(first.Data, other.Data) {
		t.Fatalf("different seeds should produce different images")
	}
}

func TestGenerateImageParsesInlineData(t *testing.T) {
	payload := []byte("not really a png")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "key=k-123") {
			t.Errorf("request missing api key: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"` +
			base64.StdEncoding.EncodeToString(payload) + `"}}]}}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "k-123", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	asset, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if asset.MIME != "image/png" || !bytes.Equal(asset.Data, payload) {
		t.Fatalf("asset = %+v", asset)
	}
}

func TestGenerateImagePropagatesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "Resource has been exhausted") {
		t.Fatalf("err = %v, want upstream message preserved", err)
	}
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want domain.ErrProviderFailure", err)
	}
}

func TestGenerateImageKeySource(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "key=stored-key") {
			t.Errorf("request missing stored key: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"` +
			base64.StdEncoding.EncodeToString([]byte("img")) + `"}}]}}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{
		KeySource: func(context.Context) (string, error) {
			calls++
			return "stored-key", nil
		},
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "x"}); err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if calls != 1 {
		t.Fatalf("key source calls = %d, want 1", calls)
	}
}
