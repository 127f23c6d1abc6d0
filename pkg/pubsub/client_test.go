package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/mineralmarket-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	c := &Client{projectID: "mm-prod"}

	cases := map[string]string{
		"":                                   "",
		"  ":                                 "",
		"mm-order-events":                    "projects/mm-prod/topics/mm-order-events",
		"projects/other/topics/order-events": "projects/other/topics/order-events",
	}
	for in, want := range cases {
		if got := c.topicResourceName(in); got != want {
			t.Fatalf("topicResourceName(%q) = %q, want %q", in, got, want)
		}
	}

	if got := (&Client{}).topicResourceName("events"); got != "" {
		t.Fatalf("expected empty name without project, got %q", got)
	}
}

func TestClientOptions(t *testing.T) {
	if opts := clientOptions(config.GCPConfig{}); len(opts) != 0 {
		t.Fatalf("expected no options, got %d", len(opts))
	}
	if opts := clientOptions(config.GCPConfig{CredentialsJSON: `{"type":"service_account"}`}); len(opts) != 1 {
		t.Fatalf("expected credentials json option")
	}
	if opts := clientOptions(config.GCPConfig{ApplicationCredentials: "/var/run/creds.json"}); len(opts) != 1 {
		t.Fatalf("expected credentials file option")
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	if _, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{}, nil); err != errProjectIDRequired {
		t.Fatalf("expected errProjectIDRequired, got %v", err)
	}
}

func TestNilClientHelpers(t *testing.T) {
	var c *Client
	if c.Publisher("x") != nil {
		t.Fatalf("expected nil publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error on nil client")
	}
}
