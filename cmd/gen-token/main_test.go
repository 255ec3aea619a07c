package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/ManiEids/vef2hop2/auth"
)

func TestUserIDs(t *testing.T) {
	cases := []struct {
		name  string
		count int
		args  []string
		want  []string
	}{
		{name: "explicit", count: 1, args: []string{"42"}, want: []string{"42"}},
		{name: "single", count: 1, want: []string{"perf-user"}},
		{name: "many", count: 3, want: []string{"perf-user-5", "perf-user-6", "perf-user-7"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := userIDs(tc.count, "perf-user", 5, tc.args)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestGenerateAndWriteTokens(t *testing.T) {
	issuer := auth.NewTokens([]byte("secret"), time.Hour, "", "")
	tokens, err := generateTokens(issuer, []string{"a", "b"}, true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	u, err := issuer.Parse(tokens[1])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.ID != "b" || !u.Admin {
		t.Fatalf("unexpected user %+v", u)
	}

	path := filepath.Join(t.TempDir(), "out", "tokens.json")
	if err := writeTokens(path, tokens); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	if err := sonic.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0] != tokens[0] {
		t.Fatalf("unexpected file contents %v", got)
	}
}
