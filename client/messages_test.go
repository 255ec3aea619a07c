package client

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ManiEids/vef2hop2/domain"
)

func TestMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{domain.ErrUnauthorized, "Ekki heimild"},
		{fmt.Errorf("%w: %w", domain.ErrUnauthorized, domain.ErrForbidden), "Ekki heimild"},
		{fmt.Errorf("%w: /tasks", ErrEndpointNotFound), "Endapunktur fannst ekki"},
		{fmt.Errorf("%w: dial tcp", ErrNetwork), "Ekki náðist samband við vefþjón"},
		{fmt.Errorf("task 9: %w", domain.ErrNotFound), "Fannst ekki"},
		{domain.ErrConflict, "Þetta er þegar til"},
		{&StatusError{Status: 400, Message: "invalid input"}, "Ógild gögn"},
		{&StatusError{Status: 502}, "502: Bad Gateway"},
		{errors.New("boom"), "Óskilgreind villa"},
	}
	for _, tc := range cases {
		if got := Message(tc.err); got != tc.want {
			t.Fatalf("Message(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
