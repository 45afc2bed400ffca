package failure

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestKindOfThroughWrapping(t *testing.T) {
	base := DataNotReady("stat_over_under", "Aaron Judge", "hits", "metric not available")
	wrapped := fmt.Errorf("grade prop p1: %w", base)

	if KindOf(wrapped) != KindDataNotReady {
		t.Fatalf("expected data_not_ready, got %q", KindOf(wrapped))
	}
	if !Is(wrapped, KindDataNotReady) || Is(wrapped, KindUpstream) {
		t.Fatal("unexpected Is result")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatal("expected plain errors to have no kind")
	}
	if Is(nil, KindValidation) {
		t.Fatal("expected nil to match nothing")
	}
}

func TestErrorMessageNamesMetricAndEntity(t *testing.T) {
	err := DataNotReady("player_h2h", "Juan Soto", "hits", "metric not available")
	msg := err.Error()
	for _, want := range []string{"player_h2h", "metric=hits", "entity=Juan Soto"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestUpstreamUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Upstream("scoreboard", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected cause in message, got %q", err.Error())
	}
}

func TestKindStatusAndRetry(t *testing.T) {
	cases := []struct {
		kind      Kind
		status    int
		retryable bool
	}{
		{KindValidation, http.StatusBadRequest, false},
		{KindNotFound, http.StatusNotFound, false},
		{KindDataNotReady, http.StatusConflict, true},
		{KindUpstream, http.StatusBadGateway, true},
		{KindCascade, http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		if tc.kind.HTTPStatus() != tc.status {
			t.Fatalf("%s: expected status %d got %d", tc.kind, tc.status, tc.kind.HTTPStatus())
		}
		if tc.kind.Retryable() != tc.retryable {
			t.Fatalf("%s: expected retryable %v", tc.kind, tc.retryable)
		}
	}
}
