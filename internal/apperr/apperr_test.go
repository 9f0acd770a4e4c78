package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfClassified(t *testing.T) {
	cases := map[Kind]*Error{
		KindValidation:   New(KindValidation, "empty_title"),
		KindNotFound:     New(KindNotFound, "event_not_found"),
		KindForbidden:    New(KindForbidden, "not_owner"),
		KindUnauthorized: New(KindUnauthorized, "invalid_token"),
		KindConflict:     New(KindConflict, "name_taken"),
	}
	for kind, err := range cases {
		if KindOf(err) != kind {
			t.Fatalf("expected kind %d for %v", kind, err)
		}
	}
}

func TestKindOfUnclassifiedDefaultsToStorage(t *testing.T) {
	err := errors.New("connection reset")
	if KindOf(err) != KindStorage {
		t.Fatalf("expected unclassified error to be storage")
	}
	if CodeOf(err) != "server_error" {
		t.Fatalf("expected generic code, got %s", CodeOf(err))
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(KindConflict, "name_taken", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if KindOf(fmt.Errorf("creating admin: %w", err)) != KindConflict {
		t.Fatalf("expected kind to survive further wrapping")
	}
	if CodeOf(err) != "name_taken" {
		t.Fatalf("expected code name_taken, got %s", CodeOf(err))
	}
}
