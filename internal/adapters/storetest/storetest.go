// Package storetest holds the Get, Set and List behaviour every assignment
// store adapter must share.
package storetest

import (
	"context"
	"testing"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/ports"
)

// Store is an assignment store that can also list.
type Store interface {
	ports.AssignmentStore
	ports.AssignmentLister
}

// Run exercises a fresh store from open in each subtest. open is responsible
// for cleanup.
func Run(t *testing.T, open func(t *testing.T) Store) {
	t.Helper()

	t.Run("missing key", func(t *testing.T) {
		s := open(t)
		v, ok, err := s.Get(context.Background(), "ab_test_missing")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if ok || v != "" {
			t.Errorf("Get = %q, %v; want absent", v, ok)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		s := open(t)

		mustSet(t, s, "ab_test_hero", "B")
		assertValue(t, s, "ab_test_hero", "B")
	})

	t.Run("overwrite", func(t *testing.T) {
		s := open(t)

		mustSet(t, s, "ab_test_hero", "B")
		mustSet(t, s, "ab_test_hero", "A")
		assertValue(t, s, "ab_test_hero", "A")
	})

	t.Run("empty value is present", func(t *testing.T) {
		s := open(t)

		mustSet(t, s, "ab_test_hero", "")
		assertValue(t, s, "ab_test_hero", "")
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := open(t)

		mustSet(t, s, "ab_test_hero", "A")
		mustSet(t, s, "ab_test_hero_v2", "B")
		assertValue(t, s, "ab_test_hero", "A")
		assertValue(t, s, "ab_test_hero_v2", "B")
	})

	t.Run("list", func(t *testing.T) {
		s := open(t)
		for k, v := range map[string]string{
			"ab_test_zeta":  "A",
			"ab_test_alpha": "B",
			"ab_test_junk":  "maybe",
			"ab_test_empty": "",
			"ab_other":      "A",
			"session_token": "B",
		} {
			mustSet(t, s, k, v)
		}

		got, err := s.List(context.Background(), "ab_test_")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		want := []domain.Assignment{
			{Experiment: "alpha", Variant: domain.VariantB},
			{Experiment: "zeta", Variant: domain.VariantA},
		}
		if len(got) != len(want) {
			t.Fatalf("List = %+v, want %+v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("assignment %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("list empty", func(t *testing.T) {
		s := open(t)
		mustSet(t, s, "other_key", "A")

		got, err := s.List(context.Background(), "ab_test_")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("List = %+v, want none", got)
		}
	})

}

func mustSet(t *testing.T, s Store, key, value string) {
	t.Helper()
	if err := s.Set(context.Background(), key, value); err != nil {
		t.Fatalf("Set(%q, %q) failed: %v", key, value, err)
	}
}

func assertValue(t *testing.T, s Store, key, want string) {
	t.Helper()
	v, ok, err := s.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	if !ok || v != want {
		t.Errorf("Get(%q) = %q, %v; want %q", key, v, ok, want)
	}
}
