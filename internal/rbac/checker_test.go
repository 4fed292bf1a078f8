package rbac

import "testing"

func TestCheckerDefaults(t *testing.T) {
	c := NewChecker(nil)

	if !c.Has("student", "attempt:submit") {
		t.Fatalf("student should submit attempts")
	}
	if c.Has("student", "quiz:create") {
		t.Fatalf("student must not create quizzes")
	}
	if !c.Has("teacher", "quiz:create") {
		t.Fatalf("teacher should create quizzes")
	}
	if !c.Has("admin", "anything:at-all") {
		t.Fatalf("admin wildcard should match everything")
	}
	if c.Has("unknown-role", "quiz:view") {
		t.Fatalf("unknown role should have nothing")
	}
}

func TestCheckerPrefixPatterns(t *testing.T) {
	c := NewChecker(map[string][]string{"ta": {"attempt:*"}})

	if !c.Has("ta", "attempt:view-all") {
		t.Fatalf("prefix pattern should match")
	}
	if c.Has("ta", "quiz:view") {
		t.Fatalf("prefix pattern must not leak across namespaces")
	}
	if !c.Any("ta", "quiz:view", "attempt:submit") {
		t.Fatalf("Any should find the matching perm")
	}
	if c.All("ta", "attempt:submit", "quiz:view") {
		t.Fatalf("All should fail on the missing perm")
	}
}
