package postpolicy

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/domain/models"
)

func TestCheckCreate(t *testing.T) {
	tests := []struct {
		name    string
		in      PostInput
		wantErr bool
	}{
		{"valid", PostInput{Title: "Hi", Content: "Body", Username: "alice"}, false},
		{"studentId optional", PostInput{Title: "Hi", Content: "Body", Username: "alice", StudentID: ""}, false},
		{"missing title", PostInput{Content: "Body", Username: "alice"}, true},
		{"missing content", PostInput{Title: "Hi", Username: "alice"}, true},
		{"missing username", PostInput{Title: "Hi", Content: "Body"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckCreate(tt.in, "a@x.my")
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckCreate err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckCreate_Sanitizes(t *testing.T) {
	p, err := CheckCreate(PostInput{
		Title:    "<b>Hello</b>",
		Content:  "<p>Body</p><script>alert(1)</script>",
		Username: "alice",
	}, "a@x.my")
	if err != nil {
		t.Fatalf("CheckCreate failed: %v", err)
	}
	if p.Title != "Hello" {
		t.Errorf("Title = %q, want tags stripped", p.Title)
	}
	if strings.Contains(p.Content, "script") {
		t.Errorf("Content = %q, want script removed", p.Content)
	}
	if p.AuthorEmail != "a@x.my" {
		t.Errorf("AuthorEmail = %q", p.AuthorEmail)
	}
}

func TestCheckComment(t *testing.T) {
	c, err := CheckComment(CommentInput{Username: "bob", Text: "<i>Nice</i> post"})
	if err != nil {
		t.Fatalf("CheckComment failed: %v", err)
	}
	if c.Text != "Nice post" {
		t.Errorf("Text = %q, want tags stripped", c.Text)
	}
	if _, err := CheckComment(CommentInput{Username: "bob", Text: "   "}); err == nil {
		t.Error("expected blank comment to be rejected")
	}
}

func TestApplyPatch(t *testing.T) {
	p := models.Post{Title: "Old", Content: "Old body", Image: "a.png"}
	title := "New"

	if err := ApplyPatch(&p, PostPatch{Title: &title}); err != nil {
		t.Fatalf("ApplyPatch failed: %v", err)
	}
	if p.Title != "New" || p.Content != "Old body" || p.Image != "a.png" {
		t.Errorf("got %+v, want only title changed", p)
	}

	blank := ""
	if err := ApplyPatch(&p, PostPatch{Content: &blank}); err == nil {
		t.Error("expected blank content to be rejected")
	}
}

func TestCanModify(t *testing.T) {
	post := &models.Post{AuthorEmail: "a@x.my"}

	tests := []struct {
		name string
		user *auth.User
		want bool
	}{
		{"author", &auth.User{Email: "a@x.my", Role: "User"}, true},
		{"stranger", &auth.User{Email: "b@x.my", Role: "User"}, false},
		{"moderator", &auth.User{Email: "m@x.my", Role: "Moderator"}, true},
		{"admin", &auth.User{Email: "admin@x.my", Role: "Admin"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := auth.WithTestUser(httptest.NewRequest("DELETE", "/api/posts/x", nil), tt.user)
			if got := CanModify(req, post); got != tt.want {
				t.Errorf("CanModify = %v, want %v", got, tt.want)
			}
			if got := CanReviewFlags(req); got != (tt.user.Role != "User") {
				t.Errorf("CanReviewFlags = %v", got)
			}
		})
	}
}
