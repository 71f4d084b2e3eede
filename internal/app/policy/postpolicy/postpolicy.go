// Package postpolicy validates forum input and decides who may change posts.
//
// Rules:
//   - title and content are required; studentId is optional
//   - the author, a Moderator or an Admin may edit or delete a post
//   - only Moderators and Admins review or purge flagged posts
package postpolicy

import (
	"net/http"
	"strings"

	"github.com/dalemusser/campushub/internal/app/system/authz"
	"github.com/dalemusser/campushub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/campushub/internal/app/system/inputval"
	"github.com/dalemusser/campushub/internal/domain/models"
)

// PostInput is the create-post request body.
type PostInput struct {
	Title     string `json:"title" validate:"notblank,max=300" label:"Title"`
	Content   string `json:"content" validate:"notblank,max=20000" label:"Content"`
	Image     string `json:"image"`
	Username  string `json:"username" validate:"notblank,max=50" label:"Username"`
	StudentID string `json:"studentId"`
}

// CheckCreate validates in and returns the sanitized post for authorEmail.
func CheckCreate(in PostInput, authorEmail string) (models.Post, error) {
	if err := inputval.Validate(in).Err(); err != nil {
		return models.Post{}, err
	}
	return models.Post{
		Title:       htmlsanitize.StripTags(in.Title),
		Content:     htmlsanitize.Sanitize(in.Content),
		Image:       strings.TrimSpace(in.Image),
		AuthorEmail: authorEmail,
		Username:    strings.TrimSpace(in.Username),
		StudentID:   strings.TrimSpace(in.StudentID),
	}, nil
}

// CommentInput is the add-comment request body.
type CommentInput struct {
	Username  string `json:"username" validate:"notblank" label:"Username"`
	StudentID string `json:"studentId"`
	Text      string `json:"text" validate:"notblank" label:"Comment"`
}

// CheckComment validates in and returns the sanitized comment.
func CheckComment(in CommentInput) (models.Comment, error) {
	if err := inputval.Validate(in).Err(); err != nil {
		return models.Comment{}, err
	}
	return models.Comment{
		Username:  strings.TrimSpace(in.Username),
		StudentID: strings.TrimSpace(in.StudentID),
		Text:      htmlsanitize.StripTags(in.Text),
	}, nil
}

// PostPatch is the edit-post body. Nil fields are left unchanged.
type PostPatch struct {
	Title   *string `json:"title" validate:"omitempty,notblank,max=300" label:"Title"`
	Content *string `json:"content" validate:"omitempty,notblank,max=20000" label:"Content"`
	Image   *string `json:"image"`
}

// ApplyPatch validates patch and merges it onto p.
func ApplyPatch(p *models.Post, patch PostPatch) error {
	if err := inputval.Validate(patch).Err(); err != nil {
		return err
	}
	if patch.Title != nil {
		p.Title = htmlsanitize.StripTags(*patch.Title)
	}
	if patch.Content != nil {
		p.Content = htmlsanitize.Sanitize(*patch.Content)
	}
	if patch.Image != nil {
		p.Image = strings.TrimSpace(*patch.Image)
	}
	return nil
}

// CanModify reports whether the current user may edit or delete p.
func CanModify(r *http.Request, p *models.Post) bool {
	return authz.CanModerate(r, p.AuthorEmail)
}

// CanReviewFlags reports whether the current user may see and purge flagged posts.
func CanReviewFlags(r *http.Request) bool {
	return authz.IsModeratorOrAdmin(r)
}
