package posts

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxTitleLength   = 200
	maxContentLength = 20000
)

// Post is a piece of content owned by a user. AuthorRef holds the author's
// external id and never changes after creation.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorRef string    `json:"authorRef"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPost is the client supplied part of a post
type NewPost struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (p NewPost) Validate() error {
	if err := validateTitle(p.Title); err != nil {
		return err
	}
	return validateContent(p.Content)
}

// Update is a partial edit. Nil fields are left alone; AuthorRef is not editable.
type Update struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

func (u Update) Validate() error {
	if u.Title == nil && u.Content == nil {
		return fmt.Errorf("nothing to update")
	}
	if u.Title != nil {
		if err := validateTitle(*u.Title); err != nil {
			return err
		}
	}
	if u.Content != nil {
		if err := validateContent(*u.Content); err != nil {
			return err
		}
	}
	return nil
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("title must be at most %d characters", maxTitleLength)
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	if len(content) > maxContentLength {
		return fmt.Errorf("content must be at most %d characters", maxContentLength)
	}
	return nil
}

type ListResponse struct {
	Posts  []*Post `json:"posts"`
	Total  int     `json:"total"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}
