package content

// VisiblePosts returns only the posts whose author is in the active set.
// The input slice is never modified.
func VisiblePosts(posts []Post, active map[string]bool) []Post {
	visible := make([]Post, 0, len(posts))
	for _, post := range posts {
		if active[post.AuthorID] {
			visible = append(visible, post)
		}
	}
	return visible
}

// VisibleComments returns only the comments whose author is in the
// active set.
func VisibleComments(comments []Comment, active map[string]bool) []Comment {
	visible := make([]Comment, 0, len(comments))
	for _, comment := range comments {
		if active[comment.AuthorID] {
			visible = append(visible, comment)
		}
	}
	return visible
}
