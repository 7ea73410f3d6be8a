package domain

import "time"

// User - an end-user known by the opaque id the chat transport assigns.
// Created lazily on first contact, never deleted.
type User struct {
	ID            string
	LastVoteAt    time.Time
	PostsAuthored int
}

// Vote - one user's single, immutable selection of an answer on a post.
type Vote struct {
	UserID string
	PostID string
	// Answer - key of the chosen button.
	Answer string
	At     time.Time
}
