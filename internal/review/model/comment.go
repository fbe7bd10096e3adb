package model

import "time"

type Comment struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	ReviewerName     string    `json:"reviewer_name"`
	ProductHandle    string    `json:"product_handle"`
	Timestamp        time.Time `json:"timestamp"`
	Rating           int       `json:"rating"`
	HelpfulCount     int       `json:"helpful_count"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	Featured         bool      `json:"featured"`
	Likes            int       `json:"likes"`
	Images           []Image   `json:"images,omitempty"`
	Replies          []Reply   `json:"replies,omitempty"`
	HasFollowUp      bool      `json:"has_follow_up"`
	FollowUp         *FollowUp `json:"follow_up,omitempty"`
}

// Reply is a single answer under a comment. ParentID == 0 marks a top-level reply.
type Reply struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Likes     int       `json:"likes"`
	ParentID  int64     `json:"parentId,omitempty"`
}

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type FollowUp struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	DaysLater int       `json:"days_later"`
}

// LikeState is per-viewer toggle state. It starts from the record's counter and
// diverges from it afterwards; the record itself is never changed.
type LikeState struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// Toggle flips the state and moves the counter with it.
func (s LikeState) Toggle() LikeState {
	if s.Liked {
		return LikeState{Liked: false, Count: s.Count - 1}
	}
	return LikeState{Liked: true, Count: s.Count + 1}
}

type ReplyNode struct {
	Reply
	Depth    int         `json:"depth"`
	Indent   int         `json:"indent"`
	Like     LikeState   `json:"like"`
	Children []ReplyNode `json:"children"`
}
