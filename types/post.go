package types

// Post is an invitation other users can join.
type Post struct {
	ID             string   `json:"id"`
	AuthorID       string   `json:"authorId"`
	AuthorName     string   `json:"authorName"`
	AuthorPhotoURL string   `json:"authorPhotoURL,omitempty"`
	Text           string   `json:"text"`
	Location       string   `json:"location,omitempty"`
	Time           string   `json:"time,omitempty"`
	Spots          *int     `json:"spots,omitempty"`
	Participants   []string `json:"participants"`
	CreatedAt      int64    `json:"createdAt"`
}

// HasParticipant reports whether uid has joined the post.
func (p Post) HasParticipant(uid string) bool {
	for _, id := range p.Participants {
		if id == uid {
			return true
		}
	}
	return false
}

// CreatePostRequest is the payload for creating a new post.
type CreatePostRequest struct {
	Text     string `json:"text"`
	Location string `json:"location,omitempty"`
	Time     string `json:"time,omitempty"`
	Spots    *int   `json:"spots,omitempty"`
}

// Chat is the side-channel record upserted when someone joins a post.
type Chat struct {
	ID          string   `json:"id"`
	Users       []string `json:"users"`
	LastMessage string   `json:"lastMessage"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}
