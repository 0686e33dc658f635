package models

// Votable entity types.
const (
	EntityPost    = "post"
	EntityComment = "comment"
)

// Vote directions.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote is one user's vote on one entity. A user holds at most one vote per entity.
type Vote struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Username   string `json:"username"`
	Type       string `json:"type"`
}

// Owner is the only username allowed to retract the vote besides admins.
func (v Vote) Owner() string { return v.Username }

type VoteTally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// Score is upvotes minus downvotes.
func (t VoteTally) Score() int { return t.Upvotes - t.Downvotes }
