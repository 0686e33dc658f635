package models

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type VotedPost struct {
	ID     string `json:"id"`
	Titulo string `json:"title"`
	Votes  int    `json:"votes"`
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	TotalPosts       int             `json:"totalPosts"`
	TotalUsers       int             `json:"totalUsers"`
	TotalComments    int             `json:"totalComments"`
	PendingComments  int             `json:"pendingComments"`
	TotalViews       int             `json:"totalViews"`
	PostsByStatus    map[string]int  `json:"postsByStatus"`
	PostsPerCategory []CategoryCount `json:"postsPerCategory"`
	MostVotedPost    *VotedPost      `json:"mostVotedPost"`
}
